package entity

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderItem struct {
	gorm.Model
	Name                string          `json:"name"` // snapshot ชื่อตอนสั่ง
	Qty                 int             `json:"qty"`
	UnitPrice           decimal.Decimal `gorm:"type:decimal(10,2)" json:"unitPrice"`
	Total               decimal.Decimal `gorm:"type:decimal(10,2)" json:"total"`
	SpecialInstructions string          `json:"specialInstructions"`

	OrderID uint  `gorm:"index" json:"orderId"`
	Order   Order `json:"-"`

	ItemID uint `gorm:"index" json:"itemId"`
	Item   Item `json:"-"`
}
