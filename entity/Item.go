package entity

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ItemFood     = "food"
	ItemMedicine = "medicine"
	ItemGrocery  = "grocery"
)

const DefaultLowStockThreshold = 10

type Item struct {
	gorm.Model
	Name         string          `gorm:"not null" json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	BusinessType string          `gorm:"index" json:"businessType"`
	Unit         string          `gorm:"default:piece" json:"unit"`
	ImageURL     string          `json:"imageUrl"`

	Inventory            int  `gorm:"not null;default:0" json:"inventory"`
	TrackInventory       bool `json:"trackInventory"`
	LowStockThreshold    int  `json:"lowStockThreshold"`
	PrescriptionRequired bool `json:"prescriptionRequired"`

	IsAvailable bool `gorm:"default:true" json:"isAvailable"`
	IsArchived  bool `gorm:"index" json:"isArchived"`
	IsPrivate   bool `json:"isPrivate"`

	TenantID uint   `gorm:"index;not null" json:"tenantId"`
	Tenant   Tenant `json:"-"`

	CategoryID *uint     `gorm:"index" json:"categoryId,omitempty"`
	Category   *Category `json:"category,omitempty"`

	Reviews []Review `json:"-"`
}

func (i *Item) Threshold() int {
	if i.LowStockThreshold > 0 {
		return i.LowStockThreshold
	}
	return DefaultLowStockThreshold
}

// Available: ไม่ track stock = สั่งได้เสมอ
func (i *Item) Available(qty int) bool {
	return !i.TrackInventory || i.Inventory >= qty
}

func (i *Item) LowStock() bool {
	return i.TrackInventory && i.Inventory > 0 && i.Inventory <= i.Threshold()
}

func (i *Item) OutOfStock() bool {
	return i.TrackInventory && i.Inventory <= 0
}
