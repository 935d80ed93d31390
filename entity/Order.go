package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	OrderTypeDelivery = "delivery"
	OrderTypePickup   = "pickup"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Address struct {
	Street       string       `json:"street"`
	City         string       `json:"city"`
	PostalCode   string       `json:"postalCode,omitempty"`
	Country      string       `json:"country"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	Instructions string       `json:"instructions,omitempty"`
}

type Order struct {
	gorm.Model
	Number string      `gorm:"uniqueIndex;not null" json:"orderNumber"`
	Status OrderStatus `gorm:"index;not null;default:pending" json:"status"`

	OrderType       string                      `gorm:"not null;default:delivery" json:"orderType"`
	DeliveryAddress datatypes.JSONType[Address] `json:"deliveryAddress"`

	Subtotal    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	DeliveryFee decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"deliveryFee"`
	Total       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`

	EstimatedDelivery   *time.Time `json:"estimatedDelivery,omitempty"`
	SpecialInstructions string     `json:"specialInstructions"`
	PaymentMethod       string     `gorm:"default:card" json:"paymentMethod"`

	CheckoutSessionID string `json:"checkoutSessionId"`
	StripeAccountID   string `json:"-"`

	UserID uint `gorm:"index" json:"userId"`
	User   User `json:"-"` // preload เฉพาะตอนต้องการ user detail

	TenantID uint   `gorm:"index" json:"tenantId"`
	Tenant   Tenant `json:"-"`

	Items       []OrderItem       `json:"items,omitempty"`
	Transitions []OrderTransition `json:"-"`
}
