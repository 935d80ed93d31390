package entity

import "gorm.io/gorm"

const (
	ReasonRestock    = "restock"
	ReasonSale       = "sale"
	ReasonDamage     = "damage"
	ReasonAdjustment = "adjustment"
)

// InventoryAdjustment = ประวัติการแก้ stock (append only)
type InventoryAdjustment struct {
	gorm.Model
	PreviousQty int    `json:"previousQty"`
	NewQty      int    `json:"newQty"`
	Reason      string `gorm:"not null" json:"reason"`

	ItemID   uint `gorm:"index" json:"itemId"`
	TenantID uint `gorm:"index" json:"tenantId"`
	ActorID  uint `json:"actorId"`
}
