package entity

import "time"

// OrderTransition = log การเปลี่ยนสถานะ (append only)
type OrderTransition struct {
	ID         uint        `gorm:"primarykey" json:"id"`
	OrderID    uint        `gorm:"index;not null" json:"orderId"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `gorm:"not null" json:"toStatus"`
	ActorID    uint        `json:"actorId"`
	Note       string      `json:"note,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}
