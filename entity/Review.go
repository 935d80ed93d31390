package entity

import (
	"gorm.io/gorm"
)

// หนึ่ง user รีวิวสินค้าได้หนึ่งครั้ง (ส่งซ้ำ = แก้ของเดิม)
type Review struct {
	gorm.Model
	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `json:"comment"`

	UserID uint `gorm:"uniqueIndex:idx_review_user_item" json:"userId"`
	User   User `json:"-"`
	ItemID uint `gorm:"uniqueIndex:idx_review_user_item" json:"itemId"`
	Item   Item `json:"-"`
}
