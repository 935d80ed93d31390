package repository

import (
	"github.com/abdout/souq/entity"

	"gorm.io/gorm"
)

type InventoryRepository struct {
	DB *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{DB: db}
}

// บันทึกประวัติการแก้ stock
func (r *InventoryRepository) AddAdjustment(tx *gorm.DB, a *entity.InventoryAdjustment) error {
	return tx.Create(a).Error
}

func (r *InventoryRepository) ListForItem(itemID uint, limit int) ([]entity.InventoryAdjustment, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []entity.InventoryAdjustment
	err := r.DB.Where("item_id = ?", itemID).Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}
