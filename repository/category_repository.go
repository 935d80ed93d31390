package repository

import (
	"github.com/abdout/souq/entity"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

// หมวดระดับบน + subcategories (หมวดกลาง และหมวดของร้านถ้าระบุ)
func (r *CategoryRepository) ListTopLevel(businessType string, tenantID *uint) ([]entity.Category, error) {
	var out []entity.Category
	db := r.DB.Preload("Subcategories", func(db *gorm.DB) *gorm.DB {
		return db.Order("name")
	}).Where("parent_id IS NULL")
	if businessType != "" {
		db = db.Where("business_type = ?", businessType)
	}
	if tenantID != nil {
		db = db.Where("tenant_id IS NULL OR tenant_id = ?", *tenantID)
	} else {
		db = db.Where("tenant_id IS NULL")
	}
	err := db.Order("name").Find(&out).Error
	return out, err
}

func (r *CategoryRepository) FindByID(id uint) (*entity.Category, error) {
	var c entity.Category
	if err := r.DB.First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// slug ไม่ซ้ำภายในร้านเดียวกัน (nil = หมวดกลาง)
func (r *CategoryRepository) SlugExists(slug string, tenantID *uint) (bool, error) {
	var cnt int64
	db := r.DB.Model(&entity.Category{}).Where("slug = ?", slug)
	if tenantID == nil {
		db = db.Where("tenant_id IS NULL")
	} else {
		db = db.Where("tenant_id = ?", *tenantID)
	}
	if err := db.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *CategoryRepository) Create(c *entity.Category) error {
	return r.DB.Create(c).Error
}
