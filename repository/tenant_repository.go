package repository

import (
	"github.com/abdout/souq/entity"

	"gorm.io/gorm"
)

type TenantRepository struct {
	DB *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{DB: db}
}

// ดึงร้านตาม ID
func (r *TenantRepository) FindByID(id uint) (*entity.Tenant, error) {
	var t entity.Tenant
	if err := r.DB.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ดึงร้านตาม slug
func (r *TenantRepository) FindBySlug(slug string) (*entity.Tenant, error) {
	var t entity.Tenant
	if err := r.DB.Where("slug = ?", slug).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepository) FindByStripeAccount(accountID string) (*entity.Tenant, error) {
	var t entity.Tenant
	if err := r.DB.Where("stripe_account_id = ?", accountID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// slug ซ้ำมั้ย (รวมร้านที่ถูก soft delete ด้วย เพราะ unique index ยังอยู่)
func (r *TenantRepository) SlugExists(slug string) (bool, error) {
	var cnt int64
	if err := r.DB.Unscoped().Model(&entity.Tenant{}).Where("slug = ?", slug).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *TenantRepository) Create(tx *gorm.DB, t *entity.Tenant) error {
	return tx.Create(t).Error
}

// ร้านที่เปิดอยู่ (businessType ว่าง = ทุกประเภท)
func (r *TenantRepository) ListActive(businessType string) ([]entity.Tenant, error) {
	var out []entity.Tenant
	db := r.DB.Where("is_active = ?", true)
	if businessType != "" {
		db = db.Where("business_type = ?", businessType)
	}
	err := db.Order("id DESC").Find(&out).Error
	return out, err
}

func (r *TenantRepository) ListActivePaged(businessType string, limit, offset int) ([]entity.Tenant, int64, error) {
	var total int64
	base := r.DB.Model(&entity.Tenant{}).Where("is_active = ?", true)
	if businessType != "" {
		base = base.Where("business_type = ?", businessType)
	}
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []entity.Tenant
	db := r.DB.Where("is_active = ?", true)
	if businessType != "" {
		db = db.Where("business_type = ?", businessType)
	}
	err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&out).Error
	return out, total, err
}

// อัปเดตบาง field
func (r *TenantRepository) Update(id uint, updates map[string]any) error {
	return r.DB.Model(&entity.Tenant{}).Where("id = ?", id).Updates(updates).Error
}

// ลบจริง (superadmin)
func (r *TenantRepository) HardDelete(tx *gorm.DB, id uint) (int64, error) {
	res := tx.Unscoped().Where("id = ?", id).Delete(&entity.Tenant{})
	return res.RowsAffected, res.Error
}

// DeleteOwned ลบสินค้า หมวด และเอกสารของร้าน (order เก็บไว้)
func (r *TenantRepository) DeleteOwned(tx *gorm.DB, tenantID uint) error {
	for _, model := range []any{&entity.Item{}, &entity.Category{}, &entity.TenantDocument{}} {
		if err := tx.Unscoped().Where("tenant_id = ?", tenantID).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// ----- Documents -----

func (r *TenantRepository) AddDocument(doc *entity.TenantDocument) error {
	return r.DB.Create(doc).Error
}

func (r *TenantRepository) ListDocuments(tenantID uint) ([]entity.TenantDocument, error) {
	var docs []entity.TenantDocument
	err := r.DB.Where("tenant_id = ?", tenantID).Order("id DESC").Find(&docs).Error
	return docs, err
}
