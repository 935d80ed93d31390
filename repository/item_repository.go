package repository

import (
	"strings"

	"github.com/abdout/souq/entity"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ItemRepository struct {
	DB *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{DB: db}
}

func (r *ItemRepository) FindByID(id uint) (*entity.Item, error) {
	var it entity.Item
	if err := r.DB.Preload("Category").First(&it, id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ItemRepository) FindByIDTx(tx *gorm.DB, id uint) (*entity.Item, error) {
	var it entity.Item
	if err := tx.First(&it, id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// สินค้าของร้านนี้ที่ยังไม่ archive
func (r *ItemRepository) FindForTenant(tx *gorm.DB, ids []uint, tenantID uint) ([]entity.Item, error) {
	var items []entity.Item
	err := tx.Where("id IN ? AND tenant_id = ? AND is_archived = ?", ids, tenantID, false).
		Order("id").Find(&items).Error
	return items, err
}

// สินค้าที่ยังไม่ archive (ร้านไหนก็ได้)
func (r *ItemRepository) FindActiveByIDs(ids []uint) ([]entity.Item, error) {
	var items []entity.Item
	err := r.DB.Preload("Tenant").Preload("Category").
		Where("id IN ? AND is_archived = ?", ids, false).
		Order("id").Find(&items).Error
	return items, err
}

func (r *ItemRepository) FindByIDs(ids []uint) ([]entity.Item, error) {
	var items []entity.Item
	err := r.DB.Preload("Tenant").Preload("Category").Where("id IN ?", ids).Order("id").Find(&items).Error
	return items, err
}

func (r *ItemRepository) Create(it *entity.Item) error {
	return r.DB.Create(it).Error
}

func (r *ItemRepository) Update(id uint, updates map[string]any) error {
	return r.UpdateTx(r.DB, id, updates)
}

func (r *ItemRepository) UpdateTx(tx *gorm.DB, id uint, updates map[string]any) error {
	return tx.Model(&entity.Item{}).Where("id = ?", id).Updates(updates).Error
}

// ----- Stock -----

// DecrementStock ตัด stock แบบมีเงื่อนไขในคำสั่งเดียว (ไม่ให้ติดลบ)
// คืน false ถ้า stock ไม่พอ หรือสินค้าไม่ได้ track
func (r *ItemRepository) DecrementStock(tx *gorm.DB, itemID uint, qty int) (bool, error) {
	res := tx.Model(&entity.Item{}).
		Where("id = ? AND track_inventory = ? AND inventory >= ?", itemID, true, qty).
		UpdateColumn("inventory", gorm.Expr("inventory - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RestoreStock คืน stock ตอนยกเลิก order
func (r *ItemRepository) RestoreStock(tx *gorm.DB, itemID uint, qty int) error {
	return tx.Model(&entity.Item{}).
		Where("id = ? AND track_inventory = ?", itemID, true).
		UpdateColumn("inventory", gorm.Expr("inventory + ?", qty)).Error
}

func (r *ItemRepository) SetStock(tx *gorm.DB, itemID uint, qty int) error {
	return tx.Model(&entity.Item{}).Where("id = ?", itemID).Update("inventory", qty).Error
}

// ListForTenant: สินค้าทั้งหมดของร้าน (รวม archive) ใช้กับ summary/report
func (r *ItemRepository) ListForTenant(tenantID uint) ([]entity.Item, error) {
	var items []entity.Item
	err := r.DB.Preload("Category").Where("tenant_id = ?", tenantID).Order("name").Find(&items).Error
	return items, err
}

// LowStockCandidates: tracked items ที่ inventory <= threshold ของตัวเอง หรือ fallback
func (r *ItemRepository) LowStockCandidates(tenantID uint, fallback int) ([]entity.Item, error) {
	var items []entity.Item
	err := r.DB.
		Where("tenant_id = ? AND track_inventory = ?", tenantID, true).
		Where("(low_stock_threshold > 0 AND inventory <= low_stock_threshold) OR ((low_stock_threshold IS NULL OR low_stock_threshold <= 0) AND inventory <= ?)", fallback).
		Order("inventory ASC").Limit(100).
		Find(&items).Error
	return items, err
}

// ----- Storefront search -----

type ItemFilter struct {
	Search       string
	CategorySlug string
	BusinessType string
	TenantSlug   string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	OnlyInStock  bool
	Sort         string // newest | price-low | price-high | rating | popular
	Page         int
	Limit        int
}

func (r *ItemRepository) storefront(f ItemFilter) *gorm.DB {
	db := r.DB.Model(&entity.Item{}).
		Joins("JOIN tenants ON tenants.id = items.tenant_id AND tenants.deleted_at IS NULL").
		Where("tenants.is_active = ?", true).
		Where("items.is_archived = ? AND items.is_private = ? AND items.is_available = ?", false, false, true)

	if f.OnlyInStock {
		db = db.Where("(items.track_inventory = ? OR items.inventory > 0)", false)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		db = db.Where("(LOWER(items.name) LIKE ? OR LOWER(items.description) LIKE ?)", like, like)
	}
	if f.CategorySlug != "" {
		// รวม subcategory ของหมวดนั้นด้วย
		db = db.Where(`items.category_id IN (SELECT c.id FROM categories c WHERE c.deleted_at IS NULL AND (c.slug = ? OR c.parent_id IN (SELECT p.id FROM categories p WHERE p.slug = ? AND p.deleted_at IS NULL)))`,
			f.CategorySlug, f.CategorySlug)
	}
	if f.BusinessType != "" {
		db = db.Where("items.business_type = ?", f.BusinessType)
	}
	if f.TenantSlug != "" {
		db = db.Where("tenants.slug = ?", f.TenantSlug)
	}
	if f.MinPrice != nil {
		db = db.Where("items.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		db = db.Where("items.price <= ?", *f.MaxPrice)
	}
	return db
}

const (
	ratingExpr  = "(SELECT COALESCE(AVG(rv.rating), 0) FROM reviews rv WHERE rv.item_id = items.id AND rv.deleted_at IS NULL)"
	soldQtyExpr = "(SELECT COALESCE(SUM(oi.qty), 0) FROM order_items oi WHERE oi.item_id = items.id AND oi.deleted_at IS NULL)"
)

func (r *ItemRepository) Search(f ItemFilter) ([]entity.Item, int64, error) {
	var total int64
	if err := r.storefront(f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "items.created_at DESC, items.id DESC"
	switch f.Sort {
	case "price-low":
		order = "items.price ASC, items.id ASC"
	case "price-high":
		order = "items.price DESC, items.id DESC"
	case "rating":
		order = ratingExpr + " DESC, items.id DESC"
	case "popular":
		order = soldQtyExpr + " DESC, items.id DESC"
	}

	var items []entity.Item
	err := r.storefront(f).
		Select("items.*").
		Preload("Tenant").Preload("Category").
		Order(order).
		Limit(f.Limit).Offset((f.Page - 1) * f.Limit).
		Find(&items).Error
	return items, total, err
}

// ----- Aggregates -----

type ReviewStats struct {
	ItemID  uint
	Count   int64
	Average float64
}

func (r *ItemRepository) ReviewStats(itemIDs []uint) (map[uint]ReviewStats, error) {
	out := map[uint]ReviewStats{}
	if len(itemIDs) == 0 {
		return out, nil
	}
	var rows []ReviewStats
	err := r.DB.Model(&entity.Review{}).
		Select("item_id, COUNT(*) AS count, AVG(rating) AS average").
		Where("item_id IN ?", itemIDs).
		Group("item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ItemID] = row
	}
	return out, nil
}

// SoldCounts = จำนวนชิ้นที่ขายไปต่อสินค้า (ไม่นับ order ที่ยกเลิก)
func (r *ItemRepository) SoldCounts(itemIDs []uint) (map[uint]int64, error) {
	out := map[uint]int64{}
	if len(itemIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ItemID uint
		Sold   int64
	}
	err := r.DB.Table("order_items AS oi").
		Select("oi.item_id, SUM(oi.qty) AS sold").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("oi.item_id IN ? AND o.status <> ? AND oi.deleted_at IS NULL", itemIDs, entity.StatusCancelled).
		Group("oi.item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ItemID] = row.Sold
	}
	return out, nil
}
