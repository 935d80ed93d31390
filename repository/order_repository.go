package repository

import (
	"strings"
	"time"

	"github.com/abdout/souq/entity"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

// ---------------- Orders (CRUD หลัก) ----------------

// POST /orders → สร้าง order พร้อม items
func (r *OrderRepository) CreateOrder(tx *gorm.DB, o *entity.Order) error {
	return tx.Create(o).Error
}

// GET /orders/:id (ใช้ทั่วไป) → order + items
func (r *OrderRepository) GetOrder(orderID uint) (*entity.Order, error) {
	var o entity.Order
	if err := r.DB.Preload("Items").First(&o, orderID).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetOrderTx(tx *gorm.DB, orderID uint) (*entity.Order, error) {
	var o entity.Order
	if err := tx.Preload("Items").First(&o, orderID).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GET /orders (ลูกค้า) → order ของ user ใหม่สุดก่อน
func (r *OrderRepository) ListOrdersForUser(userID uint, status entity.OrderStatus, limit, offset int) ([]entity.Order, int64, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", userID)
		if status != "" {
			db = db.Where("status = ?", status)
		}
		return db
	}

	var total int64
	if err := r.DB.Model(&entity.Order{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []entity.Order
	err := r.DB.Scopes(scope).Preload("Items").
		Order("created_at DESC, id DESC").Limit(limit).Offset(offset).
		Find(&out).Error
	return out, total, err
}

// GET /merchant/orders → รายการ order ของร้าน
// ดึงข้อมูลตามนี้ แล้วส่งไป
type TenantOrderSummary struct {
	ID           uint               `json:"id"`
	OrderNumber  string             `json:"orderNumber"`
	UserID       uint               `json:"userId"`
	CustomerName string             `json:"customerName"`
	OrderType    string             `json:"orderType"`
	Total        decimal.Decimal    `json:"total"`
	Status       entity.OrderStatus `json:"status"`
	CreatedAt    time.Time          `json:"createdAt"`
}

func (r *OrderRepository) ListOrdersForTenant(scope func(*gorm.DB) *gorm.DB, status entity.OrderStatus, page, limit int) ([]TenantOrderSummary, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	offset := (page - 1) * limit

	// count orders
	var total int64
	dbCount := r.DB.Table("orders AS o").Where("o.deleted_at IS NULL").Scopes(scope)
	if status != "" {
		dbCount = dbCount.Where("o.status = ?", status)
	}
	if err := dbCount.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// join users → ดึงชื่อลูกค้า
	var rows []struct {
		ID        uint
		Number    string
		UserID    uint
		OrderType string
		Total     decimal.Decimal
		Status    entity.OrderStatus
		CreatedAt time.Time
		FirstName string
		LastName  string
	}
	db := r.DB.Table("orders AS o").
		Select("o.id, o.number, o.user_id, o.order_type, o.total, o.status, o.created_at, u.first_name, u.last_name").
		Joins("JOIN users u ON u.id = o.user_id").
		Where("o.deleted_at IS NULL").
		Scopes(scope)
	if status != "" {
		db = db.Where("o.status = ?", status)
	}
	if err := db.Order("o.id DESC").Limit(limit).Offset(offset).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]TenantOrderSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, TenantOrderSummary{
			ID:           r.ID,
			OrderNumber:  r.Number,
			UserID:       r.UserID,
			CustomerName: strings.TrimSpace(r.FirstName + " " + r.LastName),
			OrderType:    r.OrderType,
			Total:        r.Total,
			Status:       r.Status,
			CreatedAt:    r.CreatedAt,
		})
	}
	return out, total, nil
}

// PATCH /orders/:id/status → อัปเดตสถานะ (มี guard กันแข่งกันเปลี่ยน)
func (r *OrderRepository) UpdateStatusGuard(tx *gorm.DB, orderID uint, from, to entity.OrderStatus) (int64, error) {
	res := tx.Model(&entity.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// เก็บ checkout session ลง order ของ user คนนั้นเท่านั้น
func (r *OrderRepository) SetCheckoutSession(orderID, userID uint, sessionID string) (int64, error) {
	res := r.DB.Model(&entity.Order{}).
		Where("id = ? AND user_id = ?", orderID, userID).
		Update("checkout_session_id", sessionID)
	return res.RowsAffected, res.Error
}

// ---------------- Transitions ----------------

func (r *OrderRepository) AddTransition(tx *gorm.DB, t *entity.OrderTransition) error {
	return tx.Create(t).Error
}

func (r *OrderRepository) ListTransitions(orderID uint) ([]entity.OrderTransition, error) {
	var out []entity.OrderTransition
	err := r.DB.Where("order_id = ?", orderID).Order("id ASC").Find(&out).Error
	return out, err
}

// ---------------- Library ----------------

// HasPurchased: มี order (ที่ไม่ถูกยกเลิก) ที่มีสินค้านี้อยู่มั้ย
func (r *OrderRepository) HasPurchased(userID, itemID uint) (bool, error) {
	var cnt int64
	err := r.DB.Table("order_items AS oi").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.user_id = ? AND oi.item_id = ? AND o.status <> ?", userID, itemID, entity.StatusCancelled).
		Where("o.deleted_at IS NULL AND oi.deleted_at IS NULL").
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// PurchasedItemIDs = สินค้าไม่ซ้ำจาก order ของ user
func (r *OrderRepository) PurchasedItemIDs(userID uint, limit, offset int) ([]uint, int64, error) {
	base := func() *gorm.DB {
		return r.DB.Table("order_items AS oi").
			Joins("JOIN orders o ON o.id = oi.order_id").
			Where("o.user_id = ? AND o.status <> ?", userID, entity.StatusCancelled).
			Where("o.deleted_at IS NULL AND oi.deleted_at IS NULL")
	}

	var total int64
	if err := base().Distinct("oi.item_id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ids []uint
	err := base().
		Select("oi.item_id").
		Group("oi.item_id").
		Order("MAX(oi.id) DESC").
		Limit(limit).Offset(offset).
		Pluck("oi.item_id", &ids).Error
	return ids, total, err
}
