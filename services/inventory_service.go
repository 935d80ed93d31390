// services/inventory_service.go
package services

import (
	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/access"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InventoryService struct {
	DB      *gorm.DB
	Repo    *repository.InventoryRepository
	Items   *repository.ItemRepository
	Tenants *repository.TenantRepository
	Policy  access.Policy
	Log     *zap.Logger
}

func NewInventoryService(
	db *gorm.DB,
	repo *repository.InventoryRepository,
	items *repository.ItemRepository,
	tenants *repository.TenantRepository,
	policy access.Policy,
	log *zap.Logger,
) *InventoryService {
	return &InventoryService{DB: db, Repo: repo, Items: items, Tenants: tenants, Policy: policy, Log: log}
}

var adjustReasons = map[string]bool{
	entity.ReasonRestock:    true,
	entity.ReasonSale:       true,
	entity.ReasonDamage:     true,
	entity.ReasonAdjustment: true,
}

func normalizeReason(r string) (string, error) {
	if r == "" {
		return entity.ReasonAdjustment, nil
	}
	if !adjustReasons[r] {
		return "", apperr.BadRequestf("reason must be one of restock, sale, damage, adjustment")
	}
	return r, nil
}

// ----- Low stock -----

type StockRow struct {
	ID                uint            `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	Inventory         int             `json:"inventory"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	IsLowStock        bool            `json:"isLowStock"`
	IsOutOfStock      bool            `json:"isOutOfStock"`
}

func stockRow(it *entity.Item, threshold int) StockRow {
	return StockRow{
		ID: it.ID, Name: it.Name, Price: it.Price, Inventory: it.Inventory,
		LowStockThreshold: threshold,
		IsLowStock:        it.TrackInventory && it.Inventory > 0 && it.Inventory <= threshold,
		IsOutOfStock:      it.OutOfStock(),
	}
}

// LowStock: threshold ของสินค้าเองก่อน, ไม่มีใช้ค่าจาก query, ไม่มีอีกใช้ 10
func (s *InventoryService) LowStock(a access.Actor, tenantSlug string, threshold int) ([]StockRow, error) {
	t, err := merchantTenant(s.Tenants, s.Policy, a, tenantSlug)
	if err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = entity.DefaultLowStockThreshold
	}
	items, err := s.Items.LowStockCandidates(t.ID, threshold)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	out := make([]StockRow, 0, len(items))
	for i := range items {
		eff := threshold
		if items[i].LowStockThreshold > 0 {
			eff = items[i].LowStockThreshold
		}
		out = append(out, stockRow(&items[i], eff))
	}
	return out, nil
}

// ----- Mutations -----

// setQuantity เขียน stock ใหม่ + บันทึก adjustment ใน tx เดียวกัน
func (s *InventoryService) setQuantity(tx *gorm.DB, a access.Actor, it *entity.Item, qty int, reason string) error {
	if err := s.Items.SetStock(tx, it.ID, qty); err != nil {
		return err
	}
	return s.Repo.AddAdjustment(tx, &entity.InventoryAdjustment{
		PreviousQty: it.Inventory, NewQty: qty, Reason: reason,
		ItemID: it.ID, TenantID: it.TenantID, ActorID: a.UserID,
	})
}

type QuantityResult struct {
	ItemID           uint   `json:"itemId"`
	Name             string `json:"name"`
	PreviousQuantity int    `json:"previousQuantity"`
	NewQuantity      int    `json:"newQuantity"`
	Reason           string `json:"reason"`
}

func (s *InventoryService) SetQuantity(a access.Actor, itemID uint, qty int, reason string) (*QuantityResult, error) {
	if qty < 0 {
		return nil, apperr.BadRequestf("newQuantity must be >= 0")
	}
	reason, err := normalizeReason(reason)
	if err != nil {
		return nil, err
	}
	it, err := itemForActor(s.Items, s.Policy, a, itemID)
	if err != nil {
		return nil, err
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		cur, err := s.Items.FindByIDTx(tx, it.ID)
		if err != nil {
			return err
		}
		it = cur
		return s.setQuantity(tx, a, cur, qty, reason)
	})
	if err != nil {
		return nil, apperr.FromDB(err, "Item not found")
	}
	s.Log.Info("inventory set",
		zap.Uint("item_id", it.ID),
		zap.Int("previous", it.Inventory),
		zap.Int("new", qty),
		zap.String("reason", reason),
	)
	return &QuantityResult{ItemID: it.ID, Name: it.Name, PreviousQuantity: it.Inventory, NewQuantity: qty, Reason: reason}, nil
}

type BulkLine struct {
	ItemID      uint `json:"itemId" binding:"required"`
	NewQuantity int  `json:"newQuantity"`
}

type BulkLineResult struct {
	ItemID  uint   `json:"itemId"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	*QuantityResult
}

type BulkResult struct {
	Results      []BulkLineResult `json:"results"`
	TotalUpdates int              `json:"totalUpdates"`
	Successful   int              `json:"successful"`
	Failed       int              `json:"failed"`
}

// BulkUpdate ทำทีละบรรทัด บรรทัดที่พังไม่กระทบบรรทัดอื่น
func (s *InventoryService) BulkUpdate(a access.Actor, tenantSlug string, lines []BulkLine, reason string) (*BulkResult, error) {
	if len(lines) == 0 {
		return nil, apperr.BadRequestf("updates is required")
	}
	reason, err := normalizeReason(reason)
	if err != nil {
		return nil, err
	}
	t, err := merchantTenant(s.Tenants, s.Policy, a, tenantSlug)
	if err != nil {
		return nil, err
	}

	out := &BulkResult{TotalUpdates: len(lines)}
	for _, l := range lines {
		r := BulkLineResult{ItemID: l.ItemID}
		res, err := s.bulkLine(a, t.ID, l, reason)
		if err != nil {
			r.Error = apperr.Message(err)
			out.Failed++
		} else {
			r.Success = true
			r.QuantityResult = res
			out.Successful++
		}
		out.Results = append(out.Results, r)
	}
	return out, nil
}

func (s *InventoryService) bulkLine(a access.Actor, tenantID uint, l BulkLine, reason string) (*QuantityResult, error) {
	if l.NewQuantity < 0 {
		return nil, apperr.BadRequestf("newQuantity must be >= 0")
	}
	var res *QuantityResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		it, err := s.Items.FindByIDTx(tx, l.ItemID)
		if err != nil {
			return apperr.FromDB(err, "Item not found")
		}
		if it.TenantID != tenantID {
			return apperr.Forbiddenf("item belongs to another merchant")
		}
		if err := s.setQuantity(tx, a, it, l.NewQuantity, reason); err != nil {
			return err
		}
		res = &QuantityResult{ItemID: it.ID, Name: it.Name, PreviousQuantity: it.Inventory, NewQuantity: l.NewQuantity, Reason: reason}
		return nil
	})
	if err != nil {
		return nil, apperr.FromDB(err, "Item not found")
	}
	return res, nil
}

// ----- Summary & history -----

type InventorySummary struct {
	TotalItems          int             `json:"totalItems"`
	TrackedItems        int             `json:"trackedItems"`
	OutOfStockItems     int             `json:"outOfStockItems"`
	LowStockItems       int             `json:"lowStockItems"`
	TotalInventoryValue decimal.Decimal `json:"totalInventoryValue"`
}

func summarize(items []entity.Item) InventorySummary {
	sum := InventorySummary{TotalInventoryValue: decimal.Zero}
	for i := range items {
		it := &items[i]
		if it.IsArchived {
			continue
		}
		sum.TotalItems++
		if !it.TrackInventory {
			continue
		}
		sum.TrackedItems++
		if it.OutOfStock() {
			sum.OutOfStockItems++
		}
		if it.LowStock() {
			sum.LowStockItems++
		}
		sum.TotalInventoryValue = sum.TotalInventoryValue.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Inventory))))
	}
	return sum
}

func (s *InventoryService) Summary(a access.Actor, tenantSlug string) (*InventorySummary, error) {
	t, err := merchantTenant(s.Tenants, s.Policy, a, tenantSlug)
	if err != nil {
		return nil, err
	}
	items, err := s.Items.ListForTenant(t.ID)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	sum := summarize(items)
	return &sum, nil
}

func (s *InventoryService) History(a access.Actor, itemID uint, limit int) ([]entity.InventoryAdjustment, error) {
	it, err := itemForActor(s.Items, s.Policy, a, itemID)
	if err != nil {
		return nil, err
	}
	rows, err := s.Repo.ListForItem(it.ID, limit)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return rows, nil
}
