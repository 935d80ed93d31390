// services/item_service.go
package services

import (
	"context"
	"math"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/access"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/pkg/blob"
	"github.com/abdout/souq/repository"
	"github.com/abdout/souq/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultItemLimit = 12

type ItemService struct {
	Repo       *repository.ItemRepository
	Tenants    *repository.TenantRepository
	Categories *repository.CategoryRepository
	Reviews    *repository.ReviewRepository
	Stock      *InventoryService
	Policy     access.Policy
	Blob       blob.Store
	Log        *zap.Logger
}

func NewItemService(
	repo *repository.ItemRepository,
	tenants *repository.TenantRepository,
	categories *repository.CategoryRepository,
	reviews *repository.ReviewRepository,
	stock *InventoryService,
	policy access.Policy,
	store blob.Store,
	log *zap.Logger,
) *ItemService {
	return &ItemService{Repo: repo, Tenants: tenants, Categories: categories, Reviews: reviews, Stock: stock, Policy: policy, Blob: store, Log: log}
}

// itemKindFor: ประเภทสินค้าตามประเภทร้าน
func itemKindFor(businessType string) string {
	switch businessType {
	case entity.BusinessPharmacy:
		return entity.ItemMedicine
	case entity.BusinessGrocery:
		return entity.ItemGrocery
	default:
		return entity.ItemFood
	}
}

// ----- Cards (storefront rows) -----

type StockStatus struct {
	TrackInventory bool `json:"trackInventory"`
	Inventory      int  `json:"inventory"`
	IsLowStock     bool `json:"isLowStock"`
	IsOutOfStock   bool `json:"isOutOfStock"`
}

type ReviewSummary struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

type ItemCard struct {
	ID           uint             `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Price        decimal.Decimal  `json:"price"`
	Unit         string           `json:"unit"`
	ImageURL     string           `json:"imageUrl"`
	BusinessType string           `json:"businessType"`
	Category     *entity.Category `json:"category,omitempty"`
	TenantID     uint             `json:"tenantId"`
	TenantName   string           `json:"tenantName"`
	TenantSlug   string           `json:"tenantSlug"`
	Stock        StockStatus      `json:"stockStatus"`
	Reviews      ReviewSummary    `json:"reviewStats"`
	OrderCount   int64            `json:"orderCount"`
}

func roundOne(f float64) float64 { return math.Round(f*10) / 10 }

func stockOf(it *entity.Item) StockStatus {
	return StockStatus{
		TrackInventory: it.TrackInventory,
		Inventory:      it.Inventory,
		IsLowStock:     it.LowStock(),
		IsOutOfStock:   it.OutOfStock(),
	}
}

// buildCards แนบ stock / review stats / ยอดขาย ให้แต่ละสินค้า (query รวมครั้งเดียว)
func buildCards(repo *repository.ItemRepository, items []entity.Item) ([]ItemCard, error) {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	stats, err := repo.ReviewStats(ids)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	sold, err := repo.SoldCounts(ids)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}

	out := make([]ItemCard, 0, len(items))
	for i := range items {
		it := &items[i]
		st := stats[it.ID]
		out = append(out, ItemCard{
			ID: it.ID, Name: it.Name, Description: it.Description, Price: it.Price,
			Unit: it.Unit, ImageURL: it.ImageURL, BusinessType: it.BusinessType, Category: it.Category,
			TenantID: it.TenantID, TenantName: it.Tenant.Name, TenantSlug: it.Tenant.Slug,
			Stock:      stockOf(it),
			Reviews:    ReviewSummary{Count: st.Count, Average: roundOne(st.Average)},
			OrderCount: sold[it.ID],
		})
	}
	return out, nil
}

// ----- Storefront -----

type ItemPage struct {
	Items      []ItemCard `json:"items"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"totalPages"`
	HasMore    bool       `json:"hasMore"`
}

var itemSorts = map[string]bool{"": true, "newest": true, "price-low": true, "price-high": true, "rating": true, "popular": true}

func (s *ItemService) List(f repository.ItemFilter) (*ItemPage, error) {
	if !itemSorts[f.Sort] {
		return nil, apperr.BadRequestf("unknown sort %q", f.Sort)
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = DefaultItemLimit
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, apperr.BadRequestf("minPrice must not exceed maxPrice")
	}

	items, total, err := s.Repo.Search(f)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	cards, err := buildCards(s.Repo, items)
	if err != nil {
		return nil, err
	}
	pages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	return &ItemPage{
		Items: cards, Total: total, Page: f.Page, Limit: f.Limit,
		TotalPages: pages, HasMore: f.Page < pages,
	}, nil
}

type ItemDetail struct {
	ItemCard
	PrescriptionRequired bool                   `json:"prescriptionRequired"`
	ReviewList           []repository.ReviewRow `json:"reviews"`
}

// Detail: สินค้าที่ archive/private/ร้านปิด เห็นได้เฉพาะสมาชิกร้าน
func (s *ItemService) Detail(a access.Actor, id uint) (*ItemDetail, error) {
	it, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, apperr.FromDB(err, "Item not found or unavailable")
	}
	t, err := s.Tenants.FindByID(it.TenantID)
	if err != nil {
		return nil, apperr.FromDB(err, "Item not found or unavailable")
	}
	it.Tenant = *t
	hidden := it.IsArchived || it.IsPrivate || !t.IsActive
	if hidden && s.Policy.CanAccessTenant(a, it.TenantID) != nil {
		return nil, apperr.NotFoundf("Item not found or unavailable")
	}

	cards, err := buildCards(s.Repo, []entity.Item{*it})
	if err != nil {
		return nil, err
	}
	reviews, err := s.Reviews.ListForItem(it.ID)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return &ItemDetail{ItemCard: cards[0], PrescriptionRequired: it.PrescriptionRequired, ReviewList: reviews}, nil
}

// ----- Merchant CRUD -----

type ItemInput struct {
	Name                 *string          `json:"name"`
	Description          *string          `json:"description"`
	Price                *decimal.Decimal `json:"price"`
	Unit                 *string          `json:"unit"`
	CategoryID           *uint            `json:"categoryId"`
	Inventory            *int             `json:"inventory"`
	TrackInventory       *bool            `json:"trackInventory"`
	LowStockThreshold    *int             `json:"lowStockThreshold"`
	PrescriptionRequired *bool            `json:"prescriptionRequired"`
	IsPrivate            *bool            `json:"isPrivate"`
}

func (in *ItemInput) validate() error {
	if in.Name != nil && *in.Name == "" {
		return apperr.BadRequestf("name must not be empty")
	}
	if in.Price != nil && !in.Price.IsPositive() {
		return apperr.BadRequestf("price must be > 0")
	}
	if in.Inventory != nil && *in.Inventory < 0 {
		return apperr.BadRequestf("inventory must be >= 0")
	}
	if in.LowStockThreshold != nil && *in.LowStockThreshold < 0 {
		return apperr.BadRequestf("lowStockThreshold must be >= 0")
	}
	return nil
}

// หมวดต้องเป็นหมวดกลาง หรือหมวดของร้านเดียวกัน
func (s *ItemService) checkCategory(id *uint, tenantID uint) error {
	if id == nil {
		return nil
	}
	c, err := s.Categories.FindByID(*id)
	if err != nil {
		return apperr.FromDB(err, "Category not found")
	}
	if c.TenantID != nil && *c.TenantID != tenantID {
		return apperr.BadRequestf("category belongs to another merchant")
	}
	return nil
}

func (s *ItemService) Create(a access.Actor, tenantSlug string, in *ItemInput) (*entity.Item, error) {
	t, err := merchantTenant(s.Tenants, s.Policy, a, tenantSlug)
	if err != nil {
		return nil, err
	}
	if !t.CanSell() {
		return nil, errNotVerified
	}
	if in.Name == nil || in.Price == nil {
		return nil, apperr.BadRequestf("name and price are required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(in.CategoryID, t.ID); err != nil {
		return nil, err
	}

	it := &entity.Item{
		Name:         *in.Name,
		Price:        *in.Price,
		BusinessType: itemKindFor(t.BusinessType),
		Unit:         "piece",
		IsAvailable:  true,
		TenantID:     t.ID,
		CategoryID:   in.CategoryID,
	}
	if in.Description != nil {
		it.Description = *in.Description
	}
	if in.Unit != nil && *in.Unit != "" {
		it.Unit = *in.Unit
	}
	if in.Inventory != nil {
		it.Inventory = *in.Inventory
	}
	if in.TrackInventory != nil {
		it.TrackInventory = *in.TrackInventory
	}
	if in.LowStockThreshold != nil {
		it.LowStockThreshold = *in.LowStockThreshold
	}
	if in.PrescriptionRequired != nil {
		it.PrescriptionRequired = *in.PrescriptionRequired
	}
	if in.IsPrivate != nil {
		it.IsPrivate = *in.IsPrivate
	}
	if err := s.Repo.Create(it); err != nil {
		return nil, apperr.FromDB(err, "")
	}
	s.Log.Info("item created", zap.Uint("item_id", it.ID), zap.Uint("tenant_id", t.ID))
	return it, nil
}

func (s *ItemService) Update(a access.Actor, id uint, in *ItemInput) (*entity.Item, error) {
	it, err := itemForActor(s.Repo, s.Policy, a, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(in.CategoryID, it.TenantID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.Unit != nil {
		updates["unit"] = *in.Unit
	}
	if in.CategoryID != nil {
		updates["category_id"] = *in.CategoryID
	}
	if in.TrackInventory != nil {
		updates["track_inventory"] = *in.TrackInventory
	}
	if in.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *in.LowStockThreshold
	}
	if in.PrescriptionRequired != nil {
		updates["prescription_required"] = *in.PrescriptionRequired
	}
	if in.IsPrivate != nil {
		updates["is_private"] = *in.IsPrivate
	}
	if len(updates) == 0 && in.Inventory == nil {
		return it, nil
	}

	// stock ที่แก้ผ่านหน้าแก้สินค้าต้องลง ledger เหมือน PATCH /inventory
	err = s.Stock.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := s.Repo.UpdateTx(tx, it.ID, updates); err != nil {
				return err
			}
		}
		if in.Inventory == nil {
			return nil
		}
		cur, err := s.Repo.FindByIDTx(tx, it.ID)
		if err != nil {
			return err
		}
		if cur.Inventory == *in.Inventory {
			return nil
		}
		return s.Stock.setQuantity(tx, a, cur, *in.Inventory, entity.ReasonAdjustment)
	})
	if err != nil {
		return nil, apperr.FromDB(err, "Item not found")
	}
	return s.reload(it.ID)
}

func (s *ItemService) reload(id uint) (*entity.Item, error) {
	it, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, apperr.FromDB(err, "Item not found")
	}
	return it, nil
}

type AvailabilityResult struct {
	Item    *entity.Item `json:"item"`
	Message string       `json:"message"`
}

func (s *ItemService) ToggleAvailability(a access.Actor, id uint) (*AvailabilityResult, error) {
	it, err := itemForActor(s.Repo, s.Policy, a, id)
	if err != nil {
		return nil, err
	}
	next := !it.IsAvailable
	if err := s.Repo.Update(it.ID, map[string]any{"is_available": next}); err != nil {
		return nil, apperr.FromDB(err, "")
	}
	it.IsAvailable = next
	msg := "Item is now unavailable"
	if next {
		msg = "Item is now available"
	}
	return &AvailabilityResult{Item: it, Message: msg}, nil
}

func (s *ItemService) Archive(a access.Actor, id uint, archived bool) (*entity.Item, error) {
	it, err := itemForActor(s.Repo, s.Policy, a, id)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Update(it.ID, map[string]any{"is_archived": archived}); err != nil {
		return nil, apperr.FromDB(err, "")
	}
	it.IsArchived = archived
	return it, nil
}

// UploadImage รับรูป base64 (data URL ได้) แล้วเก็บลง blob store
func (s *ItemService) UploadImage(ctx context.Context, a access.Actor, id uint, b64 string) (*entity.Item, error) {
	it, err := itemForActor(s.Repo, s.Policy, a, id)
	if err != nil {
		return nil, err
	}
	data, ct, err := blob.DecodeBase64(b64)
	if err != nil {
		return nil, apperr.BadRequestf("invalid image: %v", err)
	}
	url, err := s.Blob.Put(ctx, "items", ct, data)
	if err != nil {
		return nil, apperr.Wrap(apperr.BadRequest, "upload failed", err)
	}
	if err := s.Repo.Update(it.ID, map[string]any{"image_url": url}); err != nil {
		return nil, apperr.FromDB(err, "")
	}
	it.ImageURL = url
	return it, nil
}

// ListForMerchant: สินค้าทั้งหมดของร้าน (รวม archive / private)
func (s *ItemService) ListForMerchant(a access.Actor, tenantSlug string) ([]ItemCard, error) {
	t, err := merchantTenant(s.Tenants, s.Policy, a, tenantSlug)
	if err != nil {
		return nil, err
	}
	items, err := s.Repo.ListForTenant(t.ID)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	for i := range items {
		items[i].Tenant = *t
	}
	return buildCards(s.Repo, items)
}

// ----- Categories -----

func (s *ItemService) ListCategories(businessType, tenantSlug string) ([]entity.Category, error) {
	var tenantID *uint
	if tenantSlug != "" {
		t, err := s.Tenants.FindBySlug(tenantSlug)
		if err != nil {
			return nil, apperr.FromDB(err, "Tenant not found")
		}
		tenantID = &t.ID
	}
	cats, err := s.Categories.ListTopLevel(businessType, tenantID)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return cats, nil
}

type CategoryInput struct {
	Name     string `json:"name" binding:"required"`
	Slug     string `json:"slug"`
	ParentID *uint  `json:"parentId"`
}

// CreateCategory: หมวดของร้าน (slug ไม่ซ้ำภายในร้าน)
func (s *ItemService) CreateCategory(a access.Actor, tenantSlug string, in *CategoryInput) (*entity.Category, error) {
	t, err := merchantTenant(s.Tenants, s.Policy, a, tenantSlug)
	if err != nil {
		return nil, err
	}
	slug := in.Slug
	if slug == "" {
		slug = utils.GenerateSlug(in.Name)
	}
	if slug == "" {
		return nil, apperr.BadRequestf("category name must contain letters or digits")
	}
	exists, err := s.Categories.SlugExists(slug, &t.ID)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	if exists {
		return nil, apperr.BadRequestf("category slug %q already exists", slug)
	}
	if in.ParentID != nil {
		if err := s.checkCategory(in.ParentID, t.ID); err != nil {
			return nil, err
		}
	}
	c := &entity.Category{Name: in.Name, Slug: slug, BusinessType: t.BusinessType, TenantID: &t.ID, ParentID: in.ParentID}
	if err := s.Categories.Create(c); err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return c, nil
}
