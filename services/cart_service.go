// services/cart_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/repository"
	"github.com/abdout/souq/store"

	"go.uber.org/zap"
)

// CartService เก็บตะกร้าใน redis แยกต่อ user ต่อร้าน
type CartService struct {
	KV      store.KV
	Items   *repository.ItemRepository
	Tenants *repository.TenantRepository
	TTL     time.Duration
	Log     *zap.Logger
}

func NewCartService(kv store.KV, items *repository.ItemRepository, tenants *repository.TenantRepository, ttl time.Duration, log *zap.Logger) *CartService {
	return &CartService{KV: kv, Items: items, Tenants: tenants, TTL: ttl, Log: log}
}

func cartKey(userID uint, slug string) string {
	return fmt.Sprintf("cart:%d:%s", userID, slug)
}

func emptyCart(slug string) *entity.Cart {
	return &entity.Cart{Version: entity.CartVersion, TenantSlug: slug, Items: []entity.CartItem{}, OrderType: entity.OrderTypeDelivery}
}

// MigrateCart แปลงตะกร้ารูปแบบเก่า (bookIds แบบแบน) เป็น items; คืน true ถ้ามีการแปลง
func MigrateCart(c *entity.Cart) bool {
	if c.Version >= entity.CartVersion {
		return false
	}
	if len(c.Items) == 0 && len(c.BookIDs) > 0 {
		// bookIds เดิมเป็นชุดของ id แต่ละตัวได้ quantity 1 (id ซ้ำเก็บบรรทัดเดียว)
		seen := map[uint]bool{}
		for _, id := range c.BookIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			c.Items = append(c.Items, entity.CartItem{ItemID: id, Quantity: 1})
		}
	}
	if c.Items == nil {
		c.Items = []entity.CartItem{}
	}
	if c.OrderType == "" {
		c.OrderType = entity.OrderTypeDelivery
	}
	c.BookIDs = nil
	c.Version = entity.CartVersion
	return true
}

func (s *CartService) load(ctx context.Context, userID uint, slug string) (*entity.Cart, error) {
	raw, err := s.KV.Get(ctx, cartKey(userID, slug))
	if errors.Is(err, store.ErrMiss) {
		return emptyCart(slug), nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "cart store unavailable", err)
	}
	var c entity.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		// ข้อมูลเสีย เริ่มตะกร้าใหม่
		s.Log.Warn("discard unreadable cart", zap.Uint("user_id", userID), zap.String("tenant", slug), zap.Error(err))
		return emptyCart(slug), nil
	}
	if c.TenantSlug == "" {
		c.TenantSlug = slug
	}
	if MigrateCart(&c) {
		if err := s.save(ctx, userID, &c); err != nil {
			return nil, err
		}
		s.Log.Info("cart migrated", zap.Uint("user_id", userID), zap.String("tenant", slug), zap.Int("items", len(c.Items)))
	}
	return &c, nil
}

func (s *CartService) save(ctx context.Context, userID uint, c *entity.Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "encode cart", err)
	}
	if err := s.KV.Set(ctx, cartKey(userID, c.TenantSlug), string(b), s.TTL); err != nil {
		return apperr.Wrap(apperr.Internal, "cart store unavailable", err)
	}
	return nil
}

// mutate = load -> fn -> save
func (s *CartService) mutate(ctx context.Context, userID uint, slug string, fn func(c *entity.Cart) error) (*entity.Cart, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, apperr.BadRequestf("tenant slug is required")
	}
	c, err := s.load(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.save(ctx, userID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func lineIndex(c *entity.Cart, itemID uint) int {
	for i, l := range c.Items {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}

// ----- Operations -----

func (s *CartService) Get(ctx context.Context, userID uint, slug string) (*entity.Cart, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, apperr.BadRequestf("tenant slug is required")
	}
	return s.load(ctx, userID, slug)
}

// AddItem: สินค้าต้องเป็นของร้านนี้และยังขายอยู่, มีอยู่แล้วให้บวกจำนวน
func (s *CartService) AddItem(ctx context.Context, userID uint, slug string, itemID uint, qty int, note string) (*entity.Cart, error) {
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, apperr.BadRequestf("quantity must be at least 1")
	}
	t, err := s.Tenants.FindBySlug(slug)
	if err != nil {
		return nil, apperr.FromDB(err, "Merchant not found")
	}
	it, err := s.Items.FindByID(itemID)
	if err != nil {
		return nil, apperr.FromDB(err, "Item not found or unavailable")
	}
	if it.TenantID != t.ID || it.IsArchived || !it.IsAvailable {
		return nil, apperr.NotFoundf("Item not found or unavailable")
	}

	return s.mutate(ctx, userID, slug, func(c *entity.Cart) error {
		if i := lineIndex(c, itemID); i >= 0 {
			c.Items[i].Quantity += qty
			if note != "" {
				c.Items[i].SpecialInstructions = note
			}
			return nil
		}
		c.Items = append(c.Items, entity.CartItem{ItemID: itemID, Quantity: qty, SpecialInstructions: note})
		return nil
	})
}

func (s *CartService) RemoveItem(ctx context.Context, userID uint, slug string, itemID uint) (*entity.Cart, error) {
	return s.mutate(ctx, userID, slug, func(c *entity.Cart) error {
		if i := lineIndex(c, itemID); i >= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
		return nil
	})
}

// UpdateQuantity: <= 0 = เอาออก
func (s *CartService) UpdateQuantity(ctx context.Context, userID uint, slug string, itemID uint, qty int) (*entity.Cart, error) {
	return s.mutate(ctx, userID, slug, func(c *entity.Cart) error {
		i := lineIndex(c, itemID)
		if i < 0 {
			return apperr.NotFoundf("Item is not in the cart")
		}
		if qty <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
		c.Items[i].Quantity = qty
		return nil
	})
}

func (s *CartService) UpdateInstructions(ctx context.Context, userID uint, slug string, itemID uint, note string) (*entity.Cart, error) {
	return s.mutate(ctx, userID, slug, func(c *entity.Cart) error {
		i := lineIndex(c, itemID)
		if i < 0 {
			return apperr.NotFoundf("Item is not in the cart")
		}
		c.Items[i].SpecialInstructions = note
		return nil
	})
}

func (s *CartService) SetDeliveryAddress(ctx context.Context, userID uint, slug string, addr *entity.Address) (*entity.Cart, error) {
	return s.mutate(ctx, userID, slug, func(c *entity.Cart) error {
		c.DeliveryAddress = addr
		return nil
	})
}

func (s *CartService) SetOrderType(ctx context.Context, userID uint, slug, orderType string) (*entity.Cart, error) {
	if orderType != entity.OrderTypeDelivery && orderType != entity.OrderTypePickup {
		return nil, apperr.BadRequestf("orderType must be delivery or pickup")
	}
	return s.mutate(ctx, userID, slug, func(c *entity.Cart) error {
		c.OrderType = orderType
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, userID uint, slug string) error {
	if err := s.KV.Del(ctx, cartKey(userID, slug)); err != nil {
		return apperr.Wrap(apperr.Internal, "cart store unavailable", err)
	}
	return nil
}

// ClearAll ล้างตะกร้าทุกร้านของ user
func (s *CartService) ClearAll(ctx context.Context, userID uint) (int, error) {
	keys, err := s.KV.Keys(ctx, fmt.Sprintf("cart:%d:*", userID))
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "cart store unavailable", err)
	}
	if err := s.KV.Del(ctx, keys...); err != nil {
		return 0, apperr.Wrap(apperr.Internal, "cart store unavailable", err)
	}
	return len(keys), nil
}
