// services/checkout_service.go
package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abdout/souq/configs"
	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/access"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/pkg/gateway"
	"github.com/abdout/souq/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CheckoutService struct {
	DB      *gorm.DB
	Items   *repository.ItemRepository
	Tenants *repository.TenantRepository
	Users   *repository.UserRepository
	Orders  *repository.OrderRepository
	Gateway gateway.Gateway
	Cfg     *configs.Config
	Log     *zap.Logger
}

func NewCheckoutService(
	db *gorm.DB,
	items *repository.ItemRepository,
	tenants *repository.TenantRepository,
	users *repository.UserRepository,
	orders *repository.OrderRepository,
	gw gateway.Gateway,
	cfg *configs.Config,
	log *zap.Logger,
) *CheckoutService {
	return &CheckoutService{DB: db, Items: items, Tenants: tenants, Users: users, Orders: orders, Gateway: gw, Cfg: cfg, Log: log}
}

type PurchaseLine struct {
	ItemID   uint `json:"itemId" binding:"required"`
	Quantity int  `json:"quantity"`
}

type PurchaseReq struct {
	TenantSlug string         `json:"tenantSlug" binding:"required"`
	Items      []PurchaseLine `json:"items" binding:"required,min=1"`
	OrderID    *uint          `json:"orderId"`
}

type PurchaseRes struct {
	URL            string `json:"url"`
	SessionID      string `json:"sessionId"`
	AmountCents    int64  `json:"amount"`
	ApplicationFee int64  `json:"applicationFee"`
	Currency       string `json:"currency"`
}

// toCents แปลงราคาเป็นหน่วยย่อย (สตางค์/เซนต์)
func toCents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// platformFee = round(total × pct / 100)
func platformFee(totalCents int64, pct float64) int64 {
	return int64(math.Round(float64(totalCents) * pct / 100))
}

// Purchase สร้าง checkout session บนบัญชีของร้าน แพลตฟอร์มหักค่าธรรมเนียมผ่าน application fee
func (s *CheckoutService) Purchase(ctx context.Context, a access.Actor, email string, req *PurchaseReq) (*PurchaseRes, error) {
	if len(req.Items) == 0 {
		return nil, apperr.BadRequestf("items is required")
	}
	lines := make([]OrderLineIn, 0, len(req.Items))
	for _, l := range req.Items {
		if l.Quantity < 0 {
			return nil, apperr.BadRequestf("quantity must be at least 1")
		}
		q := l.Quantity
		if q == 0 {
			q = 1
		}
		lines = append(lines, OrderLineIn{ItemID: l.ItemID, Quantity: q})
	}
	lines = mergeLines(lines)

	// ร้านก่อน: ร้านที่ยังไม่ยืนยันตัวตนขายไม่ได้ ไม่ว่าสินค้าจะถูกต้องหรือไม่
	tenant, err := s.Tenants.FindBySlug(req.TenantSlug)
	if err != nil {
		return nil, apperr.FromDB(err, "Tenant not found")
	}
	if !tenant.CanSell() {
		return nil, errNotVerified
	}

	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}
	items, err := s.Items.FindForTenant(s.DB, ids, tenant.ID)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	if len(items) != len(ids) {
		return nil, apperr.NotFoundf("Items not found")
	}
	byID := make(map[uint]entity.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	if req.OrderID != nil {
		o, err := s.Orders.GetOrder(*req.OrderID)
		if err != nil {
			return nil, apperr.FromDB(err, "Order not found")
		}
		if o.UserID != a.UserID {
			return nil, apperr.Forbiddenf("order belongs to another customer")
		}
		if o.TenantID != tenant.ID {
			return nil, apperr.BadRequestf("order was placed with another merchant")
		}
	}

	var total int64
	params := gateway.SessionParams{
		ConnectedAccount: tenant.StripeAccountID,
		CustomerEmail:    email,
		Currency:         s.Cfg.Stripe.Currency,
		SuccessURL:       s.Cfg.TenantURL(tenant.Slug) + "/checkout?success=true",
		CancelURL:        s.Cfg.TenantURL(tenant.Slug) + "/checkout?cancel=true",
		Metadata:         map[string]string{"userId": strconv.FormatUint(uint64(a.UserID), 10)},
	}
	for _, l := range lines {
		it := byID[l.ItemID]
		unit := toCents(it.Price)
		total += unit * int64(l.Quantity)
		params.LineItems = append(params.LineItems, gateway.LineItem{
			Name:       it.Name,
			UnitAmount: unit,
			Quantity:   int64(l.Quantity),
			Metadata: map[string]string{
				"itemId":   strconv.FormatUint(uint64(it.ID), 10),
				"tenantId": strconv.FormatUint(uint64(tenant.ID), 10),
			},
		})
	}
	params.ApplicationFee = platformFee(total, s.Cfg.Platform.FeePercentage)
	if req.OrderID != nil {
		params.Metadata["orderId"] = strconv.FormatUint(uint64(*req.OrderID), 10)
		params.IdempotencyKey = fmt.Sprintf("checkout-order-%d", *req.OrderID)
	} else {
		params.IdempotencyKey = "checkout-" + uuid.NewString()
	}

	sess, err := s.Gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		s.Log.Error("checkout session failed", zap.Uint("tenant_id", tenant.ID), zap.Error(err))
		return nil, apperr.Wrap(apperr.Internal, "Failed to create checkout session", err)
	}

	if req.OrderID != nil {
		if _, err := s.Orders.SetCheckoutSession(*req.OrderID, a.UserID, sess.ID); err != nil {
			// session ถูกสร้างไปแล้ว log ไว้แต่ไม่ fail
			s.Log.Warn("store checkout session failed", zap.Uint("order_id", *req.OrderID), zap.Error(err))
		}
	}

	s.Log.Info("checkout session created",
		zap.Uint("tenant_id", tenant.ID),
		zap.String("session_id", sess.ID),
		zap.Int64("amount", total),
		zap.Int64("fee", params.ApplicationFee),
	)
	return &PurchaseRes{
		URL: sess.URL, SessionID: sess.ID, AmountCents: total,
		ApplicationFee: params.ApplicationFee, Currency: params.Currency,
	}, nil
}

// Verify ขอ link ยืนยันบัญชีรับเงินใหม่ของร้านผู้เรียก
func (s *CheckoutService) Verify(ctx context.Context, a access.Actor) (string, error) {
	u, err := s.Users.FindByID(a.UserID)
	if err != nil {
		return "", apperr.FromDB(err, "User not found")
	}
	if u.TenantID == nil {
		return "", apperr.NotFoundf("Tenant not found")
	}
	t, err := s.Tenants.FindByID(*u.TenantID)
	if err != nil {
		return "", apperr.FromDB(err, "Tenant not found")
	}
	adminURL := strings.TrimRight(s.Cfg.App.URL, "/") + "/admin"
	link, err := s.Gateway.CreateAccountLink(ctx, t.StripeAccountID, adminURL, adminURL)
	if err != nil {
		s.Log.Error("account link failed", zap.Uint("tenant_id", t.ID), zap.Error(err))
		return "", apperr.Wrap(apperr.Internal, "Failed to create verification link", err)
	}
	return link, nil
}

type CheckoutItems struct {
	Items      []ItemCard      `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// GetItems: สินค้าในตะกร้า (ยังไม่ archive) พร้อมราคารวม
func (s *CheckoutService) GetItems(ids []uint) (*CheckoutItems, error) {
	uniq := make([]uint, 0, len(ids))
	seen := map[uint]bool{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	if len(uniq) == 0 {
		return &CheckoutItems{Items: []ItemCard{}, TotalPrice: decimal.Zero}, nil
	}
	items, err := s.Items.FindActiveByIDs(uniq)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	if len(items) != len(uniq) {
		return nil, apperr.NotFoundf("Items not found")
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price)
	}
	cards, err := buildCards(s.Items, items)
	if err != nil {
		return nil, err
	}
	return &CheckoutItems{Items: cards, TotalPrice: total}, nil
}
