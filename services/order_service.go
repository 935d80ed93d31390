package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/access"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/pkg/geo"
	"github.com/abdout/souq/pkg/notify"
	"github.com/abdout/souq/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderService struct {
	DB        *gorm.DB
	Repo      *repository.OrderRepository
	Items     *repository.ItemRepository
	Tenants   *repository.TenantRepository
	Users     *repository.UserRepository
	Inventory *repository.InventoryRepository
	Policy    access.Policy
	Notifier  notify.Notifier
	Log       *zap.Logger

	Now func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	repo *repository.OrderRepository,
	items *repository.ItemRepository,
	tenants *repository.TenantRepository,
	users *repository.UserRepository,
	inventory *repository.InventoryRepository,
	policy access.Policy,
	notifier notify.Notifier,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		DB: db, Repo: repo, Items: items, Tenants: tenants, Users: users, Inventory: inventory,
		Policy: policy, Notifier: notifier, Log: log, Now: time.Now,
	}
}

// ----- DTOs from Controller -----
type OrderLineIn struct {
	ItemID              uint   `json:"itemId" binding:"required"`
	Quantity            int    `json:"quantity" binding:"required,min=1"`
	SpecialInstructions string `json:"specialInstructions"`
}

type CreateOrderReq struct {
	TenantSlug          string         `json:"tenantSlug" binding:"required"`
	Items               []OrderLineIn  `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress     entity.Address `json:"deliveryAddress"`
	OrderType           string         `json:"orderType"`
	SpecialInstructions string         `json:"specialInstructions"`
	PaymentMethod       string         `json:"paymentMethod"`
}

type CreateOrderRes struct {
	OrderID           uint            `json:"orderId"`
	OrderNumber       string          `json:"orderNumber"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	DeliveryFee       decimal.Decimal `json:"deliveryFee"`
	Total             decimal.Decimal `json:"total"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
	PaymentRequired   bool            `json:"paymentRequired"`
	Merchant          MerchantSummary `json:"merchant"`
}

// mergeLines รวมบรรทัดที่ itemId ซ้ำกัน (คงลำดับเดิม)
func mergeLines(lines []OrderLineIn) []OrderLineIn {
	idx := map[uint]int{}
	out := make([]OrderLineIn, 0, len(lines))
	for _, l := range lines {
		if i, ok := idx[l.ItemID]; ok {
			out[i].Quantity += l.Quantity
			if out[i].SpecialInstructions == "" {
				out[i].SpecialInstructions = l.SpecialInstructions
			}
			continue
		}
		idx[l.ItemID] = len(out)
		out = append(out, l)
	}
	return out
}

func newOrderNumber(now time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), id[:8])
}

type shortLine struct {
	name                 string
	requested, available int
}

func insufficient(lines []shortLine) error {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s (requested: %d, available: %d)", l.name, l.requested, l.available))
	}
	return apperr.BadRequestf("Insufficient inventory: %s", strings.Join(parts, ", "))
}

// ----- Create -----

// CreateDeliveryOrder: ราคาเอาจาก DB เสมอ, เช็ค stock ทุกบรรทัดก่อนแล้วค่อยตัด (ทั้งหมดใน transaction เดียว)
func (s *OrderService) CreateDeliveryOrder(a access.Actor, req *CreateOrderReq) (*CreateOrderRes, error) {
	if len(req.Items) == 0 {
		return nil, apperr.BadRequestf("items is required")
	}
	for _, l := range req.Items {
		if l.Quantity < 1 {
			return nil, apperr.BadRequestf("quantity must be at least 1")
		}
	}
	orderType := req.OrderType
	if orderType == "" {
		orderType = entity.OrderTypeDelivery
	}
	if orderType != entity.OrderTypeDelivery && orderType != entity.OrderTypePickup {
		return nil, apperr.BadRequestf("orderType must be delivery or pickup")
	}
	payment := req.PaymentMethod
	if payment == "" {
		payment = "card"
	}
	if payment != "card" && payment != "cash" {
		return nil, apperr.BadRequestf("paymentMethod must be card or cash")
	}
	if orderType == entity.OrderTypeDelivery && req.DeliveryAddress.Coordinates == nil {
		return nil, apperr.BadRequestf("delivery address coordinates are required")
	}
	addr := req.DeliveryAddress
	if addr.Country == "" {
		addr.Country = "Saudi Arabia"
	}

	tenant, err := s.Tenants.FindBySlug(req.TenantSlug)
	if err != nil {
		return nil, apperr.FromDB(err, "Merchant not found")
	}
	if !tenant.IsActive {
		return nil, apperr.BadRequestf("Merchant is currently not accepting orders")
	}
	if !tenant.CanSell() {
		return nil, errNotVerified
	}

	lines := mergeLines(req.Items)
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}

	now := s.Now()
	var order entity.Order
	var quote Quote

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		items, err := s.Items.FindForTenant(tx, ids, tenant.ID)
		if err != nil {
			return err
		}
		byID := make(map[uint]entity.Item, len(items))
		for _, it := range items {
			if it.IsAvailable {
				byID[it.ID] = it
			}
		}
		if len(byID) != len(lines) {
			return apperr.NotFoundf("Some items were not found or are not available")
		}

		// เช็คครบทุกบรรทัดก่อน ค่อยตัด stock
		var short []shortLine
		subtotal := decimal.Zero
		for _, l := range lines {
			it := byID[l.ItemID]
			if !it.Available(l.Quantity) {
				short = append(short, shortLine{it.Name, l.Quantity, it.Inventory})
			}
			subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		if len(short) > 0 {
			return insufficient(short)
		}

		if orderType == entity.OrderTypeDelivery {
			c := addr.Coordinates
			quote = QuoteDelivery(tenant, geo.Point{Lat: c.Lat, Lng: c.Lng}, subtotal)
			if !quote.CanDeliver {
				return apperr.BadRequestf("Cannot deliver to this address")
			}
		} else {
			quote = Quote{CanDeliver: true, DeliveryFee: decimal.Zero, EstimatedDeliveryTime: PreparationTime(tenant.BusinessType)}
		}

		eta := now.Add(time.Duration(quote.EstimatedDeliveryTime) * time.Minute)
		order = entity.Order{
			Number:              newOrderNumber(now),
			Status:              entity.StatusPending,
			OrderType:           orderType,
			DeliveryAddress:     datatypes.NewJSONType(addr),
			Subtotal:            subtotal,
			DeliveryFee:         quote.DeliveryFee,
			Total:               subtotal.Add(quote.DeliveryFee),
			EstimatedDelivery:   &eta,
			SpecialInstructions: req.SpecialInstructions,
			PaymentMethod:       payment,
			StripeAccountID:     tenant.StripeAccountID,
			UserID:              a.UserID,
			TenantID:            tenant.ID,
		}
		for _, l := range lines {
			it := byID[l.ItemID]
			qty := decimal.NewFromInt(int64(l.Quantity))
			order.Items = append(order.Items, entity.OrderItem{
				Name:                it.Name,
				Qty:                 l.Quantity,
				UnitPrice:           it.Price,
				Total:               it.Price.Mul(qty),
				SpecialInstructions: l.SpecialInstructions,
				ItemID:              it.ID,
			})
		}
		if err := s.Repo.CreateOrder(tx, &order); err != nil {
			return err
		}

		// ตัด stock แบบมีเงื่อนไข ถ้ามีคนแย่งไปก่อน rows = 0 → rollback ทั้ง order
		for _, l := range lines {
			it := byID[l.ItemID]
			if !it.TrackInventory {
				continue
			}
			ok, err := s.Items.DecrementStock(tx, it.ID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				cur, err := s.Items.FindByIDTx(tx, it.ID)
				if err != nil {
					return err
				}
				return insufficient([]shortLine{{it.Name, l.Quantity, cur.Inventory}})
			}
			// อ่านแถวหลัง update ค่าใน byID อาจเก่าถ้ามี order อื่นตัดไปก่อน
			cur, err := s.Items.FindByIDTx(tx, it.ID)
			if err != nil {
				return err
			}
			if err := s.Inventory.AddAdjustment(tx, &entity.InventoryAdjustment{
				PreviousQty: cur.Inventory + l.Quantity, NewQty: cur.Inventory,
				Reason: entity.ReasonSale, ItemID: it.ID, TenantID: tenant.ID, ActorID: a.UserID,
			}); err != nil {
				return err
			}
		}

		return s.Repo.AddTransition(tx, &entity.OrderTransition{
			OrderID: order.ID, ToStatus: entity.StatusPending, ActorID: a.UserID,
		})
	})
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}

	s.Log.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("number", order.Number),
		zap.Uint("tenant_id", tenant.ID),
		zap.String("total", order.Total.StringFixed(2)),
	)
	s.notifyCreated(&order, tenant)

	return &CreateOrderRes{
		OrderID:           order.ID,
		OrderNumber:       order.Number,
		Subtotal:          order.Subtotal,
		DeliveryFee:       order.DeliveryFee,
		Total:             order.Total,
		EstimatedDelivery: *order.EstimatedDelivery,
		PaymentRequired:   payment == "card",
		Merchant:          MerchantSummary{Name: tenant.Name, BusinessType: tenant.BusinessType},
	}, nil
}

var errNotVerified = apperr.New(apperr.BadRequest, "Tenant not allowed to sell items until Stripe verification is complete")

func formatAddress(a entity.Address) string {
	parts := []string{}
	for _, p := range []string{a.Street, a.City, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// แจ้งลูกค้า + ร้าน หลัง commit แล้ว (ส่งไม่สำเร็จก็แค่ log)
func (s *OrderService) notifyCreated(o *entity.Order, t *entity.Tenant) {
	if s.Notifier == nil {
		return
	}
	customer, err := s.Users.FindByID(o.UserID)
	if err != nil {
		s.Log.Warn("skip order notification: customer lookup failed", zap.Uint("order_id", o.ID), zap.Error(err))
		return
	}

	data := notify.OrderData{
		OrderID:             o.ID,
		OrderNumber:         o.Number,
		TenantID:            t.ID,
		CustomerName:        customer.FullName(),
		CustomerEmail:       customer.Email,
		MerchantName:        t.Name,
		MerchantEmail:       s.merchantEmail(t),
		Subtotal:            o.Subtotal,
		DeliveryFee:         o.DeliveryFee,
		Total:               o.Total,
		OrderType:           o.OrderType,
		EstimatedDelivery:   o.EstimatedDelivery,
		SpecialInstructions: o.SpecialInstructions,
		Status:              string(o.Status),
	}
	if o.OrderType == entity.OrderTypeDelivery {
		data.Address = formatAddress(o.DeliveryAddress.Data())
	}
	for _, it := range o.Items {
		data.Items = append(data.Items, notify.LineData{
			Name: it.Name, Quantity: it.Qty, Price: it.UnitPrice, SpecialInstructions: it.SpecialInstructions,
		})
	}

	s.Notifier.Dispatch(notify.CustomerConfirmation(data))
	s.Notifier.Dispatch(notify.MerchantConfirmation(data))
}

// อีเมลร้าน ถ้าไม่ได้ตั้งไว้ใช้อีเมลสมาชิกคนแรก
func (s *OrderService) merchantEmail(t *entity.Tenant) string {
	if t.Email != "" {
		return t.Email
	}
	members, err := s.Users.MembersOf(t.ID)
	if err != nil || len(members) == 0 {
		return ""
	}
	return members[0].Email
}

// ----- List & Detail -----

type OrderView struct {
	ID                  uint               `json:"id"`
	OrderNumber         string             `json:"orderNumber"`
	Status              entity.OrderStatus `json:"status"`
	CreatedAt           time.Time          `json:"createdAt"`
	DeliveryAddress     entity.Address     `json:"deliveryAddress"`
	Subtotal            decimal.Decimal    `json:"subtotal"`
	DeliveryFee         decimal.Decimal    `json:"deliveryFee"`
	Total               decimal.Decimal    `json:"total"`
	EstimatedDelivery   *time.Time         `json:"estimatedDelivery,omitempty"`
	OrderType           string             `json:"orderType"`
	SpecialInstructions string             `json:"specialInstructions"`
	PaymentMethod       string             `json:"paymentMethod"`
	TenantID            uint               `json:"tenantId"`
	Items               []entity.OrderItem `json:"items"`
}

func toView(o *entity.Order) OrderView {
	return OrderView{
		ID: o.ID, OrderNumber: o.Number, Status: o.Status, CreatedAt: o.CreatedAt,
		DeliveryAddress: o.DeliveryAddress.Data(), Subtotal: o.Subtotal, DeliveryFee: o.DeliveryFee,
		Total: o.Total, EstimatedDelivery: o.EstimatedDelivery, OrderType: o.OrderType,
		SpecialInstructions: o.SpecialInstructions, PaymentMethod: o.PaymentMethod,
		TenantID: o.TenantID, Items: o.Items,
	}
}

type UserOrders struct {
	Orders     []OrderView `json:"orders"`
	TotalCount int64       `json:"totalCount"`
	HasMore    bool        `json:"hasMore"`
}

func (s *OrderService) ListForUser(a access.Actor, status string, limit, offset int) (*UserOrders, error) {
	st := entity.OrderStatus(status)
	if status != "" && !st.Valid() {
		return nil, apperr.BadRequestf("unknown status %q", status)
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	orders, total, err := s.Repo.ListOrdersForUser(a.UserID, st, limit, offset)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	out := &UserOrders{Orders: make([]OrderView, 0, len(orders)), TotalCount: total}
	for i := range orders {
		out.Orders = append(out.Orders, toView(&orders[i]))
	}
	out.HasMore = int64(offset+len(orders)) < total
	return out, nil
}

// visibleOrder: เจ้าของ order, สมาชิกร้าน หรือ superadmin
func (s *OrderService) visibleOrder(a access.Actor, orderID uint) (*entity.Order, error) {
	o, err := s.Repo.GetOrder(orderID)
	if err != nil {
		return nil, apperr.FromDB(err, "Order not found")
	}
	if o.UserID == a.UserID {
		return o, nil
	}
	if err := s.Policy.CanAccessTenant(a, o.TenantID); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) Detail(a access.Actor, orderID uint) (*OrderView, error) {
	o, err := s.visibleOrder(a, orderID)
	if err != nil {
		return nil, err
	}
	v := toView(o)
	return &v, nil
}

type OrderTimeline struct {
	OrderID     uint               `json:"orderId"`
	OrderNumber string             `json:"orderNumber"`
	Status      entity.OrderStatus `json:"status"`
	Message     string             `json:"message"`
	Steps       []TimelineStep     `json:"steps"`
}

func (s *OrderService) Timeline(a access.Actor, orderID uint) (*OrderTimeline, error) {
	o, err := s.visibleOrder(a, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderTimeline{
		OrderID: o.ID, OrderNumber: o.Number, Status: o.Status,
		Message: notify.StatusMessage(string(o.Status)),
		Steps:   BuildTimeline(o),
	}, nil
}

// History = log การเปลี่ยนสถานะจริงที่บันทึกไว้
func (s *OrderService) History(a access.Actor, orderID uint) ([]entity.OrderTransition, error) {
	o, err := s.visibleOrder(a, orderID)
	if err != nil {
		return nil, err
	}
	log, err := s.Repo.ListTransitions(o.ID)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return log, nil
}

type TenantOrderList struct {
	Items []repository.TenantOrderSummary `json:"items"`
	Total int64                           `json:"total"`
	Page  int                             `json:"page"`
	Limit int                             `json:"limit"`
}

// ListForTenant: order ของร้าน (superadmin ไม่ระบุ slug = ทุกร้าน)
func (s *OrderService) ListForTenant(a access.Actor, tenantSlug, status string, page, limit int) (*TenantOrderList, error) {
	st := entity.OrderStatus(status)
	if status != "" && !st.Valid() {
		return nil, apperr.BadRequestf("unknown status %q", status)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	var scope func(*gorm.DB) *gorm.DB
	switch {
	case tenantSlug != "":
		t, err := merchantTenant(s.Tenants, s.Policy, a, tenantSlug)
		if err != nil {
			return nil, err
		}
		scope = func(db *gorm.DB) *gorm.DB { return db.Where("o.tenant_id = ?", t.ID) }
	case a.SuperAdmin() || a.TenantID != nil:
		scope = s.Policy.Scope(a, "o.tenant_id")
	default:
		return nil, apperr.Forbiddenf("user is not a member of any merchant")
	}

	rows, total, err := s.Repo.ListOrdersForTenant(scope, st, page, limit)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return &TenantOrderList{Items: rows, Total: total, Page: page, Limit: limit}, nil
}

// ----- Library (สินค้าที่เคยซื้อ) -----

type LibraryPage struct {
	Items      []ItemCard `json:"items"`
	TotalCount int64      `json:"totalCount"`
	HasMore    bool       `json:"hasMore"`
}

func (s *OrderService) Library(a access.Actor, page, limit int) (*LibraryPage, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultItemLimit
	}
	offset := (page - 1) * limit
	ids, total, err := s.Repo.PurchasedItemIDs(a.UserID, limit, offset)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	items, err := s.Items.FindByIDs(ids)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	cards, err := buildCards(s.Items, items)
	if err != nil {
		return nil, err
	}
	return &LibraryPage{Items: cards, TotalCount: total, HasMore: int64(offset+len(ids)) < total}, nil
}

func (s *OrderService) LibraryItem(a access.Actor, itemID uint) (*entity.Item, error) {
	ok, err := s.Repo.HasPurchased(a.UserID, itemID)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	if !ok {
		return nil, apperr.NotFoundf("Order not found")
	}
	it, err := s.Items.FindByID(itemID)
	if err != nil {
		return nil, apperr.FromDB(err, "Item not found")
	}
	return it, nil
}

// CanWatch ใช้กับ websocket ติดตาม order
func (s *OrderService) CanWatch(a access.Actor, orderID uint) error {
	_, err := s.visibleOrder(a, orderID)
	return err
}
