package services

import (
	"context"
	"errors"
	"testing"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/pkg/gateway"
	"github.com/abdout/souq/pkg/testdb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPurchase_BuildsSplitPaymentSession(t *testing.T) {
	e := newEnv(t)
	tn := testdb.Tenant(t, e.db, "sweet-shop")
	cake := testdb.Item(t, e.db, tn.ID, "Cake", 12.99)
	tea := testdb.Item(t, e.db, tn.ID, "Tea", 3.5)
	buyer := customer(t, e, "pay@test.io")

	var got gateway.SessionParams
	e.gw.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(gateway.SessionParams) }).
		Return(&gateway.Session{ID: "cs_test_1", URL: "https://pay.test/cs_test_1"}, nil).Once()

	res, err := e.checkoutService().Purchase(context.Background(), buyer, "pay@test.io", &PurchaseReq{
		TenantSlug: "sweet-shop",
		Items:      []PurchaseLine{{ItemID: cake.ID, Quantity: 2}, {ItemID: tea.ID}},
	})
	require.NoError(t, err)
	e.gw.AssertExpectations(t)

	assert.Equal(t, "https://pay.test/cs_test_1", res.URL)
	// 2×1299 + 350 = 2948, fee 10% = 295
	assert.EqualValues(t, 2948, res.AmountCents)
	assert.EqualValues(t, 295, got.ApplicationFee)
	assert.Equal(t, "acct_sweet-shop", got.ConnectedAccount)
	assert.Equal(t, "usd", got.Currency)
	assert.Equal(t, "http://localhost:3000/tenants/sweet-shop/checkout?success=true", got.SuccessURL)
	assert.Equal(t, "http://localhost:3000/tenants/sweet-shop/checkout?cancel=true", got.CancelURL)
	require.Len(t, got.LineItems, 2)
	assert.EqualValues(t, 1299, got.LineItems[0].UnitAmount)
	assert.EqualValues(t, 2, got.LineItems[0].Quantity)
	assert.EqualValues(t, 1, got.LineItems[1].Quantity)
	assert.NotEmpty(t, got.IdempotencyKey)
}

func TestPurchase_UnverifiedTenantRefused(t *testing.T) {
	e := newEnv(t)
	tn := testdb.Tenant(t, e.db, "not-yet", func(tn *entity.Tenant) { tn.StripeDetailsSubmitted = false })
	it := testdb.Item(t, e.db, tn.ID, "Thing", 1)
	buyer := customer(t, e, "u@test.io")
	svc := e.checkoutService()

	_, err := svc.Purchase(context.Background(), buyer, "", &PurchaseReq{TenantSlug: "not-yet", Items: []PurchaseLine{{ItemID: it.ID}}})
	requireKind(t, err, apperr.BadRequest)

	// สินค้าไม่ถูกต้องก็ยังได้ BAD_REQUEST เพราะเช็คร้านก่อน
	_, err = svc.Purchase(context.Background(), buyer, "", &PurchaseReq{TenantSlug: "not-yet", Items: []PurchaseLine{{ItemID: 777}}})
	requireKind(t, err, apperr.BadRequest)

	e.gw.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func TestPurchase_ItemMismatchAndOrderOwnership(t *testing.T) {
	e := newEnv(t)
	tn := testdb.Tenant(t, e.db, "mart")
	other := testdb.Tenant(t, e.db, "other-mart")
	it := testdb.Item(t, e.db, tn.ID, "Milk", 2)
	foreign := testdb.Item(t, e.db, other.ID, "Eggs", 3)
	archived := testdb.Item(t, e.db, tn.ID, "Old", 3, func(i *entity.Item) { i.IsArchived = true })
	buyer := customer(t, e, "m@test.io")
	someone := customer(t, e, "s@test.io")
	svc := e.checkoutService()

	for _, id := range []uint{foreign.ID, archived.ID} {
		_, err := svc.Purchase(context.Background(), buyer, "", &PurchaseReq{TenantSlug: "mart", Items: []PurchaseLine{{ItemID: it.ID}, {ItemID: id}}})
		requireKind(t, err, apperr.NotFound)
	}

	orderID := placeOrder(t, e, buyer, "mart", it.ID, 1)
	_, err := svc.Purchase(context.Background(), someone, "", &PurchaseReq{TenantSlug: "mart", Items: []PurchaseLine{{ItemID: it.ID}}, OrderID: &orderID})
	requireKind(t, err, apperr.Forbidden)

	e.gw.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p gateway.SessionParams) bool {
		return p.Metadata["orderId"] != "" && p.IdempotencyKey != ""
	})).Return(&gateway.Session{ID: "cs_order", URL: "https://pay.test/cs_order"}, nil).Once()

	_, err = svc.Purchase(context.Background(), buyer, "", &PurchaseReq{TenantSlug: "mart", Items: []PurchaseLine{{ItemID: it.ID}}, OrderID: &orderID})
	require.NoError(t, err)
	o, err := e.orders.GetOrder(orderID)
	require.NoError(t, err)
	assert.Equal(t, "cs_order", o.CheckoutSessionID)

	e.gw.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(nil, errors.New("stripe down")).Once()
	_, err = svc.Purchase(context.Background(), buyer, "", &PurchaseReq{TenantSlug: "mart", Items: []PurchaseLine{{ItemID: it.ID}}})
	requireKind(t, err, apperr.Internal)
	assert.Equal(t, "Failed to create checkout session", apperr.Message(err))
}

func TestVerifyAndGetItems(t *testing.T) {
	e := newEnv(t)
	tn := testdb.Tenant(t, e.db, "verify-me")
	a := testdb.Item(t, e.db, tn.ID, "A", 1.25)
	b := testdb.Item(t, e.db, tn.ID, "B", 2.5)
	staff := merchant(t, e, "s@verify.io", tn.ID)
	buyer := customer(t, e, "b@verify.io")
	svc := e.checkoutService()

	e.gw.On("CreateAccountLink", mock.Anything, "acct_verify-me", "http://localhost:3000/admin", "http://localhost:3000/admin").
		Return("https://connect.test/link", nil).Once()
	link, err := svc.Verify(context.Background(), staff)
	require.NoError(t, err)
	assert.Equal(t, "https://connect.test/link", link)

	_, err = svc.Verify(context.Background(), buyer)
	requireKind(t, err, apperr.NotFound)

	got, err := svc.GetItems([]uint{a.ID, b.ID, a.ID})
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, "3.75", got.TotalPrice.String())

	_, err = svc.GetItems([]uint{a.ID, 5050})
	requireKind(t, err, apperr.NotFound)
}

func TestPlatformFeeRounding(t *testing.T) {
	assert.EqualValues(t, 0, platformFee(4, 10))
	assert.EqualValues(t, 1, platformFee(5, 10))
	assert.EqualValues(t, 250, platformFee(2500, 10))
	assert.EqualValues(t, 1299, toCents(mustDecimal("12.99")))
}

func mustDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }
