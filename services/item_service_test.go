package services

import (
	"context"
	"testing"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/pkg/testdb"
	"github.com/abdout/souq/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestItemCreate_RequiresVerifiedTenant(t *testing.T) {
	e := newEnv(t)
	ok := testdb.Tenant(t, e.db, "verified-ph", func(tn *entity.Tenant) { tn.BusinessType = entity.BusinessPharmacy })
	no := testdb.Tenant(t, e.db, "unverified-ph", func(tn *entity.Tenant) { tn.StripeDetailsSubmitted = false })
	good := merchant(t, e, "g@ph.io", ok.ID)
	bad := merchant(t, e, "b@ph.io", no.ID)
	svc := e.itemService(newMemBlob())

	in := &ItemInput{Name: ptr("Vitamin C"), Price: ptr(decimal.NewFromInt(15)), TrackInventory: ptr(true), Inventory: ptr(20)}
	it, err := svc.Create(good, "", in)
	require.NoError(t, err)
	assert.Equal(t, entity.ItemMedicine, it.BusinessType)
	assert.True(t, it.IsAvailable)

	_, err = svc.Create(bad, "", in)
	requireKind(t, err, apperr.BadRequest)

	_, err = svc.Create(good, "", &ItemInput{Name: ptr("No price")})
	requireKind(t, err, apperr.BadRequest)

	_, err = svc.Create(good, "unverified-ph", in)
	requireKind(t, err, apperr.Forbidden)
}

func TestItemMutations_TenantIsolation(t *testing.T) {
	e := newEnv(t)
	a := testdb.Tenant(t, e.db, "shop-a")
	b := testdb.Tenant(t, e.db, "shop-b")
	theirs := testdb.Item(t, e.db, b.ID, "Their Item", 4)
	staffA := merchant(t, e, "a@shop.io", a.ID)
	staffB := merchant(t, e, "b@shop.io", b.ID)
	svc := e.itemService(newMemBlob())

	_, err := svc.Update(staffA, theirs.ID, &ItemInput{Name: ptr("Mine now")})
	requireKind(t, err, apperr.Forbidden)
	_, err = svc.ToggleAvailability(staffA, theirs.ID)
	requireKind(t, err, apperr.Forbidden)
	_, err = svc.Archive(staffA, theirs.ID, true)
	requireKind(t, err, apperr.Forbidden)
	_, err = svc.UploadImage(context.Background(), staffA, theirs.ID, "aGVsbG8=")
	requireKind(t, err, apperr.Forbidden)

	fresh, err := e.items.FindByID(theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Their Item", fresh.Name)

	upd, err := svc.Update(staffB, theirs.ID, &ItemInput{Price: ptr(decimal.NewFromInt(5)), LowStockThreshold: ptr(3)})
	require.NoError(t, err)
	assert.True(t, upd.Price.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 3, upd.LowStockThreshold)

	res, err := svc.ToggleAvailability(staffB, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Item is now unavailable", res.Message)
	res, err = svc.ToggleAvailability(staffB, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "Item is now available", res.Message)

	_, err = svc.Update(superadmin, theirs.ID, &ItemInput{Name: ptr("Renamed")})
	require.NoError(t, err)
}

func TestItemPriceMustBePositive(t *testing.T) {
	e := newEnv(t)
	tn := testdb.Tenant(t, e.db, "price-shop")
	staff := merchant(t, e, "p@shop.io", tn.ID)
	svc := e.itemService(newMemBlob())

	_, err := svc.Create(staff, "", &ItemInput{Name: ptr("Free"), Price: ptr(decimal.Zero)})
	requireKind(t, err, apperr.BadRequest)
	_, err = svc.Create(staff, "", &ItemInput{Name: ptr("Refund"), Price: ptr(decimal.NewFromInt(-2))})
	requireKind(t, err, apperr.BadRequest)

	it := testdb.Item(t, e.db, tn.ID, "Tea", 4)
	_, err = svc.Update(staff, it.ID, &ItemInput{Price: ptr(decimal.Zero)})
	requireKind(t, err, apperr.BadRequest)

	fresh, err := e.items.FindByID(it.ID)
	require.NoError(t, err)
	assert.True(t, fresh.Price.Equal(decimal.NewFromInt(4)))
}

func TestItemUpdate_InventoryWritesAdjustment(t *testing.T) {
	e := newEnv(t)
	tn := testdb.Tenant(t, e.db, "stock-shop")
	staff := merchant(t, e, "s@shop.io", tn.ID)
	it := testdb.Item(t, e.db, tn.ID, "Dates", 12, testdb.Tracked(5))
	svc := e.itemService(newMemBlob())

	upd, err := svc.Update(staff, it.ID, &ItemInput{Name: ptr("Ajwa Dates"), Inventory: ptr(50)})
	require.NoError(t, err)
	assert.Equal(t, 50, upd.Inventory)
	assert.Equal(t, "Ajwa Dates", upd.Name)

	adj, err := e.inventory.ListForItem(it.ID, 10)
	require.NoError(t, err)
	require.Len(t, adj, 1)
	assert.Equal(t, 5, adj[0].PreviousQty)
	assert.Equal(t, 50, adj[0].NewQty)
	assert.Equal(t, entity.ReasonAdjustment, adj[0].Reason)
	assert.Equal(t, staff.UserID, adj[0].ActorID)

	// ค่าเดิม ไม่ต้องลง ledger
	_, err = svc.Update(staff, it.ID, &ItemInput{Inventory: ptr(50)})
	require.NoError(t, err)
	adj, err = e.inventory.ListForItem(it.ID, 10)
	require.NoError(t, err)
	assert.Len(t, adj, 1)

	_, err = svc.Update(staff, it.ID, &ItemInput{Inventory: ptr(-1)})
	requireKind(t, err, apperr.BadRequest)
}

func TestItemCategoryScope(t *testing.T) {
	e := newEnv(t)
	a := testdb.Tenant(t, e.db, "cat-a")
	b := testdb.Tenant(t, e.db, "cat-b")
	staffA := merchant(t, e, "a@cat.io", a.ID)
	staffB := merchant(t, e, "b@cat.io", b.ID)
	svc := e.itemService(newMemBlob())

	catB, err := svc.CreateCategory(staffB, "", &CategoryInput{Name: "House Specials"})
	require.NoError(t, err)
	assert.Equal(t, "house-specials", catB.Slug)

	_, err = svc.CreateCategory(staffB, "", &CategoryInput{Name: "House Specials"})
	requireKind(t, err, apperr.BadRequest)

	// slug เดียวกันคนละร้านได้
	_, err = svc.CreateCategory(staffA, "", &CategoryInput{Name: "House Specials"})
	require.NoError(t, err)

	_, err = svc.Create(staffA, "", &ItemInput{Name: ptr("Sneaky"), Price: ptr(decimal.NewFromInt(1)), CategoryID: &catB.ID})
	requireKind(t, err, apperr.BadRequest)

	cats, err := svc.ListCategories("", "cat-b")
	require.NoError(t, err)
	found := false
	for _, c := range cats {
		if c.ID == catB.ID {
			found = true
		}
	}
	assert.True(t, found)
}

func TestItemListAndDetail(t *testing.T) {
	e := newEnv(t)
	tn := testdb.Tenant(t, e.db, "catalog")
	cheap := testdb.Item(t, e.db, tn.ID, "Cheap Bread", 1, testdb.Tracked(2))
	testdb.Item(t, e.db, tn.ID, "Fancy Cheese", 30)
	private := testdb.Item(t, e.db, tn.ID, "Staff Meal", 0, func(i *entity.Item) { i.IsPrivate = true })
	staff := merchant(t, e, "s@catalog.io", tn.ID)
	buyer := customer(t, e, "b@catalog.io")
	svc := e.itemService(newMemBlob())

	page, err := svc.List(repository.ItemFilter{Sort: "price-low"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Cheap Bread", page.Items[0].Name)
	assert.True(t, page.Items[0].Stock.IsLowStock)
	assert.Equal(t, "catalog", page.Items[0].TenantSlug)
	assert.Equal(t, 12, page.Limit)
	assert.Equal(t, 1, page.TotalPages)

	_, err = svc.List(repository.ItemFilter{Sort: "random"})
	requireKind(t, err, apperr.BadRequest)

	placeOrder(t, e, buyer, "catalog", cheap.ID, 2)
	d, err := svc.Detail(buyer, cheap.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, d.OrderCount)
	assert.Equal(t, 0, d.Stock.Inventory)
	assert.True(t, d.Stock.IsOutOfStock)

	_, err = svc.Detail(buyer, private.ID)
	requireKind(t, err, apperr.NotFound)
	_, err = svc.Detail(staff, private.ID)
	require.NoError(t, err)
}

func TestUploadItemImage(t *testing.T) {
	e := newEnv(t)
	tn := testdb.Tenant(t, e.db, "pics")
	it := testdb.Item(t, e.db, tn.ID, "Photo", 1)
	staff := merchant(t, e, "s@pics.io", tn.ID)
	blobs := newMemBlob()
	svc := e.itemService(blobs)

	got, err := svc.UploadImage(context.Background(), staff, it.ID, "data:image/png;base64,iVBORw0KGgo=")
	require.NoError(t, err)
	assert.NotEmpty(t, got.ImageURL)
	assert.Contains(t, blobs.files, got.ImageURL)
}
