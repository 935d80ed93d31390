package services

import (
	"context"
	"testing"
	"time"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/pkg/geo"
	"github.com/abdout/souq/pkg/testdb"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestIsOpen(t *testing.T) {
	// 2025-03-10 เป็นวันจันทร์
	at := func(hhmm string) time.Time {
		tm, _ := time.Parse("2006-01-02 15:04", "2025-03-10 "+hhmm)
		return tm
	}
	day := entity.WeeklyHours{"monday": {Open: "09:00", Close: "17:00"}}
	night := entity.WeeklyHours{"monday": {Open: "18:00", Close: "02:00"}}
	closed := entity.WeeklyHours{"monday": {Open: "09:00", Close: "17:00", Closed: true}}

	assert.True(t, IsOpen(nil, at("03:00")))
	assert.True(t, IsOpen(day, at("09:00")))
	assert.True(t, IsOpen(day, at("16:59")))
	assert.False(t, IsOpen(day, at("17:00")))
	assert.False(t, IsOpen(day, at("08:59")))
	assert.True(t, IsOpen(night, at("23:30")))
	assert.True(t, IsOpen(night, at("01:00")))
	assert.False(t, IsOpen(night, at("12:00")))
	assert.False(t, IsOpen(closed, at("10:00")))
	assert.False(t, IsOpen(entity.WeeklyHours{"tuesday": {Open: "00:00", Close: "23:59"}}, at("10:00")))
}

func TestNearby(t *testing.T) {
	e := newEnv(t)
	// ร้านอยู่ทางเหนือของจุดค้นหา ~1, ~3, ~12 กม.
	testdb.Tenant(t, e.db, "one-km", func(tn *entity.Tenant) { tn.Lat = 24.7136 + 0.009 })
	testdb.Tenant(t, e.db, "three-km", func(tn *entity.Tenant) {
		tn.Lat = 24.7136 + 0.027
		tn.OperatingHours = datatypes.NewJSONType(entity.WeeklyHours{"monday": {Open: "20:00", Close: "23:00"}})
	})
	testdb.Tenant(t, e.db, "twelve-km", func(tn *entity.Tenant) { tn.Lat = 24.7136 + 0.108; tn.DeliveryRadius = 15 })
	testdb.Tenant(t, e.db, "small-radius", func(tn *entity.Tenant) { tn.Lat = 24.7136 + 0.027; tn.DeliveryRadius = 2 })
	testdb.Tenant(t, e.db, "pharma", func(tn *entity.Tenant) { tn.BusinessType = entity.BusinessPharmacy })
	testdb.Tenant(t, e.db, "dormant", func(tn *entity.Tenant) { tn.IsActive = false })
	svc := e.tenantService(newMemBlob())
	here := geo.Point{Lat: 24.7136, Lng: 46.6753}

	got, err := svc.Nearby(NearbyQuery{Point: here, BusinessType: entity.BusinessRestaurant})
	require.NoError(t, err)
	slugs := []string{}
	for _, n := range got {
		slugs = append(slugs, n.Slug)
	}
	assert.Equal(t, []string{"one-km", "three-km", "twelve-km"}, slugs)
	assert.Equal(t, 1.0, got[0].Distance)
	assert.False(t, got[1].IsOpen)

	got, err = svc.Nearby(NearbyQuery{Point: here, BusinessType: entity.BusinessRestaurant, MaxDistance: 5, CurrentlyOpen: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "one-km", got[0].Slug)
}

func TestTenantProfileAndSettings(t *testing.T) {
	e := newEnv(t)
	tn := testdb.Tenant(t, e.db, "quiet", func(tn *entity.Tenant) { tn.IsActive = false })
	rival := testdb.Tenant(t, e.db, "loud")
	staff := merchant(t, e, "s@quiet.io", tn.ID)
	stranger := customer(t, e, "x@test.io")
	svc := e.tenantService(newMemBlob())

	_, err := svc.GetBySlug(stranger, "quiet")
	requireKind(t, err, apperr.NotFound)
	got, err := svc.GetBySlug(staff, "quiet")
	require.NoError(t, err)
	assert.Equal(t, tn.ID, got.ID)

	radius := 12.5
	fee := decimal.NewFromInt(6)
	upd, err := svc.UpdateSettings(staff, "", &SettingsInput{DeliveryRadius: &radius, DeliveryFee: &fee})
	require.NoError(t, err)
	assert.Equal(t, 12.5, upd.DeliveryRadius)
	assert.True(t, upd.DeliveryFee.Equal(fee))

	zero := 0.0
	_, err = svc.UpdateSettings(staff, "", &SettingsInput{DeliveryRadius: &zero})
	requireKind(t, err, apperr.BadRequest)

	_, err = svc.UpdateSettings(staff, rival.Slug, &SettingsInput{DeliveryRadius: &radius})
	requireKind(t, err, apperr.Forbidden)

	_, err = svc.SetActive(staff, "", true)
	require.NoError(t, err)
}

func TestSetActive_RequiresVerification(t *testing.T) {
	e := newEnv(t)
	tn := testdb.Tenant(t, e.db, "pending-shop", func(tn *entity.Tenant) {
		tn.IsActive = false
		tn.StripeDetailsSubmitted = false
	})
	staff := merchant(t, e, "s@pending.io", tn.ID)
	svc := e.tenantService(newMemBlob())

	_, err := svc.SetActive(staff, "", true)
	requireKind(t, err, apperr.BadRequest)

	_, err = svc.SetActive(staff, "", false)
	require.NoError(t, err)
}

func TestDeleteTenant(t *testing.T) {
	e := newEnv(t)
	tn := testdb.Tenant(t, e.db, "doomed")
	it := testdb.Item(t, e.db, tn.ID, "Last Meal", 10)
	staff := merchant(t, e, "s@doomed.io", tn.ID)
	buyer := customer(t, e, "b@test.io")
	orderID := placeOrder(t, e, buyer, "doomed", it.ID, 1)
	svc := e.tenantService(newMemBlob())

	requireKind(t, svc.Delete(staff, tn.ID), apperr.Forbidden)
	require.NoError(t, svc.Delete(superadmin, tn.ID))
	requireKind(t, svc.Delete(superadmin, tn.ID), apperr.NotFound)

	var n int64
	e.db.Unscoped().Model(&entity.Item{}).Where("tenant_id = ?", tn.ID).Count(&n)
	assert.Zero(t, n)

	u, err := e.users.FindByID(staff.UserID)
	require.NoError(t, err)
	assert.Nil(t, u.TenantID)

	// order ยังอยู่
	_, err = e.orders.GetOrder(orderID)
	require.NoError(t, err)
}

func TestUploadDocument(t *testing.T) {
	e := newEnv(t)
	tn := testdb.Tenant(t, e.db, "papers")
	staff := merchant(t, e, "s@papers.io", tn.ID)
	blobs := newMemBlob()
	svc := e.tenantService(blobs)

	doc, err := svc.UploadDocument(context.Background(), staff, "", &DocumentInput{Kind: "business_license", Data: "data:application/pdf;base64,JVBERi0xLjQ="})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Contains(t, blobs.files, doc.URL)

	_, err = svc.UploadDocument(context.Background(), staff, "", &DocumentInput{Kind: "x", Data: "%%%"})
	requireKind(t, err, apperr.BadRequest)

	docs, err := svc.Documents(staff, "")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
