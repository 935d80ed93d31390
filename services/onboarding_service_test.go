package services

import (
	"context"
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

func startReq(name, bt string) *StartReq {
	return &StartReq{
		BusinessType:    bt,
		BusinessName:    name,
		BusinessEmail:   "owner@" + bt + ".test",
		BusinessPhone:   "+966500000000",
		BusinessAddress: BusinessAddress{Line1: "Olaya St", City: "Riyadh", PostalCode: "12211"},
		Coordinates:     entity.Coordinates{Lat: 24.69, Lng: 46.68},
		OperatingHours:  entity.WeeklyHours{"monday": {Open: "09:00", Close: "23:00"}},
		DeliverySettings: DeliverySettings{
			DeliveryRadius: 8,
			MinimumOrder:   decimal.NewFromInt(25),
			DeliveryFee:    decimal.NewFromInt(4),
		},
	}
}

func TestRequirementsFor(t *testing.T) {
	ph := RequirementsFor(entity.BusinessPharmacy)
	assert.Equal(t, "5912", ph.MCC)
	assert.Equal(t, []string{"pharmacy_license", "pharmacist_certification", "drug_license"}, ph.RequiredDocuments)
	assert.Equal(t, []string{"prescription_handling", "controlled_substances"}, ph.SpecialRequirements)

	assert.Equal(t, "5812", RequirementsFor("bakery").MCC)
	assert.Equal(t, 20, RequirementsFor(entity.BusinessGrocery).AveragePreparationTime)
}

func TestOnboarding_FullFlow(t *testing.T) {
	e := newEnv(t)
	owner := customer(t, e, "owner@test.io")
	svc := e.onboardingService()

	st, err := svc.Status(owner)
	require.NoError(t, err)
	assert.Equal(t, StepCreateAccount, st.Step)

	e.gw.On("CreateAccount", mock.Anything, mock.MatchedBy(func(p gateway.AccountParams) bool {
		return p.MCC == "5912" && p.Country == "SA" &&
			p.ProductDescription == "pharmacy delivery services" &&
			p.URL == "http://localhost:3000/merchants/al-shifa-pharmacy"
	})).Return(&gateway.Account{ID: "acct_new"}, nil).Once()
	e.gw.On("CreateAccountLink", mock.Anything, "acct_new",
		"http://localhost:3000/onboarding/refresh?account_id=acct_new",
		"http://localhost:3000/onboarding/complete?account_id=acct_new",
	).Return("https://connect.test/onboard", nil).Once()

	res, err := svc.Start(context.Background(), owner, startReq("Al Shifa Pharmacy!", entity.BusinessPharmacy))
	require.NoError(t, err)
	assert.Equal(t, "al-shifa-pharmacy", res.Slug)
	assert.Equal(t, "https://connect.test/onboard", res.OnboardingURL)

	tn, err := e.tenants.FindBySlug("al-shifa-pharmacy")
	require.NoError(t, err)
	assert.False(t, tn.IsActive)
	assert.False(t, tn.StripeDetailsSubmitted)
	assert.Equal(t, "Olaya St, Riyadh, 12211", tn.Address)
	assert.Equal(t, "09:00", tn.Hours()["monday"].Open)

	u, err := e.users.FindByID(owner.UserID)
	require.NoError(t, err)
	require.NotNil(t, u.TenantID)
	assert.Equal(t, tn.ID, *u.TenantID)

	st, err = svc.Status(owner)
	require.NoError(t, err)
	assert.Equal(t, StepCompleteStripe, st.Step)
	assert.Equal(t, "acct_new", st.StripeAccountID)

	e.gw.On("GetAccount", mock.Anything, "acct_new").Return(&gateway.Account{ID: "acct_new"}, nil).Once()
	_, err = svc.Complete(context.Background(), owner)
	requireKind(t, err, apperr.BadRequest)
	assert.Equal(t, "Please complete Stripe verification first", apperr.Message(err))

	e.gw.On("GetAccount", mock.Anything, "acct_new").Return(&gateway.Account{ID: "acct_new", DetailsSubmitted: true}, nil).Once()
	done, err := svc.Complete(context.Background(), owner)
	require.NoError(t, err)
	assert.True(t, done.CanAcceptOrders)

	st, err = svc.Status(owner)
	require.NoError(t, err)
	assert.Equal(t, StepComplete, st.Step)
	assert.True(t, st.Tenant.IsActive)

	e.gw.AssertExpectations(t)
}

func TestOnboarding_StartRefusals(t *testing.T) {
	e := newEnv(t)
	existing := testdb.Tenant(t, e.db, "taken-name")
	member := merchant(t, e, "m@taken.io", existing.ID)
	owner := customer(t, e, "new@test.io")
	svc := e.onboardingService()

	_, err := svc.Start(context.Background(), member, startReq("Another Place", entity.BusinessGrocery))
	requireKind(t, err, apperr.BadRequest)

	_, err = svc.Start(context.Background(), owner, startReq("Taken Name", entity.BusinessGrocery))
	requireKind(t, err, apperr.BadRequest)

	bad := startReq("Far Away", entity.BusinessGrocery)
	bad.DeliverySettings.DeliveryRadius = 51
	_, err = svc.Start(context.Background(), owner, bad)
	requireKind(t, err, apperr.BadRequest)

	_, err = svc.Start(context.Background(), owner, startReq("Flowers", "florist"))
	requireKind(t, err, apperr.BadRequest)

	hours := startReq("Late Night", entity.BusinessRestaurant)
	hours.OperatingHours = entity.WeeklyHours{"funday": {Open: "09:00", Close: "10:00"}}
	_, err = svc.Start(context.Background(), owner, hours)
	requireKind(t, err, apperr.BadRequest)

	e.gw.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything)
}
