// services/onboarding_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/abdout/souq/configs"
	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/access"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/pkg/gateway"
	"github.com/abdout/souq/repository"
	"github.com/abdout/souq/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OnboardingService struct {
	DB      *gorm.DB
	Tenants *repository.TenantRepository
	Users   *repository.UserRepository
	Gateway gateway.Gateway
	Cfg     *configs.Config
	Log     *zap.Logger
}

func NewOnboardingService(
	db *gorm.DB,
	tenants *repository.TenantRepository,
	users *repository.UserRepository,
	gw gateway.Gateway,
	cfg *configs.Config,
	log *zap.Logger,
) *OnboardingService {
	return &OnboardingService{DB: db, Tenants: tenants, Users: users, Gateway: gw, Cfg: cfg, Log: log}
}

// ----- Requirements per business type -----

type Requirements struct {
	BusinessType           string   `json:"businessType"`
	MCC                    string   `json:"mcc"`
	RequiredDocuments      []string `json:"requiredDocuments"`
	Description            string   `json:"description"`
	MinimumDeliveryFee     int      `json:"minimumDeliveryFee"`
	AveragePreparationTime int      `json:"averagePreparationTime"` // นาที
	SpecialRequirements    []string `json:"specialRequirements,omitempty"`
}

var requirements = map[string]Requirements{
	entity.BusinessRestaurant: {
		BusinessType:           entity.BusinessRestaurant,
		MCC:                    "5812",
		RequiredDocuments:      []string{"business_license", "food_safety_certificate"},
		Description:            "Restaurant and food delivery services",
		MinimumDeliveryFee:     5,
		AveragePreparationTime: 30,
	},
	entity.BusinessPharmacy: {
		BusinessType:           entity.BusinessPharmacy,
		MCC:                    "5912",
		RequiredDocuments:      []string{"pharmacy_license", "pharmacist_certification", "drug_license"},
		Description:            "Pharmacy and medical delivery services",
		MinimumDeliveryFee:     3,
		AveragePreparationTime: 15,
		SpecialRequirements:    []string{"prescription_handling", "controlled_substances"},
	},
	entity.BusinessGrocery: {
		BusinessType:           entity.BusinessGrocery,
		MCC:                    "5411",
		RequiredDocuments:      []string{"business_license", "food_handling_permit"},
		Description:            "Grocery and household items delivery",
		MinimumDeliveryFee:     4,
		AveragePreparationTime: 20,
	},
}

// RequirementsFor: ประเภทที่ไม่รู้จักใช้ของร้านอาหาร
func RequirementsFor(businessType string) Requirements {
	if r, ok := requirements[businessType]; ok {
		return r
	}
	return requirements[entity.BusinessRestaurant]
}

func validBusinessType(bt string) bool {
	_, ok := requirements[bt]
	return ok
}

// ----- Start -----

type BusinessAddress struct {
	Line1      string `json:"line1" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type DeliverySettings struct {
	DeliveryRadius float64         `json:"deliveryRadius"`
	MinimumOrder   decimal.Decimal `json:"minimumOrder"`
	DeliveryFee    decimal.Decimal `json:"deliveryFee"`
}

type StartReq struct {
	BusinessType     string             `json:"businessType" binding:"required"`
	BusinessName     string             `json:"businessName" binding:"required,min=2"`
	BusinessEmail    string             `json:"businessEmail" binding:"required,email"`
	BusinessPhone    string             `json:"businessPhone"`
	BusinessAddress  BusinessAddress    `json:"businessAddress"`
	Coordinates      entity.Coordinates `json:"coordinates"`
	OperatingHours   entity.WeeklyHours `json:"operatingHours"`
	DeliverySettings DeliverySettings   `json:"deliverySettings"`
}

type StartRes struct {
	TenantID        uint         `json:"tenantId"`
	Slug            string       `json:"slug"`
	StripeAccountID string       `json:"stripeAccountId"`
	OnboardingURL   string       `json:"onboardingUrl"`
	BusinessType    string       `json:"businessType"`
	Requirements    Requirements `json:"requirements"`
}

func (r *StartReq) validate() error {
	if !validBusinessType(r.BusinessType) {
		return apperr.BadRequestf("businessType must be restaurant, pharmacy or grocery")
	}
	ds := r.DeliverySettings
	if ds.DeliveryRadius < 1 || ds.DeliveryRadius > 50 {
		return apperr.BadRequestf("deliveryRadius must be between 1 and 50 km")
	}
	if ds.MinimumOrder.IsNegative() || ds.DeliveryFee.IsNegative() {
		return apperr.BadRequestf("minimumOrder and deliveryFee must be >= 0")
	}
	return validateHours(r.OperatingHours)
}

func (s *OnboardingService) appURL() string {
	return strings.TrimRight(s.Cfg.App.URL, "/")
}

// Start: สร้างบัญชีรับเงิน -> สร้างร้าน (ยังไม่เปิด) -> ผูก user -> คืน link ไปยืนยันตัวตน
func (s *OnboardingService) Start(ctx context.Context, a access.Actor, req *StartReq) (*StartRes, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	slug := utils.GenerateSlug(req.BusinessName)
	if slug == "" {
		return nil, apperr.BadRequestf("businessName must contain letters or digits")
	}

	u, err := s.Users.FindByID(a.UserID)
	if err != nil {
		return nil, apperr.FromDB(err, "User not found")
	}
	if u.TenantID != nil {
		return nil, apperr.BadRequestf("user already owns a merchant account")
	}
	exists, err := s.Tenants.SlugExists(slug)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	if exists {
		return nil, apperr.BadRequestf("a merchant named %q already exists", req.BusinessName)
	}

	reqs := RequirementsFor(req.BusinessType)
	country := req.BusinessAddress.Country
	if country == "" {
		country = "SA"
	}
	acct, err := s.Gateway.CreateAccount(ctx, gateway.AccountParams{
		Country:            country,
		Email:              req.BusinessEmail,
		BusinessName:       req.BusinessName,
		MCC:                reqs.MCC,
		ProductDescription: fmt.Sprintf("%s delivery services", req.BusinessType),
		SupportPhone:       req.BusinessPhone,
		URL:                fmt.Sprintf("%s/merchants/%s", s.appURL(), slug),
	})
	if err != nil {
		s.Log.Error("create connected account failed", zap.String("slug", slug), zap.Error(err))
		return nil, apperr.Wrap(apperr.BadRequest, "Failed to create merchant account", err)
	}

	addr := req.BusinessAddress
	parts := []string{}
	for _, p := range []string{addr.Line1, addr.City, addr.PostalCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	t := &entity.Tenant{
		Name:                   req.BusinessName,
		Slug:                   slug,
		BusinessType:           req.BusinessType,
		Address:                strings.Join(parts, ", "),
		Phone:                  req.BusinessPhone,
		Email:                  req.BusinessEmail,
		Lat:                    req.Coordinates.Lat,
		Lng:                    req.Coordinates.Lng,
		DeliveryRadius:         req.DeliverySettings.DeliveryRadius,
		MinimumOrder:           req.DeliverySettings.MinimumOrder,
		DeliveryFee:            req.DeliverySettings.DeliveryFee,
		OperatingHours:         datatypes.NewJSONType(req.OperatingHours),
		IsActive:               false,
		StripeAccountID:        acct.ID,
		StripeDetailsSubmitted: false,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Tenants.Create(tx, t); err != nil {
			return err
		}
		ok, err := s.Users.AttachTenant(tx, u.ID, t.ID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.BadRequestf("user already owns a merchant account")
		}
		return nil
	})
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}

	link, err := s.Gateway.CreateAccountLink(ctx, acct.ID,
		fmt.Sprintf("%s/onboarding/refresh?account_id=%s", s.appURL(), acct.ID),
		fmt.Sprintf("%s/onboarding/complete?account_id=%s", s.appURL(), acct.ID),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to create verification link", err)
	}

	s.Log.Info("merchant onboarding started",
		zap.Uint("tenant_id", t.ID),
		zap.String("slug", slug),
		zap.String("business_type", req.BusinessType),
	)
	return &StartRes{
		TenantID: t.ID, Slug: slug, StripeAccountID: acct.ID, OnboardingURL: link,
		BusinessType: req.BusinessType, Requirements: reqs,
	}, nil
}

// ----- Status -----

const (
	StepCreateAccount  = "create_account"
	StepCompleteStripe = "complete_stripe"
	StepComplete       = "complete"
)

type OnboardingStatus struct {
	HasAccount      bool           `json:"hasAccount"`
	NeedsOnboarding bool           `json:"needsOnboarding"`
	Step            string         `json:"step"`
	StripeAccountID string         `json:"stripeAccountId,omitempty"`
	BusinessType    string         `json:"businessType,omitempty"`
	BusinessName    string         `json:"businessName,omitempty"`
	Tenant          *entity.Tenant `json:"tenant,omitempty"`
}

// tenantOf อ่าน membership จาก DB (token อาจเก่ากว่า)
func (s *OnboardingService) tenantOf(userID uint) (*entity.Tenant, error) {
	u, err := s.Users.FindByID(userID)
	if err != nil {
		return nil, apperr.FromDB(err, "User not found")
	}
	if u.TenantID == nil {
		return nil, nil
	}
	t, err := s.Tenants.FindByID(*u.TenantID)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, nil
		}
		return nil, apperr.FromDB(err, "")
	}
	return t, nil
}

func (s *OnboardingService) Status(a access.Actor) (*OnboardingStatus, error) {
	t, err := s.tenantOf(a.UserID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return &OnboardingStatus{NeedsOnboarding: true, Step: StepCreateAccount}, nil
	}
	if !t.StripeDetailsSubmitted {
		return &OnboardingStatus{
			HasAccount: true, NeedsOnboarding: true, Step: StepCompleteStripe,
			StripeAccountID: t.StripeAccountID, BusinessType: t.BusinessType, BusinessName: t.Name,
		}, nil
	}
	return &OnboardingStatus{HasAccount: true, Step: StepComplete, Tenant: t}, nil
}

// ----- Complete -----

type CompleteRes struct {
	Success         bool   `json:"success"`
	TenantID        uint   `json:"tenantId"`
	CanAcceptOrders bool   `json:"canAcceptOrders"`
	Message         string `json:"message"`
}

// Complete เช็คสถานะบัญชีกับ gateway อีกครั้ง ผ่านแล้วเปิดร้าน
func (s *OnboardingService) Complete(ctx context.Context, a access.Actor) (*CompleteRes, error) {
	t, err := s.tenantOf(a.UserID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFoundf("Tenant not found")
	}
	acct, err := s.Gateway.GetAccount(ctx, t.StripeAccountID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to complete onboarding", err)
	}
	if !acct.DetailsSubmitted {
		return nil, apperr.BadRequestf("Please complete Stripe verification first")
	}
	if err := s.Tenants.Update(t.ID, map[string]any{
		"stripe_details_submitted": true,
		"is_active":                true,
	}); err != nil {
		return nil, apperr.FromDB(err, "")
	}
	s.Log.Info("merchant verified", zap.Uint("tenant_id", t.ID), zap.String("account", t.StripeAccountID))
	return &CompleteRes{
		Success: true, TenantID: t.ID, CanAcceptOrders: true,
		Message: "Congratulations! Your merchant account is now active and ready to accept orders.",
	}, nil
}
