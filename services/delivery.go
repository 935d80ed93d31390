package services

import (
	"fmt"
	"math"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/pkg/geo"
	"github.com/abdout/souq/repository"

	"github.com/shopspring/decimal"
)

const (
	ReasonOutsideRadius = "outside_delivery_radius"

	surchargeFreeKm = 5
	travelMinPerKm  = 3
)

var (
	surchargePerKm = decimal.NewFromInt(1)
	preparationMin = map[string]int{
		entity.BusinessRestaurant: 25,
		entity.BusinessPharmacy:   10,
		entity.BusinessGrocery:    15,
	}
)

// PreparationTime (นาที) ตามประเภทร้าน ไม่รู้จัก = 20
func PreparationTime(businessType string) int {
	if m, ok := preparationMin[businessType]; ok {
		return m
	}
	return 20
}

// EstimatedMinutes = เวลาเตรียม + 3 นาทีต่อกม. (ปัดขึ้น)
func EstimatedMinutes(businessType string, distanceKm float64) int {
	return PreparationTime(businessType) + int(math.Ceil(distanceKm*travelMinPerKm))
}

type MerchantSummary struct {
	Name           string             `json:"name"`
	BusinessType   string             `json:"businessType"`
	Address        string             `json:"address"`
	OperatingHours entity.WeeklyHours `json:"operatingHours,omitempty"`
}

// Quote = ผลการเช็คว่าส่งได้มั้ย + ค่าส่ง; ส่งไม่ได้ไม่ใช่ error
type Quote struct {
	CanDeliver bool `json:"canDeliver"`

	// เฉพาะตอนส่งไม่ได้
	Reason         string  `json:"reason,omitempty"`
	MaxRadius      float64 `json:"maxRadius,omitempty"`
	ActualDistance float64 `json:"actualDistance,omitempty"`
	Message        string  `json:"message,omitempty"`

	MeetsMinimumOrder     bool             `json:"meetsMinimumOrder"`
	MinimumOrderRequired  decimal.Decimal  `json:"minimumOrderRequired"`
	OrderTotal            decimal.Decimal  `json:"orderTotal"`
	DeliveryFee           decimal.Decimal  `json:"deliveryFee"`
	OriginalDeliveryFee   decimal.Decimal  `json:"originalDeliveryFee"`
	FreeDeliveryEligible  bool             `json:"freeDeliveryEligible"`
	Distance              float64          `json:"distance"`
	EstimatedDeliveryTime int              `json:"estimatedDeliveryTime"`
	PreparationTime       int              `json:"preparationTime"`
	Merchant              *MerchantSummary `json:"merchant,omitempty"`
}

// QuoteDelivery ไม่มี side effect เรียกซ้ำตอนสร้าง order ได้
func QuoteDelivery(t *entity.Tenant, dest geo.Point, subtotal decimal.Decimal) Quote {
	distance := geo.Distance(geo.Point{Lat: t.Lat, Lng: t.Lng}, dest)

	if distance > t.DeliveryRadius {
		return Quote{
			CanDeliver:     false,
			Reason:         ReasonOutsideRadius,
			MaxRadius:      t.DeliveryRadius,
			ActualDistance: distance,
			Message: fmt.Sprintf("Sorry, we only deliver within %gkm. Your location is %.1fkm away.",
				t.DeliveryRadius, distance),
			Distance: distance,
		}
	}

	// ค่าส่งพื้นฐาน + 1 ต่อกม. ที่เกิน 5 กม.
	extra := decimal.NewFromFloat(distance).Sub(decimal.NewFromInt(surchargeFreeKm)).Mul(surchargePerKm)
	fee := t.DeliveryFee.Add(decimal.Max(decimal.Zero, extra))

	free := subtotal.GreaterThanOrEqual(t.MinimumOrder.Mul(decimal.NewFromInt(2)))
	final := fee
	if free {
		final = decimal.Zero
	}

	prep := PreparationTime(t.BusinessType)
	return Quote{
		CanDeliver:            true,
		MeetsMinimumOrder:     subtotal.GreaterThanOrEqual(t.MinimumOrder),
		MinimumOrderRequired:  t.MinimumOrder,
		OrderTotal:            subtotal,
		DeliveryFee:           final,
		OriginalDeliveryFee:   fee,
		FreeDeliveryEligible:  free,
		Distance:              distance,
		EstimatedDeliveryTime: prep + int(math.Ceil(distance*travelMinPerKm)),
		PreparationTime:       prep,
		Merchant: &MerchantSummary{
			Name:           t.Name,
			BusinessType:   t.BusinessType,
			Address:        t.Address,
			OperatingHours: t.Hours(),
		},
	}
}

// DeliveryService = quote จาก slug (ใช้ก่อนสั่ง)
type DeliveryService struct {
	Tenants *repository.TenantRepository
}

func NewDeliveryService(tenants *repository.TenantRepository) *DeliveryService {
	return &DeliveryService{Tenants: tenants}
}

func (s *DeliveryService) Quote(tenantSlug string, dest geo.Point, subtotal decimal.Decimal) (*Quote, error) {
	t, err := s.Tenants.FindBySlug(tenantSlug)
	if err != nil {
		return nil, apperr.FromDB(err, "Merchant not found")
	}
	if !t.IsActive {
		return nil, apperr.BadRequestf("Merchant is currently not accepting orders")
	}
	q := QuoteDelivery(t, dest, subtotal)
	return &q, nil
}
