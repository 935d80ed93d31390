package entity

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	BusinessRestaurant = "restaurant"
	BusinessPharmacy   = "pharmacy"
	BusinessGrocery    = "grocery"
)

// DayHours = เวลาเปิด-ปิดของวันหนึ่ง ("HH:MM")
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// WeeklyHours keyed by lowercase weekday ("monday" .. "sunday")
type WeeklyHours map[string]DayHours

type Tenant struct {
	gorm.Model
	Name         string `gorm:"not null" json:"name"`
	Slug         string `gorm:"uniqueIndex;not null" json:"slug"`
	BusinessType string `gorm:"index;not null" json:"businessType"`
	Description  string `json:"description"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	ImageURL     string `json:"imageUrl"`

	Lat            float64         `json:"lat"`
	Lng            float64         `json:"lng"`
	DeliveryRadius float64         `gorm:"not null;default:10" json:"deliveryRadius"` // km
	MinimumOrder   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"minimumOrder"`
	DeliveryFee    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"deliveryFee"`

	OperatingHours datatypes.JSONType[WeeklyHours] `json:"operatingHours"`

	IsActive               bool   `gorm:"index" json:"isActive"`
	StripeAccountID        string `json:"-"`
	StripeDetailsSubmitted bool   `json:"stripeDetailsSubmitted"`

	Items     []Item           `json:"-"`
	Members   []User           `json:"-"`
	Documents []TenantDocument `json:"-"`
}

// CanSell: ร้านต้องยืนยันบัญชีรับเงินก่อนถึงจะขายได้
func (t *Tenant) CanSell() bool {
	return t.StripeDetailsSubmitted
}

func (t *Tenant) Hours() WeeklyHours {
	return t.OperatingHours.Data()
}
