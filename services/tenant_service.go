// services/tenant_service.go
package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/access"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/pkg/blob"
	"github.com/abdout/souq/pkg/geo"
	"github.com/abdout/souq/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TenantService struct {
	DB     *gorm.DB
	Repo   *repository.TenantRepository
	Users  *repository.UserRepository
	Policy access.Policy
	Blob   blob.Store
	Log    *zap.Logger
	Now    func() time.Time
}

func NewTenantService(
	db *gorm.DB,
	repo *repository.TenantRepository,
	users *repository.UserRepository,
	policy access.Policy,
	store blob.Store,
	log *zap.Logger,
) *TenantService {
	return &TenantService{DB: db, Repo: repo, Users: users, Policy: policy, Blob: store, Log: log, Now: time.Now}
}

// ----- Operating hours -----

var weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func validateHours(h entity.WeeklyHours) error {
	for day, dh := range h {
		known := false
		for _, d := range weekdays {
			if d == day {
				known = true
				break
			}
		}
		if !known {
			return apperr.BadRequestf("unknown day %q in operating hours", day)
		}
		if dh.Closed {
			continue
		}
		if _, ok := parseClock(dh.Open); !ok {
			return apperr.BadRequestf("invalid open time %q for %s", dh.Open, day)
		}
		if _, ok := parseClock(dh.Close); !ok {
			return apperr.BadRequestf("invalid close time %q for %s", dh.Close, day)
		}
	}
	return nil
}

// IsOpen: ไม่ตั้งเวลาไว้ = เปิดตลอด, ไม่มีวันนั้น = ปิด, close <= open = ข้ามเที่ยงคืน
func IsOpen(h entity.WeeklyHours, now time.Time) bool {
	if len(h) == 0 {
		return true
	}
	dh, ok := h[weekdays[now.Weekday()]]
	if !ok || dh.Closed {
		return false
	}
	open, ok1 := parseClock(dh.Open)
	closeAt, ok2 := parseClock(dh.Close)
	if !ok1 || !ok2 {
		return false
	}
	cur := now.Hour()*60 + now.Minute()
	if closeAt <= open {
		return cur >= open || cur < closeAt
	}
	return cur >= open && cur < closeAt
}

// ----- Public -----

// GetBySlug: ร้านที่ยังไม่เปิดเห็นได้เฉพาะสมาชิกร้าน / superadmin
func (s *TenantService) GetBySlug(a access.Actor, slug string) (*entity.Tenant, error) {
	t, err := s.Repo.FindBySlug(slug)
	if err != nil {
		return nil, apperr.FromDB(err, "Merchant not found")
	}
	if !t.IsActive && s.Policy.CanAccessTenant(a, t.ID) != nil {
		return nil, apperr.NotFoundf("Merchant not found")
	}
	return t, nil
}

type TenantPage struct {
	Tenants []entity.Tenant `json:"tenants"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	HasMore bool            `json:"hasMore"`
}

func (s *TenantService) ListByBusinessType(businessType string, page, limit int) (*TenantPage, error) {
	if businessType != "" && !validBusinessType(businessType) {
		return nil, apperr.BadRequestf("unknown businessType %q", businessType)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit
	list, total, err := s.Repo.ListActivePaged(businessType, limit, offset)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return &TenantPage{Tenants: list, Total: total, Page: page, Limit: limit, HasMore: int64(offset+len(list)) < total}, nil
}

type NearbyQuery struct {
	Point         geo.Point
	BusinessType  string
	MaxDistance   float64
	CurrentlyOpen bool
}

type NearbyTenant struct {
	entity.Tenant
	Distance float64 `json:"distance"`
	IsOpen   bool    `json:"isOpen"`
}

// Nearby: ร้านที่ส่งถึงจุดนี้ได้ และอยู่ไม่เกิน maxDistance เรียงใกล้สุดก่อน
func (s *TenantService) Nearby(q NearbyQuery) ([]NearbyTenant, error) {
	if q.MaxDistance <= 0 {
		q.MaxDistance = 20
	}
	list, err := s.Repo.ListActive(q.BusinessType)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	now := s.Now()
	out := []NearbyTenant{}
	for _, t := range list {
		d := geo.Distance(geo.Point{Lat: t.Lat, Lng: t.Lng}, q.Point)
		if d > t.DeliveryRadius || d > q.MaxDistance {
			continue
		}
		open := IsOpen(t.Hours(), now)
		if q.CurrentlyOpen && !open {
			continue
		}
		out = append(out, NearbyTenant{Tenant: t, Distance: d, IsOpen: open})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

// ----- Merchant settings -----

type SettingsInput struct {
	DeliveryRadius *float64            `json:"deliveryRadius"`
	MinimumOrder   *decimal.Decimal    `json:"minimumOrder"`
	DeliveryFee    *decimal.Decimal    `json:"deliveryFee"`
	OperatingHours *entity.WeeklyHours `json:"operatingHours"`
	Description    *string             `json:"description"`
	Phone          *string             `json:"phone"`
	Email          *string             `json:"email"`
}

func (s *TenantService) UpdateSettings(a access.Actor, slug string, in *SettingsInput) (*entity.Tenant, error) {
	t, err := merchantTenant(s.Repo, s.Policy, a, slug)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.DeliveryRadius != nil {
		if *in.DeliveryRadius <= 0 {
			return nil, apperr.BadRequestf("deliveryRadius must be > 0")
		}
		updates["delivery_radius"] = *in.DeliveryRadius
	}
	if in.MinimumOrder != nil {
		if in.MinimumOrder.IsNegative() {
			return nil, apperr.BadRequestf("minimumOrder must be >= 0")
		}
		updates["minimum_order"] = *in.MinimumOrder
	}
	if in.DeliveryFee != nil {
		if in.DeliveryFee.IsNegative() {
			return nil, apperr.BadRequestf("deliveryFee must be >= 0")
		}
		updates["delivery_fee"] = *in.DeliveryFee
	}
	if in.OperatingHours != nil {
		if err := validateHours(*in.OperatingHours); err != nil {
			return nil, err
		}
		updates["operating_hours"] = datatypes.NewJSONType(*in.OperatingHours)
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.Email != nil {
		updates["email"] = strings.TrimSpace(*in.Email)
	}
	if len(updates) > 0 {
		if err := s.Repo.Update(t.ID, updates); err != nil {
			return nil, apperr.FromDB(err, "")
		}
	}
	fresh, err := s.Repo.FindByID(t.ID)
	if err != nil {
		return nil, apperr.FromDB(err, "Tenant not found")
	}
	return fresh, nil
}

// SetActive: เปิดร้านได้เมื่อยืนยันบัญชีรับเงินแล้วเท่านั้น
func (s *TenantService) SetActive(a access.Actor, slug string, active bool) (*entity.Tenant, error) {
	t, err := merchantTenant(s.Repo, s.Policy, a, slug)
	if err != nil {
		return nil, err
	}
	if active && !t.CanSell() {
		return nil, errNotVerified
	}
	if err := s.Repo.Update(t.ID, map[string]any{"is_active": active}); err != nil {
		return nil, apperr.FromDB(err, "")
	}
	t.IsActive = active
	s.Log.Info("merchant active toggled", zap.Uint("tenant_id", t.ID), zap.Bool("active", active))
	return t, nil
}

// Delete ลบร้านถาวร (superadmin) พร้อมสินค้า/หมวด/เอกสาร และถอดสมาชิก
func (s *TenantService) Delete(a access.Actor, id uint) error {
	if err := s.Policy.RequireSuperAdmin(a); err != nil {
		return err
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Repo.DeleteOwned(tx, id); err != nil {
			return err
		}
		if err := s.Users.DetachTenant(tx, id); err != nil {
			return err
		}
		n, err := s.Repo.HardDelete(tx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFoundf("Tenant not found")
		}
		return nil
	})
	if err != nil {
		return apperr.FromDB(err, "Tenant not found")
	}
	s.Log.Warn("merchant deleted", zap.Uint("tenant_id", id), zap.Uint("actor_id", a.UserID))
	return nil
}

// ----- Documents -----

type DocumentInput struct {
	Kind string `json:"kind" binding:"required"`
	Data string `json:"data" binding:"required"` // base64 หรือ data URL
}

func (s *TenantService) UploadDocument(ctx context.Context, a access.Actor, slug string, in *DocumentInput) (*entity.TenantDocument, error) {
	t, err := merchantTenant(s.Repo, s.Policy, a, slug)
	if err != nil {
		return nil, err
	}
	data, ct, err := blob.DecodeBase64(in.Data)
	if err != nil {
		return nil, apperr.BadRequestf("invalid document: %v", err)
	}
	url, err := s.Blob.Put(ctx, "documents/"+t.Slug, ct, data)
	if err != nil {
		return nil, apperr.Wrap(apperr.BadRequest, "upload failed", err)
	}
	doc := &entity.TenantDocument{Kind: in.Kind, URL: url, ContentType: ct, TenantID: t.ID}
	if err := s.Repo.AddDocument(doc); err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return doc, nil
}

func (s *TenantService) Documents(a access.Actor, slug string) ([]entity.TenantDocument, error) {
	t, err := merchantTenant(s.Repo, s.Policy, a, slug)
	if err != nil {
		return nil, err
	}
	docs, err := s.Repo.ListDocuments(t.ID)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	return docs, nil
}
