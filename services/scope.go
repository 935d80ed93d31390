package services

import (
	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/access"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/repository"
)

// merchantTenant หาร้านที่ actor จะจัดการ:
// ระบุ slug มา = ร้านนั้น (ต้องผ่าน policy), ไม่ระบุ = ร้านของ actor เอง
func merchantTenant(tenants *repository.TenantRepository, pol access.Policy, a access.Actor, slug string) (*entity.Tenant, error) {
	if slug != "" {
		t, err := tenants.FindBySlug(slug)
		if err != nil {
			return nil, apperr.FromDB(err, "Tenant not found")
		}
		if err := pol.CanAccessTenant(a, t.ID); err != nil {
			return nil, err
		}
		return t, nil
	}
	if a.TenantID == nil {
		if a.SuperAdmin() {
			return nil, apperr.BadRequestf("tenant slug is required for superadmin")
		}
		return nil, apperr.Forbiddenf("user is not a member of any merchant")
	}
	t, err := tenants.FindByID(*a.TenantID)
	if err != nil {
		return nil, apperr.FromDB(err, "Tenant not found")
	}
	return t, nil
}

// itemForActor โหลดสินค้าแล้วเช็คว่า actor มีสิทธิ์กับร้านเจ้าของ (ไม่มีสิทธิ์ = FORBIDDEN ไม่ใช่ NOT_FOUND)
func itemForActor(items *repository.ItemRepository, pol access.Policy, a access.Actor, itemID uint) (*entity.Item, error) {
	it, err := items.FindByID(itemID)
	if err != nil {
		return nil, apperr.FromDB(err, "Item not found")
	}
	if err := pol.CanAccessTenant(a, it.TenantID); err != nil {
		return nil, err
	}
	return it, nil
}
