// Package access decides tenant visibility for every scoped read and write.
package access

import (
	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/apperr"

	"gorm.io/gorm"
)

// Actor = ผู้เรียก API (มาจาก JWT)
type Actor struct {
	UserID   uint
	Role     string
	TenantID *uint
}

func (a Actor) SuperAdmin() bool { return a.Role == entity.RoleSuperAdmin }

func (a Actor) MemberOf(tenantID uint) bool {
	return a.TenantID != nil && *a.TenantID == tenantID
}

// Policy is consulted by every tenant-scoped operation.
type Policy interface {
	// CanAccessTenant returns nil or a FORBIDDEN error.
	CanAccessTenant(a Actor, tenantID uint) error
	// Scope narrows a query on a table with a tenant_id column.
	Scope(a Actor, column string) func(*gorm.DB) *gorm.DB
	// RequireSuperAdmin guards platform-wide operations.
	RequireSuperAdmin(a Actor) error
}

type TenantPolicy struct{}

func NewTenantPolicy() *TenantPolicy { return &TenantPolicy{} }

func (TenantPolicy) CanAccessTenant(a Actor, tenantID uint) error {
	if a.SuperAdmin() || a.MemberOf(tenantID) {
		return nil
	}
	return apperr.New(apperr.Forbidden, "cannot access resources of this tenant")
}

func (TenantPolicy) Scope(a Actor, column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if a.SuperAdmin() {
			return db
		}
		if a.TenantID == nil {
			// ไม่มีร้าน = ไม่เห็นอะไรเลย
			return db.Where("1 = 0")
		}
		return db.Where(column+" = ?", *a.TenantID)
	}
}

func (TenantPolicy) RequireSuperAdmin(a Actor) error {
	if a.SuperAdmin() {
		return nil
	}
	return apperr.New(apperr.Forbidden, "superadmin only")
}
