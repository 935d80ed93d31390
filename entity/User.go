package entity

import (
	"gorm.io/gorm"
)

const (
	RoleUser       = "user"
	RoleSuperAdmin = "superadmin"
)

type User struct {
	gorm.Model
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `json:"-"` // ปลอดภัย
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Role      string `gorm:"not null;default:user" json:"role"`

	// ร้านที่ user เป็นสมาชิก (merchant) ไม่มี = ลูกค้าทั่วไป
	TenantID *uint   `gorm:"index" json:"tenantId,omitempty"`
	Tenant   *Tenant `json:"-"`

	Orders  []Order  `json:"-"`
	Reviews []Review `json:"-"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
