package entity

import "gorm.io/gorm"

// Category: slug ไม่ซ้ำภายในร้านเดียวกัน (tenant_id = NULL คือหมวดกลาง)
type Category struct {
	gorm.Model
	Name         string `gorm:"not null" json:"name"`
	Slug         string `gorm:"not null;index:idx_category_tenant_slug,unique" json:"slug"`
	BusinessType string `gorm:"index" json:"businessType"`

	TenantID *uint   `gorm:"index:idx_category_tenant_slug,unique" json:"tenantId,omitempty"`
	Tenant   *Tenant `json:"-"`

	ParentID      *uint      `gorm:"index" json:"parentId,omitempty"`
	Parent        *Category  `json:"-"`
	Subcategories []Category `gorm:"foreignKey:ParentID" json:"subcategories,omitempty"`
}
