package entity

import "gorm.io/gorm"

type TenantDocument struct {
	gorm.Model
	Kind        string `gorm:"not null" json:"kind"` // food_license, health_certificate, ...
	URL         string `gorm:"not null" json:"url"`
	ContentType string `json:"contentType"`

	TenantID uint   `gorm:"index" json:"tenantId"`
	Tenant   Tenant `json:"-"`
}
