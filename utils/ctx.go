package utils

import (
	"strconv"

	"github.com/abdout/souq/pkg/access"

	"github.com/gin-gonic/gin"
)

func CurrentUserID(c *gin.Context) uint {
	v, _ := c.Get("userId")
	switch id := v.(type) {
	case uint:
		return id
	case int:
		return uint(id)
	case int64:
		return uint(id)
	case float64:
		return uint(id)
	default:
		return 0
	}
}

func CurrentRole(c *gin.Context) string {
	if v, ok := c.Get("role"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func CurrentTenantID(c *gin.Context) *uint {
	if v, ok := c.Get("tenantId"); ok {
		if id, ok := v.(*uint); ok {
			return id
		}
	}
	return nil
}

// CurrentActor รวม user/role/tenant ที่ middleware ใส่ไว้
func CurrentActor(c *gin.Context) access.Actor {
	return access.Actor{
		UserID:   CurrentUserID(c),
		Role:     CurrentRole(c),
		TenantID: CurrentTenantID(c),
	}
}

// ParamUint อ่าน path param เป็น uint (0 = ไม่ถูกต้อง)
func ParamUint(c *gin.Context, name string) uint {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

// QueryInt อ่าน query เป็น int ถ้าไม่มี/ผิดรูปแบบคืน def
func QueryInt(c *gin.Context, name string, def int) int {
	s := c.Query(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
