package controllers

import (
	"strings"

	"github.com/abdout/souq/pkg/resp"
	"github.com/abdout/souq/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// merchant routes: ?tenant=<slug> ว่าง = ร้านของผู้ใช้เอง (superadmin ต้องระบุ)
func tenantSlug(c *gin.Context) string {
	return strings.TrimSpace(c.Query("tenant"))
}

// idParam อ่าน :name ถ้าไม่ถูกต้องตอบ 400 แล้วคืน false
func idParam(c *gin.Context, name string) (uint, bool) {
	id := utils.ParamUint(c, name)
	if id == 0 {
		resp.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryDecimal: ว่าง = nil
func queryDecimal(c *gin.Context, name string) (*decimal.Decimal, bool) {
	s := strings.TrimSpace(c.Query(name))
	if s == "" {
		return nil, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		resp.BadRequest(c, name+" must be a number")
		return nil, false
	}
	return &d, true
}
