package controllers

import (
	"github.com/abdout/souq/pkg/resp"
	"github.com/abdout/souq/services"
	"github.com/abdout/souq/utils"

	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	Svc  *services.CheckoutService
	Auth *services.AuthService
}

func NewCheckoutController(s *services.CheckoutService, auth *services.AuthService) *CheckoutController {
	return &CheckoutController{Svc: s, Auth: auth}
}

// POST /checkout/purchase
func (h *CheckoutController) Purchase(c *gin.Context) {
	var req services.PurchaseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	actor := utils.CurrentActor(c)
	user, err := h.Auth.GetProfile(actor.UserID)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	res, err := h.Svc.Purchase(c.Request.Context(), actor, user.Email, &req)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, res)
}

// POST /checkout/verify
func (h *CheckoutController) Verify(c *gin.Context) {
	url, err := h.Svc.Verify(c.Request.Context(), utils.CurrentActor(c))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"url": url})
}

// POST /checkout/items {ids}
func (h *CheckoutController) Items(c *gin.Context) {
	var req struct {
		IDs []uint `json:"ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	out, err := h.Svc.GetItems(req.IDs)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, out)
}
