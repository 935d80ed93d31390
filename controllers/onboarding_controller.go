package controllers

import (
	"github.com/abdout/souq/pkg/resp"
	"github.com/abdout/souq/services"
	"github.com/abdout/souq/utils"

	"github.com/gin-gonic/gin"
)

type OnboardingController struct {
	Svc  *services.OnboardingService
	Auth *services.AuthService
}

func NewOnboardingController(s *services.OnboardingService, auth *services.AuthService) *OnboardingController {
	return &OnboardingController{Svc: s, Auth: auth}
}

// GET /onboarding/requirements/:businessType
func (h *OnboardingController) Requirements(c *gin.Context) {
	resp.OK(c, services.RequirementsFor(c.Param("businessType")))
}

// POST /onboarding/start
func (h *OnboardingController) Start(c *gin.Context) {
	var req services.StartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	actor := utils.CurrentActor(c)
	res, err := h.Svc.Start(c.Request.Context(), actor, &req)
	if err != nil {
		resp.Fail(c, err)
		return
	}

	// tenantId ใน token เดิมยังว่าง ออก token ใหม่ให้เลย
	out := gin.H{"onboarding": res}
	if user, err := h.Auth.GetProfile(actor.UserID); err == nil {
		if token, err := h.Auth.TokenFor(user); err == nil {
			out["token"] = token
		}
	}
	resp.Created(c, out)
}

// GET /onboarding/status
func (h *OnboardingController) Status(c *gin.Context) {
	st, err := h.Svc.Status(utils.CurrentActor(c))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, st)
}

// POST /onboarding/complete
func (h *OnboardingController) Complete(c *gin.Context) {
	res, err := h.Svc.Complete(c.Request.Context(), utils.CurrentActor(c))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, res)
}
