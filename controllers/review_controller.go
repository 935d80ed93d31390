package controllers

import (
	"github.com/abdout/souq/pkg/resp"
	"github.com/abdout/souq/services"
	"github.com/abdout/souq/utils"

	"github.com/gin-gonic/gin"
)

type ReviewController struct{ Svc *services.ReviewService }

func NewReviewController(s *services.ReviewService) *ReviewController {
	return &ReviewController{Svc: s}
}

// POST /items/:id/reviews
func (h *ReviewController) Submit(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in services.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	rv, err := h.Svc.Submit(utils.CurrentActor(c), id, &in)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, rv)
}

// GET /items/:id/reviews
func (h *ReviewController) List(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	out, err := h.Svc.List(id)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, out)
}
