package controllers

import (
	"fmt"
	"net/http"

	"github.com/abdout/souq/pkg/resp"
	"github.com/abdout/souq/services"
	"github.com/abdout/souq/utils"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type InventoryController struct {
	Svc     *services.InventoryService
	Reports *services.ReportService
}

func NewInventoryController(s *services.InventoryService, reports *services.ReportService) *InventoryController {
	return &InventoryController{Svc: s, Reports: reports}
}

type SetQuantityReq struct {
	NewQuantity *int   `json:"newQuantity" binding:"required"`
	Reason      string `json:"reason"`
}

type BulkUpdateReq struct {
	Updates []services.BulkLine `json:"updates" binding:"required,min=1,dive"`
	Reason  string              `json:"reason"`
}

// GET /merchant/inventory/low-stock?threshold=
func (h *InventoryController) LowStock(c *gin.Context) {
	rows, err := h.Svc.LowStock(utils.CurrentActor(c), tenantSlug(c), utils.QueryInt(c, "threshold", 0))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"items": rows, "count": len(rows)})
}

// PATCH /merchant/inventory/:itemId
func (h *InventoryController) SetQuantity(c *gin.Context) {
	id, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	var req SetQuantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	res, err := h.Svc.SetQuantity(utils.CurrentActor(c), id, *req.NewQuantity, req.Reason)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, res)
}

// POST /merchant/inventory/bulk
func (h *InventoryController) BulkUpdate(c *gin.Context) {
	var req BulkUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	res, err := h.Svc.BulkUpdate(utils.CurrentActor(c), tenantSlug(c), req.Updates, req.Reason)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, res)
}

// GET /merchant/inventory/summary
func (h *InventoryController) Summary(c *gin.Context) {
	sum, err := h.Svc.Summary(utils.CurrentActor(c), tenantSlug(c))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, sum)
}

// GET /merchant/inventory/:itemId/history?limit=
func (h *InventoryController) History(c *gin.Context) {
	id, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	rows, err := h.Svc.History(utils.CurrentActor(c), id, utils.QueryInt(c, "limit", 50))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, rows)
}

// GET /merchant/inventory/export (xlsx)
func (h *InventoryController) Export(c *gin.Context) {
	rep, err := h.Reports.InventoryReport(utils.CurrentActor(c), tenantSlug(c))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rep.Filename))
	c.Data(http.StatusOK, xlsxContentType, rep.Data)
}
