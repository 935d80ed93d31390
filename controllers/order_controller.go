package controllers

import (
	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/geo"
	"github.com/abdout/souq/pkg/resp"
	"github.com/abdout/souq/services"
	"github.com/abdout/souq/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrderController struct {
	Svc      *services.OrderService
	Delivery *services.DeliveryService
}

func NewOrderController(s *services.OrderService, d *services.DeliveryService) *OrderController {
	return &OrderController{Svc: s, Delivery: d}
}

type QuoteReq struct {
	TenantSlug  string          `json:"tenantSlug" binding:"required"`
	Coordinates geo.Point       `json:"coordinates"`
	OrderTotal  decimal.Decimal `json:"orderTotal"`
}

type UpdateStatusReq struct {
	Status  string `json:"status" binding:"required"`
	Message string `json:"message"`
}

// ===== Quote / Create =====

// POST /orders/quote
func (oc *OrderController) Quote(c *gin.Context) {
	var req QuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	q, err := oc.Delivery.Quote(req.TenantSlug, req.Coordinates, req.OrderTotal)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	// ส่งไม่ได้ก็ยังเป็น 200 ให้ฝั่ง client ดู canDeliver
	resp.OK(c, q)
}

// POST /orders
func (oc *OrderController) Create(c *gin.Context) {
	var req services.CreateOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	res, err := oc.Svc.CreateDeliveryOrder(utils.CurrentActor(c), &req)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Created(c, res)
}

// ===== Customer =====

// GET /orders?status=&limit=&offset=
func (oc *OrderController) ListForMe(c *gin.Context) {
	out, err := oc.Svc.ListForUser(utils.CurrentActor(c), c.Query("status"), utils.QueryInt(c, "limit", 10), utils.QueryInt(c, "offset", 0))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, out)
}

// GET /orders/:id
func (oc *OrderController) Detail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	o, err := oc.Svc.Detail(utils.CurrentActor(c), id)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, o)
}

// GET /orders/:id/timeline
func (oc *OrderController) Timeline(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	tl, err := oc.Svc.Timeline(utils.CurrentActor(c), id)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, tl)
}

// GET /orders/:id/history
func (oc *OrderController) History(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	rows, err := oc.Svc.History(utils.CurrentActor(c), id)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, rows)
}

// PATCH /orders/:id/status
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	res, err := oc.Svc.Transition(utils.CurrentActor(c), id, entity.OrderStatus(req.Status), req.Message)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, res)
}

// ===== Merchant =====

// GET /merchant/orders?status=&page=&limit=
func (oc *OrderController) ListForTenant(c *gin.Context) {
	out, err := oc.Svc.ListForTenant(utils.CurrentActor(c), tenantSlug(c), c.Query("status"),
		utils.QueryInt(c, "page", 1), utils.QueryInt(c, "limit", 20))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, out)
}

// ===== Library =====

// GET /library?page=&limit=
func (oc *OrderController) Library(c *gin.Context) {
	out, err := oc.Svc.Library(utils.CurrentActor(c), utils.QueryInt(c, "page", 1), utils.QueryInt(c, "limit", services.DefaultItemLimit))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, out)
}

// GET /library/:itemId
func (oc *OrderController) LibraryItem(c *gin.Context) {
	id, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	it, err := oc.Svc.LibraryItem(utils.CurrentActor(c), id)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, it)
}
