package controllers

import (
	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/resp"
	"github.com/abdout/souq/services"
	"github.com/abdout/souq/utils"

	"github.com/gin-gonic/gin"
)

// ตะกร้าแยกต่อร้าน: /cart/:slug/...
type CartController struct{ Svc *services.CartService }

func NewCartController(s *services.CartService) *CartController { return &CartController{Svc: s} }

type AddCartItemReq struct {
	ItemID              uint   `json:"itemId" binding:"required"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"specialInstructions"`
}

type UpdateCartItemReq struct {
	Quantity            *int    `json:"quantity"`
	SpecialInstructions *string `json:"specialInstructions"`
}

func (h *CartController) reply(c *gin.Context, cart *entity.Cart, err error) {
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, cart)
}

// GET /cart/:slug
func (h *CartController) Get(c *gin.Context) {
	cart, err := h.Svc.Get(c.Request.Context(), utils.CurrentUserID(c), c.Param("slug"))
	h.reply(c, cart, err)
}

// POST /cart/:slug/items
func (h *CartController) AddItem(c *gin.Context) {
	var req AddCartItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	cart, err := h.Svc.AddItem(c.Request.Context(), utils.CurrentUserID(c), c.Param("slug"), req.ItemID, req.Quantity, req.SpecialInstructions)
	h.reply(c, cart, err)
}

// PATCH /cart/:slug/items/:itemId {quantity?, specialInstructions?}
func (h *CartController) UpdateItem(c *gin.Context) {
	itemID, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	var req UpdateCartItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	if req.Quantity == nil && req.SpecialInstructions == nil {
		resp.BadRequest(c, "quantity or specialInstructions is required")
		return
	}
	ctx, uid, slug := c.Request.Context(), utils.CurrentUserID(c), c.Param("slug")

	var (
		cart *entity.Cart
		err  error
	)
	if req.SpecialInstructions != nil {
		if cart, err = h.Svc.UpdateInstructions(ctx, uid, slug, itemID, *req.SpecialInstructions); err != nil {
			resp.Fail(c, err)
			return
		}
	}
	if req.Quantity != nil {
		cart, err = h.Svc.UpdateQuantity(ctx, uid, slug, itemID, *req.Quantity)
	}
	h.reply(c, cart, err)
}

// DELETE /cart/:slug/items/:itemId
func (h *CartController) RemoveItem(c *gin.Context) {
	itemID, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	cart, err := h.Svc.RemoveItem(c.Request.Context(), utils.CurrentUserID(c), c.Param("slug"), itemID)
	h.reply(c, cart, err)
}

// PUT /cart/:slug/address
func (h *CartController) SetAddress(c *gin.Context) {
	var addr entity.Address
	if err := c.ShouldBindJSON(&addr); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	cart, err := h.Svc.SetDeliveryAddress(c.Request.Context(), utils.CurrentUserID(c), c.Param("slug"), &addr)
	h.reply(c, cart, err)
}

// PUT /cart/:slug/order-type {orderType}
func (h *CartController) SetOrderType(c *gin.Context) {
	var req struct {
		OrderType string `json:"orderType" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	cart, err := h.Svc.SetOrderType(c.Request.Context(), utils.CurrentUserID(c), c.Param("slug"), req.OrderType)
	h.reply(c, cart, err)
}

// DELETE /cart/:slug
func (h *CartController) Clear(c *gin.Context) {
	if err := h.Svc.Clear(c.Request.Context(), utils.CurrentUserID(c), c.Param("slug")); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"cleared": true})
}

// DELETE /cart
func (h *CartController) ClearAll(c *gin.Context) {
	n, err := h.Svc.ClearAll(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"cleared": n})
}
