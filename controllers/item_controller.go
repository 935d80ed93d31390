package controllers

import (
	"github.com/abdout/souq/pkg/resp"
	"github.com/abdout/souq/repository"
	"github.com/abdout/souq/services"
	"github.com/abdout/souq/utils"

	"github.com/gin-gonic/gin"
)

type ItemController struct{ Svc *services.ItemService }

func NewItemController(s *services.ItemService) *ItemController { return &ItemController{Svc: s} }

// ===== Storefront =====

// GET /items?search=&categorySlug=&businessType=&tenantSlug=&minPrice=&maxPrice=&onlyInStock=&sort=&page=&limit=
func (h *ItemController) List(c *gin.Context) {
	minPrice, ok := queryDecimal(c, "minPrice")
	if !ok {
		return
	}
	maxPrice, ok := queryDecimal(c, "maxPrice")
	if !ok {
		return
	}
	page, err := h.Svc.List(repository.ItemFilter{
		Search:       c.Query("search"),
		CategorySlug: c.Query("categorySlug"),
		BusinessType: c.Query("businessType"),
		TenantSlug:   c.Query("tenantSlug"),
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
		OnlyInStock:  c.Query("onlyInStock") == "true",
		Sort:         c.DefaultQuery("sort", "newest"),
		Page:         utils.QueryInt(c, "page", 1),
		Limit:        utils.QueryInt(c, "limit", services.DefaultItemLimit),
	})
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, page)
}

// GET /items/:id
func (h *ItemController) Detail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	d, err := h.Svc.Detail(utils.CurrentActor(c), id)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, d)
}

// GET /categories?businessType=&tenantSlug=
func (h *ItemController) Categories(c *gin.Context) {
	cats, err := h.Svc.ListCategories(c.Query("businessType"), c.Query("tenantSlug"))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, cats)
}

// ===== Merchant =====

// GET /merchant/items
func (h *ItemController) MerchantList(c *gin.Context) {
	cards, err := h.Svc.ListForMerchant(utils.CurrentActor(c), tenantSlug(c))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, cards)
}

// POST /merchant/items
func (h *ItemController) Create(c *gin.Context) {
	var in services.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	it, err := h.Svc.Create(utils.CurrentActor(c), tenantSlug(c), &in)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Created(c, it)
}

// PATCH /merchant/items/:id
func (h *ItemController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in services.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	it, err := h.Svc.Update(utils.CurrentActor(c), id, &in)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, it)
}

// PATCH /merchant/items/:id/availability
func (h *ItemController) ToggleAvailability(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	res, err := h.Svc.ToggleAvailability(utils.CurrentActor(c), id)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, res)
}

// PATCH /merchant/items/:id/archive {archived}  ไม่ส่ง body = archive
func (h *ItemController) Archive(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Archived *bool `json:"archived"`
	}
	_ = c.ShouldBindJSON(&req)
	archived := true
	if req.Archived != nil {
		archived = *req.Archived
	}
	it, err := h.Svc.Archive(utils.CurrentActor(c), id, archived)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, it)
}

// POST /merchant/items/:id/image {image: base64 | data URL}
func (h *ItemController) UploadImage(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Image string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	it, err := h.Svc.UploadImage(c.Request.Context(), utils.CurrentActor(c), id, req.Image)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, it)
}

// POST /merchant/categories
func (h *ItemController) CreateCategory(c *gin.Context) {
	var in services.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	cat, err := h.Svc.CreateCategory(utils.CurrentActor(c), tenantSlug(c), &in)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Created(c, cat)
}
