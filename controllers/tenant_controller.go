package controllers

import (
	"strconv"

	"github.com/abdout/souq/pkg/geo"
	"github.com/abdout/souq/pkg/resp"
	"github.com/abdout/souq/services"
	"github.com/abdout/souq/utils"

	"github.com/gin-gonic/gin"
)

type TenantController struct{ Svc *services.TenantService }

func NewTenantController(s *services.TenantService) *TenantController {
	return &TenantController{Svc: s}
}

// GET /tenants?businessType=&page=&limit=
func (h *TenantController) List(c *gin.Context) {
	page, err := h.Svc.ListByBusinessType(c.Query("businessType"), utils.QueryInt(c, "page", 1), utils.QueryInt(c, "limit", 20))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, page)
}

// GET /tenants/nearby?lat=&lng=&businessType=&maxDistance=&currentlyOpen=
func (h *TenantController) Nearby(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		resp.BadRequest(c, "lat and lng are required")
		return
	}
	q := services.NearbyQuery{
		Point:         geo.Point{Lat: lat, Lng: lng},
		BusinessType:  c.Query("businessType"),
		CurrentlyOpen: c.Query("currentlyOpen") == "true",
	}
	if s := c.Query("maxDistance"); s != "" {
		d, err := strconv.ParseFloat(s, 64)
		if err != nil || d <= 0 {
			resp.BadRequest(c, "maxDistance must be a positive number")
			return
		}
		q.MaxDistance = d
	}
	rows, err := h.Svc.Nearby(q)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, rows)
}

// GET /tenants/:slug
func (h *TenantController) Get(c *gin.Context) {
	t, err := h.Svc.GetBySlug(utils.CurrentActor(c), c.Param("slug"))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, t)
}

// PATCH /merchant/tenant
func (h *TenantController) UpdateSettings(c *gin.Context) {
	var in services.SettingsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	t, err := h.Svc.UpdateSettings(utils.CurrentActor(c), tenantSlug(c), &in)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, t)
}

// PATCH /merchant/tenant/active {isActive}
func (h *TenantController) SetActive(c *gin.Context) {
	var req struct {
		IsActive *bool `json:"isActive" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	t, err := h.Svc.SetActive(utils.CurrentActor(c), tenantSlug(c), *req.IsActive)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, t)
}

// POST /merchant/tenant/documents
func (h *TenantController) UploadDocument(c *gin.Context) {
	var in services.DocumentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	doc, err := h.Svc.UploadDocument(c.Request.Context(), utils.CurrentActor(c), tenantSlug(c), &in)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Created(c, doc)
}

// GET /merchant/tenant/documents
func (h *TenantController) Documents(c *gin.Context) {
	docs, err := h.Svc.Documents(utils.CurrentActor(c), tenantSlug(c))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, docs)
}

// DELETE /admin/tenants/:id (superadmin)
func (h *TenantController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(utils.CurrentActor(c), id); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"deleted": id})
}
