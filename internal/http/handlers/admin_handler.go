// Admin and catalog handlers: checklist items, repair templates, and the shop
// settings row. Catalog reads are served to any authenticated user (the vendor
// intake screen renders the checklist); writes live under /admin.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
	"github.com/likerotech-cyber/Check-Lariviere/internal/services"
)

// CatalogService defines the checklist and template operations consumed by
// HTTP handlers.
type CatalogService interface {
	ListItems(ctx context.Context, vt *domain.VehicleType) ([]domain.ChecklistItem, error)
	CreateItem(ctx context.Context, item *domain.ChecklistItem) (*domain.ChecklistItem, error)
	UpdateItem(ctx context.Context, item *domain.ChecklistItem) error
	DeleteItem(ctx context.Context, id string) error

	ListTemplates(ctx context.Context, activeOnly bool) ([]domain.RepairTemplate, error)
	CreateTemplate(ctx context.Context, t *domain.RepairTemplate) (*domain.RepairTemplate, error)
	UpdateTemplate(ctx context.Context, t *domain.RepairTemplate) error
	DeleteTemplate(ctx context.Context, id string) error
}

// SettingsService defines the shop settings operations consumed by HTTP
// handlers.
type SettingsService interface {
	Get(ctx context.Context) (*domain.Setting, error)
	UpdateHourlyRate(ctx context.Context, rate decimal.Decimal) (*domain.Setting, error)
}

// ChecklistItemBody is the JSON payload for creating or updating a catalog item.
type ChecklistItemBody struct {
	Category              string          `json:"category" binding:"required" example:"Freins"`
	ItemName              string          `json:"item_name" binding:"required" example:"Plaquettes avant"`
	VehicleType           string          `json:"vehicle_type" example:"both"`
	EstimatedLaborMinutes int             `json:"estimated_labor_minutes" example:"20"`
	EstimatedPartsCost    decimal.Decimal `json:"estimated_parts_cost" swaggertype:"number" example:"15.50"`
	OrderIndex            int             `json:"order_index"`
}

// TemplateBody is the JSON payload for creating or updating a repair template.
type TemplateBody struct {
	Name             string `json:"name" binding:"required" example:"Révision complète"`
	Description      string `json:"description"`
	VehicleType      string `json:"vehicle_type" example:"bike"`
	EstimatedMinutes int    `json:"estimated_minutes" example:"90"`
	Active           *bool  `json:"active"`
}

// HourlyRateBody is the JSON payload for updating the labor rate.
type HourlyRateBody struct {
	HourlyRate decimal.Decimal `json:"hourly_rate" binding:"required" swaggertype:"number" example:"65"`
}

func (b ChecklistItemBody) toDomain(id string) *domain.ChecklistItem {
	return &domain.ChecklistItem{
		ID:                    id,
		Category:              b.Category,
		ItemName:              b.ItemName,
		VehicleType:           domain.VehicleType(b.VehicleType),
		EstimatedLaborMinutes: b.EstimatedLaborMinutes,
		EstimatedPartsCost:    b.EstimatedPartsCost,
		OrderIndex:            b.OrderIndex,
	}
}

func (b TemplateBody) toDomain(id string) *domain.RepairTemplate {
	active := true
	if b.Active != nil {
		active = *b.Active
	}
	return &domain.RepairTemplate{
		ID:               id,
		Name:             b.Name,
		Description:      b.Description,
		VehicleType:      domain.VehicleType(b.VehicleType),
		EstimatedMinutes: b.EstimatedMinutes,
		IsActive:         active,
	}
}

// ListChecklistItems godoc
// @ID          listChecklistItems
// @Summary     List checklist catalog items
// @Description Returns the diagnostic checklist, ordered by category then order index. Filterable by vehicle type (items marked "both" always match).
// @Tags        Catalog
// @Produce     json
// @Security    BearerAuth
// @Param       vehicle_type  query  string  false "Filter by vehicle type"  Enums(bike, scooter)
// @Success     200  {array}  domain.ChecklistItem
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /checklist-items [get]
func (h *Handlers) ListChecklistItems(c *gin.Context) {
	var vt *domain.VehicleType
	if raw := c.Query("vehicle_type"); raw != "" {
		t := domain.VehicleType(raw)
		vt = &t
	}

	items, err := h.catalogSvc.ListItems(c.Request.Context(), vt)
	if err != nil {
		if errors.Is(err, services.ErrInvalidVehicleType) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// CreateChecklistItem godoc
// @ID          createChecklistItem
// @Summary     Add a checklist catalog item
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.ChecklistItemBody  true  "Item payload"
// @Success     201  {object} domain.ChecklistItem
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /admin/checklist-items [post]
func (h *Handlers) CreateChecklistItem(c *gin.Context) {
	var body ChecklistItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	created, err := h.catalogSvc.CreateItem(c.Request.Context(), body.toDomain(""))
	if err != nil {
		if errors.Is(err, services.ErrInvalidItem) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, created)
}

// UpdateChecklistItem godoc
// @ID          updateChecklistItem
// @Summary     Update a checklist catalog item
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string  true  "Item ID (UUID)"  format(uuid)
// @Param       body  body  handlers.ChecklistItemBody  true  "Item payload"
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Item not found"
// @Router      /admin/checklist-items/{id} [put]
func (h *Handlers) UpdateChecklistItem(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "item id must be a UUID")
		return
	}
	var body ChecklistItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	if err := h.catalogSvc.UpdateItem(c.Request.Context(), body.toDomain(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidItem):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrItemNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "checklist item not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// DeleteChecklistItem godoc
// @ID          deleteChecklistItem
// @Summary     Remove a checklist catalog item
// @Description Deletes the catalog item and its checklist responses. Repairs keep their frozen quotes.
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "Item ID (UUID)"  format(uuid)
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Item not found"
// @Router      /admin/checklist-items/{id} [delete]
func (h *Handlers) DeleteChecklistItem(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "item id must be a UUID")
		return
	}
	if err := h.catalogSvc.DeleteItem(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "checklist item not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// ListTemplates godoc
// @ID          listTemplates
// @Summary     List repair templates
// @Tags        Catalog
// @Produce     json
// @Security    BearerAuth
// @Param       active  query  bool  false "Only active templates"
// @Success     200  {array}  domain.RepairTemplate
// @Router      /templates [get]
func (h *Handlers) ListTemplates(c *gin.Context) {
	activeOnly := c.Query("active") == "true" || c.Query("active") == "1"
	templates, err := h.catalogSvc.ListTemplates(c.Request.Context(), activeOnly)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, templates)
}

// CreateTemplate godoc
// @ID          createTemplate
// @Summary     Add a repair template
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.TemplateBody  true  "Template payload"
// @Success     201  {object} domain.RepairTemplate
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /admin/templates [post]
func (h *Handlers) CreateTemplate(c *gin.Context) {
	var body TemplateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	created, err := h.catalogSvc.CreateTemplate(c.Request.Context(), body.toDomain(""))
	if err != nil {
		if errors.Is(err, services.ErrInvalidTemplate) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, created)
}

// UpdateTemplate godoc
// @ID          updateTemplate
// @Summary     Update a repair template
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string  true  "Template ID (UUID)"  format(uuid)
// @Param       body  body  handlers.TemplateBody  true  "Template payload"
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Template not found"
// @Router      /admin/templates/{id} [put]
func (h *Handlers) UpdateTemplate(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "template id must be a UUID")
		return
	}
	var body TemplateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	if err := h.catalogSvc.UpdateTemplate(c.Request.Context(), body.toDomain(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTemplate):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrTemplateNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// DeleteTemplate godoc
// @ID          deleteTemplate
// @Summary     Remove a repair template
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  string  true  "Template ID (UUID)"  format(uuid)
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Template not found"
// @Router      /admin/templates/{id} [delete]
func (h *Handlers) DeleteTemplate(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "template id must be a UUID")
		return
	}
	if err := h.catalogSvc.DeleteTemplate(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrTemplateNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "template not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// GetSettings godoc
// @ID          getSettings
// @Summary     Get shop settings
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object} domain.Setting
// @Router      /admin/settings [get]
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, err := h.settingsSvc.Get(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, settings)
}

// UpdateSettings godoc
// @ID          updateSettings
// @Summary     Update the hourly labor rate
// @Description Sets the rate used by future preliminary quotes. Registered repairs keep their frozen amounts.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  handlers.HourlyRateBody  true  "New rate"
// @Success     200  {object} domain.Setting
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /admin/settings [put]
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var body HourlyRateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	settings, err := h.settingsSvc.UpdateHourlyRate(c.Request.Context(), body.HourlyRate)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRate) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "hourly rate must be positive")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, settings)
}
