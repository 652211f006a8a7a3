// Repair HTTP handlers.
//
// This file exposes REST endpoints for the repair workflow:
//   - POST   /repairs              (vendor intake, honors Idempotency-Key)
//   - GET    /repairs              (workboard listing, paginated, ETag support)
//   - GET    /repairs/{id}         (detail with client, vehicle, ng responses)
//   - PATCH  /repairs/{id}/status  (workflow transition)
//   - PUT    /repairs/{id}/report  (batched notes + final quote save)
//   - POST   /repairs/{id}/quote-email (send preliminary quote to the client)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
	"github.com/likerotech-cyber/Check-Lariviere/internal/http/middleware"
	"github.com/likerotech-cyber/Check-Lariviere/internal/repo"
	"github.com/likerotech-cyber/Check-Lariviere/internal/services"
	"github.com/likerotech-cyber/Check-Lariviere/internal/utils"
)

//
// Service contracts (context-aware)
//

// IntakeService defines the vendor intake operation consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type IntakeService interface {
	// Register validates and persists one intake, returning the new repair.
	Register(ctx context.Context, req services.IntakeRequest) (*domain.Repair, error)
}

// RepairService defines the technician-side workflow operations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type RepairService interface {
	// ListPage returns a page of the workboard and the total count.
	ListPage(ctx context.Context, status *domain.RepairStatus, page, pageSize int) ([]domain.Repair, int64, error)
	// Get returns one repair with its ng checklist responses.
	Get(ctx context.Context, id string) (*services.RepairDetail, error)
	// ChangeStatus persists a workflow transition (completion edge notifies).
	ChangeStatus(ctx context.Context, id string, next domain.RepairStatus) (*domain.Repair, error)
	// SaveWorkReport persists technician notes and the final quote atomically.
	SaveWorkReport(ctx context.Context, id string, report services.WorkReport) error
	// SendQuoteEmail sends the preliminary quote summary to the client.
	SendQuoteEmail(ctx context.Context, id string) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the public API. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic; the DB handle is used only for conditional-response
// metadata and idempotency records.
type Handlers struct {
	intakeSvc   IntakeService
	repairSvc   RepairService
	catalogSvc  CatalogService
	settingsSvc SettingsService
	authSvc     AuthService

	db             *gorm.DB
	idempotencyTTL time.Duration
}

// New constructs a Handlers instance bound to the given services.
func New(intake IntakeService, repair RepairService, catalog CatalogService, settings SettingsService, auth AuthService, db *gorm.DB, idemTTL time.Duration) *Handlers {
	return &Handlers{
		intakeSvc:      intake,
		repairSvc:      repair,
		catalogSvc:     catalog,
		settingsSvc:    settings,
		authSvc:        auth,
		db:             db,
		idempotencyTTL: idemTTL,
	}
}

//
// DTOs
//

// IntakeBody is the JSON payload for registering a repair.
type IntakeBody struct {
	VendorName  string `json:"vendor_name" binding:"required" example:"Marie"`
	ClientIssue string `json:"client_issue" binding:"required" example:"Les freins sifflent"`

	ClientName  string  `json:"client_name" binding:"required" example:"Jean Dupont"`
	ClientPhone *string `json:"client_phone,omitempty" example:"+33 6 12 34 56 78"`
	ClientEmail *string `json:"client_email,omitempty" example:"jean@example.com"`

	VehicleType   string  `json:"vehicle_type" binding:"required" example:"bike"`
	VehicleBrand  *string `json:"vehicle_brand,omitempty" example:"Decathlon"`
	VehicleModel  *string `json:"vehicle_model,omitempty" example:"Riverside 500"`
	VehicleSerial *string `json:"vehicle_serial,omitempty"`

	DesiredReturnDate *time.Time `json:"desired_return_date,omitempty"`

	// Responses maps checklist item IDs to "ok" or "ng".
	Responses map[string]string `json:"responses"`

	ClientDecision string           `json:"client_decision" binding:"required" example:"accepted"`
	MaxPrice       *decimal.Decimal `json:"max_price,omitempty"`
}

// StatusBody is the JSON payload for a workflow transition.
type StatusBody struct {
	Status string `json:"status" binding:"required" example:"in_repair"`
}

// WorkReportBody is the JSON payload for the batched work-report save.
// final_quote uses raw JSON so that an explicit null ("clear the quote") can
// be distinguished from the field being absent ("leave it alone").
type WorkReportBody struct {
	FinalQuote json.RawMessage   `json:"final_quote,omitempty" swaggertype:"number"`
	Notes      map[string]string `json:"notes,omitempty"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListRepairsResponse wraps a page of repairs and pagination information.
type ListRepairsResponse struct {
	Repairs    []domain.Repair `json:"repairs"`
	Pagination Pagination      `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 50
		maxPageSize     = 200
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// statusFilter parses an optional ?status= query parameter.
func statusFilter(c *gin.Context) (*domain.RepairStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	st := domain.RepairStatus(raw)
	if !st.Valid() {
		return nil, false
	}
	return &st, true
}

//
// Handlers
//

// CreateRepair godoc
// @ID          createRepair
// @Summary     Register a repair (vendor intake)
// @Description Validates the intake, deduplicates the client by email, freezes the preliminary quote, and creates the repair with its checklist responses. Supports safe retries via the Idempotency-Key header.
// @Tags        Repairs
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       Idempotency-Key  header  string  false "Stable key for safe retries"
// @Param       body             body    handlers.IntakeBody  true  "Intake payload"
//
// @Success     201  {object}  domain.Repair
// @Success     200  {object}  domain.Repair "Replayed intake"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /repairs [post]
func (h *Handlers) CreateRepair(c *gin.Context) {
	ctx := c.Request.Context()
	uid := middleware.UserID(c)
	if uid == "" {
		uid = "anonymous" // must match the lookup key used by the middleware
	}

	// Serve a stored outcome before re-running the intake. The lookup is
	// keyed by the authenticated user; the middleware replay flag only
	// feeds the rate-limit bypass and is not trusted here.
	if key, okKey := middleware.GetIdempotencyKey(c); okKey && h.db != nil {
		rec, err := repo.GetIdempotency(ctx, h.db, uid, middleware.IdempotencyScope(c), key, time.Now().UTC())
		if err == nil && rec != nil {
			if detail, derr := h.repairSvc.Get(ctx, rec.RepairID); derr == nil {
				ok(c, rec.Status, detail.Repair)
				return
			}
		}
	}

	var body IntakeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	responses := make(map[string]domain.ChecklistVerdict, len(body.Responses))
	for id, v := range body.Responses {
		responses[id] = domain.ChecklistVerdict(v)
	}

	repair, err := h.intakeSvc.Register(ctx, services.IntakeRequest{
		VendorName:        body.VendorName,
		ClientIssue:       body.ClientIssue,
		ClientName:        body.ClientName,
		ClientPhone:       body.ClientPhone,
		ClientEmail:       body.ClientEmail,
		VehicleType:       domain.VehicleType(body.VehicleType),
		VehicleBrand:      body.VehicleBrand,
		VehicleModel:      body.VehicleModel,
		VehicleSerial:     body.VehicleSerial,
		DesiredReturnDate: body.DesiredReturnDate,
		Responses:         responses,
		ClientDecision:    domain.ClientDecision(body.ClientDecision),
		MaxPrice:          body.MaxPrice,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingVendorName),
			errors.Is(err, services.ErrMissingClientName),
			errors.Is(err, services.ErrMissingClientIssue),
			errors.Is(err, services.ErrInvalidVehicleType),
			errors.Is(err, services.ErrInvalidVerdict),
			errors.Is(err, services.ErrInvalidDecision),
			errors.Is(err, services.ErrMissingMaxPrice),
			errors.Is(err, services.ErrInvalidMaxPrice):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeIntakeFailed, err.Error())
		}
		return
	}

	// Record the idempotency outcome (best effort; a failed write only means
	// a retry will re-run the intake).
	if key, okKey := middleware.GetIdempotencyKey(c); okKey {
		_, _ = repo.CreateIdempotency(ctx, h.db, uid, middleware.IdempotencyScope(c), key,
			repair.ID, http.StatusCreated, h.idempotencyTTL)
	}

	ok(c, http.StatusCreated, repair)
}

// ListRepairs godoc
// @ID          listRepairs
// @Summary     List repairs (workboard, paginated)
// @Description Returns repairs ordered by desired return date (soonest first, undated last) then newest intake first. Supports an optional status filter and weak ETag via If-None-Match.
// @Tags        Repairs
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       status         query   string  false "Filter by workflow status"   Enums(initial, pending_approval, parts_ordered, in_repair, completed)
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(200) default(50)
//
// @Success     200  {object} handlers.ListRepairsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /repairs [get]
func (h *Handlers) ListRepairs(c *gin.Context) {
	ctx := c.Request.Context()

	status, okStatus := statusFilter(c)
	if !okStatus {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown status filter")
		return
	}
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if h.db != nil {
		count, maxTS, err := repo.RepairsStats(ctx, h.db, status)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			filter := ""
			if status != nil {
				filter = string(*status)
			}
			etag := fmt.Sprintf(`W/"repairs:%s:%d:%d"`, filter, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.repairSvc.ListPage(ctx, status, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListRepairsResponse{
		Repairs: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetRepair godoc
// @ID          getRepair
// @Summary     Get one repair
// @Description Returns the repair with its client, vehicle, and the checklist responses marked "ng" (catalog items included).
// @Tags        Repairs
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Repair ID (UUID)"  format(uuid)
//
// @Success     200  {object} services.RepairDetail
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Repair not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /repairs/{id} [get]
func (h *Handlers) GetRepair(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "repair id must be a UUID")
		return
	}

	detail, err := h.repairSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrRepairNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "repair not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, detail)
}

// UpdateRepairStatus godoc
// @ID          updateRepairStatus
// @Summary     Change workflow status
// @Description Moves the repair to the given status. Entering "completed" triggers the pickup and billing notices (best effort).
// @Tags        Repairs
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Repair ID (UUID)"  format(uuid)
// @Param       body  body  handlers.StatusBody  true  "Target status"
//
// @Success     200  {object} domain.Repair
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Repair not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /repairs/{id}/status [patch]
func (h *Handlers) UpdateRepairStatus(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "repair id must be a UUID")
		return
	}

	var body StatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	repair, err := h.repairSvc.ChangeStatus(c.Request.Context(), id, domain.RepairStatus(body.Status))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrRepairNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "repair not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeStatusFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, repair)
}

// SaveWorkReport godoc
// @ID          saveWorkReport
// @Summary     Save the work report
// @Description Persists the final quote and technician notes in one transaction. A null final_quote clears the stored value; an absent field leaves it untouched. Blank notes are skipped.
// @Tags        Repairs
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  string  true  "Repair ID (UUID)"  format(uuid)
// @Param       body  body  handlers.WorkReportBody  true  "Work report payload"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Repair or response not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /repairs/{id}/report [put]
func (h *Handlers) SaveWorkReport(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "repair id must be a UUID")
		return
	}

	var body WorkReportBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	report := services.WorkReport{Notes: body.Notes}
	if len(body.FinalQuote) > 0 {
		report.FinalQuoteSet = true
		if string(body.FinalQuote) != "null" {
			var d decimal.Decimal
			if err := json.Unmarshal(body.FinalQuote, &d); err != nil {
				fail(c, http.StatusBadRequest, ErrCodeBadRequest, "final_quote must be a number or null")
				return
			}
			report.FinalQuote = &d
		}
	}

	if err := h.repairSvc.SaveWorkReport(c.Request.Context(), id, report); err != nil {
		switch {
		case errors.Is(err, services.ErrRepairNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "repair not found")
		case errors.Is(err, services.ErrResponseNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "checklist response not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeReportFailed, err.Error())
		}
		return
	}
	noContent(c)
}

// SendQuoteEmail godoc
// @ID          sendQuoteEmail
// @Summary     Email the preliminary quote
// @Description Sends the diagnostic summary and estimated amount to the client. Fails with 409 when the client has no email address.
// @Tags        Repairs
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  string  true  "Repair ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Repair not found"
// @Failure     409  {object} handlers.ErrorResponse "Client has no email"
// @Failure     502  {object} handlers.ErrorResponse "Delivery failed"
// @Router      /repairs/{id}/quote-email [post]
func (h *Handlers) SendQuoteEmail(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "repair id must be a UUID")
		return
	}

	if err := h.repairSvc.SendQuoteEmail(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrRepairNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "repair not found")
		case errors.Is(err, services.ErrClientEmailMissing):
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			fail(c, http.StatusBadGateway, ErrCodeEmailFailed, err.Error())
		}
		return
	}
	noContent(c)
}
