// Package services – IntakeService
//
// This file implements IntakeService, the application-level component that
// owns vendor intake: it validates the submission, deduplicates the client by
// email, creates the vehicle, freezes the preliminary quote from the checklist
// snapshot, and persists the repair with its responses in one transaction.
//
// The quote is computed before the transaction from a catalog snapshot and
// the configured hourly rate, and is never recomputed afterwards: later
// catalog or rate edits do not move an already-registered quote.
//
// Observability: public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
	"github.com/likerotech-cyber/Check-Lariviere/internal/quote"
	"github.com/likerotech-cyber/Check-Lariviere/internal/realtime"
	"github.com/likerotech-cyber/Check-Lariviere/internal/repo"
)

// IntakeService registers new repairs from the vendor screen.
type IntakeService struct {
	DB   *gorm.DB
	Feed realtime.Feed

	// DetailedQuoteFee is the flat fee charged when the client asks for a
	// detailed quote. Applied iff the decision is detailed_quote.
	DetailedQuoteFee decimal.Decimal

	// FallbackHourlyRate is used when the settings table was never seeded.
	FallbackHourlyRate decimal.Decimal
}

// IntakeRequest is one vendor intake submission.
type IntakeRequest struct {
	VendorName string
	ClientIssue string

	ClientName  string
	ClientPhone *string
	ClientEmail *string

	VehicleType   domain.VehicleType
	VehicleBrand  *string
	VehicleModel  *string
	VehicleSerial *string

	DesiredReturnDate *time.Time

	// Responses maps checklist item IDs to their verdicts. Items absent from
	// the map were not answered and contribute nothing to the quote.
	Responses map[string]domain.ChecklistVerdict

	ClientDecision domain.ClientDecision
	MaxPrice       *decimal.Decimal
}

// validate rejects malformed submissions before anything touches the database.
func (r *IntakeRequest) validate() error {
	if strings.TrimSpace(r.VendorName) == "" {
		return ErrMissingVendorName
	}
	if strings.TrimSpace(r.ClientName) == "" {
		return ErrMissingClientName
	}
	if strings.TrimSpace(r.ClientIssue) == "" {
		return ErrMissingClientIssue
	}
	if !r.VehicleType.ValidVehicle() {
		return ErrInvalidVehicleType
	}
	for _, v := range r.Responses {
		if !v.Valid() {
			return ErrInvalidVerdict
		}
	}
	if !r.ClientDecision.Valid() {
		return ErrInvalidDecision
	}
	if r.ClientDecision == domain.DecisionMaxPrice && r.MaxPrice == nil {
		return ErrMissingMaxPrice
	}
	if r.MaxPrice != nil && r.MaxPrice.IsNegative() {
		return ErrInvalidMaxPrice
	}
	return nil
}

// Register performs the intake. On success the repair row is returned with the
// frozen quote; a "repairs" change cue is published best-effort afterwards.
func (s *IntakeService) Register(ctx context.Context, req IntakeRequest) (*domain.Repair, error) {
	tr := otel.Tracer("services/IntakeService")
	ctx, span := tr.Start(ctx, "Register",
		trace.WithAttributes(attribute.String("vehicle.type", string(req.VehicleType))),
	)
	defer span.End()

	if err := req.validate(); err != nil {
		return nil, err
	}

	rate, err := s.hourlyRate(ctx)
	if err != nil {
		return nil, err
	}

	// Catalog snapshot for this vehicle type; the quote and the stored
	// responses both derive from it.
	items, err := repo.ListChecklistItems(ctx, s.DB, &req.VehicleType)
	if err != nil {
		return nil, err
	}
	est := quote.Compute(items, req.Responses, req.VehicleType, rate)

	fee := decimal.Zero
	if req.ClientDecision == domain.DecisionDetailedQuote {
		fee = s.DetailedQuoteFee
	}

	var repair *domain.Repair
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		client, err := s.resolveClient(ctx, tx, req)
		if err != nil {
			return err
		}

		vehicle, err := repo.CreateVehicle(ctx, tx, client.ID, req.VehicleType,
			req.VehicleBrand, req.VehicleModel, req.VehicleSerial)
		if err != nil {
			return err
		}

		r := &domain.Repair{
			ClientID:              client.ID,
			VehicleID:             vehicle.ID,
			VendorName:            strings.TrimSpace(req.VendorName),
			ClientIssue:           strings.TrimSpace(req.ClientIssue),
			DesiredReturnDate:     req.DesiredReturnDate,
			EstimatedLaborMinutes: est.LaborMinutes,
			PreliminaryQuote:      est.Total,
			ClientDecision:        req.ClientDecision,
			MaxPrice:              req.MaxPrice,
			DetailedQuoteFee:      fee,
		}
		if r, err = repo.CreateRepair(ctx, tx, r); err != nil {
			return err
		}

		// Persist one response row per answered item that exists in the
		// snapshot; verdicts for unknown or inapplicable items are dropped.
		responses := make([]domain.ChecklistResponse, 0, len(req.Responses))
		for _, it := range items {
			v, ok := req.Responses[it.ID]
			if !ok {
				continue
			}
			responses = append(responses, domain.ChecklistResponse{
				RepairID:        r.ID,
				ChecklistItemID: it.ID,
				Status:          v,
			})
		}
		if err := repo.CreateChecklistResponses(ctx, tx, responses); err != nil {
			return err
		}

		repair = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Feed != nil {
		_ = s.Feed.Publish(ctx, realtime.CollectionRepairs)
	}
	return repair, nil
}

// resolveClient finds an existing client by email and refreshes its contact
// details, or creates a fresh row. Intakes without an email always create a
// new client; there is nothing safe to dedup on.
func (s *IntakeService) resolveClient(ctx context.Context, tx *gorm.DB, req IntakeRequest) (*domain.Client, error) {
	name := strings.TrimSpace(req.ClientName)
	if req.ClientEmail == nil || strings.TrimSpace(*req.ClientEmail) == "" {
		return repo.CreateClient(ctx, tx, name, req.ClientPhone, nil)
	}

	existing, err := repo.FindClientByEmail(ctx, tx, *req.ClientEmail)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.CreateClient(ctx, tx, name, req.ClientPhone, req.ClientEmail)
	}
	if err != nil {
		return nil, err
	}

	if err := repo.RefreshClient(ctx, tx, existing.ID, name, req.ClientPhone); err != nil {
		return nil, err
	}
	existing.Name = name
	existing.Phone = req.ClientPhone
	return existing, nil
}

// hourlyRate reads the configured labor rate, falling back to the bootstrap
// default when the settings table is empty.
func (s *IntakeService) hourlyRate(ctx context.Context) (decimal.Decimal, error) {
	settings, err := repo.GetSettings(ctx, s.DB)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.FallbackHourlyRate, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return settings.HourlyRate, nil
}
