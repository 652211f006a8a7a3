// Package services – RepairService
//
// This file implements RepairService, which owns the technician side of the
// workflow: the workboard listing, the repair detail view, status transitions
// with completion notifications, the batched work-report save, and the
// user-triggered preliminary-quote email.
//
// Notification semantics are deliberately asymmetric. Completion emails fire
// on the edge into the completed state and are best-effort: a failed send is
// logged and the transition stands. The quote email is user-triggered, so its
// failure surfaces to the caller.
//
// Observability: public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
	"github.com/likerotech-cyber/Check-Lariviere/internal/notify"
	"github.com/likerotech-cyber/Check-Lariviere/internal/realtime"
	"github.com/likerotech-cyber/Check-Lariviere/internal/repo"
)

// RepairService coordinates the repair workflow.
type RepairService struct {
	DB     *gorm.DB
	Mailer notify.Mailer
	Feed   realtime.Feed
	Log    zerolog.Logger

	// BillingEmail is the shop mailbox that receives the internal
	// ready-for-billing notice on completion.
	BillingEmail string
}

// RepairDetail is the technician detail view: the repair with its client and
// vehicle, plus the "ng" checklist responses (catalog items preloaded).
type RepairDetail struct {
	Repair    domain.Repair              `json:"repair"`
	Responses []domain.ChecklistResponse `json:"responses"`
}

// WorkReport is the batched save from the technician screen. FinalQuoteSet
// distinguishes "clear the quote" (true, nil value) from "leave it alone"
// (false); Notes maps response IDs to annotation text.
type WorkReport struct {
	FinalQuote    *decimal.Decimal
	FinalQuoteSet bool
	Notes         map[string]string
}

// ListPage returns a page of the workboard, optionally filtered by status.
// It applies defaults for invalid page/pageSize and returns the total count.
func (s *RepairService) ListPage(ctx context.Context, status *domain.RepairStatus, page, pageSize int) ([]domain.Repair, int64, error) {
	tr := otel.Tracer("services/RepairService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(attribute.Int("page", page), attribute.Int("page_size", pageSize)),
	)
	defer span.End()

	if status != nil && !status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountRepairs(ctx, s.DB, status)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Repair{}, 0, nil
	}

	items, err := repo.ListRepairsPage(ctx, s.DB, status, offset, pageSize)
	return items, total, err
}

// Get returns the detail view for one repair, or ErrRepairNotFound.
func (s *RepairService) Get(ctx context.Context, id string) (*RepairDetail, error) {
	tr := otel.Tracer("services/RepairService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.String("repair.id", id)),
	)
	defer span.End()

	r, err := repo.GetRepair(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRepairNotFound
	}
	if err != nil {
		return nil, err
	}

	responses, err := repo.ListResponses(ctx, s.DB, id, true)
	if err != nil {
		return nil, err
	}
	return &RepairDetail{Repair: *r, Responses: responses}, nil
}

// ChangeStatus persists a workflow transition. Any state may move to any
// state; the edge into completed additionally fires the completion emails.
// A completed→completed write is a harmless no-op notification-wise.
func (s *RepairService) ChangeStatus(ctx context.Context, id string, next domain.RepairStatus) (*domain.Repair, error) {
	tr := otel.Tracer("services/RepairService")
	ctx, span := tr.Start(ctx, "ChangeStatus",
		trace.WithAttributes(
			attribute.String("repair.id", id),
			attribute.String("repair.status", string(next)),
		),
	)
	defer span.End()

	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	r, err := repo.GetRepair(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRepairNotFound
	}
	if err != nil {
		return nil, err
	}
	prev := r.Status

	if err := repo.UpdateRepairStatus(ctx, s.DB, id, next); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRepairNotFound
		}
		return nil, err
	}
	r.Status = next

	if domain.EntersCompleted(prev, next) {
		s.sendCompletionEmails(ctx, r)
	}

	if s.Feed != nil {
		_ = s.Feed.Publish(ctx, realtime.CollectionRepairs)
	}
	return r, nil
}

// sendCompletionEmails delivers the pickup notice (iff the client has an
// email) and the internal billing notice. Failures are logged, never returned:
// the status transition has already been persisted and stands.
func (s *RepairService) sendCompletionEmails(ctx context.Context, r *domain.Repair) {
	if r.Client.Email != nil && strings.TrimSpace(*r.Client.Email) != "" {
		err := s.Mailer.Send(ctx, notify.Email{
			To:         *r.Client.Email,
			Subject:    notify.SubjectVehicleReady,
			Body:       notify.CompletionClientBody(r.Client.Name, r.Vehicle.Type),
			RepairID:   r.ID,
			ClientName: r.Client.Name,
		})
		if err != nil {
			s.Log.Error().Err(err).Str("repair_id", r.ID).Msg("pickup notice failed")
		}
	}

	err := s.Mailer.Send(ctx, notify.Email{
		To:         s.BillingEmail,
		Subject:    notify.SubjectReadyForBilling,
		Body:       notify.CompletionBillingBody(r.ID, r.Client.Name, r.Vehicle.Type, r.FinalQuote),
		RepairID:   r.ID,
		ClientName: r.Client.Name,
	})
	if err != nil {
		s.Log.Error().Err(err).Str("repair_id", r.ID).Msg("billing notice failed")
	}
}

// SaveWorkReport persists the final quote and the technician notes in one
// transaction. Blank notes are skipped, never stored as empty strings; a nil
// quote with FinalQuoteSet writes NULL (an explicit clear).
func (s *RepairService) SaveWorkReport(ctx context.Context, id string, report WorkReport) error {
	tr := otel.Tracer("services/RepairService")
	ctx, span := tr.Start(ctx, "SaveWorkReport",
		trace.WithAttributes(attribute.String("repair.id", id)),
	)
	defer span.End()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if report.FinalQuoteSet {
			if err := repo.UpdateFinalQuote(ctx, tx, id, report.FinalQuote); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrRepairNotFound
				}
				return err
			}
		} else {
			// Still verify the repair exists so a bad ID fails loudly.
			if _, err := repo.GetRepair(ctx, tx, id); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrRepairNotFound
				}
				return err
			}
		}

		for responseID, note := range report.Notes {
			note = strings.TrimSpace(note)
			if note == "" {
				continue
			}
			if err := repo.UpdateResponseNote(ctx, tx, id, responseID, note); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrResponseNotFound
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.Feed != nil {
		_ = s.Feed.Publish(ctx, realtime.CollectionRepairs)
	}
	return nil
}

// SendQuoteEmail sends the preliminary-quote summary to the client. It is
// user-triggered, so delivery failure is returned to the caller instead of
// being swallowed.
func (s *RepairService) SendQuoteEmail(ctx context.Context, id string) error {
	tr := otel.Tracer("services/RepairService")
	ctx, span := tr.Start(ctx, "SendQuoteEmail",
		trace.WithAttributes(attribute.String("repair.id", id)),
	)
	defer span.End()

	r, err := repo.GetRepair(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRepairNotFound
	}
	if err != nil {
		return err
	}
	if r.Client.Email == nil || strings.TrimSpace(*r.Client.Email) == "" {
		return ErrClientEmailMissing
	}

	ngResponses, err := repo.ListResponses(ctx, s.DB, id, true)
	if err != nil {
		return err
	}

	body := notify.PreliminaryQuoteBody(
		r.Client.Name,
		r.Vehicle.Type,
		r.Vehicle.Brand,
		r.Vehicle.Model,
		r.PreliminaryQuote,
		r.EstimatedLaborMinutes,
		len(ngResponses),
	)
	return s.Mailer.Send(ctx, notify.Email{
		To:         *r.Client.Email,
		Subject:    notify.SubjectPreliminaryQuote,
		Body:       body,
		RepairID:   r.ID,
		ClientName: r.Client.Name,
	})
}
