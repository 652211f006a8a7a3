// Package services – SettingsService
//
// This file implements SettingsService, which reads and updates the
// single-row shop settings (currently just the hourly labor rate consumed by
// the quote engine). Rate changes only affect future intakes: already
// registered repairs keep their frozen quotes.
package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
	"github.com/likerotech-cyber/Check-Lariviere/internal/realtime"
	"github.com/likerotech-cyber/Check-Lariviere/internal/repo"
)

// SettingsService manages the shop settings row.
type SettingsService struct {
	DB   *gorm.DB
	Feed realtime.Feed
}

// Get returns the settings row.
func (s *SettingsService) Get(ctx context.Context) (*domain.Setting, error) {
	tr := otel.Tracer("services/SettingsService")
	ctx, span := tr.Start(ctx, "Get")
	defer span.End()

	return repo.GetSettings(ctx, s.DB)
}

// UpdateHourlyRate validates and persists a new labor rate, then publishes a
// settings cue.
func (s *SettingsService) UpdateHourlyRate(ctx context.Context, rate decimal.Decimal) (*domain.Setting, error) {
	tr := otel.Tracer("services/SettingsService")
	ctx, span := tr.Start(ctx, "UpdateHourlyRate")
	defer span.End()

	if !rate.IsPositive() {
		return nil, ErrInvalidRate
	}

	current, err := repo.GetSettings(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if err := repo.UpdateHourlyRate(ctx, s.DB, current.ID, rate); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	current.HourlyRate = rate

	if s.Feed != nil {
		_ = s.Feed.Publish(ctx, realtime.CollectionSettings)
	}
	return current, nil
}
