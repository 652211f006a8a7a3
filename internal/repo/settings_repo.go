// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the single-row
// shop settings table.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
)

// GetSettings returns the settings row, or ErrNotFound if the table was never
// seeded.
func GetSettings(ctx context.Context, db *gorm.DB) (*domain.Setting, error) {
	var s domain.Setting
	if err := db.WithContext(ctx).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// SeedSettings ensures the settings row exists, creating it with the given
// hourly rate when the table is empty. An existing row is left untouched so an
// admin-edited rate survives restarts.
func SeedSettings(ctx context.Context, db *gorm.DB, hourlyRate decimal.Decimal) (*domain.Setting, error) {
	existing, err := GetSettings(ctx, db)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	s := &domain.Setting{
		ID:         uuid.NewString(),
		HourlyRate: hourlyRate,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateHourlyRate sets a new labor rate on the settings row. Returns
// ErrNotFound if the row is missing (unseeded database).
func UpdateHourlyRate(ctx context.Context, db *gorm.DB, id string, rate decimal.Decimal) error {
	res := db.WithContext(ctx).
		Model(&domain.Setting{}).
		Where("id = ?", id).
		Updates(map[string]any{"hourly_rate": rate, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
