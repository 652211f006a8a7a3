// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Repair
// aggregate.
//
// Error semantics match the rest of the package: ErrNotFound when a targeted
// row does not exist, raw gorm errors otherwise. Listing order is a workboard
// concern baked into the query: soonest promised return first (rows without a
// desired return date sort last), ties broken by newest intake first.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
)

// repairBoardOrder is the canonical workboard sort. SQLite sorts NULLs first
// on ASC, so the IS NULL term pushes date-less repairs to the end explicitly.
const repairBoardOrder = "desired_return_date IS NULL, desired_return_date ASC, created_at DESC"

// CreateRepair inserts a new Repair row. The caller provides the business
// fields; ID, initial status and timestamps are assigned here. The persisted
// row is returned.
func CreateRepair(ctx context.Context, db *gorm.DB, r *domain.Repair) (*domain.Repair, error) {
	now := time.Now().UTC()
	r.ID = uuid.NewString()
	r.Status = domain.StatusInitial
	r.CreatedAt = now
	r.UpdatedAt = now
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// CountRepairs returns the number of repairs, optionally scoped to one
// status. Used for pagination metadata alongside ListRepairsPage.
func CountRepairs(ctx context.Context, db *gorm.DB, status *domain.RepairStatus) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.Repair{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ListRepairsPage returns a page of repairs in workboard order, optionally
// filtered by status, with client and vehicle rows preloaded. It returns an
// empty slice when nothing matches.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListRepairsPage(ctx context.Context, db *gorm.DB, status *domain.RepairStatus, offset, limit int) ([]domain.Repair, error) {
	q := db.WithContext(ctx).
		Preload("Client").
		Preload("Vehicle").
		Order(repairBoardOrder).
		Offset(offset).
		Limit(limit)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var out []domain.Repair
	err := q.Find(&out).Error
	return out, err
}

// GetRepair fetches a single repair by ID with its client and vehicle
// preloaded, or ErrNotFound if missing.
func GetRepair(ctx context.Context, db *gorm.DB, id string) (*domain.Repair, error) {
	var r domain.Repair
	err := db.WithContext(ctx).
		Preload("Client").
		Preload("Vehicle").
		Where("id = ?", id).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRepairStatus performs a point update of the workflow status. Returns
// ErrNotFound if the repair does not exist. UpdatedAt is touched so listing
// ETags change with the transition.
func UpdateRepairStatus(ctx context.Context, db *gorm.DB, id string, status domain.RepairStatus) error {
	res := db.WithContext(ctx).
		Model(&domain.Repair{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateFinalQuote sets or clears the technician's final quote. A nil quote
// writes SQL NULL, which is how "cleared" is represented; it is not the same
// as never having quoted. Returns ErrNotFound if the repair does not exist.
func UpdateFinalQuote(ctx context.Context, db *gorm.DB, id string, quote *decimal.Decimal) error {
	res := db.WithContext(ctx).
		Model(&domain.Repair{}).
		Where("id = ?", id).
		Updates(map[string]any{"final_quote": quote, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
