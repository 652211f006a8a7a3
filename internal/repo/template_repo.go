// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// RepairTemplate model (admin-managed presets for common jobs).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
)

// ListTemplates returns templates ordered by name. When activeOnly is true,
// deactivated templates are omitted.
func ListTemplates(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.RepairTemplate, error) {
	q := db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []domain.RepairTemplate
	err := q.Find(&out).Error
	return out, err
}

// GetTemplate fetches a single template by ID, or ErrNotFound if missing.
func GetTemplate(ctx context.Context, db *gorm.DB, id string) (*domain.RepairTemplate, error) {
	var t domain.RepairTemplate
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTemplate inserts a new template with a generated UUID and UTC
// timestamps.
func CreateTemplate(ctx context.Context, db *gorm.DB, t *domain.RepairTemplate) (*domain.RepairTemplate, error) {
	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTemplate overwrites the mutable fields of a template. Returns
// ErrNotFound if the template does not exist.
func UpdateTemplate(ctx context.Context, db *gorm.DB, t *domain.RepairTemplate) error {
	res := db.WithContext(ctx).
		Model(&domain.RepairTemplate{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{
			"name":              t.Name,
			"description":       t.Description,
			"estimated_minutes": t.EstimatedMinutes,
			"vehicle_type":      t.VehicleType,
			"is_active":         t.IsActive,
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteTemplate removes a template. Returns ErrNotFound if it does not exist.
func DeleteTemplate(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.RepairTemplate{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
