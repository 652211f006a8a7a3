// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the checklist
// catalog (ChecklistItem) and the per-repair responses (ChecklistResponse).
//
// The catalog side is plain admin CRUD. The response side supports the two
// flows that touch it: the intake batch insert and the technician's note
// updates on "ng" rows.
package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
)

// ListChecklistItems returns catalog items ordered by category then
// order_index. When vt is non-nil the result is filtered to items applicable
// to that vehicle type (its own type or "both").
func ListChecklistItems(ctx context.Context, db *gorm.DB, vt *domain.VehicleType) ([]domain.ChecklistItem, error) {
	q := db.WithContext(ctx).Order("category ASC, order_index ASC")
	if vt != nil {
		q = q.Where("vehicle_type IN ?", []domain.VehicleType{*vt, domain.VehicleBoth})
	}
	var out []domain.ChecklistItem
	err := q.Find(&out).Error
	return out, err
}

// CreateChecklistItem inserts a new catalog item with a generated UUID.
func CreateChecklistItem(ctx context.Context, db *gorm.DB, item *domain.ChecklistItem) (*domain.ChecklistItem, error) {
	item.ID = uuid.NewString()
	if err := db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateChecklistItem overwrites the mutable fields of a catalog item.
// Returns ErrNotFound if the item does not exist.
func UpdateChecklistItem(ctx context.Context, db *gorm.DB, item *domain.ChecklistItem) error {
	res := db.WithContext(ctx).
		Model(&domain.ChecklistItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"category":                item.Category,
			"item_name":               item.ItemName,
			"estimated_labor_minutes": item.EstimatedLaborMinutes,
			"estimated_parts_cost":    item.EstimatedPartsCost,
			"order_index":             item.OrderIndex,
			"vehicle_type":            item.VehicleType,
			"tutorial_video_url":      item.TutorialVideoURL,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteChecklistItem removes a catalog item. Historical responses referencing
// it cascade away with their repair, not with the item; the FK is ON DELETE
// CASCADE so deleting a still-referenced item also drops those response rows.
// Returns ErrNotFound if the item does not exist.
func DeleteChecklistItem(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.ChecklistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateChecklistResponses batch-inserts the verdicts recorded during one
// intake. IDs are generated here; the unique (repair_id, checklist_item_id)
// index rejects duplicate verdicts for the same item.
func CreateChecklistResponses(ctx context.Context, db *gorm.DB, responses []domain.ChecklistResponse) error {
	if len(responses) == 0 {
		return nil
	}
	for i := range responses {
		responses[i].ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(&responses).Error
}

// ListResponses returns the responses of a repair with their catalog items
// preloaded, ordered to match the catalog (category then order_index). When
// onlyNG is true, "ok" rows are skipped — the technician work view only cares
// about what needs fixing.
func ListResponses(ctx context.Context, db *gorm.DB, repairID string, onlyNG bool) ([]domain.ChecklistResponse, error) {
	q := db.WithContext(ctx).
		Preload("ChecklistItem").
		Joins("JOIN checklist_items ON checklist_items.id = repair_checklist.checklist_item_id").
		Where("repair_checklist.repair_id = ?", repairID).
		Order("checklist_items.category ASC, checklist_items.order_index ASC")
	if onlyNG {
		q = q.Where("repair_checklist.status = ?", domain.VerdictNG)
	}
	var out []domain.ChecklistResponse
	err := q.Find(&out).Error
	return out, err
}

// UpdateResponseNote sets the technician note on one response row, scoped to
// the repair so a response ID from another repair cannot be targeted. Returns
// ErrNotFound if no row was affected.
func UpdateResponseNote(ctx context.Context, db *gorm.DB, repairID, responseID, note string) error {
	res := db.WithContext(ctx).
		Model(&domain.ChecklistResponse{}).
		Where("id = ? AND repair_id = ?", responseID, repairID).
		Update("technician_notes", note)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
