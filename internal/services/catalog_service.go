// Package services – CatalogService
//
// This file implements CatalogService, which manages the admin-owned
// configuration aggregates: the diagnostic checklist catalog and the repair
// templates. Reads are open to any authenticated user (the vendor screen
// renders the checklist); writes come from the admin screens and publish
// change cues so open dashboards refetch.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
	"github.com/likerotech-cyber/Check-Lariviere/internal/realtime"
	"github.com/likerotech-cyber/Check-Lariviere/internal/repo"
)

// CatalogService manages checklist items and repair templates.
type CatalogService struct {
	DB   *gorm.DB
	Feed realtime.Feed
}

// ListItems returns catalog items, optionally filtered to those applicable to
// one vehicle type.
func (s *CatalogService) ListItems(ctx context.Context, vt *domain.VehicleType) ([]domain.ChecklistItem, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "ListItems")
	defer span.End()

	if vt != nil && !vt.ValidVehicle() {
		return nil, ErrInvalidVehicleType
	}
	return repo.ListChecklistItems(ctx, s.DB, vt)
}

// validateItem applies the catalog invariants shared by create and update.
func validateItem(item *domain.ChecklistItem) error {
	item.Category = strings.TrimSpace(item.Category)
	item.ItemName = strings.TrimSpace(item.ItemName)
	switch {
	case item.Category == "", item.ItemName == "":
		return ErrInvalidItem
	case item.EstimatedLaborMinutes < 0:
		return ErrInvalidItem
	case item.EstimatedPartsCost.IsNegative():
		return ErrInvalidItem
	}
	if item.VehicleType == "" {
		item.VehicleType = domain.VehicleBoth
	}
	if !item.VehicleType.ValidApplicability() {
		return ErrInvalidItem
	}
	return nil
}

// CreateItem inserts a new catalog item and publishes a checklist cue.
func (s *CatalogService) CreateItem(ctx context.Context, item *domain.ChecklistItem) (*domain.ChecklistItem, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "CreateItem")
	defer span.End()

	if err := validateItem(item); err != nil {
		return nil, err
	}
	created, err := repo.CreateChecklistItem(ctx, s.DB, item)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.CollectionChecklistItems)
	return created, nil
}

// UpdateItem overwrites an existing catalog item.
func (s *CatalogService) UpdateItem(ctx context.Context, item *domain.ChecklistItem) error {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "UpdateItem",
		trace.WithAttributes(attribute.String("item.id", item.ID)),
	)
	defer span.End()

	if err := validateItem(item); err != nil {
		return err
	}
	if err := repo.UpdateChecklistItem(ctx, s.DB, item); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	s.publish(ctx, realtime.CollectionChecklistItems)
	return nil
}

// DeleteItem removes a catalog item. Existing repairs keep their frozen
// quotes; only the response rows referencing the item cascade away.
func (s *CatalogService) DeleteItem(ctx context.Context, id string) error {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "DeleteItem",
		trace.WithAttributes(attribute.String("item.id", id)),
	)
	defer span.End()

	if err := repo.DeleteChecklistItem(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	s.publish(ctx, realtime.CollectionChecklistItems)
	return nil
}

// ListTemplates returns repair templates; activeOnly hides deactivated ones.
func (s *CatalogService) ListTemplates(ctx context.Context, activeOnly bool) ([]domain.RepairTemplate, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "ListTemplates")
	defer span.End()

	return repo.ListTemplates(ctx, s.DB, activeOnly)
}

// validateTemplate applies the template invariants shared by create and update.
func validateTemplate(t *domain.RepairTemplate) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" || t.EstimatedMinutes < 0 {
		return ErrInvalidTemplate
	}
	if t.VehicleType == "" {
		t.VehicleType = domain.VehicleBoth
	}
	if !t.VehicleType.ValidApplicability() {
		return ErrInvalidTemplate
	}
	return nil
}

// CreateTemplate inserts a new template and publishes a templates cue.
func (s *CatalogService) CreateTemplate(ctx context.Context, t *domain.RepairTemplate) (*domain.RepairTemplate, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "CreateTemplate")
	defer span.End()

	if err := validateTemplate(t); err != nil {
		return nil, err
	}
	created, err := repo.CreateTemplate(ctx, s.DB, t)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.CollectionTemplates)
	return created, nil
}

// UpdateTemplate overwrites an existing template.
func (s *CatalogService) UpdateTemplate(ctx context.Context, t *domain.RepairTemplate) error {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "UpdateTemplate",
		trace.WithAttributes(attribute.String("template.id", t.ID)),
	)
	defer span.End()

	if err := validateTemplate(t); err != nil {
		return err
	}
	if err := repo.UpdateTemplate(ctx, s.DB, t); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	s.publish(ctx, realtime.CollectionTemplates)
	return nil
}

// DeleteTemplate removes a template.
func (s *CatalogService) DeleteTemplate(ctx context.Context, id string) error {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "DeleteTemplate",
		trace.WithAttributes(attribute.String("template.id", id)),
	)
	defer span.End()

	if err := repo.DeleteTemplate(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	s.publish(ctx, realtime.CollectionTemplates)
	return nil
}

func (s *CatalogService) publish(ctx context.Context, collection string) {
	if s.Feed != nil {
		_ = s.Feed.Publish(ctx, collection)
	}
}
