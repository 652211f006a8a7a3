// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Vehicle
// model. Vehicles are append-only from the application's point of view: every
// intake creates a fresh row, and rows are removed only through the client
// cascade.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
)

// CreateVehicle inserts a new Vehicle row owned by clientID. The ID is a
// randomly generated UUID and CreatedAt is set to UTC.
func CreateVehicle(ctx context.Context, db *gorm.DB, clientID string, vt domain.VehicleType, brand, model, serial *string) (*domain.Vehicle, error) {
	v := &domain.Vehicle{
		ID:           uuid.NewString(),
		ClientID:     clientID,
		Type:         vt,
		Brand:        brand,
		Model:        model,
		SerialNumber: serial,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return nil, err
	}
	return v, nil
}

// GetVehicle fetches a single vehicle by ID, or ErrNotFound if missing.
func GetVehicle(ctx context.Context, db *gorm.DB, id string) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}
