// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Client model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Email-based deduplication policy lives in
// the service layer (see services.IntakeService); the repository only exposes
// the lookup and refresh primitives it needs.
//
// Error semantics:
//   - When a client is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateClient inserts a new Client row. The ID is a randomly generated UUID
// and CreatedAt is set to UTC. On failure, it returns a DB error.
func CreateClient(ctx context.Context, db *gorm.DB, name string, phone, email *string) (*domain.Client, error) {
	c := &domain.Client{
		ID:        uuid.NewString(),
		Name:      name,
		Phone:     phone,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetClient fetches a single client by ID, or ErrNotFound if missing.
func GetClient(ctx context.Context, db *gorm.DB, id string) (*domain.Client, error) {
	var c domain.Client
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// FindClientByEmail returns the client with the given email (case-insensitive,
// trimmed) or ErrNotFound. Emails are uniquely indexed, so at most one row
// matches.
func FindClientByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Client, error) {
	var c domain.Client
	err := db.WithContext(ctx).
		Where("lower(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// RefreshClient updates the name and phone of an existing client. A repeat
// visit carries fresher contact details than the stored row, so the newest
// intake wins. Phone is written even when nil so a cleared number propagates.
// Returns ErrNotFound if no row was affected.
func RefreshClient(ctx context.Context, db *gorm.DB, id, name string, phone *string) error {
	res := db.WithContext(ctx).
		Model(&domain.Client{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "phone": phone})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
