// Package domain defines the core persistence models for the application.
package domain

import "time"

// IdempotencyRecord stores the outcome of a previously processed unsafe
// request, keyed by (user_id, scope, key) where scope is the route that was
// called (e.g. "POST /api/v1/repairs"). It lets intake submissions be retried
// safely: a replay returns the repair created by the first attempt instead of
// registering a second one.
type IdempotencyRecord struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:1"`
	Scope     string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_scope_key,priority:3"`
	RepairID  string    `gorm:"type:TEXT NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (IdempotencyRecord) TableName() string { return "idempotency" }
