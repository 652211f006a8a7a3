// Package realtime distributes change cues: lightweight "collection X
// changed" signals that tell connected dashboards to refetch. Cues carry no
// row data, so a missed or duplicated cue is harmless — delivery is
// at-least-once from the subscriber's perspective and best-effort from the
// publisher's.
//
// Two implementations exist: an in-process Hub for single-instance
// deployments and tests, and an MQTT-backed feed for multi-instance setups
// where cues must cross process boundaries.
package realtime

import (
	"context"
	"time"
)

// Collection names published by the application.
const (
	CollectionRepairs        = "repairs"
	CollectionChecklistItems = "checklist_items"
	CollectionTemplates      = "repair_templates"
	CollectionSettings       = "admin_settings"
)

// Cue signals that some rows of a collection changed.
type Cue struct {
	Collection string    `json:"collection"`
	At         time.Time `json:"at"`
}

// Feed is the change-cue transport. Publish never blocks on slow consumers;
// Subscribe returns a receive channel plus a cancel function that must be
// called when the consumer goes away.
type Feed interface {
	Publish(ctx context.Context, collection string) error
	Subscribe() (<-chan Cue, func())
	Close()
}
