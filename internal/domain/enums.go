// Package domain defines the persistence models and workflow enumerations for
// the repair-shop application: clients, vehicles, repairs, the diagnostic
// checklist catalog, and the per-repair checklist responses. These types are
// mapped with GORM and are shared by the repository and service layers.
package domain

// VehicleType classifies a vehicle, or the applicability of a checklist item.
// Vehicles are either "bike" or "scooter"; catalog items may additionally be
// marked "both" to apply to every vehicle type.
type VehicleType string

const (
	VehicleBike    VehicleType = "bike"
	VehicleScooter VehicleType = "scooter"
	// VehicleBoth is valid only as a checklist-item applicability.
	VehicleBoth VehicleType = "both"
)

// ValidVehicle reports whether t is a concrete vehicle type (not "both").
func (t VehicleType) ValidVehicle() bool {
	return t == VehicleBike || t == VehicleScooter
}

// ValidApplicability reports whether t is usable as a catalog applicability.
func (t VehicleType) ValidApplicability() bool {
	return t == VehicleBike || t == VehicleScooter || t == VehicleBoth
}

// RepairStatus is the workflow state of a repair. The transition graph is
// deliberately fully connected: a technician may move a repair between any two
// states in either direction. The only special edge is the one INTO
// StatusCompleted, which triggers completion notifications (see
// services.RepairService).
type RepairStatus string

const (
	StatusInitial         RepairStatus = "initial"
	StatusPendingApproval RepairStatus = "pending_approval"
	StatusPartsOrdered    RepairStatus = "parts_ordered"
	StatusInRepair        RepairStatus = "in_repair"
	StatusCompleted       RepairStatus = "completed"
)

// RepairStatuses lists every workflow state in display order.
var RepairStatuses = []RepairStatus{
	StatusInitial,
	StatusPendingApproval,
	StatusPartsOrdered,
	StatusInRepair,
	StatusCompleted,
}

// Valid reports whether s is one of the known workflow states.
func (s RepairStatus) Valid() bool {
	switch s {
	case StatusInitial, StatusPendingApproval, StatusPartsOrdered, StatusInRepair, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether s is the terminal state of the workflow.
func (s RepairStatus) Terminal() bool { return s == StatusCompleted }

// EntersCompleted reports whether moving from prev to next crosses the edge
// into the completed state. The comparison is explicit so that a no-op
// completed→completed write never re-fires notification side effects.
func EntersCompleted(prev, next RepairStatus) bool {
	return next == StatusCompleted && prev != StatusCompleted
}

// ChecklistVerdict is the binary outcome recorded for a checklist item during
// intake: "ok" (fine) or "ng" (not good, needs work). Only "ng" responses feed
// the quote and are shown to the technician for annotation.
type ChecklistVerdict string

const (
	VerdictOK ChecklistVerdict = "ok"
	VerdictNG ChecklistVerdict = "ng"
)

// Valid reports whether v is a known verdict.
func (v ChecklistVerdict) Valid() bool { return v == VerdictOK || v == VerdictNG }

// ClientDecision captures how the client reacted to the preliminary quote at
// the end of intake.
type ClientDecision string

const (
	// DecisionAccepted: the client accepts the estimated amount as-is.
	DecisionAccepted ClientDecision = "accepted"
	// DecisionMaxPrice: the client caps the spend; Repair.MaxPrice must be set.
	DecisionMaxPrice ClientDecision = "max_price"
	// DecisionDetailedQuote: the client pays a fixed fee for a full quote;
	// Repair.DetailedQuoteFee is non-zero only for this decision.
	DecisionDetailedQuote ClientDecision = "detailed_quote"
)

// Valid reports whether d is a known client decision.
func (d ClientDecision) Valid() bool {
	switch d {
	case DecisionAccepted, DecisionMaxPrice, DecisionDetailedQuote:
		return true
	}
	return false
}
