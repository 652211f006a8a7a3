// Package quote implements the preliminary quote engine. It is a pure
// computation over a checklist-catalog snapshot and the verdicts recorded
// during intake: no I/O, no clock, no randomness. Callers load the catalog and
// the hourly rate, call Estimate, and persist the frozen result on the repair.
//
// Pricing model:
//
//	D          = items answered "ng" that apply to the vehicle type
//	minutes    = Σ estimated_labor_minutes over D
//	parts      = Σ estimated_parts_cost   over D
//	labor      = minutes / 60 × hourly rate
//	total      = parts + labor
//
// An empty D yields a zero quote; there is no minimum charge. Items without a
// response, or answered "ok", contribute nothing. All money arithmetic is
// decimal; the result is rounded to cents only at the end.
package quote

import (
	"github.com/shopspring/decimal"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
)

// minutesPerHour converts summed labor minutes into billable hours.
var minutesPerHour = decimal.NewFromInt(60)

// Estimate is the quote produced for one intake.
type Estimate struct {
	// LaborMinutes is the summed estimated labor over the "ng" items.
	LaborMinutes int
	// PartsCost is the summed estimated parts cost over the "ng" items.
	PartsCost decimal.Decimal
	// LaborCost is LaborMinutes/60 × the hourly rate, rounded to cents.
	LaborCost decimal.Decimal
	// Total is PartsCost + LaborCost, rounded to cents.
	Total decimal.Decimal
}

// Compute derives the preliminary quote for a vehicle of type vt from the
// catalog snapshot and the verdict map (checklist item ID → ok/ng).
//
// Each item is counted at most once: the responses map cannot hold duplicate
// keys, and verdicts for IDs absent from the snapshot are ignored (the catalog
// is authoritative). Items whose applicability does not cover vt are skipped
// even if a verdict was submitted for them.
func Compute(items []domain.ChecklistItem, responses map[string]domain.ChecklistVerdict, vt domain.VehicleType, hourlyRate decimal.Decimal) Estimate {
	var minutes int64
	parts := decimal.Zero

	for _, it := range items {
		if !it.AppliesTo(vt) {
			continue
		}
		if responses[it.ID] != domain.VerdictNG {
			continue
		}
		minutes += int64(it.EstimatedLaborMinutes)
		parts = parts.Add(it.EstimatedPartsCost)
	}

	labor := decimal.NewFromInt(minutes).
		Div(minutesPerHour).
		Mul(hourlyRate).
		Round(2)
	parts = parts.Round(2)

	return Estimate{
		LaborMinutes: int(minutes),
		PartsCost:    parts,
		LaborCost:    labor,
		Total:        parts.Add(labor),
	}
}
