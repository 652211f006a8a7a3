package quote

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func item(id string, minutes int, parts string, vt domain.VehicleType) domain.ChecklistItem {
	return domain.ChecklistItem{
		ID:                    id,
		Category:              "Freins",
		ItemName:              "item " + id,
		EstimatedLaborMinutes: minutes,
		EstimatedPartsCost:    dec(parts),
		VehicleType:           vt,
	}
}

func TestCompute_SumsOnlyNGItems(t *testing.T) {
	items := []domain.ChecklistItem{
		item("a", 30, "10.00", domain.VehicleBoth),
		item("b", 15, "5.00", domain.VehicleBoth),
	}
	responses := map[string]domain.ChecklistVerdict{
		"a": domain.VerdictNG,
		"b": domain.VerdictOK,
	}

	est := Compute(items, responses, domain.VehicleBike, dec("60"))

	if est.LaborMinutes != 30 {
		t.Fatalf("LaborMinutes = %d; want 30", est.LaborMinutes)
	}
	// 30min at 60 €/h = 30.00 labor + 10.00 parts
	if !est.LaborCost.Equal(dec("30.00")) {
		t.Fatalf("LaborCost = %s; want 30.00", est.LaborCost)
	}
	if !est.PartsCost.Equal(dec("10.00")) {
		t.Fatalf("PartsCost = %s; want 10.00", est.PartsCost)
	}
	if !est.Total.Equal(dec("40.00")) {
		t.Fatalf("Total = %s; want 40.00", est.Total)
	}
}

func TestCompute_EmptyResponses_ZeroQuote(t *testing.T) {
	items := []domain.ChecklistItem{
		item("a", 30, "10.00", domain.VehicleBoth),
	}

	est := Compute(items, nil, domain.VehicleBike, dec("60"))

	if est.LaborMinutes != 0 || !est.Total.IsZero() {
		t.Fatalf("want zero estimate, got %+v", est)
	}
}

func TestCompute_SkipsInapplicableItems(t *testing.T) {
	items := []domain.ChecklistItem{
		item("bike-only", 60, "20.00", domain.VehicleBike),
		item("scooter-only", 60, "20.00", domain.VehicleScooter),
		item("shared", 30, "5.00", domain.VehicleBoth),
	}
	responses := map[string]domain.ChecklistVerdict{
		"bike-only":    domain.VerdictNG,
		"scooter-only": domain.VerdictNG,
		"shared":       domain.VerdictNG,
	}

	est := Compute(items, responses, domain.VehicleScooter, dec("60"))

	// scooter-only (60min, 20.00) + shared (30min, 5.00); bike-only skipped.
	if est.LaborMinutes != 90 {
		t.Fatalf("LaborMinutes = %d; want 90", est.LaborMinutes)
	}
	if !est.Total.Equal(dec("115.00")) {
		t.Fatalf("Total = %s; want 115.00", est.Total)
	}
}

func TestCompute_IgnoresUnknownItemIDs(t *testing.T) {
	items := []domain.ChecklistItem{
		item("a", 30, "10.00", domain.VehicleBoth),
	}
	responses := map[string]domain.ChecklistVerdict{
		"a":       domain.VerdictNG,
		"deleted": domain.VerdictNG, // no longer in the catalog snapshot
	}

	est := Compute(items, responses, domain.VehicleBike, dec("60"))

	if est.LaborMinutes != 30 {
		t.Fatalf("LaborMinutes = %d; want 30 (unknown id must not count)", est.LaborMinutes)
	}
}

func TestCompute_RoundsToCents(t *testing.T) {
	// 10 minutes at 50 €/h = 8.3333... → 8.33
	items := []domain.ChecklistItem{
		item("a", 10, "0.00", domain.VehicleBoth),
	}
	responses := map[string]domain.ChecklistVerdict{"a": domain.VerdictNG}

	est := Compute(items, responses, domain.VehicleBike, dec("50"))

	if !est.LaborCost.Equal(dec("8.33")) {
		t.Fatalf("LaborCost = %s; want 8.33", est.LaborCost)
	}
	if est.LaborCost.Exponent() < -2 {
		t.Fatalf("LaborCost has sub-cent precision: %s", est.LaborCost)
	}
}

func TestCompute_MonotonicInDefects(t *testing.T) {
	items := []domain.ChecklistItem{
		item("a", 30, "10.00", domain.VehicleBoth),
		item("b", 15, "5.00", domain.VehicleBoth),
	}
	rate := dec("60")

	one := Compute(items, map[string]domain.ChecklistVerdict{"a": domain.VerdictNG}, domain.VehicleBike, rate)
	two := Compute(items, map[string]domain.ChecklistVerdict{"a": domain.VerdictNG, "b": domain.VerdictNG}, domain.VehicleBike, rate)

	if two.Total.LessThan(one.Total) {
		t.Fatalf("adding a defect lowered the quote: %s -> %s", one.Total, two.Total)
	}
}
