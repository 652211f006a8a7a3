package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
	"github.com/likerotech-cyber/Check-Lariviere/internal/repo"
)

func newServiceDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func sp(s string) *string { return &s }

func seedCatalog(t *testing.T, db *gorm.DB) (ng, ok *domain.ChecklistItem) {
	t.Helper()
	ctx := context.Background()

	ng, err := repo.CreateChecklistItem(ctx, db, &domain.ChecklistItem{
		Category:              "Freins",
		ItemName:              "Plaquettes",
		EstimatedLaborMinutes: 30,
		EstimatedPartsCost:    decimal.RequireFromString("10.00"),
		VehicleType:           domain.VehicleBoth,
	})
	if err != nil {
		t.Fatalf("seed ng item: %v", err)
	}
	ok, err = repo.CreateChecklistItem(ctx, db, &domain.ChecklistItem{
		Category:              "Roues",
		ItemName:              "Rayons",
		EstimatedLaborMinutes: 15,
		EstimatedPartsCost:    decimal.RequireFromString("5.00"),
		VehicleType:           domain.VehicleBoth,
	})
	if err != nil {
		t.Fatalf("seed ok item: %v", err)
	}
	return ng, ok
}

func baseRequest(ngID, okID string) IntakeRequest {
	return IntakeRequest{
		VendorName:  "Marie",
		ClientIssue: "freins qui sifflent",
		ClientName:  "Jean Dupont",
		ClientEmail: sp("jean@example.com"),
		VehicleType: domain.VehicleBike,
		Responses: map[string]domain.ChecklistVerdict{
			ngID: domain.VerdictNG,
			okID: domain.VerdictOK,
		},
		ClientDecision: domain.DecisionAccepted,
	}
}

func TestIntake_Register_FreezesQuoteAndPersistsResponses(t *testing.T) {
	db := newServiceDB(t, "intake")
	ctx := context.Background()

	ng, okItem := seedCatalog(t, db)
	if _, err := repo.SeedSettings(ctx, db, decimal.NewFromInt(60)); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	svc := &IntakeService{DB: db, FallbackHourlyRate: decimal.NewFromInt(60)}
	r, err := svc.Register(ctx, baseRequest(ng.ID, okItem.ID))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// 30 ng minutes at 60 €/h + 10.00 parts = 40.00; the ok item contributes nothing.
	if r.EstimatedLaborMinutes != 30 {
		t.Fatalf("EstimatedLaborMinutes = %d; want 30", r.EstimatedLaborMinutes)
	}
	if !r.PreliminaryQuote.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("PreliminaryQuote = %s; want 40.00", r.PreliminaryQuote)
	}
	if r.Status != domain.StatusInitial {
		t.Fatalf("Status = %q; want initial", r.Status)
	}

	// Both answered items persisted, ok included.
	all, err := repo.ListResponses(ctx, db, r.ID, false)
	if err != nil {
		t.Fatalf("ListResponses: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d responses; want 2", len(all))
	}

	// The quote is frozen: raising the rate afterwards must not move it.
	settings, _ := repo.GetSettings(ctx, db)
	if err := repo.UpdateHourlyRate(ctx, db, settings.ID, decimal.NewFromInt(600)); err != nil {
		t.Fatalf("UpdateHourlyRate: %v", err)
	}
	got, err := repo.GetRepair(ctx, db, r.ID)
	if err != nil {
		t.Fatalf("GetRepair: %v", err)
	}
	if !got.PreliminaryQuote.Equal(decimal.RequireFromString("40.00")) {
		t.Fatalf("quote moved after rate change: %s", got.PreliminaryQuote)
	}
}

func TestIntake_Register_DedupsClientByEmail(t *testing.T) {
	db := newServiceDB(t, "intake_dedup")
	ctx := context.Background()

	ng, okItem := seedCatalog(t, db)
	existing, err := repo.CreateClient(ctx, db, "Jean", sp("+33 6 11 22 33 44"), sp("jean@example.com"))
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	svc := &IntakeService{DB: db, FallbackHourlyRate: decimal.NewFromInt(60)}
	req := baseRequest(ng.ID, okItem.ID)
	req.ClientEmail = sp("JEAN@example.com") // different casing, same person
	req.ClientPhone = sp("+33 6 99 88 77 66")

	r, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if r.ClientID != existing.ID {
		t.Fatalf("ClientID = %s; want dedup onto %s", r.ClientID, existing.ID)
	}

	refreshed, err := repo.GetClient(ctx, db, existing.ID)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if refreshed.Name != "Jean Dupont" {
		t.Fatalf("Name = %q; want refreshed name", refreshed.Name)
	}
	if refreshed.Phone == nil || *refreshed.Phone != "+33 6 99 88 77 66" {
		t.Fatalf("Phone = %v; want refreshed phone", refreshed.Phone)
	}
}

func TestIntake_Register_NoEmailAlwaysCreatesClient(t *testing.T) {
	db := newServiceDB(t, "intake_noemail")
	ctx := context.Background()

	ng, okItem := seedCatalog(t, db)
	svc := &IntakeService{DB: db, FallbackHourlyRate: decimal.NewFromInt(60)}

	req := baseRequest(ng.ID, okItem.ID)
	req.ClientEmail = nil

	r1, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("first Register: %v", err)
	}
	r2, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("second Register: %v", err)
	}
	if r1.ClientID == r2.ClientID {
		t.Fatal("intakes without email must not share a client row")
	}
}

func TestIntake_Register_MaxPriceRequired(t *testing.T) {
	db := newServiceDB(t, "intake_maxprice")
	ctx := context.Background()

	ng, okItem := seedCatalog(t, db)
	svc := &IntakeService{DB: db, FallbackHourlyRate: decimal.NewFromInt(60)}

	req := baseRequest(ng.ID, okItem.ID)
	req.ClientDecision = domain.DecisionMaxPrice
	req.MaxPrice = nil

	if _, err := svc.Register(ctx, req); !errors.Is(err, ErrMissingMaxPrice) {
		t.Fatalf("err = %v; want ErrMissingMaxPrice", err)
	}

	// Validation failures must not leave partial rows behind.
	total, err := repo.CountRepairs(ctx, db, nil)
	if err != nil || total != 0 {
		t.Fatalf("CountRepairs = %d, %v; want 0", total, err)
	}
}

func TestIntake_Register_NegativeMaxPriceRejected(t *testing.T) {
	db := newServiceDB(t, "intake_negmaxprice")
	ctx := context.Background()

	ng, okItem := seedCatalog(t, db)
	svc := &IntakeService{DB: db, FallbackHourlyRate: decimal.NewFromInt(60)}

	neg := decimal.RequireFromString("-10.00")
	req := baseRequest(ng.ID, okItem.ID)
	req.ClientDecision = domain.DecisionMaxPrice
	req.MaxPrice = &neg

	if _, err := svc.Register(ctx, req); !errors.Is(err, ErrInvalidMaxPrice) {
		t.Fatalf("err = %v; want ErrInvalidMaxPrice", err)
	}

	total, err := repo.CountRepairs(ctx, db, nil)
	if err != nil || total != 0 {
		t.Fatalf("CountRepairs = %d, %v; want 0", total, err)
	}
}

func TestIntake_Register_DetailedQuoteFee(t *testing.T) {
	db := newServiceDB(t, "intake_fee")
	ctx := context.Background()

	ng, okItem := seedCatalog(t, db)
	fee := decimal.RequireFromString("50.00")
	svc := &IntakeService{DB: db, DetailedQuoteFee: fee, FallbackHourlyRate: decimal.NewFromInt(60)}

	accepted, err := svc.Register(ctx, baseRequest(ng.ID, okItem.ID))
	if err != nil {
		t.Fatalf("Register accepted: %v", err)
	}
	if !accepted.DetailedQuoteFee.IsZero() {
		t.Fatalf("fee = %s on accepted decision; want 0", accepted.DetailedQuoteFee)
	}

	req := baseRequest(ng.ID, okItem.ID)
	req.ClientDecision = domain.DecisionDetailedQuote
	detailed, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("Register detailed: %v", err)
	}
	if !detailed.DetailedQuoteFee.Equal(fee) {
		t.Fatalf("fee = %s; want 50.00", detailed.DetailedQuoteFee)
	}
}

func TestIntake_Register_InvalidVehicleType(t *testing.T) {
	db := newServiceDB(t, "intake_vt")

	svc := &IntakeService{DB: db, FallbackHourlyRate: decimal.NewFromInt(60)}
	req := baseRequest("x", "y")
	req.VehicleType = domain.VehicleBoth // only valid as applicability

	if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrInvalidVehicleType) {
		t.Fatalf("err = %v; want ErrInvalidVehicleType", err)
	}
}

func TestIntake_Register_FallbackRateWhenUnseeded(t *testing.T) {
	db := newServiceDB(t, "intake_fallback")
	ctx := context.Background()

	ng, okItem := seedCatalog(t, db)
	// No SeedSettings call: the fallback rate must apply. 30min at 120 €/h = 60 labor + 10 parts.
	svc := &IntakeService{DB: db, FallbackHourlyRate: decimal.NewFromInt(120)}

	r, err := svc.Register(ctx, baseRequest(ng.ID, okItem.ID))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !r.PreliminaryQuote.Equal(decimal.RequireFromString("70.00")) {
		t.Fatalf("PreliminaryQuote = %s; want 70.00", r.PreliminaryQuote)
	}
}
