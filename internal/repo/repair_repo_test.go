package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/likerotech-cyber/Check-Lariviere/internal/domain"
)

func newRepairRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repair_repo_test_%d.db", time.Now().UnixNano()))
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

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

// seedRepair inserts a client, vehicle, and repair; returns the repair.
func seedRepair(t *testing.T, db *gorm.DB, desired *time.Time) *domain.Repair {
	t.Helper()
	ctx := context.Background()

	client, err := CreateClient(ctx, db, "Jean Dupont", nil, nil)
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	vehicle, err := CreateVehicle(ctx, db, client.ID, domain.VehicleBike, nil, nil, nil)
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}
	r, err := CreateRepair(ctx, db, &domain.Repair{
		ClientID:          client.ID,
		VehicleID:         vehicle.ID,
		VendorName:        "Marie",
		ClientIssue:       "freins qui sifflent",
		DesiredReturnDate: desired,
		ClientDecision:    domain.DecisionAccepted,
	})
	if err != nil {
		t.Fatalf("CreateRepair: %v", err)
	}
	return r
}

func repairModels() []any {
	return []any{
		&domain.Client{}, &domain.Vehicle{}, &domain.Repair{},
		&domain.ChecklistItem{}, &domain.ChecklistResponse{},
	}
}

func TestCreateRepair_SetsIDStatusAndTimestamps(t *testing.T) {
	db := newRepairRepoDB(t, repairModels()...)

	r := seedRepair(t, db, nil)

	if r.ID == "" {
		t.Fatal("ID not assigned")
	}
	if r.Status != domain.StatusInitial {
		t.Fatalf("Status = %q; want initial", r.Status)
	}
	if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}
}

func TestListRepairsPage_WorkboardOrder(t *testing.T) {
	db := newRepairRepoDB(t, repairModels()...)
	ctx := context.Background()

	soon := time.Now().UTC().Add(24 * time.Hour)
	later := time.Now().UTC().Add(72 * time.Hour)

	undatedOld := seedRepair(t, db, nil)
	time.Sleep(5 * time.Millisecond) // distinct created_at
	rLater := seedRepair(t, db, &later)
	time.Sleep(5 * time.Millisecond)
	undatedNew := seedRepair(t, db, nil)
	time.Sleep(5 * time.Millisecond)
	rSoon := seedRepair(t, db, &soon)

	items, err := ListRepairsPage(ctx, db, nil, 0, 50)
	if err != nil {
		t.Fatalf("ListRepairsPage: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("got %d repairs; want 4", len(items))
	}

	// Dated repairs first (soonest first), undated last (newest intake first).
	wantOrder := []string{rSoon.ID, rLater.ID, undatedNew.ID, undatedOld.ID}
	for i, want := range wantOrder {
		if items[i].ID != want {
			t.Fatalf("position %d: got %s; want %s (order: %v)", i, items[i].ID, want, wantOrder)
		}
	}
}

func TestListRepairsPage_PreloadsClientAndVehicle(t *testing.T) {
	db := newRepairRepoDB(t, repairModels()...)

	seedRepair(t, db, nil)

	items, err := ListRepairsPage(context.Background(), db, nil, 0, 10)
	if err != nil {
		t.Fatalf("ListRepairsPage: %v", err)
	}
	if items[0].Client.Name != "Jean Dupont" {
		t.Fatalf("client not preloaded: %+v", items[0].Client)
	}
	if items[0].Vehicle.Type != domain.VehicleBike {
		t.Fatalf("vehicle not preloaded: %+v", items[0].Vehicle)
	}
}

func TestCountRepairs_StatusFilter(t *testing.T) {
	db := newRepairRepoDB(t, repairModels()...)
	ctx := context.Background()

	a := seedRepair(t, db, nil)
	seedRepair(t, db, nil)

	if err := UpdateRepairStatus(ctx, db, a.ID, domain.StatusInRepair); err != nil {
		t.Fatalf("UpdateRepairStatus: %v", err)
	}

	total, err := CountRepairs(ctx, db, nil)
	if err != nil || total != 2 {
		t.Fatalf("CountRepairs(nil) = %d, %v; want 2", total, err)
	}

	st := domain.StatusInRepair
	filtered, err := CountRepairs(ctx, db, &st)
	if err != nil || filtered != 1 {
		t.Fatalf("CountRepairs(in_repair) = %d, %v; want 1", filtered, err)
	}
}

func TestUpdateRepairStatus_NotFound(t *testing.T) {
	db := newRepairRepoDB(t, repairModels()...)

	err := UpdateRepairStatus(context.Background(), db, uuid.NewString(), domain.StatusCompleted)
	if err != gorm.ErrRecordNotFound {
		t.Fatalf("err = %v; want gorm.ErrRecordNotFound", err)
	}
}

func TestUpdateFinalQuote_SetAndClear(t *testing.T) {
	db := newRepairRepoDB(t, repairModels()...)
	ctx := context.Background()

	r := seedRepair(t, db, nil)

	amount := decimal.RequireFromString("120.50")
	if err := UpdateFinalQuote(ctx, db, r.ID, &amount); err != nil {
		t.Fatalf("UpdateFinalQuote(set): %v", err)
	}
	got, err := GetRepair(ctx, db, r.ID)
	if err != nil {
		t.Fatalf("GetRepair: %v", err)
	}
	if got.FinalQuote == nil || !got.FinalQuote.Equal(amount) {
		t.Fatalf("FinalQuote = %v; want 120.50", got.FinalQuote)
	}

	// Clearing writes NULL, not zero.
	if err := UpdateFinalQuote(ctx, db, r.ID, nil); err != nil {
		t.Fatalf("UpdateFinalQuote(clear): %v", err)
	}
	got, err = GetRepair(ctx, db, r.ID)
	if err != nil {
		t.Fatalf("GetRepair after clear: %v", err)
	}
	if got.FinalQuote != nil {
		t.Fatalf("FinalQuote = %v; want nil after clear", got.FinalQuote)
	}
}

func TestUpdateFinalQuote_NotFound(t *testing.T) {
	db := newRepairRepoDB(t, repairModels()...)

	err := UpdateFinalQuote(context.Background(), db, uuid.NewString(), nil)
	if err != gorm.ErrRecordNotFound {
		t.Fatalf("err = %v; want gorm.ErrRecordNotFound", err)
	}
}
