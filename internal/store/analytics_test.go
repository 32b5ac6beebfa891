package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/laurenmk/stockdock/internal/db"
	"github.com/laurenmk/stockdock/internal/model"
)

func TestProductSummaryCounts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	AddCatalogItem(ctx, database, "SAUCE")
	AddCatalogItem(ctx, database, "BUNS")

	for i := 0; i < 3; i++ {
		EmergencyAdd(ctx, database, "SAUCE", "lauren")
	}
	EmergencyAdd(ctx, database, "BUNS", "lauren")

	SetUnitStatus(ctx, database, "SAUCE", 1, model.UnitStatusInUse)
	SetUnitStatus(ctx, database, "SAUCE", 2, model.UnitStatusDepleted)

	summary, err := ProductSummary(ctx, database)
	if err != nil {
		t.Fatalf("ProductSummary: %v", err)
	}
	if len(summary) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(summary))
	}
	// Alphabetical: BUNS then SAUCE.
	if summary[0].ItemCode != "BUNS" || summary[0].InStock != 1 {
		t.Errorf("unexpected BUNS row: %+v", summary[0])
	}
	s := summary[1]
	if s.InStock != 1 || s.InUse != 1 || s.DepletedTotal != 1 || s.DepletedThisWeek != 1 {
		t.Errorf("unexpected SAUCE row: %+v", s)
	}
}

func TestAvgLifespans(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seedDepletedUnit(t, database, "SAUCE", 1, base, base.AddDate(0, 0, 4))
	seedDepletedUnit(t, database, "SAUCE", 2, base, base.AddDate(0, 0, 2))
	// No depletion timestamp: excluded from the average.
	insertUnit(ctx, database, "SAUCE", 3, "lauren", base, nil)

	rows, err := AvgLifespans(ctx, database)
	if err != nil {
		t.Fatalf("AvgLifespans: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].SampleCount != 2 {
		t.Errorf("expected 2 samples, got %d", rows[0].SampleCount)
	}
	if got := rows[0].AvgDays; got < 2.99 || got > 3.01 {
		t.Errorf("expected avg 3 days, got %f", got)
	}
}

func TestDepletionBetweenTrucks(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, _, _ := CreateTruck(ctx, database, "first", "lauren", "Monday",
		map[string]int{"SAUCE": 1})
	if _, err := CloseTruck(ctx, database, first.ID, "lauren"); err != nil {
		t.Fatalf("closing first truck: %v", err)
	}

	// Depleted between the two closures.
	AddCatalogItem(ctx, database, "SAUCE")
	unit, _ := EmergencyAdd(ctx, database, "SAUCE", "lauren")
	SetUnitStatus(ctx, database, "SAUCE", unit.Slot, model.UnitStatusDepleted)

	second, _, _ := CreateTruck(ctx, database, "second", "lauren", "Friday",
		map[string]int{"SAUCE": 1})
	if _, err := CloseTruck(ctx, database, second.ID, "lauren"); err != nil {
		t.Fatalf("closing second truck: %v", err)
	}

	report, err := DepletionBetween(ctx, database, first.ID, second.ID)
	if err != nil {
		t.Fatalf("DepletionBetween: %v", err)
	}
	if len(report.Rows) != 1 || report.Rows[0].ItemCode != "SAUCE" || report.Rows[0].Depleted != 1 {
		t.Errorf("unexpected report rows: %+v", report.Rows)
	}

	// Reversed order is rejected.
	if _, err := DepletionBetween(ctx, database, second.ID, first.ID); err == nil {
		t.Error("expected error for reversed truck order")
	}
	// Same truck twice is rejected.
	if _, err := DepletionBetween(ctx, database, first.ID, first.ID); err == nil {
		t.Error("expected error for identical trucks")
	}
}

func TestDepletionBetweenRequiresClosedTrucks(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, _, _ := CreateTruck(ctx, database, "first", "lauren", "Monday",
		map[string]int{"SAUCE": 1})
	second, _, _ := CreateTruck(ctx, database, "second", "lauren", "Friday",
		map[string]int{"SAUCE": 1})

	if _, err := DepletionBetween(ctx, database, first.ID, second.ID); err == nil {
		t.Error("expected error when neither truck is closed")
	}
}

func TestGetTruckHistory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	truck, entries, _ := CreateTruck(ctx, database, "t", "lauren", "Monday",
		map[string]int{"SAUCE": 2})
	ScanLabel(ctx, database, truck.ID, entries[0].BarcodeLabel, "alex")
	ScanLabel(ctx, database, truck.ID, entries[1].BarcodeLabel, "sam")
	CloseTruck(ctx, database, truck.ID, "lauren")

	history, err := GetTruckHistory(ctx, database, truck.ID)
	if err != nil {
		t.Fatalf("GetTruckHistory: %v", err)
	}
	if history.Truck.ID != truck.ID {
		t.Errorf("expected truck %d, got %d", truck.ID, history.Truck.ID)
	}
	if len(history.ScannedBy) != 2 || history.ScannedBy[0] != "alex" || history.ScannedBy[1] != "sam" {
		t.Errorf("unexpected scanners: %v", history.ScannedBy)
	}
	if history.Closure == nil || history.Closure.ClosedBy != "lauren" {
		t.Errorf("unexpected closure: %+v", history.Closure)
	}
}

func TestGetTruckHistoryMissingTruck(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	history, err := GetTruckHistory(ctx, database, 99)
	if err != nil {
		t.Fatalf("GetTruckHistory: %v", err)
	}
	if history != nil {
		t.Error("expected nil history for missing truck")
	}
}

// seedDepletedUnit inserts a depleted unit with fixed lifecycle timestamps.
func seedDepletedUnit(t *testing.T, database *sql.DB, itemCode string, slot int, inUseAt, depletedAt time.Time) {
	t.Helper()
	_, err := database.ExecContext(context.Background(),
		`INSERT INTO inventory (item_code, slot, status, added_by, added_at, in_stock_at, in_use_at, depleted_at)
		 VALUES (?, ?, 'depleted', 'lauren', ?, ?, ?, ?)`,
		itemCode, slot, inUseAt, inUseAt, inUseAt, depletedAt,
	)
	if err != nil {
		t.Fatalf("seeding depleted unit: %v", err)
	}
}
