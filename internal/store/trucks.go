package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/laurenmk/stockdock/internal/model"
	"github.com/laurenmk/stockdock/internal/slot"
)

// CreateTruck creates an anticipated truck and one pending entry per unit
// requested, assigning slots through the allocator. The whole manifest
// (truck row plus every entry) is one transaction, and one reservation
// set spans the batch so units of the same item code never collide before
// the rows land.
func CreateTruck(ctx context.Context, db *sql.DB, truckName, createdBy, dayOfWeek string, quantities map[string]int) (*model.Truck, []model.AnticipatedItem, error) {
	if truckName == "" {
		return nil, nil, fmt.Errorf("truck name is required")
	}
	if !model.ValidDayOfWeek(dayOfWeek) {
		return nil, nil, fmt.Errorf("invalid day of week %q", dayOfWeek)
	}
	total := 0
	for code, qty := range quantities {
		if qty < 0 || qty > slot.MaxSlot {
			return nil, nil, fmt.Errorf("quantity for %q must be between 0 and %d", code, slot.MaxSlot)
		}
		total += qty
	}
	if total == 0 {
		return nil, nil, fmt.Errorf("truck needs at least one anticipated item")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO anticipated_trucks (truck_name, created_by, created_at, status, day_of_week)
		 VALUES (?, ?, ?, ?, ?)`,
		truckName, createdBy, now, model.TruckStatusPending, dayOfWeek,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating truck: %w", err)
	}
	truckID, err := result.LastInsertId()
	if err != nil {
		return nil, nil, fmt.Errorf("getting truck id: %w", err)
	}

	// Deterministic allocation order regardless of map iteration.
	codes := make([]string, 0, len(quantities))
	for code := range quantities {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	res := slot.NewReservations()
	var entries []model.AnticipatedItem

	for _, code := range codes {
		qty := quantities[code]
		if qty == 0 {
			continue
		}

		used, depleted, err := loadSlotSets(ctx, tx, code)
		if err != nil {
			return nil, nil, err
		}

		for i := 0; i < qty; i++ {
			s := slot.Next(code, used, depleted, res)
			label := model.BuildLabel(code, s)

			r, err := tx.ExecContext(ctx,
				`INSERT INTO anticipated_items (truck_id, item_code, slot, barcode_label, status)
				 VALUES (?, ?, ?, ?, ?)`,
				truckID, code, s, label, model.EntryStatusPending,
			)
			if err != nil {
				return nil, nil, fmt.Errorf("creating anticipated entry %s: %w", label, err)
			}
			entryID, _ := r.LastInsertId()

			entries = append(entries, model.AnticipatedItem{
				ID:           entryID,
				TruckID:      truckID,
				ItemCode:     code,
				Slot:         s,
				BarcodeLabel: label,
				Status:       model.EntryStatusPending,
			})
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing truck creation: %w", err)
	}

	truck, err := GetTruck(ctx, db, truckID)
	if err != nil {
		return nil, nil, err
	}
	return truck, entries, nil
}

// GetTruck returns a truck by ID.
func GetTruck(ctx context.Context, db *sql.DB, id int64) (*model.Truck, error) {
	t := &model.Truck{}
	err := db.QueryRowContext(ctx,
		`SELECT id, truck_name, created_by, created_at, status, day_of_week
		 FROM anticipated_trucks WHERE id = ?`, id,
	).Scan(&t.ID, &t.TruckName, &t.CreatedBy, &t.CreatedAt, &t.Status, &t.DayOfWeek)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting truck: %w", err)
	}
	return t, nil
}

// ListTrucks returns all trucks, newest first.
func ListTrucks(ctx context.Context, db *sql.DB) ([]model.Truck, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, truck_name, created_by, created_at, status, day_of_week
		 FROM anticipated_trucks ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing trucks: %w", err)
	}
	defer rows.Close()

	var trucks []model.Truck
	for rows.Next() {
		var t model.Truck
		if err := rows.Scan(&t.ID, &t.TruckName, &t.CreatedBy, &t.CreatedAt, &t.Status, &t.DayOfWeek); err != nil {
			return nil, fmt.Errorf("scanning truck: %w", err)
		}
		trucks = append(trucks, t)
	}
	return trucks, rows.Err()
}

// ListTruckEntries returns a truck's anticipated entries ordered by item
// code and slot.
func ListTruckEntries(ctx context.Context, db *sql.DB, truckID int64) ([]model.AnticipatedItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, truck_id, item_code, slot, barcode_label, status, scanned_at
		 FROM anticipated_items WHERE truck_id = ? ORDER BY item_code, slot`, truckID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing truck entries: %w", err)
	}
	defer rows.Close()

	var entries []model.AnticipatedItem
	for rows.Next() {
		var e model.AnticipatedItem
		if err := rows.Scan(&e.ID, &e.TruckID, &e.ItemCode, &e.Slot, &e.BarcodeLabel, &e.Status, &e.ScannedAt); err != nil {
			return nil, fmt.Errorf("scanning truck entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ScanLabel graduates a pending anticipated entry into an in_stock
// inventory unit. Marking the entry scanned and inserting the unit are
// one transaction; the status = 'pending' guard makes the scan
// exactly-once even under concurrent duplicate scans.
func ScanLabel(ctx context.Context, db *sql.DB, truckID int64, label, scannedBy string) (*model.Unit, error) {
	truck, err := GetTruck(ctx, db, truckID)
	if err != nil {
		return nil, err
	}
	if truck == nil {
		return nil, fmt.Errorf("truck %d not found", truckID)
	}
	if truck.Status == model.TruckStatusClosed {
		return nil, ErrTruckClosed
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var entryID int64
	var itemCode string
	var s int
	err = tx.QueryRowContext(ctx,
		`SELECT id, item_code, slot FROM anticipated_items
		 WHERE barcode_label = ? AND truck_id = ? AND status = ?`,
		label, truckID, model.EntryStatusPending,
	).Scan(&entryID, &itemCode, &s)
	if err == sql.ErrNoRows {
		return nil, ErrScanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up scan: %w", err)
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`UPDATE anticipated_items SET status = ?, scanned_at = ?
		 WHERE id = ? AND status = ?`,
		model.EntryStatusScanned, now, entryID, model.EntryStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("marking entry scanned: %w", err)
	}
	if n, _ := result.RowsAffected(); n != 1 {
		return nil, ErrScanNotFound
	}

	unitID, err := insertUnit(ctx, tx, itemCode, s, scannedBy, now, &truckID)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: unit %s already in inventory", ErrSlotConflict, label)
	}
	if err != nil {
		return nil, fmt.Errorf("inserting scanned unit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing scan: %w", err)
	}

	return GetUnitByID(ctx, db, unitID)
}

// TruckSummary aggregates entry counts and a per-item-code status
// breakdown for one truck.
func TruckSummary(ctx context.Context, db *sql.DB, truckID int64) (*model.TruckSummary, error) {
	entries, err := ListTruckEntries(ctx, db, truckID)
	if err != nil {
		return nil, err
	}

	summary := &model.TruckSummary{
		TruckID:   truckID,
		Breakdown: make(map[string]map[string]int),
	}
	for _, e := range entries {
		summary.Total++
		switch e.Status {
		case model.EntryStatusScanned:
			summary.Scanned++
		case model.EntryStatusMissing:
			summary.Missing++
		case model.EntryStatusPending:
			summary.Pending++
		}
		if summary.Breakdown[e.ItemCode] == nil {
			summary.Breakdown[e.ItemCode] = make(map[string]int)
		}
		summary.Breakdown[e.ItemCode][e.Status]++
	}
	return summary, nil
}

// CloseTruck closes a truck: remaining pending entries become missing,
// the truck status flips to closed, and one immutable closure record is
// written, all in one transaction. Closing is terminal; a closed truck
// cannot be closed again.
func CloseTruck(ctx context.Context, db *sql.DB, truckID int64, closedBy string) (*model.ClosureRecord, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM anticipated_trucks WHERE id = ?`, truckID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("truck %d not found", truckID)
	}
	if err != nil {
		return nil, fmt.Errorf("checking truck status: %w", err)
	}
	if status == model.TruckStatusClosed {
		return nil, ErrTruckClosed
	}

	var total, processed, pending int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN status = 'scanned' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0)
		 FROM anticipated_items WHERE truck_id = ?`, truckID,
	).Scan(&total, &processed, &pending)
	if err != nil {
		return nil, fmt.Errorf("counting entries: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE anticipated_items SET status = ?
		 WHERE truck_id = ? AND status = ?`,
		model.EntryStatusMissing, truckID, model.EntryStatusPending,
	); err != nil {
		return nil, fmt.Errorf("marking missing entries: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE anticipated_trucks SET status = ? WHERE id = ?`,
		model.TruckStatusClosed, truckID,
	); err != nil {
		return nil, fmt.Errorf("closing truck: %w", err)
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO analytics_history (truck_id, closed_by, closed_at, items_processed, items_missing, total_items)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		truckID, closedBy, now, processed, pending, total,
	)
	if err != nil {
		return nil, fmt.Errorf("recording closure: %w", err)
	}
	recordID, _ := result.LastInsertId()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing truck closure: %w", err)
	}

	return &model.ClosureRecord{
		ID:             recordID,
		TruckID:        truckID,
		ClosedBy:       closedBy,
		ClosedAt:       now,
		ItemsProcessed: processed,
		ItemsMissing:   pending,
		TotalItems:     total,
	}, nil
}

// DeleteTruck deletes a truck and everything hanging off it, in
// dependency order: closure records, truck-scoped inventory units,
// anticipated entries, then the truck row.
func DeleteTruck(ctx context.Context, db *sql.DB, truckID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	steps := []struct {
		desc  string
		query string
	}{
		{"deleting closure records", `DELETE FROM analytics_history WHERE truck_id = ?`},
		{"deleting truck inventory", `DELETE FROM inventory WHERE truck_id = ?`},
		{"deleting anticipated entries", `DELETE FROM anticipated_items WHERE truck_id = ?`},
		{"deleting truck", `DELETE FROM anticipated_trucks WHERE id = ?`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.query, truckID); err != nil {
			return fmt.Errorf("%s: %w", step.desc, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing truck deletion: %w", err)
	}
	return nil
}
