package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/laurenmk/stockdock/internal/model"
	"github.com/laurenmk/stockdock/internal/slot"
)

// querier is satisfied by both *sql.DB and *sql.Tx so slot-set loading
// can run inside the transaction that consumes the result.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const unitColumns = `id, item_code, slot, status, added_by, added_at,
	in_stock_at, in_use_at, depleted_at, truck_id`

func scanUnit(row interface{ Scan(...any) error }) (*model.Unit, error) {
	u := &model.Unit{}
	err := row.Scan(&u.ID, &u.ItemCode, &u.Slot, &u.Status, &u.AddedBy, &u.AddedAt,
		&u.InStockAt, &u.InUseAt, &u.DepletedAt, &u.TruckID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// loadSlotSets loads the occupied and reusable slot sets for an item code.
//
// used is the union of slots held by non-depleted inventory units and by
// anticipated entries of any truck; depleted holds slots occupied only by
// depleted units. Batch reservations are layered on top by the allocator.
func loadSlotSets(ctx context.Context, q querier, itemCode string) (used, depleted slot.Set, err error) {
	used = make(slot.Set)
	depleted = make(slot.Set)

	rows, err := q.QueryContext(ctx,
		`SELECT slot, status FROM inventory WHERE item_code = ?`, itemCode,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("loading inventory slots: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s int
		var status string
		if err := rows.Scan(&s, &status); err != nil {
			return nil, nil, fmt.Errorf("scanning inventory slot: %w", err)
		}
		if status == model.UnitStatusDepleted {
			depleted[s] = true
		} else {
			used[s] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	rows, err = q.QueryContext(ctx,
		`SELECT slot FROM anticipated_items WHERE item_code = ?`, itemCode,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("loading anticipated slots: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, nil, fmt.Errorf("scanning anticipated slot: %w", err)
		}
		used[s] = true
	}
	return used, depleted, rows.Err()
}

// insertUnit inserts an in_stock inventory unit. The partial unique index
// on (item_code, slot) rejects collisions with other active units.
func insertUnit(ctx context.Context, q querier, itemCode string, s int, addedBy string, now time.Time, truckID *int64) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO inventory (item_code, slot, status, added_by, added_at, in_stock_at, truck_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		itemCode, s, model.UnitStatusInStock, addedBy, now, now, truckID,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// EmergencyAdd creates an inventory unit directly, bypassing the
// anticipated-manifest scan step. The item code must be whitelisted.
// Slot assignment and the insert are one atomic unit: if the insert loses
// a race on the slot, allocation is retried once with refreshed slot data
// before the conflict is surfaced.
func EmergencyAdd(ctx context.Context, db *sql.DB, itemCode, addedBy string) (*model.Unit, error) {
	ok, err := InCatalog(ctx, db, itemCode)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInCatalog
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		id, err := tryEmergencyAdd(ctx, db, itemCode, addedBy)
		if err == nil {
			return GetUnitByID(ctx, db, id)
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrSlotConflict, lastErr)
}

func tryEmergencyAdd(ctx context.Context, db *sql.DB, itemCode, addedBy string) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	used, depleted, err := loadSlotSets(ctx, tx, itemCode)
	if err != nil {
		return 0, err
	}

	s := slot.Next(itemCode, used, depleted, slot.NewReservations())
	id, err := insertUnit(ctx, tx, itemCode, s, addedBy, time.Now().UTC(), nil)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing emergency add: %w", err)
	}
	return id, nil
}

// GetUnitByID returns a unit by row id.
func GetUnitByID(ctx context.Context, db *sql.DB, id int64) (*model.Unit, error) {
	u, err := scanUnit(db.QueryRowContext(ctx,
		`SELECT `+unitColumns+` FROM inventory WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting unit: %w", err)
	}
	return u, nil
}

// GetUnit returns the unit at (item_code, slot), preferring the active
// row when a depleted duplicate shares the slot number.
func GetUnit(ctx context.Context, db *sql.DB, itemCode string, s int) (*model.Unit, error) {
	u, err := scanUnit(db.QueryRowContext(ctx,
		`SELECT `+unitColumns+` FROM inventory
		 WHERE item_code = ? AND slot = ?
		 ORDER BY CASE WHEN status != 'depleted' THEN 0 ELSE 1 END, id DESC
		 LIMIT 1`, itemCode, s,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting unit: %w", err)
	}
	return u, nil
}

// SetUnitStatus transitions the unit at (item_code, slot) to newStatus,
// stamping only the timestamp matching the target state. Earlier
// timestamps are retained, so duration reports can go inconsistent after
// a manual override; that is accepted and documented behavior.
//
// The row is resolved and updated in one transaction and the update must
// affect exactly one row; a vanished unit surfaces ErrStaleUnit.
func SetUnitStatus(ctx context.Context, db *sql.DB, itemCode string, s int, newStatus string) (*model.Unit, error) {
	if !model.ValidUnitStatus(newStatus) {
		return nil, fmt.Errorf("invalid status %q", newStatus)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Resolve the target row: the active unit if there is one, else the
	// newest depleted duplicate (restock reuses the slot of the unit that
	// was depleted last).
	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM inventory
		 WHERE item_code = ? AND slot = ?
		 ORDER BY CASE WHEN status != 'depleted' THEN 0 ELSE 1 END, id DESC
		 LIMIT 1`, itemCode, s,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, ErrStaleUnit
	}
	if err != nil {
		return nil, fmt.Errorf("resolving unit: %w", err)
	}

	var column string
	switch newStatus {
	case model.UnitStatusInStock:
		column = "in_stock_at"
	case model.UnitStatusInUse:
		column = "in_use_at"
	case model.UnitStatusDepleted:
		column = "depleted_at"
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE inventory SET status = ?, `+column+` = ? WHERE id = ?`,
		newStatus, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating unit status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking affected rows: %w", err)
	}
	if n != 1 {
		return nil, ErrStaleUnit
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing status update: %w", err)
	}

	return GetUnitByID(ctx, db, id)
}

// FIFOHint computes the consume-first advisory for an in_stock unit:
// whether it is the oldest in_stock unit of its item code, and if not,
// which one is.
func FIFOHint(ctx context.Context, db *sql.DB, unit *model.Unit) (*model.FIFOHint, error) {
	if unit.Status != model.UnitStatusInStock {
		return nil, nil
	}

	var oldestSlot int
	err := db.QueryRowContext(ctx,
		`SELECT slot FROM inventory
		 WHERE item_code = ? AND status = ?
		 ORDER BY added_at, slot
		 LIMIT 1`, unit.ItemCode, model.UnitStatusInStock,
	).Scan(&oldestSlot)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding oldest in-stock unit: %w", err)
	}

	return &model.FIFOHint{
		UseThisFirst: oldestSlot == unit.Slot,
		OldestSlot:   oldestSlot,
		OldestLabel:  model.BuildLabel(unit.ItemCode, oldestSlot),
	}, nil
}

// ListUnits returns all inventory units ordered by item code and slot,
// annotated with lifecycle durations in whole days.
func ListUnits(ctx context.Context, db *sql.DB) ([]model.UnitOverview, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+unitColumns+` FROM inventory ORDER BY item_code, slot, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()

	var units []model.UnitOverview
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning unit: %w", err)
		}
		units = append(units, overview(*u))
	}
	return units, rows.Err()
}

// ListInStock returns all in_stock units, for reprint pickers.
func ListInStock(ctx context.Context, db *sql.DB) ([]model.Unit, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+unitColumns+` FROM inventory WHERE status = ? ORDER BY item_code, slot`,
		model.UnitStatusInStock,
	)
	if err != nil {
		return nil, fmt.Errorf("listing in-stock units: %w", err)
	}
	defer rows.Close()

	var units []model.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning unit: %w", err)
		}
		units = append(units, *u)
	}
	return units, rows.Err()
}

// ClearInventory deletes every inventory row. Admin-only bulk reset.
func ClearInventory(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM inventory`)
	if err != nil {
		return 0, fmt.Errorf("clearing inventory: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting cleared rows: %w", err)
	}
	return n, nil
}

// overview annotates a unit with day-granularity durations. A duration is
// only reported when both bounding timestamps are set; after a manual
// override the numbers can be negative or misleading, which is accepted.
func overview(u model.Unit) model.UnitOverview {
	o := model.UnitOverview{Unit: u}
	days := func(from, to *time.Time) *int {
		if from == nil || to == nil {
			return nil
		}
		d := int(to.Sub(*from).Hours() / 24)
		return &d
	}
	o.DaysInStock = days(u.InStockAt, u.InUseAt)
	o.DaysInUse = days(u.InUseAt, u.DepletedAt)
	o.TotalDays = days(u.InStockAt, u.DepletedAt)
	return o
}
