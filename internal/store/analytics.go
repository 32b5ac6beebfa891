package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/laurenmk/stockdock/internal/model"
)

// GetClosure returns the closure record for a truck, or nil if the truck
// has not been closed.
func GetClosure(ctx context.Context, db *sql.DB, truckID int64) (*model.ClosureRecord, error) {
	r := &model.ClosureRecord{}
	err := db.QueryRowContext(ctx,
		`SELECT id, truck_id, closed_by, closed_at, items_processed, items_missing, total_items
		 FROM analytics_history WHERE truck_id = ? ORDER BY id LIMIT 1`, truckID,
	).Scan(&r.ID, &r.TruckID, &r.ClosedBy, &r.ClosedAt, &r.ItemsProcessed, &r.ItemsMissing, &r.TotalItems)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting closure record: %w", err)
	}
	return r, nil
}

// GetTruckHistory returns the audit trail for one truck.
func GetTruckHistory(ctx context.Context, db *sql.DB, truckID int64) (*model.TruckHistory, error) {
	truck, err := GetTruck(ctx, db, truckID)
	if err != nil {
		return nil, err
	}
	if truck == nil {
		return nil, nil
	}

	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT added_by FROM inventory WHERE truck_id = ? ORDER BY added_by`,
		truckID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing scanners: %w", err)
	}
	defer rows.Close()

	var scanners []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning scanner name: %w", err)
		}
		scanners = append(scanners, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	closure, err := GetClosure(ctx, db, truckID)
	if err != nil {
		return nil, err
	}

	return &model.TruckHistory{
		Truck:     *truck,
		ScannedBy: scanners,
		Closure:   closure,
	}, nil
}

// ProductSummary returns per-item-code status counts plus units depleted
// in the last seven days. Time bucketing happens in Go so stored
// timestamp formats never affect the comparison.
func ProductSummary(ctx context.Context, db *sql.DB) ([]model.ProductSummaryRow, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT item_code, status, depleted_at FROM inventory`,
	)
	if err != nil {
		return nil, fmt.Errorf("reading inventory for summary: %w", err)
	}
	defer rows.Close()

	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	byCode := make(map[string]*model.ProductSummaryRow)

	for rows.Next() {
		var code, status string
		var depletedAt *time.Time
		if err := rows.Scan(&code, &status, &depletedAt); err != nil {
			return nil, fmt.Errorf("scanning summary row: %w", err)
		}

		row := byCode[code]
		if row == nil {
			row = &model.ProductSummaryRow{ItemCode: code}
			byCode[code] = row
		}
		switch status {
		case model.UnitStatusInStock:
			row.InStock++
		case model.UnitStatusInUse:
			row.InUse++
		case model.UnitStatusDepleted:
			row.DepletedTotal++
			if depletedAt != nil && depletedAt.After(weekAgo) {
				row.DepletedThisWeek++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summary := make([]model.ProductSummaryRow, 0, len(byCode))
	for _, row := range byCode {
		summary = append(summary, *row)
	}
	sort.Slice(summary, func(i, j int) bool { return summary[i].ItemCode < summary[j].ItemCode })
	return summary, nil
}

// AvgLifespans returns the average in_use-to-depleted duration per item
// code, over units carrying both timestamps.
func AvgLifespans(ctx context.Context, db *sql.DB) ([]model.LifespanRow, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT item_code, in_use_at, depleted_at FROM inventory
		 WHERE in_use_at IS NOT NULL AND depleted_at IS NOT NULL`,
	)
	if err != nil {
		return nil, fmt.Errorf("reading lifespans: %w", err)
	}
	defer rows.Close()

	type acc struct {
		days  float64
		count int
	}
	byCode := make(map[string]*acc)

	for rows.Next() {
		var code string
		var inUseAt, depletedAt time.Time
		if err := rows.Scan(&code, &inUseAt, &depletedAt); err != nil {
			return nil, fmt.Errorf("scanning lifespan row: %w", err)
		}
		a := byCode[code]
		if a == nil {
			a = &acc{}
			byCode[code] = a
		}
		a.days += depletedAt.Sub(inUseAt).Hours() / 24
		a.count++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]model.LifespanRow, 0, len(byCode))
	for code, a := range byCode {
		result = append(result, model.LifespanRow{
			ItemCode:    code,
			AvgDays:     a.days / float64(a.count),
			SampleCount: a.count,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ItemCode < result[j].ItemCode })
	return result, nil
}

// DepletionBetween counts depleted units per item code between the
// closures of two trucks. The first truck must have closed before the
// second.
func DepletionBetween(ctx context.Context, db *sql.DB, fromTruckID, toTruckID int64) (*model.DepletionReport, error) {
	if fromTruckID == toTruckID {
		return nil, fmt.Errorf("trucks must differ")
	}

	from, err := GetClosure(ctx, db, fromTruckID)
	if err != nil {
		return nil, err
	}
	to, err := GetClosure(ctx, db, toTruckID)
	if err != nil {
		return nil, err
	}
	if from == nil || to == nil {
		return nil, fmt.Errorf("both trucks must be closed")
	}
	if from.ClosedAt.After(to.ClosedAt) {
		return nil, fmt.Errorf("first truck must close before second")
	}

	rows, err := db.QueryContext(ctx,
		`SELECT item_code, depleted_at FROM inventory WHERE depleted_at IS NOT NULL`,
	)
	if err != nil {
		return nil, fmt.Errorf("reading depletions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var code string
		var depletedAt time.Time
		if err := rows.Scan(&code, &depletedAt); err != nil {
			return nil, fmt.Errorf("scanning depletion row: %w", err)
		}
		if !depletedAt.Before(from.ClosedAt) && !depletedAt.After(to.ClosedAt) {
			counts[code]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	report := &model.DepletionReport{
		FromTruckID: fromTruckID,
		ToTruckID:   toTruckID,
		From:        from.ClosedAt,
		To:          to.ClosedAt,
	}
	for code, n := range counts {
		report.Rows = append(report.Rows, model.DepletionRow{ItemCode: code, Depleted: n})
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		if report.Rows[i].Depleted != report.Rows[j].Depleted {
			return report.Rows[i].Depleted > report.Rows[j].Depleted
		}
		return report.Rows[i].ItemCode < report.Rows[j].ItemCode
	})
	return report, nil
}
