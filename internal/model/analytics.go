package model

import "time"

// ProductSummaryRow is per-item-code status counts for the admin summary.
type ProductSummaryRow struct {
	ItemCode         string `json:"item_code"`
	InStock          int    `json:"in_stock"`
	InUse            int    `json:"in_use"`
	DepletedTotal    int    `json:"depleted_total"`
	DepletedThisWeek int    `json:"depleted_this_week"`
}

// TruckHistory describes the full audit trail of one truck: who created
// it, who scanned against it, and who closed it.
type TruckHistory struct {
	Truck     Truck          `json:"truck"`
	ScannedBy []string       `json:"scanned_by"`
	Closure   *ClosureRecord `json:"closure,omitempty"`
}

// LifespanRow is the average in_use-to-depleted duration for one item
// code, over units that have both timestamps.
type LifespanRow struct {
	ItemCode    string  `json:"item_code"`
	AvgDays     float64 `json:"avg_days"`
	SampleCount int     `json:"sample_count"`
}

// DepletionRow counts units of one item code depleted inside a window.
type DepletionRow struct {
	ItemCode string `json:"item_code"`
	Depleted int    `json:"depleted"`
}

// DepletionReport is depletion counts between two truck closures.
type DepletionReport struct {
	FromTruckID int64          `json:"from_truck_id"`
	ToTruckID   int64          `json:"to_truck_id"`
	From        time.Time      `json:"from"`
	To          time.Time      `json:"to"`
	Rows        []DepletionRow `json:"rows"`
}
