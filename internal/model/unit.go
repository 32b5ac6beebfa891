package model

import "time"

// Unit represents one physical unit of an item code, bound to a numbered
// storage slot. The pair (item_code, slot) identifies the unit among
// non-depleted rows.
type Unit struct {
	ID         int64      `json:"id"`
	ItemCode   string     `json:"item_code"`
	Slot       int        `json:"slot"`
	Status     string     `json:"status"`
	AddedBy    string     `json:"added_by"`
	AddedAt    time.Time  `json:"added_at"`
	InStockAt  *time.Time `json:"in_stock_at,omitempty"`
	InUseAt    *time.Time `json:"in_use_at,omitempty"`
	DepletedAt *time.Time `json:"depleted_at,omitempty"`
	TruckID    *int64     `json:"truck_id,omitempty"`
}

// Unit statuses.
const (
	UnitStatusInStock  = "in_stock"
	UnitStatusInUse    = "in_use"
	UnitStatusDepleted = "depleted"
)

// ValidUnitStatus reports whether s is one of the three unit statuses.
func ValidUnitStatus(s string) bool {
	switch s {
	case UnitStatusInStock, UnitStatusInUse, UnitStatusDepleted:
		return true
	}
	return false
}

// NextUnitStatus returns the normal-cycle successor of a status:
// in_stock -> in_use -> depleted -> in_stock. Anything else (manual
// override) has to be requested explicitly.
func NextUnitStatus(s string) string {
	switch s {
	case UnitStatusInStock:
		return UnitStatusInUse
	case UnitStatusInUse:
		return UnitStatusDepleted
	case UnitStatusDepleted:
		return UnitStatusInStock
	}
	return ""
}

// UnitOverview is a Unit annotated with lifecycle durations for the
// inventory overview report. Durations are whole days; nil when the
// bounding timestamps are not both set.
type UnitOverview struct {
	Unit
	DaysInStock *int `json:"days_in_stock,omitempty"`
	DaysInUse   *int `json:"days_in_use,omitempty"`
	TotalDays   *int `json:"total_days,omitempty"`
}

// FIFOHint is the advisory result of scanning an in-stock unit: whether
// the scanned unit is the oldest of its item code, and if not, which
// slot should be consumed first.
type FIFOHint struct {
	UseThisFirst bool   `json:"use_this_first"`
	OldestSlot   int    `json:"oldest_slot"`
	OldestLabel  string `json:"oldest_label"`
}
