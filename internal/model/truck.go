package model

import "time"

// Truck represents an anticipated delivery batch. A truck owns a set of
// anticipated entries created with it and is closed exactly once.
type Truck struct {
	ID        int64     `json:"id"`
	TruckName string    `json:"truck_name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
	DayOfWeek string    `json:"day_of_week"`
}

// Truck statuses.
const (
	TruckStatusPending = "pending"
	TruckStatusClosed  = "closed"
)

// AnticipatedItem is a placeholder for one expected unit on a truck. The
// slot is reserved at creation time; scanning the barcode label graduates
// the entry into an inventory unit. Scanned and missing are terminal.
type AnticipatedItem struct {
	ID           int64      `json:"id"`
	TruckID      int64      `json:"truck_id"`
	ItemCode     string     `json:"item_code"`
	Slot         int        `json:"slot"`
	BarcodeLabel string     `json:"barcode_label"`
	Status       string     `json:"status"`
	ScannedAt    *time.Time `json:"scanned_at,omitempty"`
}

// Anticipated entry statuses.
const (
	EntryStatusPending = "pending"
	EntryStatusScanned = "scanned"
	EntryStatusMissing = "missing"
)

// ClosureRecord is the write-once analytics snapshot taken when a truck
// is closed. Never mutated afterwards.
type ClosureRecord struct {
	ID             int64     `json:"id"`
	TruckID        int64     `json:"truck_id"`
	ClosedBy       string    `json:"closed_by"`
	ClosedAt       time.Time `json:"closed_at"`
	ItemsProcessed int       `json:"items_processed"`
	ItemsMissing   int       `json:"items_missing"`
	TotalItems     int       `json:"total_items"`
}

// TruckSummary aggregates entry counts for one truck.
type TruckSummary struct {
	TruckID   int64                     `json:"truck_id"`
	Total     int                       `json:"total"`
	Scanned   int                       `json:"scanned"`
	Missing   int                       `json:"missing"`
	Pending   int                       `json:"pending"`
	Breakdown map[string]map[string]int `json:"breakdown"` // item_code -> status -> count
}

// ValidDayOfWeek reports whether day is a full English weekday name.
func ValidDayOfWeek(day string) bool {
	switch day {
	case "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday":
		return true
	}
	return false
}
