package store

import (
	"errors"
	"strings"
)

// Sentinel errors handlers branch on. Everything else is a wrapped
// internal error.
var (
	// ErrSlotConflict means a slot insert hit the uniqueness constraint
	// even after one allocation retry with refreshed slot data.
	ErrSlotConflict = errors.New("slot already taken for this item code")

	// ErrStaleUnit means a status transition matched no row: the unit
	// was deleted or changed concurrently.
	ErrStaleUnit = errors.New("unit no longer exists in inventory")

	// ErrTruckClosed means an operation targeted a closed truck.
	ErrTruckClosed = errors.New("truck is closed")

	// ErrScanNotFound means a scanned label matched no pending entry for
	// the selected truck: wrong truck, already scanned, or nonexistent.
	ErrScanNotFound = errors.New("barcode not found, not pending, or belongs to another truck")

	// ErrNotInCatalog means the item code is not whitelisted.
	ErrNotInCatalog = errors.New("item code is not in the catalog")
)

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
