package model

import "time"

// CatalogItem is an entry in the whitelist of scannable item codes.
// Membership is checked when a barcode is scanned, not when ledger rows
// are written, so removing a code never orphans existing inventory.
type CatalogItem struct {
	ID        int64     `json:"id"`
	ItemName  string    `json:"item_name"`
	CreatedAt time.Time `json:"created_at"`
}
