package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'truck' CHECK (role IN ('admin', 'truck')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS catalog (
    id         INTEGER PRIMARY KEY,
    item_name  TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS anticipated_trucks (
    id          INTEGER PRIMARY KEY,
    truck_name  TEXT NOT NULL,
    created_by  TEXT NOT NULL,
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    status      TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'closed')),
    day_of_week TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS anticipated_items (
    id            INTEGER PRIMARY KEY,
    truck_id      INTEGER NOT NULL REFERENCES anticipated_trucks(id),
    item_code     TEXT NOT NULL,
    slot          INTEGER NOT NULL,
    barcode_label TEXT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'scanned', 'missing')),
    scanned_at    DATETIME,
    UNIQUE (truck_id, item_code, slot)
);

CREATE INDEX IF NOT EXISTS idx_anticipated_items_label
    ON anticipated_items(barcode_label);

CREATE TABLE IF NOT EXISTS inventory (
    id          INTEGER PRIMARY KEY,
    item_code   TEXT NOT NULL,
    slot        INTEGER NOT NULL,
    status      TEXT NOT NULL DEFAULT 'in_stock' CHECK (status IN ('in_stock', 'in_use', 'depleted')),
    added_by    TEXT NOT NULL,
    added_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    in_stock_at DATETIME,
    in_use_at   DATETIME,
    depleted_at DATETIME,
    truck_id    INTEGER REFERENCES anticipated_trucks(id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_active_slot
    ON inventory(item_code, slot) WHERE status != 'depleted';

CREATE TABLE IF NOT EXISTS analytics_history (
    id              INTEGER PRIMARY KEY,
    truck_id        INTEGER NOT NULL REFERENCES anticipated_trucks(id),
    closed_by       TEXT NOT NULL,
    closed_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    items_processed INTEGER NOT NULL,
    items_missing   INTEGER NOT NULL,
    total_items     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
//
// The partial unique index on inventory(item_code, slot) only covers
// non-depleted rows, so depleted history can share a slot number with the
// active unit that reused it. Two concurrent writers may compute the same
// next slot, but only one insert can win among active rows.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
