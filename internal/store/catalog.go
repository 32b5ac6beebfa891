package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/laurenmk/stockdock/internal/model"
)

// ListCatalog returns all whitelisted item codes, ordered by name.
func ListCatalog(ctx context.Context, db *sql.DB) ([]model.CatalogItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, item_name, created_at FROM catalog ORDER BY item_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	defer rows.Close()

	var items []model.CatalogItem
	for rows.Next() {
		var c model.CatalogItem
		if err := rows.Scan(&c.ID, &c.ItemName, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning catalog item: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// AddCatalogItem adds an item code to the whitelist.
func AddCatalogItem(ctx context.Context, db *sql.DB, itemName string) (*model.CatalogItem, error) {
	itemName = strings.TrimSpace(itemName)
	if itemName == "" {
		return nil, fmt.Errorf("item name is required")
	}
	result, err := db.ExecContext(ctx,
		`INSERT INTO catalog (item_name) VALUES (?)`, itemName,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("item %q already exists in catalog", itemName)
	}
	if err != nil {
		return nil, fmt.Errorf("adding catalog item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting catalog item id: %w", err)
	}

	c := &model.CatalogItem{}
	err = db.QueryRowContext(ctx,
		`SELECT id, item_name, created_at FROM catalog WHERE id = ?`, id,
	).Scan(&c.ID, &c.ItemName, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting catalog item: %w", err)
	}
	return c, nil
}

// DeleteCatalogItems removes item codes from the whitelist. Existing
// inventory rows for removed codes are untouched; they just stop being
// scannable.
func DeleteCatalogItems(ctx context.Context, db *sql.DB, itemNames []string) error {
	if len(itemNames) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(itemNames)), ", ")
	query := `DELETE FROM catalog WHERE item_name IN (` + placeholders + `)`

	args := make([]any, len(itemNames))
	for i, n := range itemNames {
		args[i] = n
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting catalog items: %w", err)
	}
	return nil
}

// InCatalog reports whether an item code is whitelisted.
func InCatalog(ctx context.Context, db *sql.DB, itemCode string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM catalog WHERE item_name = ?`, itemCode,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking catalog: %w", err)
	}
	return count > 0, nil
}
