package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ladiossato/k2-inventory/internal/model"
)

// CatalogStore persists the item catalog.
type CatalogStore struct {
	db *sql.DB
}

func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// Seed inserts or refreshes catalog items. Existing rows keep their id
// and active flag; adu, unit, and par level are updated in place.
func (s *CatalogStore) Seed(ctx context.Context, items []model.Item) error {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, item := range items {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO items (name, location, adu, unit_type, par_level, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(name, location) DO UPDATE SET
				adu = excluded.adu,
				unit_type = excluded.unit_type,
				par_level = excluded.par_level,
				updated_at = excluded.updated_at
		`, item.Name, string(item.Location), item.ADU, string(item.Unit), item.ParLevel, now, now)
		if err != nil {
			return fmt.Errorf("failed to seed item %s: %w", item.Name, err)
		}
	}
	return nil
}

// ListByLocation returns active items at a location, name ascending.
func (s *CatalogStore) ListByLocation(ctx context.Context, loc model.Location) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, location, adu, unit_type, par_level FROM items
		WHERE location = ? AND active = 1 ORDER BY name ASC
	`, string(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var locStr, unitStr string
		if err := rows.Scan(&item.Name, &locStr, &item.ADU, &unitStr, &item.ParLevel); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Location = model.Location(locStr)
		item.Unit = model.UnitType(unitStr)
		items = append(items, item)
	}
	return items, rows.Err()
}
