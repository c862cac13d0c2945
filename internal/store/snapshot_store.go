package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ladiossato/k2-inventory/internal/model"
)

const dateLayout = "2006-01-02"

// SnapshotStore persists finalized inventory submissions as per-item
// entry rows.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save writes one row per counted item inside a transaction. A second
// submission for the same item, date, location, and entry type
// replaces the first: last write wins.
func (s *SnapshotStore) Save(ctx context.Context, snap model.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	entryDate := snap.Date.Format(dateLayout)
	submittedAt := snap.SubmittedAt.UTC().Format(time.RFC3339)
	for name, qty := range snap.Quantities {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entries (snapshot_id, location, entry_type, entry_date, item_name, qty, note, submitted_by, submitted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(location, entry_type, entry_date, item_name) DO UPDATE SET
				snapshot_id = excluded.snapshot_id,
				qty = excluded.qty,
				note = excluded.note,
				submitted_by = excluded.submitted_by,
				submitted_at = excluded.submitted_at
		`, snap.ID, string(snap.Location), string(snap.EntryType), entryDate, name, qty, snap.Note, snap.SubmittedBy, submittedAt)
		if err != nil {
			return fmt.Errorf("failed to save entry %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LatestOnHand returns the most recent on-hand quantity per item on or
// before the given date.
func (s *SnapshotStore) LatestOnHand(ctx context.Context, loc model.Location, onOrBefore time.Time) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.item_name, e.qty FROM entries e
		WHERE e.location = ? AND e.entry_type = ? AND e.entry_date <= ?
		  AND e.entry_date = (
			SELECT MAX(e2.entry_date) FROM entries e2
			WHERE e2.location = e.location AND e2.entry_type = e.entry_type
			  AND e2.item_name = e.item_name AND e2.entry_date <= ?
		  )
	`, string(loc), string(model.EntryOnHand), onOrBefore.Format(dateLayout), onOrBefore.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query latest on-hand: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var name string
		var qty float64
		if err := rows.Scan(&name, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		out[name] = qty
	}
	return out, rows.Err()
}

// QuantitiesOn returns the quantities recorded for an exact date and
// entry type.
func (s *SnapshotStore) QuantitiesOn(ctx context.Context, loc model.Location, entryType model.EntryType, date time.Time) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_name, qty FROM entries
		WHERE location = ? AND entry_type = ? AND entry_date = ?
	`, string(loc), string(entryType), date.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var name string
		var qty float64
		if err := rows.Scan(&name, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		out[name] = qty
	}
	return out, rows.Err()
}

// MissingItems returns catalog items without an on-hand count for the
// given date, name ascending.
func (s *SnapshotStore) MissingItems(ctx context.Context, loc model.Location, date time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.name FROM items i
		WHERE i.location = ? AND i.active = 1
		  AND NOT EXISTS (
			SELECT 1 FROM entries e
			WHERE e.location = i.location AND e.item_name = i.name
			  AND e.entry_type = ? AND e.entry_date = ?
		  )
		ORDER BY i.name ASC
	`, string(loc), string(model.EntryOnHand), date.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query missing items: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan item name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
