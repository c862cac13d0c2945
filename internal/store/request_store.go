package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ladiossato/k2-inventory/internal/model"
)

// RequestStore persists generated purchase-request batches so later
// deliveries can be checked against what was ordered.
type RequestStore struct {
	db *sql.DB
}

func NewRequestStore(db *sql.DB) *RequestStore {
	return &RequestStore{db: db}
}

// SaveBatch writes one generated request batch.
func (s *RequestStore) SaveBatch(ctx context.Context, batchID string, loc model.Location, requestDate time.Time, deliveryLabel string, lines []model.RequestLine) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := time.Now().UTC().Format(time.RFC3339)
	for _, line := range lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO requests (batch_id, location, request_date, delivery_label, item_name, on_hand, needed, requested, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, batchID, string(loc), requestDate.Format(dateLayout), deliveryLabel, line.Item.Name, line.OnHand, line.Needed, line.Requested, createdAt)
		if err != nil {
			return fmt.Errorf("failed to save request line %s: %w", line.Item.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit request batch: %w", err)
	}
	return nil
}

// RecentRequested returns the most recently requested quantity per item
// at a location since the given date. Only lines that actually asked
// for stock count.
func (s *RequestStore) RecentRequested(ctx context.Context, loc model.Location, since time.Time) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.item_name, r.requested FROM requests r
		WHERE r.location = ? AND r.request_date >= ? AND r.requested > 0
		  AND r.request_date = (
			SELECT MAX(r2.request_date) FROM requests r2
			WHERE r2.location = r.location AND r2.item_name = r.item_name
			  AND r2.request_date >= ? AND r2.requested > 0
		  )
	`, string(loc), since.Format(dateLayout), since.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query recent requests: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var name string
		var requested int
		if err := rows.Scan(&name, &requested); err != nil {
			return nil, fmt.Errorf("failed to scan request line: %w", err)
		}
		out[name] = requested
	}
	return out, rows.Err()
}
