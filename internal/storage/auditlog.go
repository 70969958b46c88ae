package storage

import (
	"context"
	"fmt"
	"time"
)

// ChangeEvent is one archived mutation from the change stream.
type ChangeEvent struct {
	ID         int64
	Username   string
	Op         string
	RecordID   int64
	Count      int
	OccurredAt time.Time
}

// AppendChangeEvent archives one change-stream message. The audit log is
// append-only; duplicates from redelivered messages are acceptable.
func (r *SQLiteRepository) AppendChangeEvent(ctx context.Context, username, op string, recordID int64, count int, occurredAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO record_events (username, op, record_id, count, occurred_at) VALUES (?, ?, ?, ?, ?)`,
		username, op, recordID, count, occurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append change event for %s: %w", username, err)
	}
	return nil
}

// RecentChangeEvents returns the newest archived events for a user, most
// recent first.
func (r *SQLiteRepository) RecentChangeEvents(ctx context.Context, username string, limit int) ([]ChangeEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, op, record_id, count, occurred_at
		 FROM record_events WHERE username = ?
		 ORDER BY occurred_at DESC, id DESC LIMIT ?`,
		username, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query change events for %s: %w", username, err)
	}
	defer rows.Close()

	var events []ChangeEvent
	for rows.Next() {
		var ev ChangeEvent
		if err := rows.Scan(&ev.ID, &ev.Username, &ev.Op, &ev.RecordID, &ev.Count, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan change event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
