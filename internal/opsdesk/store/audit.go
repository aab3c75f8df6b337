package store

import (
	"context"
	"fmt"
	"time"
)

// AuditEntry records one assistant interaction: who asked what, which intent
// matched, and what the assistant replied.
type AuditEntry struct {
	ID        int64
	TraceID   string
	Sender    string
	Intent    string
	Input     string
	Outcome   string
	CreatedAt time.Time
}

// WriteAudit appends an interaction to the audit log.
func (s *Store) WriteAudit(ctx context.Context, traceID, sender, intent, input, outcome string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assistant_audit (trace_id, sender, intent, input, outcome)
		VALUES (?, ?, ?, ?, ?)
	`, traceID, sender, intent, input, outcome)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// RecentAudit returns up to limit most recent interactions, newest first.
func (s *Store) RecentAudit(ctx context.Context, limit int) ([]*AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trace_id, sender, intent, input, outcome, created_at
		FROM assistant_audit ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []*AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.TraceID, &e.Sender, &e.Intent,
			&e.Input, &e.Outcome, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
