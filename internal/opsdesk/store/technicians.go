package store

import (
	"context"
	"fmt"

	"github.com/opsdeskhq/opsdesk/internal/opsdesk/domain"
)

// UpsertTechnician inserts or replaces a technician record.
func (s *Store) UpsertTechnician(ctx context.Context, t *domain.Technician) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO technicians (id, display_name, role)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name, role = excluded.role
	`, t.ID, t.DisplayName, t.Role)
	if err != nil {
		return fmt.Errorf("failed to upsert technician: %w", err)
	}
	return nil
}

// ListTechnicians returns all technicians ordered by display name.
func (s *Store) ListTechnicians(ctx context.Context) ([]*domain.Technician, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, role FROM technicians ORDER BY display_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query technicians: %w", err)
	}
	defer rows.Close()

	var techs []*domain.Technician
	for rows.Next() {
		var t domain.Technician
		if err := rows.Scan(&t.ID, &t.DisplayName, &t.Role); err != nil {
			return nil, fmt.Errorf("failed to scan technician: %w", err)
		}
		techs = append(techs, &t)
	}
	return techs, rows.Err()
}
