package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opsdeskhq/opsdesk/internal/opsdesk/domain"
)

// CreateClient inserts a new client record.
func (s *Store) CreateClient(ctx context.Context, c *domain.Client) error {
	properties, err := marshalJSON(c.Properties)
	if err != nil {
		return fmt.Errorf("failed to encode client properties: %w", err)
	}
	tags, err := marshalJSON(c.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode client tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO clients (id, first_name, last_name, email, phone,
			billing_street, billing_city, properties, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.FirstName, c.LastName, c.Email, c.Phone,
		c.BillingAddress.Street, c.BillingAddress.City, properties, tags, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

// GetClient returns the client with the given id, or nil when absent.
func (s *Store) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, phone,
			billing_street, billing_city, properties, tags, created_at
		FROM clients WHERE id = ?
	`, id)
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// ListClients returns all clients in creation order.
func (s *Store) ListClients(ctx context.Context) ([]*domain.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email, phone,
			billing_street, billing_city, properties, tags, created_at
		FROM clients ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*domain.Client, error) {
	var c domain.Client
	var properties, tags string
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.BillingAddress.Street, &c.BillingAddress.City, &properties, &tags, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}
	if err := unmarshalJSON(properties, &c.Properties); err != nil {
		return nil, fmt.Errorf("failed to decode client properties: %w", err)
	}
	if err := unmarshalJSON(tags, &c.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode client tags: %w", err)
	}
	return &c, nil
}
