package store

import (
	"context"
	"fmt"

	"github.com/opsdeskhq/opsdesk/internal/opsdesk/domain"
)

// Snapshot loads the full business data model into memory. The interpreter
// works against this view, so one message costs one read of every table
// rather than ad-hoc queries per intent.
func (s *Store) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	clients, err := s.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}
	jobs, err := s.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}
	quotes, err := s.ListQuotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotes: %w", err)
	}
	invoices, err := s.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	techs, err := s.ListTechnicians(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load technicians: %w", err)
	}
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	stock, err := s.ListStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock: %w", err)
	}

	return &domain.Snapshot{
		Clients:     clients,
		Jobs:        jobs,
		Quotes:      quotes,
		Invoices:    invoices,
		Technicians: techs,
		Products:    products,
		Stock:       stock,
	}, nil
}

// Counts reports row counts per table, used by the health endpoint and to
// decide whether the seed dataset should be applied.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	tables := []string{"clients", "technicians", "jobs", "quotes", "invoices",
		"inventory_products", "inventory_records"}
	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
