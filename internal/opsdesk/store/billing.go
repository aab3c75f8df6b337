package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opsdeskhq/opsdesk/internal/opsdesk/domain"
)

// CreateQuote inserts a quote.
func (s *Store) CreateQuote(ctx context.Context, q *domain.Quote) error {
	lineItems, err := marshalJSON(q.LineItems)
	if err != nil {
		return fmt.Errorf("failed to encode quote line items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quotes (id, client_id, property_id, status, line_items,
			subtotal_cents, tax_cents, total_cents, issued_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.ID, q.ClientID, q.PropertyID, string(q.Status), lineItems,
		q.SubtotalCents, q.TaxCents, q.TotalCents, q.IssuedAt, q.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}
	return nil
}

// ListQuotes returns all quotes in issue order.
func (s *Store) ListQuotes(ctx context.Context) ([]*domain.Quote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, property_id, status, line_items,
			subtotal_cents, tax_cents, total_cents, issued_at, expires_at
		FROM quotes ORDER BY issued_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*domain.Quote
	for rows.Next() {
		var q domain.Quote
		var status, lineItems string
		if err := rows.Scan(&q.ID, &q.ClientID, &q.PropertyID, &status, &lineItems,
			&q.SubtotalCents, &q.TaxCents, &q.TotalCents, &q.IssuedAt, &q.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		q.Status = domain.QuoteStatus(status)
		if err := unmarshalJSON(lineItems, &q.LineItems); err != nil {
			return nil, fmt.Errorf("failed to decode quote line items: %w", err)
		}
		quotes = append(quotes, &q)
	}
	return quotes, rows.Err()
}

// CreateInvoice inserts an invoice.
func (s *Store) CreateInvoice(ctx context.Context, inv *domain.Invoice) error {
	lineItems, err := marshalJSON(inv.LineItems)
	if err != nil {
		return fmt.Errorf("failed to encode invoice line items: %w", err)
	}
	payments, err := marshalJSON(inv.Payments)
	if err != nil {
		return fmt.Errorf("failed to encode invoice payments: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invoices (id, client_id, status, line_items, subtotal_cents,
			tax_cents, total_cents, balance_due_cents, payments, issued_at, due_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.ClientID, string(inv.Status), lineItems, inv.SubtotalCents,
		inv.TaxCents, inv.TotalCents, inv.BalanceDueCents, payments, inv.IssuedAt, inv.DueAt)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

// GetInvoice returns the invoice with the given id, or nil when absent.
func (s *Store) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	row := s.db.QueryRowContext(ctx, invoiceSelect+` WHERE id = ?`, id)
	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

// ListInvoices returns all invoices in issue order.
func (s *Store) ListInvoices(ctx context.Context) ([]*domain.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, invoiceSelect+` ORDER BY issued_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// RecordPayment appends a payment to an invoice, reduces its balance, and
// marks it paid when the balance reaches zero.
func (s *Store) RecordPayment(ctx context.Context, invoiceID string, p domain.Payment) error {
	inv, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv == nil {
		return fmt.Errorf("invoice %s not found", invoiceID)
	}

	inv.Payments = append(inv.Payments, p)
	inv.BalanceDueCents -= p.AmountCents
	if inv.BalanceDueCents < 0 {
		inv.BalanceDueCents = 0
	}
	status := inv.Status
	if inv.BalanceDueCents == 0 {
		status = domain.InvoicePaid
	}

	payments, err := marshalJSON(inv.Payments)
	if err != nil {
		return fmt.Errorf("failed to encode invoice payments: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		UPDATE invoices SET payments = ?, balance_due_cents = ?, status = ? WHERE id = ?
	`, payments, inv.BalanceDueCents, string(status), invoiceID); err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

const invoiceSelect = `
	SELECT id, client_id, status, line_items, subtotal_cents, tax_cents,
		total_cents, balance_due_cents, payments, issued_at, due_at
	FROM invoices`

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	var inv domain.Invoice
	var status, lineItems, payments string
	err := row.Scan(&inv.ID, &inv.ClientID, &status, &lineItems,
		&inv.SubtotalCents, &inv.TaxCents, &inv.TotalCents,
		&inv.BalanceDueCents, &payments, &inv.IssuedAt, &inv.DueAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}
	inv.Status = domain.InvoiceStatus(status)
	if err := unmarshalJSON(lineItems, &inv.LineItems); err != nil {
		return nil, fmt.Errorf("failed to decode invoice line items: %w", err)
	}
	if err := unmarshalJSON(payments, &inv.Payments); err != nil {
		return nil, fmt.Errorf("failed to decode invoice payments: %w", err)
	}
	return &inv, nil
}
