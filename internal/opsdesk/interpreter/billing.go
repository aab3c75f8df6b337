package interpreter

// Quote drafting and invoice issuance. Both resolve the client fuzzily,
// build a single-line-item document, and hand it to the mutation ports.

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opsdeskhq/opsdesk/internal/opsdesk/domain"
)

const (
	// quoteTaxPercent is the fixed tax rate applied to drafted quotes.
	quoteTaxPercent = 8
	// quoteValidity / invoiceTerm are the fixed expiry and due windows.
	quoteValidity = 14 * 24 * time.Hour
	invoiceTerm   = 14 * 24 * time.Hour
	// defaultQuoteCents backs a quote when no amount could be parsed.
	defaultQuoteCents int64 = 15000
	// Invoices issued through the assistant are a predetermined service
	// charge: $250 plus $20 tax.
	invoiceServiceCents int64 = 25000
	invoiceTaxCents     int64 = 2000
)

// handleQuote drafts a single-line-item quote at the stated amount.
func (it *Interpreter) handleQuote(ctx context.Context, req *request) ([]string, bool, error) {
	query := clientQuery(req.raw)
	client := FindClient(req.snap, query)
	if client == nil {
		return []string{notFound("client", query)}, false, nil
	}

	amount, _, ok := ExtractAmount(req.raw)
	if !ok {
		// Unparseable amounts fall back silently rather than erroring.
		amount = defaultQuoteCents
	}
	tax := amount * quoteTaxPercent / 100
	propertyID := ""
	if len(client.Properties) > 0 {
		propertyID = client.Properties[0].ID
	}

	q := &domain.Quote{
		ID:         uuid.NewString(),
		ClientID:   client.ID,
		PropertyID: propertyID,
		LineItems: []domain.LineItem{{
			Description:    "Quoted service",
			Quantity:       1,
			UnitPriceCents: amount,
			TotalCents:     amount,
		}},
		SubtotalCents: amount,
		TaxCents:      tax,
		TotalCents:    amount + tax,
		Status:        domain.QuoteDraft,
		IssuedAt:      req.now,
		ExpiresAt:     req.now.Add(quoteValidity),
	}
	if err := it.ports.CreateQuote(ctx, q); err != nil {
		return nil, false, fmt.Errorf("create quote: %w", err)
	}

	lines := []string{
		fmt.Sprintf("📄 Drafted a quote for **%s**:", client.FullName()),
		fmt.Sprintf("Subtotal **%s** + tax **%s** = **%s**", domain.Money(q.SubtotalCents), domain.Money(q.TaxCents), domain.Money(q.TotalCents)),
		fmt.Sprintf("Valid until %s. %s", shortDay(q.ExpiresAt), quotesLink),
	}
	return lines, true, nil
}

// handleInvoice issues the fixed single-line-item service invoice.
func (it *Interpreter) handleInvoice(ctx context.Context, req *request) ([]string, bool, error) {
	query := clientQuery(req.raw)
	client := FindClient(req.snap, query)
	if client == nil {
		return []string{notFound("client", query)}, false, nil
	}

	total := invoiceServiceCents + invoiceTaxCents
	inv := &domain.Invoice{
		ID:       uuid.NewString(),
		ClientID: client.ID,
		LineItems: []domain.LineItem{{
			Description:    "Service call",
			Quantity:       1,
			UnitPriceCents: invoiceServiceCents,
			TotalCents:     invoiceServiceCents,
		}},
		SubtotalCents:   invoiceServiceCents,
		TaxCents:        invoiceTaxCents,
		TotalCents:      total,
		BalanceDueCents: total,
		Status:          domain.InvoiceSent,
		IssuedAt:        req.now,
		DueAt:           req.now.Add(invoiceTerm),
	}
	if err := it.ports.CreateInvoice(ctx, inv); err != nil {
		return nil, false, fmt.Errorf("create invoice: %w", err)
	}

	lines := []string{
		fmt.Sprintf("🧾 Sent an invoice to **%s**:", client.FullName()),
		fmt.Sprintf("**%s** + **%s** tax = **%s**, due %s", domain.Money(inv.SubtotalCents), domain.Money(inv.TaxCents), domain.Money(inv.TotalCents), shortDay(inv.DueAt)),
		invoicesLink,
	}
	return lines, true, nil
}
