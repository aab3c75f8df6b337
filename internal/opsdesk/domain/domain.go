// Package domain defines the business entities the OpsDesk assistant reasons
// about. The assistant never owns this data: it reads a Snapshot supplied by
// the host and mutates it only through the Ports interface.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// JobStatus is the lifecycle state of a Job. Transitions are monotonic
// (draft → scheduled → in-progress → completed) except cancellation, which is
// reachable from any non-terminal state.
type JobStatus string

const (
	JobDraft      JobStatus = "draft"
	JobScheduled  JobStatus = "scheduled"
	JobInProgress JobStatus = "in-progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobCancelled
}

// QuoteStatus is the lifecycle state of a Quote.
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteDeclined QuoteStatus = "declined"
	QuoteExpired  QuoteStatus = "expired"
)

// InvoiceStatus is the lifecycle state of an Invoice.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoiceOverdue InvoiceStatus = "overdue"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceVoid    InvoiceStatus = "void"
)

// Address is a street address. City falls back to a fixed locale when the
// source text carried no comma-separated city part.
type Address struct {
	Street string `json:"street" yaml:"street"`
	City   string `json:"city" yaml:"city"`
}

func (a Address) String() string {
	if a.City == "" {
		return a.Street
	}
	return a.Street + ", " + a.City
}

// Property is a serviceable location belonging to a client.
type Property struct {
	ID         string  `json:"id" yaml:"id"`
	Address    Address `json:"address" yaml:"address"`
	AccessNote string  `json:"access_note,omitempty" yaml:"access_note,omitempty"`
}

// Client is a customer record. Every client has at least one property after
// creation; the billing address is mirrored into the first property when a
// client is synthesized by the assistant.
type Client struct {
	ID             string     `json:"id" yaml:"id"`
	FirstName      string     `json:"first_name" yaml:"first_name"`
	LastName       string     `json:"last_name" yaml:"last_name"`
	Email          string     `json:"email" yaml:"email"`
	Phone          string     `json:"phone" yaml:"phone"`
	BillingAddress Address    `json:"billing_address" yaml:"billing_address"`
	Properties     []Property `json:"properties,omitempty" yaml:"properties,omitempty"`
	Tags           []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
}

// FullName returns "First Last", the form lookups match against.
func (c *Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// LineItem is one billable line on a job, quote, or invoice. All money is
// integer cents.
type LineItem struct {
	Description    string `json:"description" yaml:"description"`
	Quantity       int    `json:"quantity" yaml:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents" yaml:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents" yaml:"total_cents"`
}

// Vehicle describes a client asset extracted from free text. Fields default
// to placeholder tokens when the text does not carry them.
type Vehicle struct {
	Year  string `json:"year" yaml:"year"`
	Make  string `json:"make" yaml:"make"`
	Model string `json:"model" yaml:"model"`
}

// Job is a unit of scheduled work.
type Job struct {
	ID       string `json:"id" yaml:"id"`
	ClientID string `json:"client_id" yaml:"client_id"`
	// PropertyID names the client property the work happens at.
	PropertyID string `json:"property_id" yaml:"property_id"`
	// Seq is a monotonically increasing creation-order number assigned by the
	// store. "Most recently created job" lookups order by Seq, never by
	// parsing anything out of ID.
	Seq                int64      `json:"seq" yaml:"seq"`
	TechnicianIDs      []string   `json:"technician_ids,omitempty" yaml:"technician_ids,omitempty"`
	Title              string     `json:"title" yaml:"title"`
	Description        string     `json:"description,omitempty" yaml:"description,omitempty"`
	StartAt            time.Time  `json:"start_at" yaml:"start_at"`
	EndAt              time.Time  `json:"end_at" yaml:"end_at"`
	Status             JobStatus  `json:"status" yaml:"status"`
	Priority           string     `json:"priority,omitempty" yaml:"priority,omitempty"`
	LineItems          []LineItem `json:"line_items,omitempty" yaml:"line_items,omitempty"`
	Checklist          []string   `json:"checklist,omitempty" yaml:"checklist,omitempty"`
	Photos             []string   `json:"photos,omitempty" yaml:"photos,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty" yaml:"cancellation_reason,omitempty"`
	// OnMyWayTechID marks the technician who announced they are en route.
	OnMyWayTechID string    `json:"on_my_way_tech_id,omitempty" yaml:"on_my_way_tech_id,omitempty"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// TotalCents sums the job's line-item totals.
func (j *Job) TotalCents() int64 {
	var total int64
	for _, li := range j.LineItems {
		total += li.TotalCents
	}
	return total
}

// Assigned reports whether techID is on the job's crew.
func (j *Job) Assigned(techID string) bool {
	for _, id := range j.TechnicianIDs {
		if id == techID {
			return true
		}
	}
	return false
}

// Validate checks the invariants a job must satisfy before it is stored.
func (j *Job) Validate() error {
	if j.ClientID == "" {
		return fmt.Errorf("job %s: missing client id", j.ID)
	}
	if j.EndAt.Before(j.StartAt) {
		return fmt.Errorf("job %s: end %s before start %s", j.ID, j.EndAt, j.StartAt)
	}
	return nil
}

// Quote is a priced offer awaiting client acceptance.
type Quote struct {
	ID            string      `json:"id" yaml:"id"`
	ClientID      string      `json:"client_id" yaml:"client_id"`
	PropertyID    string      `json:"property_id,omitempty" yaml:"property_id,omitempty"`
	LineItems     []LineItem  `json:"line_items,omitempty" yaml:"line_items,omitempty"`
	SubtotalCents int64       `json:"subtotal_cents" yaml:"subtotal_cents"`
	TaxCents      int64       `json:"tax_cents" yaml:"tax_cents"`
	TotalCents    int64       `json:"total_cents" yaml:"total_cents"`
	Status        QuoteStatus `json:"status" yaml:"status"`
	IssuedAt      time.Time   `json:"issued_at" yaml:"issued_at"`
	ExpiresAt     time.Time   `json:"expires_at" yaml:"expires_at"`
}

// Payment is a recorded payment against an invoice.
type Payment struct {
	AmountCents int64     `json:"amount_cents" yaml:"amount_cents"`
	ReceivedAt  time.Time `json:"received_at" yaml:"received_at"`
	Method      string    `json:"method,omitempty" yaml:"method,omitempty"`
}

// Invoice is a bill issued to a client.
type Invoice struct {
	ID              string        `json:"id" yaml:"id"`
	ClientID        string        `json:"client_id" yaml:"client_id"`
	LineItems       []LineItem    `json:"line_items,omitempty" yaml:"line_items,omitempty"`
	SubtotalCents   int64         `json:"subtotal_cents" yaml:"subtotal_cents"`
	TaxCents        int64         `json:"tax_cents" yaml:"tax_cents"`
	TotalCents      int64         `json:"total_cents" yaml:"total_cents"`
	BalanceDueCents int64         `json:"balance_due_cents" yaml:"balance_due_cents"`
	Status          InvoiceStatus `json:"status" yaml:"status"`
	IssuedAt        time.Time     `json:"issued_at" yaml:"issued_at"`
	DueAt           time.Time     `json:"due_at" yaml:"due_at"`
	Payments        []Payment     `json:"payments,omitempty" yaml:"payments,omitempty"`
}

// Technician is a field worker. Assigned jobs are derived from
// Job.TechnicianIDs rather than stored here.
type Technician struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Role        string `json:"role,omitempty" yaml:"role,omitempty"`
}

// InventoryProduct identifies a stockable product. On-hand stock is the sum
// of InventoryRecord quantities across locations.
type InventoryProduct struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	SKU      string `json:"sku" yaml:"sku"`
	Unit     string `json:"unit,omitempty" yaml:"unit,omitempty"`
	MinStock int    `json:"min_stock" yaml:"min_stock"`
}

// InventoryRecord is a per-location quantity for a product.
type InventoryRecord struct {
	ProductID string `json:"product_id" yaml:"product_id"`
	Location  string `json:"location" yaml:"location"`
	Quantity  int    `json:"quantity" yaml:"quantity"`
}

// Snapshot is the read-only view of the business data model the assistant
// works against. Slice order is the host's iteration order; lookups take the
// first match in that order.
type Snapshot struct {
	Clients     []*Client
	Jobs        []*Job
	Quotes      []*Quote
	Invoices    []*Invoice
	Technicians []*Technician
	Products    []*InventoryProduct
	Stock       []*InventoryRecord
}

// ClientByID returns the client with the given id, or nil.
func (s *Snapshot) ClientByID(id string) *Client {
	for _, c := range s.Clients {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// TechnicianByID returns the technician with the given id, or nil.
func (s *Snapshot) TechnicianByID(id string) *Technician {
	for _, t := range s.Technicians {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// PropertyOf returns the property a job is booked at, or nil.
func (s *Snapshot) PropertyOf(j *Job) *Property {
	c := s.ClientByID(j.ClientID)
	if c == nil {
		return nil
	}
	for i := range c.Properties {
		if c.Properties[i].ID == j.PropertyID {
			return &c.Properties[i]
		}
	}
	if len(c.Properties) > 0 {
		return &c.Properties[0]
	}
	return nil
}

// LatestJob returns the job with the highest Seq, or nil when empty.
func (s *Snapshot) LatestJob() *Job {
	var latest *Job
	for _, j := range s.Jobs {
		if latest == nil || j.Seq > latest.Seq {
			latest = j
		}
	}
	return latest
}

// OnHand sums the stock records for a product across all locations. The
// second return is the number of locations holding any record for it.
func (s *Snapshot) OnHand(productID string) (int, int) {
	total, locations := 0, 0
	for _, r := range s.Stock {
		if r.ProductID == productID {
			total += r.Quantity
			locations++
		}
	}
	return total, locations
}
