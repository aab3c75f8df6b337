package interpreter_test

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/opsdeskhq/opsdesk/internal/opsdesk/domain"
	"github.com/opsdeskhq/opsdesk/internal/opsdesk/interpreter"
)

// fakeHost implements both the snapshot source and the mutation ports over a
// plain in-memory snapshot, so replies can be asserted against the data they
// claim to have changed.
type fakeHost struct {
	snap *domain.Snapshot
}

func (h *fakeHost) Snapshot(_ context.Context) (*domain.Snapshot, error) { return h.snap, nil }

func (h *fakeHost) CreateClient(_ context.Context, c *domain.Client) error {
	h.snap.Clients = append(h.snap.Clients, c)
	return nil
}

func (h *fakeHost) CreateJob(_ context.Context, j *domain.Job) error {
	var max int64
	for _, existing := range h.snap.Jobs {
		if existing.Seq > max {
			max = existing.Seq
		}
	}
	j.Seq = max + 1
	h.snap.Jobs = append(h.snap.Jobs, j)
	return nil
}

func (h *fakeHost) CancelJob(_ context.Context, jobID, reason string) error {
	for _, j := range h.snap.Jobs {
		if j.ID == jobID {
			j.Status = domain.JobCancelled
			j.CancellationReason = reason
			return nil
		}
	}
	return fmt.Errorf("job %s not found", jobID)
}

func (h *fakeHost) AssignTechnician(_ context.Context, jobID, technicianID string) error {
	for _, j := range h.snap.Jobs {
		if j.ID == jobID {
			j.TechnicianIDs = append(j.TechnicianIDs, technicianID)
			return nil
		}
	}
	return fmt.Errorf("job %s not found", jobID)
}

func (h *fakeHost) CreateQuote(_ context.Context, q *domain.Quote) error {
	h.snap.Quotes = append(h.snap.Quotes, q)
	return nil
}

func (h *fakeHost) CreateInvoice(_ context.Context, inv *domain.Invoice) error {
	h.snap.Invoices = append(h.snap.Invoices, inv)
	return nil
}

// testNow is Tuesday, March 10, 2026 at 08:00 UTC.
var testNow = time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)

func day(month time.Month, d, hour, minute int) time.Time {
	return time.Date(2026, month, d, hour, minute, 0, 0, time.UTC)
}

func lineItem(cents int64) []domain.LineItem {
	return []domain.LineItem{{Description: "Service", Quantity: 1, UnitPriceCents: cents, TotalCents: cents}}
}

func newFixture() *fakeHost {
	return &fakeHost{snap: &domain.Snapshot{
		Clients: []*domain.Client{
			{
				ID: "c-jane", FirstName: "Jane", LastName: "Smith",
				BillingAddress: domain.Address{Street: "42 Elm St", City: "Springfield"},
				Properties:     []domain.Property{{ID: "p-jane", Address: domain.Address{Street: "42 Elm St", City: "Springfield"}}},
			},
			{
				ID: "c-john", FirstName: "John", LastName: "Doe",
				BillingAddress: domain.Address{Street: "9 Oak Ave", City: "Springfield"},
				Properties:     []domain.Property{{ID: "p-john", Address: domain.Address{Street: "9 Oak Ave", City: "Springfield"}}},
			},
			{
				ID: "c-sarah", FirstName: "Sarah", LastName: "Johnson",
				BillingAddress: domain.Address{Street: "310 Birch Rd", City: "Springfield"},
				Properties:     []domain.Property{{ID: "p-sarah", Address: domain.Address{Street: "310 Birch Rd", City: "Springfield"}}},
			},
		},
		Technicians: []*domain.Technician{
			{ID: "t-marcus", DisplayName: "Marcus Webb"},
			{ID: "t-david", DisplayName: "David Chen"},
		},
		Jobs: []*domain.Job{
			{
				ID: "job-hist", Seq: 1, ClientID: "c-jane", PropertyID: "p-jane",
				Title: "Gutter Cleaning", Status: domain.JobCompleted,
				StartAt: day(time.March, 2, 9, 0), EndAt: day(time.March, 2, 11, 0),
				LineItems: lineItem(22000),
			},
			{
				ID: "job-jane", Seq: 2, ClientID: "c-jane", PropertyID: "p-jane",
				Title: "HVAC Tune-Up", Status: domain.JobScheduled,
				StartAt: day(time.March, 12, 10, 0), EndAt: day(time.March, 12, 11, 0),
				TechnicianIDs: []string{"t-david"},
				LineItems:     lineItem(18000),
			},
			{
				ID: "job-gone", Seq: 3, ClientID: "c-john", PropertyID: "p-john",
				Title: "Lawn Care", Status: domain.JobCancelled,
				StartAt: day(time.March, 13, 9, 0), EndAt: day(time.March, 13, 10, 0),
				LineItems: lineItem(99900),
			},
			{
				ID: "job-sarah", Seq: 4, ClientID: "c-sarah", PropertyID: "p-sarah",
				Title: "Window Washing", Status: domain.JobInProgress,
				StartAt: day(time.March, 10, 9, 0), EndAt: day(time.March, 10, 11, 30),
				TechnicianIDs: []string{"t-marcus"},
				LineItems:     lineItem(15000),
			},
		},
		Invoices: []*domain.Invoice{
			{
				ID: "inv-1", ClientID: "c-jane", Status: domain.InvoiceOverdue,
				TotalCents: 19440, BalanceDueCents: 19440,
				IssuedAt: day(time.February, 15, 0, 0), DueAt: day(time.March, 1, 0, 0),
			},
			{
				ID: "inv-2", ClientID: "c-john", Status: domain.InvoicePaid,
				TotalCents: 5000, BalanceDueCents: 0,
				IssuedAt: day(time.January, 10, 0, 0), DueAt: day(time.January, 24, 0, 0),
			},
		},
		Products: []*domain.InventoryProduct{
			{ID: "prod-bp", Name: "Brake Pads", SKU: "BP-01", MinStock: 5},
		},
		Stock: []*domain.InventoryRecord{
			{ProductID: "prod-bp", Location: "Van 1", Quantity: 2},
			{ProductID: "prod-bp", Location: "Warehouse", Quantity: 2},
		},
	}}
}

func newInterpreter(t *testing.T, host *fakeHost) *interpreter.Interpreter {
	t.Helper()
	return interpreter.New(host, host, interpreter.WithClock(func() time.Time { return testNow }))
}

func respond(t *testing.T, it *interpreter.Interpreter, input string) *interpreter.Reply {
	t.Helper()
	reply, err := it.Respond(context.Background(), input)
	if err != nil {
		t.Fatalf("Respond(%q): %v", input, err)
	}
	return reply
}

// --- Dispatch ---

func TestRespond_HelpFallback(t *testing.T) {
	it := newInterpreter(t, newFixture())

	reply := respond(t, it, "hello there")
	if reply.Intent != "help" {
		t.Fatalf("intent: got %q, want %q", reply.Intent, "help")
	}
	if reply.Mutated {
		t.Error("help reply must not mutate")
	}
	if !reflect.DeepEqual(reply.Lines, interpreter.HelpLines()) {
		t.Errorf("help menu differs from canonical lines:\n%v", reply.Lines)
	}
	if len(reply.Lines) != 5 {
		t.Errorf("help menu: got %d lines, want 5", len(reply.Lines))
	}
}

func TestRespond_FirstMatchWins(t *testing.T) {
	it := newInterpreter(t, newFixture())

	// Contains both an availability cue ("check if ... free") and the
	// inventory keyword "check"; availability is earlier in the chain.
	reply := respond(t, it, "Check if Marcus is free tomorrow")
	if reply.Intent != "availability" {
		t.Errorf("intent: got %q, want %q", reply.Intent, "availability")
	}
}

// --- Revenue ---

func TestRevenue(t *testing.T) {
	it := newInterpreter(t, newFixture())

	reply := respond(t, it, "What's the projected revenue this week?")
	if reply.Intent != "revenue" {
		t.Fatalf("intent: got %q, want %q", reply.Intent, "revenue")
	}
	// job-jane (180.00) + job-sarah (150.00); the cancelled and past jobs
	// are excluded.
	want := "💰 **$330.00** across **2** jobs"
	if reply.Lines[1] != want {
		t.Errorf("line 1: got %q, want %q", reply.Lines[1], want)
	}
	if !strings.Contains(reply.Lines[2], "[HVAC Tune-Up](/jobs/job-jane)") {
		t.Errorf("top job line: got %q", reply.Lines[2])
	}
	if !strings.Contains(reply.Lines[2], "$180.00") {
		t.Errorf("top job amount: got %q", reply.Lines[2])
	}
}

func TestRevenue_EmptyWindow(t *testing.T) {
	host := newFixture()
	host.snap.Jobs = nil
	it := newInterpreter(t, host)

	reply := respond(t, it, "what's this week's revenue?")
	if reply.Lines[1] != "No jobs scheduled in the next 7 days." {
		t.Errorf("got %q", reply.Lines[1])
	}
}

// --- Availability ---

func TestAvailability_Free(t *testing.T) {
	it := newInterpreter(t, newFixture())

	reply := respond(t, it, "Is Marcus free tomorrow?")
	if reply.Intent != "availability" {
		t.Fatalf("intent: got %q", reply.Intent)
	}
	want := "✅ **Marcus Webb** is free on Wednesday, Mar 11."
	if reply.Lines[0] != want {
		t.Errorf("got %q, want %q", reply.Lines[0], want)
	}
}

func TestAvailability_Conflict(t *testing.T) {
	it := newInterpreter(t, newFixture())

	reply := respond(t, it, "Is Marcus free today?")
	want := "**Marcus Webb** has 1 job(s) on Tuesday, Mar 10:"
	if reply.Lines[0] != want {
		t.Fatalf("got %q, want %q", reply.Lines[0], want)
	}
	if !strings.Contains(reply.Lines[1], "9:00 AM – 11:30 AM") {
		t.Errorf("conflict line: got %q", reply.Lines[1])
	}
	if !strings.Contains(reply.Lines[1], "[Window Washing](/jobs/job-sarah)") {
		t.Errorf("conflict link: got %q", reply.Lines[1])
	}
}

func TestAvailability_UnknownTechnician(t *testing.T) {
	it := newInterpreter(t, newFixture())

	reply := respond(t, it, "Is Bob free tomorrow?")
	if !strings.Contains(reply.Lines[0], "couldn't find a technician") {
		t.Errorf("got %q", reply.Lines[0])
	}
	if reply.Mutated {
		t.Error("lookup miss must not mutate")
	}
}

// --- Cancel ---

func TestCancel_ThenIdempotent(t *testing.T) {
	host := newFixture()
	it := newInterpreter(t, host)

	reply := respond(t, it, "Cancel the job for Jane Smith")
	if reply.Intent != "cancel" {
		t.Fatalf("intent: got %q", reply.Intent)
	}
	if !reply.Mutated {
		t.Error("cancel must report mutation")
	}
	if !strings.Contains(reply.Lines[0], "[HVAC Tune-Up](/jobs/job-jane)") {
		t.Errorf("line 0: got %q", reply.Lines[0])
	}
	want := "It was scheduled for Thursday, Mar 12 at 10:00 AM."
	if reply.Lines[1] != want {
		t.Errorf("line 1: got %q, want %q", reply.Lines[1], want)
	}

	// The snapshot must record the fixed cancellation reason verbatim.
	var cancelled *domain.Job
	for _, j := range host.snap.Jobs {
		if j.ID == "job-jane" {
			cancelled = j
		}
	}
	if cancelled.Status != domain.JobCancelled {
		t.Fatalf("status: got %q", cancelled.Status)
	}
	if cancelled.CancellationReason != "Cancelled via AI Assistant" {
		t.Errorf("reason: got %q", cancelled.CancellationReason)
	}

	// Asking again finds no active job and changes nothing.
	reply = respond(t, it, "Cancel the job for Jane Smith")
	if reply.Mutated {
		t.Error("second cancel must not mutate")
	}
	want = "❓ **Jane Smith** doesn't have an active job to cancel."
	if reply.Lines[0] != want {
		t.Errorf("got %q, want %q", reply.Lines[0], want)
	}
}

func TestCancel_NoActiveJob(t *testing.T) {
	it := newInterpreter(t, newFixture())

	// John's only job is already cancelled.
	reply := respond(t, it, "Cancel the job for John Doe")
	want := "❓ **John Doe** doesn't have an active job to cancel."
	if reply.Lines[0] != want {
		t.Errorf("got %q, want %q", reply.Lines[0], want)
	}
}

// --- Today's schedule ---

func TestTodaySchedule(t *testing.T) {
	it := newInterpreter(t, newFixture())

	reply := respond(t, it, "What's on the schedule today?")
	if reply.Intent != "schedule" {
		t.Fatalf("intent: got %q", reply.Intent)
	}
	if reply.Lines[0] != "**Today's schedule — 1 job(s)**" {
		t.Errorf("line 0: got %q", reply.Lines[0])
	}
	want := "• 9:00 AM — [Window Washing](/jobs/job-sarah) for **Sarah Johnson** (Marcus Webb)"
	if reply.Lines[1] != want {
		t.Errorf("line 1: got %q, want %q", reply.Lines[1], want)
	}
}

func TestTodaySchedule_Empty(t *testing.T) {
	host := newFixture()
	host.snap.Jobs = nil
	it := newInterpreter(t, host)

	reply := respond(t, it, "any appointments today?")
	if !strings.HasPrefix(reply.Lines[0], "No jobs on today's schedule") {
		t.Errorf("got %q", reply.Lines[0])
	}
}

// --- History ---

func TestHistory(t *testing.T) {
	it := newInterpreter(t, newFixture())

	reply := respond(t, it, "Show me the history for Jane Smith")
	if reply.Intent != "history" {
		t.Fatalf("intent: got %q", reply.Intent)
	}
	want := "Lifetime value: **$220.00** across **1** completed job(s)"
	if reply.Lines[1] != want {
		t.Errorf("line 1: got %q, want %q", reply.Lines[1], want)
	}
	if !strings.Contains(reply.Lines[2], "Mar 2 — Gutter Cleaning — $220.00") {
		t.Errorf("line 2: got %q", reply.Lines[2])
	}
}

// --- Inventory ---

func TestInventory_LowStock(t *testing.T) {
	it := newInterpreter(t, newFixture())

	reply := respond(t, it, "Check stock for brake pads")
	if reply.Intent != "inventory" {
		t.Fatalf("intent: got %q", reply.Intent)
	}
	want := "**Brake Pads** (SKU BP-01): **4** unit(s) on hand across 2 location(s)"
	if reply.Lines[0] != want {
		t.Errorf("line 0: got %q, want %q", reply.Lines[0], want)
	}
	if !strings.Contains(reply.Lines[1], "At or below minimum stock (4 ≤ 5)") {
		t.Errorf("line 1: got %q", reply.Lines[1])
	}
	if !strings.Contains(reply.Lines[1], "[Reorder](/inventory/reorder)") {
		t.Errorf("line 1 missing reorder link: got %q", reply.Lines[1])
	}
}

func TestInventory_BySKU(t *testing.T) {
	it := newInterpreter(t, newFixture())

	reply := respond(t, it, "check stock of BP-01")
	if !strings.HasPrefix(reply.Lines[0], "**Brake Pads**") {
		t.Errorf("got %q", reply.Lines[0])
	}
}

func TestInventory_UnknownProduct(t *testing.T) {
	it := newInterpreter(t, newFixture())

	reply := respond(t, it, "check stock for unobtainium")
	if !strings.Contains(reply.Lines[0], "couldn't find a product") {
		t.Errorf("got %q", reply.Lines[0])
	}
}

// --- Quote ---

func TestQuote(t *testing.T) {
	host := newFixture()
	it := newInterpreter(t, host)

	reply := respond(t, it, "Draft a quote for Jane Smith for $500")
	if reply.Intent != "quote" {
		t.Fatalf("intent: got %q", reply.Intent)
	}
	if !reply.Mutated {
		t.Error("quote must report mutation")
	}
	want := "Subtotal **$500.00** + tax **$40.00** = **$540.00**"
	if reply.Lines[1] != want {
		t.Errorf("line 1: got %q, want %q", reply.Lines[1], want)
	}

	if len(host.snap.Quotes) != 1 {
		t.Fatalf("expected 1 stored quote, got %d", len(host.snap.Quotes))
	}
	q := host.snap.Quotes[0]
	if q.SubtotalCents != 50000 || q.TaxCents != 4000 || q.TotalCents != 54000 {
		t.Errorf("amounts: got %d/%d/%d", q.SubtotalCents, q.TaxCents, q.TotalCents)
	}
	if q.Status != domain.QuoteDraft {
		t.Errorf("status: got %q", q.Status)
	}
	if !q.ExpiresAt.Equal(testNow.Add(14 * 24 * time.Hour)) {
		t.Errorf("expiry: got %v", q.ExpiresAt)
	}
	if q.ClientID != "c-jane" {
		t.Errorf("client: got %q", q.ClientID)
	}
}

func TestQuote_DefaultAmount(t *testing.T) {
	host := newFixture()
	it := newInterpreter(t, host)

	respond(t, it, "Draft a quote for Jane Smith")
	if len(host.snap.Quotes) != 1 {
		t.Fatalf("expected 1 stored quote, got %d", len(host.snap.Quotes))
	}
	if got := host.snap.Quotes[0].SubtotalCents; got != 15000 {
		t.Errorf("default subtotal: got %d, want 15000", got)
	}
}

// --- Invoice ---

func TestInvoice(t *testing.T) {
	host := newFixture()
	it := newInterpreter(t, host)

	reply := respond(t, it, "Send an invoice for John Doe")
	if reply.Intent != "invoice" {
		t.Fatalf("intent: got %q", reply.Intent)
	}
	want := "🧾 Sent an invoice to **John Doe**:"
	if reply.Lines[0] != want {
		t.Errorf("line 0: got %q, want %q", reply.Lines[0], want)
	}
	if !strings.Contains(reply.Lines[1], "**$250.00** + **$20.00** tax = **$270.00**") {
		t.Errorf("line 1: got %q", reply.Lines[1])
	}

	if len(host.snap.Invoices) != 3 {
		t.Fatalf("expected 3 invoices, got %d", len(host.snap.Invoices))
	}
	inv := host.snap.Invoices[2]
	if inv.TotalCents != 27000 || inv.BalanceDueCents != 27000 {
		t.Errorf("amounts: got %d/%d", inv.TotalCents, inv.BalanceDueCents)
	}
	if inv.Status != domain.InvoiceSent {
		t.Errorf("status: got %q", inv.Status)
	}
	if !inv.DueAt.Equal(testNow.Add(14 * 24 * time.Hour)) {
		t.Errorf("due: got %v", inv.DueAt)
	}
}

// --- Locate ---

func TestLocate_InProgress(t *testing.T) {
	it := newInterpreter(t, newFixture())

	reply := respond(t, it, "Where is Marcus?")
	if reply.Intent != "locate" {
		t.Fatalf("intent: got %q", reply.Intent)
	}
	want := "📍 **Marcus Webb** is at [Window Washing](/jobs/job-sarah) for **Sarah Johnson** — 310 Birch Rd, Springfield"
	if reply.Lines[0] != want {
		t.Errorf("got %q, want %q", reply.Lines[0], want)
	}
}

func TestLocate_Idle(t *testing.T) {
	it := newInterpreter(t, newFixture())

	reply := respond(t, it, "Where is David?")
	want := "**David Chen** has no job in progress right now."
	if reply.Lines[0] != want {
		t.Errorf("got %q, want %q", reply.Lines[0], want)
	}
}

// --- Overdue ---

func TestOverdue(t *testing.T) {
	it := newInterpreter(t, newFixture())

	reply := respond(t, it, "Any overdue invoices?")
	if reply.Intent != "overdue" {
		t.Fatalf("intent: got %q", reply.Intent)
	}
	want := "**Overdue invoices — 1** totalling **$194.40**"
	if reply.Lines[0] != want {
		t.Errorf("line 0: got %q, want %q", reply.Lines[0], want)
	}
	if !strings.Contains(reply.Lines[1], "Jane Smith — $194.40 (due Mar 1)") {
		t.Errorf("line 1: got %q", reply.Lines[1])
	}
}

func TestOverdue_None(t *testing.T) {
	host := newFixture()
	host.snap.Invoices = nil
	it := newInterpreter(t, host)

	reply := respond(t, it, "anything unpaid?")
	if reply.Lines[0] != "✅ No overdue invoices." {
		t.Errorf("got %q", reply.Lines[0])
	}
}

// --- Creation ---

func TestCreateJob_FullSentence(t *testing.T) {
	host := newFixture()
	it := newInterpreter(t, host)

	reply := respond(t, it, "Create a new job for John Doe starts June 5th at 2:00 PM, cleaning his car, last about 90 minutes")
	if reply.Intent != "create" {
		t.Fatalf("intent: got %q", reply.Intent)
	}
	if !reply.Mutated {
		t.Error("creation must report mutation")
	}
	// John Doe already exists, so no client line precedes the job line.
	if !strings.HasPrefix(reply.Lines[0], "🗓️ Created [Cleaning car](/jobs/") {
		t.Errorf("line 0: got %q", reply.Lines[0])
	}
	want := "Scheduled Friday, Jun 5, 2:00 PM – 3:30 PM"
	if reply.Lines[1] != want {
		t.Errorf("line 1: got %q, want %q", reply.Lines[1], want)
	}

	job := host.snap.Jobs[len(host.snap.Jobs)-1]
	if job.Title != "Cleaning car" {
		t.Errorf("title: got %q", job.Title)
	}
	if job.Status != domain.JobScheduled {
		t.Errorf("status: got %q", job.Status)
	}
	if !job.StartAt.Equal(day(time.June, 5, 14, 0)) {
		t.Errorf("start: got %v", job.StartAt)
	}
	if !job.EndAt.Equal(day(time.June, 5, 15, 30)) {
		t.Errorf("end: got %v", job.EndAt)
	}
	if job.ClientID != "c-john" {
		t.Errorf("client: got %q", job.ClientID)
	}
	if !strings.HasPrefix(job.Description, "Created via AI Assistant from:") {
		t.Errorf("description: got %q", job.Description)
	}
	if job.TotalCents() != 15000 {
		t.Errorf("placeholder total: got %d", job.TotalCents())
	}
}

func TestCreateJob_Defaults(t *testing.T) {
	host := newFixture()
	it := newInterpreter(t, host)

	// No date, time, or duration: tomorrow 9:00 for one hour.
	respond(t, it, "Create a new job for Jane Smith")
	job := host.snap.Jobs[len(host.snap.Jobs)-1]
	if !job.StartAt.Equal(day(time.March, 11, 9, 0)) {
		t.Errorf("start: got %v", job.StartAt)
	}
	if !job.EndAt.Equal(day(time.March, 11, 10, 0)) {
		t.Errorf("end: got %v", job.EndAt)
	}
	if job.Title != "Service Visit" {
		t.Errorf("title: got %q", job.Title)
	}
}

func TestCreateClient_Explicit(t *testing.T) {
	host := newFixture()
	it := newInterpreter(t, host)

	reply := respond(t, it, "Add a new client named Tom Brady, phone 555-123-4567, address is 10 Main St, Springfield")
	if reply.Intent != "create" {
		t.Fatalf("intent: got %q", reply.Intent)
	}
	if !strings.HasPrefix(reply.Lines[0], "✅ Created new client [Tom Brady](/clients/") {
		t.Errorf("line 0: got %q", reply.Lines[0])
	}

	c := host.snap.Clients[len(host.snap.Clients)-1]
	if c.FullName() != "Tom Brady" {
		t.Fatalf("name: got %q", c.FullName())
	}
	if c.Phone != "555-123-4567" {
		t.Errorf("phone: got %q", c.Phone)
	}
	if c.BillingAddress.Street != "10 Main St" || c.BillingAddress.City != "Springfield" {
		t.Errorf("address: got %+v", c.BillingAddress)
	}
	if c.Email != "tom.brady@example.com" {
		t.Errorf("email: got %q", c.Email)
	}
	if len(c.Tags) != 1 || c.Tags[0] != "New" {
		t.Errorf("tags: got %v", c.Tags)
	}
	// The billing address is mirrored into the first property.
	if len(c.Properties) != 1 || c.Properties[0].Address != c.BillingAddress {
		t.Errorf("properties: got %+v", c.Properties)
	}
}

func TestCreateClient_Fallbacks(t *testing.T) {
	host := newFixture()
	it := newInterpreter(t, host)

	respond(t, it, "Add a new client named Amy Pond")
	c := host.snap.Clients[len(host.snap.Clients)-1]
	if c.Phone != "555-0100" {
		t.Errorf("fallback phone: got %q", c.Phone)
	}
	if c.BillingAddress.Street != "123 Main St" || c.BillingAddress.City != "Springfield" {
		t.Errorf("fallback address: got %+v", c.BillingAddress)
	}
}

func TestCreateJob_UnknownNameCreatesClient(t *testing.T) {
	host := newFixture()
	it := newInterpreter(t, host)

	reply := respond(t, it, "Create a new job for Rory Williams starts June 5th at 2:00 PM")
	if !strings.HasPrefix(reply.Lines[0], "✅ Created new client [Rory Williams](/clients/") {
		t.Fatalf("line 0: got %q", reply.Lines[0])
	}
	if !strings.HasPrefix(reply.Lines[1], "🗓️ Created ") {
		t.Errorf("line 1: got %q", reply.Lines[1])
	}

	c := host.snap.Clients[len(host.snap.Clients)-1]
	job := host.snap.Jobs[len(host.snap.Jobs)-1]
	if job.ClientID != c.ID {
		t.Errorf("job client: got %q, want %q", job.ClientID, c.ID)
	}
}

func TestAssign_LatestJob(t *testing.T) {
	host := newFixture()
	it := newInterpreter(t, host)

	reply := respond(t, it, "Assign the new job to Marcus")
	if reply.Intent != "create" {
		t.Fatalf("intent: got %q", reply.Intent)
	}
	if !reply.Mutated {
		t.Error("assignment must report mutation")
	}
	// job-sarah has the highest Seq, so it is "the new job".
	want := "👷 Assigned **Marcus Webb** to [Window Washing](/jobs/job-sarah)"
	if reply.Lines[0] != want {
		t.Errorf("got %q, want %q", reply.Lines[0], want)
	}
}

func TestAssign_UnknownTechnician(t *testing.T) {
	it := newInterpreter(t, newFixture())

	reply := respond(t, it, "Assign the new job to Ziggy")
	if !strings.Contains(reply.Lines[0], "couldn't find a technician") {
		t.Errorf("got %q", reply.Lines[0])
	}
	if reply.Mutated {
		t.Error("lookup miss must not mutate")
	}
}
