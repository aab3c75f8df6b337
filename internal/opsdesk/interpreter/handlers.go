package interpreter

// Read-only intent handlers. Each composes entity extractors and domain
// lookups against the snapshot and returns an ordered list of response
// lines. None of them touch the mutation ports.

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/opsdeskhq/opsdesk/internal/opsdesk/domain"
)

// Fixed link targets the host dashboard resolves. Opaque to the interpreter.
const (
	scheduleLink  = "[Open schedule](/schedule)"
	quotesLink    = "[Open quotes](/quotes)"
	invoicesLink  = "[Open invoices](/invoices)"
	reorderLink   = "[Reorder](/inventory/reorder)"
	revenueWindow = 7 * 24 * time.Hour
)

func jobLink(j *domain.Job) string {
	return fmt.Sprintf("[%s](/jobs/%s)", j.Title, j.ID)
}

func clientLink(c *domain.Client) string {
	return fmt.Sprintf("[%s](/clients/%s)", c.FullName(), c.ID)
}

// notFound is the single apologetic line used for every unresolved lookup.
func notFound(kind, query string) string {
	return fmt.Sprintf("❓ Sorry, I couldn't find a %s matching **%q**.", kind, query)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func clockOf(t time.Time) string { return t.Format("3:04 PM") }
func dayOf(t time.Time) string   { return t.Format("Monday, Jan 2") }
func shortDay(t time.Time) string {
	return t.Format("Jan 2")
}

// handleRevenue reports projected revenue: the sum of line-item totals of
// non-cancelled jobs starting within the next seven days.
func (it *Interpreter) handleRevenue(ctx context.Context, req *request) ([]string, bool, error) {
	var (
		count int
		total int64
		top   *domain.Job
	)
	until := req.now.Add(revenueWindow)
	for _, j := range req.snap.Jobs {
		if j.Status == domain.JobCancelled {
			continue
		}
		if j.StartAt.Before(req.now) || !j.StartAt.Before(until) {
			continue
		}
		count++
		total += j.TotalCents()
		if top == nil || j.TotalCents() > top.TotalCents() {
			top = j
		}
	}

	if count == 0 {
		return []string{
			"**Revenue projection — next 7 days**",
			"No jobs scheduled in the next 7 days.",
			scheduleLink,
		}, false, nil
	}

	lines := []string{
		"**Revenue projection — next 7 days**",
		fmt.Sprintf("💰 **%s** across **%d** jobs", domain.Money(total), count),
		fmt.Sprintf("Top job: %s — %s", jobLink(top), domain.Money(top.TotalCents())),
		scheduleLink,
	}
	return lines, false, nil
}

var availabilityNameRe = regexp.MustCompile(`\b(?:is|if)\s+(.+?)\s+(?:free|available)\b`)

// handleAvailability answers "is {name} free/available (on {date})?".
func (it *Interpreter) handleAvailability(ctx context.Context, req *request) ([]string, bool, error) {
	query := ""
	if m := availabilityNameRe.FindStringSubmatch(req.lower); m != nil {
		query = strings.TrimSuffix(strings.TrimSpace(m[1]), " is")
		query = strings.TrimSuffix(query, " currently")
	}
	tech := FindTechnician(req.snap, query)
	if tech == nil {
		return []string{notFound("technician", query)}, false, nil
	}

	// Day resolution: "tomorrow" beats an explicit date phrase beats today.
	day := req.now
	if strings.Contains(req.lower, "tomorrow") {
		day = req.now.AddDate(0, 0, 1)
	} else if d, _, ok := ExtractDate(req.raw, req.now); ok {
		day = d
	}

	var conflicts []*domain.Job
	for _, j := range req.snap.Jobs {
		if j.Status == domain.JobCancelled || !j.Assigned(tech.ID) {
			continue
		}
		if sameDay(j.StartAt, day) {
			conflicts = append(conflicts, j)
		}
	}

	if len(conflicts) == 0 {
		return []string{
			fmt.Sprintf("✅ **%s** is free on %s.", tech.DisplayName, dayOf(day)),
			scheduleLink,
		}, false, nil
	}

	lines := []string{fmt.Sprintf("**%s** has %d job(s) on %s:", tech.DisplayName, len(conflicts), dayOf(day))}
	for _, j := range conflicts {
		lines = append(lines, fmt.Sprintf("• %s – %s — %s", clockOf(j.StartAt), clockOf(j.EndAt), jobLink(j)))
	}
	return append(lines, scheduleLink), false, nil
}

// handleCancel cancels the client's first scheduled or in-progress job.
// Running it again for the same client is a no-op with an explanatory reply.
func (it *Interpreter) handleCancel(ctx context.Context, req *request) ([]string, bool, error) {
	query := clientQuery(req.raw)
	client := FindClient(req.snap, query)
	if client == nil {
		return []string{notFound("client", query)}, false, nil
	}

	var target *domain.Job
	for _, j := range req.snap.Jobs {
		if j.ClientID != client.ID {
			continue
		}
		if j.Status == domain.JobScheduled || j.Status == domain.JobInProgress {
			target = j
			break
		}
	}
	if target == nil {
		return []string{fmt.Sprintf("❓ **%s** doesn't have an active job to cancel.", client.FullName())}, false, nil
	}

	if err := it.ports.CancelJob(ctx, target.ID, cancelReason); err != nil {
		return nil, false, fmt.Errorf("cancel job %s: %w", target.ID, err)
	}
	lines := []string{
		fmt.Sprintf("🚫 Cancelled %s for **%s**.", jobLink(target), client.FullName()),
		fmt.Sprintf("It was scheduled for %s at %s.", dayOf(target.StartAt), clockOf(target.StartAt)),
	}
	return lines, true, nil
}

// cancelReason is recorded verbatim on every assistant-initiated cancellation.
const cancelReason = "Cancelled via AI Assistant"

// clientQuery extracts the client reference from text: a proper name when
// one is present, otherwise whatever follows the last "for".
func clientQuery(raw string) string {
	if name, _, ok := ExtractName(raw); ok {
		return name
	}
	if idx := strings.LastIndex(strings.ToLower(raw), " for "); idx >= 0 {
		return strings.Trim(strings.TrimSpace(raw[idx+5:]), "?.!")
	}
	return strings.Trim(strings.TrimSpace(raw), "?.!")
}

// handleToday lists the jobs on today's calendar date, earliest first.
func (it *Interpreter) handleToday(ctx context.Context, req *request) ([]string, bool, error) {
	var jobs []*domain.Job
	for _, j := range req.snap.Jobs {
		if j.Status != domain.JobCancelled && sameDay(j.StartAt, req.now) {
			jobs = append(jobs, j)
		}
	}
	if len(jobs) == 0 {
		return []string{
			fmt.Sprintf("No jobs on today's schedule (%s).", dayOf(req.now)),
			scheduleLink,
		}, false, nil
	}
	sort.SliceStable(jobs, func(i, k int) bool { return jobs[i].StartAt.Before(jobs[k].StartAt) })

	lines := []string{fmt.Sprintf("**Today's schedule — %d job(s)**", len(jobs))}
	for _, j := range jobs {
		who := "Unassigned"
		if len(j.TechnicianIDs) > 0 {
			if tech := req.snap.TechnicianByID(j.TechnicianIDs[0]); tech != nil {
				who = tech.DisplayName
			}
		}
		clientName := "Unknown client"
		if c := req.snap.ClientByID(j.ClientID); c != nil {
			clientName = c.FullName()
		}
		lines = append(lines, fmt.Sprintf("• %s — %s for **%s** (%s)", clockOf(j.StartAt), jobLink(j), clientName, who))
	}
	return append(lines, scheduleLink), false, nil
}

// handleHistory reports a client's completed jobs and lifetime value.
func (it *Interpreter) handleHistory(ctx context.Context, req *request) ([]string, bool, error) {
	query := clientQuery(req.raw)
	client := FindClient(req.snap, query)
	if client == nil {
		return []string{notFound("client", query)}, false, nil
	}

	var completed []*domain.Job
	var lifetime int64
	for _, j := range req.snap.Jobs {
		if j.ClientID == client.ID && j.Status == domain.JobCompleted {
			completed = append(completed, j)
			lifetime += j.TotalCents()
		}
	}
	if len(completed) == 0 {
		return []string{
			fmt.Sprintf("**%s** has no completed jobs yet. %s", client.FullName(), clientLink(client)),
		}, false, nil
	}

	// Three most recent by end date.
	sort.SliceStable(completed, func(i, k int) bool { return completed[i].EndAt.After(completed[k].EndAt) })
	recent := completed
	if len(recent) > 3 {
		recent = recent[:3]
	}

	lines := []string{
		fmt.Sprintf("**Client history — %s** %s", client.FullName(), clientLink(client)),
		fmt.Sprintf("Lifetime value: **%s** across **%d** completed job(s)", domain.Money(lifetime), len(completed)),
	}
	for _, j := range recent {
		lines = append(lines, fmt.Sprintf("• %s — %s — %s", shortDay(j.EndAt), j.Title, domain.Money(j.TotalCents())))
	}
	return lines, false, nil
}

var inventoryQueryRe = regexp.MustCompile(`\b(?:for|of)\s+([^?.!]+)`)

// inventoryFiller is stripped from the input when no "for/of" cue names the
// product directly.
var inventoryFiller = map[string]bool{
	"do": true, "we": true, "have": true, "check": true, "stock": true,
	"inventory": true, "in": true, "the": true, "any": true, "how": true,
	"many": true, "much": true, "is": true, "are": true, "left": true,
	"on": true, "hand": true, "what's": true, "whats": true, "our": true,
}

// handleInventory reports on-hand stock for a product and warns when it is
// at or below the minimum-stock threshold.
func (it *Interpreter) handleInventory(ctx context.Context, req *request) ([]string, bool, error) {
	query := ""
	if m := inventoryQueryRe.FindStringSubmatch(req.lower); m != nil {
		query = strings.TrimSpace(m[1])
	} else {
		var kept []string
		for _, w := range strings.Fields(strings.Trim(req.lower, "?.!")) {
			if !inventoryFiller[w] {
				kept = append(kept, w)
			}
		}
		query = strings.Join(kept, " ")
	}

	product := FindProduct(req.snap, query)
	if product == nil {
		return []string{notFound("product", query)}, false, nil
	}

	total, locations := req.snap.OnHand(product.ID)
	unit := product.Unit
	if unit == "" {
		unit = "unit(s)"
	}
	lines := []string{
		fmt.Sprintf("**%s** (SKU %s): **%d** %s on hand across %d location(s)", product.Name, product.SKU, total, unit, locations),
	}
	if total <= product.MinStock {
		lines = append(lines, fmt.Sprintf("⚠️ At or below minimum stock (%d ≤ %d). %s", total, product.MinStock, reorderLink))
	}
	return lines, false, nil
}

var locateNameRe = regexp.MustCompile(`\b(?:where is|locate)\s+([a-z' ]+)`)

// handleLocate reports where a technician currently is: the client and
// property address of their in-progress job, or idle.
func (it *Interpreter) handleLocate(ctx context.Context, req *request) ([]string, bool, error) {
	query := ""
	if m := locateNameRe.FindStringSubmatch(req.lower); m != nil {
		query = strings.TrimSpace(m[1])
	}
	tech := FindTechnician(req.snap, query)
	if tech == nil {
		return []string{notFound("technician", query)}, false, nil
	}

	for _, j := range req.snap.Jobs {
		if j.Status != domain.JobInProgress || !j.Assigned(tech.ID) {
			continue
		}
		clientName := "Unknown client"
		if c := req.snap.ClientByID(j.ClientID); c != nil {
			clientName = c.FullName()
		}
		where := ""
		if p := req.snap.PropertyOf(j); p != nil {
			where = " — " + p.Address.String()
		}
		return []string{
			fmt.Sprintf("📍 **%s** is at %s for **%s**%s", tech.DisplayName, jobLink(j), clientName, where),
		}, false, nil
	}

	return []string{fmt.Sprintf("**%s** has no job in progress right now.", tech.DisplayName)}, false, nil
}

// handleOverdue summarizes overdue invoices: total balance due and up to
// three oldest by due date.
func (it *Interpreter) handleOverdue(ctx context.Context, req *request) ([]string, bool, error) {
	var overdue []*domain.Invoice
	var balance int64
	for _, inv := range req.snap.Invoices {
		if inv.Status == domain.InvoiceOverdue {
			overdue = append(overdue, inv)
			balance += inv.BalanceDueCents
		}
	}
	if len(overdue) == 0 {
		return []string{"✅ No overdue invoices.", invoicesLink}, false, nil
	}

	sort.SliceStable(overdue, func(i, k int) bool { return overdue[i].DueAt.Before(overdue[k].DueAt) })
	oldest := overdue
	if len(oldest) > 3 {
		oldest = oldest[:3]
	}

	lines := []string{
		fmt.Sprintf("**Overdue invoices — %d** totalling **%s**", len(overdue), domain.Money(balance)),
	}
	for _, inv := range oldest {
		clientName := "Unknown client"
		if c := req.snap.ClientByID(inv.ClientID); c != nil {
			clientName = c.FullName()
		}
		lines = append(lines, fmt.Sprintf("• %s — %s (due %s)", clientName, domain.Money(inv.BalanceDueCents), shortDay(inv.DueAt)))
	}
	return append(lines, invoicesLink), false, nil
}
