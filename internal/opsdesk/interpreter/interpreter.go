// Package interpreter implements the natural-language command interpreter
// embedded in OpsDesk's internal messaging feature.
//
// The interpreter is deterministic and rule-based: an ordered chain of
// (trigger pattern, handler) pairs is evaluated top to bottom against the
// lower-cased input, and the first pattern that matches wins. When no pattern
// matches, the combined client/job creation handler is attempted, and when
// that also produces nothing a static capability menu is returned. No LLM is
// involved and no conversation state is carried between messages.
package interpreter

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/opsdeskhq/opsdesk/internal/opsdesk/domain"
)

// Source supplies the current read-only snapshot of the business data model.
type Source interface {
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
}

// Ports is the mutation surface the host exposes to the assistant. The
// interpreter trusts each call to update the snapshot; it holds no entity
// state of its own between invocations.
type Ports interface {
	CreateClient(ctx context.Context, c *domain.Client) error
	CreateJob(ctx context.Context, j *domain.Job) error
	CancelJob(ctx context.Context, jobID, reason string) error
	AssignTechnician(ctx context.Context, jobID, technicianID string) error
	CreateQuote(ctx context.Context, q *domain.Quote) error
	CreateInvoice(ctx context.Context, inv *domain.Invoice) error
}

// Reply is the interpreter's answer to one input message: an ordered list of
// response lines, possibly containing **bold** and [label](target) markup.
type Reply struct {
	// Lines are rendered top to bottom, joined by line breaks.
	Lines []string
	// Intent names the handler that produced the reply ("revenue",
	// "create", "help", ...). Used for logging and audit only.
	Intent string
	// Mutated reports whether any Ports call was made for this input.
	Mutated bool
}

// Interpreter classifies free-text operator input into business intents and
// executes them against the domain snapshot. Safe for concurrent use: all
// state lives in the snapshot and the host's mutation layer.
type Interpreter struct {
	source Source
	ports  Ports
	clock  func() time.Time
	log    *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithClock overrides the time source. Tests pin "now" with this.
func WithClock(clock func() time.Time) Option {
	return func(it *Interpreter) { it.clock = clock }
}

// WithLogger overrides the default slog logger.
func WithLogger(log *slog.Logger) Option {
	return func(it *Interpreter) { it.log = log }
}

// New creates an Interpreter over the given snapshot source and mutation
// ports.
func New(source Source, ports Ports, opts ...Option) *Interpreter {
	it := &Interpreter{
		source: source,
		ports:  ports,
		clock:  time.Now,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// request carries the per-invocation context every handler receives.
type request struct {
	raw   string // original operator text, verbatim
	lower string // lower-cased text the trigger patterns ran against
	snap  *domain.Snapshot
	now   time.Time
}

// route is one entry in the ordered dispatch chain.
type route struct {
	intent  string
	trigger *regexp.Regexp
	handle  func(*Interpreter, context.Context, *request) ([]string, bool, error)
}

// routes is the fixed-priority dispatch chain. Order is a design decision:
// every specific intent is evaluated before the catch-all creation handler,
// and the first matching trigger runs exclusively.
var routes = []route{
	{"revenue", regexp.MustCompile(`(projected|weekly|this week'?s?)[^.]*\brevenue\b|\brevenue\b[^.]*this week`), (*Interpreter).handleRevenue},
	{"availability", regexp.MustCompile(`\b(?:is|check if)\b.*\b(?:free|available)\b`), (*Interpreter).handleAvailability},
	{"cancel", regexp.MustCompile(`\bcancel\b.*\b(?:job|appointment)\b`), (*Interpreter).handleCancel},
	{"schedule", regexp.MustCompile(`(?:schedule|jobs|appointments)\b[^.]*\btoday\b|\btoday'?s?\b[^.]*(?:schedule|jobs|appointments)`), (*Interpreter).handleToday},
	{"history", regexp.MustCompile(`\bhistory\b|\bpast jobs\b`), (*Interpreter).handleHistory},
	{"inventory", regexp.MustCompile(`\b(?:check|stock|inventory)\b`), (*Interpreter).handleInventory},
	{"quote", regexp.MustCompile(`\b(?:draft|create)\b[^.]*\bquote\b|\bquote for\b`), (*Interpreter).handleQuote},
	{"invoice", regexp.MustCompile(`\b(?:send|create)\b[^.]*\binvoice\b`), (*Interpreter).handleInvoice},
	{"locate", regexp.MustCompile(`\bwhere is\b|\blocate\b`), (*Interpreter).handleLocate},
	{"overdue", regexp.MustCompile(`\boverdue\b|\bunpaid\b`), (*Interpreter).handleOverdue},
}

// helpLines is the static capability menu returned when nothing matched.
// Fixed wording and order; callers compare against it verbatim.
var helpLines = []string{
	"🤖 Here's what I can help with:",
	`• **Schedule** — "What's on the schedule today?", "Is Marcus free tomorrow?", "Where is Maria?"`,
	`• **Clients & jobs** — "Create a new job for John Doe starts June 5th at 2:00 PM", "Cancel the job for John Doe"`,
	`• **Billing** — "Draft a quote for Jane Smith for $500", "Send an invoice for John Doe", "Any overdue invoices?"`,
	`• **Inventory & revenue** — "Check stock for brake pads", "What's the projected revenue this week?"`,
}

// HelpLines returns a copy of the capability menu.
func HelpLines() []string {
	out := make([]string, len(helpLines))
	copy(out, helpLines)
	return out
}

// Respond processes one operator message and produces exactly one reply.
// Extraction and lookup failures never surface as errors; the returned error
// is non-nil only when the snapshot source or a mutation port fails. Any
// mutation calls complete before Respond returns.
func (it *Interpreter) Respond(ctx context.Context, text string) (*Reply, error) {
	snap, err := it.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	req := &request{
		raw:   text,
		lower: lowerTrim(text),
		snap:  snap,
		now:   it.clock(),
	}

	for _, r := range routes {
		if !r.trigger.MatchString(req.lower) {
			continue
		}
		lines, mutated, err := r.handle(it, ctx, req)
		if err != nil {
			return nil, err
		}
		it.log.Debug("intent matched", "intent", r.intent, "mutated", mutated)
		// First match wins; no later pattern is attempted.
		return &Reply{Lines: lines, Intent: r.intent, Mutated: mutated}, nil
	}

	// Catch-all: the combined client/job creation and assignment handler. It
	// is internally gated by its own sub-patterns and may produce nothing.
	lines, mutated, err := it.handleCreate(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(lines) > 0 {
		it.log.Debug("intent matched", "intent", "create", "mutated", mutated)
		return &Reply{Lines: lines, Intent: "create", Mutated: mutated}, nil
	}

	return &Reply{Lines: HelpLines(), Intent: "help"}, nil
}
