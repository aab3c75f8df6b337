package interpreter

// The combined client/job creation and assignment handler: the catch-all
// that runs when no specific trigger matched. It is internally gated by its
// own sub-patterns (client-creation cues, job-creation cues, assignment
// cues) and produces nothing at all when none of them fire, which makes the
// dispatcher fall through to the capability menu.

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/opsdeskhq/opsdesk/internal/opsdesk/domain"
)

const (
	// defaultStartHour is the start time of a created job when the text
	// names no clock time: tomorrow at 09:00 local.
	defaultStartHour = 9
	// jobPlaceholderCents is the fixed placeholder price on the single line
	// item of every assistant-created job.
	jobPlaceholderCents int64 = 15000

	// Fallbacks for synthesized clients when the text carries no value.
	fallbackPhone  = "555-0100"
	fallbackStreet = "123 Main St"
)

var (
	newClientCueRe = regexp.MustCompile(`create\s+(?:a\s+)?new\s+client|add\s+(?:a\s+)?(?:new\s+)?client`)
	newJobCueRe    = regexp.MustCompile(`create\s+(?:a\s+)?(?:new\s+)?job|add\s+(?:a\s+)?job`)

	explicitTitleRe = regexp.MustCompile(`(?i)\b(?:job|service) is\s+([^,.!?]+)`)
	verbObjectRe    = regexp.MustCompile(`(?i)\b(cleaning|washing|detailing|repairing|fixing|replacing|installing|check)\s+([^,.!?]+)`)

	assignCueRe = regexp.MustCompile(`\b(?:assign|give|schedule)\b`)
)

// possessivePronouns are stripped from the front of a verb+object title
// ("cleaning his car" → "Cleaning car").
var possessivePronouns = map[string]bool{
	"my": true, "his": true, "her": true, "their": true,
	"our": true, "your": true, "its": true,
}

// handleCreate implements the combined creation algorithm: optional client
// synthesis, optional job creation, optional technician assignment. Empty
// output means nothing in the flow matched.
func (it *Interpreter) handleCreate(ctx context.Context, req *request) ([]string, bool, error) {
	var lines []string
	mutated := false

	name, _, hasName := ExtractName(req.raw)

	clientCue := newClientCueRe.MatchString(req.lower)
	newJobCue := newJobCueRe.MatchString(req.lower)
	jobCue := newJobCue || strings.Contains(req.lower, "schedule") || strings.Contains(req.lower, "starts")

	var client *domain.Client
	if hasName {
		client = FindClient(req.snap, name)
	}

	// Create a new client when explicitly asked, or when a new job is being
	// created for a name nothing in the snapshot matches.
	if hasName && (clientCue || (newJobCue && client == nil)) {
		created, err := it.createClient(ctx, req, name)
		if err != nil {
			return nil, false, err
		}
		client = created
		mutated = true
		lines = append(lines, fmt.Sprintf("✅ Created new client %s", clientLink(client)))
	} else if hasName && client == nil && jobCue {
		return []string{notFound("client", name)}, false, nil
	}

	var createdJob *domain.Job
	if jobCue && client != nil {
		job, err := it.createJob(ctx, req, client)
		if err != nil {
			return nil, false, err
		}
		createdJob = job
		mutated = true
		lines = append(lines,
			fmt.Sprintf("🗓️ Created %s for **%s**", jobLink(job), client.FullName()),
			fmt.Sprintf("Scheduled %s, %s – %s", dayOf(job.StartAt), clockOf(job.StartAt), clockOf(job.EndAt)),
		)
	}

	assignLines, assignMutated, err := it.assignFromText(ctx, req, createdJob)
	if err != nil {
		return nil, false, err
	}
	lines = append(lines, assignLines...)
	mutated = mutated || assignMutated

	return lines, mutated, nil
}

// createClient synthesizes a Client from extracted contact details, mirrors
// the billing address into its first property, and tags it "New".
func (it *Interpreter) createClient(ctx context.Context, req *request, name string) (*domain.Client, error) {
	first, last, _ := strings.Cut(name, " ")

	phone := fallbackPhone
	if p, _, ok := ExtractPhone(req.raw); ok {
		phone = p
	}
	email := strings.ToLower(first) + "." + strings.ToLower(strings.ReplaceAll(last, " ", "")) + "@example.com"
	if e, _, ok := ExtractEmail(req.raw); ok {
		email = e
	}
	addr := domain.Address{Street: fallbackStreet, City: DefaultCity}
	if a, _, ok := ExtractAddress(req.raw); ok {
		addr = a
	}

	c := &domain.Client{
		ID:             uuid.NewString(),
		FirstName:      first,
		LastName:       last,
		Email:          email,
		Phone:          phone,
		BillingAddress: addr,
		Properties: []domain.Property{{
			ID:      uuid.NewString(),
			Address: addr,
		}},
		Tags:      []string{"New"},
		CreatedAt: req.now,
	}
	if err := it.ports.CreateClient(ctx, c); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

// createJob builds a scheduled job from the extracted date, time, duration,
// and title, with the documented defaults where extraction found nothing.
func (it *Interpreter) createJob(ctx context.Context, req *request, client *domain.Client) (*domain.Job, error) {
	// Default start: tomorrow at 09:00 local, overridden piecewise by an
	// extracted date and an extracted clock time.
	tomorrow := req.now.AddDate(0, 0, 1)
	day := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, req.now.Location())
	if d, _, ok := ExtractDate(req.raw, req.now); ok {
		day = d
	}
	hour, minute := defaultStartHour, 0
	if h, m, _, ok := ExtractClockTime(req.raw); ok {
		hour, minute = h, m
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())

	minutes := DefaultDurationMinutes
	if d, _, ok := ExtractDuration(req.raw); ok {
		minutes = d
	}
	end := start.Add(time.Duration(minutes) * time.Minute)

	description := fmt.Sprintf("Created via AI Assistant from: %q", req.raw)
	if v, _, ok := ExtractVehicle(req.raw); ok {
		description += fmt.Sprintf("\nVehicle: %s %s %s", v.Year, v.Make, v.Model)
	}

	propertyID := ""
	if len(client.Properties) > 0 {
		propertyID = client.Properties[0].ID
	}

	job := &domain.Job{
		ID:          uuid.NewString(),
		ClientID:    client.ID,
		PropertyID:  propertyID,
		Title:       jobTitle(req.raw),
		Description: description,
		StartAt:     start,
		EndAt:       end,
		Status:      domain.JobScheduled,
		Priority:    "normal",
		LineItems: []domain.LineItem{{
			Description:    "Service visit",
			Quantity:       1,
			UnitPriceCents: jobPlaceholderCents,
			TotalCents:     jobPlaceholderCents,
		}},
		CreatedAt: req.now,
	}
	if err := it.ports.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

// jobTitle derives a job title by priority: an explicit "job/service is X"
// phrase, then a verb+object phrase with leading possessive pronouns
// stripped, then the generic default. Trailing punctuation is removed and
// the first letter capitalized.
func jobTitle(raw string) string {
	title := "Service Visit"
	if m := explicitTitleRe.FindStringSubmatch(raw); m != nil {
		title = strings.TrimSpace(m[1])
	} else if m := verbObjectRe.FindStringSubmatch(raw); m != nil {
		verb := m[1]
		object := strings.Fields(strings.TrimSpace(m[2]))
		for len(object) > 0 && possessivePronouns[strings.ToLower(object[0])] {
			object = object[1:]
		}
		title = verb
		if len(object) > 0 {
			title = verb + " " + strings.Join(object, " ")
		}
	}
	title = strings.TrimRight(title, " ,.;:!?")
	return capitalize(title)
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

// assignFromText handles the assignment cue: "assign/give/schedule ...
// to/for {technician}". The target is the job created in this same
// invocation when there is one, otherwise the most recently created job
// system-wide (highest Seq).
func (it *Interpreter) assignFromText(ctx context.Context, req *request, createdJob *domain.Job) ([]string, bool, error) {
	loc := assignCueRe.FindStringIndex(req.lower)
	if loc == nil {
		return nil, false, nil
	}
	rest := req.lower[loc[1]:]
	toIdx := strings.Index(rest, " to ")
	forIdx := strings.Index(rest, " for ")
	var tail string
	switch {
	case toIdx < 0 && forIdx < 0:
		return nil, false, nil
	case forIdx < 0 || (toIdx >= 0 && toIdx < forIdx):
		tail = rest[toIdx+len(" to "):]
	default:
		tail = rest[forIdx+len(" for "):]
	}

	techName := strings.Trim(strings.TrimSpace(tail), "?.!,")
	techName = strings.TrimSuffix(techName, "'s")
	if techName == "" {
		return nil, false, nil
	}

	tech := FindTechnician(req.snap, techName)
	if tech == nil {
		return []string{notFound("technician", techName)}, false, nil
	}

	target := createdJob
	if target == nil {
		target = req.snap.LatestJob()
	}
	if target == nil {
		return []string{fmt.Sprintf("🤔 Found **%s** but I'm not sure which job to assign them to.", tech.DisplayName)}, false, nil
	}

	if err := it.ports.AssignTechnician(ctx, target.ID, tech.ID); err != nil {
		return nil, false, fmt.Errorf("assign technician: %w", err)
	}
	return []string{fmt.Sprintf("👷 Assigned **%s** to %s", tech.DisplayName, jobLink(target))}, true, nil
}
