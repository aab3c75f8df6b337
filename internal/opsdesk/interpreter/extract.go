package interpreter

// Entity extractors: stateless functions that search raw operator text for
// one kind of value each. Every extractor returns its match plus the matched
// span and never fails — absence is reported through the ok result, and the
// few documented defaults (dates, durations, vehicles) are applied by the
// callers that depend on them.

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/opsdeskhq/opsdesk/internal/opsdesk/domain"
)

// Span marks the byte range of a match within the input text.
type Span struct {
	Start int
	End   int
}

// DefaultCity is the fallback locale used when an extracted address carries
// no comma-separated city part.
const DefaultCity = "Springfield"

// DefaultDurationMinutes is used when the text names no duration.
const DefaultDurationMinutes = 60

var (
	cuedNameRe    = regexp.MustCompile(`\b(?:named|client|for)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`)
	leadingNameRe = regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`)
	phoneRe       = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	emailRe       = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	// The street part must look like "number word..." so that "at 2:00 PM"
	// is never taken for an address.
	addressRe = regexp.MustCompile(`(?i)\b(?:address is|at)\s+(\d+\s+[A-Za-z][^,.!?]*(?:,\s*[^,.!?]+)?)`)
	dateRe        = regexp.MustCompile(`(?i)\b(?:starts|on)\s+(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	clockRe       = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	durationRe    = regexp.MustCompile(`(?i)\b(\d+)\s*(minutes|mins|min|hours|hrs|hr|hour)\b`)
	amountRe      = regexp.MustCompile(`\$\s*(\d+(?:\.\d{1,2})?)|\b(\d+(?:\.\d{1,2})?)\s*(?:dollars|bucks)\b`)
	bareAmountRe  = regexp.MustCompile(`\b(\d+(?:\.\d{1,2})?)\b`)
	vehicleRe     = regexp.MustCompile(`(?i)\b(?:owns|vehicle|car)[:\s]+([^,.!?]+)`)
)

// ExtractName finds a capitalized two-or-more-word person name. A name
// following a cue word ("named", "client", "for") is preferred; a leading
// capitalized sequence at the start of the text is the fallback.
func ExtractName(text string) (string, Span, bool) {
	if m := cuedNameRe.FindStringSubmatchIndex(text); m != nil {
		return text[m[2]:m[3]], Span{m[2], m[3]}, true
	}
	if m := leadingNameRe.FindStringSubmatchIndex(text); m != nil {
		return text[m[2]:m[3]], Span{m[2], m[3]}, true
	}
	return "", Span{}, false
}

// ExtractPhone finds a ten-digit phone number with optional separators.
func ExtractPhone(text string) (string, Span, bool) {
	m := phoneRe.FindStringIndex(text)
	if m == nil {
		return "", Span{}, false
	}
	return text[m[0]:m[1]], Span{m[0], m[1]}, true
}

// ExtractEmail finds a local@domain email address.
func ExtractEmail(text string) (string, Span, bool) {
	m := emailRe.FindStringIndex(text)
	if m == nil {
		return "", Span{}, false
	}
	return text[m[0]:m[1]], Span{m[0], m[1]}, true
}

// ExtractAddress finds a street address after an "address is" or "at" cue.
// The text is split on the first comma into street and city; when there is
// no comma the city defaults to DefaultCity.
func ExtractAddress(text string) (domain.Address, Span, bool) {
	m := addressRe.FindStringSubmatchIndex(text)
	if m == nil {
		return domain.Address{}, Span{}, false
	}
	matched := strings.TrimSpace(text[m[2]:m[3]])
	span := Span{m[2], m[3]}
	street, city, found := strings.Cut(matched, ",")
	addr := domain.Address{Street: strings.TrimSpace(street), City: DefaultCity}
	if found {
		if c := strings.TrimSpace(city); c != "" {
			addr.City = c
		}
	}
	return addr, span, true
}

// ExtractDate finds a "starts"/"on" + month-name + day phrase. Ordinal
// suffixes are stripped and the current year is assumed. Callers keep their
// prior default when ok is false; the extractor itself never guesses.
func ExtractDate(text string, now time.Time) (time.Time, Span, bool) {
	m := dateRe.FindStringSubmatchIndex(text)
	if m == nil {
		return time.Time{}, Span{}, false
	}
	monthTok := strings.ToLower(text[m[2]:m[3]])
	dayTok := text[m[4]:m[5]]
	month, ok := monthsByName[monthTok]
	if !ok {
		return time.Time{}, Span{}, false
	}
	day, err := strconv.Atoi(dayTok)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, Span{}, false
	}
	d := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
	// Reject normalized overflow such as "February 31" → March 2.
	if d.Day() != day || d.Month() != month {
		return time.Time{}, Span{}, false
	}
	return d, Span{m[0], m[1]}, true
}

var monthsByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// ExtractClockTime finds a 12-hour clock time with required AM/PM marker and
// returns it as 24-hour hour and minute. 12 AM maps to 0, 12 PM stays 12,
// and other PM hours gain 12.
func ExtractClockTime(text string) (hour, minute int, span Span, ok bool) {
	m := clockRe.FindStringSubmatchIndex(text)
	if m == nil {
		return 0, 0, Span{}, false
	}
	h, err := strconv.Atoi(text[m[2]:m[3]])
	if err != nil || h < 1 || h > 12 {
		return 0, 0, Span{}, false
	}
	minute = 0
	if m[4] >= 0 {
		minute, err = strconv.Atoi(text[m[4]:m[5]])
		if err != nil || minute > 59 {
			return 0, 0, Span{}, false
		}
	}
	meridiem := strings.ToLower(text[m[6]:m[7]])
	switch {
	case meridiem == "am" && h == 12:
		h = 0
	case meridiem == "pm" && h != 12:
		h += 12
	}
	return h, minute, Span{m[0], m[1]}, true
}

// ExtractDuration finds a number + unit duration and returns it in minutes.
// Hour units are multiplied by 60. Callers fall back to
// DefaultDurationMinutes when ok is false.
func ExtractDuration(text string) (minutes int, span Span, ok bool) {
	m := durationRe.FindStringSubmatchIndex(text)
	if m == nil {
		return 0, Span{}, false
	}
	n, err := strconv.Atoi(text[m[2]:m[3]])
	if err != nil {
		return 0, Span{}, false
	}
	unit := strings.ToLower(text[m[4]:m[5]])
	if strings.HasPrefix(unit, "h") {
		n *= 60
	}
	return n, Span{m[0], m[1]}, true
}

// ExtractAmount finds a currency amount (optional leading "$") and returns
// it as integer cents.
func ExtractAmount(text string) (cents int64, span Span, ok bool) {
	m := amountRe.FindStringSubmatchIndex(text)
	var lo, hi int
	if m != nil {
		// Either the "$N" group or the "N dollars" group matched.
		lo, hi = m[2], m[3]
		if lo < 0 {
			lo, hi = m[4], m[5]
		}
	} else {
		// The "$" is optional: fall back to the first bare number.
		if m = bareAmountRe.FindStringSubmatchIndex(text); m == nil {
			return 0, Span{}, false
		}
		lo, hi = m[2], m[3]
	}
	cents, ok = parseCents(text[lo:hi])
	if !ok {
		return 0, Span{}, false
	}
	return cents, Span{m[0], m[1]}, true
}

func parseCents(s string) (int64, bool) {
	whole, frac, _ := strings.Cut(s, ".")
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, false
	}
	var cents int64
	if frac != "" {
		for len(frac) < 2 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac[:2], 10, 64)
		if err != nil {
			return 0, false
		}
	}
	return dollars*100 + cents, true
}

// ExtractVehicle finds a vehicle phrase after an "owns"/"vehicle"/"car" cue
// and splits it positionally into year, make, and model. Missing positions
// take fixed placeholder tokens.
func ExtractVehicle(text string) (domain.Vehicle, Span, bool) {
	m := vehicleRe.FindStringSubmatchIndex(text)
	if m == nil {
		return domain.Vehicle{}, Span{}, false
	}
	v := domain.Vehicle{Year: "2024", Make: "Unknown", Model: "Vehicle Details"}
	tokens := strings.Fields(strings.TrimSpace(text[m[2]:m[3]]))
	// "owns a 2019 Toyota Camry": the article is noise, not the make.
	for len(tokens) > 0 && (strings.EqualFold(tokens[0], "a") || strings.EqualFold(tokens[0], "an") || strings.EqualFold(tokens[0], "the")) {
		tokens = tokens[1:]
	}
	if len(tokens) > 0 && isYearToken(tokens[0]) {
		v.Year = tokens[0]
		tokens = tokens[1:]
	}
	if len(tokens) > 0 {
		v.Make = tokens[0]
		tokens = tokens[1:]
	}
	if len(tokens) > 0 {
		v.Model = strings.Join(tokens, " ")
	}
	return v, Span{m[2], m[3]}, true
}

func isYearToken(s string) bool {
	if len(s) != 4 {
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 1900 && n <= 2100
}

// lowerTrim normalizes input for trigger-pattern matching.
func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
