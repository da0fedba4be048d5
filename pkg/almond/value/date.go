package value

import (
	"regexp"
	"strconv"
	"time"
)

// Unknown is the sentinel for a date field that the annotator could not
// determine (wildcard or unparseable). Partial dates like "every June 21st"
// arrive as ****-06-21.
const Unknown = -1

// Date is a possibly partial calendar date with an optional time component.
type Date struct {
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Day    int     `json:"day"`
	Hour   int     `json:"hour"`
	Minute int     `json:"minute"`
	Second float64 `json:"second"`
}

func (d Date) Kind() Kind { return KindDate }

func (d Date) Equal(other Value) bool {
	o, ok := other.(Date)
	return ok && d == o
}

// PresentRefPolicy selects how the special literal PRESENT_REF parses.
// Observed annotators disagree: one maps it to the current instant, the
// other rejects it. The choice is configuration, not a fixed contract.
type PresentRefPolicy int

const (
	// PresentRefReject treats PRESENT_REF as unparseable.
	PresentRefReject PresentRefPolicy = iota
	// PresentRefNow maps PRESENT_REF to the wall clock.
	PresentRefNow
)

// Loosely ISO 8601: four-digit-or-wildcard year, two-digit-or-wildcard
// month/day, optional T section with fractional seconds, optional Z.
var datePattern = regexp.MustCompile(
	`^-?([0-9X*]{4})?-?([0-9X*]{2})?-?([0-9X*]{2})?(?:T([0-9X*]{2})?:?([0-9X*]{2})?:?([0-9X*]{2}(?:\.[0-9]+)?)?)?Z?$`)

// ParseDate parses a normalized NER date string. Each field is parsed
// independently; wildcard or unparseable date fields become Unknown. The
// bool result is false when the whole string does not match the grammar.
//
// A leading '-' marks BC and negates the year (only when the year itself
// parsed; an unknown year stays Unknown).
func ParseDate(s string, policy PresentRefPolicy) (Date, bool) {
	if s == "PRESENT_REF" {
		if policy == PresentRefNow {
			return DateAt(time.Now()), true
		}
		return Date{}, false
	}

	m := datePattern.FindStringSubmatch(s)
	if m == nil || s == "" {
		return Date{}, false
	}

	d := Date{
		Year:  parseField(m[1]),
		Month: parseField(m[2]),
		Day:   parseField(m[3]),
	}
	if d.Year != Unknown && s[0] == '-' {
		d.Year = -d.Year
	}

	if hasTimePart(s) {
		d.Hour = parseField(m[4])
		d.Minute = parseField(m[5])
		d.Second = parseSecondField(m[6])
	}
	return d, true
}

// DateAt converts a wall-clock instant to a fully specified Date.
func DateAt(t time.Time) Date {
	return Date{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: float64(t.Second()) + float64(t.Nanosecond())/1e9,
	}
}

func hasTimePart(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == 'T' {
			return true
		}
	}
	return false
}

func parseField(s string) int {
	if s == "" {
		return Unknown
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return Unknown
	}
	return v
}

func parseSecondField(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
