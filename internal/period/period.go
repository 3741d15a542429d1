// Package period models the calendar months activity is booked against.
// Stored data may carry several spellings of the same month; everything in
// this package resolves them to one canonical three-letter key.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// canonicalKeys holds the canonical month keys indexed by time.Month.
var canonicalKeys = [...]string{"", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// monthAliases maps lower-cased variant spellings to their month.
// Numeric variants ("9", "09") are handled separately in ResolveMonth.
var monthAliases = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// Period identifies one calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// New returns the period for the given year and month.
func New(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

// FromTime returns the period containing t.
func FromTime(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Key returns the canonical month key ("Jan".."Dec").
func (p Period) Key() string {
	return MonthKey(p.Month)
}

// String renders the period as "2025-Jan".
func (p Period) String() string {
	return fmt.Sprintf("%d-%s", p.Year, p.Key())
}

// Valid reports whether the month lies within January..December.
func (p Period) Valid() bool {
	return p.Month >= time.January && p.Month <= time.December && p.Year > 0
}

// Index returns a monotonically increasing month number usable for ordering
// and distance calculations.
func (p Period) Index() int {
	return p.Year*12 + int(p.Month) - 1
}

// Compare returns -1, 0 or +1 depending on whether p is before, equal to or
// after q.
func (p Period) Compare(q Period) int {
	switch a, b := p.Index(), q.Index(); {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether p is strictly earlier than q.
func (p Period) Before(q Period) bool {
	return p.Compare(q) < 0
}

// AddMonths shifts the period by n months (n may be negative).
func (p Period) AddMonths(n int) Period {
	idx := p.Index() + n
	return Period{Year: idx / 12, Month: time.Month(idx%12 + 1)}
}

// MonthsSince returns the number of calendar months from q to p.
func (p Period) MonthsSince(q Period) int {
	return p.Index() - q.Index()
}

// Start returns midnight UTC on the first day of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// MonthKey returns the canonical key for a month, or an empty string for an
// out-of-range value.
func MonthKey(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return canonicalKeys[m]
}

// ResolveMonth resolves any supported spelling of a month: canonical keys,
// full names, "Sept", and one- or two-digit numbers.
func ResolveMonth(key string) (time.Month, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	if m, ok := monthAliases[k]; ok {
		return m, nil
	}
	if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= 12 {
		return time.Month(n), nil
	}
	return 0, fmt.Errorf("unrecognized month key %q", key)
}

// CanonicalKey resolves a month spelling and returns its canonical key.
func CanonicalKey(key string) (string, error) {
	m, err := ResolveMonth(key)
	if err != nil {
		return "", err
	}
	return MonthKey(m), nil
}

// Parse parses "2025-Jan", "2025-01" or "2025-January".
func Parse(s string) (Period, error) {
	year, month, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	y, err := strconv.Atoi(year)
	if err != nil || y <= 0 {
		return Period{}, fmt.Errorf("invalid period year %q", year)
	}
	m, err := ResolveMonth(month)
	if err != nil {
		return Period{}, err
	}
	return New(y, m), nil
}

// Clock supplies the current time. Business rules that depend on "the
// current month" take a Clock so they can be replayed in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.At
}

// Current returns the period the clock is in.
func Current(c Clock) Period {
	return FromTime(c.Now())
}
