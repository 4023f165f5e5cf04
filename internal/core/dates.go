package core

import (
	"strings"
	"time"
)

// Dates in the ledger are day-granular. A bare date string normalizes to
// midnight UTC of that day; when a due date is used as an inclusive range
// bound it is pushed to end of day instead.

const dateLayout = "2006-01-02"

// ParseDate converts a date-only string to midnight UTC of that day.
// Returns ErrInvalidDate for anything that is not YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t.UTC(), nil
}

// FormatDate renders a timestamp back to its date-only form.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns 23:59:59 UTC of t's day, for inclusive due-date bounds.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
}

// AddMonths shifts t by n calendar months. Overflowing days normalize
// forward (Jan 31 + 1 month = Mar 2/3), never clamp.
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// MonthInterval returns the half-open [start, next) interval of t's
// calendar month. Half-open bounds keep month-boundary rows from being
// counted twice.
func MonthInterval(t time.Time) (start, next time.Time) {
	y, m, _ := t.UTC().Date()
	start = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	next = start.AddDate(0, 1, 0)
	return start, next
}

// InInterval reports whether t falls in the half-open interval [from, to).
func InInterval(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
