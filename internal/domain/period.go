package domain

import (
	"fmt"
	"regexp"
	"time"
)

// Period is a calendar-month billing token in "YYYY-MM" form.
// Tokens compare correctly as plain strings ("2025-01" < "2025-02"),
// which is what the store relies on for range queries.
type Period string

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ParsePeriod validates a raw token and returns it as a Period.
func ParsePeriod(s string) (Period, error) {
	if !periodPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return Period(s), nil
}

// PeriodOf returns the period containing the given instant (UTC).
func PeriodOf(t time.Time) Period {
	return Period(t.UTC().Format("2006-01"))
}

// CurrentPeriod returns the period containing the current instant.
func CurrentPeriod() Period {
	return PeriodOf(time.Now())
}

// Time returns the first day of the period at midnight UTC.
func (p Period) Time() time.Time {
	t, err := time.Parse("2006-01", string(p))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	return PeriodOf(p.Time().AddDate(0, 1, 0))
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	return p < other
}

// PeriodRange returns every period from 'from' to 'to' inclusive,
// ascending. An inverted range yields nil.
func PeriodRange(from, to Period) []Period {
	if to.Before(from) {
		return nil
	}
	var periods []Period
	for p := from; !to.Before(p); p = p.Next() {
		periods = append(periods, p)
	}
	return periods
}
