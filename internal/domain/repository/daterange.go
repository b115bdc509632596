package repository

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange is an inclusive [From, To] span of trading dates (UTC midnights).
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange parses "2006-01-02" bounds and validates ordering.
func ParseDateRange(from, to string) (DateRange, error) {
	f, err := time.ParseInLocation(dateLayout, from, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse from date %q: %w", from, err)
	}
	t, err := time.ParseInLocation(dateLayout, to, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse to date %q: %w", to, err)
	}
	if f.After(t) {
		return DateRange{}, fmt.Errorf("from %s after to %s", from, to)
	}
	return DateRange{From: f, To: t}, nil
}

// End returns the exclusive upper bound instant (midnight after To).
func (r DateRange) End() time.Time { return r.To.AddDate(0, 0, 1) }

func (r DateRange) String() string {
	return r.From.Format(dateLayout) + ".." + r.To.Format(dateLayout)
}
