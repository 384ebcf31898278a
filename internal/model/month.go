package model

import (
	"fmt"
	"time"
)

// Month is a calendar month key in a specific year ("2024-05"). Budgets
// and invoices are bucketed by Month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a "YYYY-MM" key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// String returns the "YYYY-MM" key.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Prev returns the immediately preceding calendar month.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Next returns the immediately following calendar month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Start returns midnight UTC on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the following month; the month window
// is [Start, End).
func (m Month) End() time.Time {
	return m.Next().Start()
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return m.End().AddDate(0, 0, -1).Day()
}

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	return !t.Before(m.Start()) && t.Before(m.End())
}
