package engine

import (
	"time"

	"github.com/tallyflow/tally/internal/model"
)

// addMonthsClamped steps a date forward by whole calendar months,
// preserving the day of month and clamping to the last valid day of a
// shorter month. Unlike time.AddDate, Jan 31 + 1 month is Feb 29, not
// Mar 2.
func addMonthsClamped(t time.Time, months int) time.Time {
	target := model.MonthOf(t)
	for i := 0; i < months; i++ {
		target = target.Next()
	}
	return dayInMonth(target, t.Day())
}

// addYearsClamped steps forward by whole years, clamping Feb 29 to
// Feb 28 in non-leap years.
func addYearsClamped(t time.Time, years int) time.Time {
	target := model.Month{Year: t.Year() + years, Month: t.Month()}
	return dayInMonth(target, t.Day())
}

// dayInMonth returns the given day within the month, clamped to the last
// valid day.
func dayInMonth(m model.Month, day int) time.Time {
	if last := m.Days(); day > last {
		day = last
	}
	return time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC)
}

// midnight truncates t to 00:00 UTC.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
