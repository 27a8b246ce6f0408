// Package calendar holds the calendar-day arithmetic shared by the
// statistics and goal engines. All week and month boundaries are computed
// on civil dates, so results do not depend on the time of day.
package calendar

import (
	"time"

	"cloud.google.com/go/civil"
)

// Calendar fixes the location and week start used to turn instants
// into calendar days.
type Calendar struct {
	Location  *time.Location
	WeekStart time.Weekday
}

func New(loc *time.Location, weekStart time.Weekday) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{
		Location:  loc,
		WeekStart: weekStart,
	}
}

// Date returns the calendar day t falls on in the calendar's location.
func (c Calendar) Date(t time.Time) civil.Date {
	return civil.DateOf(t.In(c.location()))
}

// StartOfWeek returns the first day of the week containing d.
func (c Calendar) StartOfWeek(d civil.Date) civil.Date {
	weekday := d.In(time.UTC).Weekday()
	offset := (int(weekday) - int(c.WeekStart) + 7) % 7
	return d.AddDays(-offset)
}

// EndOfWeek returns the last day of the week containing d.
func (c Calendar) EndOfWeek(d civil.Date) civil.Date {
	return c.StartOfWeek(d).AddDays(6)
}

// StartOfDay returns the first instant of d in the calendar's location.
func (c Calendar) StartOfDay(d civil.Date) time.Time {
	return d.In(c.location())
}

// EndOfDay returns the last instant of d in the calendar's location.
func (c Calendar) EndOfDay(d civil.Date) time.Time {
	return d.AddDays(1).In(c.location()).Add(-time.Nanosecond)
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func StartOfMonth(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year, Month: d.Month, Day: 1}
}

func EndOfMonth(d civil.Date) civil.Date {
	first := StartOfMonth(d)
	next := civil.DateOf(first.In(time.UTC).AddDate(0, 1, 0))
	return next.AddDays(-1)
}

// Within reports whether d lies in [from, to], both ends inclusive.
func Within(d, from, to civil.Date) bool {
	return !d.Before(from) && !d.After(to)
}

// DaysBetween returns the number of whole days from a to b, truncated
// towards zero. It is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
