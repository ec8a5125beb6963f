// Package dates provides the calendar arithmetic the spending engine is
// built on: start-of-day/week normalization, whole-day differences, and
// payday-boundary resolution ("nearest date with this day-of-month").
//
// A Calendar is an explicit immutable value pinned to one time zone so day
// boundaries are deterministic regardless of the host zone. Weeks are ISO
// weeks (Monday start). Setting a day-of-month that a month does not have
// clamps to the month's last day (day 31 in June resolves to June 30); it
// never rolls into the next month. Operations are total: a malformed target
// day falls back to returning the input unchanged.
package dates

import "time"

// Direction selects which way Next searches from the reference date.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Calendar is a fixed-zone Gregorian calendar. The zero value uses UTC.
type Calendar struct {
	loc *time.Location
}

// New returns a Calendar pinned to loc. A nil loc means UTC.
func New(loc *time.Location) Calendar {
	return Calendar{loc: loc}
}

// Location returns the calendar's time zone.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// StartOfDay truncates t to midnight in the calendar's zone.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location())
}

// StartOfWeek returns the Monday midnight of t's ISO week.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	day := c.StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return c.AddDays(day, -offset)
}

// EndOfWeek returns the start of the following ISO week, i.e. the exclusive
// upper bound of t's week.
func (c Calendar) EndOfWeek(t time.Time) time.Time {
	return c.AddDays(c.StartOfWeek(t), 7)
}

// AddDays shifts t by n calendar days, keeping the clock time. Arithmetic is
// done on date components so a DST transition cannot skew the day boundary.
func (c Calendar) AddDays(t time.Time, n int) time.Time {
	in := t.In(c.Location())
	y, m, d := in.Date()
	hh, mm, ss := in.Clock()
	return time.Date(y, m, d+n, hh, mm, ss, in.Nanosecond(), c.Location())
}

// AddMonths shifts t by n months, clamping the day to the target month's
// length (Jan 31 plus one month is Feb 28/29, not Mar 3).
func (c Calendar) AddMonths(t time.Time, n int) time.Time {
	in := t.In(c.Location())
	y, m, d := in.Date()
	hh, mm, ss := in.Clock()
	ty, tm := normalizeMonth(y, int(m)+n)
	if last := daysIn(ty, tm); d > last {
		d = last
	}
	return time.Date(ty, tm, d, hh, mm, ss, in.Nanosecond(), c.Location())
}

// DaysInMonth returns the number of days in t's month.
func (c Calendar) DaysInMonth(t time.Time) int {
	in := t.In(c.Location())
	y, m, _ := in.Date()
	return daysIn(y, m)
}

// SetDay moves t to the given day of its month, clamped to the month's
// length. A day outside 1..31 returns t unchanged.
func (c Calendar) SetDay(t time.Time, day int) time.Time {
	if day < 1 || day > 31 {
		return t
	}
	in := t.In(c.Location())
	y, m, _ := in.Date()
	hh, mm, ss := in.Clock()
	if last := daysIn(y, m); day > last {
		day = last
	}
	return time.Date(y, m, day, hh, mm, ss, in.Nanosecond(), c.Location())
}

// NumberOfDays counts whole calendar days from from to to, comparing
// start-of-day values. It is antisymmetric: NumberOfDays(a, b) equals
// -NumberOfDays(b, a).
func (c Calendar) NumberOfDays(from, to time.Time) int {
	return int(epochDay(c.StartOfDay(to)) - epochDay(c.StartOfDay(from)))
}

// Next resolves the nearest date whose day-of-month equals day, searching in
// the given direction and including t's own day. The result is normalized to
// start of day; Forward never yields a date before t's day, Backward never
// one after it. A day outside 1..31 returns t unchanged.
func (c Calendar) Next(t time.Time, day int, dir Direction) time.Time {
	if day < 1 || day > 31 {
		return t
	}
	base := c.StartOfDay(t)
	y, m, _ := base.Date()
	cand := c.dayInMonth(y, m, day)
	switch dir {
	case Forward:
		if cand.Before(base) {
			ny, nm := normalizeMonth(y, int(m)+1)
			cand = c.dayInMonth(ny, nm, day)
		}
	case Backward:
		if cand.After(base) {
			py, pm := normalizeMonth(y, int(m)-1)
			cand = c.dayInMonth(py, pm, day)
		}
	}
	return cand
}

func (c Calendar) dayInMonth(y int, m time.Month, day int) time.Time {
	if last := daysIn(y, m); day > last {
		day = last
	}
	return time.Date(y, m, day, 0, 0, 0, 0, c.Location())
}

// epochDay maps a start-of-day value to a day ordinal, independent of zone
// offset changes within the calendar's location.
func epochDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func normalizeMonth(y, m int) (int, time.Month) {
	norm := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	ny, nm, _ := norm.Date()
	return ny, nm
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
