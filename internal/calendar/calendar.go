// Package calendar wraps the single local calendar every habit is evaluated in.
//
// All methods are pure: they only read the configured location and the
// arguments, so a Calendar value can be shared freely between goroutines.
package calendar

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"

	"github.com/julianstephens/cadence/internal/constants"
)

const secondsPerDay = 24 * 60 * 60

// Calendar evaluates dates in one time zone. The zero value uses time.Local.
type Calendar struct {
	loc *time.Location
}

// New returns a Calendar bound to loc. A nil loc means time.Local.
func New(loc *time.Location) Calendar {
	return Calendar{loc: loc}
}

// Local returns a Calendar bound to the system time zone.
func Local() Calendar {
	return Calendar{loc: time.Local}
}

// Load returns a Calendar for an IANA time zone name. "" and "Local" select
// the system time zone.
func Load(timezone string) (Calendar, error) {
	if timezone == "" || timezone == constants.DefaultTimezone {
		return Local(), nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Calendar{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return New(loc), nil
}

// Location returns the time zone the calendar evaluates dates in.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// civil returns a jinzhu/now value for t's calendar day in UTC, where day
// boundaries never move.
func (c Calendar) civil(t time.Time) *now.Now {
	y, m, d := t.In(c.Location()).Date()
	cfg := &now.Config{WeekStartDay: time.Monday, TimeLocation: time.UTC}
	return cfg.With(time.Date(y, m, d, constants.NoonHour, 0, 0, 0, time.UTC))
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// startOf returns the first instant of the calendar day. Out-of-range
// components are normalized as in time.Date. Where a DST transition skips
// midnight the day starts when the new offset takes effect.
func (c Calendar) startOf(year int, month time.Month, dayOfMonth int) time.Time {
	loc := c.Location()
	want := time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
	t := time.Date(year, month, dayOfMonth, 0, 0, 0, 0, loc)
	if sameDate(t, want) {
		return t
	}
	for h := 1; h < 24; h++ {
		t = time.Date(year, month, dayOfMonth, h, 0, 0, 0, loc)
		if !sameDate(t, want) {
			continue
		}
		if start, _ := t.ZoneBounds(); !start.IsZero() && sameDate(start, want) {
			return start
		}
		return t
	}
	return t
}

// Date returns the first instant of the given calendar day, local midnight
// on every day that has one.
func (c Calendar) Date(year int, month time.Month, dayOfMonth int) time.Time {
	return c.startOf(year, month, dayOfMonth)
}

// StartOfDay returns the first instant of t's local day.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.Location()).Date()
	return c.startOf(y, m, d)
}

// EndOfDay returns the last instant of t's local day.
func (c Calendar) EndOfDay(t time.Time) time.Time {
	y, m, d := t.In(c.Location()).Date()
	return c.startOf(y, m, d+1).Add(-time.Nanosecond)
}

// NormalizeToNoon returns local noon of t's calendar day. Completion marks are
// keyed by this instant so they never straddle midnight or a DST shift.
func (c Calendar) NormalizeToNoon(t time.Time) time.Time {
	y, m, d := t.In(c.Location()).Date()
	return time.Date(y, m, d, constants.NoonHour, 0, 0, 0, c.Location())
}

// AddDays moves t by n calendar days, keeping the local wall clock. When
// that wall clock does not exist on the target day and would fall back onto
// the previous one, the start of the target day is returned.
func (c Calendar) AddDays(t time.Time, n int) time.Time {
	local := t.In(c.Location())
	moved := local.AddDate(0, 0, n)
	y, m, d := local.Date()
	if target := time.Date(y, m, d+n, 0, 0, 0, 0, time.UTC); !sameDate(moved, target) {
		return c.startOf(target.Date())
	}
	return moved
}

// DaysBetween returns the number of calendar days from a to b. It compares
// day components rather than elapsed time, so DST days count as one day.
func (c Calendar) DaysBetween(a, b time.Time) int {
	ay, am, ad := a.In(c.Location()).Date()
	by, bm, bd := b.In(c.Location()).Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

// SameDay reports whether a and b fall on the same local calendar day.
func (c Calendar) SameDay(a, b time.Time) bool {
	return c.DaysBetween(a, b) == 0
}

// WeekOfYear returns the ISO 8601 (year, week) pair for t.
func (c Calendar) WeekOfYear(t time.Time) (int, int) {
	return t.In(c.Location()).ISOWeek()
}

// StartOfWeek returns the start of the Monday that begins t's ISO week.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	return c.startOf(c.civil(t).BeginningOfWeek().Date())
}

// MonthLength returns the number of days in the given month.
func (c Calendar) MonthLength(year int, month time.Month) int {
	first := time.Date(year, month, 1, constants.NoonHour, 0, 0, 0, time.UTC)
	return (&now.Config{TimeLocation: time.UTC}).With(first).EndOfMonth().Day()
}

// NthWeekdayOfMonth resolves the nth occurrence of weekday in the month.
// n >= 1 counts from the first of the month and n == -1 selects the last
// occurrence. It returns false when the month has no such occurrence or the
// arguments are outside that domain.
func (c Calendar) NthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) (time.Time, bool) {
	if month < time.January || month > time.December {
		return time.Time{}, false
	}
	if weekday < time.Sunday || weekday > time.Saturday {
		return time.Time{}, false
	}

	length := c.MonthLength(year, month)
	if n == constants.NthLast {
		last := c.Date(year, month, length)
		back := (int(last.Weekday()) - int(weekday) + 7) % 7
		return c.Date(year, month, length-back), true
	}
	if n < 1 {
		return time.Time{}, false
	}

	first := c.Date(year, month, 1)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	dayOfMonth := 1 + offset + 7*(n-1)
	if dayOfMonth > length {
		return time.Time{}, false
	}
	return c.Date(year, month, dayOfMonth), true
}

// Today returns the start of the local day containing ref.
func (c Calendar) Today(ref time.Time) time.Time {
	return c.StartOfDay(ref)
}

// Parse reads a YYYY-MM-DD string as the start of that local day.
func (c Calendar) Parse(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return c.startOf(t.Date()), nil
}

// Format renders t's local calendar day as YYYY-MM-DD.
func (c Calendar) Format(t time.Time) string {
	return t.In(c.Location()).Format(constants.DateFormat)
}
