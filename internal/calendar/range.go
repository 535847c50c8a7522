package calendar

import "time"

// Range is an inclusive span of calendar days. Start and End may carry any
// time of day; only their calendar days matter.
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange builds a Range from two instants.
func NewRange(start, end time.Time) Range {
	return Range{Start: start, End: end}
}

// Days returns the number of calendar days covered by r, or 0 when r is
// inverted.
func (c Calendar) Days(r Range) int {
	n := c.DaysBetween(r.Start, r.End)
	if n < 0 {
		return 0
	}
	return n + 1
}

// Contains reports whether t's calendar day lies within r.
func (c Calendar) Contains(r Range, t time.Time) bool {
	return c.DaysBetween(r.Start, t) >= 0 && c.DaysBetween(t, r.End) >= 0
}

// LastNDays returns the n days ending on today's calendar day.
func (c Calendar) LastNDays(today time.Time, n int) Range {
	end := c.StartOfDay(today)
	if n < 1 {
		n = 1
	}
	return Range{Start: c.AddDays(end, -(n - 1)), End: end}
}

// MonthRange returns the first through last day of the month.
func (c Calendar) MonthRange(year int, month time.Month) Range {
	start := c.Date(year, month, 1)
	return Range{Start: start, End: c.EndOfDay(c.Date(year, month, c.MonthLength(year, month)))}
}

// WeekRange returns Monday through Sunday of t's ISO week.
func (c Calendar) WeekRange(t time.Time) Range {
	start := c.StartOfWeek(t)
	return Range{Start: start, End: c.EndOfDay(c.AddDays(start, 6))}
}
