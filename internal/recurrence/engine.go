// Package recurrence decides on which calendar days a habit is due.
//
// The Engine is a pure function of the habit, the queried day or range, and
// its Config. It keeps no state and touches no storage, so one Engine can be
// shared between goroutines.
package recurrence

import (
	"iter"
	"slices"
	"time"

	"github.com/julianstephens/cadence/internal/calendar"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
)

// Config carries the calendar and policies every evaluation depends on.
type Config struct {
	Calendar calendar.Calendar
	// Shortfall selects how day-of-month cadences handle months shorter than
	// their target day. The zero value falls back to the month's last day.
	Shortfall constants.ShortfallPolicy
}

// ConfigFromSettings builds an engine configuration from stored settings.
func ConfigFromSettings(s models.Settings) (Config, error) {
	models.ApplyDefaultSettings(&s)
	cal, err := calendar.Load(s.Timezone)
	if err != nil {
		return Config{}, err
	}
	policy, err := models.ParseShortfallPolicy(string(s.ShortfallPolicy))
	if err != nil {
		return Config{}, err
	}
	return Config{Calendar: cal, Shortfall: policy}, nil
}

// Engine evaluates cadences.
type Engine struct {
	cfg Config
}

// New returns an Engine using cfg.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Calendar returns the calendar the engine evaluates dates in.
func (e *Engine) Calendar() calendar.Calendar {
	return e.cfg.Calendar
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// IsDue reports whether habit is due on day's calendar day. Days before the
// habit's start date and habits with a malformed cadence are never due.
func (e *Engine) IsDue(habit models.Habit, day time.Time) bool {
	cal := e.cfg.Calendar
	start := cal.StartOfDay(habit.StartDate)
	d := cal.StartOfDay(day)
	if d.Before(start) {
		return false
	}

	switch c := habit.Cadence.(type) {
	case models.Daily:
		return true

	case models.EveryNDays:
		if c.N < 2 {
			return false
		}
		return cal.DaysBetween(start, d)%c.N == 0

	case models.Weekdays:
		return c.Mask.Has(d.Weekday())

	case models.Weekly:
		if d.Weekday() != start.Weekday() {
			return false
		}
		n := max(c.N, 1)
		weeks := cal.DaysBetween(cal.StartOfWeek(start), cal.StartOfWeek(d)) / 7
		return weeks%n == 0

	case models.MonthlyDayOfMonth:
		return e.dayOfMonthDue(c, d)

	case models.MonthlyNthWeekday:
		if d.Weekday() != c.Weekday {
			return false
		}
		if c.Nth != constants.NthLast && c.Nth < 1 {
			return false
		}
		target, ok := cal.NthWeekdayOfMonth(d.Year(), d.Month(), c.Weekday, c.Nth)
		return ok && cal.SameDay(target, d)
	}

	return false
}

func (e *Engine) dayOfMonthDue(c models.MonthlyDayOfMonth, d time.Time) bool {
	if c.Day < 1 {
		return false
	}
	if d.Day() == c.Day {
		return true
	}
	length := e.cfg.Calendar.MonthLength(d.Year(), d.Month())
	if length >= c.Day {
		return false
	}
	if e.cfg.Shortfall == constants.ShortfallSkip {
		return false
	}
	return d.Day() == length
}

// Dates yields the due days of habit within r, ascending, as the start of
// each local day.
// The sequence is recomputed on every iteration and is empty when r is
// inverted.
func (e *Engine) Dates(habit models.Habit, r calendar.Range) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		cal := e.cfg.Calendar
		n := cal.Days(r)
		first := cal.NormalizeToNoon(r.Start)
		for i := range n {
			d := cal.StartOfDay(cal.AddDays(first, i))
			if !e.IsDue(habit, d) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// DatesDue returns the due days of habit within r.
func (e *Engine) DatesDue(habit models.Habit, r calendar.Range) []time.Time {
	return slices.Collect(e.Dates(habit, r))
}

// ExpectedCount returns the number of due days of habit within r.
func (e *Engine) ExpectedCount(habit models.Habit, r calendar.Range) int {
	count := 0
	for range e.Dates(habit, r) {
		count++
	}
	return count
}

// DueHabits filters habits to those due on day, preserving order.
func (e *Engine) DueHabits(habits []models.Habit, day time.Time) []models.Habit {
	var due []models.Habit
	for _, h := range habits {
		if e.IsDue(h, day) {
			due = append(due, h)
		}
	}
	return due
}

// NextDue returns the first due day on or after from, looking at most
// horizonDays days ahead.
func (e *Engine) NextDue(habit models.Habit, from time.Time, horizonDays int) (time.Time, bool) {
	if horizonDays < 1 {
		return time.Time{}, false
	}
	cal := e.cfg.Calendar
	r := calendar.Range{Start: from, End: cal.AddDays(cal.StartOfDay(from), horizonDays-1)}
	for d := range e.Dates(habit, r) {
		return d, true
	}
	return time.Time{}, false
}
