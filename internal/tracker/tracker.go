// Package tracker combines the habit store with the recurrence engine.
//
// Reads never fail: storage errors are logged and degrade to empty or zero
// results. Writes return their errors to the caller.
package tracker

import (
	"math"
	"time"

	"github.com/julianstephens/cadence/internal/calendar"
	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/recurrence"
	"github.com/julianstephens/cadence/internal/storage"
)

type Tracker struct {
	store  storage.Provider
	engine *recurrence.Engine
}

func New(store storage.Provider, engine *recurrence.Engine) *Tracker {
	return &Tracker{store: store, engine: engine}
}

func (t *Tracker) Engine() *recurrence.Engine {
	return t.engine
}

func (t *Tracker) Calendar() calendar.Calendar {
	return t.engine.Calendar()
}

// Habits lists habits ordered by start date and name.
func (t *Tracker) Habits(includeArchived bool) []models.Habit {
	habits, err := t.store.GetAllHabits(includeArchived)
	if err != nil {
		logger.Error("Failed to load habits", "error", err)
		return []models.Habit{}
	}
	return habits
}

// DueHabits lists the active habits due on day.
func (t *Tracker) DueHabits(day time.Time) []models.Habit {
	return t.engine.DueHabits(t.Habits(false), day)
}

// Toggle flips the checked state of habit on day and returns the new state.
func (t *Tracker) Toggle(habit models.Habit, day time.Time) (bool, error) {
	checked, err := t.store.ToggleMark(habit.ID, day)
	if err != nil {
		logger.Error("Failed to toggle mark", "habit", habit.ID, "day", t.Calendar().Format(day), "error", err)
		return false, err
	}
	logger.Debug("Toggled mark", "habit", habit.ID, "day", t.Calendar().Format(day), "checked", checked)
	return checked, nil
}

// Set makes habit checked or unchecked on day. Setting the current state
// changes nothing.
func (t *Tracker) Set(habit models.Habit, day time.Time, checked bool) error {
	if err := t.store.SetMark(habit.ID, day, checked); err != nil {
		logger.Error("Failed to set mark", "habit", habit.ID, "day", t.Calendar().Format(day), "error", err)
		return err
	}
	return nil
}

func (t *Tracker) IsChecked(habit models.Habit, day time.Time) bool {
	marked, err := t.store.IsMarked(habit.ID, day)
	if err != nil {
		logger.Warn("Failed to read mark", "habit", habit.ID, "error", err)
		return false
	}
	return marked
}

// CheckedCount counts the checked days of habit within r.
func (t *Tracker) CheckedCount(habit models.Habit, r calendar.Range) int {
	n, err := t.store.CountMarks(habit.ID, r)
	if err != nil {
		logger.Warn("Failed to count marks", "habit", habit.ID, "error", err)
		return 0
	}
	return n
}

// Counts pairs the checked and expected completions of a habit over a range.
type Counts struct {
	Checked  int
	Expected int
}

// Percent returns Checked as a percentage of Expected. It reports false when
// nothing was expected.
func (c Counts) Percent() (float64, bool) {
	if c.Expected <= 0 {
		return math.NaN(), false
	}
	return 100 * float64(c.Checked) / float64(c.Expected), true
}

func (t *Tracker) Counts(habit models.Habit, r calendar.Range) Counts {
	return Counts{
		Checked:  t.CheckedCount(habit, r),
		Expected: t.engine.ExpectedCount(habit, r),
	}
}

// Percent returns the completion percentage of habit over the days-long
// window ending today.
func (t *Tracker) Percent(habit models.Habit, days int, today time.Time) (float64, bool) {
	return t.Counts(habit, t.Calendar().LastNDays(today, days)).Percent()
}
