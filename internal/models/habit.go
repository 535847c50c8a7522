package models

import "time"

// Habit is a recurring obligation evaluated against its Cadence.
type Habit struct {
	ID        string
	Name      string
	Emoji     string
	StartDate time.Time // day granularity; the cadence epoch
	Archived  bool
	Cadence   Cadence // nil when the stored cadence is malformed; never due
}

// Label returns the habit name prefixed by its emoji, if any.
func (h Habit) Label() string {
	if h.Emoji == "" {
		return h.Name
	}
	return h.Emoji + " " + h.Name
}

// CompletionMark records that a habit was completed on a calendar day.
type CompletionMark struct {
	ID      string
	HabitID string
	Date    time.Time // local noon of the marked day
	Checked bool
}
