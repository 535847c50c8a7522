package tracker

import (
	"time"

	"github.com/julianstephens/cadence/internal/calendar"
	"github.com/julianstephens/cadence/internal/models"
)

// HabitCounts is one cell of the monthly statistics grid.
type HabitCounts struct {
	Habit models.Habit
	Counts
}

// MonthRow holds the counts of every active habit for one month.
type MonthRow struct {
	Month time.Month
	Range calendar.Range
	Cells []HabitCounts
}

// MonthlyStats returns one row per month of year. The current year stops at
// today's month and future years have no rows.
func (t *Tracker) MonthlyStats(year int, today time.Time) []MonthRow {
	cal := t.Calendar()
	today = cal.StartOfDay(today)

	limit := 12
	switch {
	case year > today.Year():
		return []MonthRow{}
	case year == today.Year():
		limit = int(today.Month())
	}

	habits := t.Habits(false)
	rows := make([]MonthRow, 0, limit)
	for m := range limit {
		month := time.Month(m + 1)
		r := cal.MonthRange(year, month)
		row := MonthRow{Month: month, Range: r, Cells: make([]HabitCounts, len(habits))}
		for i, h := range habits {
			row.Cells[i] = HabitCounts{Habit: h, Counts: t.Counts(h, r)}
		}
		rows = append(rows, row)
	}
	return rows
}

// DayCell is the state of one habit on one day.
type DayCell struct {
	Date    time.Time
	Due     bool
	Checked bool
}

// WeekRow is one habit across a Monday to Sunday week.
type WeekRow struct {
	Habit models.Habit
	Cells [7]DayCell
}

// WeekView is the Monday to Sunday grid of the ISO week containing a day.
type WeekView struct {
	Range calendar.Range
	Days  [7]time.Time
	Rows  []WeekRow
}

// Week builds the grid for the ISO week containing day. Checked state is
// read for due days only.
func (t *Tracker) Week(day time.Time) WeekView {
	cal := t.Calendar()
	view := WeekView{Range: cal.WeekRange(day)}
	for i := range view.Days {
		view.Days[i] = cal.AddDays(view.Range.Start, i)
	}

	for _, h := range t.Habits(false) {
		row := WeekRow{Habit: h}
		for i, d := range view.Days {
			cell := DayCell{Date: d, Due: t.engine.IsDue(h, d)}
			if cell.Due {
				cell.Checked = t.IsChecked(h, d)
			}
			row.Cells[i] = cell
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

// MonthDay lists the habits due on one day of a month.
type MonthDay struct {
	Date time.Time
	Due  []models.Habit
}

// Month returns every day of the month with its due habits.
func (t *Tracker) Month(year int, month time.Month) []MonthDay {
	cal := t.Calendar()
	habits := t.Habits(false)
	r := cal.MonthRange(year, month)

	days := make([]MonthDay, 0, cal.Days(r))
	for i := range cal.Days(r) {
		d := cal.AddDays(r.Start, i)
		days = append(days, MonthDay{Date: d, Due: t.engine.DueHabits(habits, d)})
	}
	return days
}
