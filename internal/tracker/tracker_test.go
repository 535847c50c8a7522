package tracker

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/julianstephens/cadence/internal/calendar"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/recurrence"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
)

func setupTracker(t *testing.T) (*Tracker, *sqlite.Store, calendar.Calendar) {
	t.Helper()
	cal, err := calendar.Load("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	store := sqlite.NewStore(filepath.Join(t.TempDir(), "cadence.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	store.SetCalendar(cal)

	return New(store, recurrence.New(recurrence.Config{Calendar: cal})), store, cal
}

func addHabit(t *testing.T, store *sqlite.Store, h models.Habit) models.Habit {
	t.Helper()
	if err := store.AddHabit(h); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	return h
}

func TestDueHabitsExcludesArchived(t *testing.T) {
	tr, store, cal := setupTracker(t)
	start := cal.Date(2024, 1, 1)
	addHabit(t, store, models.Habit{ID: "a", Name: "Read", StartDate: start, Cadence: models.Daily{}})
	addHabit(t, store, models.Habit{ID: "b", Name: "Gym", StartDate: start, Cadence: models.Weekdays{Mask: models.MaskOf(time.Tuesday)}})
	addHabit(t, store, models.Habit{ID: "c", Name: "Old", StartDate: start, Archived: true, Cadence: models.Daily{}})

	monday := cal.Date(2024, 1, 8)
	due := tr.DueHabits(monday)
	if len(due) != 1 || due[0].ID != "a" {
		t.Errorf("DueHabits(Monday) = %v", due)
	}
	if got := tr.DueHabits(cal.AddDays(monday, 1)); len(got) != 2 {
		t.Errorf("DueHabits(Tuesday) = %d habits, want 2", len(got))
	}
	if got := tr.Habits(true); len(got) != 3 {
		t.Errorf("Habits(true) = %d habits, want 3", len(got))
	}
}

func TestToggleAndSet(t *testing.T) {
	tr, store, cal := setupTracker(t)
	h := addHabit(t, store, models.Habit{ID: "a", Name: "Read", StartDate: cal.Date(2024, 1, 1), Cadence: models.Daily{}})
	day := cal.Date(2024, 1, 10)

	checked, err := tr.Toggle(h, day)
	if err != nil || !checked || !tr.IsChecked(h, day) {
		t.Fatalf("Toggle = %v, %v", checked, err)
	}
	checked, err = tr.Toggle(h, day)
	if err != nil || checked || tr.IsChecked(h, day) {
		t.Fatalf("second Toggle = %v, %v", checked, err)
	}

	if err := tr.Set(h, day, true); err != nil {
		t.Fatal(err)
	}
	if err := tr.Set(h, day, true); err != nil {
		t.Fatal(err)
	}
	if n := tr.CheckedCount(h, calendar.Range{Start: day, End: day}); n != 1 {
		t.Errorf("CheckedCount after repeated Set = %d, want 1", n)
	}
	if err := tr.Set(h, day, false); err != nil {
		t.Fatal(err)
	}
	if tr.IsChecked(h, day) {
		t.Error("Set(false) should uncheck")
	}
}

func TestCountsAndPercent(t *testing.T) {
	tr, store, cal := setupTracker(t)
	// Due Mon/Wed/Fri.
	h := addHabit(t, store, models.Habit{
		ID: "a", Name: "Run", StartDate: cal.Date(2024, 1, 1),
		Cadence: models.Weekdays{Mask: models.MaskOf(time.Monday, time.Wednesday, time.Friday)},
	})
	today := cal.Date(2024, 1, 14) // Sunday
	for _, d := range []int{8, 10} {
		if err := tr.Set(h, cal.Date(2024, 1, d), true); err != nil {
			t.Fatal(err)
		}
	}

	c := tr.Counts(h, cal.LastNDays(today, 7))
	if c.Checked != 2 || c.Expected != 3 {
		t.Errorf("Counts = %+v, want 2/3", c)
	}

	pct, ok := tr.Percent(h, 7, today)
	if !ok || math.Abs(pct-200.0/3) > 1e-9 {
		t.Errorf("Percent = %v, %v", pct, ok)
	}

	// Nothing is due on a single Sunday.
	if pct, ok := tr.Percent(h, 1, today); ok || !math.IsNaN(pct) {
		t.Errorf("Percent over a window with nothing due = %v, %v", pct, ok)
	}
}

func TestCheckedIndependentOfDue(t *testing.T) {
	tr, store, cal := setupTracker(t)
	h := addHabit(t, store, models.Habit{ID: "a", Name: "Rent", StartDate: cal.Date(2024, 1, 1), Cadence: models.MonthlyDayOfMonth{Day: 1}})
	offDay := cal.Date(2024, 1, 15)

	if err := tr.Set(h, offDay, true); err != nil {
		t.Fatal(err)
	}
	if tr.Engine().IsDue(h, offDay) {
		t.Error("a mark must not make a habit due")
	}
	c := tr.Counts(h, cal.MonthRange(2024, time.January))
	if c.Checked != 1 || c.Expected != 1 {
		t.Errorf("Counts = %+v", c)
	}
}

func TestMonthlyStats(t *testing.T) {
	tr, store, cal := setupTracker(t)
	h := addHabit(t, store, models.Habit{ID: "a", Name: "Pay", StartDate: cal.Date(2024, 1, 1), Cadence: models.MonthlyDayOfMonth{Day: 31}})
	if err := tr.Set(h, cal.Date(2024, 2, 29), true); err != nil {
		t.Fatal(err)
	}

	today := cal.Date(2024, 4, 10)
	rows := tr.MonthlyStats(2024, today)
	if len(rows) != 4 {
		t.Fatalf("MonthlyStats(current year) = %d rows, want 4", len(rows))
	}
	feb := rows[1]
	if feb.Month != time.February || len(feb.Cells) != 1 {
		t.Fatalf("February row = %+v", feb)
	}
	if feb.Cells[0].Checked != 1 || feb.Cells[0].Expected != 1 {
		t.Errorf("February counts = %+v", feb.Cells[0].Counts)
	}

	if rows := tr.MonthlyStats(2023, today); len(rows) != 12 {
		t.Errorf("MonthlyStats(past year) = %d rows, want 12", len(rows))
	}
	if rows := tr.MonthlyStats(2025, today); len(rows) != 0 {
		t.Errorf("MonthlyStats(future year) = %d rows, want 0", len(rows))
	}
}

func TestWeek(t *testing.T) {
	tr, store, cal := setupTracker(t)
	h := addHabit(t, store, models.Habit{ID: "a", Name: "Lift", StartDate: cal.Date(2024, 1, 1), Cadence: models.EveryNDays{N: 2}})
	if err := tr.Set(h, cal.Date(2024, 1, 3), true); err != nil {
		t.Fatal(err)
	}

	view := tr.Week(cal.Date(2024, 1, 4))
	if !cal.SameDay(view.Days[0], cal.Date(2024, 1, 1)) || !cal.SameDay(view.Days[6], cal.Date(2024, 1, 7)) {
		t.Errorf("week days = %v .. %v", view.Days[0], view.Days[6])
	}
	if len(view.Rows) != 1 {
		t.Fatalf("rows = %d", len(view.Rows))
	}
	wantDue := [7]bool{true, false, true, false, true, false, true}
	for i, cell := range view.Rows[0].Cells {
		if cell.Due != wantDue[i] {
			t.Errorf("day %d due = %v, want %v", i, cell.Due, wantDue[i])
		}
		if cell.Checked != (i == 2) {
			t.Errorf("day %d checked = %v", i, cell.Checked)
		}
	}
}

func TestMonth(t *testing.T) {
	tr, store, cal := setupTracker(t)
	addHabit(t, store, models.Habit{ID: "a", Name: "Call mom", StartDate: cal.Date(2024, 1, 1),
		Cadence: models.MonthlyNthWeekday{Nth: -1, Weekday: time.Sunday}})

	days := tr.Month(2024, time.March)
	if len(days) != 31 {
		t.Fatalf("Month = %d days", len(days))
	}
	for _, d := range days {
		want := d.Date.Day() == 31
		if (len(d.Due) == 1) != want {
			t.Errorf("March %d due = %v", d.Date.Day(), d.Due)
		}
	}
}

type failingStore struct {
	storage.Provider
}

var errBroken = errors.New("disk on fire")

func (failingStore) GetAllHabits(bool) ([]models.Habit, error) { return nil, errBroken }
func (failingStore) IsMarked(string, time.Time) (bool, error)  { return false, errBroken }
func (failingStore) CountMarks(string, calendar.Range) (int, error) {
	return 0, errBroken
}
func (failingStore) ToggleMark(string, time.Time) (bool, error) { return false, errBroken }
func (failingStore) SetMark(string, time.Time, bool) error      { return errBroken }

func TestStorageFailuresDegrade(t *testing.T) {
	cal := calendar.New(time.UTC)
	tr := New(failingStore{}, recurrence.New(recurrence.Config{Calendar: cal}))
	h := models.Habit{ID: "a", Name: "Read", StartDate: cal.Date(2024, 1, 1), Cadence: models.Daily{}}
	day := cal.Date(2024, 1, 2)

	if got := tr.Habits(true); got == nil || len(got) != 0 {
		t.Errorf("Habits = %v, want empty", got)
	}
	if got := tr.DueHabits(day); len(got) != 0 {
		t.Errorf("DueHabits = %v, want empty", got)
	}
	if tr.IsChecked(h, day) {
		t.Error("IsChecked should default to false")
	}
	if c := tr.Counts(h, cal.LastNDays(day, 2)); c.Checked != 0 || c.Expected != 2 {
		t.Errorf("Counts = %+v, want 0/2", c)
	}
	if _, err := tr.Toggle(h, day); !errors.Is(err, errBroken) {
		t.Errorf("Toggle error = %v", err)
	}
	if err := tr.Set(h, day, true); !errors.Is(err, errBroken) {
		t.Errorf("Set error = %v", err)
	}
}
