package sqlite

import (
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/julianstephens/cadence/internal/calendar"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage"
)

func setupTestStore(t *testing.T) (*Store, calendar.Calendar) {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "nested", "cadence.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cal, err := calendar.Load("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	store.SetCalendar(cal)
	return store, cal
}

func newHabit(cal calendar.Calendar, id, name string, c models.Cadence) models.Habit {
	return models.Habit{ID: id, Name: name, StartDate: cal.Date(2024, 1, 1), Cadence: c}
}

func TestInitCreatesDefaultSettings(t *testing.T) {
	store, _ := setupTestStore(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings != models.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", settings)
	}

	for _, table := range []string{"habits", "completion_marks", "settings", "schema_version"} {
		exists, err := store.tableExists(table)
		if err != nil || !exists {
			t.Errorf("table %s missing (err=%v)", table, err)
		}
	}
}

func TestInitIsIdempotent(t *testing.T) {
	store, cal := setupTestStore(t)
	if err := store.AddHabit(newHabit(cal, "h1", "Read", models.Daily{})); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveSettings(models.Settings{Timezone: "UTC", ShortfallPolicy: constants.ShortfallSkip, StatsWindowDays: 7}); err != nil {
		t.Fatal(err)
	}
	if err := store.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	if _, err := store.GetHabit("h1"); err != nil {
		t.Errorf("habit lost after re-init: %v", err)
	}
	if s, _ := store.GetSettings(); s.ShortfallPolicy != constants.ShortfallSkip {
		t.Errorf("settings overwritten by re-init: %+v", s)
	}
}

func TestLoadUninitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); !errors.Is(err, storage.ErrNotInitialized) {
		t.Errorf("Load() = %v, want ErrNotInitialized", err)
	}
}

func TestLoadAfterInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadence.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	cal := calendar.Local()
	if err := store.AddHabit(newHabit(cal, "h1", "Read", models.Weekly{N: 2})); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()
	h, err := reopened.GetHabit("h1")
	if err != nil {
		t.Fatal(err)
	}
	if h.Cadence != (models.Weekly{N: 2}) {
		t.Errorf("cadence = %#v after reload", h.Cadence)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	store, _ := setupTestStore(t)
	want := models.Settings{Timezone: "Europe/Paris", ShortfallPolicy: constants.ShortfallSkip, StatsWindowDays: 90}
	if err := store.SaveSettings(want); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	got, err := store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("GetSettings() = %+v, want %+v", got, want)
	}
}

func TestHabitRoundTripAllCadences(t *testing.T) {
	store, cal := setupTestStore(t)
	cadences := []models.Cadence{
		models.Daily{},
		models.EveryNDays{N: 3},
		models.Weekdays{Mask: models.MaskOf(time.Monday, time.Wednesday, time.Friday)},
		models.Weekly{N: 2},
		models.MonthlyDayOfMonth{Day: 31},
		models.MonthlyNthWeekday{Nth: constants.NthLast, Weekday: time.Monday},
	}
	for i, c := range cadences {
		h := newHabit(cal, string(rune('a'+i)), c.String(), c)
		h.Emoji = "✅"
		if err := store.AddHabit(h); err != nil {
			t.Fatalf("AddHabit(%v) failed: %v", c, err)
		}
		got, err := store.GetHabit(h.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Cadence != c || got.Name != h.Name || got.Emoji != "✅" || !got.StartDate.Equal(h.StartDate) {
			t.Errorf("round trip of %v = %+v", c, got)
		}
	}
}

func TestUpdateHabitClearsOldCadenceFields(t *testing.T) {
	store, cal := setupTestStore(t)
	h := newHabit(cal, "h1", "Pay rent", models.MonthlyNthWeekday{Nth: 1, Weekday: time.Friday})
	if err := store.AddHabit(h); err != nil {
		t.Fatal(err)
	}
	h.Cadence = models.Daily{}
	h.Name = "Walk"
	if err := store.UpdateHabit(h); err != nil {
		t.Fatal(err)
	}

	var nth, weekday sql.NullInt64
	if err := store.db.QueryRow("SELECT nth, weekday FROM habits WHERE id = 'h1'").Scan(&nth, &weekday); err != nil {
		t.Fatal(err)
	}
	if nth.Valid || weekday.Valid {
		t.Errorf("stale cadence fields after edit: nth=%v weekday=%v", nth, weekday)
	}
	got, _ := store.GetHabit("h1")
	if got.Name != "Walk" || got.Cadence != (models.Daily{}) {
		t.Errorf("habit after update = %+v", got)
	}
}

func TestAddHabitRejectsMissingCadence(t *testing.T) {
	store, cal := setupTestStore(t)
	if err := store.AddHabit(newHabit(cal, "h1", "Read", nil)); !errors.Is(err, models.ErrInvalidCadence) {
		t.Errorf("AddHabit(nil cadence) = %v, want ErrInvalidCadence", err)
	}
}

func TestMalformedStoredCadenceDecodesToNil(t *testing.T) {
	store, cal := setupTestStore(t)
	if err := store.AddHabit(newHabit(cal, "h1", "Read", models.EveryNDays{N: 3})); err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.Exec("UPDATE habits SET cadence_n = NULL WHERE id = 'h1'"); err != nil {
		t.Fatal(err)
	}
	h, err := store.GetHabit("h1")
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if h.Cadence != nil {
		t.Errorf("cadence = %#v, want nil", h.Cadence)
	}
}

func TestGetHabitNotFound(t *testing.T) {
	store, _ := setupTestStore(t)
	if _, err := store.GetHabit("nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetHabit() = %v, want ErrNotFound", err)
	}
	if _, err := store.GetHabitByName("nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetHabitByName() = %v, want ErrNotFound", err)
	}
	if err := store.DeleteHabit("nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteHabit() = %v, want ErrNotFound", err)
	}
}

func TestGetHabitByNameCaseInsensitive(t *testing.T) {
	store, cal := setupTestStore(t)
	if err := store.AddHabit(newHabit(cal, "h1", "Morning Run", models.Daily{})); err != nil {
		t.Fatal(err)
	}
	h, err := store.GetHabitByName(" morning run ")
	if err != nil || h.ID != "h1" {
		t.Errorf("GetHabitByName = %+v, %v", h, err)
	}
}

func TestGetHabitByNameFoldsUnicode(t *testing.T) {
	store, cal := setupTestStore(t)
	if err := store.AddHabit(newHabit(cal, "h1", "Äpfel essen", models.Daily{})); err != nil {
		t.Fatal(err)
	}
	if err := store.AddHabit(newHabit(cal, "h2", "ÉTIRER", models.Daily{})); err != nil {
		t.Fatal(err)
	}
	for query, want := range map[string]string{"äpfel essen": "h1", "ÄPFEL ESSEN": "h1", "étirer": "h2"} {
		h, err := store.GetHabitByName(query)
		if err != nil || h.ID != want {
			t.Errorf("GetHabitByName(%q) = %q, %v; want %q", query, h.ID, err, want)
		}
	}
}

func TestGetHabitByNamePrefersActive(t *testing.T) {
	store, cal := setupTestStore(t)
	old := newHabit(cal, "old", "Stretch", models.Daily{})
	old.StartDate = cal.Date(2023, 1, 1)
	if err := store.AddHabit(old); err != nil {
		t.Fatal(err)
	}
	if err := store.ArchiveHabit("old"); err != nil {
		t.Fatal(err)
	}
	if err := store.AddHabit(newHabit(cal, "new", "stretch", models.Daily{})); err != nil {
		t.Fatal(err)
	}
	h, err := store.GetHabitByName("STRETCH")
	if err != nil || h.ID != "new" {
		t.Errorf("GetHabitByName = %q, %v; want the active habit", h.ID, err)
	}
}

func TestGetAllHabitsOrderingAndArchive(t *testing.T) {
	store, cal := setupTestStore(t)
	habits := []models.Habit{
		{ID: "c", Name: "Zebra", StartDate: cal.Date(2024, 1, 1), Cadence: models.Daily{}},
		{ID: "a", Name: "Apple", StartDate: cal.Date(2024, 2, 1), Cadence: models.Daily{}},
		{ID: "b", Name: "Mango", StartDate: cal.Date(2024, 1, 1), Cadence: models.Daily{}},
	}
	for _, h := range habits {
		if err := store.AddHabit(h); err != nil {
			t.Fatal(err)
		}
	}

	all, err := store.GetAllHabits(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].ID != "b" || all[1].ID != "c" || all[2].ID != "a" {
		t.Errorf("order = %v", ids(all))
	}

	if err := store.ArchiveHabit("c"); err != nil {
		t.Fatalf("ArchiveHabit failed: %v", err)
	}
	if err := store.ArchiveHabit("c"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second ArchiveHabit = %v, want ErrNotFound", err)
	}

	active, _ := store.GetAllHabits(false)
	if len(active) != 2 {
		t.Errorf("active habits = %v", ids(active))
	}
	everything, _ := store.GetAllHabits(true)
	if len(everything) != 3 {
		t.Errorf("all habits = %v", ids(everything))
	}

	if err := store.UnarchiveHabit("c"); err != nil {
		t.Fatalf("UnarchiveHabit failed: %v", err)
	}
	if err := store.UnarchiveHabit("c"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second UnarchiveHabit = %v, want ErrNotFound", err)
	}
}

func ids(habits []models.Habit) []string {
	out := make([]string, len(habits))
	for i, h := range habits {
		out[i] = h.ID
	}
	return out
}

func TestToggleMarkRoundTrip(t *testing.T) {
	store, cal := setupTestStore(t)
	if err := store.AddHabit(newHabit(cal, "h1", "Read", models.Daily{})); err != nil {
		t.Fatal(err)
	}
	morning := time.Date(2024, 3, 10, 7, 0, 0, 0, cal.Location())
	evening := time.Date(2024, 3, 10, 23, 30, 0, 0, cal.Location())

	checked, err := store.ToggleMark("h1", morning)
	if err != nil || !checked {
		t.Fatalf("first toggle = %v, %v; want checked", checked, err)
	}
	if marked, _ := store.IsMarked("h1", evening); !marked {
		t.Error("mark should cover the whole day")
	}

	checked, err = store.ToggleMark("h1", evening)
	if err != nil || checked {
		t.Fatalf("second toggle = %v, %v; want unchecked", checked, err)
	}
	if marked, _ := store.IsMarked("h1", morning); marked {
		t.Error("toggling twice should restore the unchecked state")
	}

	var rows int
	store.db.QueryRow("SELECT COUNT(*) FROM completion_marks").Scan(&rows)
	if rows != 0 {
		t.Errorf("unchecked day left %d rows", rows)
	}
}

func TestMarksAreStoredAtLocalNoon(t *testing.T) {
	store, cal := setupTestStore(t)
	if err := store.AddHabit(newHabit(cal, "h1", "Read", models.Daily{})); err != nil {
		t.Fatal(err)
	}
	if _, err := store.ToggleMark("h1", time.Date(2024, 3, 10, 1, 0, 0, 0, cal.Location())); err != nil {
		t.Fatal(err)
	}

	var date int64
	if err := store.db.QueryRow("SELECT date FROM completion_marks").Scan(&date); err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 3, 10, 12, 0, 0, 0, cal.Location()).Unix()
	if date != want {
		t.Errorf("stored date = %d, want %d (local noon)", date, want)
	}
}

func TestToggleMarkUnknownHabit(t *testing.T) {
	store, cal := setupTestStore(t)
	if _, err := store.ToggleMark("ghost", cal.Date(2024, 1, 1)); err == nil {
		t.Error("expected foreign key error for unknown habit")
	}
}

func TestConcurrentTogglesLeaveAtMostOneMark(t *testing.T) {
	store, cal := setupTestStore(t)
	if err := store.AddHabit(newHabit(cal, "h1", "Read", models.Daily{})); err != nil {
		t.Fatal(err)
	}
	day := cal.Date(2024, 5, 1)

	const workers = 9
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.ToggleMark("h1", day); err != nil {
				t.Errorf("ToggleMark failed: %v", err)
			}
		}()
	}
	wg.Wait()

	var rows int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM completion_marks WHERE habit_id = 'h1'").Scan(&rows); err != nil {
		t.Fatal(err)
	}
	// An odd number of toggles ends checked.
	if rows != 1 {
		t.Errorf("rows after %d toggles = %d, want 1", workers, rows)
	}
}

func TestSetMarkIsIdempotent(t *testing.T) {
	store, cal := setupTestStore(t)
	if err := store.AddHabit(newHabit(cal, "h1", "Read", models.Daily{})); err != nil {
		t.Fatal(err)
	}
	day := cal.Date(2024, 5, 1)

	for range 2 {
		if err := store.SetMark("h1", day, true); err != nil {
			t.Fatalf("SetMark(true) failed: %v", err)
		}
	}
	if n, _ := store.CountMarks("h1", calendar.Range{Start: day, End: day}); n != 1 {
		t.Errorf("CountMarks after double set = %d, want 1", n)
	}
	for range 2 {
		if err := store.SetMark("h1", day, false); err != nil {
			t.Fatalf("SetMark(false) failed: %v", err)
		}
	}
	if marked, _ := store.IsMarked("h1", day); marked {
		t.Error("day should be unchecked")
	}
}

func TestCountAndGetMarks(t *testing.T) {
	store, cal := setupTestStore(t)
	if err := store.AddHabit(newHabit(cal, "h1", "Read", models.Daily{})); err != nil {
		t.Fatal(err)
	}
	if err := store.AddHabit(newHabit(cal, "h2", "Walk", models.Daily{})); err != nil {
		t.Fatal(err)
	}
	for _, d := range []int{1, 5, 10, 31} {
		if err := store.SetMark("h1", cal.Date(2024, 1, d), true); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.SetMark("h1", cal.Date(2024, 2, 1), true); err != nil {
		t.Fatal(err)
	}
	if err := store.SetMark("h2", cal.Date(2024, 1, 5), true); err != nil {
		t.Fatal(err)
	}

	jan := cal.MonthRange(2024, time.January)
	if n, err := store.CountMarks("h1", jan); err != nil || n != 4 {
		t.Errorf("CountMarks(January) = %d, %v; want 4", n, err)
	}
	// Both bounds are inclusive.
	r := calendar.Range{Start: cal.Date(2024, 1, 5), End: cal.Date(2024, 1, 10)}
	if n, _ := store.CountMarks("h1", r); n != 2 {
		t.Errorf("CountMarks(5..10) = %d, want 2", n)
	}
	inverted := calendar.Range{Start: cal.Date(2024, 1, 10), End: cal.Date(2024, 1, 5)}
	if n, _ := store.CountMarks("h1", inverted); n != 0 {
		t.Errorf("CountMarks(inverted) = %d, want 0", n)
	}

	marks, err := store.GetMarks("h1", jan)
	if err != nil {
		t.Fatal(err)
	}
	if len(marks) != 4 || marks[0].Date.Day() != 1 || marks[3].Date.Day() != 31 || !marks[0].Checked {
		t.Errorf("GetMarks = %+v", marks)
	}

	all, err := store.GetAllMarks()
	if err != nil || len(all) != 6 {
		t.Errorf("GetAllMarks = %d marks, %v; want 6", len(all), err)
	}
}

func TestDeleteHabitCascadesMarks(t *testing.T) {
	store, cal := setupTestStore(t)
	if err := store.AddHabit(newHabit(cal, "h1", "Read", models.Daily{})); err != nil {
		t.Fatal(err)
	}
	for d := 1; d <= 3; d++ {
		if err := store.SetMark("h1", cal.Date(2024, 1, d), true); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.DeleteHabit("h1"); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	var rows int
	store.db.QueryRow("SELECT COUNT(*) FROM completion_marks").Scan(&rows)
	if rows != 0 {
		t.Errorf("%d marks survived habit deletion", rows)
	}
}

func TestArchiveKeepsMarks(t *testing.T) {
	store, cal := setupTestStore(t)
	if err := store.AddHabit(newHabit(cal, "h1", "Read", models.Daily{})); err != nil {
		t.Fatal(err)
	}
	if err := store.SetMark("h1", cal.Date(2024, 1, 2), true); err != nil {
		t.Fatal(err)
	}
	if err := store.ArchiveHabit("h1"); err != nil {
		t.Fatal(err)
	}
	if n, _ := store.CountMarks("h1", cal.MonthRange(2024, time.January)); n != 1 {
		t.Errorf("archived habit lost its history: %d marks", n)
	}
}

func TestImportMark(t *testing.T) {
	store, cal := setupTestStore(t)
	if err := store.AddHabit(newHabit(cal, "h1", "Read", models.Daily{})); err != nil {
		t.Fatal(err)
	}
	m := models.CompletionMark{ID: "m1", HabitID: "h1", Date: cal.NormalizeToNoon(cal.Date(2024, 1, 3)), Checked: true}
	if err := store.ImportMark(m); err != nil {
		t.Fatalf("ImportMark failed: %v", err)
	}
	if err := store.ImportMark(models.CompletionMark{ID: "m2", HabitID: "h1", Date: m.Date, Checked: true}); err != nil {
		t.Fatalf("duplicate ImportMark failed: %v", err)
	}
	all, _ := store.GetAllMarks()
	if len(all) != 1 || all[0].ID != "m1" {
		t.Errorf("marks after import = %+v", all)
	}
}
