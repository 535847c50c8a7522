package system

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"testing"
	"time"

	"github.com/julianstephens/cadence/internal/models"
)

// captureStdout returns what fn prints to stdout.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	runErr := fn()
	os.Stdout = orig
	w.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatal(err)
	}
	return buf.String(), runErr
}

func TestDebugDBPathCmd(t *testing.T) {
	ctx, _, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	out, err := captureStdout(t, func() error { return (&DebugDBPathCmd{}).Run(ctx) })
	if err != nil {
		t.Fatalf("debug db-path command failed: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got["path"] != ctx.Store.GetConfigPath() {
		t.Errorf("path = %q, want %q", got["path"], ctx.Store.GetConfigPath())
	}
}

func TestDebugDumpHabitCmd(t *testing.T) {
	ctx, store, cleanup := setupTestDoctorDB(t)
	defer cleanup()
	if err := ctx.Configure(); err != nil {
		t.Fatal(err)
	}

	cal := ctx.Calendar()
	habit := models.Habit{
		ID:        "test-habit-id",
		Name:      "Gym",
		StartDate: cal.Date(2024, 3, 1),
		Cadence:   models.Weekdays{Mask: models.MaskOf(time.Monday, time.Thursday)},
	}
	if err := store.AddHabit(habit); err != nil {
		t.Fatal(err)
	}
	if err := store.SetMark(habit.ID, cal.Date(2024, 3, 4), true); err != nil {
		t.Fatal(err)
	}

	out, err := captureStdout(t, func() error { return (&DebugDumpHabitCmd{Habit: "gym"}).Run(ctx) })
	if err != nil {
		t.Fatalf("debug dump-habit failed: %v", err)
	}

	var dump habitDump
	if err := json.Unmarshal([]byte(out), &dump); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if dump.ID != habit.ID || dump.StartDate != "2024-03-01" {
		t.Errorf("unexpected dump: %+v", dump)
	}
	if dump.Cadence != habit.Cadence.String() {
		t.Errorf("cadence = %q, want %q", dump.Cadence, habit.Cadence.String())
	}
	if len(dump.Marks) != 1 || dump.Marks[0] != "2024-03-04" {
		t.Errorf("marks = %v, want [2024-03-04]", dump.Marks)
	}
}

func TestDebugDumpHabitCmd_NotFound(t *testing.T) {
	ctx, _, cleanup := setupTestDoctorDB(t)
	defer cleanup()
	if err := ctx.Configure(); err != nil {
		t.Fatal(err)
	}

	if err := (&DebugDumpHabitCmd{Habit: "missing"}).Run(ctx); err == nil {
		t.Error("dump-habit should fail for an unknown habit")
	}
}

func TestValidateCmd(t *testing.T) {
	ctx, store, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	out, err := captureStdout(t, func() error { return (&ValidateCmd{}).Run(ctx) })
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("No conflicts detected.")) {
		t.Errorf("unexpected report:\n%s", out)
	}

	for _, id := range []string{"h1", "h2"} {
		h := models.Habit{ID: id, Name: "Read", StartDate: time.Now(), Cadence: models.Daily{}}
		if err := store.AddHabit(h); err != nil {
			t.Fatal(err)
		}
	}
	out, err = captureStdout(t, func() error { return (&ValidateCmd{}).Run(ctx) })
	if err != nil {
		t.Fatalf("validate should report conflicts without failing: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("Duplicate habit name")) {
		t.Errorf("report missing duplicate name:\n%s", out)
	}
}
