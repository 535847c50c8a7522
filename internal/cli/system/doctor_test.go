package system

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/cadence/internal/backup"
	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
)

func setupTestDoctorDB(t *testing.T) (*cli.Context, *sqlite.Store, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	ctx := &cli.Context{Store: store}
	cleanup := func() {
		store.Close()
	}
	return ctx, store, cleanup
}

func TestDoctorCmd_HealthyDB(t *testing.T) {
	ctx, _, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	// Missing backups is a warning, not a failure.
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v", err)
	}
}

func TestDoctorCmd_WithBackups(t *testing.T) {
	ctx, _, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	if _, err := backup.NewManager(ctx.Store.GetConfigPath()).Create(); err != nil {
		t.Fatalf("failed to create backup: %v", err)
	}
	if err := checkBackupsPresent(ctx); err != nil {
		t.Errorf("backups check failed with a backup present: %v", err)
	}
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed with backups present: %v", err)
	}
}

func TestDoctorCmd_UninitializedDB(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "missing.db"))
	ctx := &cli.Context{Store: store}
	defer store.Close()

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail when the database is not initialized")
	}
}

func TestDoctorCmd_BrokenSchema(t *testing.T) {
	ctx, store, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	db := store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatalf("failed to delete schema version: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatalf("failed to insert future schema version: %v", err)
	}

	if err := checkSchemaVersion(ctx); err == nil {
		t.Error("schema check should fail on a newer schema")
	}
	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail with a newer schema")
	}
}

func TestCheckMigrationsComplete_Incomplete(t *testing.T) {
	ctx, store, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	current, _, err := store.SchemaVersions()
	if err != nil {
		t.Fatalf("failed to get schema versions: %v", err)
	}
	if current < 2 {
		t.Skip("need at least two migrations")
	}

	db := store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", current-1); err != nil {
		t.Fatal(err)
	}

	if err := checkMigrationsComplete(ctx); err == nil {
		t.Error("checkMigrationsComplete should fail with incomplete migrations")
	}
}

func TestCheckValidation_DuplicateNames(t *testing.T) {
	ctx, store, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	for _, id := range []string{"h1", "h2"} {
		h := models.Habit{ID: id, Name: "Read", StartDate: time.Now(), Cadence: models.Daily{}}
		if err := store.AddHabit(h); err != nil {
			t.Fatal(err)
		}
	}

	if err := checkValidation(ctx); err == nil {
		t.Error("validation should report duplicate active habit names")
	}
}

func TestCheckValidation_MalformedCadence(t *testing.T) {
	ctx, store, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	h := models.Habit{ID: "h1", Name: "Gym", StartDate: time.Now(), Cadence: models.EveryNDays{N: 3}}
	if err := store.AddHabit(h); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetDB().Exec("UPDATE habits SET cadence_n = NULL WHERE id = 'h1'"); err != nil {
		t.Fatal(err)
	}

	if err := checkValidation(ctx); err == nil {
		t.Error("validation should report a malformed cadence")
	}
}

func TestCheckMarksIntegrity_Orphans(t *testing.T) {
	ctx, store, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	if err := checkMarksIntegrity(ctx); err != nil {
		t.Fatalf("clean database failed mark integrity: %v", err)
	}

	db := store.GetDB()
	if _, err := db.Exec("PRAGMA foreign_keys = OFF"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO completion_marks (id, habit_id, date, checked) VALUES ('m1', 'gone', 0, 1)"); err != nil {
		t.Fatalf("failed to insert orphaned mark: %v", err)
	}

	if err := checkMarksIntegrity(ctx); err == nil {
		t.Error("mark integrity should report orphaned marks")
	}
}

func TestCheckSettings_InvalidTimezone(t *testing.T) {
	ctx, store, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	if err := checkSettings(ctx); err != nil {
		t.Fatalf("default settings failed: %v", err)
	}
	if _, err := store.GetDB().Exec("UPDATE settings SET value = 'Nowhere/Land' WHERE key = 'timezone'"); err != nil {
		t.Fatal(err)
	}
	if err := checkSettings(ctx); err == nil {
		t.Error("settings check should reject an unknown timezone")
	}
}

func TestCheckClock(t *testing.T) {
	if err := checkClock(nil); err != nil {
		t.Errorf("clock check failed: %v", err)
	}
}
