package system

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
)

func TestMigrateCmd_UpToDate(t *testing.T) {
	ctx, _, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Errorf("migrate on an up-to-date database failed: %v", err)
	}
}

func TestMigrateCmd_AppliesPending(t *testing.T) {
	ctx, store, cleanup := setupTestDoctorDB(t)
	defer cleanup()

	_, latest, err := store.SchemaVersions()
	if err != nil {
		t.Fatal(err)
	}
	db := store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
		t.Fatal(err)
	}

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	current, _, err := store.SchemaVersions()
	if err != nil {
		t.Fatal(err)
	}
	if current != latest {
		t.Errorf("schema version after migrate = %d, want %d", current, latest)
	}
}

func TestMigrateCmd_Uninitialized(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "missing.db"))
	defer store.Close()

	if err := (&MigrateCmd{}).Run(&cli.Context{Store: store}); err == nil {
		t.Error("migrate should fail when the database is not initialized")
	}
}
