package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/recurrence"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to migrate data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized cadence storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Migrating data from: %s\n", c.Source)
		if err := c.migrateData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}

	return ctx.Configure()
}

// reset deletes the SQLite database file so Init starts from scratch.
func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return fmt.Errorf("--force is only supported for SQLite databases")
	}

	dbPath := ctx.Store.GetConfigPath()
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	if c.Source != "" {
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
		}
		fmt.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// migrateData copies settings, habits and marks from another store.
func (c *InitCmd) migrateData(ctx *cli.Context, source string) error {
	sourceStore, err := cli.OpenStore(source)
	if err != nil {
		return err
	}
	if err := sourceStore.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer sourceStore.Close()

	fmt.Println("  Migrating settings...")
	settings, err := sourceStore.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}
	if err := alignCalendars(ctx.Store, sourceStore, settings); err != nil {
		return err
	}

	fmt.Println("  Migrating habits...")
	habits, err := sourceStore.GetAllHabits(true)
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	for _, habit := range habits {
		if habit.Cadence == nil {
			fmt.Printf("    Skipping %q: malformed cadence\n", habit.Name)
			continue
		}
		if err := ctx.Store.AddHabit(habit); err != nil {
			return fmt.Errorf("failed to add habit %s: %w", habit.ID, err)
		}
	}
	fmt.Printf("    Migrated %d habits\n", len(habits))

	fmt.Println("  Migrating completion marks...")
	marks, err := sourceStore.GetAllMarks()
	if err != nil {
		return fmt.Errorf("failed to get marks from source: %w", err)
	}
	imported := 0
	for _, mark := range marks {
		if _, err := ctx.Store.GetHabit(mark.HabitID); err != nil {
			continue
		}
		if err := ctx.Store.ImportMark(mark); err != nil {
			return fmt.Errorf("failed to add mark %s: %w", mark.ID, err)
		}
		imported++
	}
	fmt.Printf("    Migrated %d completion marks\n", imported)

	return nil
}

// alignCalendars makes both stores read and write mark days in the calendar
// of the migrated settings.
func alignCalendars(dst, src storage.Provider, settings models.Settings) error {
	cfg, err := recurrence.ConfigFromSettings(settings)
	if err != nil {
		return fmt.Errorf("invalid source settings: %w", err)
	}
	dst.SetCalendar(cfg.Calendar)
	src.SetCalendar(cfg.Calendar)
	return nil
}
