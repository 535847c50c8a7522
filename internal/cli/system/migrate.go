package system

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/cli"
)

// schemaStore is implemented by the SQL-backed stores.
type schemaStore interface {
	Migrate(logFn func(string)) (int, error)
	SchemaVersions() (current, latest int, err error)
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	store, ok := ctx.Store.(schemaStore)
	if !ok {
		return fmt.Errorf("migrate is not supported for %s", ctx.Store.GetConfigPath())
	}

	count, err := store.Migrate(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
