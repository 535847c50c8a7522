package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/cli/backups"
	"github.com/julianstephens/cadence/internal/cli/habits"
	"github.com/julianstephens/cadence/internal/cli/settings"
	"github.com/julianstephens/cadence/internal/cli/system"
	"github.com/julianstephens/cadence/internal/cli/views"
	"github.com/julianstephens/cadence/internal/config"
	"github.com/julianstephens/cadence/internal/constants"
	cadenceerrors "github.com/julianstephens/cadence/internal/errors"
	"github.com/julianstephens/cadence/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Path to config.yaml." type:"path" default:"${config_path}"`
	DB      string `name:"db" help:"SQLite file path, PostgreSQL connection string, or 'keyring'. PostgreSQL passwords must NOT be embedded; use the OS keyring or .pgpass instead. Overrides the config file and CADENCE_DB."`
	Verbose bool   `short:"v" help:"Write debug logs to stderr."`

	Init     system.InitCmd     `cmd:"" help:"Initialize cadence storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Debug    system.DebugCmd    `cmd:"" help:"Debug commands for troubleshooting."`
	Validate system.ValidateCmd `cmd:"" help:"Check stored habits for conflicts."`

	Today views.TodayCmd `cmd:"" help:"Show the habits due today." default:"1"`
	Week  views.WeekCmd  `cmd:"" help:"Show a week of habits."`
	Month views.MonthCmd `cmd:"" help:"Show a month calendar of due habits."`
	Stats views.StatsCmd `cmd:"" help:"Show monthly completion statistics."`
	Due   views.DueCmd   `cmd:"" help:"List upcoming due days."`
	Tui   system.TuiCmd  `cmd:"" help:"Launch the interactive day and week view."`

	Mark     habits.MarkCmd       `cmd:"" help:"Toggle or set a habit's completion for a day."`
	Habit    habits.HabitCmd      `cmd:"" help:"Manage habits."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check whether the OS keyring is available."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
}

// Commands that manage the store themselves and must run before it is
// loaded or configured.
var selfLoading = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with calendar-aware recurrence rules"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": config.DefaultPath(),
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		cadenceerrors.Fatal(err)
	}
	if CLI.DB != "" {
		cfg.Database = CLI.DB
	}
	if CLI.Verbose {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: filepath.Dir(CLI.Config),
		LogDir:    cfg.LogDir,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	command := strings.Fields(ctx.Command())[0]
	appCtx := &cli.Context{}

	// Keyring commands must work while the keyring target is unusable.
	if command != "keyring" {
		store, err := cli.OpenStore(cfg.Database)
		if err != nil {
			cadenceerrors.Fatal(err)
		}
		appCtx.Store = store
		logger.Debug("Opened store", "target", store.GetConfigPath())

		if !selfLoading[command] {
			if err := store.Load(); err != nil {
				cadenceerrors.Fatal(err)
			}
			if err := appCtx.Configure(); err != nil {
				cadenceerrors.Fatal(err)
			}
		}
	}

	err = ctx.Run(appCtx)
	if err == nil && command == "init" {
		err = writeDefaultConfig(CLI.Config, cfg)
	}
	if appCtx.Store != nil {
		if closeErr := appCtx.Store.Close(); closeErr != nil {
			logger.Warn("Failed to close store", "error", closeErr)
		}
	}
	cadenceerrors.Fatal(err)
}

// writeDefaultConfig saves cfg on first init so later runs find the same
// database. An existing config file is left alone.
func writeDefaultConfig(path string, cfg config.Config) error {
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("Wrote config to: %s\n", path)
	return nil
}
