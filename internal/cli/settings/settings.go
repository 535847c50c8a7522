package settings

import (
	"fmt"
	"strings"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/validation"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone    *string `help:"IANA timezone days are evaluated in, or Local."`
	Shortfall   *string `help:"How day-of-month cadences treat short months: fallback or skip."`
	StatsWindow *int    `help:"Days covered by completion percentages."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		fmt.Println("Current Settings:")
		fmt.Printf("  Timezone:         %s\n", settings.Timezone)
		fmt.Printf("  Shortfall Policy: %s\n", settings.ShortfallPolicy)
		fmt.Printf("  Stats Window:     %d days\n", settings.StatsWindowDays)
		return nil
	}

	updated := false
	if c.Timezone != nil {
		settings.Timezone = strings.TrimSpace(*c.Timezone)
		updated = true
	}
	if c.Shortfall != nil {
		settings.ShortfallPolicy = constants.ShortfallPolicy(strings.ToLower(strings.TrimSpace(*c.Shortfall)))
		updated = true
	}
	if c.StatsWindow != nil {
		settings.StatsWindowDays = *c.StatsWindow
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := validation.ValidateSettings(settings); err != nil {
		return err
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if err := ctx.Configure(); err != nil {
		return err
	}
	fmt.Println("Settings updated successfully.")
	return nil
}
