package habits

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/calendar"
	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage"
	"github.com/julianstephens/cadence/internal/validation"
)

// nextDueHorizon bounds the NextDue search in days.
const nextDueHorizon = 400

type HabitCmd struct {
	Add       HabitAddCmd       `cmd:"" help:"Add a new habit."`
	New       HabitNewCmd       `cmd:"" help:"Add a habit with the interactive editor."`
	Edit      HabitEditCmd      `cmd:"" help:"Edit an existing habit."`
	List      HabitListCmd      `cmd:"" help:"List habits."`
	Show      HabitShowCmd      `cmd:"" help:"Show a habit's details and completion."`
	Archive   HabitArchiveCmd   `cmd:"" help:"Archive a habit, keeping its history."`
	Unarchive HabitUnarchiveCmd `cmd:"" help:"Unarchive a habit."`
	Delete    HabitDeleteCmd    `cmd:"" help:"Delete a habit and all of its marks."`
}

type HabitAddCmd struct {
	Name    string `arg:"" help:"Habit name."`
	Cadence string `short:"c" help:"Cadence: daily, every:N, weekdays[:mon,wed], weekly[:N], monthly:D, monthly:N-wd or monthly:last-wd." default:"daily"`
	Start   string `help:"Start date in YYYY-MM-DD format (default: today)."`
	Emoji   string `help:"Emoji shown before the name."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	cadence, err := models.ParseCadence(c.Cadence)
	if err != nil {
		return err
	}
	start, err := ctx.ParseDay(c.Start)
	if err != nil {
		return err
	}

	habit := models.Habit{
		ID:        uuid.New().String(),
		Name:      validation.SanitizeText(c.Name),
		Emoji:     strings.TrimSpace(c.Emoji),
		StartDate: start,
		Cadence:   cadence,
	}
	if err := addHabit(ctx, habit); err != nil {
		return err
	}
	fmt.Printf("Added habit: %s (%s)\n", habit.Label(), cadence.Describe())
	return nil
}

// addHabit validates habit and stores it unless an active habit already
// uses the name.
func addHabit(ctx *cli.Context, habit models.Habit) error {
	if err := validation.ValidateHabit(habit); err != nil {
		return err
	}
	if err := checkNameFree(ctx, habit.Name, ""); err != nil {
		return err
	}
	return ctx.Store.AddHabit(habit)
}

// checkNameFree fails when an active habit other than selfID has name.
func checkNameFree(ctx *cli.Context, name, selfID string) error {
	existing, err := ctx.Store.GetHabitByName(name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID && !existing.Archived:
		return fmt.Errorf("habit with name %q already exists", name)
	}
	return nil
}

type HabitListCmd struct {
	Archived bool `help:"Include archived habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(c.Archived)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}
	fmt.Println(renderList(habits, ctx.Calendar()))
	return nil
}

func renderList(habits []models.Habit, cal calendar.Calendar) string {
	rows := make([][]string, 0, len(habits))
	for _, h := range habits {
		status := "active"
		if h.Archived {
			status = "archived"
		}
		rows = append(rows, []string{h.Label(), describe(h.Cadence), cal.Format(h.StartDate), status, shortID(h.ID)})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(cli.BorderStyle).
		Headers("HABIT", "CADENCE", "START", "STATUS", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cli.HeaderStyle
			}
			if rows[row][3] == "archived" {
				return cli.CellStyle.Inherit(cli.MutedStyle)
			}
			return cli.CellStyle
		}).
		String()
}

func describe(c models.Cadence) string {
	if c == nil {
		return "invalid"
	}
	return c.Describe()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cal := ctx.Calendar()
	today := ctx.Today()
	fmt.Println(cli.TitleStyle.Render(habit.Label()))
	fmt.Printf("  ID:       %s\n", habit.ID)
	fmt.Printf("  Cadence:  %s\n", describe(habit.Cadence))
	fmt.Printf("  Start:    %s\n", cal.Format(habit.StartDate))
	if habit.Archived {
		fmt.Println("  Status:   archived")
		return nil
	}
	fmt.Println("  Status:   active")

	if next, ok := ctx.Engine().NextDue(habit, today, nextDueHorizon); ok {
		fmt.Printf("  Next due: %s\n", nextDueLabel(cal, next, today))
	} else {
		fmt.Println("  Next due: never")
	}

	month := ctx.Tracker.Counts(habit, cal.MonthRange(today.Year(), today.Month()))
	fmt.Printf("  This month: %d / %d\n", month.Checked, month.Expected)
	if pct, ok := ctx.Tracker.Percent(habit, settings.StatsWindowDays, today); ok {
		fmt.Printf("  Last %d days: %.0f%%\n", settings.StatsWindowDays, pct)
	} else {
		fmt.Printf("  Last %d days: nothing due\n", settings.StatsWindowDays)
	}
	return nil
}

func nextDueLabel(cal calendar.Calendar, next, today time.Time) string {
	switch days := cal.DaysBetween(today, next); days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("%s (in %d days)", cal.Format(next), days)
	}
}

type HabitArchiveCmd struct {
	Habit string `arg:"" help:"Habit name or ID to archive."`
}

func (c *HabitArchiveCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	if habit.Archived {
		return fmt.Errorf("habit %q is already archived", habit.Name)
	}
	if err := ctx.Store.ArchiveHabit(habit.ID); err != nil {
		return err
	}
	fmt.Printf("Archived habit: %s\n", habit.Name)
	return nil
}

type HabitUnarchiveCmd struct {
	Habit string `arg:"" help:"Habit name or ID to unarchive."`
}

func (c *HabitUnarchiveCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	if !habit.Archived {
		return fmt.Errorf("habit %q is not archived", habit.Name)
	}
	if err := checkNameFree(ctx, habit.Name, habit.ID); err != nil {
		return err
	}
	if err := ctx.Store.UnarchiveHabit(habit.ID); err != nil {
		return err
	}
	fmt.Printf("Unarchived habit: %s\n", habit.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or ID to delete."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		prompt := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q and all of its marks?", habit.Name)).
			Description("Archive the habit instead to keep its history.").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed)
		if err := prompt.Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.DeleteHabit(habit.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted habit: %s\n", habit.Name)
	return nil
}
