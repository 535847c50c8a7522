package habits

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/calendar"
	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/validation"
)

// habitForm holds the editor fields as text.
type habitForm struct {
	Name  string
	Emoji string
	Kind  string
	Param string
	Start string
}

var cadenceKinds = []huh.Option[string]{
	huh.NewOption("Daily", "daily"),
	huh.NewOption("Every N days", "every"),
	huh.NewOption("On weekdays", "weekdays"),
	huh.NewOption("Every N weeks", "weekly"),
	huh.NewOption("Monthly", "monthly"),
}

func formFromHabit(h models.Habit, cal calendar.Calendar) habitForm {
	fm := habitForm{Name: h.Name, Emoji: h.Emoji, Kind: "daily", Start: cal.Format(h.StartDate)}
	if h.Cadence != nil {
		fm.Kind, fm.Param, _ = strings.Cut(h.Cadence.String(), ":")
	}
	return fm
}

// cadence parses the kind and parameter fields.
func (fm habitForm) cadence() (models.Cadence, error) {
	spec := fm.Kind
	if p := strings.TrimSpace(fm.Param); p != "" {
		spec += ":" + p
	}
	c, err := models.ParseCadence(spec)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateCadence(c); err != nil {
		return nil, err
	}
	return c, nil
}

// apply copies the form onto habit.
func (fm habitForm) apply(habit models.Habit, cal calendar.Calendar) (models.Habit, error) {
	c, err := fm.cadence()
	if err != nil {
		return habit, err
	}
	start, err := cal.Parse(strings.TrimSpace(fm.Start))
	if err != nil {
		return habit, err
	}
	habit.Name = validation.SanitizeText(fm.Name)
	habit.Emoji = strings.TrimSpace(fm.Emoji)
	habit.StartDate = start
	habit.Cadence = c
	return habit, nil
}

func paramDescription(kind string) string {
	switch kind {
	case "every":
		return "Days between occurrences, at least 2."
	case "weekdays":
		return "Comma-separated weekdays, e.g. mon,wed,fri. Empty means Monday to Friday."
	case "weekly":
		return "Weeks between occurrences. Empty means every week."
	case "monthly":
		return "Day of month (e.g. 15), or occurrence and weekday (e.g. 2-tue, last-fri)."
	default:
		return "Not used."
	}
}

func newHabitForm(fm *habitForm, cal calendar.Calendar) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Emoji").
				Description("Optional.").
				Value(&fm.Emoji),
			huh.NewSelect[string]().
				Title("Cadence").
				Options(cadenceKinds...).
				Value(&fm.Kind),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Cadence parameter").
				DescriptionFunc(func() string { return paramDescription(fm.Kind) }, &fm.Kind).
				Value(&fm.Param).
				Validate(func(string) error {
					_, err := fm.cadence()
					return err
				}),
			huh.NewInput().
				Title("Start date").
				Description("YYYY-MM-DD").
				Value(&fm.Start).
				Validate(func(s string) error {
					_, err := cal.Parse(strings.TrimSpace(s))
					return err
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

type HabitNewCmd struct{}

func (c *HabitNewCmd) Run(ctx *cli.Context) error {
	cal := ctx.Calendar()
	fm := habitForm{Kind: "daily", Start: cal.Format(ctx.Today())}
	if err := newHabitForm(&fm, cal).Run(); err != nil {
		return err
	}

	habit, err := fm.apply(models.Habit{ID: uuid.New().String()}, cal)
	if err != nil {
		return err
	}
	if err := addHabit(ctx, habit); err != nil {
		return err
	}
	fmt.Printf("Added habit: %s (%s)\n", habit.Label(), habit.Cadence.Describe())
	return nil
}

type HabitEditCmd struct {
	Habit   string  `arg:"" help:"Habit name or ID to edit."`
	Name    *string `help:"New name."`
	Emoji   *string `help:"New emoji; empty to clear."`
	Cadence *string `short:"c" help:"New cadence, in the same syntax as 'habit add'."`
	Start   *string `help:"New start date in YYYY-MM-DD format."`
}

func (c *HabitEditCmd) hasFlags() bool {
	return c.Name != nil || c.Emoji != nil || c.Cadence != nil || c.Start != nil
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	cal := ctx.Calendar()
	fm := formFromHabit(habit, cal)

	if c.hasFlags() {
		if c.Name != nil {
			fm.Name = *c.Name
		}
		if c.Emoji != nil {
			fm.Emoji = *c.Emoji
		}
		if c.Cadence != nil {
			fm.Kind, fm.Param, _ = strings.Cut(strings.TrimSpace(*c.Cadence), ":")
		}
		if c.Start != nil {
			fm.Start = *c.Start
		}
	} else if err := newHabitForm(&fm, cal).Run(); err != nil {
		return err
	}

	updated, err := fm.apply(habit, cal)
	if err != nil {
		return err
	}
	if err := validation.ValidateHabit(updated); err != nil {
		return err
	}
	if err := checkNameFree(ctx, updated.Name, updated.ID); err != nil {
		return err
	}
	if err := ctx.Store.UpdateHabit(updated); err != nil {
		return err
	}

	fmt.Printf("Updated habit: %s (%s)\n", updated.Label(), updated.Cadence.Describe())
	if !cal.SameDay(habit.StartDate, updated.StartDate) {
		fmt.Println(cli.WarningStyle.Render(fmt.Sprintf("Start date moved from %s; earlier marks are kept.", cal.Format(habit.StartDate))))
	}
	return nil
}
