package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/cadence/internal/calendar"
	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/models"
)

const monthArgFormat = "2006-01"

type TodayCmd struct {
	Date string `help:"Day to show: YYYY-MM-DD, yesterday or tomorrow (default: today)."`
}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}
	fmt.Println(renderDay(ctx.Calendar(), day, dayItems(ctx, day)))
	return nil
}

func dayItems(ctx *cli.Context, day time.Time) []dayItem {
	due := ctx.Tracker.DueHabits(day)
	items := make([]dayItem, 0, len(due))
	for _, h := range due {
		items = append(items, dayItem{Label: h.Label(), Checked: ctx.Tracker.IsChecked(h, day)})
	}
	return items
}

type WeekCmd struct {
	Date   string `help:"Any day of the week to show (default: today)."`
	Offset int    `short:"o" help:"Weeks to move from that day, e.g. -1 for the previous week."`
}

func (c *WeekCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}
	cal := ctx.Calendar()
	day = cal.AddDays(day, 7*c.Offset)
	fmt.Println(renderWeek(cal, ctx.Tracker.Week(day)))
	return nil
}

type MonthCmd struct {
	Month string `arg:"" optional:"" help:"Month to show as YYYY-MM (default: current month)."`
	Day   int    `help:"Also list the habits due on this day of the month."`
}

func (c *MonthCmd) Run(ctx *cli.Context) error {
	cal := ctx.Calendar()
	year, month, err := parseMonth(cal, c.Month, ctx.Today())
	if err != nil {
		return err
	}

	fmt.Println(renderMonth(cal, year, month, ctx.Tracker.Month(year, month), ctx.Today()))

	if c.Day != 0 {
		if c.Day < 1 || c.Day > cal.MonthLength(year, month) {
			return fmt.Errorf("day %d is not in %s", c.Day, cal.Date(year, month, 1).Format("January 2006"))
		}
		day := cal.Date(year, month, c.Day)
		fmt.Println()
		fmt.Println(renderDay(cal, day, dayItems(ctx, day)))
	}
	return nil
}

// parseMonth reads YYYY-MM, defaulting to the month of today.
func parseMonth(cal calendar.Calendar, s string, today time.Time) (int, time.Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		local := today.In(cal.Location())
		return local.Year(), local.Month(), nil
	}
	t, err := time.Parse(monthArgFormat, s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (expected YYYY-MM): %w", s, err)
	}
	return t.Year(), t.Month(), nil
}

type StatsCmd struct {
	Year int `arg:"" optional:"" help:"Year to show (default: current year)."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	today := ctx.Today()
	year := c.Year
	if year == 0 {
		year = today.Year()
	}
	if year > today.Year() {
		return fmt.Errorf("no statistics for %d: the year has not started yet", year)
	}

	fmt.Println(renderStats(year, ctx.Tracker.MonthlyStats(year, today)))

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	habits := ctx.Tracker.Habits(false)
	if len(habits) == 0 {
		return nil
	}
	lines := make([]windowLine, 0, len(habits))
	for _, h := range habits {
		pct, ok := ctx.Tracker.Percent(h, settings.StatsWindowDays, today)
		lines = append(lines, windowLine{Label: h.Label(), Percent: pct, OK: ok})
	}
	fmt.Println()
	fmt.Println(renderWindow(settings.StatsWindowDays, lines))
	return nil
}

type DueCmd struct {
	From  string `help:"First day (default: today)."`
	Days  int    `short:"n" help:"Number of days to cover." default:"7"`
	Habit string `help:"Only show this habit (name or ID)."`
}

func (c *DueCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	from, err := ctx.ParseDay(c.From)
	if err != nil {
		return err
	}
	cal := ctx.Calendar()
	r := calendar.NewRange(from, cal.EndOfDay(cal.AddDays(from, c.Days-1)))

	var habits []models.Habit
	if c.Habit != "" {
		h, err := ctx.ResolveHabit(c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	} else {
		habits = ctx.Tracker.Habits(false)
	}

	lines := make([]dueLine, 0, len(habits))
	for _, h := range habits {
		lines = append(lines, dueLine{Label: h.Label(), Dates: ctx.Engine().DatesDue(h, r)})
	}
	fmt.Println(renderDue(cal, r, lines))
	return nil
}
