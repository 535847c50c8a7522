package habits

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/cli"
)

type MarkCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Date  string `help:"Day to mark: YYYY-MM-DD, today or yesterday (default: today)."`
	Set   bool   `help:"Mark the day done instead of toggling." xor:"mode"`
	Unset bool   `help:"Clear the day instead of toggling." xor:"mode"`
}

func (c *MarkCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}
	cal := ctx.Calendar()
	if day.After(ctx.Today()) {
		return fmt.Errorf("cannot mark %s: the day has not happened yet", cal.Format(day))
	}

	var checked bool
	switch {
	case c.Set, c.Unset:
		checked = c.Set
		err = ctx.Tracker.Set(habit, day, checked)
	default:
		checked, err = ctx.Tracker.Toggle(habit, day)
	}
	if err != nil {
		return err
	}

	if checked {
		fmt.Printf("Marked %s for %s\n", habit.Label(), cal.Format(day))
	} else {
		fmt.Printf("Unmarked %s for %s\n", habit.Label(), cal.Format(day))
	}
	if !ctx.Engine().IsDue(habit, day) {
		fmt.Println(cli.MutedStyle.Render(fmt.Sprintf("(%s is not due on %s)", habit.Name, cal.Format(day))))
	}
	return nil
}
