package system

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/cadence/internal/cli"
)

type DebugCmd struct {
	DBPath    *DebugDBPathCmd    `cmd:"" help:"Show database path."`
	DumpHabit *DebugDumpHabitCmd `cmd:"" help:"Dump a habit and its marks as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpHabitCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

// habitDump is the machine-readable form of a habit. The cadence uses the
// same syntax as --cadence.
type habitDump struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Emoji       string   `json:"emoji,omitempty"`
	StartDate   string   `json:"start_date"`
	Archived    bool     `json:"archived"`
	Cadence     string   `json:"cadence"`
	Description string   `json:"description"`
	Marks       []string `json:"marks"`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.ResolveHabit(cmd.Habit)
	if err != nil {
		return err
	}
	cal := ctx.Calendar()

	dump := habitDump{
		ID:          habit.ID,
		Name:        habit.Name,
		Emoji:       habit.Emoji,
		StartDate:   cal.Format(habit.StartDate),
		Archived:    habit.Archived,
		Cadence:     "invalid",
		Description: "malformed cadence, never due",
		Marks:       []string{},
	}
	if habit.Cadence != nil {
		dump.Cadence = habit.Cadence.String()
		dump.Description = habit.Cadence.Describe()
	}

	marks, err := ctx.Store.GetAllMarks()
	if err != nil {
		return fmt.Errorf("failed to get marks: %w", err)
	}
	for _, m := range marks {
		if m.HabitID == habit.ID {
			dump.Marks = append(dump.Marks, cal.Format(m.Date))
		}
	}

	return printJSON(dump)
}

func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}
