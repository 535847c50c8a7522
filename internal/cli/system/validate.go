package system

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/validation"
)

// ValidateCmd reports stored habits the editor would have rejected.
// Conflicts are printed, not returned as an error.
type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(true)
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}

	fmt.Println("Validating habits...")
	result := validation.New().ValidateHabits(habits)

	fmt.Println()
	fmt.Println(result.FormatReport())
	return nil
}
