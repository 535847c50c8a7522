package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/cadence/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
	ConflictMalformedCadence   ConflictType = "malformed_cadence"
	ConflictInvalidHabit       ConflictType = "invalid_habit"
)

// Conflict represents a problem detected across stored habits
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // Habit names involved
	HabitIDs    []string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var report strings.Builder
	report.WriteString("Conflicts detected:\n")
	for _, conflict := range vr.Conflicts {
		fmt.Fprintf(&report, "- %s\n", conflict.Description)
	}
	return report.String()
}

// Validator checks stored habits for problems the editor would have rejected
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateHabits checks habits for duplicate names among active habits and
// for cadences that are malformed or out of range.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	nameIDs := make(map[string][]string)
	for _, h := range habits {
		if h.Archived || h.Name == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(h.Name))
		nameIDs[key] = append(nameIDs[key], h.ID)
	}

	names := make([]string, 0, len(nameIDs))
	for name := range nameIDs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ids := nameIDs[name]
		if len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateHabitName,
				Description: fmt.Sprintf("Duplicate habit name: %q (IDs: %v)", name, ids),
				Items:       []string{name},
				HabitIDs:    ids,
			})
		}
	}

	for _, h := range habits {
		if h.Cadence == nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictMalformedCadence,
				Description: fmt.Sprintf("Habit %q has a malformed cadence and is never due", h.Name),
				Items:       []string{h.Name},
				HabitIDs:    []string{h.ID},
			})
			continue
		}
		if err := ValidateHabit(h); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidHabit,
				Description: fmt.Sprintf("Habit %q: %v", h.Name, err),
				Items:       []string{h.Name},
				HabitIDs:    []string{h.ID},
			})
		}
	}

	return result
}
