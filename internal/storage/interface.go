package storage

import (
	"errors"
	"time"

	"github.com/julianstephens/cadence/internal/calendar"
	"github.com/julianstephens/cadence/internal/models"
)

var (
	// ErrNotFound is returned when a habit does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotInitialized is returned by Load when the store has never been
	// initialized.
	ErrNotInitialized = errors.New("storage not initialized, run 'cadence init' first")
)

// Provider is the habit registry. Implementations serialize writes, give the
// writer read-your-writes consistency and make ToggleMark atomic.
//
// Mark days are normalized to local noon in the store's calendar before they
// are persisted or compared.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	SetCalendar(calendar.Calendar)

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits
	AddHabit(models.Habit) error
	UpdateHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	// GetAllHabits returns habits ordered by start date, then name.
	GetAllHabits(includeArchived bool) ([]models.Habit, error)
	ArchiveHabit(id string) error
	UnarchiveHabit(id string) error
	// DeleteHabit removes the habit and all of its completion marks.
	DeleteHabit(id string) error

	// Completion marks
	// ToggleMark flips the mark for the day and reports whether the day is
	// now checked.
	ToggleMark(habitID string, day time.Time) (bool, error)
	SetMark(habitID string, day time.Time, checked bool) error
	IsMarked(habitID string, day time.Time) (bool, error)
	CountMarks(habitID string, r calendar.Range) (int, error)
	GetMarks(habitID string, r calendar.Range) ([]models.CompletionMark, error)

	// Bulk retrieval for migration between backends
	GetAllMarks() ([]models.CompletionMark, error)
	ImportMark(models.CompletionMark) error

	// Utils
	GetConfigPath() string
}
