package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage"
)

func (s *Store) AddHabit(habit models.Habit) error {
	return s.UpdateHabit(habit)
}

// UpdateHabit inserts the habit or replaces every field of the existing row
// with the same id.
func (s *Store) UpdateHabit(habit models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	args, err := storage.HabitArgs(s.cal, habit)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO habits (`+storage.HabitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			emoji = excluded.emoji,
			start_date = excluded.start_date,
			archived = excluded.archived,
			cadence_kind = excluded.cadence_kind,
			cadence_n = excluded.cadence_n,
			weekdays_mask = excluded.weekdays_mask,
			monthly_rule = excluded.monthly_rule,
			day_of_month = excluded.day_of_month,
			nth = excluded.nth,
			weekday = excluded.weekday`,
		args...)
	if err != nil {
		return fmt.Errorf("failed to save habit %s: %w", habit.ID, err)
	}
	return nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow("SELECT "+storage.HabitColumns+" FROM habits WHERE id = ?", id)
	h, err := storage.ScanHabit(row, s.calendar())
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.NotFound("habit", id)
	}
	return h, err
}

// GetHabitByName finds a habit by case-insensitive name, preferring active
// habits over archived ones. Names are folded in Go because SQLite's lower()
// only folds ASCII.
func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	rows, err := s.db.Query(`
		SELECT ` + storage.HabitColumns + ` FROM habits
		ORDER BY archived, start_date`)
	if err != nil {
		return models.Habit{}, err
	}
	defer rows.Close()

	cal := s.calendar()
	for rows.Next() {
		h, err := storage.ScanHabit(rows, cal)
		if err != nil {
			return models.Habit{}, err
		}
		if strings.ToLower(h.Name) == key {
			return h, nil
		}
	}
	if err := rows.Err(); err != nil {
		return models.Habit{}, err
	}
	return models.Habit{}, storage.NotFound("habit", name)
}

func (s *Store) GetAllHabits(includeArchived bool) ([]models.Habit, error) {
	exists, err := s.tableExists("habits")
	if err != nil || !exists {
		return []models.Habit{}, err
	}

	query := "SELECT " + storage.HabitColumns + " FROM habits"
	if !includeArchived {
		query += " WHERE archived = 0"
	}
	query += " ORDER BY start_date, name"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cal := s.calendar()
	habits := []models.Habit{}
	for rows.Next() {
		h, err := storage.ScanHabit(rows, cal)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) ArchiveHabit(id string) error {
	return s.setArchived(id, true)
}

func (s *Store) UnarchiveHabit(id string) error {
	return s.setArchived(id, false)
}

func (s *Store) setArchived(id string, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec("UPDATE habits SET archived = ? WHERE id = ? AND archived = ?", archived, id, !archived)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if archived {
			return fmt.Errorf("habit not found or already archived: %w", storage.ErrNotFound)
		}
		return fmt.Errorf("habit not found or not archived: %w", storage.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteHabit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec("DELETE FROM habits WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return storage.NotFound("habit", id)
	}
	return nil
}
