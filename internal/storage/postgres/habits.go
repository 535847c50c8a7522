package postgres

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

func (s *Store) UpdateHabit(habit models.Habit) error {
	args, err := storage.HabitArgs(s.calendar(), habit)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO habits (`+storage.HabitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			emoji = EXCLUDED.emoji,
			start_date = EXCLUDED.start_date,
			archived = EXCLUDED.archived,
			cadence_kind = EXCLUDED.cadence_kind,
			cadence_n = EXCLUDED.cadence_n,
			weekdays_mask = EXCLUDED.weekdays_mask,
			monthly_rule = EXCLUDED.monthly_rule,
			day_of_month = EXCLUDED.day_of_month,
			nth = EXCLUDED.nth,
			weekday = EXCLUDED.weekday`,
		args...)
	if err != nil {
		return fmt.Errorf("failed to save habit %s: %w", habit.ID, err)
	}
	return nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow("SELECT "+storage.HabitColumns+" FROM habits WHERE id = $1", id)
	h, err := storage.ScanHabit(row, s.calendar())
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.NotFound("habit", id)
	}
	return h, err
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT `+storage.HabitColumns+` FROM habits
		WHERE lower(name) = $1
		ORDER BY archived, start_date
		LIMIT 1`, strings.ToLower(strings.TrimSpace(name)))
	h, err := storage.ScanHabit(row, s.calendar())
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.NotFound("habit", name)
	}
	return h, err
}

func (s *Store) GetAllHabits(includeArchived bool) ([]models.Habit, error) {
	query := "SELECT " + storage.HabitColumns + " FROM habits"
	if !includeArchived {
		query += " WHERE NOT archived"
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
	result, err := s.db.Exec("UPDATE habits SET archived = $1 WHERE id = $2 AND archived = $3", archived, id, !archived)
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
	result, err := s.db.Exec("DELETE FROM habits WHERE id = $1", id)
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
