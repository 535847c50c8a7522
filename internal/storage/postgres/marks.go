package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/calendar"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/storage"
)

// ToggleMark checks the day when it is unchecked and unchecks it otherwise.
// A transaction-scoped advisory lock on (habit, day) serializes concurrent
// toggles across processes.
func (s *Store) ToggleMark(habitID string, day time.Time) (bool, error) {
	key := storage.MarkKey(s.calendar(), day)

	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended($1, 0))",
		fmt.Sprintf("%s:%d", habitID, key)); err != nil {
		return false, fmt.Errorf("failed to lock mark: %w", err)
	}

	var id string
	err = tx.QueryRow("SELECT id FROM completion_marks WHERE habit_id = $1 AND date = $2", habitID, key).Scan(&id)
	checked := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.Exec("INSERT INTO completion_marks (id, habit_id, date, checked) VALUES ($1, $2, $3, TRUE)",
			uuid.New().String(), habitID, key); err != nil {
			return false, fmt.Errorf("failed to check habit %s: %w", habitID, err)
		}
		checked = true
	case err != nil:
		return false, err
	default:
		if _, err := tx.Exec("DELETE FROM completion_marks WHERE id = $1", id); err != nil {
			return false, fmt.Errorf("failed to uncheck habit %s: %w", habitID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return checked, nil
}

func (s *Store) SetMark(habitID string, day time.Time, checked bool) error {
	key := storage.MarkKey(s.calendar(), day)
	if checked {
		_, err := s.db.Exec(`
			INSERT INTO completion_marks (id, habit_id, date, checked) VALUES ($1, $2, $3, TRUE)
			ON CONFLICT (habit_id, date) DO NOTHING`,
			uuid.New().String(), habitID, key)
		return err
	}
	_, err := s.db.Exec("DELETE FROM completion_marks WHERE habit_id = $1 AND date = $2", habitID, key)
	return err
}

func (s *Store) IsMarked(habitID string, day time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS (SELECT 1 FROM completion_marks WHERE habit_id = $1 AND date = $2)",
		habitID, storage.MarkKey(s.calendar(), day)).Scan(&exists)
	return exists, err
}

func (s *Store) CountMarks(habitID string, r calendar.Range) (int, error) {
	lo, hi := storage.MarkBounds(s.calendar(), r)
	if lo > hi {
		return 0, nil
	}
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM completion_marks WHERE habit_id = $1 AND date BETWEEN $2 AND $3",
		habitID, lo, hi).Scan(&count)
	return count, err
}

func (s *Store) GetMarks(habitID string, r calendar.Range) ([]models.CompletionMark, error) {
	cal := s.calendar()
	lo, hi := storage.MarkBounds(cal, r)
	if lo > hi {
		return []models.CompletionMark{}, nil
	}
	rows, err := s.db.Query(`
		SELECT `+storage.MarkColumns+` FROM completion_marks
		WHERE habit_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date`, habitID, lo, hi)
	if err != nil {
		return nil, err
	}
	return scanMarks(rows, cal)
}

func (s *Store) GetAllMarks() ([]models.CompletionMark, error) {
	rows, err := s.db.Query("SELECT " + storage.MarkColumns + " FROM completion_marks ORDER BY habit_id, date")
	if err != nil {
		return nil, err
	}
	return scanMarks(rows, s.calendar())
}

func (s *Store) ImportMark(m models.CompletionMark) error {
	_, err := s.db.Exec(`
		INSERT INTO completion_marks (id, habit_id, date, checked) VALUES ($1, $2, $3, TRUE)
		ON CONFLICT DO NOTHING`,
		m.ID, m.HabitID, storage.MarkKey(s.calendar(), m.Date))
	return err
}

func scanMarks(rows *sql.Rows, cal calendar.Calendar) ([]models.CompletionMark, error) {
	defer rows.Close()

	marks := []models.CompletionMark{}
	for rows.Next() {
		m, err := storage.ScanMark(rows, cal)
		if err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	return marks, rows.Err()
}
