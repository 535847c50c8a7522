package sqlite

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
// The lookup and the insert or delete run in one transaction under the
// write lock.
func (s *Store) ToggleMark(habitID string, day time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storage.MarkKey(s.cal, day)

	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRow("SELECT id FROM completion_marks WHERE habit_id = ? AND date = ?", habitID, key).Scan(&id)
	checked := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.Exec("INSERT INTO completion_marks (id, habit_id, date, checked) VALUES (?, ?, ?, 1)",
			uuid.New().String(), habitID, key); err != nil {
			return false, fmt.Errorf("failed to check habit %s: %w", habitID, err)
		}
		checked = true
	case err != nil:
		return false, err
	default:
		if _, err := tx.Exec("DELETE FROM completion_marks WHERE id = ?", id); err != nil {
			return false, fmt.Errorf("failed to uncheck habit %s: %w", habitID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return checked, nil
}

// SetMark makes the day checked or unchecked. Setting the current state is a
// no-op.
func (s *Store) SetMark(habitID string, day time.Time, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storage.MarkKey(s.cal, day)
	if checked {
		_, err := s.db.Exec(`
			INSERT INTO completion_marks (id, habit_id, date, checked) VALUES (?, ?, ?, 1)
			ON CONFLICT(habit_id, date) DO NOTHING`,
			uuid.New().String(), habitID, key)
		return err
	}
	_, err := s.db.Exec("DELETE FROM completion_marks WHERE habit_id = ? AND date = ?", habitID, key)
	return err
}

func (s *Store) IsMarked(habitID string, day time.Time) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM completion_marks WHERE habit_id = ? AND date = ?",
		habitID, storage.MarkKey(s.calendar(), day)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountMarks counts checked days of the habit within r, both ends inclusive.
func (s *Store) CountMarks(habitID string, r calendar.Range) (int, error) {
	lo, hi := storage.MarkBounds(s.calendar(), r)
	if lo > hi {
		return 0, nil
	}

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM completion_marks WHERE habit_id = ? AND date BETWEEN ? AND ?",
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
		WHERE habit_id = ? AND date BETWEEN ? AND ?
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

// ImportMark stores a mark as-is, keeping its id and date. Duplicates of an
// existing (habit, day) pair are ignored.
func (s *Store) ImportMark(m models.CompletionMark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO completion_marks (id, habit_id, date, checked) VALUES (?, ?, ?, 1)
		ON CONFLICT DO NOTHING`,
		m.ID, m.HabitID, storage.MarkKey(s.cal, m.Date))
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
