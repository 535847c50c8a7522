package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/cadence/internal/calendar"
	"github.com/julianstephens/cadence/internal/models"
)

// HabitColumns lists the habits table columns in the order ScanHabit and
// HabitArgs use.
const HabitColumns = "id, name, emoji, start_date, archived, cadence_kind, cadence_n, weekdays_mask, monthly_rule, day_of_month, nth, weekday"

// MarkColumns lists the completion_marks columns in the order ScanMark uses.
const MarkColumns = "id, habit_id, date, checked"

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// HabitArgs flattens h into query arguments matching HabitColumns. The start
// date is stored as the epoch seconds of its local midnight.
func HabitArgs(cal calendar.Calendar, h models.Habit) ([]any, error) {
	rec, err := models.EncodeCadence(h.Cadence)
	if err != nil {
		return nil, err
	}
	return []any{
		h.ID,
		h.Name,
		h.Emoji,
		cal.StartOfDay(h.StartDate).Unix(),
		h.Archived,
		rec.Kind,
		nullInt(rec.N),
		nullInt(rec.WeekdaysMask),
		nullInt(rec.MonthlyRule),
		nullInt(rec.DayOfMonth),
		nullInt(rec.Nth),
		nullInt(rec.Weekday),
	}, nil
}

// ScanHabit reads one habits row selected with HabitColumns. A malformed
// cadence decodes to nil rather than failing the scan.
func ScanHabit(sc Scanner, cal calendar.Calendar) (models.Habit, error) {
	var (
		h         models.Habit
		startDate int64
		rec       models.CadenceRecord
		n, mask   sql.NullInt64
		rule, dom sql.NullInt64
		nth, wd   sql.NullInt64
	)
	if err := sc.Scan(&h.ID, &h.Name, &h.Emoji, &startDate, &h.Archived, &rec.Kind, &n, &mask, &rule, &dom, &nth, &wd); err != nil {
		return models.Habit{}, err
	}
	rec.N = intPtr(n)
	rec.WeekdaysMask = intPtr(mask)
	rec.MonthlyRule = intPtr(rule)
	rec.DayOfMonth = intPtr(dom)
	rec.Nth = intPtr(nth)
	rec.Weekday = intPtr(wd)

	h.StartDate = time.Unix(startDate, 0).In(cal.Location())
	h.Cadence = models.DecodeCadence(rec)
	return h, nil
}

// ScanMark reads one completion_marks row selected with MarkColumns.
func ScanMark(sc Scanner, cal calendar.Calendar) (models.CompletionMark, error) {
	var (
		m    models.CompletionMark
		date int64
	)
	if err := sc.Scan(&m.ID, &m.HabitID, &date, &m.Checked); err != nil {
		return models.CompletionMark{}, err
	}
	m.Date = time.Unix(date, 0).In(cal.Location())
	return m, nil
}

// MarkKey returns the persisted key of a day: epoch seconds of local noon.
func MarkKey(cal calendar.Calendar, day time.Time) int64 {
	return cal.NormalizeToNoon(day).Unix()
}

// MarkBounds returns the inclusive persisted keys covering r.
func MarkBounds(cal calendar.Calendar, r calendar.Range) (int64, int64) {
	return MarkKey(cal, r.Start), MarkKey(cal, r.End)
}

// IsPostgres reports whether target is a PostgreSQL connection string.
func IsPostgres(target string) bool {
	t := strings.TrimSpace(target)
	return strings.HasPrefix(t, "postgres://") || strings.HasPrefix(t, "postgresql://")
}

// HasEmbeddedCredentials reports whether a PostgreSQL URL carries a password.
func HasEmbeddedCredentials(target string) bool {
	if !IsPostgres(target) {
		return false
	}
	rest := target[strings.Index(target, "://")+3:]
	at := strings.LastIndex(rest, "@")
	if at == -1 {
		return false
	}
	return strings.Contains(rest[:at], ":")
}

// NotFound wraps ErrNotFound with the kind and key that were looked up.
func NotFound(kind, key string) error {
	return fmt.Errorf("%s %q: %w", kind, key, ErrNotFound)
}
