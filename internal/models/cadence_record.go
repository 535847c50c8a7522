package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
)

// CadenceRecord is the flat persisted form of a cadence. Fields that do not
// belong to Kind are nil.
type CadenceRecord struct {
	Kind         int
	N            *int
	WeekdaysMask *int
	MonthlyRule  *int
	DayOfMonth   *int
	Nth          *int
	Weekday      *int // 1=Sun ... 7=Sat
}

func intPtr(v int) *int { return &v }

// PersistedWeekday converts a time.Weekday to the stored 1=Sun..7=Sat form.
func PersistedWeekday(wd time.Weekday) int {
	return int(wd) + 1
}

// WeekdayFromPersisted converts a stored 1=Sun..7=Sat weekday.
func WeekdayFromPersisted(v int) (time.Weekday, bool) {
	if v < 1 || v > 7 {
		return 0, false
	}
	return time.Weekday(v - 1), true
}

// EncodeCadence flattens c for storage, clearing every field that does not
// belong to its kind.
func EncodeCadence(c Cadence) (CadenceRecord, error) {
	switch c := c.(type) {
	case Daily:
		return CadenceRecord{Kind: constants.CadenceKindDaily}, nil
	case EveryNDays:
		return CadenceRecord{Kind: constants.CadenceKindEveryNDays, N: intPtr(c.N)}, nil
	case Weekdays:
		return CadenceRecord{Kind: constants.CadenceKindWeekdays, WeekdaysMask: intPtr(int(c.Mask & MaskAll))}, nil
	case Weekly:
		return CadenceRecord{Kind: constants.CadenceKindWeekly, N: intPtr(c.N)}, nil
	case MonthlyDayOfMonth:
		return CadenceRecord{
			Kind:        constants.CadenceKindMonthly,
			MonthlyRule: intPtr(constants.MonthlyRuleDayOfMonth),
			DayOfMonth:  intPtr(c.Day),
		}, nil
	case MonthlyNthWeekday:
		return CadenceRecord{
			Kind:        constants.CadenceKindMonthly,
			MonthlyRule: intPtr(constants.MonthlyRuleNthWeekday),
			Nth:         intPtr(c.Nth),
			Weekday:     intPtr(PersistedWeekday(c.Weekday)),
		}, nil
	case nil:
		return CadenceRecord{}, fmt.Errorf("%w: habit has no cadence", ErrInvalidCadence)
	default:
		return CadenceRecord{}, fmt.Errorf("%w: unsupported cadence %T", ErrInvalidCadence, c)
	}
}

// DecodeCadence rebuilds a cadence from its stored form. It returns nil when
// a field required by the declared kind is missing, which makes the habit
// never due.
func DecodeCadence(r CadenceRecord) Cadence {
	switch r.Kind {
	case constants.CadenceKindDaily:
		return Daily{}
	case constants.CadenceKindEveryNDays:
		if r.N == nil {
			return nil
		}
		return EveryNDays{N: *r.N}
	case constants.CadenceKindWeekdays:
		if r.WeekdaysMask == nil {
			return nil
		}
		return Weekdays{Mask: WeekdayMask(*r.WeekdaysMask) & MaskAll}
	case constants.CadenceKindWeekly:
		n := 1
		if r.N != nil {
			n = *r.N
		}
		return Weekly{N: n}
	case constants.CadenceKindMonthly:
		if r.MonthlyRule == nil {
			return nil
		}
		switch *r.MonthlyRule {
		case constants.MonthlyRuleDayOfMonth:
			if r.DayOfMonth == nil {
				return nil
			}
			return MonthlyDayOfMonth{Day: *r.DayOfMonth}
		case constants.MonthlyRuleNthWeekday:
			if r.Nth == nil || r.Weekday == nil {
				return nil
			}
			wd, ok := WeekdayFromPersisted(*r.Weekday)
			if !ok {
				return nil
			}
			return MonthlyNthWeekday{Nth: *r.Nth, Weekday: wd}
		}
	}
	return nil
}
