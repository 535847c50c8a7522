package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
)

// ErrInvalidCadence is returned when a cadence cannot be parsed or encoded.
var ErrInvalidCadence = errors.New("invalid cadence")

// CadenceKind is the persisted discriminator of a cadence.
type CadenceKind int

const (
	KindDaily      CadenceKind = constants.CadenceKindDaily
	KindEveryNDays CadenceKind = constants.CadenceKindEveryNDays
	KindWeekdays   CadenceKind = constants.CadenceKindWeekdays
	KindWeekly     CadenceKind = constants.CadenceKindWeekly
	KindMonthly    CadenceKind = constants.CadenceKindMonthly
)

// Cadence is the rule that decides on which days a habit is due. The set of
// implementations is closed: Daily, EveryNDays, Weekdays, Weekly,
// MonthlyDayOfMonth and MonthlyNthWeekday.
type Cadence interface {
	Kind() CadenceKind
	// String renders the cadence in the syntax accepted by ParseCadence.
	String() string
	// Describe renders the cadence for people.
	Describe() string
	isCadence()
}

// Daily is due every day from the start date.
type Daily struct{}

// EveryNDays is due every N-th day counted from the start date. N must be at
// least 2.
type EveryNDays struct {
	N int
}

// Weekdays is due on the flagged weekdays.
type Weekdays struct {
	Mask WeekdayMask
}

// Weekly is due every N-th week on the start date's weekday. N below 1 is
// treated as 1.
type Weekly struct {
	N int
}

// MonthlyDayOfMonth is due on a fixed day of every month.
type MonthlyDayOfMonth struct {
	Day int
}

// MonthlyNthWeekday is due on the Nth occurrence of Weekday in every month.
// Nth is 1..4, or -1 for the last occurrence.
type MonthlyNthWeekday struct {
	Nth     int
	Weekday time.Weekday
}

func (Daily) Kind() CadenceKind             { return KindDaily }
func (EveryNDays) Kind() CadenceKind        { return KindEveryNDays }
func (Weekdays) Kind() CadenceKind          { return KindWeekdays }
func (Weekly) Kind() CadenceKind            { return KindWeekly }
func (MonthlyDayOfMonth) Kind() CadenceKind { return KindMonthly }
func (MonthlyNthWeekday) Kind() CadenceKind { return KindMonthly }

func (Daily) isCadence()             {}
func (EveryNDays) isCadence()        {}
func (Weekdays) isCadence()          {}
func (Weekly) isCadence()            {}
func (MonthlyDayOfMonth) isCadence() {}
func (MonthlyNthWeekday) isCadence() {}

func (Daily) String() string { return "daily" }

func (c EveryNDays) String() string { return fmt.Sprintf("every:%d", c.N) }

func (c Weekdays) String() string { return "weekdays:" + c.Mask.String() }

func (c Weekly) String() string {
	if c.N <= 1 {
		return "weekly"
	}
	return fmt.Sprintf("weekly:%d", c.N)
}

func (c MonthlyDayOfMonth) String() string { return fmt.Sprintf("monthly:%d", c.Day) }

func (c MonthlyNthWeekday) String() string {
	wd := strings.ToLower(c.Weekday.String()[:3])
	if c.Nth == constants.NthLast {
		return "monthly:last-" + wd
	}
	return fmt.Sprintf("monthly:%d-%s", c.Nth, wd)
}

func (Daily) Describe() string { return "daily" }

func (c EveryNDays) Describe() string { return fmt.Sprintf("every %d days", c.N) }

func (c Weekdays) Describe() string {
	var names []string
	for _, wd := range c.Mask.Weekdays() {
		names = append(names, wd.String()[:3])
	}
	if len(names) == 0 {
		return "on no weekdays"
	}
	return "on " + strings.Join(names, ", ")
}

func (c Weekly) Describe() string {
	if c.N <= 1 {
		return "weekly"
	}
	return fmt.Sprintf("every %d weeks", c.N)
}

func (c MonthlyDayOfMonth) Describe() string {
	return fmt.Sprintf("monthly on day %d", c.Day)
}

func (c MonthlyNthWeekday) Describe() string {
	return fmt.Sprintf("monthly on the %s %s", ordinal(c.Nth), c.Weekday)
}

func ordinal(n int) string {
	switch n {
	case constants.NthLast:
		return "last"
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}

// WeekdayMask flags weekdays with Monday at bit 0 through Sunday at bit 6.
type WeekdayMask uint8

const (
	MaskMonday WeekdayMask = 1 << iota
	MaskTuesday
	MaskWednesday
	MaskThursday
	MaskFriday
	MaskSaturday
	MaskSunday

	MaskWorkweek = MaskMonday | MaskTuesday | MaskWednesday | MaskThursday | MaskFriday
	MaskAll      = MaskWorkweek | MaskSaturday | MaskSunday
)

// MondayIndex maps a weekday to 0 for Monday through 6 for Sunday.
func MondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// MaskOf builds a mask from weekdays.
func MaskOf(days ...time.Weekday) WeekdayMask {
	var m WeekdayMask
	for _, wd := range days {
		if wd < time.Sunday || wd > time.Saturday {
			continue
		}
		m |= 1 << MondayIndex(wd)
	}
	return m
}

// Has reports whether wd is flagged.
func (m WeekdayMask) Has(wd time.Weekday) bool {
	if wd < time.Sunday || wd > time.Saturday {
		return false
	}
	return m&(1<<MondayIndex(wd)) != 0
}

// Weekdays lists the flagged weekdays from Monday to Sunday.
func (m WeekdayMask) Weekdays() []time.Weekday {
	var days []time.Weekday
	for i := 0; i < 7; i++ {
		if m&(1<<i) != 0 {
			days = append(days, time.Weekday((i+1)%7))
		}
	}
	return days
}

func (m WeekdayMask) String() string {
	var names []string
	for _, wd := range m.Weekdays() {
		names = append(names, strings.ToLower(wd.String()[:3]))
	}
	return strings.Join(names, ",")
}
