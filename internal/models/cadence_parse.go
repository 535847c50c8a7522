package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/cadence/internal/constants"
)

var dayMap = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

// ParseWeekday parses a weekday name or abbreviation.
func ParseWeekday(s string) (time.Weekday, error) {
	if wd, ok := dayMap[strings.TrimSpace(strings.ToLower(s))]; ok {
		return wd, nil
	}
	return 0, fmt.Errorf("invalid weekday: %s", s)
}

// ParseWeekdays parses a comma-separated list of weekdays into a mask.
func ParseWeekdays(s string) (WeekdayMask, error) {
	var mask WeekdayMask
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		wd, err := ParseWeekday(part)
		if err != nil {
			return 0, err
		}
		mask |= MaskOf(wd)
	}
	if mask == 0 {
		return 0, fmt.Errorf("no weekdays given")
	}
	return mask, nil
}

// ParseCadence parses the command-line cadence syntax:
//
//	daily
//	every:N            every N days (N >= 2)
//	weekdays           Monday through Friday
//	weekdays:mon,wed   the listed weekdays
//	weekly, weekly:N   every N weeks on the start date's weekday
//	monthly:D          day D of every month
//	monthly:N-wd       Nth weekday of every month, e.g. monthly:2-tue
//	monthly:last-wd    last weekday of every month
//
// Range checks beyond syntax are left to the validation package.
func ParseCadence(spec string) (Cadence, error) {
	spec = strings.TrimSpace(strings.ToLower(spec))
	kind, arg, hasArg := strings.Cut(spec, ":")

	switch kind {
	case "daily":
		if hasArg {
			return nil, fmt.Errorf("%w: daily takes no argument", ErrInvalidCadence)
		}
		return Daily{}, nil

	case "every", "every-n-days":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: every needs a day count, e.g. every:3", ErrInvalidCadence)
		}
		return EveryNDays{N: n}, nil

	case "weekdays":
		if !hasArg {
			return Weekdays{Mask: MaskWorkweek}, nil
		}
		mask, err := ParseWeekdays(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCadence, err)
		}
		return Weekdays{Mask: mask}, nil

	case "weekly":
		if !hasArg {
			return Weekly{N: 1}, nil
		}
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: weekly needs a week count, e.g. weekly:2", ErrInvalidCadence)
		}
		return Weekly{N: n}, nil

	case "monthly":
		return parseMonthly(arg)
	}

	return nil, fmt.Errorf("%w: unknown cadence %q", ErrInvalidCadence, spec)
}

func parseMonthly(arg string) (Cadence, error) {
	if arg == "" {
		return nil, fmt.Errorf("%w: monthly needs a day or weekday, e.g. monthly:15 or monthly:last-fri", ErrInvalidCadence)
	}

	if day, err := strconv.Atoi(arg); err == nil {
		return MonthlyDayOfMonth{Day: day}, nil
	}

	nthStr, wdStr, ok := strings.Cut(arg, "-")
	if !ok {
		return nil, fmt.Errorf("%w: invalid monthly rule %q", ErrInvalidCadence, arg)
	}
	wd, err := ParseWeekday(wdStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCadence, err)
	}

	nth := constants.NthLast
	if nthStr != "last" {
		nth, err = strconv.Atoi(strings.TrimRight(nthStr, "stndrh"))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid occurrence %q", ErrInvalidCadence, nthStr)
		}
	}
	return MonthlyNthWeekday{Nth: nth, Weekday: wd}, nil
}
