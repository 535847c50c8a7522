package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/cadence/internal/models"
)

// ErrInvalidHabit wraps every field error reported for a habit.
var ErrInvalidHabit = errors.New("invalid habit")

// ErrInvalidSettings wraps every field error reported for settings.
var ErrInvalidSettings = errors.New("invalid settings")

// Validate is the shared validator instance.
var Validate *validator.Validate

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("nocontrol", validateNoControl); err != nil {
		panic(fmt.Sprintf("failed to register nocontrol validator: %v", err))
	}
	if err := Validate.RegisterValidation("shortfall", validateShortfall); err != nil {
		panic(fmt.Sprintf("failed to register shortfall validator: %v", err))
	}
}

// validateNoControl rejects strings containing control characters.
func validateNoControl(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func validateShortfall(fl validator.FieldLevel) bool {
	_, err := models.ParseShortfallPolicy(fl.Field().String())
	return err == nil
}

type habitFields struct {
	Name      string    `validate:"required,max=100,nocontrol"`
	Emoji     string    `validate:"max=32,nocontrol"`
	StartDate time.Time `validate:"required"`
}

type everyNDaysFields struct {
	N int `validate:"gte=2,lte=365"`
}

type weekdaysFields struct {
	Mask int `validate:"gte=1,lte=127"`
}

type weeklyFields struct {
	N int `validate:"gte=1,lte=52"`
}

type dayOfMonthFields struct {
	Day int `validate:"gte=1,lte=31"`
}

type nthWeekdayFields struct {
	Nth     int `validate:"oneof=1 2 3 4 -1"`
	Weekday int `validate:"gte=0,lte=6"`
}

type settingsFields struct {
	Timezone        string `validate:"required"`
	ShortfallPolicy string `validate:"shortfall"`
	StatsWindowDays int    `validate:"gte=1,lte=3660"`
}

// ValidateHabit checks the invariants the habit editor enforces before a
// habit is stored.
func ValidateHabit(h models.Habit) error {
	if err := check(ErrInvalidHabit, habitFields{Name: h.Name, Emoji: h.Emoji, StartDate: h.StartDate}); err != nil {
		return err
	}
	return ValidateCadence(h.Cadence)
}

// ValidateCadence checks the parameters of a cadence against their allowed
// ranges.
func ValidateCadence(c models.Cadence) error {
	var fields any
	switch c := c.(type) {
	case models.Daily:
		return nil
	case models.EveryNDays:
		fields = everyNDaysFields{N: c.N}
	case models.Weekdays:
		fields = weekdaysFields{Mask: int(c.Mask)}
	case models.Weekly:
		fields = weeklyFields{N: c.N}
	case models.MonthlyDayOfMonth:
		fields = dayOfMonthFields{Day: c.Day}
	case models.MonthlyNthWeekday:
		fields = nthWeekdayFields{Nth: c.Nth, Weekday: int(c.Weekday)}
	case nil:
		return fmt.Errorf("%w: cadence is required", ErrInvalidHabit)
	default:
		return fmt.Errorf("%w: unsupported cadence %T", ErrInvalidHabit, c)
	}
	return check(ErrInvalidHabit, fields)
}

// ValidateSettings checks stored settings before they are saved.
func ValidateSettings(s models.Settings) error {
	if err := check(ErrInvalidSettings, settingsFields{
		Timezone:        s.Timezone,
		ShortfallPolicy: string(s.ShortfallPolicy),
		StatsWindowDays: s.StatsWindowDays,
	}); err != nil {
		return err
	}
	if s.Timezone != "Local" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrInvalidSettings, s.Timezone)
		}
	}
	return nil
}

func check(sentinel error, fields any) error {
	err := Validate.Struct(fields)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", sentinel, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := fieldName(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "nocontrol":
		return field + " must not contain control characters"
	case "shortfall":
		return fmt.Sprintf("%s must be \"fallback\" or \"skip\"", field)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

var fieldNames = map[string]string{
	"Name":            "name",
	"Emoji":           "emoji",
	"StartDate":       "start date",
	"N":               "interval",
	"Mask":            "weekdays",
	"Day":             "day of month",
	"Nth":             "occurrence",
	"Weekday":         "weekday",
	"Timezone":        "timezone",
	"ShortfallPolicy": "shortfall policy",
	"StatsWindowDays": "stats window",
}

func fieldName(f string) string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return f
}

// SanitizeText trims whitespace and removes control characters.
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) {
			continue
		}
		sanitized.WriteRune(r)
	}
	return sanitized.String()
}
