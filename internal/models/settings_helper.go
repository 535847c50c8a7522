package models

import (
	"fmt"

	"github.com/julianstephens/cadence/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingShortfallPolicy:
			policy, err := ParseShortfallPolicy(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", constants.SettingShortfallPolicy, err)
			}
			settings.ShortfallPolicy = policy
		case constants.SettingStatsWindowDays:
			if _, err := fmt.Sscanf(value, "%d", &settings.StatsWindowDays); err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", constants.SettingStatsWindowDays, err)
			}
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:        settings.Timezone,
		constants.SettingShortfallPolicy: string(settings.ShortfallPolicy),
		constants.SettingStatsWindowDays: fmt.Sprintf("%d", settings.StatsWindowDays),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.ShortfallPolicy == "" {
		settings.ShortfallPolicy = constants.DefaultShortfallPolicy
	}
	if settings.StatsWindowDays <= 0 {
		settings.StatsWindowDays = constants.DefaultStatsWindowDays
	}
}

// DefaultSettings returns the settings a fresh store is initialized with.
func DefaultSettings() Settings {
	var s Settings
	ApplyDefaultSettings(&s)
	return s
}

// ParseShortfallPolicy validates a shortfall policy name.
func ParseShortfallPolicy(value string) (constants.ShortfallPolicy, error) {
	switch constants.ShortfallPolicy(value) {
	case constants.ShortfallFallback, constants.ShortfallSkip:
		return constants.ShortfallPolicy(value), nil
	default:
		return "", fmt.Errorf("invalid shortfall policy %q (must be %q or %q)", value, constants.ShortfallFallback, constants.ShortfallSkip)
	}
}
