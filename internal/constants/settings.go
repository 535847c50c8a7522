package constants

const (
	// Settings keys
	SettingTimezone        = "timezone"
	SettingShortfallPolicy = "shortfall_policy"
	SettingStatsWindowDays = "stats_window_days"

	// Default Settings Values
	DefaultTimezone        = "Local" // Use system local timezone by default
	DefaultShortfallPolicy = ShortfallFallback
	DefaultStatsWindowDays = 30
)
