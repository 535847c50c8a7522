package models

import "github.com/julianstephens/cadence/internal/constants"

// Settings represents application-wide settings
type Settings struct {
	Timezone        string                    // IANA timezone name, or "Local" for the system timezone
	ShortfallPolicy constants.ShortfallPolicy // how day-of-month cadences treat short months
	StatsWindowDays int                       // default window for completion percentages
}
