package constants

// ShortfallPolicy names how a monthly day-of-month cadence resolves months
// shorter than its target day.
type ShortfallPolicy string

const (
	AppName            = "cadence"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/cadence"
	DefaultDBName      = "cadence.db"
	DefaultConfigPath  = "~/.config/cadence/cadence.db"
	ConfigFileName     = "config.yaml"
	Version            = "v0.1.0"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "cadence-"
	BackupFileSuffix = ".db"

	// Shortfall policies
	ShortfallFallback ShortfallPolicy = "fallback"
	ShortfallSkip     ShortfallPolicy = "skip"

	// Cadence kinds as persisted in the habits table
	CadenceKindDaily      = 0
	CadenceKindEveryNDays = 1
	CadenceKindWeekdays   = 2
	CadenceKindWeekly     = 3
	CadenceKindMonthly    = 4

	// Monthly rules as persisted in the habits table
	MonthlyRuleDayOfMonth = 0
	MonthlyRuleNthWeekday = 1

	// NthLast selects the last occurrence of a weekday in a month.
	NthLast = -1

	// NoonHour is the local hour completion marks are normalized to.
	NoonHour = 12
)
