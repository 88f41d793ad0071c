package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "routinely"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/routinely/routinely.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Schedule tokens
	ScheduleDaily   = "daily"
	DaysInWeek      = 7
	DefaultTarget   = 1
	DefaultSchedule = ScheduleDaily

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "routinely-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "routinely-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.routinely"
	TrayExecutablePrefix   = "routinely-tray"

	// Background process cadence
	RefreshCronSpec  = "@every 1m"
	RolloverCronSpec = "0 0 * * *"

	// Statistics
	TrendDays       = 7
	LeaderboardSize = 5
)

// Session States
const (
	StateHabits SessionState = iota
	StateStats
	StateSettings
	StateAddHabit
	StateEditHabit
	StateSetProgress
	StateEditSettings
	StateConfirmDelete
	StateConfirmReset
)
