package constants

const (
	// General Settings
	SettingTimezone             = "timezone"
	SettingNotificationsEnabled = "notifications_enabled"

	// View Settings
	SettingDefaultFilter   = "default_filter"
	SettingDefaultSort     = "default_sort"
	SettingNameAscending   = "name_ascending"
	SettingDefaultCategory = "default_category"

	// Default Settings Values
	DefaultTimezone             = "Local" // Use system local timezone by default
	DefaultNotificationsEnabled = true
	DefaultFilter               = "today"
	DefaultSort                 = "date"
	DefaultNameAscending        = true
)
