package models

// Settings represents application-wide settings
type Settings struct {
	Timezone             string `json:"timezone"`              // IANA timezone name (e.g. "America/New_York", or "Local" for system timezone)
	NotificationsEnabled bool   `json:"notifications_enabled"` // whether reminders are delivered
	DefaultFilter        string `json:"default_filter"`        // today, all or uncompleted
	DefaultSort          string `json:"default_sort"`          // date, name or streak
	NameAscending        bool   `json:"name_ascending"`        // direction used the next time name sort is chosen
	DefaultCategory      string `json:"default_category"`      // empty for all categories
}
