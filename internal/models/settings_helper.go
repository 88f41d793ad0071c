package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/routinely/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := DefaultSettings()

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingNotificationsEnabled:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing notifications_enabled: %w", err)
			}
			settings.NotificationsEnabled = b
		case constants.SettingDefaultFilter:
			settings.DefaultFilter = value
		case constants.SettingDefaultSort:
			settings.DefaultSort = value
		case constants.SettingNameAscending:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing name_ascending: %w", err)
			}
			settings.NameAscending = b
		case constants.SettingDefaultCategory:
			settings.DefaultCategory = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:             settings.Timezone,
		constants.SettingNotificationsEnabled: strconv.FormatBool(settings.NotificationsEnabled),
		constants.SettingDefaultFilter:        settings.DefaultFilter,
		constants.SettingDefaultSort:          settings.DefaultSort,
		constants.SettingNameAscending:        strconv.FormatBool(settings.NameAscending),
		constants.SettingDefaultCategory:      settings.DefaultCategory,
	}
}

// DefaultSettings returns the settings a fresh store starts with.
func DefaultSettings() Settings {
	return Settings{
		Timezone:             constants.DefaultTimezone,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		DefaultFilter:        constants.DefaultFilter,
		DefaultSort:          constants.DefaultSort,
		NameAscending:        constants.DefaultNameAscending,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.DefaultFilter == "" {
		settings.DefaultFilter = constants.DefaultFilter
	}
	if settings.DefaultSort == "" {
		settings.DefaultSort = constants.DefaultSort
	}
}
