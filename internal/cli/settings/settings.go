package settings

import (
	"fmt"
	"strings"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/projection"
	"github.com/julianstephens/routinely/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone             *string `help:"IANA timezone that defines calendar days, or Local."`
	NotificationsEnabled *bool   `help:"Enable or disable reminders."`
	Filter               *string `help:"Default list filter: today, all or uncompleted."`
	Sort                 *string `help:"Default sort: date, name or streak."`
	NameAscending        *bool   `help:"Sort names A to Z (false for Z to A)."`
	Category             *string `help:"Default category filter; empty shows all."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings(ctx.Ctx())
	if err != nil {
		return err
	}

	if c.List {
		category := settings.DefaultCategory
		if category == "" {
			category = "(all)"
		}
		fmt.Println("Current Settings:")
		fmt.Printf("  Timezone:              %s\n", settings.Timezone)
		fmt.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
		fmt.Println("\nView Settings:")
		fmt.Printf("  Default Filter:        %s\n", settings.DefaultFilter)
		fmt.Printf("  Default Sort:          %s\n", settings.DefaultSort)
		fmt.Printf("  Name Ascending:        %v\n", settings.NameAscending)
		fmt.Printf("  Default Category:      %s\n", category)
		return nil
	}

	updated := false
	if c.Timezone != nil {
		tz := strings.TrimSpace(*c.Timezone)
		if !utils.ValidateTimezone(tz) {
			return fmt.Errorf("invalid timezone %q", tz)
		}
		settings.Timezone = tz
		updated = true
	}
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.Filter != nil {
		f, err := projection.ParseFilter(*c.Filter)
		if err != nil {
			return err
		}
		settings.DefaultFilter = f.String()
		updated = true
	}
	if c.Sort != nil {
		m, err := projection.ParseSort(*c.Sort)
		if err != nil {
			return err
		}
		settings.DefaultSort = m.String()
		updated = true
	}
	if c.NameAscending != nil {
		settings.NameAscending = *c.NameAscending
		updated = true
	}
	if c.Category != nil {
		settings.DefaultCategory = strings.TrimSpace(*c.Category)
		updated = true
	}

	if updated {
		if err := ctx.SaveSettings(ctx.Ctx(), settings); err != nil {
			return err
		}
		fmt.Println("Settings updated successfully.")
	} else {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}
