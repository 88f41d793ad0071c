package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/routinely/internal/backup"
	"github.com/julianstephens/routinely/internal/habits"
	"github.com/julianstephens/routinely/internal/keyring"
	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/reminder"
	"github.com/julianstephens/routinely/internal/storage"
	"github.com/julianstephens/routinely/internal/storage/postgres"
	"github.com/julianstephens/routinely/internal/storage/sqlite"
	"github.com/julianstephens/routinely/internal/utils"
)

// Context is handed to every command's Run method.
type Context struct {
	// Base is the context for storage calls. Nil means context.Background.
	Base  context.Context
	Store storage.Provider
	// Reminders receives schedule/cancel effects from the habit store.
	// Nil means reminder.Log.
	Reminders reminder.Scheduler
	// Timezone overrides the timezone setting when non-empty.
	Timezone string
	// Clock replaces time.Now, for tests.
	Clock func() time.Time

	habits   *habits.Store
	settings *models.Settings
}

// Ctx returns Base or context.Background.
func (c *Context) Ctx() context.Context {
	if c.Base != nil {
		return c.Base
	}
	return context.Background()
}

// OpenProvider builds the storage backend for a --config value: a
// PostgreSQL URL or DSN, the literal "keyring", or a SQLite file path.
// Connection strings typed on the command line must not carry a password;
// the keyring entry may.
func OpenProvider(config string) (storage.Provider, error) {
	location, fromKeyring, err := keyring.Resolve(config)
	if err != nil {
		return nil, err
	}

	if keyring.IsPostgres(location) || strings.Contains(location, "host=") {
		if !fromKeyring {
			if valid, err := postgres.ValidateConnString(location); !valid {
				return nil, err
			}
		}
		return postgres.New(location), nil
	}
	return sqlite.NewStore(ExpandPath(location)), nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Settings loads storage and the persisted settings once per command.
func (c *Context) Settings(ctx context.Context) (models.Settings, error) {
	if c.settings != nil {
		return *c.settings, nil
	}
	if err := c.Store.Load(ctx); err != nil {
		return models.Settings{}, err
	}
	s, err := c.Store.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	models.ApplyDefaultSettings(&s)
	c.settings = &s
	return s, nil
}

// SaveSettings persists s and refreshes the cached copy.
func (c *Context) SaveSettings(ctx context.Context, s models.Settings) error {
	if err := c.Store.SaveSettings(ctx, s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	c.settings = &s
	return nil
}

// Location is the zone that defines calendar days: --timezone if given,
// else the timezone setting.
func (c *Context) Location(ctx context.Context) (*time.Location, error) {
	tz := c.Timezone
	if tz == "" {
		s, err := c.Settings(ctx)
		if err != nil {
			return nil, err
		}
		tz = s.Timezone
	}
	loc, err := utils.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Habits loads storage and returns the habit store, building it on first
// use.
func (c *Context) Habits(ctx context.Context) (*habits.Store, error) {
	if c.habits != nil {
		return c.habits, nil
	}
	if err := c.Store.Load(ctx); err != nil {
		return nil, err
	}
	loc, err := c.Location(ctx)
	if err != nil {
		return nil, err
	}

	opts := []habits.Option{habits.WithLocation(loc)}
	if c.Clock != nil {
		opts = append(opts, habits.WithClock(c.Clock))
	}
	store := habits.New(c.Store, c.Reminders, opts...)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	c.habits = store
	return store, nil
}

// Now is the current time in the configured location.
func (c *Context) Now(ctx context.Context) (time.Time, error) {
	loc, err := c.Location(ctx)
	if err != nil {
		return time.Time{}, err
	}
	now := time.Now
	if c.Clock != nil {
		now = c.Clock
	}
	return now().In(loc), nil
}

// ParseDay reads YYYY-MM-DD, "today" or "yesterday" in the configured
// location. Empty means today.
func (c *Context) ParseDay(ctx context.Context, s string) (time.Time, error) {
	now, err := c.Now(ctx)
	if err != nil {
		return time.Time{}, err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return now, nil
	case "yesterday":
		return utils.AddDays(now, -1), nil
	}
	day, err := utils.ParseDateInLocation(s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return day, nil
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup(ctx context.Context) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(ctx); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Confirm asks a yes/no question on stdin. Anything but y/yes is a no.
func Confirm(prompt string) (bool, error) {
	fmt.Print(prompt + " [y/N]: ")
	response, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
