// Package keyring keeps the PostgreSQL connection string in the OS keyring
// so that passwords never appear on the command line or in config files.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/routinely/internal/constants"
)

// Source is the --config value that selects the keyring entry.
const Source = "keyring"

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Get returns the stored connection string.
func Get() (string, error) {
	connStr, err := keyring.Get(constants.AppName, constants.DefaultKeyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

// Set stores a PostgreSQL connection string, replacing any previous one.
func Set(connStr string) error {
	connStr = strings.TrimSpace(connStr)
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if !IsPostgres(connStr) {
		return fmt.Errorf("expected a postgres:// or postgresql:// URL")
	}
	if err := keyring.Set(constants.AppName, constants.DefaultKeyringUser, connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the stored connection string.
func Delete() error {
	err := keyring.Delete(constants.AppName, constants.DefaultKeyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Available reports whether the OS keyring can be reached. A missing entry
// still counts as available.
func Available() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// Resolve turns a --config value into a storage location. The literal
// "keyring" is replaced by the stored connection string; anything else is
// returned unchanged. fromKeyring reports which case applied.
func Resolve(config string) (location string, fromKeyring bool, err error) {
	if !strings.EqualFold(strings.TrimSpace(config), Source) {
		return config, false, nil
	}
	connStr, err := Get()
	if err != nil {
		return "", true, err
	}
	return connStr, true, nil
}

// IsPostgres reports whether location is a PostgreSQL URL rather than a
// SQLite file path.
func IsPostgres(location string) bool {
	return strings.HasPrefix(location, "postgres://") || strings.HasPrefix(location, "postgresql://")
}

// Redact hides the password of a connection string, URL or key=value DSN,
// for display.
func Redact(connStr string) string {
	if strings.Contains(connStr, "password=") && !strings.Contains(connStr, "://") {
		fields := strings.Fields(connStr)
		for i, f := range fields {
			if strings.HasPrefix(f, "password=") {
				fields[i] = "password=****"
			}
		}
		return strings.Join(fields, " ")
	}

	scheme, rest, ok := strings.Cut(connStr, "://")
	if !ok {
		return connStr
	}
	// The last @ separates user info from the host; passwords may contain @.
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return connStr
	}
	user, _, hasPass := strings.Cut(rest[:at], ":")
	if !hasPass {
		return connStr
	}
	return scheme + "://" + user + ":****" + rest[at:]
}
