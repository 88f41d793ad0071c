package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/keyring"
	"github.com/julianstephens/routinely/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store PostgreSQL connection string in OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	Status KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
}

// KeyringSetCmd stores database connection credentials in the OS keyring
type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring"`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if !keyring.IsPostgres(cmd.ConnectionString) && !strings.Contains(cmd.ConnectionString, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if _, err := postgres.ValidateConnString(cmd.ConnectionString); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// The keyring is the one place a password may live.
		fmt.Println("⚠️  Warning: Connection string contains embedded credentials.")
		fmt.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.Set(cmd.ConnectionString); err != nil {
		return fmt.Errorf("failed to store connection string in keyring: %w", err)
	}

	fmt.Println("✓ Connection string stored successfully in OS keyring")
	fmt.Println("  Use it with: routinely --config keyring")
	return nil
}

// KeyringGetCmd retrieves database connection credentials from the OS keyring
type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	connStr, err := keyring.Get()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring. Use 'routinely keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve connection string from keyring: %w", err)
	}

	fmt.Println("Connection string retrieved from keyring:")
	fmt.Println(keyring.Redact(connStr))
	return nil
}

// KeyringDeleteCmd removes database connection credentials from the OS keyring
type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.Delete(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return fmt.Errorf("failed to delete connection string from keyring: %w", err)
	}

	fmt.Println("✓ Connection string deleted from OS keyring")
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.Available() {
		fmt.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}

	fmt.Println("✓ OS keyring is available")
	if _, err := keyring.Get(); err == nil {
		fmt.Println("✓ Connection string is stored in keyring")
	} else if errors.Is(err, keyring.ErrNotFound) {
		fmt.Println("ℹ No connection string stored in keyring")
	}
	return nil
}
