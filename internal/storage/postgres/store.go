package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/migration"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/migrations"
)

type Store struct {
	connStr string
	db      *sql.DB
}

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

func New(connStr string) *Store {
	s := &Store{
		connStr: connStr,
	}
	s.ensureSearchPath()
	return s
}

func (s *Store) ensureSearchPath() {
	// Keep every table in the application's own schema
	if strings.HasPrefix(s.connStr, "postgres://") || strings.HasPrefix(s.connStr, "postgresql://") {
		u, err := url.Parse(s.connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return
		}
		q := u.Query()
		// Only set search_path if it's not already present
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
			s.connStr = u.String()
		}
	} else {
		// Assume DSN format - only append if search_path is not already present
		if !hasSearchPathParam(s.connStr) {
			s.connStr = strings.TrimSpace(s.connStr) + " search_path=" + constants.AppName
		}
	}
}

// hasSearchPathParam returns true if the given DSN-style connection string
// contains a search_path parameter key (case-insensitive).
func hasSearchPathParam(connStr string) bool {
	// DSN format is typically space-separated key=value pairs.
	parts := strings.Fields(connStr)
	for _, part := range parts {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		if strings.EqualFold(kv[0], "search_path") {
			return true
		}
	}
	return false
}

// hasSSLMode checks if the connection string contains an sslmode parameter key (case-insensitive).
// It supports both URL-style and DSN-style connection strings.
func hasSSLMode(connStr string) bool {
	// First, try to interpret the connection string as a URL (e.g. postgres://...?sslmode=disable).
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		q := u.Query()
		for key := range q {
			if strings.EqualFold(key, "sslmode") {
				return true
			}
		}
	}

	// Fallback: treat the connection string as DSN-style space-separated key=value pairs.
	parts := strings.Fields(connStr)
	for _, part := range parts {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		if strings.EqualFold(kv[0], "sslmode") {
			return true
		}
	}

	return false
}

// ValidateConnString checks if a connection string is a valid
// PostgreSQL connection string (URI or DSN) and ensures it does not
// contain a password.
//
// It returns true if the connection string is valid and contains no password.
// Otherwise, it returns false and an error describing the issue.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	_, err := pq.NewConnector(connStr)
	if err != nil {
		return false, fmt.Errorf("%w: invalid connection string format: %v", ErrInvalidConnectionString, err)
	}

	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		parsedURL, err := url.Parse(connStr)
		if err != nil {
			return false, fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}

		if _, isSet := parsedURL.User.Password(); isSet {
			return false, ErrEmbeddedCredentials
		}

		if parsedURL.Host == "" && parsedURL.User == nil && (parsedURL.Path == "" || parsedURL.Path == "/") {
			return false, fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
	} else {
		pairs := strings.Fields(connStr)
		for _, pair := range pairs {
			parts := strings.SplitN(pair, "=", 2)
			if len(parts) == 2 && strings.ToLower(strings.TrimSpace(parts[0])) == "password" {
				return false, ErrEmbeddedCredentials
			}
		}
	}

	return true, nil
}

func (s *Store) Init(ctx context.Context) error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	configurePool(db)

	// Create the schema before assigning s.db so a failed Init leaves no handle behind
	if _, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(constants.AppName)); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}
	s.db = db

	if err := s.ping(ctx); err != nil {
		return err
	}

	if err := s.runMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if _, err := s.GetSettings(ctx); err != nil {
		if err := s.SaveSettings(ctx, models.DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *Store) Load(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	configurePool(db)
	s.db = db

	if err := s.ping(ctx); err != nil {
		return err
	}

	return s.validateSchemaVersion(ctx)
}

// configurePool bounds the pool so the tray process and CLI do not exhaust
// server connections.
func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
}

func (s *Store) ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.Postgres), nil
}

func (s *Store) runMigrations(ctx context.Context) error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	_, err = runner.ApplyMigrations(ctx, func(msg string) {
		logger.Info(msg, "store", "postgres")
	})
	return err
}

// Migrate applies pending migrations to a loaded store.
func (s *Store) Migrate(ctx context.Context, logFn func(string)) (int, error) {
	if s.db == nil {
		return 0, fmt.Errorf("storage not loaded")
	}
	runner, err := s.runner()
	if err != nil {
		return 0, err
	}
	return runner.ApplyMigrations(ctx, logFn)
}

// SchemaVersion reports the applied migration version and the newest one
// this build ships.
func (s *Store) SchemaVersion(ctx context.Context) (current, latest int, err error) {
	if s.db == nil {
		return 0, 0, fmt.Errorf("storage not loaded")
	}
	runner, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = runner.GetCurrentVersion(ctx); err != nil {
		return 0, 0, err
	}
	latest, err = runner.GetLatestVersion()
	return current, latest, err
}

func (s *Store) validateSchemaVersion(ctx context.Context) error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion(ctx)
}

func (s *Store) GetConfigPath() string {
	// Non-sensitive identifier instead of the connection string
	return "postgresql"
}
