package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/migration"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/migrations"
)

// foreign_keys enables the completion_records cascade on every pooled
// connection; busy_timeout lets the tray process and CLI share the file.
const dsnPragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) Init(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if err := s.runMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize default settings if not present
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

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'routinely init' first")
	}

	if err := s.open(); err != nil {
		return err
	}

	return s.validateSchemaVersion(ctx)
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.path+dsnPragmas)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
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
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.SQLite), nil
}

func (s *Store) runMigrations(ctx context.Context) error {
	runner, err := s.runner()
	if err != nil {
		return err
	}
	_, err = runner.ApplyMigrations(ctx, func(msg string) {
		logger.Info(msg, "store", "sqlite")
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
	return s.path
}

// GetDB returns the underlying database connection, or nil before
// Init/Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
