package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Dialect selects the SQL flavour used for the runner's own bookkeeping
// statements. Migration files themselves are written per dialect.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// placeholder returns the bind parameter for position n (1-based).
func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// ErrSchemaTooNew is returned when the database was migrated by a newer build.
var ErrSchemaTooNew = errors.New("database schema is newer than supported")

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Runner manages database schema migrations
type Runner struct {
	db      *sql.DB
	fs      fs.FS
	dialect Dialect
}

// NewRunner creates a new migration runner reading NNN_name.sql files from
// the root of migrationFS.
func NewRunner(db *sql.DB, migrationFS fs.FS, dialect Dialect) *Runner {
	return &Runner{
		db:      db,
		fs:      migrationFS,
		dialect: dialect,
	}
}

// EnsureSchemaVersionTable creates the schema_version table if it doesn't exist
func (r *Runner) EnsureSchemaVersionTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`)
	return err
}

// GetCurrentVersion returns the current schema version from the database.
// Returns 0 for a fresh database.
func (r *Runner) GetCurrentVersion(ctx context.Context) (int, error) {
	if err := r.EnsureSchemaVersionTable(ctx); err != nil {
		return 0, fmt.Errorf("failed to ensure schema_version table: %w", err)
	}

	var version int
	err := r.db.QueryRowContext(ctx, "SELECT version FROM schema_version").Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, nil
}

// SetVersion sets the current schema version in the database
func (r *Runner) SetVersion(ctx context.Context, version int) error {
	if err := r.EnsureSchemaVersionTable(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema_version table: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.writeVersion(ctx, tx, version); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Runner) writeVersion(ctx context.Context, tx *sql.Tx, version int) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_version"); err != nil {
		return fmt.Errorf("failed to clear version: %w", err)
	}
	insert := "INSERT INTO schema_version (version) VALUES (" + r.dialect.placeholder(1) + ")"
	if _, err := tx.ExecContext(ctx, insert, version); err != nil {
		return fmt.Errorf("failed to set version: %w", err)
	}
	return nil
}

// ReadMigrationFiles reads and parses migration files, sorted by version.
func (r *Runner) ReadMigrationFiles() ([]Migration, error) {
	files, err := fs.ReadDir(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		// "001_init.sql" -> 1
		parts := strings.SplitN(file.Name(), "_", 2)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid migration filename format: %s (expected NNN_name.sql)", file.Name())
		}

		version, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid version number in filename %s: %w", file.Name(), err)
		}
		if version < 1 {
			return nil, fmt.Errorf("invalid version number in filename %s: version must be at least 1", file.Name())
		}

		content, err := fs.ReadFile(r.fs, file.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(parts[1], ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version == migrations[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", migrations[i].Version)
		}
	}

	return migrations, nil
}

// GetLatestVersion returns the highest migration version available
func (r *Runner) GetLatestVersion() (int, error) {
	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, err
	}
	if len(migrations) == 0 {
		return 0, nil
	}
	return migrations[len(migrations)-1].Version, nil
}

// ApplyMigrations applies all pending migrations up to the latest version.
// Each migration and its version bump run in one transaction. Returns the
// number of migrations applied.
func (r *Runner) ApplyMigrations(ctx context.Context, logFn func(string)) (int, error) {
	if logFn == nil {
		logFn = func(string) {}
	}

	currentVersion, err := r.GetCurrentVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}

	migrations, err := r.ReadMigrationFiles()
	if err != nil {
		return 0, fmt.Errorf("failed to read migrations: %w", err)
	}

	if len(migrations) == 0 {
		logFn("No migration files found")
		return 0, nil
	}

	latestVersion := migrations[len(migrations)-1].Version
	if currentVersion > latestVersion {
		return 0, fmt.Errorf("%w: version %d, supported %d - please upgrade the application", ErrSchemaTooNew, currentVersion, latestVersion)
	}

	var pending []Migration
	for _, m := range migrations {
		if m.Version > currentVersion {
			pending = append(pending, m)
		}
	}

	if len(pending) == 0 {
		logFn(fmt.Sprintf("Database schema is up to date (version %d)", currentVersion))
		return 0, nil
	}

	logFn(fmt.Sprintf("Migrating %s schema from version %d to %d (%d pending)", r.dialect, currentVersion, latestVersion, len(pending)))

	startTime := time.Now()
	applied := 0

	for _, m := range pending {
		if err := r.apply(ctx, m); err != nil {
			return applied, err
		}
		applied++
		logFn(fmt.Sprintf("  ✓ Migration %d (%s) applied", m.Version, m.Name))
	}

	logFn(fmt.Sprintf("Applied %d migration(s) in %v", applied, time.Since(startTime)))
	return applied, nil
}

func (r *Runner) apply(ctx context.Context, m Migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
	}
	if err := r.writeVersion(ctx, tx, m.Version); err != nil {
		return fmt.Errorf("migration %d: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}

// ValidateVersion checks if the database version is compatible with the application
func (r *Runner) ValidateVersion(ctx context.Context) error {
	currentVersion, err := r.GetCurrentVersion(ctx)
	if err != nil {
		return err
	}

	latestVersion, err := r.GetLatestVersion()
	if err != nil {
		return err
	}

	if currentVersion > latestVersion {
		return fmt.Errorf("%w: version %d, supported %d - please upgrade the application", ErrSchemaTooNew, currentVersion, latestVersion)
	}
	return nil
}
