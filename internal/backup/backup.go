// Package backup snapshots and restores the SQLite habit database.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/logger"
)

const stampFormat = "20060102-150405"

// ErrNoBackups is returned by Latest when the backup directory is empty.
var ErrNoBackups = errors.New("no backups found")

// Info describes one backup file.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Name is the file name without the directory.
func (i Info) Name() string {
	return filepath.Base(i.Path)
}

// Manager keeps rotating copies of the database next to it, in
// <config dir>/backups.
type Manager struct {
	dbPath    string
	backupDir string
	keep      int
	now       func() time.Time
}

func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		keep:      constants.MaxBackups,
		now:       time.Now,
	}
}

func (m *Manager) Dir() string {
	return m.backupDir
}

// Create writes a consistent copy of the database and prunes copies beyond
// the retention limit.
func (m *Manager) Create(ctx context.Context) (Info, error) {
	info, err := m.create(ctx)
	if err != nil {
		return Info{}, err
	}
	if err := m.prune(); err != nil {
		logger.Warn("Failed to prune old backups", "dir", m.backupDir, "error", err)
	}
	return info, nil
}

func (m *Manager) create(ctx context.Context) (Info, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		return Info{}, fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	dest, err := m.nextPath()
	if err != nil {
		return Info{}, err
	}
	if err := snapshot(ctx, m.dbPath, dest); err != nil {
		return Info{}, fmt.Errorf("failed to back up database: %w", err)
	}

	st, err := os.Stat(dest)
	if err != nil {
		return Info{}, err
	}
	ts, _ := parseName(filepath.Base(dest))
	logger.Info("Backup created", "path", dest, "size", st.Size())
	return Info{Path: dest, Timestamp: ts, Size: st.Size()}, nil
}

// nextPath picks an unused file name for the current second.
func (m *Manager) nextPath() (string, error) {
	stamp := m.now().Format(stampFormat)
	for n := 0; n < 100; n++ {
		name := constants.BackupFilePrefix + stamp
		if n > 0 {
			name += "-" + strconv.Itoa(n)
		}
		path := filepath.Join(m.backupDir, name+constants.BackupFileSuffix)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to find a free backup name for %s", stamp)
}

// snapshot copies src to dest with VACUUM INTO, which produces a compact
// file even while other connections are writing.
func snapshot(ctx context.Context, src, dest string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	if err := verify(ctx, db); err != nil {
		return fmt.Errorf("source database is not usable: %w", err)
	}
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		logger.Debug("VACUUM INTO failed, copying file", "error", err)
		return copyFile(src, dest)
	}
	return nil
}

// List returns the backups, newest first. Files that do not follow the
// naming scheme are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []Info{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		st, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Timestamp: ts,
			Size:      st.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].Path > backups[j].Path
	})
	return backups, nil
}

// Latest returns the newest backup.
func (m *Manager) Latest() (Info, error) {
	backups, err := m.List()
	if err != nil {
		return Info{}, err
	}
	if len(backups) == 0 {
		return Info{}, ErrNoBackups
	}
	return backups[0], nil
}

// parseName reads the timestamp out of routinely-YYYYMMDD-HHMMSS[-N].db.
func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)
	if len(stamp) > len(stampFormat) {
		suffix := stamp[len(stampFormat):]
		if !strings.HasPrefix(suffix, "-") {
			return time.Time{}, false
		}
		if _, err := strconv.Atoi(suffix[1:]); err != nil {
			return time.Time{}, false
		}
		stamp = stamp[:len(stampFormat)]
	}
	ts, err := time.ParseInLocation(stampFormat, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func (m *Manager) prune() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for _, b := range backups[min(m.keep, len(backups)):] {
		if err := os.Remove(b.Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", b.Name(), err)
		}
		logger.Debug("Backup pruned", "path", b.Path)
	}
	return nil
}

// Restore replaces the database with the backup at path. The current
// database is backed up first, outside the rotation, and that copy is
// returned. Callers must close their own connections beforehand.
func (m *Manager) Restore(ctx context.Context, path string) (Info, error) {
	if err := Verify(ctx, path); err != nil {
		return Info{}, fmt.Errorf("backup %s is not a usable routinely database: %w", filepath.Base(path), err)
	}

	var safety Info
	if _, err := os.Stat(m.dbPath); err == nil {
		safety, err = m.create(ctx)
		if err != nil {
			return Info{}, fmt.Errorf("failed to back up current database before restore: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return Info{}, fmt.Errorf("failed to copy backup: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary restore file", "path", tmp, "error", rmErr)
		}
		return Info{}, fmt.Errorf("failed to restore database: %w", err)
	}
	logger.Info("Backup restored", "from", path, "safety_copy", safety.Path)
	return safety, nil
}

// Verify checks that path is a SQLite database holding habit data.
func Verify(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return verify(ctx, db)
}

func verify(ctx context.Context, db *sql.DB) error {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'habits'").Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("habits table missing")
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
