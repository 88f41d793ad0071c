package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/routinely/internal/backup"
	"github.com/julianstephens/routinely/internal/habits"
	"github.com/julianstephens/routinely/internal/keyring"
	"github.com/julianstephens/routinely/internal/logger"
	"github.com/julianstephens/routinely/internal/migration"
	"github.com/julianstephens/routinely/internal/models"
	"github.com/julianstephens/routinely/internal/storage/postgres"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint suggests what to do about err, or returns "" when there is nothing
// useful to add.
func Hint(err error) string {
	var invalid *models.InvalidHabitError
	switch {
	case err == nil:
		return ""
	case stderrors.As(err, &invalid):
		switch invalid.Field {
		case "schedule":
			return "Schedules look like daily, weekdays, weekend or mon,wed,fri."
		case "notification_time":
			return "Use 24-hour time, for example 07:30."
		case "target_value":
			return "Targets start at 1; use 1 for a plain done/not-done habit."
		}
	case stderrors.Is(err, habits.ErrHabitNotFound):
		return "Run 'routinely habit list' to see habit ids."
	case stderrors.Is(err, migration.ErrSchemaTooNew):
		return "The database was written by a newer routinely. Upgrade before continuing."
	case stderrors.Is(err, keyring.ErrNotFound):
		return "Store a connection string with 'routinely keyring set'."
	case stderrors.Is(err, postgres.ErrEmbeddedCredentials):
		return "Keep the password out of --config: use 'routinely keyring set', PGPASSWORD or ~/.pgpass."
	case stderrors.Is(err, backup.ErrNoBackups):
		return "Create one with 'routinely backup create'."
	}
	return ""
}

// Report writes the formatted error and its hint to w.
func Report(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, Format(err))
	if hint := Hint(err); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		Report(os.Stderr, err)
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	Fatal(fmt.Errorf(format, args...))
}
