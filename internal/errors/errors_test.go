package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/julianstephens/routinely/internal/habits"
	"github.com/julianstephens/routinely/internal/keyring"
	"github.com/julianstephens/routinely/internal/migration"
	"github.com/julianstephens/routinely/internal/models"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, ""},
		{"simple error", errors.New("something went wrong"), "Error: something went wrong"},
		{"invalid habit", &models.InvalidHabitError{Field: "name", Reason: "cannot be empty"}, "Error: invalid habit: name cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Format(tt.err); result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	if got, want := Formatf("habit %d not found", 4), "Error: habit 4 not found"; got != want {
		t.Errorf("Formatf() = %q, want %q", got, want)
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string // substring; empty means no hint
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), ""},
		{"schedule", &models.InvalidHabitError{Field: "schedule"}, "mon,wed,fri"},
		{"reminder time", fmt.Errorf("create: %w", &models.InvalidHabitError{Field: "notification_time"}), "07:30"},
		{"blank name has no hint", &models.InvalidHabitError{Field: "name"}, ""},
		{"unknown habit", fmt.Errorf("habit 9: %w", habits.ErrHabitNotFound), "habit list"},
		{"schema", fmt.Errorf("load: %w", migration.ErrSchemaTooNew), "newer routinely"},
		{"keyring", keyring.ErrNotFound, "keyring set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hint(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("Hint() = %q, want none", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Hint() = %q, want it to mention %q", got, tt.want)
			}
		})
	}
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	Report(&buf, fmt.Errorf("habit 3: %w", habits.ErrHabitNotFound))
	want := "Error: habit 3: habit not found\nHint: Run 'routinely habit list' to see habit ids.\n"
	if buf.String() != want {
		t.Errorf("Report() wrote %q, want %q", buf.String(), want)
	}

	buf.Reset()
	Report(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("Report(nil) wrote %q", buf.String())
	}
}

func runHelper(t *testing.T, test, env string) (*exec.ExitError, string) {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^"+test+"$")
	cmd.Env = append(os.Environ(), env+"=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr, stderr.String()
	}
	if err != nil {
		t.Fatalf("helper process failed to run: %v", err)
	}
	return nil, stderr.String()
}

func TestFatal(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL") == "1" {
		Fatal(fmt.Errorf("habit 2: %w", habits.ErrHabitNotFound))
		return
	}

	exitErr, stderr := runHelper(t, "TestFatal", "GO_TEST_FATAL")
	if exitErr == nil {
		t.Fatal("Fatal() did not exit with an error")
	}
	if exitErr.ExitCode() != 1 {
		t.Errorf("Fatal() exit code = %d, want 1", exitErr.ExitCode())
	}
	for _, want := range []string{"Error: habit 2: habit not found", "Hint: Run 'routinely habit list'"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("Fatal() stderr = %q, want to contain %q", stderr, want)
		}
	}
}

func TestFatalNilError(t *testing.T) {
	if os.Getenv("GO_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	if exitErr, _ := runHelper(t, "TestFatalNilError", "GO_TEST_FATAL_NIL"); exitErr != nil {
		t.Errorf("Fatal(nil) should not exit, but got: %v", exitErr)
	}
}

func TestFatalf(t *testing.T) {
	if os.Getenv("GO_TEST_FATALF") == "1" {
		Fatalf("connection to %s:%d failed", "localhost", 5432)
		return
	}

	exitErr, stderr := runHelper(t, "TestFatalf", "GO_TEST_FATALF")
	if exitErr == nil || exitErr.ExitCode() != 1 {
		t.Fatalf("Fatalf() did not exit with code 1: %v", exitErr)
	}
	if !strings.Contains(stderr, "Error: connection to localhost:5432 failed") {
		t.Errorf("Fatalf() stderr = %q", stderr)
	}
}
