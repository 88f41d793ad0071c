// Package notifier delivers reminder text to the routinely tray process
// through its local webhook.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/routinely/internal/constants"
	"github.com/julianstephens/routinely/internal/logger"
)

// SecretHeader carries the shared secret from the tray lockfile.
const SecretHeader = "X-Routinely-Secret"

var (
	// ErrTrayNotRunning means no live tray process owns the lockfile.
	ErrTrayNotRunning = errors.New("routinely-tray is not running")

	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
	retryDelay        = constants.NotifyRetryDelay
)

type Notifier struct {
	client *http.Client
}

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

func New() *Notifier {
	return &Notifier{client: &http.Client{Timeout: 5 * time.Second}}
}

// Notify shows text in the tray. Delivery is retried a few times when the
// webhook is unreachable; a missing tray process is reported immediately.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	trayAppConfigPath, err := GetTrayAppConfigDir()
	if err != nil {
		return err
	}

	port, secret, err := findAndValidateTrayProcess(filepath.Join(trayAppConfigPath, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	payload := WebhookPayload{
		Text:       text,
		DurationMs: constants.NotificationDurationMs,
	}

	var lastErr error
	for attempt := 1; attempt <= constants.NotifyMaxRetries; attempt++ {
		lastErr = n.send(ctx, port, secret, payload)
		if lastErr == nil {
			return nil
		}
		logger.Debug("Notification attempt failed", "attempt", attempt, "error", lastErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return fmt.Errorf("notification failed after %d attempts: %w", constants.NotifyMaxRetries, lastErr)
}

// GetTrayAppConfigDir returns the configuration directory used by the tray application.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	// settings.json may move the lockfile elsewhere
	data, err := os.ReadFile(filepath.Join(trayConfigDir, "settings.json"))
	if err == nil {
		var store struct {
			Settings struct {
				LockfileDir *string `json:"lockfile_dir"`
			} `json:"settings"`
		}
		if err := json.Unmarshal(data, &store); err == nil {
			if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
				return *store.Settings.LockfileDir, nil
			}
		}
	}

	return trayConfigDir, nil
}

// findAndValidateTrayProcess reads "port|pid|secret" from the lockfile and
// checks that pid is a live tray process.
func findAndValidateTrayProcess(lockfilePath string) (string, string, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", ErrTrayNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("lockfile is malformed")
	}

	port := strings.TrimSpace(parts[0])
	if port == "" {
		return "", "", errors.New("port in lockfile is empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "", errors.New("invalid process ID in lockfile")
	}
	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return "", "", errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", ErrTrayNotRunning
	}

	if !strings.HasPrefix(process.Executable(), constants.TrayExecutablePrefix) {
		return "", "", fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.TrayExecutablePrefix, process.Executable())
	}

	return port, secret, nil
}

func (n *Notifier) send(ctx context.Context, port string, secret string, payload WebhookPayload) error {
	url := fmt.Sprintf("http://127.0.0.1:%s", port)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SecretHeader, secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(body))
}
