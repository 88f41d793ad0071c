package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/routinely/internal/constants"
)

var (
	// Logger is the global logger instance
	Logger *log.Logger

	file *lumberjack.Logger
)

// Config holds logger configuration
type Config struct {
	Debug     bool
	ConfigDir string
}

// Path returns the log file location for a config directory.
func Path(configDir string) string {
	return filepath.Join(configDir, "logs", constants.AppName+".log")
}

// Init points the global logger at a rotating file under the config
// directory. In debug mode it also writes to stderr.
func Init(cfg Config) error {
	logFile := Path(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return err
	}

	Close()
	file = &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.WarnLevel
	var writer io.Writer = file
	if cfg.Debug {
		level = log.DebugLevel
		writer = io.MultiWriter(os.Stderr, file)
	}

	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})

	return nil
}

// Close releases the log file. Logging afterwards is a no-op until the next
// Init.
func Close() {
	if file != nil {
		_ = file.Close()
		file = nil
	}
	Logger = nil
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs a fatal error and exits
func Fatal(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Fatal(msg, keyvals...)
	}
	os.Exit(1)
}
