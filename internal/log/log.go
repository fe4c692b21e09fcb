package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

var logFilePath string

// InitLogger points the global logger at a fresh per-invocation log file,
// e.g. <logDir>/clone_20260828-153012.log. The console stays reserved for
// the status views, so the logger never writes to stdout.
func InitLogger(logDir string, command string, verbose bool) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("could not create log directory %s: %w", logDir, err)
	}

	logFilePath = filepath.Join(logDir, fmt.Sprintf("%s_%s.log", command, time.Now().Format("20060102-150405")))
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}

	Log.SetOutput(file)
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		Log.SetLevel(logrus.DebugLevel)
		Log.Debugln("Verbose (debug) logging enabled")
	} else {
		Log.SetLevel(logrus.InfoLevel)
	}
	return nil
}

func GetLogFilePath() string {
	return logFilePath
}

// RedirectTo moves subsequent log output into dir, used once an enlistment
// gains its own log directory mid-operation. A no-op before InitLogger.
func RedirectTo(dir string) error {
	if logFilePath == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create log directory %s: %w", dir, err)
	}
	newPath := filepath.Join(dir, filepath.Base(logFilePath))
	file, err := os.OpenFile(newPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}
	Log.SetOutput(file)
	logFilePath = newPath
	return nil
}

// ErrorsTo forwards every error-level entry to ch, dropping entries when the
// channel is full so logging never blocks on a slow consumer.
func ErrorsTo(ch chan<- error) {
	Log.AddHook(&channelHook{ch: ch})
}

type channelHook struct {
	ch chan<- error
}

func (h *channelHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.ErrorLevel}
}

func (h *channelHook) Fire(entry *logrus.Entry) error {
	select {
	case h.ch <- errors.New(entry.Message):
	default:
	}
	return nil
}

// DefaultLogDir is where logs go before an enlistment root is known.
func DefaultLogDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "vgm", "logs")
	}
	return filepath.Join(homeDir, ".vgm", "logs")
}
