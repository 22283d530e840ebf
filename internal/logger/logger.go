package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/zappabad/stockhelper/internal/config"
)

var Log = logrus.New()

type Entry = logrus.Entry

// Init points the logger at the configured file. The terminal belongs to the
// TUI, so nothing is written to stdout once Init succeeds.
func Init(cfg config.LogConfig) (io.Closer, error) {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	if cfg.Path == "" {
		Log.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	Log.SetOutput(f)
	return f, nil
}

// For returns an entry tagged with the component name.
func For(component string) *Entry {
	return Log.WithField("component", component)
}
