package simulate

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/okian/rhythm/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging returns a logger writing to stdout and, when logFile is set,
// to that file as well.
func SetupLogging(logFile string, verbose bool) (logger.Logger, func() error, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	var w io.Writer = os.Stdout
	closeFn := func() error { return nil }
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, f)
		closeFn = f.Close
	}
	l, err := logger.New(w, level, logger.FormatText)
	if err != nil {
		return nil, nil, err
	}
	return l.Named("simulate"), closeFn, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Rhythm Sync Simulator
=====================

Generates synthetic user histories, submits them to a running sync service
and checks the results against each user's profile.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -users int
        Number of synthetic users (default 30)
  -days int
        Days of history per user (default 30)
  -workers int
        Number of concurrent submissions (default CPU cores * 2)
  -seed int
        Generator seed (default 1)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Write the generated inputs to this JSON file
  -log string
        Also write logs to this file
  -verbose
        Log every user result
  -help
        Show this help message
`)
}
