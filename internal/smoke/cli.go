package smoke

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/mergington/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends log output to stdout and logFile.
// If logFile is empty, a timestamped filename is generated. The returned
// func closes the log file and must be called once the run is over.
func SetupLogging(logFile string) (string, func() error, error) {
	noop := func() error { return nil }
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "smoke_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return "", noop, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.InitWithWriter(io.MultiWriter(os.Stdout, file)); err != nil {
		_ = file.Close()
		return "", noop, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logFile, file.Close, nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	os.Stdout.WriteString(`Mergington Signup Smoke Tool
============================

Fills an activity with generated students, checks the full and duplicate
rejections, then unregisters everyone it added.

Usage:
  go run ./cmd/signup-smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -activity string
        Activity to fill (default "Chess Club")
  -students int
        Students to sign up; 0 fills the free spots (default 0)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -log string
        Log file for run output (default: smoke_log_TIMESTAMP.log)
  -verbose
        Log every request
  -help
        Show this help message

Examples:
  # Fill Chess Club on a local server
  go run ./cmd/signup-smoke

  # Overbook Math Club by five students
  go run ./cmd/signup-smoke -activity "Math Club" -students 13
`)
}
