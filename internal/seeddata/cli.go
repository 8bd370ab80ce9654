package seeddata

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/channxy/ai-credit-assessment/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	os.Stdout.WriteString(`Credit Assessment Seed Tool
===========================

Seeds a running service with synthetic users and walks every endpoint:
profiles, transactions (including a duplicate replay), assessment, all five
what-if scenarios, simulation history, recommendations and improvement plan.

Usage:
  go run cmd/seed-data/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -users int
        Number of synthetic users (default 25)
  -transactions int
        Transactions per user (default 12)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -seed uint
        Generator seed, 0 for a random one (default 0)
  -output string
        Write the generated users to this JSON file
  -log string
        Log file for run output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed-data/main.go

  # Reproducible run against another host
  go run cmd/seed-data/main.go -users 200 -seed 42 -url http://localhost:9000
`)
}
