package seeddata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/channxy/ai-credit-assessment/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	outputPermission    = 0600
)

// Run executes the complete seed run and returns its statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}
	runID := uuid.NewString()[:8]

	logger.Get().Info(ctx, "starting seed run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("users", cfg.Users),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Any("seed", cfg.Seed),
		logger.String("runID", runID),
		logger.Any("verbose", cfg.Verbose))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate users
	users, err := generateUsers(ctx, cfg, runID, time.Now().UTC(), stats)
	if err != nil {
		return stats, fmt.Errorf("user generation failed: %w", err)
	}

	// Step 3: Store profiles and ledgers concurrently
	stored := submitUsers(ctx, cfg, client, users, stats)
	if len(stored) == 0 {
		return stats, errors.New("no profile was accepted")
	}

	// Step 4: Replays must be idempotent
	if err := replayTransactions(ctx, client, stored, stats); err != nil {
		return stats, fmt.Errorf("duplicate replay failed: %w", err)
	}

	// Step 5: Assess, simulate and fetch advice
	outcomes, err := exerciseUsers(ctx, cfg, client, stored, stats)
	if err != nil {
		return stats, fmt.Errorf("endpoint walk failed: %w", err)
	}

	// Step 6: Verify results
	if err := verifyOutcomes(ctx, outcomes, cfg.Verbose); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	// Step 7: Save users to file
	if cfg.OutputFile != "" {
		if err := saveUsersToFile(ctx, cfg.OutputFile, stored); err != nil {
			logger.Get().Warn(ctx, "failed to save users to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "seed run completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")
	// /healthz serves Prometheus text; any 2xx counts as healthy.
	if _, err := client.Get(ctx, "/healthz", nil); err != nil {
		return fmt.Errorf("failed to reach service: %w", err)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveUsersToFile writes the generated users as a JSON array.
func saveUsersToFile(ctx context.Context, filename string, users []User) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}
	if err := os.WriteFile(filename, data, outputPermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Get().Info(ctx, "users saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, requestsPerSecond float64

	if stats.TransactionsSubmitted > 0 {
		successRate = float64(stats.TransactionsCreated+stats.TransactionsDuplicate) /
			float64(stats.TransactionsSubmitted) * PercentageMultiplier
	}
	requests := stats.ProfilesStored + stats.TransactionsSubmitted + stats.ReplaysConfirmed +
		stats.Assessments + stats.Simulations + stats.SimulationsFailed
	if stats.Duration > 0 {
		requestsPerSecond = float64(requests) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("usersGenerated", stats.UsersGenerated),
		logger.Int("profilesStored", stats.ProfilesStored),
		logger.Int("transactionsSubmitted", stats.TransactionsSubmitted),
		logger.Int("transactionsCreated", stats.TransactionsCreated),
		logger.Int("transactionsDuplicate", stats.TransactionsDuplicate),
		logger.Int("transactionsFailed", stats.TransactionsFailed),
		logger.Int("replaysConfirmed", stats.ReplaysConfirmed),
		logger.Int("assessments", stats.Assessments),
		logger.Int("simulations", stats.Simulations),
		logger.Int("simulationsFailed", stats.SimulationsFailed),
		logger.Int("historyRecords", stats.HistoryRecords),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("transactionSuccessRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
