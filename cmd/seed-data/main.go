package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/channxy/ai-credit-assessment/internal/seeddata"
)

// Default configuration constants.
const (
	defaultUsers        = 25
	defaultTransactions = 12
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:8000", "Base URL of the service")
		users        = flag.Int("users", defaultUsers, "Number of synthetic users")
		transactions = flag.Int("transactions", defaultTransactions, "Transactions per user")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed         = flag.Uint64("seed", 0, "Generator seed, 0 for a random one")
		outputFile   = flag.String("output", "", "Write the generated users to this JSON file")
		logFile      = flag.String("log", "", "Log file for run output (default: seed_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seeddata.ShowHelp()
		return
	}

	closer, err := seeddata.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &seeddata.Config{
		BaseURL:             *baseURL,
		Users:               *users,
		TransactionsPerUser: *transactions,
		Workers:             *workers,
		Timeout:             *timeout,
		Seed:                *seed,
		OutputFile:          *outputFile,
		LogFile:             *logFile,
		Verbose:             *verbose,
	}

	if _, err := seeddata.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Seed run failed: " + err.Error() + "\n")
		cancel()
		closer.Close()
		os.Exit(1)
	}
}
