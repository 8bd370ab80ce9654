package seeddata

import (
	"time"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	PercentageMultiplier    = 100
	progressInterval        = time.Second
)

// Config holds configuration for a seed run.
type Config struct {
	BaseURL             string        // Base URL of the service
	Users               int           // Number of synthetic users
	TransactionsPerUser int           // Ledger entries per user
	Workers             int           // Number of concurrent workers
	Timeout             time.Duration // HTTP request timeout
	Seed                uint64        // Generator seed; 0 picks one per run
	OutputFile          string        // Optional JSON dump of the generated users
	LogFile             string        // Log file for run output
	Verbose             bool          // Enable verbose logging
}

// User is one generated user: a profile and its ledger.
type User struct {
	Profile      model.Profile       `json:"profile"`
	Transactions []model.Transaction `json:"transactions"`
}

// transactionAck mirrors the transaction endpoint response.
type transactionAck struct {
	model.Transaction
	Duplicate bool `json:"duplicate"`
}

// simulationAck mirrors the scenario endpoint response.
type simulationAck struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	ScenarioType types.ScenarioType `json:"scenario_type"`
	model.SimulationResult
	CreatedAt time.Time `json:"created_at"`
}

// Outcome is what the service reported for one seeded user.
type Outcome struct {
	UserID          string
	Assessment      model.Assessment
	Simulations     []simulationAck
	History         []model.SimulationRecord
	Recommendations model.RecommendationReport
	Plan            model.ImprovementPlan
}

// Stats holds run statistics.
type Stats struct {
	UsersGenerated        int
	ProfilesStored        int
	TransactionsSubmitted int
	TransactionsCreated   int
	TransactionsDuplicate int
	TransactionsFailed    int
	ReplaysConfirmed      int
	Assessments           int
	Simulations           int
	SimulationsFailed     int
	HistoryRecords        int
	StartTime             time.Time
	EndTime               time.Time
	Duration              time.Duration
}
