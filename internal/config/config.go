// Package config defines service configuration and how it is loaded.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load layers a YAML file and environment variables on top and validates.
// - Derived values (durations, weights) are exposed as methods.
package config

import (
	"time"

	"github.com/channxy/ai-credit-assessment/internal/domain/types"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// RequestTimeoutMS bounds each API request end to end.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// StoreBackend holds profiles, transactions and assessments: memory or postgres.
	StoreBackend string `koanf:"store_backend"`
	// HistoryBackend holds simulation history: memory, postgres or redis.
	HistoryBackend string `koanf:"history_backend"`

	PostgresDSN      string `koanf:"postgres_dsn"`
	PostgresMaxConns int    `koanf:"postgres_max_conns"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// StoreTimeoutMS bounds every single store call.
	StoreTimeoutMS int `koanf:"store_timeout_ms"`
	// StoreRetryAttempts is the total number of tries for store reads.
	StoreRetryAttempts int `koanf:"store_retry_attempts"`
	// StoreRetryBackoffMS is the first retry delay; it doubles per attempt.
	StoreRetryBackoffMS int `koanf:"store_retry_backoff_ms"`

	// HistoryDefaultLimit applies when a history request has no limit.
	HistoryDefaultLimit int `koanf:"history_default_limit"`
	// MaxHistoryLimit caps GET /simulation/history?limit.
	MaxHistoryLimit int `koanf:"max_history_limit"`

	// DedupeSize sets how many transaction ids are remembered for idempotency.
	DedupeSize int `koanf:"dedupe_size"`

	// Factor weights; normalized by the scoring engine.
	WeightFinancial float64 `koanf:"weight_financial"`
	WeightCareer    float64 `koanf:"weight_career"`
	WeightHousing   float64 `koanf:"weight_housing"`
	WeightSocial    float64 `koanf:"weight_social"`

	// Salary band used by the career factor.
	SalaryReferenceMin float64 `koanf:"salary_reference_min"`
	SalaryReferenceMax float64 `koanf:"salary_reference_max"`

	// JobChangeExperienceDiscount is the share of tenure discounted on a job change.
	JobChangeExperienceDiscount float64 `koanf:"job_change_experience_discount"`

	TracingEnabled     bool    `koanf:"tracing_enabled"`
	TracingSampleRatio float64 `koanf:"tracing_sample_ratio"`
	ServiceName        string  `koanf:"service_name"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                    "info",
		LogFormat:                   "text",
		Addr:                        ":9080",
		RequestTimeoutMS:            5_000,
		StoreBackend:                BackendMemory,
		HistoryBackend:              BackendMemory,
		PostgresMaxConns:            10,
		RedisAddr:                   "localhost:6379",
		StoreTimeoutMS:              2_000,
		StoreRetryAttempts:          3,
		StoreRetryBackoffMS:         50,
		HistoryDefaultLimit:         5,
		MaxHistoryLimit:             100,
		DedupeSize:                  100_000,
		WeightFinancial:             0.40,
		WeightCareer:                0.30,
		WeightHousing:               0.10,
		WeightSocial:                0.20,
		SalaryReferenceMin:          20_000,
		SalaryReferenceMax:          100_000,
		JobChangeExperienceDiscount: 0.10,
		TracingSampleRatio:          1.0,
		ServiceName:                 "creditsim",
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// StoreTimeout returns StoreTimeoutMS as a duration.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutMS) * time.Millisecond
}

// RetryBackoff returns StoreRetryBackoffMS as a duration.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.StoreRetryBackoffMS) * time.Millisecond
}

// Weights returns the configured factor weights keyed by factor.
func (c *Config) Weights() map[types.Factor]float64 {
	return map[types.Factor]float64{
		types.FactorFinancial: c.WeightFinancial,
		types.FactorCareer:    c.WeightCareer,
		types.FactorHousing:   c.WeightHousing,
		types.FactorSocial:    c.WeightSocial,
	}
}
