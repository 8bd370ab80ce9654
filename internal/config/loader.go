package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "CREDITSIM_"
	envFileVar = "CREDITSIM_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if CREDITSIM_CONFIG is set
//  3. env (prefix CREDITSIM_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// CREDITSIM_STORE_BACKEND -> store_backend (flat keys, underscores kept).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting as a *SettingError.
func (c *Config) Validate() error {
	invalid := func(key, format string, args ...any) error {
		return &SettingError{Key: key, Reason: fmt.Sprintf(format, args...)}
	}
	switch {
	case c.Addr == "":
		return invalid("addr", "must not be empty")
	case c.LogFormat != "text" && c.LogFormat != "json":
		return invalid("log_format", "must be text or json, got %q", c.LogFormat)
	case c.StoreBackend != BackendMemory && c.StoreBackend != BackendPostgres:
		return invalid("store_backend", "must be memory or postgres, got %q", c.StoreBackend)
	case c.HistoryBackend != BackendMemory && c.HistoryBackend != BackendPostgres && c.HistoryBackend != BackendRedis:
		return invalid("history_backend", "must be memory, postgres or redis, got %q", c.HistoryBackend)
	case (c.StoreBackend == BackendPostgres || c.HistoryBackend == BackendPostgres) && c.PostgresDSN == "":
		return invalid("postgres_dsn", "postgres_dsn is required for the postgres backend")
	case c.HistoryBackend == BackendRedis && c.RedisAddr == "":
		return invalid("redis_addr", "redis_addr is required for the redis backend")
	case c.RequestTimeoutMS <= 0:
		return invalid("request_timeout_ms", "must be positive")
	case c.StoreTimeoutMS <= 0:
		return invalid("store_timeout_ms", "must be positive")
	case c.StoreRetryAttempts < 1:
		return invalid("store_retry_attempts", "must be at least 1")
	case c.StoreRetryBackoffMS < 0:
		return invalid("store_retry_backoff_ms", "must not be negative")
	case c.HistoryDefaultLimit <= 0 || c.MaxHistoryLimit < c.HistoryDefaultLimit:
		return invalid("history_default_limit", "history limits must satisfy 0 < history_default_limit <= max_history_limit")
	case c.WeightFinancial < 0 || c.WeightCareer < 0 || c.WeightHousing < 0 || c.WeightSocial < 0:
		return invalid("weight", "factor weights must not be negative")
	case c.WeightFinancial+c.WeightCareer+c.WeightHousing+c.WeightSocial <= 0:
		return invalid("weight", "factor weights must sum to a positive value")
	case c.SalaryReferenceMin < 0 || c.SalaryReferenceMax <= c.SalaryReferenceMin:
		return invalid("salary_reference_max", "salary reference band must satisfy 0 <= min < max")
	case c.JobChangeExperienceDiscount < 0 || c.JobChangeExperienceDiscount >= 1:
		return invalid("job_change_experience_discount", "must be in [0,1)")
	case c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1:
		return invalid("tracing_sample_ratio", "must be in [0,1]")
	}
	return nil
}
