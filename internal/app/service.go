// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/channxy/ai-credit-assessment/internal/adapters/repository"
	"github.com/channxy/ai-credit-assessment/internal/domain/advisor"
	"github.com/channxy/ai-credit-assessment/internal/domain/dedupe"
	"github.com/channxy/ai-credit-assessment/internal/domain/scoring"
	"github.com/channxy/ai-credit-assessment/internal/domain/simulation"
	"github.com/channxy/ai-credit-assessment/pkg/logger"
	"github.com/google/uuid"
)

// Service implements the API dependencies for credit assessment,
// simulation and recommendations.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	history   repository.HistoryStore
	deduper   dedupe.Deduper
	scorer    *scoring.Engine
	simulator *simulation.Engine
	advisor   *advisor.Advisor

	// Configuration
	dedupeSize          int
	storeTimeout        time.Duration
	retryAttempts       int
	retryBackoff        time.Duration
	historyDefaultLimit int
	maxHistoryLimit     int
	now                 func() time.Time
	newID               func() string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the profile, ledger and assessment store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithHistoryStore sets the simulation history store.
func WithHistoryStore(history repository.HistoryStore) Option {
	return func(s *Service) {
		if history != nil {
			s.history = history
		}
	}
}

// WithScorer sets the scoring engine. The default simulator is built on it.
func WithScorer(engine *scoring.Engine) Option {
	return func(s *Service) {
		if engine != nil {
			s.scorer = engine
		}
	}
}

// WithSimulator sets the simulation engine.
func WithSimulator(engine *simulation.Engine) Option {
	return func(s *Service) {
		if engine != nil {
			s.simulator = engine
		}
	}
}

// WithAdvisor sets the recommendation advisor.
func WithAdvisor(a *advisor.Advisor) Option {
	return func(s *Service) {
		if a != nil {
			s.advisor = a
		}
	}
}

// WithDedupeSize sets the size of the transaction idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStoreTimeout bounds each individual store call.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithRetry sets the total attempts and first backoff for store reads.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(s *Service) {
		if attempts > 0 {
			s.retryAttempts = attempts
		}
		if backoff >= 0 {
			s.retryBackoff = backoff
		}
	}
}

// WithHistoryLimits sets the default and maximum history page size.
func WithHistoryLimits(defaultLimit, maxLimit int) Option {
	return func(s *Service) {
		if defaultLimit > 0 && maxLimit >= defaultLimit {
			s.historyDefaultLimit = defaultLimit
			s.maxHistoryLimit = maxLimit
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the generator for server-assigned transaction ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New constructs a new Service. Unset components default to in-memory
// stores and engines built with default options.
func New(opts ...Option) *Service {
	s := &Service{
		dedupeSize:          100_000,
		storeTimeout:        2 * time.Second,
		retryAttempts:       3,
		retryBackoff:        50 * time.Millisecond,
		historyDefaultLimit: 5,
		maxHistoryLimit:     100,
		now:                 time.Now,
		newID:               uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.history == nil {
		s.history = repository.NewMemoryHistory()
	}
	if s.advisor == nil {
		s.advisor = advisor.New()
	}
	if s.scorer == nil {
		s.scorer = scoring.NewEngine(scoring.WithRecommender(s.advisor))
	}
	if s.simulator == nil {
		s.simulator = simulation.NewEngine(simulation.WithScorer(s.scorer))
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Start checks that remote stores are reachable.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().With(logger.String("component", "service"))
	}

	s.logger.Info(ctx, "starting credit service...")
	for name, backend := range map[string]any{"store": s.store, "history": s.history} {
		p, ok := backend.(pinger)
		if !ok {
			continue
		}
		pctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
		err := p.Ping(pctx)
		cancel()
		if err != nil {
			return fmt.Errorf("%s backend: %w", name, repository.Classify(ctx, err))
		}
	}

	s.started = true
	s.logger.Info(ctx, "credit service started",
		logger.String("store", fmt.Sprintf("%T", s.store)),
		logger.String("history", fmt.Sprintf("%T", s.history)),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("retryAttempts", s.retryAttempts),
	)
	return nil
}

// Stop releases backend resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping credit service...")

	closed := map[any]bool{}
	for _, backend := range []any{s.store, s.history} {
		c, ok := backend.(io.Closer)
		if !ok || closed[backend] {
			continue
		}
		closed[backend] = true
		if err := c.Close(); err != nil {
			s.logger.Warn(context.Background(), "closing backend failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "credit service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	weights := map[string]float64{}
	for f, w := range s.scorer.Weights() {
		weights[string(f)] = w
	}
	stats := map[string]interface{}{
		"started":       s.started,
		"modelVersion":  scoring.ModelVersion,
		"weights":       weights,
		"dedupeSize":    s.dedupeSize,
		"dedupeEntries": s.deduper.Size(),
		"store":         fmt.Sprintf("%T", s.store),
		"history":       fmt.Sprintf("%T", s.history),
	}
	if c, ok := s.history.(interface{ Count() int }); ok {
		stats["historyRecords"] = c.Count()
	}
	return stats
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Get()
	}
	return l
}
