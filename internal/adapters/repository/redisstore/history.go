// Package redisstore keeps simulation history in Redis lists, one list per
// user with the newest record at the head.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/channxy/ai-credit-assessment/internal/adapters/repository"
	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "creditsim:history:"

// History implements repository.HistoryStore. A single LPUSH per append is
// atomic per key, so concurrent appends for one user are never lost or torn.
type History struct {
	client    redis.UniversalClient
	keyPrefix string
	newID     func() string
	now       func() time.Time
}

var _ repository.HistoryStore = (*History)(nil)

// Option applies a configuration option to History.
type Option func(*History)

// WithKeyPrefix sets the prefix of the per-user list keys.
func WithKeyPrefix(prefix string) Option {
	return func(h *History) {
		if prefix != "" {
			h.keyPrefix = prefix
		}
	}
}

// WithIDGenerator sets the generator used for record ids.
func WithIDGenerator(fn func() string) Option {
	return func(h *History) {
		if fn != nil {
			h.newID = fn
		}
	}
}

// WithClock sets the time source for records without a timestamp.
func WithClock(fn func() time.Time) Option {
	return func(h *History) {
		if fn != nil {
			h.now = fn
		}
	}
}

// NewClient builds a go-redis client with the pool settings used by the service.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// New creates a History over client.
func New(client redis.UniversalClient, opts ...Option) *History {
	h := &History{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *History) key(userID string) string {
	return h.keyPrefix + userID
}

// Ping checks connectivity.
func (h *History) Ping(ctx context.Context) error {
	if err := h.client.Ping(ctx).Err(); err != nil {
		return repository.Classify(ctx, fmt.Errorf("redis ping failed: %w", err))
	}
	return nil
}

// Close closes the underlying client.
func (h *History) Close() error {
	return h.client.Close()
}

func (h *History) Append(ctx context.Context, rec model.SimulationRecord) (string, error) {
	if err := repository.CheckContext(ctx); err != nil {
		return "", err
	}
	if rec.ID == "" {
		rec.ID = h.newID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = h.now().UTC()
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	if err := h.client.LPush(ctx, h.key(rec.UserID), body).Err(); err != nil {
		return "", repository.Classify(ctx, err)
	}
	return rec.ID, nil
}

func (h *History) List(ctx context.Context, userID string, limit int) ([]model.SimulationRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raw, err := h.client.LRange(ctx, h.key(userID), 0, stop).Result()
	if err != nil {
		return nil, repository.Classify(ctx, err)
	}
	out := make([]model.SimulationRecord, 0, len(raw))
	for _, item := range raw {
		var rec model.SimulationRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("%w: decode record: %v", repository.ErrStorageUnavailable, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
