package repository

import (
	"time"

	"github.com/google/uuid"
)

type memoryConfig struct {
	newID func() string
	now   func() time.Time
}

func defaultMemoryConfig() memoryConfig {
	return memoryConfig{
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Option applies a configuration option to the in-memory stores.
type Option func(*memoryConfig)

// WithIDGenerator sets the generator used for history record ids.
func WithIDGenerator(fn func() string) Option {
	return func(c *memoryConfig) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithClock sets the time source used to stamp records missing a timestamp.
func WithClock(fn func() time.Time) Option {
	return func(c *memoryConfig) {
		if fn != nil {
			c.now = fn
		}
	}
}
