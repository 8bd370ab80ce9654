package service

import (
	"context"
	"errors"
	"time"

	"github.com/channxy/ai-credit-assessment/internal/adapters/repository"
	"github.com/channxy/ai-credit-assessment/pkg/logger"
	"github.com/channxy/ai-credit-assessment/pkg/metrics"
	"github.com/channxy/ai-credit-assessment/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// call runs one store operation under the store timeout and records its
// latency, errors and span. Errors come back classified.
func call[T any](ctx context.Context, s *Service, store, op string, fn func(context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	cctx, span := tracing.Start(cctx, "store."+op, attribute.String("store", store))

	start := time.Now()
	v, err := fn(cctx)
	err = repository.Classify(cctx, err)
	metrics.RecordStoreOperation(store, op, float64(time.Since(start).Microseconds())/1000)

	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		metrics.RecordStoreError(store, ErrorKind(err))
		tracing.End(span, err)
	} else {
		span.End()
	}
	return v, err
}

// read is call with retries. Only StorageUnavailable is retried; the delay
// doubles after each attempt and waiting stops when ctx is done.
func read[T any](ctx context.Context, s *Service, store, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	delay := s.retryBackoff
	for attempt := 1; ; attempt++ {
		v, err := call(ctx, s, store, op, fn)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, repository.ErrStorageUnavailable) || attempt >= s.retryAttempts {
			return zero, err
		}
		metrics.RecordStoreRetry(op)
		s.log().Warn(ctx, "store read failed, retrying",
			logger.String("operation", op),
			logger.Int("attempt", attempt),
			logger.Duration("backoff", delay),
			logger.Error(err),
		)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, repository.Classify(ctx, ctx.Err())
		case <-t.C:
		}
		delay *= 2
	}
}

// write is call for operations that return only an error. Writes are never
// retried.
func write(ctx context.Context, s *Service, store, op string, fn func(context.Context) error) error {
	_, err := call(ctx, s, store, op, func(c context.Context) (struct{}, error) {
		return struct{}{}, fn(c)
	})
	return err
}
