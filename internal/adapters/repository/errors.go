package repository

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel kinds for storage errors.
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already stored")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrTimeout            = errors.New("storage timeout")
	ErrCancelled          = errors.New("request cancelled")
)

// Classify maps a context or driver error onto one of the sentinel kinds.
// Errors that already carry a kind are returned unchanged.
func Classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{ErrNotFound, ErrDuplicate, ErrStorageUnavailable, ErrTimeout, ErrCancelled} {
		if errors.Is(err, kind) {
			return err
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	// Drivers often surface their own error when the context expires mid-call.
	if ctx != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Classify(context.Background(), ctxErr)
		}
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

// CheckContext returns the classified context error, if any.
func CheckContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return Classify(context.Background(), ctx.Err())
}
