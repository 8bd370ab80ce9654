package seeddata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/channxy/ai-credit-assessment/pkg/logger"
)

// submitUsers stores every profile and ledger using a worker pool. A user
// whose profile is rejected is skipped entirely.
func submitUsers(ctx context.Context, cfg *Config, client *HTTPClient, users []User, stats *Stats) []User {
	logger.Get().Info(ctx, "submitting users",
		logger.Int("users", len(users)),
		logger.Int("workers", cfg.Workers))

	var (
		profiles   atomic.Int64
		submitted  atomic.Int64
		created    atomic.Int64
		duplicate  atomic.Int64
		failed     atomic.Int64
		lastReport atomic.Int64
		mu         sync.Mutex
		stored     = make([]User, 0, len(users))
	)

	userChan := make(chan User, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range userChan {
				if ctx.Err() != nil {
					return
				}
				if _, err := client.Post(ctx, "/api/v1/credit/profiles", u.Profile, nil); err != nil {
					failed.Add(1)
					logger.Get().Warn(ctx, "profile rejected",
						logger.String("userID", u.Profile.UserID), logger.Error(err))
					continue
				}
				profiles.Add(1)

				for _, tx := range u.Transactions {
					submitted.Add(1)
					switch submitTransaction(ctx, client, tx) {
					case resultCreated:
						created.Add(1)
					case resultDuplicate:
						duplicate.Add(1)
					default:
						failed.Add(1)
					}
				}
				mu.Lock()
				stored = append(stored, u)
				mu.Unlock()

				now := time.Now().UnixNano()
				if last := lastReport.Load(); now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					logger.Get().Debug(ctx, "progress",
						logger.Int("profiles", int(profiles.Load())),
						logger.Int("transactions", int(submitted.Load())),
						logger.Int("failed", int(failed.Load())))
				}
			}
		}()
	}

	go func() {
		defer close(userChan)
		for _, u := range users {
			select {
			case <-ctx.Done():
				return
			case userChan <- u:
			}
		}
	}()

	wg.Wait()

	stats.ProfilesStored = int(profiles.Load())
	stats.TransactionsSubmitted = int(submitted.Load())
	stats.TransactionsCreated = int(created.Load())
	stats.TransactionsDuplicate = int(duplicate.Load())
	stats.TransactionsFailed = int(failed.Load())

	logger.Get().Info(ctx, "submission completed",
		logger.Int("profiles", stats.ProfilesStored),
		logger.Int("created", stats.TransactionsCreated),
		logger.Int("duplicate", stats.TransactionsDuplicate),
		logger.Int("failed", stats.TransactionsFailed))
	return stored
}

type submitResult int

const (
	resultFailed submitResult = iota
	resultCreated
	resultDuplicate
)

// submitTransaction posts tx: 201 is new, 200 with duplicate set is a replay.
func submitTransaction(ctx context.Context, client *HTTPClient, tx any) submitResult {
	var ack transactionAck
	status, err := client.Post(ctx, "/api/v1/credit/transactions", tx, &ack)
	switch {
	case err != nil:
		return resultFailed
	case status == http.StatusCreated:
		return resultCreated
	case status == http.StatusOK && ack.Duplicate:
		return resultDuplicate
	default:
		return resultFailed
	}
}

// replayTransactions resubmits each user's first transaction and expects the
// service to report it as a duplicate.
func replayTransactions(ctx context.Context, client *HTTPClient, users []User, stats *Stats) error {
	logger.Get().Info(ctx, "replaying transactions", logger.Int("users", len(users)))

	var errs []error
	for _, u := range users {
		if len(u.Transactions) == 0 {
			continue
		}
		tx := u.Transactions[0]
		if got := submitTransaction(ctx, client, tx); got != resultDuplicate {
			errs = append(errs, fmt.Errorf("replay of %s for %s was not reported as duplicate", tx.ID, u.Profile.UserID))
			continue
		}
		stats.ReplaysConfirmed++
	}
	return errors.Join(errs...)
}
