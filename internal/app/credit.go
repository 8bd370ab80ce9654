package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/channxy/ai-credit-assessment/internal/adapters/repository"
	"github.com/channxy/ai-credit-assessment/internal/domain/dedupe"
	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/scoring"
	"github.com/channxy/ai-credit-assessment/pkg/logger"
	"github.com/channxy/ai-credit-assessment/pkg/metrics"
	"github.com/channxy/ai-credit-assessment/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	storeLabel   = "store"
	historyLabel = "history"
)

func requireUser(userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidRequest)
	}
	return nil
}

// snapshot loads the profile and ledger for userID concurrently.
func (s *Service) snapshot(ctx context.Context, userID string) (model.Profile, []model.Transaction, error) {
	var (
		profile model.Profile
		txs     []model.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = read(gctx, s, storeLabel, "get_profile", func(c context.Context) (model.Profile, error) {
			return s.store.GetProfile(c, userID)
		})
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = read(gctx, s, storeLabel, "list_transactions", func(c context.Context) ([]model.Transaction, error) {
			return s.store.ListTransactions(c, userID)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Profile{}, nil, err
	}
	return profile, txs, nil
}

// Assess scores the stored profile and ledger of userID and stores the
// resulting assessment before returning it.
func (s *Service) Assess(ctx context.Context, userID string) (a model.Assessment, err error) {
	ctx, span := tracing.Start(ctx, "service.Assess", attribute.String("user_id", userID))
	defer func() {
		tracing.End(span, err)
		if err != nil {
			metrics.RecordAssessment(ErrorKind(err), 0)
			metrics.RecordErrorByComponent("service", ErrorKind(err))
		}
	}()

	if err = requireUser(userID); err != nil {
		return model.Assessment{}, err
	}
	profile, txs, err := s.snapshot(ctx, userID)
	if err != nil {
		return model.Assessment{}, err
	}
	a, err = s.scorer.Assess(userID, profile, txs)
	if err != nil {
		return model.Assessment{}, err
	}
	if err = write(ctx, s, storeLabel, "save_assessment", func(c context.Context) error {
		return s.store.SaveAssessment(c, a)
	}); err != nil {
		return model.Assessment{}, err
	}

	metrics.RecordAssessment(metrics.OutcomeSuccess, a.CreditScore)
	s.log().Debug(ctx, "assessment computed",
		logger.String("userId", userID),
		logger.Float64("score", a.CreditScore),
		logger.String("risk", string(a.RiskCategory)),
	)
	return a, nil
}

// Assessments lists stored assessments for userID, newest first.
func (s *Service) Assessments(ctx context.Context, userID string) ([]model.Assessment, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return read(ctx, s, storeLabel, "list_assessments", func(c context.Context) ([]model.Assessment, error) {
		return s.store.ListAssessments(c, userID)
	})
}

// PutProfile validates and stores p, replacing any earlier profile.
func (s *Service) PutProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	if err := requireUser(p.UserID); err != nil {
		return model.Profile{}, err
	}
	if err := scoring.Validate(p); err != nil {
		return model.Profile{}, err
	}
	p = p.Clone()
	p.UpdatedAt = s.now().UTC()
	if err := write(ctx, s, storeLabel, "put_profile", func(c context.Context) error {
		return s.store.PutProfile(c, p)
	}); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// Profile returns the stored profile of userID.
func (s *Service) Profile(ctx context.Context, userID string) (model.Profile, error) {
	if err := requireUser(userID); err != nil {
		return model.Profile{}, err
	}
	return read(ctx, s, storeLabel, "get_profile", func(c context.Context) (model.Profile, error) {
		return s.store.GetProfile(c, userID)
	})
}

// AddTransaction appends tx to the ledger. A transaction whose id was
// already seen for the same user is not stored again and duplicate is true.
func (s *Service) AddTransaction(ctx context.Context, tx model.Transaction) (stored model.Transaction, duplicate bool, err error) {
	if err = requireUser(tx.UserID); err != nil {
		return model.Transaction{}, false, err
	}
	if tx.ID == "" {
		tx.ID = s.newID()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = s.now().UTC()
	}
	if err = tx.Validate(); err != nil {
		return model.Transaction{}, false, err
	}

	key := dedupe.Key(tx.UserID, tx.ID)
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordTransactionDuplicate()
		return tx, true, nil
	}

	err = write(ctx, s, storeLabel, "append_transaction", func(c context.Context) error {
		return s.store.AppendTransaction(c, tx)
	})
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		// Stored before the cache saw it, e.g. by another replica.
		metrics.RecordTransactionDuplicate()
		return tx, true, nil
	case err != nil:
		s.deduper.Unrecord(ctx, key)
		s.log().Warn(ctx, "append transaction failed",
			logger.String("userId", tx.UserID),
			logger.String("transactionId", tx.ID),
			logger.Error(err),
		)
		return model.Transaction{}, false, err
	}
	metrics.RecordTransactionIngested()
	return tx, false, nil
}

// Transactions lists the ledger of userID, newest first.
func (s *Service) Transactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	txs, err := read(ctx, s, storeLabel, "list_transactions", func(c context.Context) ([]model.Transaction, error) {
		return s.store.ListTransactions(c, userID)
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.Transaction, len(txs))
	for i, tx := range txs {
		out[len(txs)-1-i] = tx
	}
	return out, nil
}
