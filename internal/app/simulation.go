package service

import (
	"context"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
	"github.com/channxy/ai-credit-assessment/pkg/logger"
	"github.com/channxy/ai-credit-assessment/pkg/metrics"
	"github.com/channxy/ai-credit-assessment/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// unknownScenario labels metrics and spans for unrecognized scenario names.
const unknownScenario = "unknown"

// Simulate runs req against the stored profile and ledger and appends the
// outcome to the user's history. The record is returned only once it is
// stored; a failed append returns an error and no result.
func (s *Service) Simulate(ctx context.Context, req model.SimulationRequest) (rec model.SimulationRecord, err error) {
	scenario := unknownScenario
	if t, ok := types.ParseScenarioType(string(req.ScenarioType)); ok {
		req.ScenarioType = t
		scenario = string(t)
	}
	ctx, span := tracing.Start(ctx, "service.Simulate",
		attribute.String("user_id", req.UserID),
		attribute.String("scenario", scenario),
	)
	defer func() {
		tracing.End(span, err)
		if err != nil {
			metrics.RecordSimulation(scenario, ErrorKind(err), 0)
			metrics.RecordErrorByComponent("service", ErrorKind(err))
		}
	}()

	if err = requireUser(req.UserID); err != nil {
		return model.SimulationRecord{}, err
	}
	profile, txs, err := s.snapshot(ctx, req.UserID)
	if err != nil {
		return model.SimulationRecord{}, err
	}
	res, err := s.simulator.Simulate(profile, txs, req)
	if err != nil {
		return model.SimulationRecord{}, err
	}

	rec = model.NewSimulationRecord(req, res, s.now())
	id, err := call(ctx, s, historyLabel, "append", func(c context.Context) (string, error) {
		return s.history.Append(c, rec)
	})
	if err != nil {
		metrics.RecordHistoryAppend(ErrorKind(err))
		s.log().Error(ctx, "history append failed, discarding simulation result",
			logger.String("userId", req.UserID),
			logger.String("scenario", scenario),
			logger.Error(err),
		)
		return model.SimulationRecord{}, err
	}
	rec.ID = id
	metrics.RecordHistoryAppend("")
	metrics.RecordSimulation(scenario, metrics.OutcomeSuccess, res.ScoreChange)
	return rec, nil
}

// History returns up to limit records for userID, most recent first.
// A non-positive limit means the default page size; larger limits are
// clamped to the maximum.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]model.SimulationRecord, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = s.historyDefaultLimit
	case limit > s.maxHistoryLimit:
		limit = s.maxHistoryLimit
	}
	return read(ctx, s, historyLabel, "list", func(c context.Context) ([]model.SimulationRecord, error) {
		return s.history.List(c, userID, limit)
	})
}
