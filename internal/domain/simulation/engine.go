// Package simulation answers what-if questions by applying a scenario to a
// copy of a resolved profile and re-scoring it with the scoring engine.
package simulation

import (
	"fmt"
	"math"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/scoring"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
)

const (
	defaultExperienceDiscount = 0.10
	// minimalChange is the score delta below which a scenario is reported as minimal.
	minimalChange = 0.5
)

// Engine runs scenarios. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	scorer             *scoring.Engine
	experienceDiscount float64
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithScorer sets the scoring engine used for both baseline and simulated scores.
func WithScorer(s *scoring.Engine) Option {
	return func(e *Engine) {
		if s != nil {
			e.scorer = s
		}
	}
}

// WithExperienceDiscount sets the share of tenure discounted on a job change.
// Values outside [0,1) are ignored.
func WithExperienceDiscount(d float64) Option {
	return func(e *Engine) {
		if d >= 0 && d < 1 {
			e.experienceDiscount = d
		}
	}
}

// NewEngine creates a simulation Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		scorer:             scoring.NewEngine(),
		experienceDiscount: defaultExperienceDiscount,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Simulate parses req, resolves p and runs the scenario. p and txs are
// never modified.
func (e *Engine) Simulate(p model.Profile, txs []model.Transaction, req model.SimulationRequest) (model.SimulationResult, error) {
	sc, err := ParseScenario(req.ScenarioType, req.Parameters)
	if err != nil {
		return model.SimulationResult{}, err
	}
	facts, err := scoring.Resolve(p)
	if err != nil {
		return model.SimulationResult{}, err
	}
	return e.Run(facts, model.Aggregate(txs), sc)
}

// Run applies sc to a copy of f and reports the delta. Either a complete
// result or an error is returned.
func (e *Engine) Run(f scoring.Facts, agg model.TransactionAggregates, sc Scenario) (model.SimulationResult, error) {
	original, before := e.scorer.Score(f, agg)

	mutated := f
	changes, err := sc.apply(&mutated, applyEnv{experienceDiscount: e.experienceDiscount})
	if err != nil {
		return model.SimulationResult{}, err
	}
	simulated, after := e.scorer.Score(mutated, agg)
	change := simulated - original

	factorChanges := make(map[types.Factor]string, len(types.Factors))
	var top types.Factor
	var topDelta float64
	for _, factor := range types.Factors {
		from, to := before.Score(factor), after.Score(factor)
		factorChanges[factor] = fmt.Sprintf("%+.2f points (%.2f → %.2f)", to-from, from, to)
		// Largest weighted movement names the driver of the change.
		if d := after[factor].Contribution - before[factor].Contribution; math.Abs(d) > math.Abs(topDelta) {
			top, topDelta = factor, d
		}
	}

	recs := []string{summary(change)}
	if math.Abs(change) >= minimalChange && top != "" {
		recs = append(recs, fmt.Sprintf("Largest effect: %s factor (%+.1f points)", top, topDelta))
	}
	recs = append(recs, sc.advice(f, mutated, change)...)

	return model.SimulationResult{
		OriginalScore:    original,
		SimulatedScore:   simulated,
		ScoreChange:      change,
		FactorChanges:    factorChanges,
		ParameterChanges: changes,
		Recommendations:  recs,
	}, nil
}

func summary(change float64) string {
	switch {
	case math.Abs(change) < minimalChange:
		return "This scenario would have minimal impact on your credit score"
	case change > 0:
		return fmt.Sprintf("This scenario would improve your credit score by %.0f points", change)
	default:
		return fmt.Sprintf("This scenario would decrease your credit score by %.0f points", -change)
	}
}
