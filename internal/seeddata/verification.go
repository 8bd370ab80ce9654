package seeddata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/channxy/ai-credit-assessment/pkg/logger"
)

const (
	minScore       = 300.0
	scoreTolerance = 0.01
	historyDefault = 5
)

// verifyOutcomes checks what the service returned against the invariants a
// client can observe: scores in range, simulations anchored to the stored
// assessment, history newest first and plans that actually climb.
func verifyOutcomes(ctx context.Context, outcomes []Outcome, verbose bool) error {
	logger.Get().Info(ctx, "verifying results", logger.Int("users", len(outcomes)))

	if len(outcomes) == 0 {
		return errors.New("no outcomes to verify")
	}

	var errs []error
	for _, o := range outcomes {
		if err := verifyOutcome(o); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.UserID, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	displayTopScores(ctx, outcomes, verbose)
	logger.Get().Info(ctx, "result verification completed")
	return nil
}

func verifyOutcome(o Outcome) error {
	a := o.Assessment
	if a.ID == "" {
		return errors.New("assessment has no id")
	}
	if a.CreditScore < minScore || a.CreditScore > maxScore {
		return fmt.Errorf("score %.2f outside %.0f-%.0f", a.CreditScore, minScore, maxScore)
	}

	for _, s := range o.Simulations {
		if math.Abs(s.OriginalScore-a.CreditScore) > scoreTolerance {
			return fmt.Errorf("%s original score %.2f differs from assessed %.2f", s.ScenarioType, s.OriginalScore, a.CreditScore)
		}
		if math.Abs(s.SimulatedScore-s.OriginalScore-s.ScoreChange) > scoreTolerance {
			return fmt.Errorf("%s score change %.2f does not match %.2f - %.2f",
				s.ScenarioType, s.ScoreChange, s.SimulatedScore, s.OriginalScore)
		}
		if len(s.Recommendations) == 0 {
			return fmt.Errorf("%s returned no recommendations", s.ScenarioType)
		}
	}

	if want := min(len(o.Simulations), historyDefault); len(o.History) != want {
		return fmt.Errorf("history has %d records, want %d", len(o.History), want)
	}
	ids := make(map[string]bool, len(o.Simulations))
	for _, s := range o.Simulations {
		ids[s.ID] = true
	}
	for i, h := range o.History {
		if !ids[h.ID] {
			return fmt.Errorf("history record %s was not returned by a simulation", h.ID)
		}
		if i > 0 && h.CreatedAt.After(o.History[i-1].CreatedAt) {
			return errors.New("history is not newest first")
		}
	}

	if o.Recommendations.UserID != o.UserID || len(o.Recommendations.Recommendations) == 0 {
		return errors.New("recommendations are missing")
	}
	if a.CreditScore < maxScore {
		p := o.Plan
		if p.TargetScore <= p.CurrentScore || len(p.MonthlyGoals) == 0 {
			return fmt.Errorf("plan target %.2f does not exceed current %.2f", p.TargetScore, p.CurrentScore)
		}
		if last := p.MonthlyGoals[len(p.MonthlyGoals)-1]; last.TargetScore != p.TargetScore {
			return fmt.Errorf("plan ends at %.2f, want %.2f", last.TargetScore, p.TargetScore)
		}
	}
	return nil
}

// displayTopScores shows the highest assessed users.
func displayTopScores(ctx context.Context, outcomes []Outcome, verbose bool) {
	sorted := make([]Outcome, len(outcomes))
	copy(sorted, outcomes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Assessment.CreditScore > sorted[j].Assessment.CreditScore
	})

	topN := 10
	if verbose || len(sorted) < topN {
		topN = len(sorted)
	}
	for i := 0; i < topN; i++ {
		a := sorted[i].Assessment
		logger.Get().Info(ctx, "assessed user",
			logger.Int("rank", i+1),
			logger.String("userID", a.UserID),
			logger.Float64("score", a.CreditScore),
			logger.String("risk", string(a.RiskCategory)))
	}
}
