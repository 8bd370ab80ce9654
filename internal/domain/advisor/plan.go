package advisor

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
)

// ErrInvalidTarget is returned for a target at or below the current score,
// above the score ceiling, or with a non-positive timeline.
var ErrInvalidTarget = errors.New("invalid improvement target")

const (
	maxTargetScore      = 850.0
	defaultPlanTarget   = 750.0
	defaultStretchPoint = 25.0

	// DefaultTimelineMonths is used when the caller gives no timeline.
	DefaultTimelineMonths = 12
)

var checkpointMonths = []int{1, 2, 3, 6, 9}

// DefaultTarget picks a plan target for current: 750 when below it,
// otherwise a 25 point stretch capped at 850.
func DefaultTarget(current float64) float64 {
	if current < defaultPlanTarget {
		return defaultPlanTarget
	}
	return math.Min(maxTargetScore, current+defaultStretchPoint)
}

// BuildImprovementPlan spreads the points needed across checkpoint months
// 1, 2, 3, 6, 9 and the final month, keeping only those within the timeline.
func (a *Advisor) BuildImprovementPlan(as model.Assessment, target float64, months int) (model.ImprovementPlan, error) {
	current := as.CreditScore
	switch {
	case months <= 0:
		return model.ImprovementPlan{}, fmt.Errorf("%w: timeline_months must be positive, got %d", ErrInvalidTarget, months)
	case math.IsNaN(target) || target <= current:
		return model.ImprovementPlan{}, fmt.Errorf("%w: target %.2f must exceed current score %.2f", ErrInvalidTarget, target, current)
	case target > maxTargetScore:
		return model.ImprovementPlan{}, fmt.Errorf("%w: target %.2f exceeds %.0f", ErrInvalidTarget, target, maxTargetScore)
	}

	needed := target - current
	weakest := a.deficits(as.FactorBreakdown)
	sort.SliceStable(weakest, func(i, j int) bool { return weakest[i].score < weakest[j].score })

	plan := model.ImprovementPlan{
		CurrentScore:   current,
		TargetScore:    target,
		PointsNeeded:   needed,
		TimelineMonths: months,
		SuccessMetrics: map[string]string{
			"credit_utilization": "Below 30%",
			"payment_history":    "100% on-time payments",
			"savings_rate":       "20% of income",
			"debt_to_income":     "Below 36%",
		},
	}
	for _, m := range checkpoints(months) {
		goal := current + needed*float64(m)/float64(months)
		if m == months {
			goal = target
		}
		plan.MonthlyGoals = append(plan.MonthlyGoals, model.MonthlyGoal{
			Month:       m,
			TargetScore: goal,
			FocusAreas:  focusAreas(m, months, weakest),
		})
	}
	return plan, nil
}

// checkpoints returns the ascending, de-duplicated checkpoint months.
func checkpoints(months int) []int {
	out := make([]int, 0, len(checkpointMonths)+1)
	for _, m := range checkpointMonths {
		if m < months {
			out = append(out, m)
		}
	}
	return append(out, months)
}

func focusAreas(month, months int, weakest []candidate) []string {
	var areas []string
	switch {
	case month == months:
		return []string{"Maintenance", "Monitor credit report", "Long-term planning"}
	case month <= 3:
		areas = []string{"Payment history", "Credit utilization", "Emergency fund"}
		if len(weakest) > 0 {
			areas = append([]string{focusLabel(weakest[0])}, areas...)
		}
	case month <= 6:
		areas = []string{"Debt reduction", "Income growth"}
		switch {
		case len(weakest) > 1:
			areas = append([]string{focusLabel(weakest[1])}, areas...)
		case len(weakest) == 1:
			areas = append([]string{focusLabel(weakest[0])}, areas...)
		}
	default:
		areas = []string{"Credit mix", "Credit history length"}
	}
	return areas
}

func focusLabel(c candidate) string {
	return fmt.Sprintf("Strengthen the %s factor (%.1f/100)", c.factor, c.score)
}
