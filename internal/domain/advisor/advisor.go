// Package advisor derives prioritized advice and improvement plans from an
// assessment. It never recomputes a score.
package advisor

import (
	"fmt"
	"sort"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
)

const (
	defaultFactorTarget       = 75.0
	defaultMaxRecommendations = 5
	scoreSpan                 = 550.0

	utilizationGuideline = 0.30
	savingsRateGoal      = 0.20
	reserveGoalMonths    = 6.0
	housingBurdenGoal    = 0.28
	earlyCareerYears     = 3.0
)

// Advisor turns assessments into ordered advice.
type Advisor struct {
	factorTarget       float64
	maxRecommendations int
}

// Option applies a configuration option to the Advisor.
type Option func(*Advisor)

// WithFactorTarget sets the sub-score each factor is measured against.
func WithFactorTarget(target float64) Option {
	return func(a *Advisor) {
		if target > 0 && target <= 100 {
			a.factorTarget = target
		}
	}
}

// WithMaxRecommendations caps the number of ranked recommendations.
func WithMaxRecommendations(n int) Option {
	return func(a *Advisor) {
		if n > 0 {
			a.maxRecommendations = n
		}
	}
}

// New creates an Advisor.
func New(opts ...Option) *Advisor {
	a := &Advisor{
		factorTarget:       defaultFactorTarget,
		maxRecommendations: defaultMaxRecommendations,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type candidate struct {
	factor types.Factor
	score  float64
	impact float64
}

// deficits returns the factors below target, highest estimated impact first.
// Impact is the score gain from lifting the factor to target.
func (a *Advisor) deficits(b model.Breakdown) []candidate {
	var out []candidate
	for _, f := range types.Factors {
		fs, ok := b[f]
		if !ok || fs.Score >= a.factorTarget {
			continue
		}
		out = append(out, candidate{
			factor: f,
			score:  fs.Score,
			impact: fs.Weight * (a.factorTarget - fs.Score) / 100 * scoreSpan,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].impact > out[j].impact })
	return out
}

// Recommend returns advice ranked by the weighted deficit of each factor.
func (a *Advisor) Recommend(as model.Assessment) []string {
	b := as.FactorBreakdown
	var out []string
	financialListed := false
	for _, c := range a.deficits(b) {
		if len(out) == a.maxRecommendations {
			break
		}
		if c.factor == types.FactorFinancial {
			financialListed = true
		}
		out = append(out, fmt.Sprintf("%s (%s factor %.1f/100, up to ~%.0f points)",
			a.advice(c.factor, b), c.factor, c.score, c.impact))
	}
	if util, ok := b.Signal(types.FactorFinancial, model.SignalUtilization); ok && util > utilizationGuideline && !financialListed {
		out = append(out, fmt.Sprintf("Reduce credit card utilization from %.1f%% to below 30%%", util*100))
	}
	if len(out) == 0 {
		return []string{"Your credit profile looks good! Keep making on-time payments and keep utilization low"}
	}
	return out
}

func (a *Advisor) advice(f types.Factor, b model.Breakdown) string {
	signal := func(name string) float64 {
		v, _ := b.Signal(f, name)
		return v
	}
	switch f {
	case types.FactorFinancial:
		switch util, rate, reserves := signal(model.SignalUtilization), signal(model.SignalSavingsRate), signal(model.SignalReserveMonths); {
		case util > utilizationGuideline:
			return fmt.Sprintf("Reduce credit card utilization from %.1f%% to below 30%%", util*100)
		case rate < savingsRateGoal:
			return fmt.Sprintf("Raise your savings rate from %.1f%% toward 20%% of income", rate*100)
		case reserves < reserveGoalMonths:
			return fmt.Sprintf("Build emergency reserves toward six months of expenses (currently %.1f)", reserves)
		default:
			return "Widen the gap between monthly income and expenses"
		}
	case types.FactorCareer:
		if signal(model.SignalYearsExperience) < earlyCareerYears {
			return "Focus on building experience and expertise in your field"
		}
		return "Consider professional development to raise earning potential and job stability"
	case types.FactorHousing:
		if burden, ok := b.Signal(f, model.SignalPaymentRatio); ok && burden > housingBurdenGoal {
			return fmt.Sprintf("Bring housing costs below 28%% of monthly income (currently %.1f%%)", burden*100)
		}
		if signal(model.SignalPropertyValue) == 0 {
			return "Build savings toward a down payment; homeownership strengthens the housing factor"
		}
		return "Make extra mortgage payments when possible to build equity"
	default:
		return "Continuing education strengthens the social factor over time"
	}
}

// Report expands an assessment into the full recommendation view.
func (a *Advisor) Report(as model.Assessment) model.RecommendationReport {
	recs := as.Recommendations
	if len(recs) == 0 {
		recs = a.Recommend(as)
	}
	risks := as.RiskFactors
	if risks == nil {
		risks = []string{}
	}
	return model.RecommendationReport{
		UserID:          as.UserID,
		CreditScore:     as.CreditScore,
		RiskCategory:    as.RiskCategory,
		Recommendations: recs,
		PriorityActions: priorityActions(as.RiskCategory),
		ImmediateActions: []string{
			"Review your current credit report",
			"Set up payment reminders",
			"Create a monthly budget",
			"Automate bill payments",
		},
		LongTermGoals: []string{
			"Build a six-month emergency fund",
			"Reach an excellent credit score (750+)",
			"Diversify income sources",
			"Plan for retirement savings",
		},
		RiskFactors: risks,
		AssessedAt:  as.ComputedAt,
	}
}

func priorityActions(risk types.RiskCategory) []string {
	switch risk {
	case types.RiskPoor, types.RiskVeryPoor:
		return []string{
			"Focus on reducing high-interest debt immediately",
			"Establish an emergency savings fund",
			"Review and reduce monthly expenses",
			"Consider credit counseling services",
		}
	case types.RiskFair:
		return []string{
			"Improve your credit utilization ratio",
			"Build a consistent payment history",
			"Increase your savings rate",
			"Monitor your credit report regularly",
		}
	default:
		return []string{
			"Maintain your current healthy financial habits",
			"Consider investment opportunities",
			"Plan ahead for major purchases",
		}
	}
}
