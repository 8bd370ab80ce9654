package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
	"github.com/google/uuid"
)

// Score range and band thresholds. Boundaries are inclusive lower bounds.
const (
	MinScore = 300.0
	MaxScore = 850.0

	ExcellentThreshold = 800.0
	VeryGoodThreshold  = 740.0
	GoodThreshold      = 670.0
	FairThreshold      = 580.0

	// LowFactorThreshold flags any sub-score below it as a risk factor.
	LowFactorThreshold = 50.0

	// ContractTenureYears is the minimum tenure before contract work stops being flagged.
	ContractTenureYears = 2.0

	// ExpenseRatioLimit flags expenses consuming more than this share of income.
	ExpenseRatioLimit = 0.90

	// ModelVersion identifies the formula revision stamped on assessments.
	ModelVersion = "factor-v1"
)

// DefaultWeights are the factor weights; they sum to 1.
func DefaultWeights() map[types.Factor]float64 {
	return map[types.Factor]float64{
		types.FactorFinancial: 0.40,
		types.FactorCareer:    0.30,
		types.FactorHousing:   0.10,
		types.FactorSocial:    0.20,
	}
}

// BandFor returns the display band of score.
func BandFor(score float64) types.ScoreBand {
	switch {
	case score >= ExcellentThreshold:
		return types.BandExcellent
	case score >= VeryGoodThreshold:
		return types.BandVeryGood
	case score >= GoodThreshold:
		return types.BandGood
	case score >= FairThreshold:
		return types.BandFair
	default:
		return types.BandPoor
	}
}

// RiskFor returns the risk category of score. Risk bands are coarser than
// display bands: very_good folds into good.
func RiskFor(score float64) types.RiskCategory {
	switch {
	case score >= ExcellentThreshold:
		return types.RiskExcellent
	case score >= GoodThreshold:
		return types.RiskGood
	case score >= FairThreshold:
		return types.RiskFair
	default:
		return types.RiskPoor
	}
}

// Recommender turns an assessment into ordered advice.
type Recommender interface {
	Recommend(a model.Assessment) []string
}

// Engine combines factor sub-scores into assessments.
type Engine struct {
	calc        *Calculator
	weights     map[types.Factor]float64
	recommender Recommender
	now         func() time.Time
	newID       func() string
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithCalculator sets the factor calculator.
func WithCalculator(c *Calculator) Option {
	return func(e *Engine) {
		if c != nil {
			e.calc = c
		}
	}
}

// WithWeights sets factor weights. The set must cover every factor with
// non-negative values and a positive sum; it is normalized to sum to 1.
// Invalid sets are ignored.
func WithWeights(weights map[types.Factor]float64) Option {
	return func(e *Engine) {
		var sum float64
		for _, f := range types.Factors {
			w, ok := weights[f]
			if !ok || w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return
			}
			sum += w
		}
		if sum <= 0 {
			return
		}
		e.weights = make(map[types.Factor]float64, len(types.Factors))
		for _, f := range types.Factors {
			e.weights[f] = weights[f] / sum
		}
	}
}

// WithRecommender sets the advisor that fills Assessment.Recommendations.
func WithRecommender(r Recommender) Option {
	return func(e *Engine) {
		if r != nil {
			e.recommender = r
		}
	}
}

// WithClock sets the time source for ComputedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator sets the assessment id generator.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// NewEngine creates an Engine with default weights.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		calc:    NewCalculator(),
		weights: DefaultWeights(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns a copy of the normalized weights.
func (e *Engine) Weights() map[types.Factor]float64 {
	out := make(map[types.Factor]float64, len(e.weights))
	for k, v := range e.weights {
		out[k] = v
	}
	return out
}

// Assess scores p with the transaction snapshot txs.
func (e *Engine) Assess(userID string, p model.Profile, txs []model.Transaction) (model.Assessment, error) {
	f, err := Resolve(p)
	if err != nil {
		return model.Assessment{}, err
	}
	return e.AssessFacts(userID, f, model.Aggregate(txs)), nil
}

// AssessFacts builds a full assessment from resolved facts.
func (e *Engine) AssessFacts(userID string, f Facts, agg model.TransactionAggregates) model.Assessment {
	score, breakdown := e.Score(f, agg)
	a := model.Assessment{
		ID:              e.newID(),
		UserID:          userID,
		CreditScore:     score,
		ScoreBand:       BandFor(score),
		RiskCategory:    RiskFor(score),
		FactorBreakdown: breakdown,
		FinancialScore:  breakdown.Score(types.FactorFinancial),
		CareerScore:     breakdown.Score(types.FactorCareer),
		HousingScore:    breakdown.Score(types.FactorHousing),
		SocialScore:     breakdown.Score(types.FactorSocial),
		RiskFactors:     riskFactors(f, breakdown),
		ModelVersion:    ModelVersion,
		ComputedAt:      e.now().UTC(),
	}
	if e.recommender != nil {
		a.Recommendations = e.recommender.Recommend(a)
	}
	if a.Recommendations == nil {
		a.Recommendations = []string{}
	}
	return a
}

// Score computes the weighted score and the weighted breakdown. It is pure:
// equal inputs give bit-identical outputs.
func (e *Engine) Score(f Facts, agg model.TransactionAggregates) (float64, model.Breakdown) {
	breakdown := e.calc.Compute(f, agg)
	var normalized float64
	// Fixed iteration order keeps the float sum reproducible.
	for _, factor := range types.Factors {
		fs := breakdown[factor]
		fs.Weight = e.weights[factor]
		fs.Contribution = fs.Weight * fs.Score / maxSubScore * (MaxScore - MinScore)
		breakdown[factor] = fs
		normalized += fs.Weight * fs.Score
	}
	normalized /= maxSubScore
	return clamp(MinScore+(MaxScore-MinScore)*normalized, MinScore, MaxScore), breakdown
}

func riskFactors(f Facts, b model.Breakdown) []string {
	out := []string{}
	for _, factor := range types.Factors {
		if s := b.Score(factor); s < LowFactorThreshold {
			out = append(out, fmt.Sprintf("%s score is low (%.1f/100)", factor.Label(), s))
		}
	}
	util := f.Utilization()
	if util > UtilizationThreshold {
		out = append(out, fmt.Sprintf("High credit utilization (%s) exceeds the 30%% guideline", Percent(util)))
	}
	if util > 1 {
		out = append(out, fmt.Sprintf("Credit card balance exceeds the credit limit (%s utilization)", Percent(util)))
	}
	if f.Employment == types.EmploymentContract && f.YearsExperience < ContractTenureYears {
		out = append(out, fmt.Sprintf("Contract employment with limited tenure (%.1f years)", f.YearsExperience))
	}
	if f.Employment == types.EmploymentUnemployed {
		out = append(out, "No current employment income")
	}
	switch {
	case f.MonthlyIncome <= 0 && f.MonthlyExpenses > 0:
		out = append(out, "Monthly expenses with no monthly income")
	case f.MonthlyIncome > 0 && f.MonthlyExpenses/f.MonthlyIncome > ExpenseRatioLimit:
		out = append(out, fmt.Sprintf("Expenses consume %s of monthly income", Percent(f.MonthlyExpenses/f.MonthlyIncome)))
	}
	return out
}
