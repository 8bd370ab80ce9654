package model

import (
	"time"

	"github.com/channxy/ai-credit-assessment/internal/domain/types"
)

// Signal keys attached to factor scores. The advisor reads these instead of
// re-deriving ratios from the profile.
const (
	SignalIncomeExpenseRatio = "income_expense_ratio"
	SignalSavingsRate        = "savings_rate"
	SignalUtilization        = "credit_utilization"
	SignalReserveMonths      = "reserve_months"
	SignalYearsExperience    = "years_experience"
	SignalSalary             = "salary"
	SignalPaymentRatio       = "payment_to_income"
	SignalPropertyValue      = "property_value"
	SignalAge                = "age"
	SignalExpenseRatio       = "expense_to_income"
)

// FactorScore is one category of the breakdown.
type FactorScore struct {
	Score        float64            `json:"score"`
	Weight       float64            `json:"weight"`
	Contribution float64            `json:"contribution"`
	Explanations []string           `json:"explanations"`
	Signals      map[string]float64 `json:"signals,omitempty"`
}

// Breakdown maps each factor to its sub-score in [0,100].
type Breakdown map[types.Factor]FactorScore

// Score returns the sub-score for f, or 0 when absent.
func (b Breakdown) Score(f types.Factor) float64 {
	return b[f].Score
}

// Signal returns a named signal of factor f.
func (b Breakdown) Signal(f types.Factor, name string) (float64, bool) {
	v, ok := b[f].Signals[name]
	return v, ok
}

// Assessment is an immutable scoring result; a newer one supersedes it.
type Assessment struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	CreditScore     float64            `json:"credit_score"`
	ScoreBand       types.ScoreBand    `json:"score_band"`
	RiskCategory    types.RiskCategory `json:"risk_category"`
	FactorBreakdown Breakdown          `json:"factor_breakdown"`
	FinancialScore  float64            `json:"financial_score"`
	CareerScore     float64            `json:"career_score"`
	HousingScore    float64            `json:"housing_score"`
	SocialScore     float64            `json:"social_score"`
	Recommendations []string           `json:"recommendations"`
	RiskFactors     []string           `json:"risk_factors"`
	ModelVersion    string             `json:"model_version"`
	ComputedAt      time.Time          `json:"computed_at"`
}

// RecommendationReport is the expanded advice returned for a user.
type RecommendationReport struct {
	UserID           string             `json:"user_id"`
	CreditScore      float64            `json:"credit_score"`
	RiskCategory     types.RiskCategory `json:"risk_category"`
	Recommendations  []string           `json:"recommendations"`
	PriorityActions  []string           `json:"priority_actions"`
	ImmediateActions []string           `json:"immediate_actions"`
	LongTermGoals    []string           `json:"long_term_goals"`
	RiskFactors      []string           `json:"risk_factors"`
	AssessedAt       time.Time          `json:"assessed_at"`
}

// MonthlyGoal is one checkpoint of an improvement plan.
type MonthlyGoal struct {
	Month       int      `json:"month"`
	TargetScore float64  `json:"target_score"`
	FocusAreas  []string `json:"focus_areas"`
}

// ImprovementPlan is derived on demand from the latest assessment.
type ImprovementPlan struct {
	CurrentScore   float64           `json:"current_score"`
	TargetScore    float64           `json:"target_score"`
	PointsNeeded   float64           `json:"points_needed"`
	TimelineMonths int               `json:"timeline_months"`
	MonthlyGoals   []MonthlyGoal     `json:"monthly_goals"`
	SuccessMetrics map[string]string `json:"success_metrics"`
}
