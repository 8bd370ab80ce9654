// Package scoring maps a resolved profile into four factor sub-scores and
// combines them into a 300-850 credit score.
//
// The formula is fixed and hand-specified. Every sub-score is clamped to
// [0,100] and every component emits a one-line explanation.
//
// Fairness: the age component is a shallow plateau. Ages 25 to 65 earn the
// full 30 points; younger applicants lose one point per year and older ones
// half a point per year, never dropping below 22. Age alone can therefore
// move the overall score by at most 8.8 points.
package scoring

import (
	"fmt"
	"math"
	"strconv"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
)

// Sub-score bounds and component maxima.
const (
	maxSubScore = 100

	ratioPoints       = 35.0
	ratioCap          = 3.0
	savingsRatePoints = 25.0
	savingsRateCap    = 0.5
	utilizationPoints = 30.0
	reservePoints     = 10.0
	reserveCapMonths  = 6.0

	experiencePoints    = 35.0
	experienceKnee      = 15.0
	experienceTailBonus = 5.0
	experienceTailScale = 10.0
	salaryPoints        = 30.0

	propertyPoints    = 20.0
	propertyReference = 500_000.0
	burdenPoints      = 20.0
	burdenComfortable = 0.28
	burdenCeiling     = 0.50

	agePlateau     = 30.0
	ageFloor       = 22.0
	ageYoungCutoff = 25
	ageOldCutoff   = 65

	defaultSalaryMin = 20_000.0
	defaultSalaryMax = 100_000.0
)

// UtilizationThreshold is the "30% rule" above which utilization is penalized sharply.
const UtilizationThreshold = 0.30

var stabilityPoints = map[types.EmploymentStatus]float64{
	types.EmploymentFullTime:     33,
	types.EmploymentSelfEmployed: 25,
	types.EmploymentPartTime:     20,
	types.EmploymentContract:     14,
	types.EmploymentUnemployed:   0,
}

var housingBase = map[types.HousingStatus]float64{
	types.HousingRenting:   30,
	types.HousingMortgaged: 50,
	types.HousingOwned:     60,
}

var educationPoints = map[types.EducationLevel]float64{
	types.EducationHighSchool: 35,
	types.EducationBachelors:  55,
	types.EducationMasters:    65,
	types.EducationPhD:        70,
}

// Calculator computes factor sub-scores.
type Calculator struct {
	salaryMin float64
	salaryMax float64
}

// CalculatorOption applies a configuration option to the Calculator.
type CalculatorOption func(*Calculator)

// WithSalaryBand sets the salary reference band. Invalid bands are ignored.
func WithSalaryBand(minSalary, maxSalary float64) CalculatorOption {
	return func(c *Calculator) {
		if minSalary >= 0 && maxSalary > minSalary {
			c.salaryMin = minSalary
			c.salaryMax = maxSalary
		}
	}
}

// NewCalculator creates a Calculator with the default salary band.
func NewCalculator(opts ...CalculatorOption) *Calculator {
	c := &Calculator{salaryMin: defaultSalaryMin, salaryMax: defaultSalaryMax}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ComputeFactors resolves p and scores it. The only possible error is an
// invalid profile.
func (c *Calculator) ComputeFactors(p model.Profile, agg model.TransactionAggregates) (model.Breakdown, error) {
	f, err := Resolve(p)
	if err != nil {
		return nil, err
	}
	return c.Compute(f, agg), nil
}

// Compute scores resolved facts. Weights and contributions are left for the
// engine to fill in.
func (c *Calculator) Compute(f Facts, agg model.TransactionAggregates) model.Breakdown {
	return model.Breakdown{
		types.FactorFinancial: c.financial(f, agg),
		types.FactorCareer:    c.career(f),
		types.FactorHousing:   c.housing(f),
		types.FactorSocial:    c.social(f),
	}
}

func (c *Calculator) financial(f Facts, agg model.TransactionAggregates) model.FactorScore {
	var ratio, savingsRate, expenseRatio float64
	if f.MonthlyIncome > 0 {
		ratio = f.MonthlyIncome / math.Max(f.MonthlyExpenses, 1)
		savingsRate = (f.MonthlyIncome - f.MonthlyExpenses) / f.MonthlyIncome
		expenseRatio = f.MonthlyExpenses / f.MonthlyIncome
	}
	util := f.Utilization()
	reserves := (f.Savings + f.Investments) / math.Max(f.MonthlyExpenses, 1)

	score := ratioPoints*math.Min(ratio, ratioCap)/ratioCap +
		savingsRatePoints*clamp(savingsRate, 0, savingsRateCap)/savingsRateCap +
		utilizationComponent(util) +
		reservePoints*math.Min(reserves, reserveCapMonths)/reserveCapMonths

	utilLine := "Credit utilization: " + Percent(util)
	if util > UtilizationThreshold {
		utilLine += " (above the 30% guideline)"
	}
	explanations := []string{
		fmt.Sprintf("Income-to-expense ratio: %.2fx", ratio),
		"Savings rate: " + Percent(savingsRate),
		utilLine,
		fmt.Sprintf("Emergency reserves: %.1f months of expenses", reserves),
	}
	if agg.Count > 0 {
		explanations = append(explanations, fmt.Sprintf("Recorded cash flow: %d transactions, net %s", agg.Count, SignedMoney(agg.Net)))
	}
	return model.FactorScore{
		Score:        clamp(score, 0, maxSubScore),
		Explanations: explanations,
		Signals: map[string]float64{
			model.SignalIncomeExpenseRatio: ratio,
			model.SignalSavingsRate:        savingsRate,
			model.SignalUtilization:        util,
			model.SignalReserveMonths:      reserves,
			model.SignalExpenseRatio:       expenseRatio,
		},
	}
}

// utilizationComponent is continuous at the threshold and falls four times
// faster above it, bottoming out at -30.
func utilizationComponent(u float64) float64 {
	if u <= UtilizationThreshold {
		return utilizationPoints - 20*u
	}
	return math.Max(-utilizationPoints, 24-80*(u-UtilizationThreshold))
}

func (c *Calculator) career(f Facts) model.FactorScore {
	years := f.YearsExperience
	experience := experiencePoints*math.Min(years, experienceKnee)/experienceKnee +
		experienceTailBonus*(1-math.Exp(-math.Max(years-experienceKnee, 0)/experienceTailScale))
	salary := salaryPoints * clamp((f.Salary-c.salaryMin)/(c.salaryMax-c.salaryMin), 0, 1)
	stability := stabilityPoints[f.Employment]

	return model.FactorScore{
		Score: clamp(experience+salary+stability, 0, maxSubScore),
		Explanations: []string{
			fmt.Sprintf("Experience: %.1f years", years),
			fmt.Sprintf("Salary: %s against a %s to %s reference band", Money(f.Salary), Money(c.salaryMin), Money(c.salaryMax)),
			"Employment status: " + string(f.Employment),
		},
		Signals: map[string]float64{
			model.SignalYearsExperience: years,
			model.SignalSalary:          f.Salary,
		},
	}
}

func (c *Calculator) housing(f Facts) model.FactorScore {
	score := housingBase[f.Housing]
	explanations := []string{"Housing status: " + string(f.Housing)}

	if f.Housing != types.HousingRenting {
		score += propertyPoints * math.Min(f.PropertyValue/propertyReference, 1)
		explanations = append(explanations, "Property value: "+Money(f.PropertyValue))
	}

	payment := f.HousingPayment()
	label := "Mortgage-to-income ratio: "
	if f.Housing == types.HousingRenting {
		label = "Rent-to-income ratio: "
	}
	var burden float64
	switch {
	case payment <= 0:
		score += burdenPoints
		explanations = append(explanations, "No monthly housing payment")
	case f.MonthlyIncome <= 0:
		burden = math.Inf(1)
		explanations = append(explanations, "Housing payment with no monthly income")
	default:
		burden = payment / f.MonthlyIncome
		score += burdenPoints * (1 - clamp((burden-burdenComfortable)/(burdenCeiling-burdenComfortable), 0, 1))
		explanations = append(explanations, label+Percent(burden))
	}

	signals := map[string]float64{model.SignalPropertyValue: f.PropertyValue}
	if !math.IsInf(burden, 0) {
		signals[model.SignalPaymentRatio] = burden
	}
	return model.FactorScore{
		Score:        clamp(score, 0, maxSubScore),
		Explanations: explanations,
		Signals:      signals,
	}
}

func (c *Calculator) social(f Facts) model.FactorScore {
	age := agePlateau
	switch {
	case f.Age < ageYoungCutoff:
		age = math.Max(ageFloor, agePlateau-float64(ageYoungCutoff-f.Age))
	case f.Age > ageOldCutoff:
		age = math.Max(ageFloor, agePlateau-0.5*float64(f.Age-ageOldCutoff))
	}
	return model.FactorScore{
		Score: clamp(educationPoints[f.Education]+age, 0, maxSubScore),
		Explanations: []string{
			"Education: " + string(f.Education),
			"Age: " + strconv.Itoa(f.Age),
		},
		Signals: map[string]float64{model.SignalAge: float64(f.Age)},
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
