// Package types contains the enumerations shared across the application.
package types

import "strings"

// normalize lower-cases an enum value and folds dashes and spaces to underscores.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}

// EducationLevel is the highest completed education level.
type EducationLevel string

const (
	EducationHighSchool EducationLevel = "high_school"
	EducationBachelors  EducationLevel = "bachelors"
	EducationMasters    EducationLevel = "masters"
	EducationPhD        EducationLevel = "phd"
)

// Rank returns the ordinal position of the level, or -1 when unknown.
func (e EducationLevel) Rank() int {
	switch e {
	case EducationHighSchool:
		return 0
	case EducationBachelors:
		return 1
	case EducationMasters:
		return 2
	case EducationPhD:
		return 3
	default:
		return -1
	}
}

// Valid reports whether e is a known level.
func (e EducationLevel) Valid() bool { return e.Rank() >= 0 }

// ParseEducationLevel normalizes s into an EducationLevel.
func ParseEducationLevel(s string) (EducationLevel, bool) {
	e := EducationLevel(normalize(s))
	return e, e.Valid()
}

// EmploymentStatus describes the kind of employment held.
type EmploymentStatus string

const (
	EmploymentFullTime     EmploymentStatus = "full_time"
	EmploymentSelfEmployed EmploymentStatus = "self_employed"
	EmploymentPartTime     EmploymentStatus = "part_time"
	EmploymentContract     EmploymentStatus = "contract"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
)

// Valid reports whether s is a known status.
func (s EmploymentStatus) Valid() bool {
	switch s {
	case EmploymentFullTime, EmploymentSelfEmployed, EmploymentPartTime, EmploymentContract, EmploymentUnemployed:
		return true
	}
	return false
}

// ParseEmploymentStatus normalizes s into an EmploymentStatus.
func ParseEmploymentStatus(s string) (EmploymentStatus, bool) {
	v := EmploymentStatus(normalize(s))
	return v, v.Valid()
}

// HousingStatus describes the living arrangement.
type HousingStatus string

const (
	HousingRenting   HousingStatus = "renting"
	HousingOwned     HousingStatus = "owned"
	HousingMortgaged HousingStatus = "mortgaged"
)

// Valid reports whether h is a known status.
func (h HousingStatus) Valid() bool {
	switch h {
	case HousingRenting, HousingOwned, HousingMortgaged:
		return true
	}
	return false
}

// ParseHousingStatus normalizes s into a HousingStatus.
func ParseHousingStatus(s string) (HousingStatus, bool) {
	v := HousingStatus(normalize(s))
	return v, v.Valid()
}

// TransactionType tags a ledger entry as money in or money out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Valid reports whether t is a known type.
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// RiskCategory is the coarse risk band attached to an assessment.
type RiskCategory string

const (
	RiskExcellent RiskCategory = "excellent"
	RiskGood      RiskCategory = "good"
	RiskFair      RiskCategory = "fair"
	RiskPoor      RiskCategory = "poor"
	// RiskVeryPoor is accepted when decoding stored assessments but never produced.
	RiskVeryPoor RiskCategory = "very_poor"
)

// ScoreBand is the display band of a score.
type ScoreBand string

const (
	BandExcellent ScoreBand = "excellent"
	BandVeryGood  ScoreBand = "very_good"
	BandGood      ScoreBand = "good"
	BandFair      ScoreBand = "fair"
	BandPoor      ScoreBand = "poor"
)

// ScenarioType names a what-if scenario.
type ScenarioType string

const (
	ScenarioSalaryIncrease   ScenarioType = "salary_increase"
	ScenarioJobChange        ScenarioType = "job_change"
	ScenarioHousePurchase    ScenarioType = "house_purchase"
	ScenarioDebtReduction    ScenarioType = "debt_reduction"
	ScenarioExpenseReduction ScenarioType = "expense_reduction"
)

// Valid reports whether t is a supported scenario.
func (t ScenarioType) Valid() bool {
	switch t {
	case ScenarioSalaryIncrease, ScenarioJobChange, ScenarioHousePurchase,
		ScenarioDebtReduction, ScenarioExpenseReduction:
		return true
	}
	return false
}

// ParseScenarioType normalizes s into a ScenarioType.
func ParseScenarioType(s string) (ScenarioType, bool) {
	t := ScenarioType(normalize(s))
	return t, t.Valid()
}

// Factor names one of the four scoring categories.
type Factor string

const (
	FactorFinancial Factor = "financial"
	FactorCareer    Factor = "career"
	FactorHousing   Factor = "housing"
	FactorSocial    Factor = "social"
)

// Factors lists the scoring categories in their canonical order.
var Factors = []Factor{FactorFinancial, FactorCareer, FactorHousing, FactorSocial}

// Label returns the capitalized factor name used in explanations.
func (f Factor) Label() string {
	if f == "" {
		return ""
	}
	return strings.ToUpper(string(f[:1])) + string(f[1:])
}
