package scoring

import (
	"math"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
)

// Age bounds applied during resolution.
const (
	minAge = 18
	maxAge = 100
)

// Facts is a resolved, plain-valued profile snapshot. Every value is
// present and clamped, so scoring over Facts cannot fail.
type Facts struct {
	Age             int
	Education       types.EducationLevel
	JobTitle        string
	Industry        string
	YearsExperience float64
	Salary          float64
	Employment      types.EmploymentStatus
	Housing         types.HousingStatus
	MonthlyRent     float64
	MortgagePayment float64
	PropertyValue   float64
	MonthlyIncome   float64
	MonthlyExpenses float64
	Savings         float64
	Investments     float64
	CardBalance     float64
	CardLimit       float64
}

// Utilization returns the card balance over the limit, floored at a limit of 1.
func (f Facts) Utilization() float64 {
	return f.CardBalance / math.Max(f.CardLimit, 1)
}

// HousingPayment is the rent when renting, otherwise the mortgage payment.
func (f Facts) HousingPayment() float64 {
	if f.Housing == types.HousingRenting {
		return f.MonthlyRent
	}
	return f.MortgagePayment
}

// Resolve validates p and returns its Facts. Missing required fields and
// unknown enum values fail with a *ProfileError; negative amounts are
// clamped to zero and age to [18,100].
func Resolve(p model.Profile) (Facts, error) {
	var f Facts
	var err error

	if p.Personal.Age == nil {
		return Facts{}, missing("personal.age")
	}
	f.Age = *p.Personal.Age
	if f.Age < minAge {
		f.Age = minAge
	}
	if f.Age > maxAge {
		f.Age = maxAge
	}

	if p.Personal.EducationLevel == "" {
		return Facts{}, missing("personal.education_level")
	}
	edu, ok := types.ParseEducationLevel(string(p.Personal.EducationLevel))
	if !ok {
		return Facts{}, malformed("personal.education_level", "unknown value "+string(p.Personal.EducationLevel))
	}
	f.Education = edu

	f.JobTitle = p.Career.JobTitle
	f.Industry = p.Career.Industry
	if f.YearsExperience, err = required("career.years_experience", p.Career.YearsExperience); err != nil {
		return Facts{}, err
	}
	if f.Salary, err = required("career.salary", p.Career.Salary); err != nil {
		return Facts{}, err
	}
	if p.Career.EmploymentStatus == "" {
		return Facts{}, missing("career.employment_status")
	}
	emp, ok := types.ParseEmploymentStatus(string(p.Career.EmploymentStatus))
	if !ok {
		return Facts{}, malformed("career.employment_status", "unknown value "+string(p.Career.EmploymentStatus))
	}
	f.Employment = emp

	if p.Housing.HousingStatus == "" {
		return Facts{}, missing("housing.housing_status")
	}
	hs, ok := types.ParseHousingStatus(string(p.Housing.HousingStatus))
	if !ok {
		return Facts{}, malformed("housing.housing_status", "unknown value "+string(p.Housing.HousingStatus))
	}
	f.Housing = hs
	switch hs {
	case types.HousingRenting:
		if f.MonthlyRent, err = required("housing.monthly_rent", p.Housing.MonthlyRent); err != nil {
			return Facts{}, err
		}
		f.MortgagePayment, err = optional("housing.mortgage_payment", p.Housing.MortgagePayment)
		if err != nil {
			return Facts{}, err
		}
		f.PropertyValue, err = optional("housing.property_value", p.Housing.PropertyValue)
	case types.HousingMortgaged:
		if f.MortgagePayment, err = required("housing.mortgage_payment", p.Housing.MortgagePayment); err != nil {
			return Facts{}, err
		}
		if f.PropertyValue, err = required("housing.property_value", p.Housing.PropertyValue); err != nil {
			return Facts{}, err
		}
		f.MonthlyRent, err = optional("housing.monthly_rent", p.Housing.MonthlyRent)
	case types.HousingOwned:
		if f.PropertyValue, err = required("housing.property_value", p.Housing.PropertyValue); err != nil {
			return Facts{}, err
		}
		if f.MortgagePayment, err = optional("housing.mortgage_payment", p.Housing.MortgagePayment); err != nil {
			return Facts{}, err
		}
		f.MonthlyRent, err = optional("housing.monthly_rent", p.Housing.MonthlyRent)
	}
	if err != nil {
		return Facts{}, err
	}

	fin := p.Financial
	if f.MonthlyIncome, err = required("financial.monthly_income", fin.MonthlyIncome); err != nil {
		return Facts{}, err
	}
	if f.MonthlyExpenses, err = required("financial.monthly_expenses", fin.MonthlyExpenses); err != nil {
		return Facts{}, err
	}
	if f.Savings, err = required("financial.savings_balance", fin.SavingsBalance); err != nil {
		return Facts{}, err
	}
	if f.Investments, err = optional("financial.investment_balance", fin.InvestmentBalance); err != nil {
		return Facts{}, err
	}
	if f.CardBalance, err = required("financial.credit_card_balance", fin.CreditCardBalance); err != nil {
		return Facts{}, err
	}
	if f.CardLimit, err = required("financial.credit_card_limit", fin.CreditCardLimit); err != nil {
		return Facts{}, err
	}
	return f, nil
}

// Validate reports whether p resolves.
func Validate(p model.Profile) error {
	_, err := Resolve(p)
	return err
}

func required(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, missing(field)
	}
	return amount(field, *v)
}

func optional(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, nil
	}
	return amount(field, *v)
}

func amount(field string, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, malformed(field, "not a finite number")
	}
	return math.Max(v, 0), nil
}
