// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/channxy/ai-credit-assessment/internal/domain/types"
)

// Profile is the canonical user profile. Numeric fields are pointers so a
// missing value can be told apart from an explicit zero.
type Profile struct {
	UserID    string        `json:"user_id"`
	Personal  PersonalInfo  `json:"personal"`
	Career    CareerInfo    `json:"career"`
	Housing   HousingInfo   `json:"housing"`
	Financial FinancialInfo `json:"financial"`
	UpdatedAt time.Time     `json:"updated_at,omitempty"`
}

// PersonalInfo holds identity and demographic fields.
type PersonalInfo struct {
	FullName       string               `json:"full_name,omitempty"`
	Email          string               `json:"email,omitempty"`
	Age            *int                 `json:"age,omitempty"`
	EducationLevel types.EducationLevel `json:"education_level,omitempty"`
}

// CareerInfo holds employment fields.
type CareerInfo struct {
	JobTitle         string                 `json:"job_title,omitempty"`
	Industry         string                 `json:"industry,omitempty"`
	YearsExperience  *float64               `json:"years_experience,omitempty"`
	Salary           *float64               `json:"salary,omitempty"`
	EmploymentStatus types.EmploymentStatus `json:"employment_status,omitempty"`
}

// HousingInfo holds the living arrangement and its cost.
type HousingInfo struct {
	HousingStatus   types.HousingStatus `json:"housing_status,omitempty"`
	MonthlyRent     *float64            `json:"monthly_rent,omitempty"`
	MortgagePayment *float64            `json:"mortgage_payment,omitempty"`
	PropertyValue   *float64            `json:"property_value,omitempty"`
}

// FinancialInfo holds monthly cash flow and balances.
type FinancialInfo struct {
	MonthlyIncome     *float64 `json:"monthly_income,omitempty"`
	MonthlyExpenses   *float64 `json:"monthly_expenses,omitempty"`
	SavingsBalance    *float64 `json:"savings_balance,omitempty"`
	InvestmentBalance *float64 `json:"investment_balance,omitempty"`
	CreditCardBalance *float64 `json:"credit_card_balance,omitempty"`
	CreditCardLimit   *float64 `json:"credit_card_limit,omitempty"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Clone returns a deep copy of p; no pointer is shared with the receiver.
func (p Profile) Clone() Profile {
	c := p
	c.Personal.Age = cloneInt(p.Personal.Age)
	c.Career.YearsExperience = cloneFloat(p.Career.YearsExperience)
	c.Career.Salary = cloneFloat(p.Career.Salary)
	c.Housing.MonthlyRent = cloneFloat(p.Housing.MonthlyRent)
	c.Housing.MortgagePayment = cloneFloat(p.Housing.MortgagePayment)
	c.Housing.PropertyValue = cloneFloat(p.Housing.PropertyValue)
	c.Financial.MonthlyIncome = cloneFloat(p.Financial.MonthlyIncome)
	c.Financial.MonthlyExpenses = cloneFloat(p.Financial.MonthlyExpenses)
	c.Financial.SavingsBalance = cloneFloat(p.Financial.SavingsBalance)
	c.Financial.InvestmentBalance = cloneFloat(p.Financial.InvestmentBalance)
	c.Financial.CreditCardBalance = cloneFloat(p.Financial.CreditCardBalance)
	c.Financial.CreditCardLimit = cloneFloat(p.Financial.CreditCardLimit)
	return c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v)
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	return Int(*v)
}
