package simulation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/scoring"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
)

// Scenario is a what-if change applied to a facts snapshot. The set is
// closed: the unexported methods keep implementations inside this package,
// and each variant below must satisfy them to compile.
type Scenario interface {
	Type() types.ScenarioType
	// apply mutates f and returns the human-readable parameter changes.
	apply(f *scoring.Facts, env applyEnv) (map[string]string, error)
	// advice returns scenario-specific recommendation lines.
	advice(before, after scoring.Facts, change float64) []string
}

type applyEnv struct {
	experienceDiscount float64
}

var (
	_ Scenario = SalaryIncrease{}
	_ Scenario = JobChange{}
	_ Scenario = HousePurchase{}
	_ Scenario = DebtReduction{}
	_ Scenario = ExpenseReduction{}
)

// SalaryIncrease raises annual salary; monthly income follows by Amount/12.
type SalaryIncrease struct {
	Amount float64
}

// Type implements Scenario.
func (SalaryIncrease) Type() types.ScenarioType { return types.ScenarioSalaryIncrease }

func (s SalaryIncrease) apply(f *scoring.Facts, _ applyEnv) (map[string]string, error) {
	f.Salary += s.Amount
	f.MonthlyIncome += s.Amount / 12
	return map[string]string{
		"salary":         scoring.SignedMoney(s.Amount),
		"monthly_income": scoring.SignedMoney(s.Amount / 12),
	}, nil
}

func (SalaryIncrease) advice(_, _ scoring.Facts, _ float64) []string {
	return []string{"Higher income typically improves creditworthiness and borrowing capacity"}
}

// JobChange replaces the salary and industry. Tenure in the new role is
// discounted but never reset to zero.
type JobChange struct {
	NewSalary   float64
	NewIndustry string
}

// Type implements Scenario.
func (JobChange) Type() types.ScenarioType { return types.ScenarioJobChange }

func (j JobChange) apply(f *scoring.Facts, env applyEnv) (map[string]string, error) {
	changes := map[string]string{
		"salary": fmt.Sprintf("%s (was %s)", scoring.Money(j.NewSalary), scoring.Money(f.Salary)),
	}
	delta := (j.NewSalary - f.Salary) / 12
	f.MonthlyIncome = math.Max(0, f.MonthlyIncome+delta)
	f.Salary = j.NewSalary
	changes["monthly_income"] = scoring.SignedMoney(delta)

	if j.NewIndustry != "" {
		was := f.Industry
		if was == "" {
			was = "unspecified"
		}
		changes["industry"] = fmt.Sprintf("%s (was %s)", j.NewIndustry, was)
		f.Industry = j.NewIndustry
	}

	years := f.YearsExperience * (1 - env.experienceDiscount)
	changes["years_experience"] = fmt.Sprintf("%.1f (was %.1f, new-role discount)", years, f.YearsExperience)
	f.YearsExperience = years
	return changes, nil
}

func (JobChange) advice(_, _ scoring.Facts, change float64) []string {
	if change >= 0 {
		return []string{"The salary change outweighs the shorter tenure in a new role"}
	}
	return []string{"A new role resets part of your tenure; weigh the salary change against stability"}
}

// HousePurchase converts the profile to a mortgaged home bought with savings.
type HousePurchase struct {
	PropertyValue  float64
	DownPayment    float64
	MonthlyPayment float64
}

// Type implements Scenario.
func (HousePurchase) Type() types.ScenarioType { return types.ScenarioHousePurchase }

func (h HousePurchase) apply(f *scoring.Facts, _ applyEnv) (map[string]string, error) {
	if h.DownPayment > f.Savings {
		return nil, fmt.Errorf("%w: down payment %s exceeds savings of %s",
			ErrInsufficientFunds, scoring.Money(h.DownPayment), scoring.Money(f.Savings))
	}
	changes := map[string]string{
		"housing_status":   fmt.Sprintf("%s (was %s)", types.HousingMortgaged, f.Housing),
		"property_value":   scoring.Money(h.PropertyValue),
		"mortgage_payment": scoring.Money(h.MonthlyPayment) + "/month",
		"savings_balance":  scoring.SignedMoney(-h.DownPayment) + " down payment",
	}
	f.Housing = types.HousingMortgaged
	f.PropertyValue = h.PropertyValue
	f.MortgagePayment = h.MonthlyPayment
	f.Savings -= h.DownPayment
	return changes, nil
}

func (HousePurchase) advice(_, after scoring.Facts, change float64) []string {
	var out []string
	if change > 0 {
		out = append(out, "Homeownership can improve credit scores through consistent mortgage payments")
	} else {
		out = append(out, "Consider the impact of additional debt on your overall financial health")
	}
	if after.Savings < 3*after.MonthlyExpenses {
		out = append(out, "Keep at least three months of expenses in savings after the down payment")
	}
	return out
}

// DebtReduction pays down the credit card balance, floored at zero.
type DebtReduction struct {
	Amount float64
}

// Type implements Scenario.
func (DebtReduction) Type() types.ScenarioType { return types.ScenarioDebtReduction }

func (d DebtReduction) apply(f *scoring.Facts, _ applyEnv) (map[string]string, error) {
	paid := math.Min(d.Amount, f.CardBalance)
	f.CardBalance -= paid
	return map[string]string{"credit_card_balance": scoring.SignedMoney(-paid)}, nil
}

func (DebtReduction) advice(before, after scoring.Facts, _ float64) []string {
	out := []string{"Reducing debt improves your debt-to-income ratio and credit utilization"}
	if before.Utilization() > scoring.UtilizationThreshold && after.Utilization() <= scoring.UtilizationThreshold {
		out = append(out, "This brings your credit utilization below the 30% guideline")
	}
	return out
}

// ExpenseReduction lowers monthly expenses, floored at zero.
type ExpenseReduction struct {
	Amount float64
}

// Type implements Scenario.
func (ExpenseReduction) Type() types.ScenarioType { return types.ScenarioExpenseReduction }

func (e ExpenseReduction) apply(f *scoring.Facts, _ applyEnv) (map[string]string, error) {
	cut := math.Min(e.Amount, f.MonthlyExpenses)
	f.MonthlyExpenses -= cut
	return map[string]string{"monthly_expenses": scoring.SignedMoney(-cut)}, nil
}

func (ExpenseReduction) advice(_, _ scoring.Facts, _ float64) []string {
	return []string{"Lower expenses raise your savings rate and strengthen your emergency reserves"}
}

// ParseScenario turns a request's type and parameters into a Scenario. It
// is the only place scenario names are matched as strings.
func ParseScenario(t types.ScenarioType, params model.Parameters) (Scenario, error) {
	name, _ := types.ParseScenarioType(string(t))
	switch name {
	case types.ScenarioSalaryIncrease:
		amount, err := number(params, "salary_increase", "amount")
		if err != nil {
			return nil, err
		}
		return SalaryIncrease{Amount: amount}, nil
	case types.ScenarioJobChange:
		salary, err := number(params, "new_salary")
		if err != nil {
			return nil, err
		}
		industry, err := text(params, "new_industry")
		if err != nil {
			return nil, err
		}
		return JobChange{NewSalary: salary, NewIndustry: industry}, nil
	case types.ScenarioHousePurchase:
		value, err := number(params, "property_value")
		if err != nil {
			return nil, err
		}
		down, err := number(params, "down_payment")
		if err != nil {
			return nil, err
		}
		payment, err := number(params, "monthly_payment")
		if err != nil {
			return nil, err
		}
		if down > value {
			return nil, fmt.Errorf("%w: down_payment exceeds property_value", ErrInvalidParameters)
		}
		return HousePurchase{PropertyValue: value, DownPayment: down, MonthlyPayment: payment}, nil
	case types.ScenarioDebtReduction:
		amount, err := number(params, "debt_reduction", "amount")
		if err != nil {
			return nil, err
		}
		return DebtReduction{Amount: amount}, nil
	case types.ScenarioExpenseReduction:
		amount, err := number(params, "expense_reduction", "amount")
		if err != nil {
			return nil, err
		}
		return ExpenseReduction{Amount: amount}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, t)
	}
}

// number reads the first present key as a non-negative finite number.
func number(params model.Parameters, keys ...string) (float64, error) {
	for _, key := range keys {
		raw, ok := params[key]
		if !ok || raw == nil {
			continue
		}
		v, err := toFloat(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidParameters, key, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidParameters, key)
		}
		return v, nil
	}
	return 0, fmt.Errorf("%w: missing %s", ErrInvalidParameters, keys[0])
}

// text reads an optional string parameter.
func text(params model.Parameters, key string) (string, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidParameters, key)
	}
	return strings.TrimSpace(s), nil
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
}
