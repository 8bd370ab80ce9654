package seeddata

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
	"github.com/channxy/ai-credit-assessment/pkg/logger"
)

var (
	educationLevels = []types.EducationLevel{
		types.EducationHighSchool, types.EducationBachelors, types.EducationBachelors,
		types.EducationMasters, types.EducationPhD,
	}
	employmentStatuses = []types.EmploymentStatus{
		types.EmploymentFullTime, types.EmploymentFullTime, types.EmploymentFullTime,
		types.EmploymentSelfEmployed, types.EmploymentPartTime, types.EmploymentContract,
	}
	industries   = []string{"Technology", "Finance", "Healthcare", "Education", "Retail", "Manufacturing"}
	jobTitles    = []string{"Software Engineer", "Analyst", "Nurse", "Teacher", "Store Manager", "Technician"}
	expenseKinds = []struct{ category, merchant string }{
		{"groceries", "Fresh Market"},
		{"utilities", "City Power"},
		{"dining", "Corner Bistro"},
		{"transport", "Metro Transit"},
		{"entertainment", "Cinema Plus"},
	}
)

// txNamespace scopes generated transaction ids so a fixed seed replays the same ids.
var txNamespace = uuid.MustParse("9b1d6c8e-4f0a-5d1e-8c3b-2a7e6f5d4c3b")

// generateUsers builds cfg.Users users in parallel. The same seed always yields
// the same users, apart from runID.
func generateUsers(ctx context.Context, cfg *Config, runID string, now time.Time, stats *Stats) ([]User, error) {
	logger.Get().Info(ctx, "generating users",
		logger.Int("count", cfg.Users),
		logger.Int("transactionsPerUser", cfg.TransactionsPerUser))

	users := make([]User, cfg.Users)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i := range users {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("context cancelled during user generation: %w", err)
			}
			users[i] = generateUser(cfg.Seed, runID, i, cfg.TransactionsPerUser, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.UsersGenerated = len(users)
	logger.Get().Info(ctx, "generated users successfully", logger.Int("count", len(users)))
	return users, nil
}

// generateUser creates one user from its own random stream.
func generateUser(seed uint64, runID string, index, txCount int, now time.Time) User {
	rng := rand.New(rand.NewPCG(seed, uint64(index)))
	userID := fmt.Sprintf("seed-%s-%04d", runID, index)

	salary := roundTo(between(rng, 32000, 160000), 1000)
	income := roundTo(salary/12, 10)
	expenses := roundTo(income*between(rng, 0.35, 0.8), 10)
	limit := roundTo(between(rng, 3000, 25000), 500)

	p := model.Profile{
		UserID: userID,
		Personal: model.PersonalInfo{
			FullName:       fmt.Sprintf("Seed User %d", index),
			Email:          fmt.Sprintf("%s@example.com", userID),
			Age:            model.Int(22 + rng.IntN(45)),
			EducationLevel: pick(rng, educationLevels),
		},
		Career: model.CareerInfo{
			JobTitle:         pick(rng, jobTitles),
			Industry:         pick(rng, industries),
			YearsExperience:  model.Float(float64(rng.IntN(25))),
			Salary:           model.Float(salary),
			EmploymentStatus: pick(rng, employmentStatuses),
		},
		Financial: model.FinancialInfo{
			MonthlyIncome:     model.Float(income),
			MonthlyExpenses:   model.Float(expenses),
			SavingsBalance:    model.Float(roundTo(between(rng, 2000, 90000), 100)),
			InvestmentBalance: model.Float(roundTo(between(rng, 0, 60000), 100)),
			// Always leave a balance so the debt scenario has something to pay down.
			CreditCardBalance: model.Float(roundTo(between(rng, 0.05, 0.7)*limit, 10)),
			CreditCardLimit:   model.Float(limit),
		},
	}

	var housing float64
	switch rng.IntN(3) {
	case 0:
		housing = roundTo(income*between(rng, 0.15, 0.35), 10)
		p.Housing = model.HousingInfo{HousingStatus: types.HousingRenting, MonthlyRent: model.Float(housing)}
	case 1:
		housing = roundTo(income*between(rng, 0.15, 0.35), 10)
		p.Housing = model.HousingInfo{
			HousingStatus:   types.HousingMortgaged,
			MortgagePayment: model.Float(housing),
			PropertyValue:   model.Float(roundTo(salary*between(rng, 2.5, 5), 1000)),
		}
	default:
		p.Housing = model.HousingInfo{
			HousingStatus: types.HousingOwned,
			PropertyValue: model.Float(roundTo(salary*between(rng, 2, 6), 1000)),
		}
	}

	return User{Profile: p, Transactions: generateTransactions(rng, userID, income, housing, txCount, now)}
}

// generateTransactions lays out txCount entries over the past months, one
// salary deposit and a rent or mortgage payment per month when housing > 0.
func generateTransactions(rng *rand.Rand, userID string, income, housing float64, txCount int, now time.Time) []model.Transaction {
	out := make([]model.Transaction, 0, txCount)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for n := 0; len(out) < txCount; n++ {
		month := start.AddDate(0, -n/4, 0)
		tx := model.Transaction{
			ID:     uuid.NewSHA1(txNamespace, fmt.Appendf(nil, "%s/%d", userID, len(out))).String(),
			UserID: userID,
		}
		switch n % 4 {
		case 0:
			tx.Amount, tx.Type, tx.Category, tx.Description = income, types.TransactionIncome, "salary", "Monthly salary"
			tx.Date = month
		case 1:
			if housing == 0 {
				continue
			}
			tx.Amount, tx.Type, tx.Category, tx.Description = -housing, types.TransactionExpense, "housing", "Rent or mortgage"
			tx.Date = month.AddDate(0, 0, 1)
		default:
			kind := pick(rng, expenseKinds)
			tx.Amount = -roundTo(between(rng, 15, 400), 0.01)
			tx.Type, tx.Category, tx.Merchant = types.TransactionExpense, kind.category, kind.merchant
			tx.Date = month.AddDate(0, 0, 2+rng.IntN(25))
		}
		out = append(out, tx)
	}
	return out
}

func pick[T any](rng *rand.Rand, from []T) T {
	return from[rng.IntN(len(from))]
}

func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}
