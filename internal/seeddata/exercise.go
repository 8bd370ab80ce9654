package seeddata

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
	"github.com/channxy/ai-credit-assessment/pkg/logger"
)

// maxScore mirrors the top of the score range; no plan can be built above it.
const maxScore = 850.0

// scenarios returns one request per scenario type, sized from the user's own
// profile so every one is affordable.
func scenarios(p model.Profile) []model.SimulationRequest {
	salary := value(p.Career.Salary)
	savings := value(p.Financial.SavingsBalance)
	balance := value(p.Financial.CreditCardBalance)
	industry := "Finance"
	if p.Career.Industry == industry {
		industry = "Technology"
	}

	req := func(t types.ScenarioType, params model.Parameters) model.SimulationRequest {
		return model.SimulationRequest{UserID: p.UserID, ScenarioType: t, Parameters: params}
	}
	return []model.SimulationRequest{
		req(types.ScenarioSalaryIncrease, model.Parameters{"salary_increase": 5000.0}),
		req(types.ScenarioJobChange, model.Parameters{
			"new_salary":   roundTo(salary*1.15, 1000),
			"new_industry": industry,
		}),
		req(types.ScenarioHousePurchase, model.Parameters{
			"property_value":  roundTo(salary*4, 1000),
			"down_payment":    roundTo(savings/2, 100),
			"monthly_payment": roundTo(salary*4*0.005, 10),
		}),
		req(types.ScenarioDebtReduction, model.Parameters{"debt_reduction": roundTo(balance/2, 10)}),
		req(types.ScenarioExpenseReduction, model.Parameters{"expense_reduction": 200.0}),
	}
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// exerciseUsers walks assess, every scenario, history, recommendations and the
// improvement plan for each user. Users run in parallel; calls for one user
// are sequential so history order is well defined.
func exerciseUsers(ctx context.Context, cfg *Config, client *HTTPClient, users []User, stats *Stats) ([]Outcome, error) {
	logger.Get().Info(ctx, "exercising endpoints", logger.Int("users", len(users)))

	outcomes := make([]Outcome, len(users))
	var assessed, simulated, simFailed, history atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i, u := range users {
		g.Go(func() error {
			o, err := exerciseUser(gctx, client, u.Profile, &simFailed)
			if err != nil {
				return err
			}
			outcomes[i] = o
			assessed.Add(1)
			simulated.Add(int64(len(o.Simulations)))
			history.Add(int64(len(o.History)))
			if cfg.Verbose {
				logger.Get().Debug(gctx, "user exercised",
					logger.String("userID", o.UserID),
					logger.Float64("score", o.Assessment.CreditScore),
					logger.String("risk", string(o.Assessment.RiskCategory)))
			}
			return nil
		})
	}
	err := g.Wait()

	stats.Assessments = int(assessed.Load())
	stats.Simulations = int(simulated.Load())
	stats.SimulationsFailed = int(simFailed.Load())
	stats.HistoryRecords = int(history.Load())
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

func exerciseUser(ctx context.Context, client *HTTPClient, p model.Profile, simFailed *atomic.Int64) (Outcome, error) {
	id := url.PathEscape(p.UserID)
	o := Outcome{UserID: p.UserID}

	if _, err := client.Post(ctx, "/api/v1/credit/assess", map[string]string{"user_id": p.UserID}, &o.Assessment); err != nil {
		return o, fmt.Errorf("assess %s: %w", p.UserID, err)
	}

	for _, req := range scenarios(p) {
		var ack simulationAck
		if _, err := client.Post(ctx, "/api/v1/simulation/scenario", req, &ack); err != nil {
			simFailed.Add(1)
			logger.Get().Warn(ctx, "scenario failed",
				logger.String("userID", p.UserID),
				logger.String("scenario", string(req.ScenarioType)),
				logger.Error(err))
			continue
		}
		o.Simulations = append(o.Simulations, ack)
	}

	if _, err := client.Get(ctx, "/api/v1/simulation/history/"+id, &o.History); err != nil {
		return o, fmt.Errorf("history %s: %w", p.UserID, err)
	}
	if _, err := client.Get(ctx, "/api/v1/recommendations/"+id, &o.Recommendations); err != nil {
		return o, fmt.Errorf("recommendations %s: %w", p.UserID, err)
	}
	if o.Assessment.CreditScore < maxScore {
		if _, err := client.Get(ctx, "/api/v1/recommendations/"+id+"/improvement-plan", &o.Plan); err != nil {
			return o, fmt.Errorf("improvement plan %s: %w", p.UserID, err)
		}
	}
	return o, nil
}
