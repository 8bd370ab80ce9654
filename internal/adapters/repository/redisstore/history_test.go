package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/channxy/ai-credit-assessment/internal/adapters/repository"
	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/simulation"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"
)

func setup(t *testing.T) (*miniredis.Miniredis, *History) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	var seq atomic.Int64
	h := New(client,
		WithIDGenerator(func() string { return fmt.Sprintf("rec-%d", seq.Add(1)) }),
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }),
	)
	return mr, h
}

func record(change float64) model.SimulationRecord {
	return model.SimulationRecord{
		UserID:       "user-1",
		ScenarioType: types.ScenarioExpenseReduction,
		Parameters:   model.Parameters{"expense_reduction": change},
		ScoreChange:  change,
	}
}

// simulated runs a salary increase against a small profile so history
// tests store a fully populated result.
func simulated() (model.SimulationRecord, model.SimulationResult) {
	profile := model.Profile{
		UserID:   "user-1",
		Personal: model.PersonalInfo{Age: model.Int(32), EducationLevel: types.EducationBachelors},
		Career: model.CareerInfo{
			Industry:         "Technology",
			YearsExperience:  model.Float(8),
			Salary:           model.Float(78000),
			EmploymentStatus: types.EmploymentFullTime,
		},
		Housing: model.HousingInfo{HousingStatus: types.HousingRenting, MonthlyRent: model.Float(1500)},
		Financial: model.FinancialInfo{
			MonthlyIncome:     model.Float(6500),
			MonthlyExpenses:   model.Float(3200),
			SavingsBalance:    model.Float(25000),
			InvestmentBalance: model.Float(5000),
			CreditCardBalance: model.Float(2800),
			CreditCardLimit:   model.Float(10000),
		},
	}
	req := model.SimulationRequest{
		UserID:       "user-1",
		ScenarioType: types.ScenarioSalaryIncrease,
		Parameters:   model.Parameters{"salary_increase": 10000.0},
	}
	res, err := simulation.NewEngine().Simulate(profile, nil, req)
	So(err, ShouldBeNil)
	return model.NewSimulationRecord(req, res, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)), res
}

func TestHistory(t *testing.T) {
	ctx := context.Background()

	Convey("Given a Redis-backed history", t, func() {
		mr, h := setup(t)

		Convey("When records are appended", func() {
			for i := 1; i <= 3; i++ {
				_, err := h.Append(ctx, record(float64(i)))
				So(err, ShouldBeNil)
			}

			Convey("Then they live in one list per user, newest at the head", func() {
				items, err := mr.List("creditsim:history:user-1")
				So(err, ShouldBeNil)
				So(items, ShouldHaveLength, 3)

				recs, err := h.List(ctx, "user-1", 2)
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 2)
				So(recs[0].ID, ShouldEqual, "rec-3")
				So(recs[0].Parameters["expense_reduction"], ShouldEqual, 3.0)
				So(recs[1].ID, ShouldEqual, "rec-2")
			})

			Convey("Then a non-positive limit returns all of them", func() {
				recs, err := h.List(ctx, "user-1", 0)
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 3)
			})
		})

		Convey("When the user has no history", func() {
			recs, err := h.List(ctx, "nobody", 5)
			So(err, ShouldBeNil)
			So(recs, ShouldBeEmpty)
		})

		Convey("When appends race for one user", func() {
			var wg sync.WaitGroup
			for i := 0; i < 40; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, _ = h.Append(ctx, record(float64(i)))
				}(i)
			}
			wg.Wait()

			recs, err := h.List(ctx, "user-1", 0)
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 40)
		})

		Convey("When the server is down", func() {
			mr.Close()
			_, err := h.Append(ctx, record(1))
			So(errors.Is(err, repository.ErrStorageUnavailable), ShouldBeTrue)
		})

		Convey("When the request was cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := h.Append(cctx, record(1))
			So(errors.Is(err, repository.ErrCancelled), ShouldBeTrue)
			So(mr.Exists("creditsim:history:user-1"), ShouldBeFalse)
		})
	})
}

func TestHistory_RoundTrip(t *testing.T) {
	Convey("Given a simulation result appended to Redis", t, func() {
		ctx := context.Background()
		_, h := setup(t)
		rec, res := simulated()

		id, err := h.Append(ctx, rec)
		So(err, ShouldBeNil)

		Convey("Then listing reproduces the full result", func() {
			recs, err := h.List(ctx, "user-1", 1)
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 1)
			So(recs[0].ID, ShouldEqual, id)
			So(recs[0].ScenarioType, ShouldEqual, types.ScenarioSalaryIncrease)
			So(recs[0].Result, ShouldResemble, res)
			So(recs[0].Result.FactorChanges, ShouldHaveLength, len(types.Factors))
			So(recs[0].Result.ParameterChanges, ShouldNotBeEmpty)
			So(recs[0].Result.Recommendations, ShouldNotBeEmpty)
		})
	})
}
