package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/simulation"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func record(userID string, change float64) model.SimulationRecord {
	return model.SimulationRecord{
		UserID:       userID,
		ScenarioType: types.ScenarioSalaryIncrease,
		Parameters:   model.Parameters{"salary_increase": change},
		ScoreChange:  change,
	}
}

// simulated runs a salary increase against a small profile so history
// tests store a fully populated result.
func simulated(userID string) (model.SimulationRecord, model.SimulationResult) {
	profile := model.Profile{
		UserID:   userID,
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
		UserID:       userID,
		ScenarioType: types.ScenarioSalaryIncrease,
		Parameters:   model.Parameters{"salary_increase": 10000.0},
	}
	res, err := simulation.NewEngine().Simulate(profile, nil, req)
	So(err, ShouldBeNil)
	return model.NewSimulationRecord(req, res, time.Now()), res
}

func TestMemoryHistory_RoundTrip(t *testing.T) {
	Convey("Given a simulation result appended to memory history", t, func() {
		ctx := context.Background()
		h := NewMemoryHistory()
		rec, res := simulated("user-1")
		So(res.FactorChanges, ShouldNotBeEmpty)
		So(res.ParameterChanges, ShouldNotBeEmpty)
		So(res.Recommendations, ShouldNotBeEmpty)

		id, err := h.Append(ctx, rec)
		So(err, ShouldBeNil)

		Convey("Then listing reproduces the full result", func() {
			recs, err := h.List(ctx, "user-1", 1)
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 1)
			So(recs[0].ID, ShouldEqual, id)
			So(recs[0].Result, ShouldResemble, res)
			So(recs[0].Parameters, ShouldResemble, rec.Parameters)
		})

		Convey("Then mutating the listed result leaves the store intact", func() {
			recs, _ := h.List(ctx, "user-1", 1)
			recs[0].Result.Recommendations[0] = "changed"
			recs[0].Result.FactorChanges[types.FactorFinancial] = "changed"
			again, _ := h.List(ctx, "user-1", 1)
			So(again[0].Result, ShouldResemble, res)
		})
	})
}

func TestMemoryHistory(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given an empty memory history", t, func() {
		seq := 0
		h := NewMemoryHistory(
			WithIDGenerator(func() string { seq++; return fmt.Sprintf("rec-%d", seq) }),
			WithClock(func() time.Time { return fixed }),
		)

		Convey("When listing an unknown user", func() {
			recs, err := h.List(ctx, "nobody", 5)

			Convey("Then the list is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldBeEmpty)
			})
		})

		Convey("When three records are appended", func() {
			for i := 1; i <= 3; i++ {
				id, err := h.Append(ctx, record("user-1", float64(i)))
				So(err, ShouldBeNil)
				So(id, ShouldEqual, fmt.Sprintf("rec-%d", i))
			}

			Convey("Then List returns them newest first", func() {
				recs, err := h.List(ctx, "user-1", 0)
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 3)
				So(recs[0].ScoreChange, ShouldEqual, 3)
				So(recs[2].ScoreChange, ShouldEqual, 1)
				So(recs[0].CreatedAt, ShouldEqual, fixed)
			})

			Convey("Then a limit truncates to the most recent", func() {
				recs, err := h.List(ctx, "user-1", 2)
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 2)
				So(recs[0].ID, ShouldEqual, "rec-3")
				So(recs[1].ID, ShouldEqual, "rec-2")
			})

			Convey("Then mutating a listed record leaves the store intact", func() {
				recs, _ := h.List(ctx, "user-1", 1)
				recs[0].Parameters["salary_increase"] = 99.0
				again, _ := h.List(ctx, "user-1", 1)
				So(again[0].Parameters["salary_increase"], ShouldEqual, 3.0)
			})
		})

		Convey("When the context is cancelled before appending", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := h.Append(cctx, record("user-1", 1))

			Convey("Then nothing is stored", func() {
				So(errors.Is(err, ErrCancelled), ShouldBeTrue)
				So(h.Count(), ShouldEqual, 0)
			})
		})

		Convey("When the deadline has passed", func() {
			dctx, cancel := context.WithDeadline(ctx, time.Now().Add(-time.Second))
			defer cancel()
			_, err := h.Append(dctx, record("user-1", 1))
			So(errors.Is(err, ErrTimeout), ShouldBeTrue)
		})

		Convey("When many goroutines append for the same user", func() {
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, _ = h.Append(ctx, record("user-1", float64(i)))
				}(i)
			}
			wg.Wait()

			Convey("Then every append is stored exactly once with a unique id", func() {
				recs, err := h.List(ctx, "user-1", 0)
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 50)
				ids := map[string]bool{}
				for _, r := range recs {
					ids[r.ID] = true
				}
				So(ids, ShouldHaveLength, 50)
				So(h.locks.size(), ShouldEqual, 0)
			})
		})
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	Convey("Given an empty memory store", t, func() {
		s := NewMemoryStore()

		Convey("When a profile is stored", func() {
			p := model.Profile{UserID: "user-1", Career: model.CareerInfo{Salary: model.Float(78000)}}
			So(s.PutProfile(ctx, p), ShouldBeNil)
			*p.Career.Salary = 1

			Convey("Then it is returned as a copy", func() {
				got, err := s.GetProfile(ctx, "user-1")
				So(err, ShouldBeNil)
				So(*got.Career.Salary, ShouldEqual, 78000)
			})
		})

		Convey("When a profile is unknown", func() {
			_, err := s.GetProfile(ctx, "missing")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("When transactions arrive out of date order", func() {
			So(s.AppendTransaction(ctx, model.Transaction{ID: "b", UserID: "user-1", Date: day.AddDate(0, 0, 2)}), ShouldBeNil)
			So(s.AppendTransaction(ctx, model.Transaction{ID: "a", UserID: "user-1", Date: day}), ShouldBeNil)
			So(s.AppendTransaction(ctx, model.Transaction{ID: "c", UserID: "user-1", Date: day}), ShouldBeNil)

			Convey("Then the ledger lists by date with stable ties", func() {
				txs, err := s.ListTransactions(ctx, "user-1")
				So(err, ShouldBeNil)
				So([]string{txs[0].ID, txs[1].ID, txs[2].ID}, ShouldResemble, []string{"a", "c", "b"})
			})

			Convey("Then a repeated id is rejected", func() {
				err := s.AppendTransaction(ctx, model.Transaction{ID: "a", UserID: "user-1", Date: day})
				So(errors.Is(err, ErrDuplicate), ShouldBeTrue)
			})
		})

		Convey("When assessments are saved", func() {
			_, err := s.LatestAssessment(ctx, "user-1")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)

			So(s.SaveAssessment(ctx, model.Assessment{ID: "a1", UserID: "user-1"}), ShouldBeNil)
			So(s.SaveAssessment(ctx, model.Assessment{ID: "a2", UserID: "user-1"}), ShouldBeNil)

			Convey("Then the newest is latest and listed first", func() {
				latest, err := s.LatestAssessment(ctx, "user-1")
				So(err, ShouldBeNil)
				So(latest.ID, ShouldEqual, "a2")
				list, err := s.ListAssessments(ctx, "user-1")
				So(err, ShouldBeNil)
				So(list[0].ID, ShouldEqual, "a2")
				So(list[1].ID, ShouldEqual, "a1")
			})
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given errors from drivers and contexts", t, func() {
		ctx := context.Background()
		So(Classify(ctx, nil), ShouldBeNil)
		So(errors.Is(Classify(ctx, context.DeadlineExceeded), ErrTimeout), ShouldBeTrue)
		So(errors.Is(Classify(ctx, context.Canceled), ErrCancelled), ShouldBeTrue)
		So(errors.Is(Classify(ctx, errors.New("connection refused")), ErrStorageUnavailable), ShouldBeTrue)
		So(Classify(ctx, ErrNotFound), ShouldEqual, ErrNotFound)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		So(errors.Is(Classify(cctx, errors.New("driver: bad connection")), ErrCancelled), ShouldBeTrue)
	})
}
