package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/channxy/ai-credit-assessment/internal/adapters/repository"
	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/simulation"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
	"github.com/lib/pq"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	s := New(db,
		WithIDGenerator(func() string { return "rec-1" }),
		WithClock(func() time.Time { return fixedNow }),
	)
	return s, mock
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
	return model.NewSimulationRecord(req, res, fixedNow), res
}

// capture matches any []byte argument and keeps it for later rows.
type capture struct{ body *[]byte }

func (c capture) Match(v driver.Value) bool {
	b, ok := v.([]byte)
	if ok {
		*c.body = b
	}
	return ok
}

func TestStore_Append(t *testing.T) {
	ctx := context.Background()
	rec := model.SimulationRecord{
		UserID:       "user-1",
		ScenarioType: types.ScenarioSalaryIncrease,
		Parameters:   model.Parameters{"salary_increase": 10000.0},
		ScoreChange:  12.87,
		Result:       model.SimulationResult{OriginalScore: 724.95, SimulatedScore: 737.82, ScoreChange: 12.87},
	}

	Convey("Given a Postgres history store", t, func() {
		s, mock := newMockStore(t)

		Convey("When the append commits", func() {
			mock.ExpectBegin()
			mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
				WithArgs("user-1").
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec(`INSERT INTO simulation_history`).
				WithArgs("rec-1", "user-1", "salary_increase", sqlmock.AnyArg(), 12.87, sqlmock.AnyArg(), fixedNow).
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectCommit()

			id, err := s.Append(ctx, rec)

			Convey("Then the generated id is returned", func() {
				So(err, ShouldBeNil)
				So(id, ShouldEqual, "rec-1")
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When the insert fails", func() {
			mock.ExpectBegin()
			mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec(`INSERT INTO simulation_history`).WillReturnError(errors.New("connection reset"))
			mock.ExpectRollback()

			id, err := s.Append(ctx, rec)

			Convey("Then the transaction is rolled back and storage is unavailable", func() {
				So(id, ShouldBeEmpty)
				So(errors.Is(err, repository.ErrStorageUnavailable), ShouldBeTrue)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When the database cannot start a transaction", func() {
			mock.ExpectBegin().WillReturnError(errors.New("dial tcp: connection refused"))
			_, err := s.Append(ctx, rec)
			So(errors.Is(err, repository.ErrStorageUnavailable), ShouldBeTrue)
		})
	})
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()

	Convey("Given stored history rows", t, func() {
		s, mock := newMockStore(t)
		result, _ := json.Marshal(model.SimulationResult{OriginalScore: 700, SimulatedScore: 710, ScoreChange: 10})
		cols := []string{"id", "user_id", "scenario_type", "parameters", "score_change", "result", "created_at"}

		Convey("When listing with a limit", func() {
			mock.ExpectQuery(`SELECT id, user_id, scenario_type .* ORDER BY seq DESC LIMIT \$2`).
				WithArgs("user-1", 2).
				WillReturnRows(sqlmock.NewRows(cols).
					AddRow("rec-2", "user-1", "debt_reduction", []byte(`{"debt_reduction":500}`), 10.0, result, fixedNow).
					AddRow("rec-1", "user-1", "salary_increase", []byte(`{"amount":100}`), 1.0, result, fixedNow.Add(-time.Hour)))

			recs, err := s.List(ctx, "user-1", 2)

			Convey("Then records decode newest first", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 2)
				So(recs[0].ID, ShouldEqual, "rec-2")
				So(recs[0].ScenarioType, ShouldEqual, types.ScenarioDebtReduction)
				So(recs[0].Parameters["debt_reduction"], ShouldEqual, 500.0)
				So(recs[0].Result.SimulatedScore, ShouldEqual, 710)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When listing without a limit for an unknown user", func() {
			mock.ExpectQuery(`ORDER BY seq DESC$`).
				WithArgs("nobody").
				WillReturnRows(sqlmock.NewRows(cols))

			recs, err := s.List(ctx, "nobody", 0)

			Convey("Then an empty list is returned", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldNotBeNil)
				So(recs, ShouldBeEmpty)
			})
		})

		Convey("When the query times out", func() {
			tctx, cancel := context.WithTimeout(ctx, time.Nanosecond)
			defer cancel()
			<-tctx.Done()
			mock.ExpectQuery(`FROM simulation_history`).WillReturnError(errors.New("pq: canceling statement"))

			_, err := s.List(tctx, "user-1", 5)
			So(errors.Is(err, repository.ErrTimeout), ShouldBeTrue)
		})
	})
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	Convey("Given a simulation result appended to Postgres", t, func() {
		s, mock := newMockStore(t)
		rec, res := simulated()
		var params, result []byte

		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO simulation_history`).
			WithArgs("rec-1", "user-1", "salary_increase", capture{&params}, res.ScoreChange, capture{&result}, fixedNow).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		id, err := s.Append(ctx, rec)
		So(err, ShouldBeNil)
		So(result, ShouldNotBeEmpty)

		Convey("When the stored row is listed back", func() {
			cols := []string{"id", "user_id", "scenario_type", "parameters", "score_change", "result", "created_at"}
			mock.ExpectQuery(`FROM simulation_history`).
				WithArgs("user-1", 1).
				WillReturnRows(sqlmock.NewRows(cols).
					AddRow(id, "user-1", "salary_increase", params, res.ScoreChange, result, fixedNow))

			recs, err := s.List(ctx, "user-1", 1)

			Convey("Then the full result is reproduced", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Result, ShouldResemble, res)
				So(recs[0].Parameters, ShouldResemble, rec.Parameters)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})
	})
}

func TestStore_Ledger(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	tx := model.Transaction{ID: "t1", UserID: "user-1", Amount: 6500, Type: types.TransactionIncome, Date: day}

	Convey("Given a Postgres ledger", t, func() {
		s, mock := newMockStore(t)

		Convey("When a transaction id repeats", func() {
			mock.ExpectExec(`INSERT INTO credit_transactions`).
				WithArgs("user-1", "t1", sqlmock.AnyArg(), day).
				WillReturnError(&pq.Error{Code: uniqueViolation})

			err := s.AppendTransaction(ctx, tx)
			So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
		})

		Convey("When listing the ledger", func() {
			body, _ := json.Marshal(tx)
			mock.ExpectQuery(`SELECT body FROM credit_transactions`).
				WithArgs("user-1").
				WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow(body))

			txs, err := s.ListTransactions(ctx, "user-1")
			So(err, ShouldBeNil)
			So(txs, ShouldHaveLength, 1)
			So(txs[0].Amount, ShouldEqual, 6500)
			So(txs[0].Date.Equal(day), ShouldBeTrue)
		})
	})
}

func TestStore_ProfilesAndAssessments(t *testing.T) {
	ctx := context.Background()

	Convey("Given a Postgres profile store", t, func() {
		s, mock := newMockStore(t)

		Convey("When the profile is missing", func() {
			mock.ExpectQuery(`SELECT profile FROM credit_profiles`).
				WithArgs("nobody").
				WillReturnRows(sqlmock.NewRows([]string{"profile"}))

			_, err := s.GetProfile(ctx, "nobody")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When a profile is upserted", func() {
			mock.ExpectExec(`INSERT INTO credit_profiles .* ON CONFLICT \(user_id\) DO UPDATE`).
				WithArgs("user-1", sqlmock.AnyArg(), fixedNow).
				WillReturnResult(sqlmock.NewResult(1, 1))

			err := s.PutProfile(ctx, model.Profile{UserID: "user-1", Career: model.CareerInfo{Salary: model.Float(78000)}})
			So(err, ShouldBeNil)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("When the latest assessment is read", func() {
			body, _ := json.Marshal(model.Assessment{ID: "a2", UserID: "user-1", CreditScore: 724.95})
			mock.ExpectQuery(`SELECT body FROM credit_assessments .* LIMIT 1`).
				WithArgs("user-1").
				WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow(body))

			a, err := s.LatestAssessment(ctx, "user-1")
			So(err, ShouldBeNil)
			So(a.ID, ShouldEqual, "a2")
			So(a.CreditScore, ShouldEqual, 724.95)
		})
	})
}
