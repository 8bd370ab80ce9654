package scoring_test

import (
	"errors"
	"testing"
	"time"

	"github.com/channxy/ai-credit-assessment/internal/domain/model"
	"github.com/channxy/ai-credit-assessment/internal/domain/scoring"
	"github.com/channxy/ai-credit-assessment/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// fixtureProfile is the calibration profile: 28% utilization, renting.
func fixtureProfile() model.Profile {
	return model.Profile{
		UserID: "user-1",
		Personal: model.PersonalInfo{
			FullName:       "Jordan Doe",
			Email:          "jordan@example.com",
			Age:            model.Int(32),
			EducationLevel: types.EducationBachelors,
		},
		Career: model.CareerInfo{
			JobTitle:         "Software Engineer",
			Industry:         "Technology",
			YearsExperience:  model.Float(8),
			Salary:           model.Float(78000),
			EmploymentStatus: types.EmploymentFullTime,
		},
		Housing: model.HousingInfo{
			HousingStatus: types.HousingRenting,
			MonthlyRent:   model.Float(1500),
		},
		Financial: model.FinancialInfo{
			MonthlyIncome:     model.Float(6500),
			MonthlyExpenses:   model.Float(3200),
			SavingsBalance:    model.Float(25000),
			InvestmentBalance: model.Float(5000),
			CreditCardBalance: model.Float(2800),
			CreditCardLimit:   model.Float(10000),
		},
	}
}

type stubRecommender struct{ calls int }

func (s *stubRecommender) Recommend(a model.Assessment) []string {
	s.calls++
	return []string{"keep going"}
}

func TestEngine_Assess(t *testing.T) {
	Convey("Given a scoring engine with default weights", t, func() {
		fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		rec := &stubRecommender{}
		engine := scoring.NewEngine(
			scoring.WithClock(func() time.Time { return fixed }),
			scoring.WithRecommender(rec),
		)

		Convey("When assessing the calibration profile", func() {
			a, err := engine.Assess("user-1", fixtureProfile(), nil)

			Convey("Then the score lands near 725 in the good band", func() {
				So(err, ShouldBeNil)
				So(a.CreditScore, ShouldAlmostEqual, 724.95, 0.01)
				So(a.ScoreBand, ShouldEqual, types.BandGood)
				So(a.RiskCategory, ShouldEqual, types.RiskGood)
				So(a.ComputedAt, ShouldEqual, fixed)
				So(a.ModelVersion, ShouldEqual, scoring.ModelVersion)
				So(a.ID, ShouldNotBeEmpty)
			})

			Convey("And the breakdown is weighted and explained", func() {
				So(a.FinancialScore, ShouldAlmostEqual, 83.098, 0.001)
				So(a.CareerScore, ShouldAlmostEqual, 73.417, 0.001)
				So(a.HousingScore, ShouldEqual, 50)
				So(a.SocialScore, ShouldEqual, 85)
				fin := a.FactorBreakdown[types.FactorFinancial]
				So(fin.Weight, ShouldEqual, 0.40)
				So(fin.Explanations, ShouldContain, "Credit utilization: 28.0%")
				util, ok := a.FactorBreakdown.Signal(types.FactorFinancial, model.SignalUtilization)
				So(ok, ShouldBeTrue)
				So(util, ShouldAlmostEqual, 0.28, 1e-9)

				var total float64
				for _, f := range types.Factors {
					total += a.FactorBreakdown[f].Contribution
				}
				So(scoring.MinScore+total, ShouldAlmostEqual, a.CreditScore, 1e-9)
			})

			Convey("And recommendations come from the advisor", func() {
				So(rec.calls, ShouldEqual, 1)
				So(a.Recommendations, ShouldResemble, []string{"keep going"})
				So(a.RiskFactors, ShouldBeEmpty)
			})
		})

		Convey("When assessing the same snapshot twice", func() {
			txs := []model.Transaction{{UserID: "user-1", Amount: 6500, Type: types.TransactionIncome, Date: fixed}}
			a1, err1 := engine.Assess("user-1", fixtureProfile(), txs)
			a2, err2 := engine.Assess("user-1", fixtureProfile(), txs)

			Convey("Then the scores are bit-identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(a1.CreditScore, ShouldEqual, a2.CreditScore)
				So(a1.FactorBreakdown, ShouldResemble, a2.FactorBreakdown)
			})

			Convey("And transactions only add an explanation", func() {
				plain, _ := engine.Assess("user-1", fixtureProfile(), nil)
				So(a1.CreditScore, ShouldEqual, plain.CreditScore)
				So(a1.FactorBreakdown[types.FactorFinancial].Explanations, ShouldContain, "Recorded cash flow: 1 transactions, net +$6,500")
			})
		})

		Convey("When a required field is missing", func() {
			p := fixtureProfile()
			p.Financial.CreditCardLimit = nil
			_, err := engine.Assess("user-1", p, nil)

			Convey("Then it fails with InvalidProfile naming the field", func() {
				So(errors.Is(err, scoring.ErrInvalidProfile), ShouldBeTrue)
				var pe *scoring.ProfileError
				So(errors.As(err, &pe), ShouldBeTrue)
				So(pe.Field, ShouldEqual, "financial.credit_card_limit")
			})
		})

		Convey("When a renter has no rent recorded", func() {
			p := fixtureProfile()
			p.Housing.MonthlyRent = nil
			_, err := engine.Assess("user-1", p, nil)
			var pe *scoring.ProfileError
			So(errors.As(err, &pe), ShouldBeTrue)
			So(pe.Field, ShouldEqual, "housing.monthly_rent")
		})

		Convey("When an enum value is unknown", func() {
			p := fixtureProfile()
			p.Career.EmploymentStatus = "astronaut"
			_, err := engine.Assess("user-1", p, nil)
			So(errors.Is(err, scoring.ErrInvalidProfile), ShouldBeTrue)
		})

		Convey("When amounts are negative", func() {
			p := fixtureProfile()
			p.Financial.InvestmentBalance = model.Float(-5000)
			a, err := engine.Assess("user-1", p, nil)

			Convey("Then they are clamped rather than rejected", func() {
				So(err, ShouldBeNil)
				reserves, _ := a.FactorBreakdown.Signal(types.FactorFinancial, model.SignalReserveMonths)
				So(reserves, ShouldAlmostEqual, 25000.0/3200.0, 1e-9)
			})
		})
	})
}

func TestEngine_Properties(t *testing.T) {
	Convey("Given the calibration profile", t, func() {
		engine := scoring.NewEngine()
		base := fixtureProfile()
		baseAssessment, err := engine.Assess("u", base, nil)
		So(err, ShouldBeNil)

		Convey("When monthly income rises with expenses fixed", func() {
			p := base.Clone()
			*p.Financial.MonthlyIncome = 7000
			a, err := engine.Assess("u", p, nil)

			Convey("Then neither the financial sub-score nor the score decreases", func() {
				So(err, ShouldBeNil)
				So(a.FinancialScore, ShouldBeGreaterThanOrEqualTo, baseAssessment.FinancialScore)
				So(a.CreditScore, ShouldBeGreaterThanOrEqualTo, baseAssessment.CreditScore)
			})
		})

		Convey("When utilization crosses 30%", func() {
			at := base.Clone()
			*at.Financial.CreditCardBalance = 3000
			over := base.Clone()
			*over.Financial.CreditCardBalance = 3100
			aAt, _ := engine.Assess("u", at, nil)
			aOver, _ := engine.Assess("u", over, nil)

			Convey("Then the financial sub-score strictly decreases and is flagged", func() {
				So(aOver.FinancialScore, ShouldBeLessThan, aAt.FinancialScore)
				So(aOver.RiskFactors, ShouldContain, "High credit utilization (31.0%) exceeds the 30% guideline")
				So(aAt.RiskFactors, ShouldBeEmpty)
			})
		})

		Convey("When the balance exceeds the limit", func() {
			p := base.Clone()
			*p.Financial.CreditCardBalance = 12000
			a, err := engine.Assess("u", p, nil)
			So(err, ShouldBeNil)
			So(a.RiskFactors, ShouldContain, "Credit card balance exceeds the credit limit (120.0% utilization)")
		})

		Convey("When employment is a short contract", func() {
			p := base.Clone()
			p.Career.EmploymentStatus = types.EmploymentContract
			*p.Career.YearsExperience = 1
			a, _ := engine.Assess("u", p, nil)

			Convey("Then both the low career score and tenure are flagged", func() {
				So(a.CareerScore, ShouldBeLessThan, scoring.LowFactorThreshold)
				So(a.RiskFactors[0], ShouldStartWith, "Career score is low")
				So(a.RiskFactors, ShouldContain, "Contract employment with limited tenure (1.0 years)")
				So(a.ScoreBand, ShouldEqual, types.BandFair)
			})
		})

		Convey("When every input is extreme", func() {
			p := base.Clone()
			*p.Financial.MonthlyIncome = 0
			*p.Career.Salary = 0
			p.Career.EmploymentStatus = types.EmploymentUnemployed
			*p.Personal.Age = 12
			a, err := engine.Assess("u", p, nil)

			Convey("Then the score stays within range", func() {
				So(err, ShouldBeNil)
				So(a.CreditScore, ShouldBeBetweenOrEqual, scoring.MinScore, scoring.MaxScore)
				So(a.RiskCategory, ShouldEqual, types.RiskPoor)
				So(a.RiskFactors, ShouldContain, "No current employment income")
				So(a.RiskFactors, ShouldContain, "Monthly expenses with no monthly income")
			})
		})
	})
}

func TestBands(t *testing.T) {
	Convey("Given the documented band boundaries", t, func() {
		cases := []struct {
			score float64
			band  types.ScoreBand
			risk  types.RiskCategory
		}{
			{850, types.BandExcellent, types.RiskExcellent},
			{800, types.BandExcellent, types.RiskExcellent},
			{799.99, types.BandVeryGood, types.RiskGood},
			{740, types.BandVeryGood, types.RiskGood},
			{739.99, types.BandGood, types.RiskGood},
			{670, types.BandGood, types.RiskGood},
			{669.99, types.BandFair, types.RiskFair},
			{580, types.BandFair, types.RiskFair},
			{579.99, types.BandPoor, types.RiskPoor},
			{300, types.BandPoor, types.RiskPoor},
		}
		for _, c := range cases {
			So(scoring.BandFor(c.score), ShouldEqual, c.band)
			So(scoring.RiskFor(c.score), ShouldEqual, c.risk)
		}
	})
}

func TestWeights(t *testing.T) {
	Convey("Given custom weights", t, func() {
		Convey("When they do not sum to one", func() {
			e := scoring.NewEngine(scoring.WithWeights(map[types.Factor]float64{
				types.FactorFinancial: 4, types.FactorCareer: 3, types.FactorHousing: 1, types.FactorSocial: 2,
			}))
			w := e.Weights()
			So(w[types.FactorFinancial], ShouldAlmostEqual, 0.4, 1e-12)
			So(w[types.FactorSocial], ShouldAlmostEqual, 0.2, 1e-12)
		})

		Convey("When a factor is missing or negative", func() {
			e := scoring.NewEngine(scoring.WithWeights(map[types.Factor]float64{
				types.FactorFinancial: 1, types.FactorCareer: -1,
			}))
			So(e.Weights(), ShouldResemble, scoring.DefaultWeights())
		})
	})
}

func TestFormat(t *testing.T) {
	Convey("Given money and percentage formatting", t, func() {
		So(scoring.Money(78000), ShouldEqual, "$78,000")
		So(scoring.Money(1234567.6), ShouldEqual, "$1,234,568")
		So(scoring.Money(999), ShouldEqual, "$999")
		So(scoring.SignedMoney(-833.33), ShouldEqual, "-$833")
		So(scoring.SignedMoney(10000), ShouldEqual, "+$10,000")
		So(scoring.Money(-0.4), ShouldEqual, "$0")
		So(scoring.Money(-0.6), ShouldEqual, "-$1")
		So(scoring.SignedMoney(-0.4), ShouldEqual, "+$0")
		So(scoring.Percent(0.28), ShouldEqual, "28.0%")
	})
}
