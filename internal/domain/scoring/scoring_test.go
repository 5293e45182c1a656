package scoring_test

import (
	"errors"
	"math"
	"testing"

	"github.com/demoday/arbiter/internal/domain/model"
	"github.com/demoday/arbiter/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func twoJudgeEngine() *scoring.Engine {
	return scoring.NewEngine(
		scoring.WithJudgeWeights(map[string]map[string]float64{
			"alpha": {
				"innovation":          0.4,
				"technical_execution": 0.3,
				"market_potential":    0.2,
				"user_experience":     0.1,
			},
			"beta": {
				"innovation":          0.25,
				"technical_execution": 0.25,
				"market_potential":    0.25,
				"user_experience":     0.25,
			},
		}),
		scoring.WithBonusCap(10),
	)
}

func TestWeightedTotal(t *testing.T) {
	Convey("Given a configured engine", t, func() {
		engine := twoJudgeEngine()

		Convey("The weighted total is the dot product of scores and weights", func() {
			raw := model.RawScores{
				Innovation:         8,
				TechnicalExecution: 6,
				MarketPotential:    10,
				UserExperience:     4,
			}
			total, err := engine.WeightedTotal("alpha", raw)
			So(err, ShouldBeNil)
			// 8*0.4 + 6*0.3 + 10*0.2 + 4*0.1 = 7.4
			So(total, ShouldAlmostEqual, 7.4, 1e-9)
		})

		Convey("The computation is deterministic across calls", func() {
			raw := model.RawScores{Innovation: 7.5, TechnicalExecution: 5.5, MarketPotential: 9, UserExperience: 3}
			first, err := engine.WeightedTotal("beta", raw)
			So(err, ShouldBeNil)
			for i := 0; i < 10; i++ {
				again, err := engine.WeightedTotal("beta", raw)
				So(err, ShouldBeNil)
				So(again, ShouldEqual, first)
			}
		})

		Convey("The total is bit-identical even when the terms do not associate", func() {
			// 0.1-weighted decimals sum to different floats depending on
			// addition order, so this catches any non-canonical walk.
			skewed := scoring.NewEngine(scoring.WithJudgeWeights(map[string]map[string]float64{
				"alpha": {
					"innovation":          0.1,
					"technical_execution": 0.1,
					"market_potential":    0.1,
					"user_experience":     0.6,
				},
			}))
			raw := model.RawScores{Innovation: 9.3, TechnicalExecution: 8.7, MarketPotential: 8.1, UserExperience: 6}
			first, err := skewed.WeightedTotal("alpha", raw)
			So(err, ShouldBeNil)
			for i := 0; i < 1000; i++ {
				again, err := skewed.WeightedTotal("alpha", raw)
				So(err, ShouldBeNil)
				So(math.Float64bits(again), ShouldEqual, math.Float64bits(first))
			}
		})

		Convey("Unknown judges are rejected", func() {
			_, err := engine.WeightedTotal("gamma", model.RawScores{})
			So(errors.Is(err, scoring.ErrUnknownJudge), ShouldBeTrue)
		})

		Convey("Out-of-range criterion scores are rejected", func() {
			_, err := engine.WeightedTotal("alpha", model.RawScores{Innovation: 11})
			So(errors.Is(err, scoring.ErrScoreOutOfRange), ShouldBeTrue)

			_, err = engine.WeightedTotal("alpha", model.RawScores{UserExperience: -0.5})
			So(errors.Is(err, scoring.ErrScoreOutOfRange), ShouldBeTrue)
		})
	})
}

func TestComputeRound1(t *testing.T) {
	Convey("Given a configured engine", t, func() {
		engine := twoJudgeEngine()
		full := map[string]model.RawScores{
			"alpha": {Innovation: 8, TechnicalExecution: 6, MarketPotential: 10, UserExperience: 4},
			"beta":  {Innovation: 8, TechnicalExecution: 8, MarketPotential: 8, UserExperience: 8},
		}

		Convey("All configured judges produce totals", func() {
			totals, err := engine.ComputeRound1(full)
			So(err, ShouldBeNil)
			So(totals, ShouldHaveLength, 2)
			So(totals["alpha"], ShouldAlmostEqual, 7.4, 1e-9)
			So(totals["beta"], ShouldAlmostEqual, 8.0, 1e-9)

			Convey("And the aggregate is the sum, not the average", func() {
				So(scoring.Round1Aggregate(totals), ShouldAlmostEqual, 15.4, 1e-9)
			})

			Convey("And re-aggregating the same totals is bit-identical", func() {
				uneven := map[string]float64{
					"alpha": 7.4, "beta": 8.1, "gamma": 6.3, "delta": 9.7,
				}
				first := scoring.Round1Aggregate(uneven)
				for i := 0; i < 1000; i++ {
					So(math.Float64bits(scoring.Round1Aggregate(uneven)), ShouldEqual, math.Float64bits(first))
				}
			})
		})

		Convey("A missing judge blocks the round instead of defaulting to zero", func() {
			partial := map[string]model.RawScores{"alpha": full["alpha"]}
			_, err := engine.ComputeRound1(partial)
			So(errors.Is(err, scoring.ErrMissingJudge), ShouldBeTrue)
		})

		Convey("A score from an unconfigured judge is rejected", func() {
			extra := map[string]model.RawScores{
				"alpha": full["alpha"],
				"beta":  full["beta"],
				"gamma": {},
			}
			_, err := engine.ComputeRound1(extra)
			So(errors.Is(err, scoring.ErrUnknownJudge), ShouldBeTrue)
		})
	})
}

func TestComputeRound2(t *testing.T) {
	Convey("Given a configured engine", t, func() {
		engine := twoJudgeEngine()

		Convey("The final score adds the community bonus", func() {
			So(engine.ComputeRound2(33.5, 0), ShouldEqual, 33.5)
			So(engine.ComputeRound2(33.5, 4.25), ShouldAlmostEqual, 37.75, 1e-9)
		})

		Convey("The bonus is clamped to the configured cap", func() {
			So(engine.ComputeRound2(30, 25), ShouldEqual, 40)
			So(engine.ComputeRound2(30, -3), ShouldEqual, 30)
		})

		Convey("Identical inputs reproduce identical finals", func() {
			first := engine.ComputeRound2(28.75, 6.5)
			for i := 0; i < 10; i++ {
				So(engine.ComputeRound2(28.75, 6.5), ShouldEqual, first)
			}
		})
	})
}
