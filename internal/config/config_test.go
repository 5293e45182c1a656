package config_test

import (
	"testing"

	"github.com/demoday/arbiter/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given default configuration", t, func() {
		cfg := config.New()

		Convey("Defaults are sane", func() {
			So(cfg.Addr, ShouldNotBeEmpty)
			So(cfg.VoteFormula, ShouldEqual, config.FormulaWalletLog)
			So(cfg.MaxVoteTokens, ShouldEqual, 100)
			So(cfg.MinVoteTokens, ShouldEqual, 1)
			So(cfg.LogMultiplier, ShouldEqual, 3)
			So(cfg.PerWalletCap, ShouldEqual, 10)
			So(cfg.BonusCap, ShouldEqual, 10)
			So(cfg.BatchWorkerCount, ShouldBeGreaterThan, 0)
		})

		Convey("Default panel has four judges with full weight vectors", func() {
			So(cfg.Judges(), ShouldHaveLength, 4)
			for judge, weights := range cfg.JudgeWeights {
				So(weights, ShouldHaveLength, 4)
				sum := 0.0
				for _, w := range weights {
					sum += w
				}
				So(sum, ShouldAlmostEqual, 1.0, 1e-9)
				So(judge, ShouldNotBeEmpty)
			}
		})

		Convey("Defaults validate", func() {
			So(cfg.Validate(), ShouldBeNil)
		})

		Convey("MintAllowed checks the allow-list", func() {
			So(cfg.MintAllowed(cfg.AllowedMints[0]), ShouldBeTrue)
			So(cfg.MintAllowed("NotARealMint"), ShouldBeFalse)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given a default config", t, func() {
		base := config.New()

		Convey("Empty addr is rejected", func() {
			cfg := *base
			cfg.Addr = ""
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("Unknown vote formula is rejected", func() {
			cfg := *base
			cfg.VoteFormula = "plurality"
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("Empty judge panel is rejected", func() {
			cfg := *base
			cfg.JudgeWeights = nil
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("Vote floor above the cap is rejected", func() {
			cfg := *base
			cfg.MinVoteTokens = 500
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("Negative judge weight is rejected", func() {
			cfg := *base
			cfg.JudgeWeights = map[string]map[string]float64{
				"solo": {"innovation": -0.5},
			}
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("Non-positive caps are rejected", func() {
			cfg := *base
			cfg.BonusCap = 0
			So(cfg.Validate(), ShouldNotBeNil)

			cfg = *base
			cfg.PerWalletCap = -1
			So(cfg.Validate(), ShouldNotBeNil)

			cfg = *base
			cfg.MaxVoteTokens = 0
			So(cfg.Validate(), ShouldNotBeNil)
		})
	})
}
