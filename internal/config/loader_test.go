package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/demoday/arbiter/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		os.Unsetenv("ARBITER_CONFIG")
		os.Unsetenv("ARBITER_ADDR")
		os.Unsetenv("ARBITER_VOTE_FORMULA")
		os.Unsetenv("ARBITER_BONUS_CAP")

		Convey("Load with no overrides returns defaults", func() {
			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, config.New().Addr)
			So(cfg.VoteFormula, ShouldEqual, config.FormulaWalletLog)
		})

		Convey("Env overrides take effect", func() {
			os.Setenv("ARBITER_ADDR", ":7070")
			os.Setenv("ARBITER_VOTE_FORMULA", "reaction_tally")
			defer os.Unsetenv("ARBITER_ADDR")
			defer os.Unsetenv("ARBITER_VOTE_FORMULA")

			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.VoteFormula, ShouldEqual, config.FormulaReactionTally)
		})

		Convey("A YAML file layers under env", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "arbiter.yaml")
			yaml := "addr: \":6060\"\nbonus_cap: 2.0\nvote_formula: reaction_tally\n"
			So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
			os.Setenv("ARBITER_CONFIG", path)
			defer os.Unsetenv("ARBITER_CONFIG")

			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
			So(cfg.BonusCap, ShouldEqual, 2.0)
			So(cfg.VoteFormula, ShouldEqual, config.FormulaReactionTally)

			Convey("And env still wins over the file", func() {
				os.Setenv("ARBITER_ADDR", ":5050")
				defer os.Unsetenv("ARBITER_ADDR")

				cfg, err := config.Load(context.Background())
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":5050")
			})
		})

		Convey("Invalid values fail validation", func() {
			os.Setenv("ARBITER_VOTE_FORMULA", "quadratic")
			defer os.Unsetenv("ARBITER_VOTE_FORMULA")

			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
		})

		Convey("A missing config file fails with ErrLoadConfig", func() {
			os.Setenv("ARBITER_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
			defer os.Unsetenv("ARBITER_CONFIG")

			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
		})
	})
}
