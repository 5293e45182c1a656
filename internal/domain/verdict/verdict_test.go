package verdict_test

import (
	"context"
	"errors"
	"testing"

	"github.com/demoday/arbiter/internal/domain/verdict"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTemplateGenerator(t *testing.T) {
	Convey("Given the template generator", t, func() {
		gen := verdict.NewTemplateGenerator()
		req := verdict.Request{
			SubmissionID:   "s1",
			SubmissionName: "solana-pumpfun-bot",
			JudgeID:        "aimarc",
			WeightedTotal:  8.2,
			Round1Total:    33.5,
			CommunityBonus: 4.25,
			FinalScore:     37.75,
		}

		Convey("It produces non-empty deterministic text", func() {
			text, err := gen.Generate(context.Background(), req)
			So(err, ShouldBeNil)
			So(text, ShouldNotBeEmpty)
			So(text, ShouldContainSubstring, "aimarc")
			So(text, ShouldContainSubstring, "solana-pumpfun-bot")

			again, err := gen.Generate(context.Background(), req)
			So(err, ShouldBeNil)
			So(again, ShouldEqual, text)
		})

		Convey("A canceled context surfaces ErrUnavailable", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := gen.Generate(ctx, req)
			So(errors.Is(err, verdict.ErrUnavailable), ShouldBeTrue)
		})
	})
}
