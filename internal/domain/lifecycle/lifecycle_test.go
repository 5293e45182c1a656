package lifecycle_test

import (
	"errors"
	"testing"

	"github.com/demoday/arbiter/internal/domain/lifecycle"
	"github.com/demoday/arbiter/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDecide(t *testing.T) {
	Convey("Given the lifecycle transition rules", t, func() {
		Convey("Each immediate successor is applied", func() {
			seq := model.Statuses()
			for i := 0; i < len(seq)-1; i++ {
				d, err := lifecycle.Decide(seq[i], seq[i+1])
				So(err, ShouldBeNil)
				So(d, ShouldEqual, lifecycle.Apply)
			}
		})

		Convey("Skipping a state fails with ErrInvalidTransition", func() {
			_, err := lifecycle.Decide(model.StatusSubmitted, model.StatusScored)
			So(errors.Is(err, lifecycle.ErrInvalidTransition), ShouldBeTrue)
		})

		Convey("Re-applying the current state is a no-op", func() {
			d, err := lifecycle.Decide(model.StatusScored, model.StatusScored)
			So(err, ShouldBeNil)
			So(d, ShouldEqual, lifecycle.Noop)
		})

		Convey("Re-applying a past state is a no-op", func() {
			d, err := lifecycle.Decide(model.StatusCompleted, model.StatusResearched)
			So(err, ShouldBeNil)
			So(d, ShouldEqual, lifecycle.Noop)
		})

		Convey("Unknown statuses fail with ErrInvalidTransition", func() {
			_, err := lifecycle.Decide(model.Status("limbo"), model.StatusScored)
			So(errors.Is(err, lifecycle.ErrInvalidTransition), ShouldBeTrue)

			_, err = lifecycle.Decide(model.StatusScored, model.Status("limbo"))
			So(errors.Is(err, lifecycle.ErrInvalidTransition), ShouldBeTrue)
		})

		Convey("The terminal state has no successor", func() {
			_, err := lifecycle.Decide(model.StatusPublished, model.Status("beyond"))
			So(errors.Is(err, lifecycle.ErrInvalidTransition), ShouldBeTrue)
		})
	})
}

func TestAcceptsVotes(t *testing.T) {
	Convey("Only community-voting submissions accept votes", t, func() {
		for _, s := range model.Statuses() {
			So(lifecycle.AcceptsVotes(s), ShouldEqual, s == model.StatusCommunityVoting)
		}
	})
}
