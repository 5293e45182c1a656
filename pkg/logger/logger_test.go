package logger_test

import (
	"context"
	"testing"

	"github.com/demoday/arbiter/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Get returns a usable logger", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)
			// No output assertions; just exercise the paths.
			l.Info(context.Background(), "info message", logger.String("k", "v"))
			l.Debug(context.Background(), "debug message", logger.Int("n", 1))
			l.Warn(context.Background(), "warn message", logger.Float64("f", 1.5))
			l.Error(context.Background(), "error message", logger.Any("x", struct{}{}))
		})

		Convey("Named returns a scoped logger", func() {
			l := logger.Named("ingest")
			So(l, ShouldNotBeNil)
			l.Info(context.Background(), "scoped")
		})

		Convey("SetLevelString accepts known levels", func() {
			So(logger.SetLevelString("debug"), ShouldBeNil)
			So(logger.SetLevelString("warn"), ShouldBeNil)
			So(logger.SetLevelString("warning"), ShouldBeNil)
			So(logger.SetLevelString("error"), ShouldBeNil)
			So(logger.SetLevelString(""), ShouldBeNil)
			So(logger.SetLevelString("info"), ShouldBeNil)
		})

		Convey("SetLevelString rejects unknown levels", func() {
			So(logger.SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}
