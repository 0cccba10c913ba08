package logger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/batisback/loyverse-daily-sync/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given the global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When getting the logger", func() {
			l := logger.Get()

			Convey("Then it should not be nil", func() {
				So(l, ShouldNotBeNil)
			})

			Convey("Then named loggers should be derived", func() {
				So(l.Named("reconciler"), ShouldNotBeNil)
			})

			Convey("Then logging with fields should not panic", func() {
				So(func() {
					l.Info(context.Background(), "merge done",
						logger.String("run_id", "abc"),
						logger.Int("records", 3),
						logger.Int64("affected", 5),
						logger.Error(errors.New("boom")),
						logger.Any("batch", []string{"a"}),
					)
					l.Debug(context.Background(), "debug line")
					l.Warn(context.Background(), "warn line")
				}, ShouldNotPanic)
			})
		})

		Convey("When setting levels", func() {
			Convey("Then known levels should be accepted", func() {
				for _, lvl := range []string{"debug", "info", "warn", "warning", "error", " INFO "} {
					So(logger.SetLevelString(lvl), ShouldBeNil)
				}
			})

			Convey("Then unknown levels should fail with the sentinel", func() {
				err := logger.SetLevelString("loud")
				So(errors.Is(err, logger.ErrUnknownLevel), ShouldBeTrue)
			})
		})
	})
}
