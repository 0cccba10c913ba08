package parse_test

import (
	"testing"
	"time"

	"github.com/batisback/loyverse-daily-sync/internal/domain/parse"
	. "github.com/smartystreets/goconvey/convey"
)

func TestChains(t *testing.T) {
	Convey("Given the Manila reference timezone", t, func() {
		loc, err := time.LoadLocation("Asia/Manila")
		So(err, ShouldBeNil)

		Convey("When parsing dates through the chain", func() {
			dates := parse.Date(loc)

			Convey("Then ISO dates should parse first", func() {
				d, ok := dates("2024-03-05")
				So(ok, ShouldBeTrue)
				So(d.Year(), ShouldEqual, 2024)
				So(d.Month(), ShouldEqual, time.March)
				So(d.Day(), ShouldEqual, 5)
			})

			Convey("Then day/month/year should be the fallback", func() {
				d, ok := dates("05/03/2024")
				So(ok, ShouldBeTrue)
				So(d.Month(), ShouldEqual, time.March)
				So(d.Day(), ShouldEqual, 5)
			})

			Convey("Then garbage should fail without panicking", func() {
				_, ok := dates("N/A")
				So(ok, ShouldBeFalse)

				_, ok = dates("")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When parsing wall-clock timestamps", func() {
			clock := parse.WallClock(loc)

			Convey("Then Date plus Time should resolve in the reference zone", func() {
				ts, ok := clock("2024-03-05 08:15:00")
				So(ok, ShouldBeTrue)
				So(ts.Location().String(), ShouldEqual, "Asia/Manila")
				So(ts.Hour(), ShouldEqual, 8)
				So(ts.Minute(), ShouldEqual, 15)
			})

			Convey("Then the day/month/year form should also resolve", func() {
				ts, ok := clock("05/03/2024 08:15:00")
				So(ok, ShouldBeTrue)
				So(ts.Day(), ShouldEqual, 5)
				So(ts.Month(), ShouldEqual, time.March)
			})

			Convey("Then an unparsable combination should fail", func() {
				_, ok := clock("N/A 08:15:00")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When parsing freshness timestamps", func() {
			ts := parse.Timestamp(loc)

			Convey("Then zoned forms should keep their instant", func() {
				v, ok := ts("2024-03-05T00:15:00Z")
				So(ok, ShouldBeTrue)
				So(v.UTC().Hour(), ShouldEqual, 0)
			})

			Convey("Then fractional seconds should parse", func() {
				_, ok := ts("2024-03-05T00:15:00.123Z")
				So(ok, ShouldBeTrue)
			})

			Convey("Then naive forms should be read in the reference zone", func() {
				v, ok := ts("2024-03-05T08:15:00")
				So(ok, ShouldBeTrue)
				So(v.Location().String(), ShouldEqual, "Asia/Manila")
			})

			Convey("Then garbage should fail", func() {
				_, ok := ts("yesterday")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When combining parsers with First", func() {
			never := func(string) (int, bool) { return 0, false }
			always := func(string) (int, bool) { return 42, true }

			Convey("Then the first success should win", func() {
				v, ok := parse.First(never, always, never)("x")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 42)
			})

			Convey("Then exhaustion should yield the zero value", func() {
				v, ok := parse.First(never, never)("x")
				So(ok, ShouldBeFalse)
				So(v, ShouldEqual, 0)
			})
		})
	})
}

func TestDurationSeconds(t *testing.T) {
	Convey("Given H:MM:SS duration strings", t, func() {
		Convey("Then a standard shift should convert to seconds", func() {
			sec, ok := parse.DurationSeconds("08:00:00")
			So(ok, ShouldBeTrue)
			So(sec, ShouldEqual, 28800)
		})

		Convey("Then hours may exceed 24", func() {
			sec, ok := parse.DurationSeconds("100:30:05")
			So(ok, ShouldBeTrue)
			So(sec, ShouldEqual, 100*3600+30*60+5)
		})

		Convey("Then single-digit hours are accepted", func() {
			sec, ok := parse.DurationSeconds("8:05:09")
			So(ok, ShouldBeTrue)
			So(sec, ShouldEqual, 8*3600+5*60+9)
		})

		Convey("Then malformed inputs should be rejected", func() {
			for _, s := range []string{"", "08:00", "1:2:3", "08:60:00", "08:00:60", "-1:00:00", "abc", "08:00:00:00"} {
				_, ok := parse.DurationSeconds(s)
				So(ok, ShouldBeFalse)
			}
		})
	})
}
