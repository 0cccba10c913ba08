package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/batisback/loyverse-daily-sync/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestUpsertQuery(t *testing.T) {
	Convey("Given a store over the canonical table", t, func() {
		s := NewStore(nil, "jibble_attendance")

		Convey("When building a single-row statement", func() {
			q := s.upsertQuery(1)

			Convey("Then it should insert into the configured table", func() {
				So(q, ShouldStartWith, "INSERT INTO `jibble_attendance` (attn_id, date, full_name, `group`, entry_type, time_ts, duration_sec, activity, kiosk_name, updated_at) VALUES ")
			})

			Convey("Then every non-key column should be overwritten on conflict", func() {
				So(q, ShouldContainSubstring, "ON DUPLICATE KEY UPDATE")
				for _, col := range []string{"date", "full_name", "`group`", "entry_type", "time_ts", "duration_sec", "activity", "kiosk_name", "updated_at"} {
					So(q, ShouldContainSubstring, col+" = VALUES("+col+")")
				}
			})

			Convey("Then the key column should never be rewritten", func() {
				So(q, ShouldNotContainSubstring, "attn_id = VALUES")
			})

			Convey("Then it should carry one placeholder tuple", func() {
				So(strings.Count(q, "(?"), ShouldEqual, 1)
				So(strings.Count(q, "?"), ShouldEqual, 10)
			})
		})

		Convey("When building a multi-row statement", func() {
			q := s.upsertQuery(3)

			Convey("Then it should carry one tuple per row", func() {
				So(strings.Count(q, "(?"), ShouldEqual, 3)
				So(strings.Count(q, "?"), ShouldEqual, 30)
			})
		})
	})
}

func TestUpsertArgs(t *testing.T) {
	Convey("Given normalized records", t, func() {
		name := "Ana Reyes"
		now := time.Now()
		records := []model.Record{
			{ID: "aaa", FullName: &name, UpdatedAt: now},
			{ID: "bbb", UpdatedAt: now},
		}

		Convey("When flattening into statement arguments", func() {
			args := upsertArgs(records)

			Convey("Then each record should contribute ten values in column order", func() {
				So(args, ShouldHaveLength, 20)
				So(args[0], ShouldEqual, "aaa")
				So(args[2], ShouldEqual, &name)
				So(args[9], ShouldResemble, now)
				So(args[10], ShouldEqual, "bbb")
			})

			Convey("Then nullable fields should pass through as nil pointers", func() {
				So(args[1], ShouldBeNil) // date
				So(args[12], ShouldBeNil) // second record full_name
			})
		})
	})
}

func TestChunking(t *testing.T) {
	Convey("Given a store with a custom chunk size", t, func() {
		s := NewStore(nil, "jibble_attendance", WithChunkSize(2))

		Convey("Then the option should apply", func() {
			So(s.chunkSize, ShouldEqual, 2)
		})

		Convey("Then a non-positive chunk size should keep the default", func() {
			s2 := NewStore(nil, "t", WithChunkSize(0))
			So(s2.chunkSize, ShouldEqual, defaultChunkSize)
		})
	})
}
