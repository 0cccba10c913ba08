package batch_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/batisback/loyverse-daily-sync/internal/domain/batch"
	"github.com/batisback/loyverse-daily-sync/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func strptr(s string) *string { return &s }

func TestInMemoryCollector(t *testing.T) {
	Convey("Given a new collector", t, func() {
		ctx := context.Background()

		Convey("When adding distinct records", func() {
			c := batch.NewInMemoryCollector()
			c.Add(ctx, model.Record{ID: "a"})
			c.Add(ctx, model.Record{ID: "b"})
			c.Add(ctx, model.Record{ID: "c"})

			Convey("Then all should be collected in first-seen order", func() {
				recs := c.Records(ctx)
				So(recs, ShouldHaveLength, 3)
				So(recs[0].ID, ShouldEqual, "a")
				So(recs[2].ID, ShouldEqual, "c")
				So(c.Size(), ShouldEqual, 3)
				So(c.Duplicates(), ShouldEqual, 0)
			})
		})

		Convey("When adding records with a repeated id", func() {
			c := batch.NewInMemoryCollector(batch.WithCapacityHint(8))
			c.Add(ctx, model.Record{ID: "a", Activity: strptr("Opening")})
			c.Add(ctx, model.Record{ID: "b"})
			c.Add(ctx, model.Record{ID: "a", Activity: strptr("Closing")})

			Convey("Then the last write should win without growing the batch", func() {
				recs := c.Records(ctx)
				So(recs, ShouldHaveLength, 2)
				So(recs[0].ID, ShouldEqual, "a")
				So(*recs[0].Activity, ShouldEqual, "Closing")
				So(c.Duplicates(), ShouldEqual, 1)
			})
		})

		Convey("When adding concurrently", func() {
			c := batch.NewInMemoryCollector(batch.WithCapacityHint(100))
			var wg sync.WaitGroup
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < 100; i++ {
						c.Add(ctx, model.Record{ID: fmt.Sprintf("id-%d", i)})
					}
				}()
			}
			wg.Wait()

			Convey("Then distinct ids should be collected exactly once", func() {
				So(c.Size(), ShouldEqual, 100)
				So(c.Duplicates(), ShouldEqual, 700)
			})
		})

		Convey("When reading records", func() {
			c := batch.NewInMemoryCollector()
			c.Add(ctx, model.Record{ID: "a"})
			recs := c.Records(ctx)
			recs[0].ID = "mutated"

			Convey("Then the returned slice should be a copy", func() {
				So(c.Records(ctx)[0].ID, ShouldEqual, "a")
			})
		})
	})
}
