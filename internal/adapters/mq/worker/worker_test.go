package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/batisback/loyverse-daily-sync/internal/adapters/mq/queue"
	"github.com/batisback/loyverse-daily-sync/internal/adapters/mq/worker"
	"github.com/batisback/loyverse-daily-sync/internal/domain/batch"
	"github.com/batisback/loyverse-daily-sync/internal/domain/model"
	"github.com/batisback/loyverse-daily-sync/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPool(t *testing.T) {
	Convey("Given a queue, engine, and collector", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		eng := normalize.New()
		col := batch.NewInMemoryCollector()

		Convey("When a pool drains a mixed batch", func() {
			for i := 0; i < 10; i++ {
				ok := q.Enqueue(ctx, model.RawEvent{
					Payload: map[string]string{
						model.KeyDate:      "2024-03-05",
						model.KeyFullName:  "Worker " + string(rune('A'+i)),
						model.KeyEntryType: "In",
						model.KeyTime:      "08:15:00",
					},
					LoadTS: time.Now(),
				})
				So(ok, ShouldBeTrue)
			}
			// Null payloads are filtered, not errored.
			So(q.Enqueue(ctx, model.RawEvent{Payload: nil, LoadTS: time.Now()}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			p := worker.NewPool(4, q, eng, col)
			p.Start(ctx)
			p.Wait()

			Convey("Then only payload-bearing events should be collected", func() {
				So(col.Size(), ShouldEqual, 10)
			})

			Convey("Then the pool should report its size", func() {
				So(p.Size(), ShouldEqual, 4)
			})
		})

		Convey("When the pool size is not positive", func() {
			So(q.Close(), ShouldBeNil)
			p := worker.NewPool(0, q, eng, col)

			Convey("Then it should fall back to a CPU-derived default", func() {
				So(p.Size(), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When duplicate identities flow through the pool", func() {
			payload := map[string]string{
				model.KeyDate:      "2024-03-05",
				model.KeyFullName:  "Ana Reyes",
				model.KeyEntryType: "In",
				model.KeyTime:      "08:15:00",
			}
			for i := 0; i < 5; i++ {
				So(q.Enqueue(ctx, model.RawEvent{Payload: payload, LoadTS: time.Now()}), ShouldBeTrue)
			}
			So(q.Close(), ShouldBeNil)

			p := worker.NewPool(2, q, eng, col)
			p.Start(ctx)
			p.Wait()

			Convey("Then they should collapse to one record in the batch", func() {
				So(col.Size(), ShouldEqual, 1)
				So(col.Duplicates(), ShouldEqual, 4)
			})
		})
	})
}
