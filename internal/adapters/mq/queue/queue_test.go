package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dingerzone/seatfinder/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func job(seq int) Job {
	return Job{Seq: seq, Player: model.Player{ID: 100 + seq}}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		q := NewInMemoryQueue(WithCapacity(2))
		ctx := context.Background()

		Convey("When two jobs are enqueued", func() {
			So(q.Enqueue(ctx, job(1)), ShouldBeNil)
			So(q.Enqueue(ctx, job(2)), ShouldBeNil)

			Convey("Then the queue is full", func() {
				So(q.Len(), ShouldEqual, 2)
				So(errors.Is(q.Enqueue(ctx, job(3)), ErrFull), ShouldBeTrue)
			})

			Convey("Then jobs come out in order", func() {
				ch := q.Dequeue(ctx)
				So((<-ch).Seq, ShouldEqual, 1)
				So((<-ch).Seq, ShouldEqual, 2)
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, job(1)), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue is rejected", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(errors.Is(q.Enqueue(ctx, job(2)), ErrClosed), ShouldBeTrue)
			})

			Convey("Then pending jobs drain and the channel closes", func() {
				ch := q.Dequeue(ctx)
				j, ok := <-ch
				So(ok, ShouldBeTrue)
				So(j.Seq, ShouldEqual, 1)
				select {
				case _, ok = <-ch:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					So("dequeue channel not closed", ShouldBeEmpty)
				}
			})
		})
	})
}
