package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/channxy/ai-credit-assessment/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When a transaction key is recorded twice", func() {
			first := d.SeenAndRecord(ctx, dedupe.Key("user-1", "tx-1"))
			second := d.SeenAndRecord(ctx, dedupe.Key("user-1", "tx-1"))

			Convey("Then only the second call reports it as seen", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When two users share a transaction ID", func() {
			So(d.SeenAndRecord(ctx, dedupe.Key("user-1", "tx-1")), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, dedupe.Key("user-2", "tx-1")), ShouldBeFalse)

			Convey("Then the keys do not collide", func() {
				So(d.Size(), ShouldEqual, 2)
			})
		})

		Convey("When a key is unrecorded", func() {
			key := dedupe.Key("user-1", "tx-9")
			d.SeenAndRecord(ctx, key)
			d.Unrecord(ctx, key)
			d.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, key), ShouldBeFalse)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for i := 1; i <= 4; i++ {
			So(d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i)), ShouldBeFalse)
		}

		Convey("Then the oldest key is evicted first", func() {
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "k4"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "k3"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "k1"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 3)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 1000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
		}
		So(d.Size(), ShouldEqual, 1000)
		So(d.SeenAndRecord(ctx, "k0"), ShouldBeTrue)
	})
}

func TestDeduperConcurrency(t *testing.T) {
	Convey("Given goroutines racing on the same keys", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))
		const workers = 10
		const keys = 100

		var mu sync.Mutex
		fresh := 0
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := 0; k < keys; k++ {
					if !d.SeenAndRecord(context.Background(), fmt.Sprintf("tx-%d", k)) {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then each key is reported fresh exactly once", func() {
			So(fresh, ShouldEqual, keys)
			So(d.Size(), ShouldEqual, keys)
		})
	})
}
