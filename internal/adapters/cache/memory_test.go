package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/rhythm/internal/adapters/cache"
	"github.com/okian/rhythm/internal/domain/syncscore"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func entry(fp string, score int) cache.Entry {
	return cache.Entry{
		Fingerprint: fp,
		Result:      syncscore.SyncResult{SyncScore: score},
	}
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store with a fake clock", t, func() {
		ctx := context.Background()
		clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
		s := cache.NewMemoryStore(
			cache.WithTTL(time.Minute),
			cache.WithMaxEntries(3),
			cache.WithClock(clock.Now),
		)

		Convey("a missing key is a miss without error", func() {
			_, ok, err := s.Get(ctx, "nobody")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("a stored entry is returned until it expires", func() {
			So(s.Set(ctx, "u1", entry("fp1", 70)), ShouldBeNil)

			got, ok, err := s.Get(ctx, "u1")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(got.Fingerprint, ShouldEqual, "fp1")
			So(got.Result.SyncScore, ShouldEqual, 70)

			clock.Advance(time.Minute)
			_, ok, err = s.Get(ctx, "u1")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(s.Size(), ShouldEqual, 0)
		})

		Convey("setting a key again replaces the entry", func() {
			So(s.Set(ctx, "u1", entry("fp1", 10)), ShouldBeNil)
			So(s.Set(ctx, "u1", entry("fp2", 20)), ShouldBeNil)

			got, ok, _ := s.Get(ctx, "u1")
			So(ok, ShouldBeTrue)
			So(got.Fingerprint, ShouldEqual, "fp2")
			So(s.Size(), ShouldEqual, 1)
		})

		Convey("the oldest entry is evicted when full", func() {
			for i := 1; i <= 4; i++ {
				So(s.Set(ctx, fmt.Sprintf("u%d", i), entry("fp", i)), ShouldBeNil)
			}
			So(s.Size(), ShouldEqual, 3)

			_, ok, _ := s.Get(ctx, "u1")
			So(ok, ShouldBeFalse)
			for i := 2; i <= 4; i++ {
				_, ok, _ := s.Get(ctx, fmt.Sprintf("u%d", i))
				So(ok, ShouldBeTrue)
			}
		})

		Convey("rewriting a key makes it the newest", func() {
			So(s.Set(ctx, "u1", entry("fp", 1)), ShouldBeNil)
			So(s.Set(ctx, "u2", entry("fp", 2)), ShouldBeNil)
			So(s.Set(ctx, "u3", entry("fp", 3)), ShouldBeNil)
			So(s.Set(ctx, "u1", entry("fp", 11)), ShouldBeNil)
			So(s.Set(ctx, "u4", entry("fp", 4)), ShouldBeNil)

			_, ok, _ := s.Get(ctx, "u2")
			So(ok, ShouldBeFalse)
			got, ok, _ := s.Get(ctx, "u1")
			So(ok, ShouldBeTrue)
			So(got.Result.SyncScore, ShouldEqual, 11)
		})

		Convey("delete removes the entry and tolerates missing keys", func() {
			So(s.Set(ctx, "u1", entry("fp", 1)), ShouldBeNil)
			So(s.Delete(ctx, "u1"), ShouldBeNil)
			So(s.Delete(ctx, "u1"), ShouldBeNil)
			_, ok, _ := s.Get(ctx, "u1")
			So(ok, ShouldBeFalse)
			So(s.Size(), ShouldEqual, 0)
		})

		Convey("empty keys are rejected", func() {
			_, _, err := s.Get(ctx, "")
			So(err, ShouldEqual, cache.ErrEmptyKey)
			So(s.Set(ctx, "", entry("fp", 1)), ShouldEqual, cache.ErrEmptyKey)
			So(s.Delete(ctx, ""), ShouldEqual, cache.ErrEmptyKey)
		})

		Convey("a closed store refuses reads and writes", func() {
			So(s.Set(ctx, "u1", entry("fp", 1)), ShouldBeNil)
			So(s.Close(), ShouldBeNil)
			So(s.Close(), ShouldBeNil)
			So(s.Size(), ShouldEqual, 0)

			_, _, err := s.Get(ctx, "u1")
			So(err, ShouldEqual, cache.ErrClosed)
			So(s.Set(ctx, "u1", entry("fp", 1)), ShouldEqual, cache.ErrClosed)
		})
	})
}

func TestMemoryStoreUnbounded(t *testing.T) {
	Convey("A store with no entry limit keeps everything", t, func() {
		ctx := context.Background()
		s := cache.NewMemoryStore(cache.WithMaxEntries(0))
		for i := 0; i < 200; i++ {
			So(s.Set(ctx, fmt.Sprintf("u%d", i), entry("fp", i)), ShouldBeNil)
		}
		So(s.Size(), ShouldEqual, 200)
	})
}

func TestMemoryStoreConcurrent(t *testing.T) {
	Convey("Concurrent writers keep the size within bounds", t, func() {
		ctx := context.Background()
		s := cache.NewMemoryStore(cache.WithMaxEntries(50))

		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					key := fmt.Sprintf("u%d-%d", w, i)
					_ = s.Set(ctx, key, entry("fp", i))
					_, _, _ = s.Get(ctx, key)
					if i%3 == 0 {
						_ = s.Delete(ctx, key)
					}
				}
			}(w)
		}
		wg.Wait()

		So(s.Size(), ShouldBeLessThanOrEqualTo, 50)
		So(s.Size(), ShouldBeGreaterThan, 0)
	})
}
