package cache_test

import (
	"net/http"
	"testing"

	"github.com/okian/recall/internal/agent/cache"
	. "github.com/smartystreets/goconvey/convey"
)

func entry(body string) cache.Entry {
	return cache.Entry{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   []byte(body),
	}
}

func TestStore(t *testing.T) {
	Convey("Given a cache store", t, func() {
		s := cache.New()

		Convey("When an entry is stored in the dynamic partition", func() {
			s.Put(cache.Dynamic, "GET /api/study/stats", entry(`{"totalStudied":4}`))

			Convey("Then it is served back", func() {
				got, ok := s.Get(cache.Dynamic, "GET /api/study/stats")
				So(ok, ShouldBeTrue)
				So(string(got.Body), ShouldEqual, `{"totalStudied":4}`)
			})

			Convey("And the static partition stays independent", func() {
				_, ok := s.Get(cache.Static, "GET /api/study/stats")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the same key is stored twice", func() {
			s.Put(cache.Dynamic, "k", entry("old"))
			s.Put(cache.Dynamic, "k", entry("new"))

			Convey("Then the latest response wins and no duplicate exists", func() {
				got, ok := s.Get(cache.Dynamic, "k")
				So(ok, ShouldBeTrue)
				So(string(got.Body), ShouldEqual, "new")
				So(s.Len(cache.Dynamic), ShouldEqual, 1)
			})
		})

		Convey("When an entry is unreadable", func() {
			s.Put(cache.Dynamic, "bad", cache.Entry{Status: http.StatusOK})

			Convey("Then the lookup is a miss, not an error", func() {
				_, ok := s.Get(cache.Dynamic, "bad")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When an entry is evicted by name", func() {
			s.Put(cache.Dynamic, "k", entry("x"))
			s.Evict(cache.Dynamic, "k")

			_, ok := s.Get(cache.Dynamic, "k")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestActivate(t *testing.T) {
	Convey("Given a store with seeded partitions", t, func() {
		s := cache.New(
			cache.WithVersion(cache.Static, "static-v1"),
			cache.WithVersion(cache.Dynamic, "dynamic-v1"),
		)
		s.Put(cache.Static, "GET /", entry("<html>"))
		s.Put(cache.Dynamic, "GET /api/study/stats", entry("{}"))

		Convey("When activating with an unchanged static tag and a bumped dynamic tag", func() {
			s.Activate(map[cache.Partition]string{
				cache.Static:  "static-v1",
				cache.Dynamic: "dynamic-v2",
			})

			Convey("Then only the dynamic partition is dropped, wholesale", func() {
				So(s.Len(cache.Static), ShouldEqual, 1)
				So(s.Len(cache.Dynamic), ShouldEqual, 0)
				So(s.Version(cache.Dynamic), ShouldEqual, "dynamic-v2")
			})
		})
	})
}
