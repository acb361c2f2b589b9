package queue

import (
	"errors"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/recall/internal/domain/model"
)

func TestQueueOrdering(t *testing.T) {
	Convey("Given an empty queue", t, func() {
		path := filepath.Join(t.TempDir(), "queue.json")
		q, err := New(path)
		So(err, ShouldBeNil)

		Convey("When three submissions are enqueued", func() {
			a, err := q.Enqueue(model.Submission{SubjectID: "s1", Correct: true})
			So(err, ShouldBeNil)
			b, err := q.Enqueue(model.Submission{SubjectID: "s2", Correct: false})
			So(err, ShouldBeNil)
			c, err := q.Enqueue(model.Submission{SubjectID: "s3", Correct: true})
			So(err, ShouldBeNil)

			Convey("Then they drain oldest first", func() {
				items := q.Snapshot()
				So(items, ShouldHaveLength, 3)
				So(items[0].ID, ShouldEqual, a.ID)
				So(items[1].ID, ShouldEqual, b.ID)
				So(items[2].ID, ShouldEqual, c.ID)
			})

			Convey("And every entry gets a distinct id", func() {
				So(a.ID, ShouldNotEqual, b.ID)
				So(b.ID, ShouldNotEqual, c.ID)
			})
		})
	})
}

func TestQueueRemovalByID(t *testing.T) {
	Convey("Given two byte-identical submissions", t, func() {
		path := filepath.Join(t.TempDir(), "queue.json")
		q, err := New(path)
		So(err, ShouldBeNil)

		sub := model.Submission{SubjectID: "twin", Correct: true}
		first, err := q.Enqueue(sub)
		So(err, ShouldBeNil)
		second, err := q.Enqueue(sub)
		So(err, ShouldBeNil)

		Convey("When the first is acknowledged", func() {
			So(q.Ack(first.ID), ShouldBeNil)

			Convey("Then only the second remains", func() {
				items := q.Snapshot()
				So(items, ShouldHaveLength, 1)
				So(items[0].ID, ShouldEqual, second.ID)
			})
		})

		Convey("When an unknown id is acknowledged", func() {
			err := q.Ack("no-such-entry")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			So(q.Depth(), ShouldEqual, 2)
		})
	})
}

func TestQueuePersistence(t *testing.T) {
	Convey("Given a queue with pending submissions", t, func() {
		path := filepath.Join(t.TempDir(), "queue.json")
		q, err := New(path)
		So(err, ShouldBeNil)

		a, err := q.Enqueue(model.Submission{SubjectID: "s1", Correct: true})
		So(err, ShouldBeNil)
		_, err = q.Enqueue(model.Submission{SubjectID: "s2", Correct: false})
		So(err, ShouldBeNil)

		Convey("When the process restarts", func() {
			reopened, err := New(path)
			So(err, ShouldBeNil)

			Convey("Then the pending entries survive in order", func() {
				items := reopened.Snapshot()
				So(items, ShouldHaveLength, 2)
				So(items[0].ID, ShouldEqual, a.ID)
				So(items[0].Submission.SubjectID, ShouldEqual, "s1")
				So(items[1].Submission.SubjectID, ShouldEqual, "s2")
			})
		})

		Convey("When everything is acknowledged and the process restarts", func() {
			for _, item := range q.Snapshot() {
				So(q.Ack(item.ID), ShouldBeNil)
			}
			reopened, err := New(path)
			So(err, ShouldBeNil)
			So(reopened.Depth(), ShouldEqual, 0)
		})
	})
}

func TestQueueCapacity(t *testing.T) {
	Convey("Given a queue with capacity two", t, func() {
		path := filepath.Join(t.TempDir(), "queue.json")
		q, err := New(path, WithCapacity(2))
		So(err, ShouldBeNil)

		_, err = q.Enqueue(model.Submission{SubjectID: "s1"})
		So(err, ShouldBeNil)
		_, err = q.Enqueue(model.Submission{SubjectID: "s2"})
		So(err, ShouldBeNil)

		Convey("Then a third enqueue is refused", func() {
			_, err := q.Enqueue(model.Submission{SubjectID: "s3"})
			So(errors.Is(err, ErrFull), ShouldBeTrue)
			So(q.Depth(), ShouldEqual, 2)
		})
	})
}

func TestQueueAttempts(t *testing.T) {
	Convey("Given a queued submission", t, func() {
		path := filepath.Join(t.TempDir(), "queue.json")
		q, err := New(path)
		So(err, ShouldBeNil)

		item, err := q.Enqueue(model.Submission{SubjectID: "s1", Correct: true})
		So(err, ShouldBeNil)

		Convey("When delivery is attempted twice", func() {
			q.MarkAttempt(item.ID)
			q.MarkAttempt(item.ID)

			head, ok := q.Head()
			So(ok, ShouldBeTrue)
			So(head.Attempts, ShouldEqual, 2)
		})
	})
}
