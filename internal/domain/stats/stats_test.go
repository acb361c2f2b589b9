package stats_test

import (
	"testing"
	"time"

	"github.com/okian/recall/internal/domain/model"
	"github.com/okian/recall/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

// makeLog builds an ascending log from a correctness sequence, one record
// per minute starting at base.
func makeLog(base time.Time, outcomes ...bool) []model.OutcomeRecord {
	log := make([]model.OutcomeRecord, len(outcomes))
	for i, correct := range outcomes {
		log[i] = model.OutcomeRecord{
			ID:        int64(i + 1),
			UserID:    "u1",
			SubjectID: "s1",
			Correct:   correct,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return log
}

func TestCompute(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	Convey("Given an outcome log", t, func() {
		Convey("When the log is [correct, correct, incorrect, correct]", func() {
			s := stats.Compute(makeLog(base, true, true, false, true), 0)

			Convey("Then best streak is 2 and current streak is 1", func() {
				So(s.TotalStudied, ShouldEqual, 4)
				So(s.CorrectAnswers, ShouldEqual, 3)
				So(s.IncorrectAnswers, ShouldEqual, 1)
				So(s.BestStreak, ShouldEqual, 2)
				So(s.Streak, ShouldEqual, 1)
			})
		})

		Convey("When the log is empty", func() {
			s := stats.Compute(nil, 0)

			Convey("Then every figure is zero", func() {
				So(s.TotalStudied, ShouldEqual, 0)
				So(s.CorrectAnswers, ShouldEqual, 0)
				So(s.IncorrectAnswers, ShouldEqual, 0)
				So(s.Streak, ShouldEqual, 0)
				So(s.BestStreak, ShouldEqual, 0)
			})
		})

		Convey("When the K most recent records are correct and K is below the window", func() {
			log := makeLog(base, false, true, true, true)
			s := stats.Compute(log, 10)

			Convey("Then the current streak is exactly K", func() {
				So(s.Streak, ShouldEqual, 3)
			})
		})

		Convey("When every record within the window is correct and the log is longer", func() {
			outcomes := make([]bool, 20)
			for i := range outcomes {
				outcomes[i] = true
			}
			s := stats.Compute(makeLog(base, outcomes...), 5)

			Convey("Then the current streak is capped at the window size", func() {
				So(s.Streak, ShouldEqual, 5)
			})

			Convey("But the best streak still sees the full run", func() {
				So(s.BestStreak, ShouldEqual, 20)
			})
		})

		Convey("When a log is extended by appending records", func() {
			log := makeLog(base, true, true, false, true, true, true)
			before := stats.Compute(log, 0).BestStreak

			extended := append(append([]model.OutcomeRecord{}, log...),
				makeLog(base.Add(time.Hour), false, false, true)...)
			after := stats.Compute(extended, 0).BestStreak

			Convey("Then the best streak never decreases", func() {
				So(after, ShouldBeGreaterThanOrEqualTo, before)
			})
		})
	})
}

func TestCurrentStreak(t *testing.T) {
	Convey("Given a newest-first slice of recent records", t, func() {
		newestFirst := []model.OutcomeRecord{
			{Correct: true},
			{Correct: true},
			{Correct: false},
			{Correct: true},
		}

		Convey("Then only the leading correct run counts", func() {
			So(stats.CurrentStreak(newestFirst), ShouldEqual, 2)
		})

		Convey("And an empty slice yields zero", func() {
			So(stats.CurrentStreak(nil), ShouldEqual, 0)
		})
	})
}

func TestDaily(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	Convey("Given records spread over several days", t, func() {
		log := []model.OutcomeRecord{
			{Correct: true, Timestamp: now.AddDate(0, 0, -9)}, // outside window
			{Correct: true, Timestamp: now.AddDate(0, 0, -3)},
			{Correct: false, Timestamp: now.AddDate(0, 0, -3)},
			{Correct: true, Timestamp: now.AddDate(0, 0, -1)},
		}

		Convey("When bucketing the trailing 7 days", func() {
			daily := stats.Daily(log, 7, now)

			Convey("Then buckets are oldest first and exclude the stale day", func() {
				So(len(daily), ShouldEqual, 2)
				So(daily[0].Date, ShouldEqual, "2026-03-07")
				So(daily[0].TotalStudied, ShouldEqual, 2)
				So(daily[0].CorrectAnswers, ShouldEqual, 1)
				So(daily[0].IncorrectAnswers, ShouldEqual, 1)
				So(daily[1].Date, ShouldEqual, "2026-03-09")
				So(daily[1].TotalStudied, ShouldEqual, 1)
			})
		})
	})
}

func TestApply(t *testing.T) {
	Convey("Given a provisional snapshot", t, func() {
		s := model.Snapshot{TotalStudied: 4, CorrectAnswers: 3, IncorrectAnswers: 1, Streak: 1, BestStreak: 2}

		Convey("When applying a correct answer", func() {
			next := stats.Apply(s, true)

			So(next.TotalStudied, ShouldEqual, 5)
			So(next.CorrectAnswers, ShouldEqual, 4)
			So(next.Streak, ShouldEqual, 2)
			So(next.BestStreak, ShouldEqual, 2)

			Convey("And another correct answer raises the best streak", func() {
				third := stats.Apply(next, true)
				So(third.Streak, ShouldEqual, 3)
				So(third.BestStreak, ShouldEqual, 3)
			})
		})

		Convey("When applying an incorrect answer", func() {
			next := stats.Apply(s, false)

			So(next.TotalStudied, ShouldEqual, 5)
			So(next.IncorrectAnswers, ShouldEqual, 2)
			So(next.Streak, ShouldEqual, 0)
			So(next.BestStreak, ShouldEqual, 2)
		})

		Convey("Then applying matches a recompute over the extended log", func() {
			base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
			log := makeLog(base, true, true, false, true)
			fromLog := stats.Compute(log, 0)

			extended := append(append([]model.OutcomeRecord{}, log...), model.OutcomeRecord{
				Correct:   true,
				Timestamp: base.Add(time.Hour),
			})

			So(stats.Apply(fromLog, true), ShouldResemble, stats.Compute(extended, 0))
		})
	})
}
