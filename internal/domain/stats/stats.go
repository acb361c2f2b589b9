// Package stats computes aggregate statistics over a user's outcome log.
//
// Everything here is a pure function of the log contents: no state, no
// storage access, safe to call concurrently for different users.
//
// The two streak figures deliberately use different horizons. The current
// streak only looks at a bounded window of the most recent records, so the
// reported value is a lower bound once the window fills up. The best streak
// always scans the entire history with O(1) auxiliary state. Narrowing the
// best-streak scan to the same window would let the reported maximum
// decrease as the log grows, which callers treat as a contract violation.
package stats

import (
	"time"

	"github.com/okian/recall/internal/domain/model"
)

// DefaultStreakWindow bounds the current-streak scan. A streak reported as
// exactly DefaultStreakWindow may in truth be longer.
const DefaultStreakWindow = 100

// DefaultDailyDays is the default trailing window for daily buckets.
const DefaultDailyDays = 7

// Compute derives the aggregate snapshot from a user's log ordered oldest
// to newest. streakWindow <= 0 falls back to DefaultStreakWindow.
func Compute(log []model.OutcomeRecord, streakWindow int) model.Snapshot {
	if streakWindow <= 0 {
		streakWindow = DefaultStreakWindow
	}

	var s model.Snapshot
	s.TotalStudied = len(log)

	// Best streak: full ascending scan, running counter.
	run := 0
	for i := range log {
		if log[i].Correct {
			s.CorrectAnswers++
			run++
			if run > s.BestStreak {
				s.BestStreak = run
			}
		} else {
			s.IncorrectAnswers++
			run = 0
		}
	}

	// Current streak: walk backwards from the newest record, at most
	// streakWindow records, until the first incorrect answer.
	for i := len(log) - 1; i >= 0 && len(log)-1-i < streakWindow; i-- {
		if !log[i].Correct {
			break
		}
		s.Streak++
	}

	return s
}

// CurrentStreak counts leading consecutive correct answers in a
// newest-first slice that the caller has already bounded to its window.
// Used when only the recent slice of the log is in hand.
func CurrentStreak(newestFirst []model.OutcomeRecord) int {
	n := 0
	for i := range newestFirst {
		if !newestFirst[i].Correct {
			break
		}
		n++
	}
	return n
}

// Daily buckets the trailing days of the log into per-date totals, oldest
// first. Days without any record are omitted, matching the storage-level
// GROUP BY the figures mirror. now anchors the window so tests can pin it.
func Daily(log []model.OutcomeRecord, days int, now time.Time) []model.DailyStat {
	if days <= 0 {
		days = DefaultDailyDays
	}
	cutoff := now.UTC().AddDate(0, 0, -days)

	byDate := make(map[string]*model.DailyStat)
	var order []string
	for i := range log {
		ts := log[i].Timestamp.UTC()
		if ts.Before(cutoff) {
			continue
		}
		date := ts.Format("2006-01-02")
		bucket, ok := byDate[date]
		if !ok {
			bucket = &model.DailyStat{Date: date}
			byDate[date] = bucket
			order = append(order, date)
		}
		bucket.TotalStudied++
		if log[i].Correct {
			bucket.CorrectAnswers++
		} else {
			bucket.IncorrectAnswers++
		}
	}

	// The log is ordered by timestamp, so first appearance is already
	// oldest first; no sort needed.
	out := make([]model.DailyStat, 0, len(order))
	for _, date := range order {
		out = append(out, *byDate[date])
	}
	return out
}

// Apply folds one answer into a snapshot using the same increment rules as
// a recompute. The agent uses this for the optimistic local copy between
// authoritative fetches; the result is provisional and superseded by the
// next Compute over the real log.
func Apply(s model.Snapshot, correct bool) model.Snapshot {
	s.TotalStudied++
	if correct {
		s.CorrectAnswers++
		s.Streak++
		if s.Streak > s.BestStreak {
			s.BestStreak = s.Streak
		}
	} else {
		s.IncorrectAnswers++
		s.Streak = 0
	}
	return s
}
