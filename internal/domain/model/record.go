// Package model contains domain models passed between layers.
package model

import "time"

// OutcomeRecord is one immutable entry of a user's append-only study log.
// Records are ordered by timestamp; the storage layer breaks ties by
// insertion order.
type OutcomeRecord struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	SubjectID string    `json:"subjectId" db:"subject_id"`
	Correct   bool      `json:"correct" db:"correct"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// Submission is an answer on its way to the outcome log. SubmissionID is
// minted by the client at enqueue time and doubles as the server-side
// dedup key, so a replayed submission converges to a single record.
type Submission struct {
	SubmissionID string    `json:"submissionId,omitempty"`
	SubjectID    string    `json:"subjectId"`
	Correct      bool      `json:"correct"`
	Timestamp    time.Time `json:"timestamp,omitempty"`
}

// QueuedSubmission is a Submission held in the offline queue together
// with its queue bookkeeping. The id is independent of the payload:
// two identical answers queued back to back stay distinguishable.
type QueuedSubmission struct {
	ID         string     `json:"id"`
	Submission Submission `json:"submission"`
	EnqueuedAt time.Time  `json:"enqueuedAt"`
	Attempts   int        `json:"attempts"`
}

// Snapshot is the derived aggregate over a user's outcome log. It is
// recomputed on every query, never stored.
type Snapshot struct {
	TotalStudied     int `json:"totalStudied"`
	CorrectAnswers   int `json:"correctAnswers"`
	IncorrectAnswers int `json:"incorrectAnswers"`
	Streak           int `json:"streak"`
	BestStreak       int `json:"bestStreak"`
}

// DailyStat is one day's bucket of the windowed statistics.
type DailyStat struct {
	Date             string `json:"date"`
	TotalStudied     int    `json:"totalStudied"`
	CorrectAnswers   int    `json:"correctAnswers"`
	IncorrectAnswers int    `json:"incorrectAnswers"`
}
