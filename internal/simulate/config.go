package simulate

import "time"

// Config holds configuration for the study simulation.
type Config struct {
	BaseURL   string        // Base URL of the service or agent
	UserID    string        // User the answers are recorded under
	Token     string        // Bearer credential for the study API
	Answers   int           // Number of answers to submit
	Replays   int           // Number of submissions replayed to check dedup
	Workers   int           // Number of concurrent workers
	Timeout   time.Duration // HTTP request timeout
	Accuracy  float64       // Probability an answer is correct
	DaysSpan  int           // Spread of answer timestamps into the past
	DailyDays int           // Window queried from the daily endpoint
}

// Answer is one submission on the wire.
type Answer struct {
	SubjectID    string `json:"subjectId"`
	Correct      bool   `json:"correct"`
	Timestamp    string `json:"timestamp"`
	SubmissionID string `json:"submissionId"`
}

// AckResponse is the response from answer submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds simulation statistics.
type Stats struct {
	AnswersGenerated int
	AnswersSubmitted int
	AnswersRecorded  int
	AnswersQueued    int
	AnswersFailed    int
	ReplaysDetected  int
	StartTime        time.Time
	Duration         time.Duration
}
