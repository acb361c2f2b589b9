package simulate

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// generateAnswers builds the submission set. Every answer carries its
// own submission id so replays can be verified against the dedup path.
func generateAnswers(config *Config, stats *Stats) []Answer {
	answers := make([]Answer, 0, config.Answers)
	now := time.Now().UTC()

	span := config.DaysSpan
	if span < 1 {
		span = 1
	}

	for i := 0; i < config.Answers; i++ {
		back := time.Duration(rand.Intn(span*24)) * time.Hour
		answers = append(answers, Answer{
			SubjectID:    fmt.Sprintf("subject-%03d", rand.Intn(50)),
			Correct:      rand.Float64() < config.Accuracy,
			Timestamp:    now.Add(-back).Format(time.RFC3339),
			SubmissionID: uuid.NewString(),
		})
	}

	stats.AnswersGenerated = len(answers)
	return answers
}

// pickReplays samples submissions to send a second time.
func pickReplays(answers []Answer, n int) []Answer {
	if n > len(answers) {
		n = len(answers)
	}
	replays := make([]Answer, 0, n)
	for _, idx := range rand.Perm(len(answers))[:n] {
		replays = append(replays, answers[idx])
	}
	return replays
}
