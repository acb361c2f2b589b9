// Package simulate drives a study session against a running service and
// verifies the resulting statistics, including the duplicate-submission
// path exercised by offline replays.
package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/recall/internal/domain/model"
	"github.com/okian/recall/pkg/logger"
)

// Run executes the complete study simulation.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting study simulation",
		logger.String("baseURL", config.BaseURL),
		logger.String("user", config.UserID),
		logger.Int("answers", config.Answers),
		logger.Int("replays", config.Replays),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config)

	if err := checkServiceHealth(ctx, client); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	answers := generateAnswers(config, stats)

	if err := submitAnswers(ctx, config, client, answers, stats); err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}

	replays := pickReplays(answers, config.Replays)
	if err := replayAnswers(ctx, client, replays, stats); err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	if err := verifyStats(ctx, config, client, answers, stats); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	stats.Duration = time.Since(stats.StartTime)
	logger.Get().Info(ctx, "simulation finished",
		logger.Int("recorded", stats.AnswersRecorded),
		logger.Int("queued", stats.AnswersQueued),
		logger.Int("duplicatesDetected", stats.ReplaysDetected),
		logger.Duration("took", stats.Duration))
	return nil
}

// verifyStats fetches the aggregate endpoints and checks them against
// what was submitted. Queued answers may still be in flight, so totals
// are verified as lower bounds only when anything was queued.
func verifyStats(ctx context.Context, config *Config, client *httpClient, answers []Answer, stats *Stats) error {
	status, body, err := client.do(ctx, http.MethodGet, "/api/study/stats", nil)
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("stats fetch: status %d, err %v", status, err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}

	wantCorrect := 0
	for _, a := range answers {
		if a.Correct {
			wantCorrect++
		}
	}

	if stats.AnswersQueued == 0 {
		if snap.TotalStudied != len(answers) {
			return fmt.Errorf("totalStudied: got %d, want %d", snap.TotalStudied, len(answers))
		}
		if snap.CorrectAnswers != wantCorrect {
			return fmt.Errorf("correctAnswers: got %d, want %d", snap.CorrectAnswers, wantCorrect)
		}
		if stats.ReplaysDetected != min(config.Replays, len(answers)) {
			logger.Get().Warn(ctx, "some replays were not flagged as duplicates",
				logger.Int("detected", stats.ReplaysDetected),
				logger.Int("sent", config.Replays))
		}
	} else if snap.TotalStudied > len(answers) {
		return fmt.Errorf("totalStudied exceeds submissions: got %d, sent %d", snap.TotalStudied, len(answers))
	}

	if snap.BestStreak < snap.Streak {
		return fmt.Errorf("bestStreak %d below current streak %d", snap.BestStreak, snap.Streak)
	}

	path := fmt.Sprintf("/api/study/stats/daily?days=%d", config.DailyDays)
	status, body, err = client.do(ctx, http.MethodGet, path, nil)
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("daily fetch: status %d, err %v", status, err)
	}
	var daily []model.DailyStat
	if err := json.Unmarshal(body, &daily); err != nil {
		return fmt.Errorf("decoding daily stats: %w", err)
	}
	for i := 1; i < len(daily); i++ {
		if daily[i].Date <= daily[i-1].Date {
			return fmt.Errorf("daily stats out of order: %s before %s", daily[i-1].Date, daily[i].Date)
		}
	}

	logger.Get().Info(ctx, "statistics verified",
		logger.Int("totalStudied", snap.TotalStudied),
		logger.Int("bestStreak", snap.BestStreak),
		logger.Int("dailyBuckets", len(daily)))
	return nil
}
