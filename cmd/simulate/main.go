package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/recall/internal/simulate"
	"github.com/okian/recall/pkg/logger"
)

// Default configuration constants.
const (
	defaultAnswers    = 500
	defaultReplays    = 25
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultAccuracy   = 0.7
	defaultDaysSpan   = 10
	defaultDailyDays  = 7
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8080", "Base URL of the service or agent")
		userID    = flag.String("user", "simulator", "User the answers are recorded under")
		token     = flag.String("token", "", "Bearer credential for the study API")
		answers   = flag.Int("answers", defaultAnswers, "Number of answers to submit")
		replays   = flag.Int("replays", defaultReplays, "Number of submissions replayed to verify dedup")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		accuracy  = flag.Float64("accuracy", defaultAccuracy, "Probability an answer is correct")
		daysSpan  = flag.Int("span", defaultDaysSpan, "Days into the past answers are spread over")
		dailyDays = flag.Int("daily", defaultDailyDays, "Window queried from the daily stats endpoint")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &simulate.Config{
		BaseURL:   *baseURL,
		UserID:    *userID,
		Token:     *token,
		Answers:   *answers,
		Replays:   *replays,
		Workers:   *workers,
		Timeout:   *timeout,
		Accuracy:  *accuracy,
		DaysSpan:  *daysSpan,
		DailyDays: *dailyDays,
	}

	if err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
