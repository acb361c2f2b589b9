// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/recall/internal/adapters/repository"
	"github.com/okian/recall/internal/domain/dedupe"
	"github.com/okian/recall/internal/domain/model"
	"github.com/okian/recall/internal/domain/stats"
	"github.com/okian/recall/pkg/logger"
	"github.com/okian/recall/pkg/metrics"
)

// Service owns the outcome log and answers the study API. Reads run
// concurrently across users; nothing here mutates shared state outside
// the store's append path.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper

	// Configuration
	dbDriver     string
	dbDSN        string
	streakWindow int
	maxDailyDays int
	dedupeSize   int

	// State
	started bool

	// Logging
	logger logger.Logger

	now func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDatabase selects the outcome log backend.
func WithDatabase(driver, dsn string) Option {
	return func(s *Service) {
		if driver != "" {
			s.dbDriver = driver
		}
		if dsn != "" {
			s.dbDSN = dsn
		}
	}
}

// WithStore injects a pre-built store, bypassing WithDatabase. Tests use
// this to run against an isolated in-memory database.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithStreakWindow bounds the current-streak scan.
func WithStreakWindow(window int) Option {
	return func(s *Service) {
		if window > 0 {
			s.streakWindow = window
		}
	}
}

// WithMaxDailyDays caps the daily stats window.
func WithMaxDailyDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.maxDailyDays = days
		}
	}
}

// WithDedupeSize sets the size of the seen-submission-id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the service clock, pinning "now" in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbDriver:     "sqlite3",
		dbDSN:        "data/recall.db",
		streakWindow: stats.DefaultStreakWindow,
		maxDailyDays: 90,
		dedupeSize:   50_000,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting study service...")

	if s.store == nil {
		store, err := repository.NewSQLStore(ctx, s.dbDriver, s.dbDSN)
		if err != nil {
			return fmt.Errorf("failed to open outcome log: %w", err)
		}
		s.store = store
		s.logger.Info(ctx, "outcome log opened",
			logger.String("driver", s.dbDriver),
		)
	}

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)

	s.started = true
	s.logger.Info(ctx, "study service started",
		logger.Int("streakWindow", s.streakWindow),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping study service...")

	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "study service stopped")
}

// RecordAnswer appends one answer to the user's outcome log. A replayed
// submission id is acknowledged without a second append, so offline
// replays converge instead of double-counting. Returns whether the
// submission was a duplicate.
func (s *Service) RecordAnswer(ctx context.Context, userID string, sub model.Submission) (bool, error) {
	if sub.SubmissionID != "" {
		if s.deduper.SeenAndRecord(ctx, sub.SubmissionID) {
			metrics.RecordAnswerDuplicate()
			s.logger.Debug(ctx, "duplicate submission skipped",
				logger.String("submissionID", sub.SubmissionID),
				logger.String("userID", userID),
			)
			return true, nil
		}
	}

	ts := sub.Timestamp
	if ts.IsZero() {
		ts = s.now().UTC()
	}

	rec := model.OutcomeRecord{
		UserID:    userID,
		SubjectID: sub.SubjectID,
		Correct:   sub.Correct,
		Timestamp: ts,
	}
	if err := s.store.Append(ctx, rec); err != nil {
		if sub.SubmissionID != "" {
			// Allow the client to retry; the append never happened.
			s.deduper.Unrecord(ctx, sub.SubmissionID)
		}
		return false, fmt.Errorf("record answer: %w", err)
	}

	metrics.RecordAnswerRecorded()
	return false, nil
}

// Stats recomputes the aggregate snapshot from the user's full log.
func (s *Service) Stats(ctx context.Context, userID string) (model.Snapshot, error) {
	log, err := s.store.Scan(ctx, userID)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("stats: %w", err)
	}
	metrics.RecordStatsQuery()
	return stats.Compute(log, s.streakWindow), nil
}

// DailyStats buckets the trailing days of the user's log, oldest first.
// days outside (0, maxDailyDays] falls back to the default window.
func (s *Service) DailyStats(ctx context.Context, userID string, days int) ([]model.DailyStat, error) {
	if days <= 0 || days > s.maxDailyDays {
		days = stats.DefaultDailyDays
	}
	now := s.now()
	log, err := s.store.Since(ctx, userID, now.UTC().AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("daily stats: %w", err)
	}
	metrics.RecordStatsQuery()
	return stats.Daily(log, days, now), nil
}

// History returns a page of the user's records, newest first.
func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]model.OutcomeRecord, error) {
	recs, err := s.store.History(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return recs, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]interface{}{
		"started":      s.started,
		"streakWindow": s.streakWindow,
		"dedupeSize":   s.dedupeSize,
	}
	if s.deduper != nil {
		out["seenSubmissions"] = s.deduper.Size()
	}
	return out
}
