package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/okian/recall/internal/domain/model"
	"github.com/okian/recall/pkg/metrics"
)

const (
	sqliteSchema = `
		CREATE TABLE IF NOT EXISTS outcome_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			subject_id TEXT NOT NULL,
			correct BOOLEAN NOT NULL,
			timestamp TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_outcome_user_ts ON outcome_records (user_id, timestamp, id);
	`
	postgresSchema = `
		CREATE TABLE IF NOT EXISTS outcome_records (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			subject_id TEXT NOT NULL,
			correct BOOLEAN NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_outcome_user_ts ON outcome_records (user_id, timestamp, id);
	`
)

// SQLStore implements Store on a SQL database via sqlx. The default
// driver is sqlite3; a postgres DSN selects lib/pq instead.
type SQLStore struct {
	db     *sqlx.DB
	driver string
}

// NewSQLStore opens the database, applies connection settings and
// bootstraps the schema.
func NewSQLStore(ctx context.Context, driver, dsn string, opts ...SQLOption) (*SQLStore, error) {
	cfg := sqlConfig{maxOpenConns: 1, maxIdleConns: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	var schema string
	switch driver {
	case "sqlite3":
		schema = sqliteSchema
	case "postgres":
		schema = postgresSchema
		if cfg.maxOpenConns == 1 {
			// The single-writer restriction only applies to sqlite.
			cfg.maxOpenConns = 10
			cfg.maxIdleConns = 5
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.maxOpenConns)
	db.SetMaxIdleConns(cfg.maxIdleConns)

	if driver == "sqlite3" {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return &SQLStore{db: db, driver: driver}, nil
}

// Append adds one record to the log.
func (s *SQLStore) Append(ctx context.Context, rec model.OutcomeRecord) error {
	if rec.UserID == "" || rec.SubjectID == "" {
		return ErrInvalidRecord
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	start := time.Now()
	defer func() {
		metrics.RecordLogAppendLatency(float64(time.Since(start).Milliseconds()))
	}()

	query := s.db.Rebind(`
		INSERT INTO outcome_records (user_id, subject_id, correct, timestamp)
		VALUES (?, ?, ?, ?)
	`)
	if _, err := s.db.ExecContext(ctx, query, rec.UserID, rec.SubjectID, rec.Correct, rec.Timestamp.UTC()); err != nil {
		metrics.RecordLogError()
		return fmt.Errorf("failed to append outcome record: %w", err)
	}
	return nil
}

// Recent returns at most limit records, newest first.
func (s *SQLStore) Recent(ctx context.Context, userID string, limit int) ([]model.OutcomeRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	query := s.db.Rebind(`
		SELECT id, user_id, subject_id, correct, timestamp
		FROM outcome_records
		WHERE user_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`)
	return s.selectRecords(ctx, query, userID, limit)
}

// Scan returns the user's entire log, oldest first.
func (s *SQLStore) Scan(ctx context.Context, userID string) ([]model.OutcomeRecord, error) {
	query := s.db.Rebind(`
		SELECT id, user_id, subject_id, correct, timestamp
		FROM outcome_records
		WHERE user_id = ?
		ORDER BY timestamp ASC, id ASC
	`)
	return s.selectRecords(ctx, query, userID)
}

// Since returns records on or after since, oldest first.
func (s *SQLStore) Since(ctx context.Context, userID string, since time.Time) ([]model.OutcomeRecord, error) {
	query := s.db.Rebind(`
		SELECT id, user_id, subject_id, correct, timestamp
		FROM outcome_records
		WHERE user_id = ? AND timestamp >= ?
		ORDER BY timestamp ASC, id ASC
	`)
	return s.selectRecords(ctx, query, userID, since.UTC())
}

// History returns a page of records, newest first.
func (s *SQLStore) History(ctx context.Context, userID string, limit, offset int) ([]model.OutcomeRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := s.db.Rebind(`
		SELECT id, user_id, subject_id, correct, timestamp
		FROM outcome_records
		WHERE user_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`)
	return s.selectRecords(ctx, query, userID, limit, offset)
}

// Count returns the number of records in the user's log.
func (s *SQLStore) Count(ctx context.Context, userID string) (int, error) {
	query := s.db.Rebind(`SELECT COUNT(*) FROM outcome_records WHERE user_id = ?`)
	var n int
	if err := s.db.GetContext(ctx, &n, query, userID); err != nil {
		metrics.RecordLogError()
		return 0, fmt.Errorf("failed to count outcome records: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) selectRecords(ctx context.Context, query string, args ...interface{}) ([]model.OutcomeRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLogScanLatency(float64(time.Since(start).Milliseconds()))
	}()

	var recs []model.OutcomeRecord
	if err := s.db.SelectContext(ctx, &recs, query, args...); err != nil {
		metrics.RecordLogError()
		return nil, fmt.Errorf("failed to read outcome records: %w", err)
	}
	return recs, nil
}
