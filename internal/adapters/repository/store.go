// Package repository defines the outcome log store interface and errors.
//
// The outcome log is append-only: records are never updated or deleted.
// Ordering is by timestamp with insertion order breaking ties.
package repository

import (
	"context"
	"time"

	"github.com/okian/recall/internal/domain/model"
)

// Store provides append and ordered-read access to per-user outcome logs.
type Store interface {
	// Append adds one immutable record to the user's log.
	Append(ctx context.Context, rec model.OutcomeRecord) error

	// Recent returns at most limit records, newest first. This is the
	// bounded window the current-streak scan runs over.
	Recent(ctx context.Context, userID string, limit int) ([]model.OutcomeRecord, error)

	// Scan returns the user's entire log, oldest first.
	Scan(ctx context.Context, userID string) ([]model.OutcomeRecord, error)

	// Since returns records with timestamp >= since, oldest first.
	Since(ctx context.Context, userID string, since time.Time) ([]model.OutcomeRecord, error)

	// History returns a page of records, newest first.
	History(ctx context.Context, userID string, limit, offset int) ([]model.OutcomeRecord, error)

	// Count returns the number of records in the user's log.
	Count(ctx context.Context, userID string) (int, error)

	Close() error
}
