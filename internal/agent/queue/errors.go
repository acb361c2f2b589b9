package queue

import "errors"

var (
	// ErrInvalidPath indicates the queue file path is empty.
	ErrInvalidPath = errors.New("queue: invalid path")

	// ErrFull indicates the queue reached its capacity bound.
	ErrFull = errors.New("queue: full")

	// ErrNotFound indicates no entry with the given id exists.
	ErrNotFound = errors.New("queue: entry not found")

	// ErrPersist indicates the queue file could not be written; the
	// in-memory state is still authoritative for this process.
	ErrPersist = errors.New("queue: persist failed")
)
