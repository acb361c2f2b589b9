// Package queue holds answers written while offline until the
// reconciler can replay them.
//
// The queue is a single ordered JSON file rewritten atomically
// (tmp+rename) on every mutation and reloaded on construction, so
// pending submissions survive process restarts. Every entry carries an
// id minted at enqueue time, independent of its payload: removal is
// always by id, so two byte-identical answers queued back to back can
// never be confused.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/recall/internal/domain/model"
	"github.com/okian/recall/pkg/metrics"
)

const defaultCapacity = 1024

// Queue is the durable, ordered list of pending submissions.
type Queue struct {
	path     string
	capacity int
	mu       sync.Mutex
	items    []model.QueuedSubmission
	now      func() time.Time
}

type fileState struct {
	Items []model.QueuedSubmission `json:"items"`
}

// New opens (or creates) the queue persisted at path.
func New(path string, opts ...Option) (*Queue, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}
	q := &Queue{
		path:     path,
		capacity: defaultCapacity,
		items:    []model.QueuedSubmission{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	if err := q.load(); err != nil {
		return nil, err
	}
	metrics.UpdateQueueDepth(len(q.items))
	return q, nil
}

// Enqueue appends a submission with a freshly minted id and persists the
// queue before returning. When persistence fails the in-memory entry is
// kept so the current process can still reconcile it, and the error
// tells the caller durability is not guaranteed.
func (q *Queue) Enqueue(sub model.Submission) (model.QueuedSubmission, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.capacity {
		return model.QueuedSubmission{}, ErrFull
	}

	item := model.QueuedSubmission{
		ID:         uuid.NewString(),
		Submission: sub,
		EnqueuedAt: q.now().UTC(),
	}
	item.Submission.SubmissionID = item.ID
	if item.Submission.Timestamp.IsZero() {
		item.Submission.Timestamp = item.EnqueuedAt
	}

	q.items = append(q.items, item)
	metrics.RecordQueueEnqueue()
	metrics.UpdateQueueDepth(len(q.items))

	if err := q.saveLocked(); err != nil {
		metrics.RecordQueuePersistError()
		return item, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return item, nil
}

// Head returns the oldest pending submission without removing it.
func (q *Queue) Head() (model.QueuedSubmission, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return model.QueuedSubmission{}, false
	}
	return q.items[0], true
}

// MarkAttempt bumps the attempt counter of the entry with the given id.
func (q *Queue) MarkAttempt(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].Attempts++
			_ = q.saveLocked()
			return
		}
	}
}

// Ack removes the entry with the given id after a confirmed success.
// Removal is by id, never by payload equality.
func (q *Queue) Ack(id string) error {
	if err := q.remove(id); err != nil {
		return err
	}
	metrics.RecordQueueAcknowledged()
	return nil
}

// Drop removes a permanently rejected entry so it cannot poison the
// queue forever.
func (q *Queue) Drop(id string) error {
	if err := q.remove(id); err != nil {
		return err
	}
	metrics.RecordQueueDropped()
	return nil
}

func (q *Queue) remove(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := -1
	for i := range q.items {
		if q.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}

	prev := q.items
	next := make([]model.QueuedSubmission, 0, len(prev)-1)
	next = append(next, prev[:idx]...)
	next = append(next, prev[idx+1:]...)
	q.items = next
	metrics.UpdateQueueDepth(len(q.items))

	if err := q.saveLocked(); err != nil {
		// Entries must not vanish on a persist failure.
		q.items = prev
		metrics.RecordQueuePersistError()
		metrics.UpdateQueueDepth(len(q.items))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// Depth returns the number of pending submissions.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Snapshot returns a copy of the pending submissions in order.
func (q *Queue) Snapshot() []model.QueuedSubmission {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]model.QueuedSubmission(nil), q.items...)
}

func (q *Queue) load() error {
	data, err := os.ReadFile(q.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	q.items = append([]model.QueuedSubmission{}, state.Items...)
	return nil
}

func (q *Queue) saveLocked() error {
	state := fileState{Items: append([]model.QueuedSubmission(nil), q.items...)}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(q.path), 0o755); err != nil {
		return err
	}
	tmp := q.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, q.path)
}
