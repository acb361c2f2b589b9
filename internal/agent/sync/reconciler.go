package sync

import (
	"context"
	"errors"
	"time"

	"github.com/okian/recall/internal/domain/model"
	"github.com/okian/recall/pkg/logger"
	"github.com/okian/recall/pkg/metrics"
)

// Pending is the slice of the queue the reconciler needs.
type Pending interface {
	Head() (model.QueuedSubmission, bool)
	MarkAttempt(id string)
	Ack(id string) error
	Drop(id string) error
	Depth() int
}

// Deliverer posts one submission to the origin.
type Deliverer interface {
	Forward(ctx context.Context, sub model.Submission) error
}

// Reconciler drains the pending queue strictly in order. The first
// transient failure ends the run with the failed entry still at the
// head, so no submission can overtake an older one.
type Reconciler struct {
	queue     Pending
	forwarder Deliverer
	logger    logger.Logger
}

// NewReconciler wires a reconciler over a queue and a forwarder.
func NewReconciler(q Pending, f Deliverer) *Reconciler {
	return &Reconciler{
		queue:     q,
		forwarder: f,
		logger:    logger.Named("reconciler"),
	}
}

// Run drains the queue until it is empty or a transient failure stops
// the run. It reports how many submissions were delivered and whether
// the queue was fully drained.
func (r *Reconciler) Run(ctx context.Context) (delivered int, drained bool, err error) {
	start := time.Now()
	metrics.RecordReconcileRun()
	defer func() {
		metrics.RecordReconcileLatency(float64(time.Since(start).Milliseconds()))
	}()

	for {
		if ctx.Err() != nil {
			return delivered, false, ctx.Err()
		}

		item, ok := r.queue.Head()
		if !ok {
			return delivered, true, nil
		}

		r.queue.MarkAttempt(item.ID)
		ferr := r.forwarder.Forward(ctx, item.Submission)
		if ferr == nil {
			if aerr := r.queue.Ack(item.ID); aerr != nil {
				r.logger.Error(ctx, "acknowledged submission could not be removed",
					logger.String("id", item.ID), logger.Error(aerr))
				return delivered + 1, false, aerr
			}
			delivered++
			continue
		}

		var httpErr *HTTPError
		if errors.As(ferr, &httpErr) && httpErr.Permanent() {
			// Poison entry. Dropping it keeps the rest of the queue
			// deliverable.
			r.logger.Warn(ctx, "origin rejected submission, dropping",
				logger.String("id", item.ID),
				logger.String("subject", item.Submission.SubjectID),
				logger.Int("status", httpErr.StatusCode))
			if derr := r.queue.Drop(item.ID); derr != nil {
				return delivered, false, derr
			}
			continue
		}

		// Transient: the entry stays at the head for the next run.
		metrics.RecordReconcileFailure()
		r.logger.Info(ctx, "reconcile paused on transient failure",
			logger.String("id", item.ID),
			logger.Int("attempts", item.Attempts+1),
			logger.Error(ferr))
		return delivered, false, ferr
	}
}
