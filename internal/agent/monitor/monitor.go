// Package monitor tracks origin reachability and decides when the
// reconciler runs.
//
// All state transitions happen on a single event-loop goroutine fed by
// a channel of events. Concurrency control falls out of the loop
// structure: a reconcile trigger arriving while a run is active only
// sets a pending flag, so at most one run is ever in flight and any
// burst of triggers collapses into one follow-up run.
package monitor

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/okian/recall/pkg/logger"
	"github.com/okian/recall/pkg/metrics"
)

type eventKind int

const (
	evConnectivity eventKind = iota
	evTick
	evWrite
)

type event struct {
	kind   eventKind
	online bool
}

// PendingCounter exposes how many submissions await delivery.
type PendingCounter interface {
	Depth() int
}

// Runner executes one reconcile pass.
type Runner interface {
	Run(ctx context.Context) (delivered int, drained bool, err error)
}

// Monitor owns the agent's view of connectivity and schedules
// reconciliation.
type Monitor struct {
	origin         string
	client         *http.Client
	queue          PendingCounter
	reconciler     Runner
	scheduler      *gocron.Scheduler
	events         chan event
	online         atomic.Bool
	probeEvery     time.Duration
	reconcileEvery time.Duration
	logger         logger.Logger
	cancel         context.CancelFunc
	done           chan struct{}
}

// New builds a monitor probing origin's health endpoint.
func New(origin string, queue PendingCounter, reconciler Runner, opts ...Option) *Monitor {
	m := &Monitor{
		origin:         origin,
		queue:          queue,
		reconciler:     reconciler,
		events:         make(chan event, 32),
		probeEvery:     15 * time.Second,
		reconcileEvery: 60 * time.Second,
		logger:         logger.Named("monitor"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.client == nil {
		m.client = &http.Client{Timeout: 3 * time.Second}
	}
	return m
}

// Start launches the event loop and the periodic probe and safety-net
// schedules.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go m.loop(ctx)

	m.scheduler = gocron.NewScheduler(time.UTC)
	m.scheduler.Every(m.probeEvery).Do(func() { m.probe(ctx) })
	m.scheduler.Every(m.reconcileEvery).Do(func() { m.post(event{kind: evTick}) })
	m.scheduler.StartAsync()

	// Establish an initial connectivity verdict right away instead of
	// waiting for the first scheduled probe.
	go m.probe(ctx)
}

// Stop halts the schedules and the event loop.
func (m *Monitor) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
	if m.cancel != nil {
		m.cancel()
	}
	if m.done != nil {
		<-m.done
	}
}

// Online reports the last probe verdict.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// NotifyWrite signals that a submission was just queued, nudging the
// reconciler if the origin is reachable.
func (m *Monitor) NotifyWrite() {
	m.post(event{kind: evWrite})
}

func (m *Monitor) post(ev event) {
	select {
	case m.events <- ev:
	default:
		// A full channel means the loop already has work queued that
		// will cover this trigger.
	}
}

func (m *Monitor) probe(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.origin+"/healthz", nil)
	if err != nil {
		return
	}
	resp, err := m.client.Do(req)
	online := err == nil && resp.StatusCode < 500
	if resp != nil {
		resp.Body.Close()
	}
	m.post(event{kind: evConnectivity, online: online})
}

type runResult struct {
	delivered int
	drained   bool
	err       error
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	running := false
	pending := false
	finished := make(chan runResult, 1)

	start := func() {
		running = true
		go func() {
			delivered, drained, err := m.reconciler.Run(ctx)
			finished <- runResult{delivered: delivered, drained: drained, err: err}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-m.events:
			trigger := false
			switch ev.kind {
			case evConnectivity:
				was := m.online.Load()
				m.online.Store(ev.online)
				metrics.UpdateConnectivity(ev.online)
				if was != ev.online {
					metrics.RecordConnectivityFlip()
					m.logger.Info(ctx, "connectivity changed",
						logger.Bool("online", ev.online),
						logger.Int("pending", m.queue.Depth()))
				}
				trigger = !was && ev.online && m.queue.Depth() > 0
			case evTick:
				trigger = m.online.Load() && m.queue.Depth() > 0
			case evWrite:
				trigger = m.online.Load()
			}
			if !trigger {
				continue
			}
			if running {
				pending = true
				continue
			}
			start()

		case res := <-finished:
			running = false
			if res.err != nil {
				m.logger.Debug(ctx, "reconcile run stopped early",
					logger.Int("delivered", res.delivered),
					logger.Error(res.err))
			} else if res.delivered > 0 {
				m.logger.Info(ctx, "reconcile run finished",
					logger.Int("delivered", res.delivered),
					logger.Bool("drained", res.drained))
			}
			if pending {
				pending = false
				start()
			}
		}
	}
}
