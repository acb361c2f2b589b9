package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/recall/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeQueue struct {
	mu    sync.Mutex
	depth int
}

func (q *fakeQueue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.depth
}

func (q *fakeQueue) set(n int) {
	q.mu.Lock()
	q.depth = n
	q.mu.Unlock()
}

// fakeRunner blocks inside Run until it receives a token, so tests can
// hold a run open while more triggers arrive.
type fakeRunner struct {
	mu     sync.Mutex
	runs   int
	tokens chan struct{}
}

func (r *fakeRunner) Run(ctx context.Context) (int, bool, error) {
	r.mu.Lock()
	r.runs++
	r.mu.Unlock()
	if r.tokens != nil {
		select {
		case <-r.tokens:
		case <-ctx.Done():
		}
	}
	return 1, true, nil
}

func (r *fakeRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

func startLoop(m *Monitor) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	m.done = make(chan struct{})
	go m.loop(ctx)
	return cancel
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestMonitorTriggersReconcileOnRecovery(t *testing.T) {
	Convey("Given an offline monitor with pending submissions", t, func() {
		q := &fakeQueue{}
		q.set(3)
		r := &fakeRunner{}
		m := New("http://origin", q, r)
		cancel := startLoop(m)
		defer cancel()

		m.post(event{kind: evConnectivity, online: false})

		Convey("When connectivity comes back", func() {
			m.post(event{kind: evConnectivity, online: true})

			Convey("Then exactly one reconcile run starts", func() {
				So(eventually(func() bool { return r.count() == 1 }), ShouldBeTrue)
				time.Sleep(50 * time.Millisecond)
				So(r.count(), ShouldEqual, 1)
				So(m.Online(), ShouldBeTrue)
			})
		})

		Convey("When connectivity stays down", func() {
			m.post(event{kind: evConnectivity, online: false})
			time.Sleep(50 * time.Millisecond)
			So(r.count(), ShouldEqual, 0)
			So(m.Online(), ShouldBeFalse)
		})
	})
}

func TestMonitorCoalescesTriggers(t *testing.T) {
	Convey("Given a reconcile run already in flight", t, func() {
		q := &fakeQueue{}
		q.set(5)
		r := &fakeRunner{tokens: make(chan struct{}, 2)}
		m := New("http://origin", q, r)
		cancel := startLoop(m)
		defer cancel()

		m.post(event{kind: evConnectivity, online: true})
		So(eventually(func() bool { return r.count() == 1 }), ShouldBeTrue)

		Convey("When a burst of writes lands mid-run", func() {
			for i := 0; i < 5; i++ {
				m.NotifyWrite()
			}
			r.tokens <- struct{}{}
			r.tokens <- struct{}{}

			Convey("Then the burst collapses into one follow-up run", func() {
				So(eventually(func() bool { return r.count() == 2 }), ShouldBeTrue)
				time.Sleep(50 * time.Millisecond)
				So(r.count(), ShouldEqual, 2)
			})
		})
	})
}

func TestMonitorIgnoresWritesWhileOffline(t *testing.T) {
	Convey("Given an offline monitor", t, func() {
		q := &fakeQueue{}
		q.set(1)
		r := &fakeRunner{}
		m := New("http://origin", q, r)
		cancel := startLoop(m)
		defer cancel()

		m.post(event{kind: evConnectivity, online: false})

		Convey("When writes are queued", func() {
			m.NotifyWrite()
			m.NotifyWrite()
			time.Sleep(50 * time.Millisecond)

			Convey("Then no reconcile run starts", func() {
				So(r.count(), ShouldEqual, 0)
			})
		})
	})
}

func TestMonitorSafetyNetTick(t *testing.T) {
	Convey("Given an online monitor with a stuck submission", t, func() {
		q := &fakeQueue{}
		q.set(1)
		r := &fakeRunner{}
		m := New("http://origin", q, r)
		cancel := startLoop(m)
		defer cancel()

		m.post(event{kind: evConnectivity, online: true})
		So(eventually(func() bool { return r.count() == 1 }), ShouldBeTrue)

		Convey("When the periodic tick fires", func() {
			m.post(event{kind: evTick})

			So(eventually(func() bool { return r.count() == 2 }), ShouldBeTrue)
		})

		Convey("When the tick fires with an empty queue", func() {
			q.set(0)
			m.post(event{kind: evTick})
			time.Sleep(50 * time.Millisecond)
			So(r.count(), ShouldEqual, 1)
		})
	})
}
