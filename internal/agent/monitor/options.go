package monitor

import (
	"net/http"
	"time"
)

// Option configures a Monitor.
type Option func(*Monitor)

// WithProbeInterval sets how often origin reachability is checked.
func WithProbeInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.probeEvery = d
		}
	}
}

// WithReconcileInterval sets the safety-net tick that retries pending
// submissions even without a connectivity change.
func WithReconcileInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.reconcileEvery = d
		}
	}
}

// WithHTTPClient overrides the probe client, for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Monitor) {
		if c != nil {
			m.client = c
		}
	}
}
