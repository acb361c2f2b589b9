package sync

import (
	"net/http"
	"time"
)

// ForwarderOption configures a Forwarder.
type ForwarderOption func(*Forwarder)

// WithTimeout bounds each delivery attempt.
func WithTimeout(d time.Duration) ForwarderOption {
	return func(f *Forwarder) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithHTTPClient overrides the underlying client, for tests.
func WithHTTPClient(c *http.Client) ForwarderOption {
	return func(f *Forwarder) {
		if c != nil {
			f.client = c
		}
	}
}

// WithUserID sets the identity header attached to replayed submissions.
func WithUserID(id string) ForwarderOption {
	return func(f *Forwarder) {
		f.userID = id
	}
}
