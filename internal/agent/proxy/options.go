package proxy

import (
	"net/http"
	"time"
)

// Option configures a Proxy.
type Option func(*Proxy)

// WithTimeout bounds each origin fetch.
func WithTimeout(d time.Duration) Option {
	return func(p *Proxy) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithHTTPClient overrides the origin client, for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Proxy) {
		if c != nil {
			p.client = c
		}
	}
}
