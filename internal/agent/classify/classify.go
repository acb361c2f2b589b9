// Package classify sorts inbound requests into their offline handling
// policies.
package classify

import (
	"net/http"
	"strings"
)

// Class is the handling policy chosen for a request.
type Class int

const (
	// Passthrough is the default for unrecognized request shapes:
	// forward as-is, never cache.
	Passthrough Class = iota

	// Navigation requests (HTML pages) fall back to the cached
	// application shell when the network is down.
	Navigation

	// StaticAsset requests are served cache-first.
	StaticAsset

	// ReadAPI requests are served network-first with a cached or
	// synthetic fallback.
	ReadAPI

	// WriteAPI requests are queued for later replay when the network
	// is down.
	WriteAPI
)

func (c Class) String() string {
	switch c {
	case Navigation:
		return "navigation"
	case StaticAsset:
		return "static-asset"
	case ReadAPI:
		return "read-api"
	case WriteAPI:
		return "write-api"
	default:
		return "passthrough"
	}
}

const apiPrefix = "/api/"

// Classify inspects method, target and accept header of a request.
func Classify(r *http.Request) Class {
	if strings.HasPrefix(r.URL.Path, apiPrefix) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			return ReadAPI
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			return WriteAPI
		default:
			return Passthrough
		}
	}

	if r.Method != http.MethodGet {
		return Passthrough
	}

	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		return Navigation
	}

	return StaticAsset
}

// CacheKey identifies a request for cache lookups: method plus the exact
// target including the query string. Concurrent writes to the same key
// are last-write-wins, which is idempotent in effect.
func CacheKey(r *http.Request) string {
	key := r.Method + " " + r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	return key
}
