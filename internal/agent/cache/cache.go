// Package cache holds the agent's response cache: a static partition
// seeded at startup and a dynamic partition grown opportunistically from
// successful reads.
package cache

import (
	"net/http"
	"sync"
	"time"

	"github.com/okian/recall/pkg/metrics"
)

// Partition names one of the two cache areas.
type Partition string

const (
	// Static holds pre-seeded assets, immutable per deployment.
	Static Partition = "static"
	// Dynamic grows from live read responses.
	Dynamic Partition = "dynamic"
)

// Entry is one cached response.
type Entry struct {
	Key      string
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

// readable reports whether the entry can be served. An unreadable entry
// is treated as a miss, never as an error.
func (e Entry) readable() bool {
	return e.Status != 0 && e.Body != nil
}

// Store is a two-partition in-memory cache. Concurrent writes to the
// same key are last-write-wins.
type Store struct {
	mu       sync.RWMutex
	entries  map[Partition]map[string]Entry
	versions map[Partition]string
}

// New creates a Store with both partitions empty.
func New(opts ...Option) *Store {
	s := &Store{
		entries: map[Partition]map[string]Entry{
			Static:  {},
			Dynamic: {},
		},
		versions: map[Partition]string{
			Static:  "static-v1",
			Dynamic: "dynamic-v1",
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the entry for key, or a miss when absent or unreadable.
func (s *Store) Get(p Partition, key string) (Entry, bool) {
	s.mu.RLock()
	e, ok := s.entries[p][key]
	s.mu.RUnlock()

	if !ok || !e.readable() {
		metrics.RecordCacheMiss(string(p))
		return Entry{}, false
	}
	metrics.RecordCacheHit(string(p))
	return e, true
}

// Put stores an entry under key, replacing any previous one.
func (s *Store) Put(p Partition, key string, e Entry) {
	e.Key = key
	if e.StoredAt.IsZero() {
		e.StoredAt = time.Now()
	}

	s.mu.Lock()
	s.entries[p][key] = e
	n := len(s.entries[p])
	s.mu.Unlock()

	metrics.UpdateCacheEntries(string(p), n)
}

// Evict removes a single entry by key.
func (s *Store) Evict(p Partition, key string) {
	s.mu.Lock()
	delete(s.entries[p], key)
	n := len(s.entries[p])
	s.mu.Unlock()

	metrics.UpdateCacheEntries(string(p), n)
}

// Activate compares the given partition tags against the current ones
// and drops every partition whose tag changed, wholesale. Mirrors the
// deployment-upgrade step: entries are never migrated across versions.
func (s *Store) Activate(versions map[Partition]string) {
	s.mu.Lock()
	for p, tag := range versions {
		if s.versions[p] != tag {
			s.entries[p] = map[string]Entry{}
			s.versions[p] = tag
			metrics.UpdateCacheEntries(string(p), 0)
		}
	}
	s.mu.Unlock()
}

// Version returns the current tag of a partition.
func (s *Store) Version(p Partition) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[p]
}

// Len returns the number of entries in a partition.
func (s *Store) Len(p Partition) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries[p])
}
