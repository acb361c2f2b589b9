// Package proxy is the agent's HTTP front door. Every request is
// classified and handled by the policy for its class: navigations fall
// back to the application shell, static assets are served cache-first,
// reads are network-first with cached and synthetic fallbacks, and
// writes that cannot reach the origin are queued for later delivery.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/okian/recall/internal/agent/cache"
	"github.com/okian/recall/internal/agent/classify"
	"github.com/okian/recall/internal/agent/queue"
	"github.com/okian/recall/internal/agent/shell"
	"github.com/okian/recall/internal/domain/model"
	"github.com/okian/recall/internal/domain/stats"
	"github.com/okian/recall/pkg/logger"
)

const (
	shellKey       = "GET /"
	answerPath     = "/api/study/answer"
	statsPath      = "/api/study/stats"
	defaultTimeout = 5 * time.Second
)

// Connectivity is the slice of the monitor the proxy needs.
type Connectivity interface {
	Online() bool
	NotifyWrite()
}

// Proxy serves the local agent port.
type Proxy struct {
	origin  string
	token   string
	client  *http.Client
	cache   *cache.Store
	queue   *queue.Queue
	monitor Connectivity
	timeout time.Duration
	logger  logger.Logger

	mu       sync.Mutex
	snapshot model.Snapshot
}

// New wires a proxy over the cache, queue and monitor. The embedded
// application shell is seeded into the static partition so a navigation
// can be answered even before the first successful fetch.
func New(origin, token string, store *cache.Store, q *queue.Queue, mon Connectivity, opts ...Option) *Proxy {
	p := &Proxy{
		origin:  origin,
		token:   token,
		cache:   store,
		queue:   q,
		monitor: mon,
		timeout: defaultTimeout,
		logger:  logger.Named("proxy"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: p.timeout}
	}

	store.Put(cache.Static, shellKey, cache.Entry{
		Key:      shellKey,
		Status:   http.StatusOK,
		Header:   http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		Body:     shell.Page(),
		StoredAt: time.Now(),
	})
	return p
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/status" && r.Method == http.MethodGet {
		p.handleStatus(w, r)
		return
	}

	switch classify.Classify(r) {
	case classify.Navigation:
		p.serveNavigation(w, r)
	case classify.StaticAsset:
		p.serveStatic(w, r)
	case classify.ReadAPI:
		p.serveRead(w, r)
	case classify.WriteAPI:
		p.serveWrite(w, r)
	default:
		p.servePassthrough(w, r)
	}
}

// forward replays the incoming request against the origin and returns
// the buffered response. Buffering keeps cache storage and relaying a
// single read of the body.
func (p *Proxy) forward(r *http.Request) (*http.Response, []byte, error) {
	ctx, cancel := context.WithTimeout(r.Context(), p.timeout)
	defer cancel()

	var body io.Reader
	if r.Body != nil {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, nil, err
		}
		body = bytes.NewReader(data)
	}

	url := p.origin + r.URL.Path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, url, body)
	if err != nil {
		return nil, nil, err
	}
	for k, vv := range r.Header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	if p.token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		// A truncated body must never be cached or relayed as complete.
		return nil, nil, err
	}
	return resp, data, nil
}

func (p *Proxy) serveNavigation(w http.ResponseWriter, r *http.Request) {
	resp, body, err := p.forward(r)
	if err == nil && resp.StatusCode == http.StatusOK {
		p.cache.Put(cache.Static, shellKey, cache.Entry{
			Key:      shellKey,
			Status:   resp.StatusCode,
			Header:   resp.Header.Clone(),
			Body:     body,
			StoredAt: time.Now(),
		})
		relay(w, resp.StatusCode, resp.Header, body)
		return
	}
	if err == nil {
		relay(w, resp.StatusCode, resp.Header, body)
		return
	}

	entry, ok := p.cache.Get(cache.Static, shellKey)
	if !ok {
		writeOffline(w)
		return
	}
	relay(w, entry.Status, entry.Header, entry.Body)
}

func (p *Proxy) serveStatic(w http.ResponseWriter, r *http.Request) {
	key := classify.CacheKey(r)
	if entry, ok := p.cache.Get(cache.Static, key); ok {
		relay(w, entry.Status, entry.Header, entry.Body)
		return
	}

	resp, body, err := p.forward(r)
	if err != nil {
		writeOffline(w)
		return
	}
	if resp.StatusCode == http.StatusOK {
		p.cache.Put(cache.Static, key, cache.Entry{
			Key:      key,
			Status:   resp.StatusCode,
			Header:   resp.Header.Clone(),
			Body:     body,
			StoredAt: time.Now(),
		})
	}
	relay(w, resp.StatusCode, resp.Header, body)
}

func (p *Proxy) serveRead(w http.ResponseWriter, r *http.Request) {
	key := classify.CacheKey(r)

	resp, body, err := p.forward(r)
	if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		p.cache.Put(cache.Dynamic, key, cache.Entry{
			Key:      key,
			Status:   resp.StatusCode,
			Header:   resp.Header.Clone(),
			Body:     body,
			StoredAt: time.Now(),
		})
		p.observeSnapshot(r.URL.Path, body)
		relay(w, resp.StatusCode, resp.Header, body)
		return
	}
	if err == nil {
		relay(w, resp.StatusCode, resp.Header, body)
		return
	}

	if entry, ok := p.cache.Get(cache.Dynamic, key); ok {
		relay(w, entry.Status, entry.Header, entry.Body)
		return
	}
	if p.serveSynthetic(w, r.URL.Path) {
		return
	}
	writeOffline(w)
}

func (p *Proxy) serveWrite(w http.ResponseWriter, r *http.Request) {
	if !(r.Method == http.MethodPost && r.URL.Path == answerPath) {
		resp, body, err := p.forward(r)
		if err != nil {
			writeOffline(w)
			return
		}
		relay(w, resp.StatusCode, resp.Header, body)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}
	sub, perr := parseAnswer(data)
	if perr != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": perr.Error()})
		return
	}

	r.Body = io.NopCloser(bytes.NewReader(data))
	resp, body, ferr := p.forward(r)
	if ferr == nil && resp.StatusCode < 500 {
		if resp.StatusCode < 300 {
			p.applyOptimistic(sub.Correct)
		}
		relay(w, resp.StatusCode, resp.Header, body)
		return
	}

	// Origin unreachable or failing: queue and acknowledge. The id is
	// minted by the queue and travels with the replay as the dedup key.
	item, qerr := p.queue.Enqueue(sub)
	if qerr != nil && !errors.Is(qerr, queue.ErrPersist) {
		p.logger.Error(r.Context(), "answer could not be queued", logger.Error(qerr))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "queue unavailable"})
		return
	}
	if qerr != nil {
		// Kept in memory only; still acknowledged, but the gap is logged.
		p.logger.Warn(r.Context(), "queued answer not durable",
			logger.String("id", item.ID), logger.Error(qerr))
	}
	p.applyOptimistic(sub.Correct)
	p.monitor.NotifyWrite()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "id": item.ID})
}

func (p *Proxy) servePassthrough(w http.ResponseWriter, r *http.Request) {
	resp, body, err := p.forward(r)
	if err != nil {
		writeOffline(w)
		return
	}
	relay(w, resp.StatusCode, resp.Header, body)
}

func parseAnswer(data []byte) (model.Submission, error) {
	var req struct {
		SubjectID string `json:"subjectId"`
		Correct   *bool  `json:"correct"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return model.Submission{}, errors.New("malformed answer payload")
	}
	if strings.TrimSpace(req.SubjectID) == "" {
		return model.Submission{}, errors.New("subjectId is required")
	}
	if req.Correct == nil {
		return model.Submission{}, errors.New("correct is required")
	}
	sub := model.Submission{SubjectID: req.SubjectID, Correct: *req.Correct}
	if req.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return model.Submission{}, errors.New("timestamp must be RFC3339")
		}
		sub.Timestamp = ts
	}
	return sub, nil
}

// observeSnapshot refreshes the provisional local snapshot whenever an
// authoritative stats response passes through.
func (p *Proxy) observeSnapshot(path string, body []byte) {
	if path != statsPath {
		return
	}
	var snap model.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return
	}
	p.mu.Lock()
	p.snapshot = snap
	p.mu.Unlock()
}

func (p *Proxy) applyOptimistic(correct bool) {
	p.mu.Lock()
	p.snapshot = stats.Apply(p.snapshot, correct)
	p.mu.Unlock()
}

func relay(w http.ResponseWriter, status int, header http.Header, body []byte) {
	for k, vv := range header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(status)
	w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOffline(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "offline"})
}
