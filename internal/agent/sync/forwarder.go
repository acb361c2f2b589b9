// Package sync replays queued submissions against the origin server.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/recall/internal/domain/model"
)

const defaultTimeout = 5 * time.Second

// HTTPError carries the status code of a non-2xx origin response so the
// reconciler can tell a permanent rejection from a transient failure.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("origin returned %d: %s", e.StatusCode, e.Body)
}

// Permanent reports whether retrying the same submission can ever
// succeed. Client errors other than auth failures are poison.
func (e *HTTPError) Permanent() bool {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return false
	}
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// Forwarder delivers a single submission to the origin's answer endpoint.
type Forwarder struct {
	origin  string
	token   string
	userID  string
	client  *http.Client
	timeout time.Duration
}

// NewForwarder builds a forwarder for the given origin base URL.
func NewForwarder(origin, token string, opts ...ForwarderOption) *Forwarder {
	f := &Forwarder{
		origin:  origin,
		token:   token,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	return f
}

type answerPayload struct {
	SubjectID    string `json:"subjectId"`
	Correct      bool   `json:"correct"`
	Timestamp    string `json:"timestamp"`
	SubmissionID string `json:"submissionId"`
}

// Forward posts one submission. A nil error means the origin durably
// recorded it (or already had it). A *HTTPError means the origin
// answered with a non-2xx status; any other error is a transport
// failure and the submission should be retried later.
func (f *Forwarder) Forward(ctx context.Context, sub model.Submission) error {
	payload := answerPayload{
		SubjectID:    sub.SubjectID,
		Correct:      sub.Correct,
		Timestamp:    sub.Timestamp.UTC().Format(time.RFC3339),
		SubmissionID: sub.SubmissionID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding submission: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.origin+"/api/study/answer", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	if f.userID != "" {
		req.Header.Set("X-Recall-User", f.userID)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &HTTPError{StatusCode: resp.StatusCode, Body: string(snippet)}
}
