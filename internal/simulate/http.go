package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

type httpClient struct {
	client *http.Client
	base   string
	token  string
	userID string
}

func newHTTPClient(config *Config) *httpClient {
	return &httpClient{
		client: &http.Client{Timeout: config.Timeout},
		base:   config.BaseURL,
		token:  config.Token,
		userID: config.UserID,
	}
}

func (c *httpClient) do(ctx context.Context, method, path string, body interface{}) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshaling body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userID != "" {
		req.Header.Set("X-Recall-User", c.userID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}

type submitCounters struct {
	recorded atomic.Int64
	queued   atomic.Int64
	failed   atomic.Int64
}

// submitAnswers posts answers concurrently through a worker pool.
func submitAnswers(ctx context.Context, config *Config, client *httpClient, answers []Answer, stats *Stats) error {
	var counters submitCounters

	workers := config.Workers
	if workers < 1 {
		workers = 1
	}

	answerChan := make(chan Answer, workers*2)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for answer := range answerChan {
				if ctx.Err() != nil {
					return
				}
				status, _, err := client.do(ctx, http.MethodPost, "/api/study/answer", answer)
				switch {
				case err != nil || status >= 500:
					counters.failed.Add(1)
				case status == http.StatusAccepted:
					counters.queued.Add(1)
				case status < 300:
					counters.recorded.Add(1)
				default:
					counters.failed.Add(1)
				}
			}
		}()
	}

	for _, answer := range answers {
		answerChan <- answer
	}
	close(answerChan)
	wg.Wait()

	stats.AnswersSubmitted = len(answers)
	stats.AnswersRecorded = int(counters.recorded.Load())
	stats.AnswersQueued = int(counters.queued.Load())
	stats.AnswersFailed = int(counters.failed.Load())

	if stats.AnswersFailed > 0 {
		return fmt.Errorf("%d of %d answers failed", stats.AnswersFailed, len(answers))
	}
	return nil
}

// replayAnswers resubmits a sample and counts duplicate acks.
func replayAnswers(ctx context.Context, client *httpClient, replays []Answer, stats *Stats) error {
	for _, answer := range replays {
		status, body, err := client.do(ctx, http.MethodPost, "/api/study/answer", answer)
		if err != nil {
			return fmt.Errorf("replaying %s: %w", answer.SubmissionID, err)
		}
		if status != http.StatusOK {
			continue
		}
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err != nil {
			return fmt.Errorf("decoding replay ack: %w", err)
		}
		if ack.Duplicate {
			stats.ReplaysDetected++
		}
	}
	return nil
}

func checkServiceHealth(ctx context.Context, client *httpClient) error {
	deadline := time.Now().Add(10 * time.Second)
	for {
		status, _, err := client.do(ctx, http.MethodGet, "/healthz", nil)
		if err == nil && status == http.StatusOK {
			return nil
		}
		if time.Now().After(deadline) {
			if err != nil {
				return fmt.Errorf("service not healthy: %w", err)
			}
			return fmt.Errorf("service not healthy: status %d", status)
		}
		time.Sleep(500 * time.Millisecond)
	}
}
