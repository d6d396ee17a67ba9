package brightdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/prodscout/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	// Remote scraping is slow; the trigger call may block for a while before
	// the backend decides to defer.
	defaultSubmitTimeout = 120 * time.Second

	// Snapshot downloads can be large, so status/fetch requests get a looser
	// ceiling than the trigger call.
	defaultSnapshotTimeout = 300 * time.Second
)

// Client handles communication with the Bright Data dataset API: triggering
// keyword searches and retrieving job snapshots.
type Client struct {
	submitClient    *http.Client
	snapshotClient  *http.Client
	apiKey          string
	triggerURL      string
	snapshotBaseURL string
	rateLimiter     *rate.Limiter
	debug           bool
}

// keywordInput is the trigger request body:
// {"input":[{"keyword":"light bulb"},{"keyword":"dog toys"}]}
type keywordInput struct {
	Keyword string `json:"keyword"`
}

type triggerRequest struct {
	Input []keywordInput `json:"input"`
}

// StatusReply is one raw answer to a snapshot status query. The poller
// interprets the HTTP status code and body together.
type StatusReply struct {
	StatusCode int
	Body       map[string]interface{}
}

// NewClient creates a Bright Data client. Zero timeouts fall back to the
// package defaults.
func NewClient(apiKey, triggerURL, snapshotBaseURL string, submitTimeout, snapshotTimeout time.Duration) *Client {
	if submitTimeout <= 0 {
		submitTimeout = defaultSubmitTimeout
	}
	if snapshotTimeout <= 0 {
		snapshotTimeout = defaultSnapshotTimeout
	}

	// Pace trigger/status requests; Bright Data throttles aggressive callers
	limiter := rate.NewLimiter(rate.Limit(1), 5)

	return &Client{
		submitClient:    &http.Client{Timeout: submitTimeout},
		snapshotClient:  &http.Client{Timeout: snapshotTimeout},
		apiKey:          apiKey,
		triggerURL:      triggerURL,
		snapshotBaseURL: snapshotBaseURL,
		rateLimiter:     limiter,
	}
}

// SetDebug enables verbose request/response logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// Submit posts the keyword batch to the trigger endpoint and classifies the
// reply. A success reply carrying a snapshot_id means the backend deferred
// the job; a handle-free success carries the results inline. Timeouts and
// non-success statuses are returned as errors, never as partial results.
func (c *Client) Submit(ctx context.Context, keywords []string) (*domain.SubmitResult, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	payload := triggerRequest{Input: make([]keywordInput, 0, len(keywords))}
	for _, kw := range keywords {
		payload.Input = append(payload.Input, keywordInput{Keyword: kw})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.triggerURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	if c.debug {
		log.Printf("[BRIGHTDATA] Submitting %d keywords to %s", len(keywords), c.triggerURL)
	}

	resp, err := c.submitClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendFailure, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	// Bright Data answers 202 for async jobs, but a 200 carrying a
	// snapshot_id is also a deferral
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[BRIGHTDATA] Trigger error - status: %d, body: %s", resp.StatusCode, truncate(string(respBody), 500))
		return nil, &domain.BackendError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 500)}
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if id, ok := result["snapshot_id"].(string); ok && id != "" {
		log.Printf("[BRIGHTDATA] Job deferred with snapshot_id: %s", id)
		return &domain.SubmitResult{Deferred: true, Handle: domain.JobHandle{ID: id}}, nil
	}

	log.Printf("[BRIGHTDATA] Synchronous result received (status %d)", resp.StatusCode)
	return &domain.SubmitResult{Payload: result}, nil
}

// SnapshotStatus issues one status query for a deferred job. Transport errors
// are returned to the caller; interpretation of the status code and body is
// the poller's job.
func (c *Client) SnapshotStatus(ctx context.Context, handle domain.JobHandle) (*StatusReply, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.snapshotURL(handle), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.snapshotClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendFailure, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	reply := &StatusReply{StatusCode: resp.StatusCode}
	if decoded, ok := decodePayload(respBody); ok {
		reply.Body = decoded
	}

	return reply, nil
}

// FetchSnapshot downloads the payload of a finished job for follow-up
// retrieval. A 202 means the job is still running.
func (c *Client) FetchSnapshot(ctx context.Context, handle domain.JobHandle) (map[string]interface{}, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.snapshotURL(handle), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.snapshotClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendFailure, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusAccepted {
		return nil, domain.ErrSnapshotNotReady
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.BackendError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 500)}
	}

	payload, ok := decodePayload(respBody)
	if !ok {
		return nil, fmt.Errorf("failed to decode snapshot body")
	}

	return payload, nil
}

func (c *Client) snapshotURL(handle domain.JobHandle) string {
	return fmt.Sprintf("%s/%s", c.snapshotBaseURL, handle.ID)
}

// decodePayload accepts both body shapes the snapshot endpoint produces: a
// JSON object, or a bare JSON list of records which gets wrapped under "data"
// so the extractor sees a single grouping entry.
func decodePayload(body []byte) (map[string]interface{}, bool) {
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, false
	}

	switch v := decoded.(type) {
	case map[string]interface{}:
		return v, true
	case []interface{}:
		return map[string]interface{}{"data": []interface{}{v}}, true
	default:
		return nil, false
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
