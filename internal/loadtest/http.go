package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/okian/homeval/pkg/logger"
)

// requestIDHeader matches the header the API echoes back.
const requestIDHeader = "X-Request-ID"

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body and request id.
func (c *HTTPClient) Post(ctx context.Context, url, requestID string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// fetchSchema retrieves the feature schema the service predicts with.
func fetchSchema(ctx context.Context, client *HTTPClient, baseURL string) (*Schema, error) {
	resp, err := client.Get(ctx, baseURL+schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: schema status %d", ErrUnhealthy, resp.StatusCode)
	}
	var schema Schema
	if err := json.Unmarshal(body, &schema); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	if len(schema.Fields) == 0 {
		return nil, ErrEmptySchema
	}
	return &schema, nil
}

// submitRequests posts every request with a pool of cfg.Workers workers.
// Outcomes are returned in request order.
func submitRequests(ctx context.Context, cfg *Config, reqs []Request) []Outcome {
	logger.Get().Info(ctx, "submitting requests",
		logger.Int("count", len(reqs)),
		logger.Int("workers", cfg.Workers))

	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + predictPath
	outcomes := make([]Outcome, len(reqs))

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	indexChan := make(chan int, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexChan {
				outcomes[idx] = submitSingleRequest(ctx, client, url, reqs[idx])
			}
		}()
	}

	fed := 0
feed:
	for fed < len(reqs) {
		select {
		case <-ctx.Done():
			break feed
		case indexChan <- fed:
			fed++
		}
	}
	close(indexChan)
	wg.Wait()

	for i := fed; i < len(reqs); i++ {
		outcomes[i] = Outcome{Request: reqs[i], Err: fmt.Sprintf("not submitted: %v", ctx.Err())}
	}
	return outcomes
}

// submitSingleRequest posts one request and decodes the answer.
func submitSingleRequest(ctx context.Context, client *HTTPClient, url string, req Request) Outcome {
	out := Outcome{Request: req}
	resp, err := client.Post(ctx, url, req.ID, map[string]any{"features": req.Features})
	if err != nil {
		out.Err = err.Error()
		return out
	}
	body, err := readResponseBody(resp)
	out.Status = resp.StatusCode
	if err != nil {
		out.Err = err.Error()
		return out
	}
	if resp.StatusCode == http.StatusOK {
		var r Response
		if err := json.Unmarshal(body, &r); err != nil {
			out.Err = fmt.Sprintf("decode response: %v", err)
			return out
		}
		out.Response = &r
		return out
	}
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		out.Err = fmt.Sprintf("decode error: %v", err)
		return out
	}
	out.Error = &e
	return out
}
