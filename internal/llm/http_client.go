package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody caps how much of a failed response is kept for the message.
const maxErrorBody = 64 << 10

// HTTPClient is the net/http transport. It sets no timeout of its own and
// never retries; cancellation comes from the request context.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a transport around client, or a fresh http.Client when nil.
func NewHTTPClient(client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPClient{client: client}
}

// Post implements Transport.
func (c *HTTPClient) Post(ctx context.Context, url string, body []byte) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: raw}
	}
	return resp.Body, nil
}

// Requires implements Transport.
func (c *HTTPClient) Requires() []string { return nil }

// Name implements Transport.
func (c *HTTPClient) Name() string { return "http" }
