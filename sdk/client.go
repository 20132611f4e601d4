// Package mailqueue provides a Go client for the mailqueue ingestion gateway.
//
// Usage:
//
//	client := mailqueue.New("http://localhost:3000")
//
//	resp, err := client.Jobs.Enqueue(ctx, mailqueue.EnqueueRequest{
//	    Email:   "user@example.com",
//	    Subject: "Backend Engineer",
//	})
package mailqueue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const requestIDHeader = "X-Request-ID"

// Client is the gateway API client.
type Client struct {
	baseURL    string
	httpClient *http.Client

	Jobs *JobsService
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client. baseURL is the root URL (e.g. "http://localhost:3000").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	c.Jobs = &JobsService{c: c}
	return c
}

// Health checks that the gateway and its queue store are reachable.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	out, _, err := doRequest[HealthResponse](ctx, c, http.MethodGet, "/health", nil, http.StatusOK)
	return out, err
}

// --- internal helpers ---

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("mailqueue: marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func doRequest[T any](ctx context.Context, c *Client, method, path string, body any, expectedStatus int) (*T, http.Header, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != expectedStatus {
		return nil, resp.Header, parseError(resp)
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, resp.Header, fmt.Errorf("mailqueue: decode response: %w", err)
	}
	return &out, resp.Header, nil
}

func parseError(resp *http.Response) *APIError {
	e := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error  string `json:"error"`
		Status string `json:"status"`
	}
	switch err := json.NewDecoder(resp.Body).Decode(&body); {
	case err == nil && body.Error != "":
		e.Message = body.Error
	case err == nil && body.Status != "":
		e.Message = body.Status
	default:
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
