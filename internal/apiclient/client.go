package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rjmoggach/litigation-support-sub001/internal/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	apiPrefix      = "/api/v1"

	// Error bodies are read up to this size; the backend's detail strings
	// are short, anything larger is noise.
	maxErrorBody = 4 << 10
)

// APIError is a non-2xx backend response: the HTTP status plus the backend's
// detail string. Error classification matches on both.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
}

// HTTPStatus exposes the status for structural classification.
func (e *APIError) HTTPStatus() int { return e.Status }

// Client is the typed client for the backend REST API. All domain records it
// returns are transient copies; the backend stays authoritative.
type Client struct {
	baseURL string
	httpc   *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (used by tests and by
// call sites that need a different timeout).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListOptions are the standard pagination parameters.
type ListOptions struct {
	Skip  int
	Limit int
}

func (o ListOptions) query() string {
	if o.Skip == 0 && o.Limit == 0 {
		return ""
	}
	limit := o.Limit
	if limit == 0 {
		limit = 100
	}
	return "?skip=" + strconv.Itoa(o.Skip) + "&limit=" + strconv.Itoa(limit)
}

// do executes a JSON request against the backend. A non-empty token is sent
// as a bearer credential. out may be nil for responses without a body.
func (c *Client) do(ctx context.Context, resource, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", resource, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", resource, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.APIClientRequests.WithLabelValues(resource, method, "error").Inc()
		return fmt.Errorf("failed to execute %s request: %w", resource, err)
	}
	defer resp.Body.Close()

	metrics.APIClientRequests.WithLabelValues(resource, method, statusClass(resp.StatusCode)).Inc()
	metrics.APIClientDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", resource, err)
		}
	}
	return nil
}

// newAPIError reads the backend's error body. FastAPI-style backends wrap the
// message in {"detail": "..."}; anything else is used raw.
func newAPIError(resp *http.Response) *APIError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var wrapper struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Detail != "" {
		return &APIError{Status: resp.StatusCode, Detail: wrapper.Detail}
	}
	return &APIError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(raw))}
}

func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
