package samplegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HTTP status code constants.
const (
	StatusOK            = 200
	StatusUnprocessable = 422
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a new HTTP client for the server at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Health checks that the server answers on /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// Upload posts a CSV body to /api/dataset.
func (c *HTTPClient) Upload(ctx context.Context, name string, body []byte) (*UploadResult, error) {
	u := c.baseURL + "/api/dataset?name=" + url.QueryEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upload: read response: %w", err)
	}

	switch resp.StatusCode {
	case StatusOK:
		var res UploadResult
		if err := json.Unmarshal(data, &res); err != nil {
			return nil, fmt.Errorf("upload: decode response: %w", err)
		}
		return &res, nil
	case StatusUnprocessable:
		var refused struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &refused)
		return nil, fmt.Errorf("%w: %s", ErrRefused, refused.Message)
	default:
		return nil, fmt.Errorf("upload: unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
}
