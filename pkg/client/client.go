package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/terra-clan/ideaforge/internal/models"
)

// Client is a Go SDK for the ideaforge API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new ideaforge client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// generation can wait on a slow local model
			Timeout: 150 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is an error envelope returned by the server
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s - %s", e.Code, e.Message)
}

// Bucket describes a loaded template bucket
type Bucket struct {
	Kind  models.ContextKind `json:"kind"`
	Name  string             `json:"name"`
	Ideas int                `json:"ideas"`
}

// ListProviders returns the provider snapshot, re-probing when refresh is set
func (c *Client) ListProviders(ctx context.Context, refresh bool) (*models.ProviderList, error) {
	path := "/api/v1/providers"
	if refresh {
		path += "?refresh=true"
	}

	var list models.ProviderList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListBuckets returns the template buckets the server has loaded
func (c *Client) ListBuckets(ctx context.Context) ([]Bucket, error) {
	var data struct {
		Buckets []Bucket `json:"buckets"`
		Total   int      `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/buckets", nil, &data); err != nil {
		return nil, err
	}
	return data.Buckets, nil
}

// GenerateIdeas submits a context and returns the generated result
func (c *Client) GenerateIdeas(ctx context.Context, req models.GenerateRequest) (*models.Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var result models.Result
	if err := c.do(ctx, http.MethodPost, "/api/v1/ideas", bytes.NewReader(body), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// do performs a request and decodes the response envelope into out
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *APIError       `json:"error"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		if resp.StatusCode >= 400 {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		}
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !envelope.Success {
		if envelope.Error == nil {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		}
		envelope.Error.Status = resp.StatusCode
		return envelope.Error
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
