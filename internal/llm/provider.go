package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/terra-clan/ideaforge/internal/models"
)

// Common errors
var (
	ErrNoProviderConfigured = errors.New("no LLM provider configured")
	ErrUnknownProvider      = errors.New("unknown provider")
)

// DefaultProbeTimeout bounds a single model-listing call
const DefaultProbeTimeout = 3 * time.Second

// GenerateRequest carries a single completion call
type GenerateRequest struct {
	Model        string
	Prompt       string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

// Provider defines a local LLM endpoint
type Provider interface {
	// Type returns the provider type
	Type() models.ProviderType

	// Name returns the display name
	Name() string

	// BaseURL returns the endpoint root
	BaseURL() string

	// Probe lists available models. It never fails: an unreachable
	// endpoint is reported as offline with no models.
	Probe(ctx context.Context) *models.Provider

	// Generate runs a non-streaming completion
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Option configures a provider
type Option func(*BaseProvider)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(p *BaseProvider) {
		p.httpClient = client
	}
}

// WithProbeTimeout overrides the probe timeout
func WithProbeTimeout(timeout time.Duration) Option {
	return func(p *BaseProvider) {
		if timeout > 0 {
			p.probeTimeout = timeout
		}
	}
}

// BaseProvider provides common functionality for providers
type BaseProvider struct {
	providerType models.ProviderType
	name         string
	baseURL      string
	httpClient   *http.Client
	probeTimeout time.Duration
}

func newBaseProvider(t models.ProviderType, name, baseURL string, opts []Option) BaseProvider {
	p := BaseProvider{
		providerType: t,
		name:         name,
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{},
		probeTimeout: DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Type returns the provider type
func (p *BaseProvider) Type() models.ProviderType {
	return p.providerType
}

// Name returns the display name
func (p *BaseProvider) Name() string {
	return p.name
}

// BaseURL returns the endpoint root
func (p *BaseProvider) BaseURL() string {
	return p.baseURL
}

func (p *BaseProvider) offline() *models.Provider {
	return &models.Provider{
		Type:     p.providerType,
		Name:     p.name,
		BaseURL:  p.baseURL,
		IsOnline: false,
		Models:   []models.Model{},
	}
}

func (p *BaseProvider) online(list []models.Model) *models.Provider {
	if list == nil {
		list = []models.Model{}
	}
	return &models.Provider{
		Type:     p.providerType,
		Name:     p.name,
		BaseURL:  p.baseURL,
		IsOnline: true,
		Models:   list,
	}
}

// get performs a GET bounded by the probe timeout and returns the body of a 2xx response
func (p *BaseProvider) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s not responding: status %d", p.name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// post sends a JSON body and returns the body of a 2xx response.
// Other statuses surface the response text in the error.
func (p *BaseProvider) post(ctx context.Context, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s generation failed: %w", p.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s generation failed: %s", p.name, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

// FormatBytes renders a model size the way the sidebar shows it
func FormatBytes(bytes int64) string {
	if bytes <= 0 {
		return ""
	}
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb >= 1 {
		return fmt.Sprintf("%.1f GB", gb)
	}
	mb := float64(bytes) / (1024 * 1024)
	return fmt.Sprintf("%.0f MB", mb)
}
