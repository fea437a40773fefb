package llm

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/terra-clan/ideaforge/internal/models"
)

// Registry manages LLM providers
type Registry struct {
	mu        sync.RWMutex
	providers map[models.ProviderType]Provider
	order     []models.ProviderType
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[models.ProviderType]Provider),
	}
}

// Register adds a provider to the registry, replacing one of the same type
func (r *Registry) Register(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[provider.Type()]; !exists {
		r.order = append(r.order, provider.Type())
	}
	r.providers[provider.Type()] = provider
}

// Get retrieves a provider by type
func (r *Registry) Get(t models.ProviderType) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, t)
	}
	return p, nil
}

// List returns all registered providers in registration order
func (r *Registry) List() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Provider, 0, len(r.order))
	for _, t := range r.order {
		result = append(result, r.providers[t])
	}
	return result
}

// ProbeAll probes every provider in parallel and returns the results
// in registration order
func (r *Registry) ProbeAll(ctx context.Context) []models.Provider {
	providers := r.List()
	results := make([]models.Provider, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		g.Go(func() error {
			results[i] = *p.Probe(gctx)
			return nil
		})
	}
	// probes report failure as offline, never as an error
	_ = g.Wait()

	return results
}

// Generate routes a completion to the configured provider
func (r *Registry) Generate(ctx context.Context, cfg models.LLMConfig, prompt, systemPrompt string) (string, error) {
	if !cfg.HasSelection() {
		return "", ErrNoProviderConfigured
	}

	p, err := r.Get(cfg.Provider)
	if err != nil {
		return "", err
	}

	return p.Generate(ctx, GenerateRequest{
		Model:        cfg.Model,
		Prompt:       prompt,
		SystemPrompt: systemPrompt,
		Temperature:  cfg.TemperatureOrDefault(),
		MaxTokens:    cfg.MaxTokensOrDefault(),
	})
}
