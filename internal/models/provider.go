package models

import "time"

// ProviderType identifies a local LLM server flavour
type ProviderType string

const (
	ProviderOllama   ProviderType = "ollama"
	ProviderLMStudio ProviderType = "lmstudio"
)

// Model is an inference target exposed by a provider
type Model struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Size         string `json:"size,omitempty"`
	Quantization string `json:"quantization,omitempty"`
	Modified     string `json:"modified,omitempty"`
}

// Provider is the result of probing one local endpoint
type Provider struct {
	Type     ProviderType `json:"type"`
	Name     string       `json:"name"`
	BaseURL  string       `json:"base_url"`
	IsOnline bool         `json:"is_online"`
	Models   []Model      `json:"models"`
}

// Generation parameter bounds, matching the form sliders
const (
	DefaultTemperature = 0.7
	MinTemperature     = 0.0
	MaxTemperature     = 2.0
	DefaultMaxTokens   = 2000
	MinMaxTokens       = 500
	MaxMaxTokens       = 4000
)

// LLMConfig is the selection and parameters sent with a generation call
type LLMConfig struct {
	Provider    ProviderType `json:"provider,omitempty"`
	Model       string       `json:"model,omitempty"`
	Temperature *float64     `json:"temperature,omitempty"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
}

// HasSelection reports whether both provider and model are chosen
func (c LLMConfig) HasSelection() bool {
	return c.Provider != "" && c.Model != ""
}

// TemperatureOrDefault returns the temperature, or the default when unset or out of range
func (c LLMConfig) TemperatureOrDefault() float64 {
	if c.Temperature == nil || *c.Temperature < MinTemperature || *c.Temperature > MaxTemperature {
		return DefaultTemperature
	}
	return *c.Temperature
}

// MaxTokensOrDefault returns max tokens, or the default when unset or out of range
func (c LLMConfig) MaxTokensOrDefault() int {
	if c.MaxTokens < MinMaxTokens || c.MaxTokens > MaxMaxTokens {
		return DefaultMaxTokens
	}
	return c.MaxTokens
}

// Normalize returns a copy with out-of-range parameters replaced by defaults
func (c LLMConfig) Normalize() LLMConfig {
	t := c.TemperatureOrDefault()
	c.Temperature = &t
	c.MaxTokens = c.MaxTokensOrDefault()
	return c
}

// Selection is the provider/model a client should pick when it has none
type Selection struct {
	Provider ProviderType `json:"provider"`
	Model    string       `json:"model"`
}

// ProviderList is a provider snapshot as returned by the API
type ProviderList struct {
	Providers []Provider `json:"providers"`
	Selection *Selection `json:"selection,omitempty"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// DefaultSelection picks the first online provider that has models
func DefaultSelection(providers []Provider) *Selection {
	for _, p := range providers {
		if p.IsOnline && len(p.Models) > 0 {
			return &Selection{Provider: p.Type, Model: p.Models[0].ID}
		}
	}
	return nil
}
