package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/terra-clan/ideaforge/internal/models"
)

// OllamaProvider implements Provider for an Ollama server
type OllamaProvider struct {
	BaseProvider
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(baseURL string, opts ...Option) *OllamaProvider {
	return &OllamaProvider{
		BaseProvider: newBaseProvider(models.ProviderOllama, "Ollama", baseURL, opts),
	}
}

type ollamaTagsResponse struct {
	Models []struct {
		Name       string `json:"name"`
		Size       int64  `json:"size"`
		ModifiedAt string `json:"modified_at"`
	} `json:"models"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Probe lists local models via /api/tags
func (p *OllamaProvider) Probe(ctx context.Context) *models.Provider {
	body, err := p.get(ctx, "/api/tags")
	if err != nil {
		slog.Debug("ollama probe failed", "base_url", p.baseURL, "error", err)
		return p.offline()
	}

	var tags ollamaTagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		slog.Debug("ollama probe returned invalid JSON", "base_url", p.baseURL, "error", err)
		return p.offline()
	}

	list := make([]models.Model, 0, len(tags.Models))
	for _, m := range tags.Models {
		name, quant, found := strings.Cut(m.Name, ":")
		if !found {
			quant = "latest"
		}
		list = append(list, models.Model{
			ID:           m.Name,
			Name:         name,
			Size:         FormatBytes(m.Size),
			Quantization: quant,
			Modified:     m.ModifiedAt,
		})
	}

	return p.online(list)
}

// Generate calls /api/generate without streaming
func (p *OllamaProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	prompt := req.Prompt
	if req.SystemPrompt != "" {
		prompt = req.SystemPrompt + "\n\n" + req.Prompt
	}

	payload, err := json.Marshal(ollamaGenerateRequest{
		Model:  req.Model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := p.post(ctx, "/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	var resp ollamaGenerateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return resp.Response, nil
}
