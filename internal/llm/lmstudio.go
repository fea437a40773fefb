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

// LMStudioProvider implements Provider for LM Studio's OpenAI-compatible server
type LMStudioProvider struct {
	BaseProvider
}

// NewLMStudioProvider creates a new LM Studio provider
func NewLMStudioProvider(baseURL string, opts ...Option) *LMStudioProvider {
	return &LMStudioProvider{
		BaseProvider: newBaseProvider(models.ProviderLMStudio, "LM Studio", baseURL, opts),
	}
}

type lmStudioModelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Probe lists loaded models via /v1/models
func (p *LMStudioProvider) Probe(ctx context.Context) *models.Provider {
	body, err := p.get(ctx, "/v1/models")
	if err != nil {
		slog.Debug("lmstudio probe failed", "base_url", p.baseURL, "error", err)
		return p.offline()
	}

	var resp lmStudioModelsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Debug("lmstudio probe returned invalid JSON", "base_url", p.baseURL, "error", err)
		return p.offline()
	}

	list := make([]models.Model, 0, len(resp.Data))
	for _, m := range resp.Data {
		name := m.ID
		if i := strings.LastIndex(m.ID, "/"); i >= 0 && i < len(m.ID)-1 {
			name = m.ID[i+1:]
		}
		list = append(list, models.Model{
			ID:   m.ID,
			Name: name,
		})
	}

	return p.online(list)
}

// Generate calls /v1/chat/completions
func (p *LMStudioProvider) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	payload, err := json.Marshal(chatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := p.post(ctx, "/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
