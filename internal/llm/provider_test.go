package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/ideaforge/internal/models"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "", FormatBytes(0))
	assert.Equal(t, "4.1 GB", FormatBytes(4_400_000_000))
	assert.Equal(t, "1.0 GB", FormatBytes(1024*1024*1024))
	assert.Equal(t, "512 MB", FormatBytes(512*1024*1024))
}

func TestOllamaProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[
			{"name":"llama3:8b-q4_0","size":4661224676,"modified_at":"2025-01-02T03:04:05Z"},
			{"name":"mistral","size":0}
		]}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL + "/").Probe(context.Background())

	assert.True(t, p.IsOnline)
	assert.Equal(t, models.ProviderOllama, p.Type)
	assert.Equal(t, "Ollama", p.Name)
	assert.Equal(t, srv.URL, p.BaseURL)
	require.Len(t, p.Models, 2)

	assert.Equal(t, models.Model{
		ID:           "llama3:8b-q4_0",
		Name:         "llama3",
		Size:         "4.3 GB",
		Quantization: "8b-q4_0",
		Modified:     "2025-01-02T03:04:05Z",
	}, p.Models[0])
	assert.Equal(t, "mistral", p.Models[1].Name)
	assert.Equal(t, "latest", p.Models[1].Quantization)
	assert.Empty(t, p.Models[1].Size)
}

func TestLMStudioProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":"lmstudio-community/qwen2.5-7b-instruct"},{"id":"phi-3"}]}`))
	}))
	defer srv.Close()

	p := NewLMStudioProvider(srv.URL).Probe(context.Background())

	assert.True(t, p.IsOnline)
	require.Len(t, p.Models, 2)
	assert.Equal(t, "lmstudio-community/qwen2.5-7b-instruct", p.Models[0].ID)
	assert.Equal(t, "qwen2.5-7b-instruct", p.Models[0].Name)
	assert.Equal(t, "phi-3", p.Models[1].Name)
	assert.Empty(t, p.Models[1].Quantization)
}

func TestProbeOfflineCases(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-2xx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			for _, p := range []Provider{
				NewOllamaProvider(srv.URL, WithProbeTimeout(100*time.Millisecond)),
				NewLMStudioProvider(srv.URL, WithProbeTimeout(100*time.Millisecond)),
			} {
				got := p.Probe(context.Background())
				assert.False(t, got.IsOnline, p.Name())
				assert.NotNil(t, got.Models)
				assert.Empty(t, got.Models)
			}
		})
	}
}

func TestProbeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	got := NewOllamaProvider(url).Probe(context.Background())
	assert.False(t, got.IsOnline)
	assert.Empty(t, got.Models)
}

func TestOllamaGenerate(t *testing.T) {
	var received ollamaGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"response":"hello","done":true}`))
	}))
	defer srv.Close()

	out, err := NewOllamaProvider(srv.URL).Generate(context.Background(), GenerateRequest{
		Model:        "llama3",
		Prompt:       "user prompt",
		SystemPrompt: "system prompt",
		Temperature:  0.4,
		MaxTokens:    900,
	})
	require.NoError(t, err)

	assert.Equal(t, "hello", out)
	assert.Equal(t, "llama3", received.Model)
	assert.Equal(t, "system prompt\n\nuser prompt", received.Prompt)
	assert.False(t, received.Stream)
	assert.Equal(t, 0.4, received.Options.Temperature)
	assert.Equal(t, 900, received.Options.NumPredict)
}

func TestLMStudioGenerate(t *testing.T) {
	var received chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`))
	}))
	defer srv.Close()

	out, err := NewLMStudioProvider(srv.URL).Generate(context.Background(), GenerateRequest{
		Model:        "phi-3",
		Prompt:       "user prompt",
		SystemPrompt: "be brief",
		Temperature:  1.1,
		MaxTokens:    600,
	})
	require.NoError(t, err)

	assert.Equal(t, "hi there", out)
	require.Len(t, received.Messages, 2)
	assert.Equal(t, "system", received.Messages[0].Role)
	assert.Equal(t, "user", received.Messages[1].Role)
	assert.Equal(t, 600, received.MaxTokens)
	assert.Equal(t, 1.1, received.Temperature)
}

func TestLMStudioGenerateNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	out, err := NewLMStudioProvider(srv.URL).Generate(context.Background(), GenerateRequest{Model: "m", Prompt: "p"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGenerateSurfacesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model 'nope' not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL).Generate(context.Background(), GenerateRequest{Model: "nope", Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, "Ollama generation failed: model 'nope' not found", err.Error())

	_, err = NewLMStudioProvider(srv.URL).Generate(context.Background(), GenerateRequest{Model: "nope", Prompt: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LM Studio generation failed: model 'nope' not found")
}
