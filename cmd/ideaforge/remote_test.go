package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/ideaforge/internal/models"
)

func TestPrintProviders(t *testing.T) {
	var buf bytes.Buffer
	printProviders(&buf, &models.ProviderList{
		Providers: []models.Provider{
			{Name: "Ollama", BaseURL: "http://localhost:11434", IsOnline: true, Models: []models.Model{{ID: "llama3:8b", Quantization: "8b", Size: "4.7 GB"}}},
			{Name: "LM Studio", BaseURL: "http://localhost:1234"},
		},
		Selection: &models.Selection{Provider: models.ProviderOllama, Model: "llama3:8b"},
		FetchedAt: time.Now(),
	})

	out := buf.String()
	assert.Contains(t, out, "Ollama (http://localhost:11434) online")
	assert.Contains(t, out, "  - llama3:8b 8b 4.7 GB")
	assert.Contains(t, out, "LM Studio (http://localhost:1234) offline")
	assert.Contains(t, out, "suggested: ollama / llama3:8b")
}

func TestGenerateCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/ideas", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"id":"r1","understanding":"You want to learn.","ideas":[{"id":"1","title":"Build a synth","description":"Make noise.","priority":"High","effort":"Low","impact":"High"}],"source":"template","bucket":"learn","generated_at":"2026-01-02T03:04:05Z"}}`))
	}))
	defer srv.Close()

	serverURL = srv.URL
	cmd := newGenerateCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--interests", "music", "--skills", "Go", "--constraints", "none"})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "You want to learn.")
	assert.Contains(t, out, "1. Build a synth")
	assert.Contains(t, out, "priority High, effort Low, impact High")
	assert.Contains(t, out, "source: template")
}

func TestGenerateCommandWarnsOnFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"id":"r2","understanding":"u","ideas":[],"source":"template","bucket":"learn","warning":"LLM generation failed: timeout. Using template fallback.","generated_at":"2026-01-02T03:04:05Z"}}`))
	}))
	defer srv.Close()

	serverURL = srv.URL
	cmd := newGenerateCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--interests", "music", "--skills", "Go", "--constraints", "none", "--provider", "ollama", "--model", "llama3"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "warning: LLM generation failed: timeout. Using template fallback.\n", errOut.String())
	assert.NotContains(t, out.String(), "warning")
}
