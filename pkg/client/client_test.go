package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/ideaforge/internal/models"
)

func TestListProviders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/providers", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("refresh"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"providers":[{"type":"ollama","name":"Ollama","base_url":"http://localhost:11434","is_online":true,"models":[{"id":"llama3:8b","name":"llama3"}]}],"selection":{"provider":"ollama","model":"llama3:8b"},"fetched_at":"2026-01-02T03:04:05Z"}}`))
	}))
	defer srv.Close()

	list, err := NewClient(srv.URL+"/").ListProviders(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, list.Providers, 1)
	assert.True(t, list.Providers[0].IsOnline)
	require.NotNil(t, list.Selection)
	assert.Equal(t, "llama3:8b", list.Selection.Model)
}

func TestGenerateIdeas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req models.GenerateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "music", req.Context.Interests)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"id":"r1","understanding":"u","ideas":[{"id":"1","title":"T","description":"D","priority":"High","effort":"Low","impact":"High"}],"source":"template","bucket":"learn","generated_at":"2026-01-02T03:04:05Z"}}`))
	}))
	defer srv.Close()

	result, err := NewClient(srv.URL).GenerateIdeas(context.Background(), models.GenerateRequest{
		Context: models.Context{Interests: "music"},
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", result.ID)
	assert.Equal(t, models.SourceTemplate, result.Source)
	require.Len(t, result.Ideas, 1)
	assert.Equal(t, models.LevelHigh, result.Ideas[0].Priority)
}

func TestAPIErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":{"code":"validation_error","message":"skills is required"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GenerateIdeas(context.Background(), models.GenerateRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.Equal(t, "skills is required", apiErr.Message)
}

func TestNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Health(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 504")
}

func TestListBuckets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/buckets", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"buckets":[{"kind":"personal","name":"learn","ideas":6},{"kind":"team","name":"product","ideas":6}],"total":2}}`))
	}))
	defer srv.Close()

	buckets, err := NewClient(srv.URL).ListBuckets(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, models.KindTeam, buckets[1].Kind)
	assert.Equal(t, 6, buckets[0].Ideas)
}
