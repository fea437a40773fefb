package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/terra-clan/ideaforge/internal/models"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templateLoader.Len() == 0 {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "no idea templates loaded")
		return
	}

	for name, check := range s.readiness {
		if err := check(r.Context()); err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			respondError(w, http.StatusServiceUnavailable, "not_ready", name+" is not ready")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Provider handlers

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	refresh := false
	if v := r.URL.Query().Get("refresh"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			refresh = b
		}
	}

	list, err := s.providers.Providers(r.Context(), refresh)
	if err != nil {
		slog.Error("failed to list providers", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list providers")
		return
	}

	respondJSON(w, http.StatusOK, list)
}

// Template handlers

func (s *Server) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	buckets := s.templateLoader.List()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"buckets": buckets,
		"total":   len(buckets),
	})
}

// Idea handlers

func (s *Server) handleGenerateIdeas(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := req.Context.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	result, err := s.generator.Generate(r.Context(), req.Context, req.Config)
	if err != nil {
		slog.Error("failed to generate ideas", "error", err, "bucket", req.Context.Bucket())
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to generate ideas")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
