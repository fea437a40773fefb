package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/ideaforge/internal/config"
	"github.com/terra-clan/ideaforge/internal/discovery"
	"github.com/terra-clan/ideaforge/internal/models"
	"github.com/terra-clan/ideaforge/internal/templates"
	"github.com/terra-clan/ideaforge/internal/web"
)

// ProviderLister answers provider snapshots
type ProviderLister interface {
	Providers(ctx context.Context, forceRefresh bool) (*models.ProviderList, error)
}

// IdeaGenerator turns a context into ideas
type IdeaGenerator interface {
	Generate(ctx context.Context, c models.Context, cfg models.LLMConfig) (*models.Result, error)
}

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	providers      ProviderLister
	generator      IdeaGenerator
	templateLoader *templates.Loader
	hub            *discovery.Hub
	limiter        *RateLimiter
	generateLimit  time.Duration
	readiness      map[string]func(context.Context) error
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	providers ProviderLister,
	generator IdeaGenerator,
	loader *templates.Loader,
	hub *discovery.Hub,
	limiter *RateLimiter,
	generateTimeout time.Duration,
) *Server {
	s := &Server{
		config:         cfg,
		providers:      providers,
		generator:      generator,
		templateLoader: loader,
		hub:            hub,
		limiter:        limiter,
		generateLimit:  generateTimeout,
		readiness:      make(map[string]func(context.Context) error),
	}
	s.setupRouter()
	return s
}

// AddReadinessCheck registers a dependency probed by /ready
func (s *Server) AddReadinessCheck(name string, check func(context.Context) error) {
	s.readiness[name] = check
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		// websocket connections outlive the request timeout
		r.Get("/providers/ws", s.handleProvidersWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(15 * time.Second))
			r.Get("/providers", s.handleListProviders)
			r.Get("/buckets", s.handleListBuckets)
		})

		// generation waits on the model, so it gets the generate timeout plus slack
		r.With(
			middleware.Timeout(s.generateLimit+5*time.Second),
			s.limiter.Limit,
		).Post("/ideas", s.handleGenerateIdeas)
	})

	r.Mount("/", web.Handler())

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
