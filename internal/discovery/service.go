package discovery

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/terra-clan/ideaforge/internal/cache"
	"github.com/terra-clan/ideaforge/internal/models"
)

// Prober lists every known provider
type Prober interface {
	ProbeAll(ctx context.Context) []models.Provider
}

// Service answers provider lists from the cache, probing when it is stale
type Service struct {
	prober Prober
	store  cache.Store
	ttl    time.Duration
	now    func() time.Time
	group  singleflight.Group
	hub    *Hub
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithHub publishes every fresh probe result to hub
func WithHub(hub *Hub) Option {
	return func(s *Service) {
		s.hub = hub
	}
}

// NewService creates a discovery service
func NewService(prober Prober, store cache.Store, ttl time.Duration, opts ...Option) *Service {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	s := &Service{
		prober: prober,
		store:  store,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Providers returns the provider list. Unless forceRefresh is set, a cached
// snapshot younger than the TTL is returned as is.
func (s *Service) Providers(ctx context.Context, forceRefresh bool) (*models.ProviderList, error) {
	if !forceRefresh {
		if entry := s.cached(ctx); entry != nil {
			return toList(entry), nil
		}
	}

	// shared and cached, so detached from the caller that started it
	refreshCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do("refresh", func() (interface{}, error) {
		return s.refresh(refreshCtx), nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("provider refresh shared with concurrent caller")
	}
	return toList(v.(*cache.Entry)), nil
}

// cached returns a fresh cache entry, clearing a stale one
func (s *Service) cached(ctx context.Context) *cache.Entry {
	entry, err := s.store.Load(ctx)
	if err != nil {
		slog.Warn("failed to read provider cache", "error", err)
		return nil
	}
	if entry == nil {
		return nil
	}
	if entry.IsFresh(s.now(), s.ttl) {
		return entry
	}

	slog.Debug("provider cache expired", "cached_at", entry.Timestamp)
	if err := s.store.Clear(ctx); err != nil {
		slog.Warn("failed to clear provider cache", "error", err)
	}
	return nil
}

func (s *Service) refresh(ctx context.Context) *cache.Entry {
	providers := s.prober.ProbeAll(ctx)
	entry := &cache.Entry{
		Timestamp: s.now(),
		Providers: providers,
	}

	if err := s.store.Save(ctx, entry); err != nil {
		slog.Warn("failed to cache providers", "error", err)
	}

	online := 0
	for _, p := range providers {
		if p.IsOnline {
			online++
		}
	}
	slog.Info("providers refreshed", "online", online, "total", len(providers))

	if s.hub != nil {
		s.hub.Publish(toList(entry))
	}
	return entry
}

func toList(entry *cache.Entry) *models.ProviderList {
	return &models.ProviderList{
		Providers: entry.Providers,
		Selection: models.DefaultSelection(entry.Providers),
		FetchedAt: entry.Timestamp,
	}
}
