package discovery

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPollInterval is how often the poller asks for providers
const DefaultPollInterval = 30 * time.Second

// Poller periodically refreshes the provider list. Ticks inside the cache
// TTL are answered from the cache without probing.
type Poller struct {
	service  *Service
	hub      *Hub
	interval time.Duration
}

// NewPoller creates a new poller
func NewPoller(service *Service, hub *Hub, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &Poller{
		service:  service,
		hub:      hub,
		interval: interval,
	}
}

// Start begins polling in a goroutine
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

// run is the main loop for the poller
func (p *Poller) run(ctx context.Context) {
	slog.Info("provider poller started", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Poll immediately on start
	p.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("provider poller stopped")
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll fetches providers and publishes the snapshot
func (p *Poller) poll(ctx context.Context) {
	list, err := p.service.Providers(ctx, false)
	if err != nil {
		slog.Error("failed to poll providers", "error", err)
		return
	}

	if p.hub != nil {
		p.hub.Publish(list)
	}
}
