package discovery

import (
	"sync"

	"github.com/terra-clan/ideaforge/internal/models"
)

// Hub fans provider snapshots out to subscribers
type Hub struct {
	mu     sync.Mutex
	subs   map[chan *models.ProviderList]struct{}
	latest *models.ProviderList
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		subs: make(map[chan *models.ProviderList]struct{}),
	}
}

// Subscribe registers a subscriber. The latest snapshot, if any, is
// delivered immediately. Call the returned func to unsubscribe.
func (h *Hub) Subscribe() (<-chan *models.ProviderList, func()) {
	ch := make(chan *models.ProviderList, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	if h.latest != nil {
		ch <- h.latest
	}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers a snapshot to every subscriber. A subscriber that has
// not consumed the previous snapshot gets the new one in its place.
// A snapshot fetched at the same time as the latest one is ignored.
func (h *Hub) Publish(list *models.ProviderList) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.latest != nil && h.latest.FetchedAt.Equal(list.FetchedAt) {
		return
	}
	h.latest = list
	for ch := range h.subs {
		select {
		case ch <- list:
			continue
		default:
		}
		// drop the stale snapshot
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- list:
		default:
		}
	}
}

// Latest returns the most recently published snapshot, or nil
func (h *Hub) Latest() *models.ProviderList {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// Subscribers returns the number of active subscribers
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
