package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/ideaforge/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const wsWriteTimeout = 10 * time.Second

// ProvidersMessage is exchanged over the providers websocket
type ProvidersMessage struct {
	Type  string               `json:"type"`
	Data  *models.ProviderList `json:"data,omitempty"`
	Error string               `json:"error,omitempty"`
}

func (s *Server) handleProvidersWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	snapshots, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	slog.Info("providers websocket connected", "remote_addr", r.RemoteAddr, "subscribers", s.hub.Subscribers())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var writeMu sync.Mutex
	send := func(msg ProvidersMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return s.sendProvidersMessage(conn, msg)
	}

	// the subscription already carries the latest snapshot once the poller has published
	if s.hub.Latest() == nil {
		if list, err := s.providers.Providers(ctx, false); err == nil {
			if err := send(ProvidersMessage{Type: "providers", Data: list}); err != nil {
				return
			}
		}
	}

	var wg sync.WaitGroup

	// Hub -> WebSocket
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case list, ok := <-snapshots:
				if !ok {
					return
				}
				if err := send(ProvidersMessage{Type: "providers", Data: list}); err != nil {
					return
				}
			}
		}
	}()

	// WebSocket -> refresh requests
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("websocket read error", "error", err)
				}
				return
			}

			var msg ProvidersMessage
			if err := json.Unmarshal(message, &msg); err != nil {
				slog.Debug("invalid message format", "error", err)
				continue
			}

			if msg.Type != "refresh" {
				continue
			}

			list, err := s.providers.Providers(ctx, true)
			if err != nil {
				slog.Error("failed to refresh providers", "error", err)
				if err := send(ProvidersMessage{Type: "error", Error: "failed to refresh providers"}); err != nil {
					return
				}
				continue
			}
			if err := send(ProvidersMessage{Type: "providers", Data: list}); err != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	// unblock ReadMessage
	conn.Close()
	wg.Wait()
	slog.Info("providers websocket disconnected", "remote_addr", r.RemoteAddr)
}

func (s *Server) sendProvidersMessage(conn *websocket.Conn, msg ProvidersMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal providers message", "error", err)
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send providers message", "error", err)
		return err
	}
	return nil
}
