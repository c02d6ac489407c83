// Package server exposes a read-only websocket feed of turn events for
// spectators. The feed is strictly one-way: clients connect and receive one
// JSON frame per completed turn; nothing a spectator sends can touch game
// state.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/espoir/limitedjanken/internal/game"
)

const writeTimeout = 5 * time.Second

// SpectatorHub accepts websocket spectators and broadcasts turn events.
type SpectatorHub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewSpectatorHub creates an empty hub.
func NewSpectatorHub(logger *zap.Logger) *SpectatorHub {
	return &SpectatorHub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Serve runs the spectator HTTP server until ctx is cancelled.
func (h *SpectatorHub) Serve(ctx context.Context, address string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", h.handleWatch)

	srv := &http.Server{Addr: address, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	h.logger.Info("spectator feed listening", zap.String("address", address))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (h *SpectatorHub) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("spectator upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("spectator connected",
		zap.String("remote", conn.RemoteAddr().String()),
		zap.Int("spectators", count))

	// Drain (and ignore) inbound frames so pings and closes are processed.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *SpectatorHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}

// Broadcast sends a turn event to every connected spectator. Slow or dead
// clients are dropped rather than blocking the game loop.
func (h *SpectatorHub) Broadcast(event game.TurnEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshal turn event", zap.Error(err))
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warn("dropping spectator", zap.Error(err))
			h.drop(c)
		}
	}
}

// Close disconnects every spectator.
func (h *SpectatorHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
}
