package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// Handler upgrades a connection and pumps a hub's Sample ticks to it until
// the client disconnects, mirroring the teacher's WSHandler.ServeHTTP shape
// (internal/handler/ws/delivery.go) almost exactly, minus the identity
// resolution this read-only telemetry feed has no need for.
type Handler struct {
	logger   *slog.Logger
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler constructs a ws.Handler bound to hub.
func NewHandler(logger *slog.Logger, hub *Hub) *Handler {
	return &Handler{
		logger: logger,
		hub:    hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id, recv := h.hub.Register()
	defer h.hub.Unregister(id)

	h.logger.Info("ws opened", "client_id", id)

	for {
		select {
		case <-r.Context().Done():
			return
		case s, ok := <-recv:
			if !ok {
				return
			}
			data, err := json.Marshal(s)
			if err != nil {
				h.logger.Error("failed to marshal sample", "error", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Warn("ws send failed", "error", err)
				return
			}
		}
	}
}
