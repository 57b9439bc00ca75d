// Package ws pushes favorite changes to the other open dashboards of the
// same user.
package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"jobdash/internal/session"
)

// SessionResolver finds the session a socket request belongs to.
type SessionResolver interface {
	Resolve(r *http.Request) (session.State, error)
}

// Handler upgrades /ws requests. It runs on its own net/http listener since
// fiber's fasthttp connections cannot be hijacked by gorilla.
type Handler struct {
	hub      *Hub
	sessions SessionResolver
	logger   *log.Logger
}

func NewHandler(hub *Hub, sessions SessionResolver, logger *log.Logger) *Handler {
	return &Handler{hub: hub, sessions: sessions, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.hub == nil {
		http.Error(w, "websocket unavailable", http.StatusServiceUnavailable)
		return
	}

	st, err := h.sessions.Resolve(r)
	if err != nil || st.UserID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("[WS] upgrade error error=%v", err)
		}
		return
	}

	client := NewClient(h.hub, conn, st.UserID)
	h.hub.Register(client)
	go client.WritePump()
	go client.ReadPump()
}

// Mux serves the handler under /ws.
func Mux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	return mux
}
