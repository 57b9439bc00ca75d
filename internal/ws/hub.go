package ws

import (
	"log"
	"sync"
)

type delivery struct {
	userID  string
	message []byte
}

// Hub fans events out to the sockets of one user. All membership changes
// go through Run.
type Hub struct {
	clients    map[string]map[*Client]bool
	deliver    chan delivery
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		deliver:    make(chan delivery, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.userID] = set
			}
			set[client] = true
			total := h.countLocked()
			h.mutex.Unlock()
			h.logf("[WS] connected user_id=%s total_clients=%d", client.userID, total)

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.removeLocked(client)
			total := h.countLocked()
			h.mutex.Unlock()
			h.logf("[WS] disconnected user_id=%s total_clients=%d", client.userID, total)

		case d := <-h.deliver:
			h.mutex.RLock()
			targets := make([]*Client, 0, len(h.clients[d.userID]))
			for c := range h.clients[d.userID] {
				targets = append(targets, c)
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- d.message:
				default:
					h.mutex.Lock()
					h.removeLocked(client)
					h.mutex.Unlock()
				}
			}
		}
	}
}

// Stop ends Run and closes every socket.
func (h *Hub) Stop() {
	if h == nil {
		return
	}
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Send queues message for every socket of userID. A full queue drops it.
func (h *Hub) Send(userID string, message []byte) {
	if h == nil || userID == "" {
		return
	}
	select {
	case h.deliver <- delivery{userID: userID, message: message}:
	default:
		h.logf("[WS] message dropped user_id=%s reason=buffer_full", userID)
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.countLocked()
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) removeLocked(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok || !set[client] {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, set := range h.clients {
		for c := range set {
			close(c.send)
		}
	}
	h.clients = make(map[string]map[*Client]bool)
}

func (h *Hub) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}
