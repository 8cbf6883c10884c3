// Package realtime pushes session-change notifications (sign-in, sign-out,
// token-refreshed) to connected clients so browser tabs and the CLI keep
// their session caches synchronized without polling.
package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a session state change.
type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventTokenRefreshed EventType = "token_refreshed"
)

// Event is a session-change notification scoped to one identity.
type Event struct {
	Type   EventType `json:"type"`
	UserID uuid.UUID `json:"userId"`
	At     time.Time `json:"at"`
}

type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan Event
	stop       chan struct{}
	done       chan struct{}
	stopped    bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan Event, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for _, conns := range h.clients {
				for client := range conns {
					client.Close()
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				if h.clients[client.userID] == nil {
					h.clients[client.userID] = make(map[*Client]bool)
				}
				h.clients[client.userID][client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.userID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					client.Close()
					if len(conns) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.events:
			h.mu.RLock()
			for client := range h.clients[event.UserID] {
				client.Send(event)
			}
			h.mu.RUnlock()
		}
	}
}

// Stop gracefully shuts down the hub and closes all connections.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.done
}

// Publish queues a session event for delivery to the identity's
// subscribers. Non-blocking: events are dropped if the hub is saturated,
// since the cache converges on the next authoritative fetch anyway.
func (h *Hub) Publish(event Event) {
	select {
	case h.events <- event:
	default:
	}
}

// SignedIn publishes a sign-in event for the identity.
func (h *Hub) SignedIn(userID uuid.UUID) {
	h.Publish(Event{Type: EventSignedIn, UserID: userID, At: time.Now()})
}

// SignedOut publishes a sign-out event for the identity.
func (h *Hub) SignedOut(userID uuid.UUID) {
	h.Publish(Event{Type: EventSignedOut, UserID: userID, At: time.Now()})
}

// TokenRefreshed publishes a token-rotation event for the identity. It
// satisfies the session negotiator's RefreshListener.
func (h *Hub) TokenRefreshed(userID uuid.UUID) {
	h.Publish(Event{Type: EventTokenRefreshed, UserID: userID, At: time.Now()})
}
