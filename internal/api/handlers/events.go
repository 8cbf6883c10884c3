package handlers

import (
	"log"
	"net/http"

	"github.com/fitstudio/fitstudio-server/internal/realtime"
	"github.com/fitstudio/fitstudio-server/internal/session"
	ws "github.com/gorilla/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// EventsHandler upgrades authenticated clients onto the session event
// stream so their local session caches stay in sync.
type EventsHandler struct {
	hub      *realtime.Hub
	provider session.IdentityProvider
}

func NewEventsHandler(hub *realtime.Hub, provider session.IdentityProvider) *EventsHandler {
	return &EventsHandler{hub: hub, provider: provider}
}

func (h *EventsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	// Browser websocket clients cannot set headers; accept the token from
	// the session cookie or a query parameter.
	accessToken := session.CookieValue(r, session.AccessTokenCookie)
	if accessToken == "" {
		accessToken = r.URL.Query().Get("token")
	}
	if accessToken == "" {
		respondError(w, http.StatusUnauthorized, "Token required")
		return
	}

	user, err := h.provider.GetUser(r.Context(), accessToken)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR [events.Handle] upgrade failed: %v", err)
		return
	}

	client := realtime.NewClient(h.hub, conn, user.ID)
	client.Register()

	go client.WritePump()
	go client.ReadPump()
}
