package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fitstudio/fitstudio-server/internal/service"
	"github.com/fitstudio/fitstudio-server/internal/videohost"
)

// Webhook bodies larger than this are rejected outright.
const maxWebhookBody = 1 << 20

// WebhookHandler receives asset-ready notifications from the video host.
type WebhookHandler struct {
	videoService *service.VideoService
	secret       string
}

func NewWebhookHandler(videoService *service.VideoService, secret string) *WebhookHandler {
	return &WebhookHandler{videoService: videoService, secret: secret}
}

// HandleVideoEvent verifies the HMAC signature over timestamp.body before
// trusting anything in the payload.
func (h *WebhookHandler) HandleVideoEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	signature := r.Header.Get("Mux-Signature")
	if err := videohost.VerifySignature(signature, body, h.secret, time.Now()); err != nil {
		log.Printf("ERROR [webhook.HandleVideoEvent] signature verification failed: %v", err)
		respondError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event videohost.Event
	if err := json.Unmarshal(body, &event); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	if err := h.videoService.ApplyWebhookEvent(r.Context(), &event, body); err != nil {
		log.Printf("ERROR [webhook.HandleVideoEvent] failed to apply event: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
