package testutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"
)

// StubWebhookSecret signs webhook payloads sent through SignWebhook.
const StubWebhookSecret = "test-webhook-secret"

type stubAsset struct {
	ID       string
	UploadID string
	Status   string
}

// VideoStub is an in-memory video host: it hands out direct upload slots
// and tracks the assets behind them.
type VideoStub struct {
	Server *httptest.Server

	mu      sync.Mutex
	seq     int
	uploads map[string]*stubAsset
	assets  map[string]*stubAsset
}

// NewVideoStub starts the stub server. It is cleaned up with the test.
func NewVideoStub(t *testing.T) *VideoStub {
	t.Helper()

	s := &VideoStub{
		uploads: make(map[string]*stubAsset),
		assets:  make(map[string]*stubAsset),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /uploads", s.handleCreateUpload)
	mux.HandleFunc("GET /assets/{id}", s.handleGetAsset)
	mux.HandleFunc("DELETE /assets/{id}", s.handleDeleteAsset)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Server.Close)

	return s
}

// URL returns the stub's base URL.
func (s *VideoStub) URL() string {
	return s.Server.URL
}

// LastUploadID returns the provider id of the most recently created upload.
func (s *VideoStub) LastUploadID(t *testing.T) string {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == 0 {
		t.Fatal("no uploads created")
	}
	return fmt.Sprintf("upload-%d", s.seq)
}

// AssetDeleted reports whether an asset id has been removed.
func (s *VideoStub) AssetDeleted(assetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.assets[assetID]
	return !exists
}

func (s *VideoStub) handleCreateUpload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.seq++
	asset := &stubAsset{
		ID:       fmt.Sprintf("asset-%d", s.seq),
		UploadID: fmt.Sprintf("upload-%d", s.seq),
		Status:   "waiting",
	}
	s.uploads[asset.UploadID] = asset
	s.assets[asset.ID] = asset
	s.mu.Unlock()

	writeStubJSON(w, http.StatusCreated, map[string]interface{}{
		"data": map[string]string{
			"id":       asset.UploadID,
			"url":      s.Server.URL + "/put/" + asset.UploadID,
			"asset_id": asset.ID,
			"status":   "waiting",
		},
	})
}

func (s *VideoStub) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	asset, ok := s.assets[r.PathValue("id")]
	s.mu.Unlock()

	if !ok {
		writeStubJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	writeStubJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"id":     asset.ID,
			"status": asset.Status,
		},
	})
}

func (s *VideoStub) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	asset, ok := s.assets[r.PathValue("id")]
	if ok {
		delete(s.assets, asset.ID)
		delete(s.uploads, asset.UploadID)
	}
	s.mu.Unlock()

	if !ok {
		writeStubJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SignWebhook produces the signature header for a webhook body, in the
// provider's "t=<unix>,v1=<hex>" format.
func SignWebhook(body []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)

	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// WebhookEventBody builds the JSON body for an asset lifecycle event.
func WebhookEventBody(t *testing.T, eventType, assetID, uploadID, playbackID string) []byte {
	t.Helper()

	event := map[string]interface{}{
		"type": eventType,
		"data": map[string]interface{}{
			"id":        assetID,
			"upload_id": uploadID,
			"status":    "ready",
			"playback_ids": []map[string]string{
				{"id": playbackID},
			},
		},
	}
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal webhook event: %v", err)
	}
	return data
}
