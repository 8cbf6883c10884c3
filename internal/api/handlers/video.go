package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/fitstudio/fitstudio-server/internal/api/middleware"
	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type VideoHandler struct {
	videoService *service.VideoService
}

func NewVideoHandler(videoService *service.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

type CreateUploadRequest struct {
	Title      string `json:"title"`
	CorsOrigin string `json:"corsOrigin"`
}

type UploadResponse struct {
	Asset     *domain.VideoAsset `json:"asset"`
	UploadURL string             `json:"uploadUrl"`
}

// CreateUpload requests a direct-upload slot from the video host.
func (h *VideoHandler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetProfile(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.CorsOrigin == "" {
		req.CorsOrigin = "*"
	}

	slot, err := h.videoService.CreateUpload(r.Context(), actor.ID, req.Title, req.CorsOrigin)
	if err != nil {
		log.Printf("ERROR [video.CreateUpload] failed to create upload: %v", err)
		respondError(w, http.StatusBadGateway, "Video host unavailable")
		return
	}

	respondJSON(w, http.StatusCreated, UploadResponse{Asset: slot.Asset, UploadURL: slot.UploadURL})
}

func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	assets, err := h.videoService.List(r.Context(), limit, offset)
	if err != nil {
		log.Printf("ERROR [video.List] failed to list assets: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, assets)
}

func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid video id")
		return
	}

	asset, err := h.videoService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			respondError(w, http.StatusNotFound, "Video not found")
			return
		}
		log.Printf("ERROR [video.Get] failed to get asset: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, asset)
}

func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid video id")
		return
	}

	if err := h.videoService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			respondError(w, http.StatusNotFound, "Video not found")
			return
		}
		log.Printf("ERROR [video.Delete] failed to delete asset: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
