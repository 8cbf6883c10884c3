package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fitstudio/fitstudio-server/internal/api/middleware"
	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/service"
)

type ProfileHandler struct {
	accountService *service.AccountService
}

func NewProfileHandler(accountService *service.AccountService) *ProfileHandler {
	return &ProfileHandler{accountService: accountService}
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	ImageURL  *string `json:"imageUrl"`
}

// Get returns the authenticated caller's profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, ok := middleware.GetProfile(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// Update applies a partial edit to the caller's own profile metadata.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	profile, ok := middleware.GetProfile(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.accountService.UpdateProfile(r.Context(), profile.ID, service.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		log.Printf("ERROR [profile.Update] failed to update profile: %v", err)
		if errors.Is(err, domain.ErrProfileNotFound) {
			respondError(w, http.StatusNotFound, "Profile not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, updated)
}
