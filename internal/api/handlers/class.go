package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/fitstudio/fitstudio-server/internal/api/middleware"
	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/repository"
	"github.com/fitstudio/fitstudio-server/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ClassHandler struct {
	classService *service.ClassService
}

func NewClassHandler(classService *service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

type CreateClassRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	InstructorID    *uuid.UUID `json:"instructorId"`
	StartsAt        time.Time  `json:"startsAt"`
	DurationMinutes int        `json:"durationMinutes"`
	Capacity        int        `json:"capacity"`
	VideoAssetID    *uuid.UUID `json:"videoAssetId"`
}

type UpdateClassRequest struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Category        *string    `json:"category"`
	StartsAt        *time.Time `json:"startsAt"`
	DurationMinutes *int       `json:"durationMinutes"`
	Capacity        *int       `json:"capacity"`
	VideoAssetID    *uuid.UUID `json:"videoAssetId"`
}

type RosterEntryResponse struct {
	User       *domain.Profile `json:"user"`
	EnrolledAt time.Time       `json:"enrolledAt"`
}

func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetProfile(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}

	input := service.CreateClassInput{
		Title:           req.Title,
		Description:     req.Description,
		Category:        domain.ClassCategory(req.Category),
		StartsAt:        req.StartsAt,
		DurationMinutes: req.DurationMinutes,
		Capacity:        req.Capacity,
		VideoAssetID:    req.VideoAssetID,
	}
	if req.InstructorID != nil {
		input.InstructorID = *req.InstructorID
	}

	class, err := h.classService.Create(r.Context(), actor, input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCategory) || errors.Is(err, domain.ErrInvalidSchedule) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("ERROR [class.Create] failed to create class: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, class)
}

func (h *ClassHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.ClassFilter{}

	if category := r.URL.Query().Get("category"); category != "" {
		filter.Category = domain.ClassCategory(category)
	}
	if instructor := r.URL.Query().Get("instructor"); instructor != "" {
		id, err := uuid.Parse(instructor)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid instructor id")
			return
		}
		filter.InstructorID = id
	}
	if upcoming := r.URL.Query().Get("upcoming"); upcoming == "true" {
		filter.From = time.Now()
	}

	classes, err := h.classService.List(r.Context(), filter)
	if err != nil {
		log.Printf("ERROR [class.List] failed to list classes: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, classes)
}

func (h *ClassHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid class id")
		return
	}

	class, err := h.classService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrClassNotFound) {
			respondError(w, http.StatusNotFound, "Class not found")
			return
		}
		log.Printf("ERROR [class.Get] failed to get class: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, class)
}

func (h *ClassHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetProfile(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid class id")
		return
	}

	var req UpdateClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := service.UpdateClassInput{
		Title:           req.Title,
		Description:     req.Description,
		StartsAt:        req.StartsAt,
		DurationMinutes: req.DurationMinutes,
		Capacity:        req.Capacity,
		VideoAssetID:    req.VideoAssetID,
	}
	if req.Category != nil {
		category := domain.ClassCategory(*req.Category)
		input.Category = &category
	}

	class, err := h.classService.Update(r.Context(), actor, id, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrClassNotFound):
			respondError(w, http.StatusNotFound, "Class not found")
		case errors.Is(err, domain.ErrNotClassOwner):
			respondError(w, http.StatusForbidden, "Forbidden")
		case errors.Is(err, domain.ErrInvalidCategory), errors.Is(err, domain.ErrInvalidSchedule):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("ERROR [class.Update] failed to update class: %v", err)
			respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondJSON(w, http.StatusOK, class)
}

func (h *ClassHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetProfile(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid class id")
		return
	}

	if err := h.classService.Delete(r.Context(), actor, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrClassNotFound):
			respondError(w, http.StatusNotFound, "Class not found")
		case errors.Is(err, domain.ErrNotClassOwner):
			respondError(w, http.StatusForbidden, "Forbidden")
		default:
			log.Printf("ERROR [class.Delete] failed to delete class: %v", err)
			respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ClassHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetProfile(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid class id")
		return
	}

	enrollment, err := h.classService.Enroll(r.Context(), id, actor.ID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrClassNotFound):
			respondError(w, http.StatusNotFound, "Class not found")
		case errors.Is(err, domain.ErrClassFull):
			respondError(w, http.StatusConflict, "Class is full")
		case errors.Is(err, domain.ErrAlreadyEnrolled):
			respondError(w, http.StatusConflict, "Already enrolled")
		default:
			log.Printf("ERROR [class.Enroll] failed to enroll: %v", err)
			respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondJSON(w, http.StatusCreated, enrollment)
}

func (h *ClassHandler) Unenroll(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetProfile(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid class id")
		return
	}

	if err := h.classService.Unenroll(r.Context(), id, actor.ID); err != nil {
		switch {
		case errors.Is(err, domain.ErrClassNotFound):
			respondError(w, http.StatusNotFound, "Class not found")
		case errors.Is(err, domain.ErrNotEnrolled):
			respondError(w, http.StatusConflict, "Not enrolled")
		default:
			log.Printf("ERROR [class.Unenroll] failed to unenroll: %v", err)
			respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ClassHandler) Roster(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetProfile(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid class id")
		return
	}

	roster, err := h.classService.Roster(r.Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrClassNotFound):
			respondError(w, http.StatusNotFound, "Class not found")
		case errors.Is(err, domain.ErrNotClassOwner):
			respondError(w, http.StatusForbidden, "Forbidden")
		default:
			log.Printf("ERROR [class.Roster] failed to get roster: %v", err)
			respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	resp := make([]RosterEntryResponse, 0, len(roster))
	for _, entry := range roster {
		resp = append(resp, RosterEntryResponse{User: entry.Profile, EnrolledAt: entry.EnrolledAt})
	}
	respondJSON(w, http.StatusOK, resp)
}

// MyClasses lists classes the authenticated instructor teaches.
func (h *ClassHandler) MyClasses(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetProfile(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	classes, err := h.classService.ListByInstructor(r.Context(), actor.ID)
	if err != nil {
		log.Printf("ERROR [class.MyClasses] failed to list classes: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, classes)
}

// MyEnrollments lists the authenticated member's enrollments.
func (h *ClassHandler) MyEnrollments(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetProfile(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	enrollments, err := h.classService.Enrollments(r.Context(), actor.ID)
	if err != nil {
		log.Printf("ERROR [class.MyEnrollments] failed to list enrollments: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, enrollments)
}
