package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/identity"
	"github.com/fitstudio/fitstudio-server/internal/realtime"
	"github.com/fitstudio/fitstudio-server/internal/service"
	"github.com/fitstudio/fitstudio-server/internal/session"
)

type AuthHandler struct {
	identityClient *identity.Client
	accountService *service.AccountService
	negotiator     *session.Negotiator
	profiles       session.ProfileStore
	cookies        *session.CookieWriter
	hub            *realtime.Hub
}

func NewAuthHandler(identityClient *identity.Client, accountService *service.AccountService, negotiator *session.Negotiator, profiles session.ProfileStore, cookies *session.CookieWriter, hub *realtime.Hub) *AuthHandler {
	return &AuthHandler{
		identityClient: identityClient,
		accountService: accountService,
		negotiator:     negotiator,
		profiles:       profiles,
		cookies:        cookies,
		hub:            hub,
	}
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type SessionResponse struct {
	Status      string          `json:"status"`
	User        *domain.Profile `json:"user"`
	AccessToken string          `json:"access_token,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	minted, err := h.identityClient.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Printf("ERROR [auth.Login] sign in failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	profile, err := h.profiles.GetByID(r.Context(), minted.User.ID)
	if err != nil {
		log.Printf("ERROR [auth.Login] profile lookup failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to load user profile.")
		return
	}
	profile.Email = minted.User.Email

	h.cookies.WritePair(w, minted.AccessToken, minted.RefreshToken, req.RememberMe)
	h.hub.SignedIn(profile.ID)

	respondJSON(w, http.StatusOK, SessionResponse{
		Status:      "ok",
		User:        profile,
		AccessToken: minted.AccessToken,
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	profile, minted, err := h.accountService.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      domain.RoleUser,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			respondError(w, http.StatusConflict, "Email already registered")
			return
		}
		log.Printf("ERROR [auth.Register] registration failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	profile.Email = minted.User.Email

	h.cookies.WritePair(w, minted.AccessToken, minted.RefreshToken, false)
	h.hub.SignedIn(profile.ID)

	respondJSON(w, http.StatusOK, SessionResponse{
		Status:      "ok",
		User:        profile,
		AccessToken: minted.AccessToken,
	})
}

// Logout clears all four session cookies regardless of their prior
// presence, and revokes the provider session when one can be identified.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	accessToken := session.CookieValue(r, session.AccessTokenCookie)
	if accessToken != "" {
		if user, err := h.identityClient.GetUser(r.Context(), accessToken); err == nil {
			if err := h.identityClient.SignOut(r.Context(), accessToken); err != nil {
				log.Printf("ERROR [auth.Logout] sign out failed: %v", err)
			}
			h.hub.SignedOut(user.ID)
		}
	}

	h.cookies.Clear(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Session resolves the caller's cookies into a profile, refreshing the
// access token from the refresh token when needed.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	profile, err := h.negotiator.Resolve(r.Context(), w, r)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotAuthenticated):
			respondError(w, http.StatusUnauthorized, "Not authenticated")
		case errors.Is(err, domain.ErrSessionExpired):
			respondError(w, http.StatusUnauthorized, "Session expired")
		case errors.Is(err, domain.ErrInvalidToken):
			respondError(w, http.StatusUnauthorized, "Invalid token")
		case errors.Is(err, domain.ErrProfileLoadFailed):
			log.Printf("ERROR [auth.Session] profile load failed: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to load user profile.")
		default:
			log.Printf("ERROR [auth.Session] resolution failed: %v", err)
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, SessionResponse{Status: "ok", User: profile})
}
