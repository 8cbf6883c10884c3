package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// StubServiceKey is the service key the identity stub accepts for admin calls.
const StubServiceKey = "test-service-key"

var stubSigningKey = []byte("test-identity-signing-key")

type stubUser struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
}

// IdentityStub is an in-memory credential store exposing the slice of the
// provider API the application uses: password and refresh grants, token
// validation, sign out, and admin user management. Tokens are real HS256
// JWTs carrying sub/email/role claims so client-side claim decoding sees
// the same shape production tokens have.
type IdentityStub struct {
	Server *httptest.Server

	mu            sync.Mutex
	usersByEmail  map[string]*stubUser
	usersByID     map[uuid.UUID]*stubUser
	refreshTokens map[string]uuid.UUID
	revokedAccess map[string]bool
	accessTTL     time.Duration
}

// NewIdentityStub starts the stub server. It is cleaned up with the test.
func NewIdentityStub(t *testing.T) *IdentityStub {
	t.Helper()

	s := &IdentityStub{
		usersByEmail:  make(map[string]*stubUser),
		usersByID:     make(map[uuid.UUID]*stubUser),
		refreshTokens: make(map[string]uuid.UUID),
		revokedAccess: make(map[string]bool),
		accessTTL:     time.Hour,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", s.handleToken)
	mux.HandleFunc("GET /user", s.handleGetUser)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("POST /admin/users", s.handleAdminCreate)
	mux.HandleFunc("DELETE /admin/users/{id}", s.handleAdminDelete)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Server.Close)

	return s
}

// URL returns the stub's base URL.
func (s *IdentityStub) URL() string {
	return s.Server.URL
}

// AddUser registers a user directly, bypassing the admin endpoint, and
// returns its identity id.
func (s *IdentityStub) AddUser(t *testing.T, email, password, role string) uuid.UUID {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := &stubUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	s.usersByEmail[email] = user
	s.usersByID[user.ID] = user
	return user.ID
}

// MintAccessToken issues a token for a user outside the password grant, with
// an arbitrary lifetime. Negative lifetimes produce an already-expired token.
func (s *IdentityStub) MintAccessToken(t *testing.T, userID uuid.UUID, ttl time.Duration) string {
	t.Helper()

	s.mu.Lock()
	user, ok := s.usersByID[userID]
	s.mu.Unlock()
	if !ok {
		t.Fatalf("unknown stub user %s", userID)
	}

	return s.signToken(t, user, ttl)
}

// RevokeAccessToken makes the stub reject a token on /user, as the provider
// does after a server-side sign out.
func (s *IdentityStub) RevokeAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokedAccess[token] = true
}

// RevokeRefreshToken invalidates a refresh token so the next refresh grant
// is rejected.
func (s *IdentityStub) RevokeRefreshToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refreshTokens, token)
}

func (s *IdentityStub) signToken(t *testing.T, user *stubUser, ttl time.Duration) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(stubSigningKey)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func (s *IdentityStub) issueSession(user *stubUser) map[string]interface{} {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(s.accessTTL).Unix(),
	}
	access, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(stubSigningKey)
	refresh := uuid.New().String()
	s.refreshTokens[refresh] = user.ID

	return map[string]interface{}{
		"access_token":  access,
		"refresh_token": refresh,
		"expires_in":    int(s.accessTTL.Seconds()),
		"user": map[string]string{
			"id":    user.ID.String(),
			"email": user.Email,
		},
	}
}

func (s *IdentityStub) handleToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email        string `json:"email"`
		Password     string `json:"password"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.URL.Query().Get("grant_type") {
	case "password":
		user, ok := s.usersByEmail[body.Email]
		if !ok || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)) != nil {
			writeStubJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
			return
		}
		writeStubJSON(w, http.StatusOK, s.issueSession(user))
	case "refresh_token":
		userID, ok := s.refreshTokens[body.RefreshToken]
		if !ok {
			writeStubJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
			return
		}
		// Refresh tokens are single use.
		delete(s.refreshTokens, body.RefreshToken)
		writeStubJSON(w, http.StatusOK, s.issueSession(s.usersByID[userID]))
	default:
		writeStubJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
	}
}

func (s *IdentityStub) handleGetUser(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)

	s.mu.Lock()
	revoked := s.revokedAccess[token]
	s.mu.Unlock()
	if revoked {
		writeStubJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		return
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return stubSigningKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		writeStubJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		return
	}

	claims := parsed.Claims.(jwt.MapClaims)
	writeStubJSON(w, http.StatusOK, map[string]string{
		"id":    claims["sub"].(string),
		"email": claims["email"].(string),
	})
}

func (s *IdentityStub) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)

	s.mu.Lock()
	s.revokedAccess[token] = true
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *IdentityStub) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	if bearerToken(r) != StubServiceKey {
		writeStubJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var body struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		AppMetadata struct {
			Role string `json:"role"`
		} `json:"app_metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[body.Email]; exists {
		writeStubJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "email already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.MinCost)
	if err != nil {
		http.Error(w, "hash failure", http.StatusInternalServerError)
		return
	}

	user := &stubUser{
		ID:           uuid.New(),
		Email:        body.Email,
		PasswordHash: string(hash),
		Role:         body.AppMetadata.Role,
	}
	s.usersByEmail[body.Email] = user
	s.usersByID[user.ID] = user

	writeStubJSON(w, http.StatusOK, map[string]string{
		"id":    user.ID.String(),
		"email": user.Email,
	})
}

func (s *IdentityStub) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	if bearerToken(r) != StubServiceKey {
		writeStubJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.usersByID[id]; ok {
		delete(s.usersByEmail, user.Email)
		delete(s.usersByID, id)
	}

	w.WriteHeader(http.StatusNoContent)
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeStubJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
