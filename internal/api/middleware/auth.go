package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/session"
)

type contextKey string

const (
	ProfileKey contextKey = "profile"
)

// Auth authenticates API requests against the identity provider. Unlike
// the page gate this is the real security boundary: the access token is
// verified server-side on every request and the authoritative role comes
// from the profile table, not from any cookie.
func Auth(provider session.IdentityProvider, profiles session.ProfileStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accessToken := bearerToken(r)
			if accessToken == "" {
				accessToken = session.CookieValue(r, session.AccessTokenCookie)
			}
			if accessToken == "" {
				log.Printf("ERROR [middleware.Auth] missing access token")
				http.Error(w, "Authorization required", http.StatusUnauthorized)
				return
			}

			user, err := provider.GetUser(r.Context(), accessToken)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] token validation failed: %v", err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			profile, err := profiles.GetByID(r.Context(), user.ID)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] profile lookup failed: %v", err)
				http.Error(w, "Failed to load user profile.", http.StatusInternalServerError)
				return
			}
			profile.Email = user.Email

			ctx := context.WithValue(r.Context(), ProfileKey, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated callers whose role is not in the
// allowed set.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile, ok := GetProfile(r.Context())
			if !ok {
				http.Error(w, "Authorization required", http.StatusUnauthorized)
				return
			}
			if !allowed[profile.Role] {
				log.Printf("ERROR [middleware.RequireRole] role %s denied for %s", profile.Role, r.URL.Path)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetProfile returns the authenticated profile stored by Auth.
func GetProfile(ctx context.Context) (*domain.Profile, bool) {
	profile, ok := ctx.Value(ProfileKey).(*domain.Profile)
	return profile, ok
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
