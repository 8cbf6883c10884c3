package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitstudio/fitstudio-server/internal/api/middleware"
	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anonymous() middleware.SessionState {
	return middleware.SessionState{}
}

func signedInAs(role domain.Role) middleware.SessionState {
	return middleware.SessionState{HasAccessToken: true, Role: role}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name            string
		state           middleware.SessionState
		path            string
		wantAllow       bool
		wantRedirect    string
		wantClearAccess bool
	}{
		// Unauthenticated visitors.
		{
			name:      "anonymous on landing page",
			state:     anonymous(),
			path:      "/",
			wantAllow: true,
		},
		{
			name:      "anonymous on login page",
			state:     anonymous(),
			path:      "/auth/login",
			wantAllow: true,
		},
		{
			name:         "anonymous on dashboard",
			state:        anonymous(),
			path:         "/dashboard",
			wantRedirect: "/auth/login?next=%2Fdashboard",
		},
		{
			name:         "anonymous on admin area preserves requested path",
			state:        anonymous(),
			path:         "/admin/users",
			wantRedirect: "/auth/login?next=%2Fadmin%2Fusers",
		},

		// Authenticated visitors on public pages bounce to their dashboard.
		{
			name:         "member on landing page",
			state:        signedInAs(domain.RoleUser),
			path:         "/",
			wantRedirect: "/dashboard",
		},
		{
			name:         "admin on login page",
			state:        signedInAs(domain.RoleAdmin),
			path:         "/auth/login",
			wantRedirect: "/admin",
		},
		{
			name:         "instructor on register page",
			state:        signedInAs(domain.RoleInstructor),
			path:         "/auth/register",
			wantRedirect: "/instructor",
		},

		// Role-prefixed areas.
		{
			name:      "admin on admin area",
			state:     signedInAs(domain.RoleAdmin),
			path:      "/admin/users",
			wantAllow: true,
		},
		{
			name:         "member on admin area goes to own dashboard",
			state:        signedInAs(domain.RoleUser),
			path:         "/admin",
			wantRedirect: "/dashboard",
		},
		{
			name:         "instructor on admin area goes to instructor dashboard",
			state:        signedInAs(domain.RoleInstructor),
			path:         "/admin/users",
			wantRedirect: "/instructor",
		},
		{
			name:         "content admin on instructor area",
			state:        signedInAs(domain.RoleContentAdmin),
			path:         "/instructor/classes",
			wantRedirect: "/content-admin",
		},
		{
			name:      "content admin on content area",
			state:     signedInAs(domain.RoleContentAdmin),
			path:      "/content-admin/videos",
			wantAllow: true,
		},
		{
			name:      "member on shared dashboard",
			state:     signedInAs(domain.RoleUser),
			path:      "/dashboard",
			wantAllow: true,
		},
		{
			name:      "admin on shared dashboard",
			state:     signedInAs(domain.RoleAdmin),
			path:      "/dashboard",
			wantAllow: true,
		},

		// A malformed token counts as no session and gets cleaned up.
		{
			name:            "malformed token on public page",
			state:           middleware.SessionState{HasAccessToken: true, Malformed: true},
			path:            "/",
			wantAllow:       true,
			wantClearAccess: true,
		},
		{
			name:            "malformed token on guarded page",
			state:           middleware.SessionState{HasAccessToken: true, Malformed: true},
			path:            "/dashboard",
			wantRedirect:    "/auth/login?next=%2Fdashboard",
			wantClearAccess: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := middleware.Decide(tt.state, tt.path)

			assert.Equal(t, tt.wantAllow, decision.Allow)
			assert.Equal(t, tt.wantRedirect, decision.RedirectTo)
			assert.Equal(t, tt.wantClearAccess, decision.ClearAccessToken)
		})
	}
}

func TestDecide_NeverRedirectsAuthenticatedToLogin(t *testing.T) {
	// An authenticated visitor with the wrong role must land on a page they
	// can see, never back on the login form.
	paths := []string{"/admin", "/admin/users", "/content-admin", "/instructor", "/instructor/classes"}
	roles := []domain.Role{domain.RoleAdmin, domain.RoleContentAdmin, domain.RoleInstructor, domain.RoleUser}

	for _, role := range roles {
		for _, path := range paths {
			decision := middleware.Decide(signedInAs(role), path)
			if decision.Allow {
				continue
			}
			assert.NotContains(t, decision.RedirectTo, middleware.LoginPath,
				"role %s on %s redirected to login", role, path)
			assert.Equal(t, role.DashboardPath(), decision.RedirectTo,
				"role %s on %s should land on own dashboard", role, path)
		}
	}
}

func TestStateFromRequest(t *testing.T) {
	mint := func(role string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": role}).
			SignedString([]byte("test"))
		require.NoError(t, err)
		return token
	}

	t.Run("no cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		state := middleware.StateFromRequest(req)
		assert.False(t, state.HasAccessToken)
	})

	t.Run("valid token with role claim", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: session.AccessTokenCookie, Value: mint("admin")})

		state := middleware.StateFromRequest(req)
		assert.True(t, state.HasAccessToken)
		assert.False(t, state.Malformed)
		assert.Equal(t, domain.RoleAdmin, state.Role)
	})

	t.Run("malformed token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: session.AccessTokenCookie, Value: "garbage"})

		state := middleware.StateFromRequest(req)
		assert.True(t, state.HasAccessToken)
		assert.True(t, state.Malformed)
	})

	t.Run("role cookie is ignored", func(t *testing.T) {
		// The plain role cookie is a write-only cache; only the token claim
		// feeds the gate.
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: session.AccessTokenCookie, Value: mint("user")})
		req.AddCookie(&http.Cookie{Name: session.RoleCookie, Value: "admin"})

		state := middleware.StateFromRequest(req)
		assert.Equal(t, domain.RoleUser, state.Role)
	})
}

func TestGate(t *testing.T) {
	mint := func(role string) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": role}).
			SignedString([]byte("test"))
		require.NoError(t, err)
		return token
	}

	handler := middleware.Gate(&session.CookieWriter{})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	t.Run("redirects anonymous from guarded page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/auth/login?next=%2Fdashboard", rec.Header().Get("Location"))
	})

	t.Run("passes authorized request through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: session.AccessTokenCookie, Value: mint("admin")})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("clears malformed access token cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.AddCookie(&http.Cookie{Name: session.AccessTokenCookie, Value: "garbage"})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, session.AccessTokenCookie, cookies[0].Name)
		assert.Negative(t, cookies[0].MaxAge)
	})
}
