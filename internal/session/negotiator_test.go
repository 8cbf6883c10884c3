package session_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/identity"
	"github.com/fitstudio/fitstudio-server/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	getUserFunc  func(ctx context.Context, accessToken string) (*identity.User, error)
	refreshFunc  func(ctx context.Context, refreshToken string) (*identity.Session, error)
	getUserCalls int
	refreshCalls int
}

func (f *fakeProvider) GetUser(ctx context.Context, accessToken string) (*identity.User, error) {
	f.getUserCalls++
	return f.getUserFunc(ctx, accessToken)
}

func (f *fakeProvider) RefreshSession(ctx context.Context, refreshToken string) (*identity.Session, error) {
	f.refreshCalls++
	return f.refreshFunc(ctx, refreshToken)
}

type fakeProfileStore struct {
	profiles map[uuid.UUID]*domain.Profile
}

func (f *fakeProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	profile, ok := f.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

type fakeListener struct {
	refreshed []uuid.UUID
}

func (f *fakeListener) TokenRefreshed(userID uuid.UUID) {
	f.refreshed = append(f.refreshed, userID)
}

func requestWithCookies(cookies map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	for name, value := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return req
}

func findSetCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestNegotiator_Resolve(t *testing.T) {
	userID := uuid.New()
	user := &identity.User{ID: userID, Email: "member@example.com"}
	profiles := &fakeProfileStore{profiles: map[uuid.UUID]*domain.Profile{
		userID: {ID: userID, FirstName: "Alex", Role: domain.RoleInstructor},
	}}

	newAccess, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID.String(),
		"role": "instructor",
	}).SignedString([]byte("test"))
	require.NoError(t, err)

	t.Run("valid access token resolves without refresh", func(t *testing.T) {
		provider := &fakeProvider{
			getUserFunc: func(ctx context.Context, token string) (*identity.User, error) {
				assert.Equal(t, "valid-access", token)
				return user, nil
			},
		}
		negotiator := session.NewNegotiator(provider, profiles, &session.CookieWriter{})

		rec := httptest.NewRecorder()
		req := requestWithCookies(map[string]string{session.AccessTokenCookie: "valid-access"})

		profile, err := negotiator.Resolve(context.Background(), rec, req)
		require.NoError(t, err)
		assert.Equal(t, userID, profile.ID)
		assert.Equal(t, "member@example.com", profile.Email, "identity email is authoritative")
		assert.Equal(t, 0, provider.refreshCalls, "no refresh when access token works")
		assert.Empty(t, rec.Result().Cookies(), "no cookies written on the fast path")
	})

	t.Run("rejected access token maps to invalid token", func(t *testing.T) {
		provider := &fakeProvider{
			getUserFunc: func(ctx context.Context, token string) (*identity.User, error) {
				return nil, identity.ErrInvalidToken
			},
		}
		negotiator := session.NewNegotiator(provider, profiles, &session.CookieWriter{})

		rec := httptest.NewRecorder()
		req := requestWithCookies(map[string]string{
			session.AccessTokenCookie:  "rejected",
			session.RefreshTokenCookie: "still-good",
		})

		_, err := negotiator.Resolve(context.Background(), rec, req)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
		assert.Equal(t, 0, provider.refreshCalls, "a rejected access token is terminal, no refresh fallback")
	})

	t.Run("no cookies at all", func(t *testing.T) {
		provider := &fakeProvider{}
		negotiator := session.NewNegotiator(provider, profiles, &session.CookieWriter{})

		rec := httptest.NewRecorder()
		_, err := negotiator.Resolve(context.Background(), rec, requestWithCookies(nil))
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("refresh path writes one cookie pair and notifies listener", func(t *testing.T) {
		provider := &fakeProvider{
			getUserFunc: func(ctx context.Context, token string) (*identity.User, error) {
				assert.Equal(t, newAccess, token)
				return user, nil
			},
			refreshFunc: func(ctx context.Context, refreshToken string) (*identity.Session, error) {
				assert.Equal(t, "old-refresh", refreshToken)
				return &identity.Session{
					AccessToken:  newAccess,
					RefreshToken: "new-refresh",
					User:         *user,
				}, nil
			},
		}
		negotiator := session.NewNegotiator(provider, profiles, &session.CookieWriter{})
		listener := &fakeListener{}
		negotiator.SetRefreshListener(listener)

		rec := httptest.NewRecorder()
		req := requestWithCookies(map[string]string{session.RefreshTokenCookie: "old-refresh"})

		profile, err := negotiator.Resolve(context.Background(), rec, req)
		require.NoError(t, err)
		assert.Equal(t, userID, profile.ID)
		assert.Equal(t, 1, provider.refreshCalls, "exactly one refresh round trip")
		assert.Equal(t, []uuid.UUID{userID}, listener.refreshed)

		access := findSetCookie(t, rec, session.AccessTokenCookie)
		require.NotNil(t, access)
		assert.Equal(t, newAccess, access.Value)
		assert.True(t, access.HttpOnly)

		refresh := findSetCookie(t, rec, session.RefreshTokenCookie)
		require.NotNil(t, refresh)
		assert.Equal(t, "new-refresh", refresh.Value)
		assert.Equal(t, int(session.RefreshTokenTTL.Seconds()), refresh.MaxAge)

		role := findSetCookie(t, rec, session.RoleCookie)
		require.NotNil(t, role)
		assert.Equal(t, "instructor", role.Value, "role cookie mirrors the new token's claim")
		assert.False(t, role.HttpOnly)
	})

	t.Run("refresh honors remember-me lifetime", func(t *testing.T) {
		provider := &fakeProvider{
			getUserFunc: func(ctx context.Context, token string) (*identity.User, error) {
				return user, nil
			},
			refreshFunc: func(ctx context.Context, refreshToken string) (*identity.Session, error) {
				return &identity.Session{AccessToken: newAccess, RefreshToken: "new-refresh", User: *user}, nil
			},
		}
		negotiator := session.NewNegotiator(provider, profiles, &session.CookieWriter{})

		rec := httptest.NewRecorder()
		req := requestWithCookies(map[string]string{
			session.RefreshTokenCookie: "old-refresh",
			session.RememberMeCookie:   "true",
		})

		_, err := negotiator.Resolve(context.Background(), rec, req)
		require.NoError(t, err)

		refresh := findSetCookie(t, rec, session.RefreshTokenCookie)
		require.NotNil(t, refresh)
		assert.Equal(t, int(session.RememberedRefreshTokenTTL.Seconds()), refresh.MaxAge)
	})

	t.Run("rejected refresh token maps to session expired", func(t *testing.T) {
		provider := &fakeProvider{
			refreshFunc: func(ctx context.Context, refreshToken string) (*identity.Session, error) {
				return nil, identity.ErrRefreshRejected
			},
		}
		negotiator := session.NewNegotiator(provider, profiles, &session.CookieWriter{})

		rec := httptest.NewRecorder()
		req := requestWithCookies(map[string]string{session.RefreshTokenCookie: "revoked"})

		_, err := negotiator.Resolve(context.Background(), rec, req)
		assert.ErrorIs(t, err, domain.ErrSessionExpired)
		assert.Empty(t, rec.Result().Cookies(), "no cookies written on refresh failure")
	})

	t.Run("provider outage surfaces unmapped", func(t *testing.T) {
		outage := errors.New("connection refused")
		provider := &fakeProvider{
			refreshFunc: func(ctx context.Context, refreshToken string) (*identity.Session, error) {
				return nil, outage
			},
		}
		negotiator := session.NewNegotiator(provider, profiles, &session.CookieWriter{})

		rec := httptest.NewRecorder()
		req := requestWithCookies(map[string]string{session.RefreshTokenCookie: "any"})

		_, err := negotiator.Resolve(context.Background(), rec, req)
		assert.ErrorIs(t, err, outage)
		assert.NotErrorIs(t, err, domain.ErrSessionExpired)
	})

	t.Run("missing profile row maps to profile load failure", func(t *testing.T) {
		orphan := &identity.User{ID: uuid.New(), Email: "orphan@example.com"}
		provider := &fakeProvider{
			getUserFunc: func(ctx context.Context, token string) (*identity.User, error) {
				return orphan, nil
			},
		}
		negotiator := session.NewNegotiator(provider, profiles, &session.CookieWriter{})

		rec := httptest.NewRecorder()
		req := requestWithCookies(map[string]string{session.AccessTokenCookie: "valid"})

		_, err := negotiator.Resolve(context.Background(), rec, req)
		assert.ErrorIs(t, err, domain.ErrProfileLoadFailed)
	})
}

func TestCookieWriter_Clear(t *testing.T) {
	writer := &session.CookieWriter{}
	rec := httptest.NewRecorder()

	writer.Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 4)
	for _, cookie := range cookies {
		assert.Empty(t, cookie.Value, "cookie %s should be emptied", cookie.Name)
		assert.Negative(t, cookie.MaxAge, "cookie %s should be expired", cookie.Name)
	}
}

func TestCookieWriter_WritePair(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"}).
		SignedString([]byte("test"))
	require.NoError(t, err)

	writer := &session.CookieWriter{}
	rec := httptest.NewRecorder()

	writer.WritePair(rec, token, "refresh-value", false)

	access := findSetCookie(t, rec, session.AccessTokenCookie)
	require.NotNil(t, access)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, int(session.AccessTokenTTL.Seconds()), access.MaxAge)

	role := findSetCookie(t, rec, session.RoleCookie)
	require.NotNil(t, role)
	assert.Equal(t, "admin", role.Value)

	remember := findSetCookie(t, rec, session.RememberMeCookie)
	require.NotNil(t, remember)
	assert.Equal(t, "false", remember.Value)
}
