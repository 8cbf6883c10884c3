package session

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fitstudio/fitstudio-server/internal/domain"
)

// Cookie names shared with the browser client.
const (
	AccessTokenCookie  = "sb-access-token"
	RefreshTokenCookie = "sb-refresh-token"
	RoleCookie         = "user-role"
	RememberMeCookie   = "remember-me"
)

// Token lifetimes. The refresh lifetime depends on the remember-me flag
// captured at login.
const (
	AccessTokenTTL            = time.Hour
	RefreshTokenTTL           = time.Hour
	RememberedRefreshTokenTTL = 7 * 24 * time.Hour
)

// CookieWriter issues and clears the session cookie set.
type CookieWriter struct {
	Domain string
	Secure bool
}

// WritePair sets the access/refresh cookies for a freshly minted token pair
// and rewrites the role and remember-me mirrors. The role cookie is a cache
// of the token claim, refreshed on every rotation so the two never diverge.
func (c *CookieWriter) WritePair(w http.ResponseWriter, accessToken, refreshToken string, remember bool) {
	refreshTTL := RefreshTokenTTL
	if remember {
		refreshTTL = RememberedRefreshTokenTTL
	}

	c.set(w, AccessTokenCookie, accessToken, AccessTokenTTL, true)
	if refreshToken != "" {
		c.set(w, RefreshTokenCookie, refreshToken, refreshTTL, true)
	}

	role, err := DecodeRoleClaim(accessToken)
	if err != nil {
		role = domain.RoleUser
	}
	c.set(w, RoleCookie, role.String(), refreshTTL, false)
	c.set(w, RememberMeCookie, strconv.FormatBool(remember), refreshTTL, false)
}

// Clear expires all four session cookies regardless of prior presence.
func (c *CookieWriter) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie, RoleCookie, RememberMeCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   c.Domain,
			MaxAge:   -1,
			HttpOnly: name == AccessTokenCookie || name == RefreshTokenCookie,
			Secure:   c.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ClearAccessToken expires only the access-token cookie. Used when the
// token turned out to be malformed.
func (c *CookieWriter) ClearAccessToken(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *CookieWriter) set(w http.ResponseWriter, name, value string, ttl time.Duration, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: httpOnly,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CookieValue returns a request cookie's value or "" when absent.
func CookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Remembered reports whether the request carries remember-me=true.
func Remembered(r *http.Request) bool {
	return CookieValue(r, RememberMeCookie) == "true"
}
