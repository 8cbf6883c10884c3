package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/session"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/auth/login"

// publicPaths are reachable without a session.
var publicPaths = map[string]bool{
	"/":              true,
	"/auth/login":    true,
	"/auth/register": true,
}

// rolePrefixes maps a guarded path prefix to the role it requires.
var rolePrefixes = map[string]domain.Role{
	"/admin":         domain.RoleAdmin,
	"/content-admin": domain.RoleContentAdmin,
	"/instructor":    domain.RoleInstructor,
}

// SessionState is the cookie shape the gate decides on. It is derived
// without any network call; the access token's claims are decoded but not
// verified, so the gate is a redirect optimization, never the security
// boundary. Handlers re-verify against the identity provider.
type SessionState struct {
	HasAccessToken bool
	Malformed      bool
	Role           domain.Role
}

// StateFromRequest derives the gate's input from the request cookies. The
// role comes from the access token's decoded claim; the plain role cookie
// is a write-only cache and is never read here.
func StateFromRequest(r *http.Request) SessionState {
	accessToken := session.CookieValue(r, session.AccessTokenCookie)
	if accessToken == "" {
		return SessionState{}
	}

	role, err := session.DecodeRoleClaim(accessToken)
	if err != nil {
		return SessionState{HasAccessToken: true, Malformed: true}
	}
	return SessionState{HasAccessToken: true, Role: role}
}

// Decision is the gate's verdict for one request.
type Decision struct {
	Allow            bool
	RedirectTo       string
	ClearAccessToken bool
}

// Decide is the single authoritative allow/redirect decision for a page
// request:
//
//   - guarded path without a session: redirect to login, preserving the
//     requested path for post-login redirect
//   - public path with a session: redirect to the role's dashboard
//   - role-prefixed path with the wrong role: redirect to the caller's own
//     dashboard (authenticated, just wrong role — never back to login)
//   - otherwise: allow
//
// A malformed access token counts as no session and the cookie is cleared.
func Decide(state SessionState, path string) Decision {
	authenticated := state.HasAccessToken && !state.Malformed

	if !authenticated {
		if publicPaths[path] {
			return Decision{Allow: true, ClearAccessToken: state.Malformed}
		}
		target := LoginPath + "?next=" + url.QueryEscape(path)
		return Decision{RedirectTo: target, ClearAccessToken: state.Malformed}
	}

	if publicPaths[path] {
		return Decision{RedirectTo: state.Role.DashboardPath()}
	}

	for prefix, required := range rolePrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			if state.Role != required {
				return Decision{RedirectTo: state.Role.DashboardPath()}
			}
			break
		}
	}

	return Decision{Allow: true}
}

// Gate applies Decide to every page request.
func Gate(cookies *session.CookieWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := Decide(StateFromRequest(r), r.URL.Path)

			if decision.ClearAccessToken {
				cookies.ClearAccessToken(w)
			}
			if !decision.Allow {
				http.Redirect(w, r, decision.RedirectTo, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
