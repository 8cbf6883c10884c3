package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/fitstudio/fitstudio-server/internal/identity"
	"github.com/google/uuid"
)

// IdentityProvider is the slice of the credential store the negotiator
// needs: token validation and refresh minting.
type IdentityProvider interface {
	GetUser(ctx context.Context, accessToken string) (*identity.User, error)
	RefreshSession(ctx context.Context, refreshToken string) (*identity.Session, error)
}

// ProfileStore loads the auxiliary profile metadata for an identity.
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
}

// RefreshListener is notified after a successful token rotation.
type RefreshListener interface {
	TokenRefreshed(userID uuid.UUID)
}

// Negotiator resolves a request's cookies into a user profile, refreshing
// an expired access token from the refresh token when possible.
type Negotiator struct {
	provider IdentityProvider
	profiles ProfileStore
	cookies  *CookieWriter
	listener RefreshListener
}

func NewNegotiator(provider IdentityProvider, profiles ProfileStore, cookies *CookieWriter) *Negotiator {
	return &Negotiator{
		provider: provider,
		profiles: profiles,
		cookies:  cookies,
	}
}

// SetRefreshListener registers an optional listener for token rotations.
func (n *Negotiator) SetRefreshListener(l RefreshListener) {
	n.listener = l
}

// Resolve inspects the session cookies and returns the authenticated
// profile, or one of the domain session errors:
//
//   - ErrNotAuthenticated: no usable credential at all
//   - ErrInvalidToken: access token present but rejected by the provider
//   - ErrSessionExpired: refresh token present but the mint was rejected
//   - ErrProfileLoadFailed: identity valid, metadata row missing
//
// When the access token is absent and a valid refresh token is present, the
// new cookie pair is written to w before the profile fetch. At most one
// refresh round trip is made per call; a failure is terminal.
func (n *Negotiator) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) (*domain.Profile, error) {
	accessToken := CookieValue(r, AccessTokenCookie)
	if accessToken != "" {
		user, err := n.provider.GetUser(ctx, accessToken)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidToken) {
				return nil, domain.ErrInvalidToken
			}
			return nil, err
		}
		return n.loadProfile(ctx, user)
	}

	refreshToken := CookieValue(r, RefreshTokenCookie)
	if refreshToken == "" {
		return nil, domain.ErrNotAuthenticated
	}

	minted, err := n.provider.RefreshSession(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrRefreshRejected) {
			return nil, domain.ErrSessionExpired
		}
		return nil, err
	}

	// Cookies must be written before any response body; the refresh TTL
	// follows the remember-me preference captured at login.
	n.cookies.WritePair(w, minted.AccessToken, minted.RefreshToken, Remembered(r))

	user, err := n.provider.GetUser(ctx, minted.AccessToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	if n.listener != nil {
		n.listener.TokenRefreshed(user.ID)
	}

	return n.loadProfile(ctx, user)
}

func (n *Negotiator) loadProfile(ctx context.Context, user *identity.User) (*domain.Profile, error) {
	profile, err := n.profiles.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProfileLoadFailed, err)
	}

	// Email is authoritative on the identity side.
	profile.Email = user.Email
	return profile, nil
}
