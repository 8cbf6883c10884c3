// Package session holds the cookie-based session flow: unverified claim
// decoding for routing decisions, cookie management, and the negotiator
// that resolves a request's cookies into a user profile.
package session

import (
	"fmt"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// DecodeRoleClaim extracts the role claim from an access token without
// verifying its signature. A missing role claim defaults to the user role.
//
// This is a fast-path parse for redirect decisions only. Signature
// verification happens server-side via the identity provider; nothing
// security-relevant may depend on the value returned here.
func DecodeRoleClaim(accessToken string) (domain.Role, error) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return "", fmt.Errorf("malformed access token: %w", err)
	}

	roleClaim, ok := claims["role"].(string)
	if !ok || roleClaim == "" {
		return domain.RoleUser, nil
	}

	role := domain.Role(roleClaim)
	if !role.IsValid() {
		return domain.RoleUser, nil
	}
	return role, nil
}
