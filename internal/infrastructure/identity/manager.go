package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// Claims carried by an identity token. The subject is the canonical string
// form of the caller's principal; the role is advisory and re-checked against
// the profile store for admin operations.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.StandardClaims
}

// Manager verifies bearer tokens issued by the identity provider and, for
// local development, can mint its own.
type Manager struct {
	signingKey string
}

// NewManager creates a token manager with the shared HMAC signing key
func NewManager(signingKey string) (*Manager, error) {
	if signingKey == "" {
		return nil, errors.New("empty signing key")
	}
	return &Manager{signingKey: signingKey}, nil
}

// Issue mints a token for a principal. Used by local tooling and tests; in
// production tokens come from the external identity provider.
func (m *Manager) Issue(principal, role string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		StandardClaims: jwt.StandardClaims{
			Subject:   principal,
			ExpiresAt: time.Now().Add(ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})
	return token.SignedString([]byte(m.signingKey))
}

// Parse verifies a token and returns its principal and role
func (m *Manager) Parse(accessToken string) (principal, role string, err error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.signingKey), nil
	})
	if err != nil {
		return "", "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", "", errors.New("invalid token")
	}
	return claims.Subject, claims.Role, nil
}
