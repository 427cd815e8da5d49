// Package jwt issues and validates the bearer tokens the API accepts. The
// service has no user accounts; tokens identify operator tooling and CI
// callers, minted out of band with the shared secret.
package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the caller identity inside an API token.
type Claims struct {
	Subject string `json:"sub_name,omitempty"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies API tokens with a single shared secret.
type Manager struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewManager creates a token manager. The refresh secret and expiry are kept
// in the signature for config compatibility but refresh tokens are not issued.
func NewManager(accessSecret, _ string, accessExpiry, _ time.Duration) *Manager {
	return &Manager{
		secret: []byte(accessSecret),
		expiry: accessExpiry,
		issuer: "podflow",
	}
}

// GenerateToken mints a token for the named caller.
func (m *Manager) GenerateToken(subject, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Subject: subject,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   subject,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateAccessToken verifies the signature, expiry and issuer of a token
// and returns its claims.
func (m *Manager) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
