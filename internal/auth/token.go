package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mannaworks/manna-server/internal/models"
)

var (
	ErrNoToken      = errors.New("no token supplied")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the single authenticated-identity shape carried in bearer tokens.
// Every code path that reads identity from a token goes through this type.
type Claims struct {
	jwt.RegisteredClaims
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Roles       []string `json:"roles"`
	DisplayName string   `json:"name"`
}

// RoleSet returns the claim's role set, falling back to [Role] or ["user"]
// for tokens issued before roles were an array.
func (c *Claims) RoleSet() []string {
	if len(c.Roles) > 0 {
		return c.Roles
	}
	if c.Role != "" {
		return []string{c.Role}
	}
	return []string{"user"}
}

// IssueToken signs an HS256 bearer token for an already-authenticated user.
// It never touches the database; last-login bookkeeping is the caller's
// separate, best-effort concern.
func IssueToken(user *models.User, secret []byte, validity time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Email:       user.Email,
		Role:        user.Role,
		Roles:       user.RoleSet(),
		DisplayName: user.DisplayName,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyToken validates signature and expiry and returns the embedded claims.
// Any failure maps to ErrNoToken or ErrInvalidToken; callers branch to an
// unauthenticated response, never propagate a fault.
//
// The literal strings "null" and "undefined" are rejected before any
// signature work: clients with a missing token have been observed sending
// them as the bearer value.
func VerifyToken(raw string, secret []byte) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrNoToken
	}
	if raw == "null" || raw == "undefined" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DecodeUnverified decodes the claims segment of a token without checking the
// signature. It exists only for the session client's degraded fallback; the
// result must never be treated as authenticated by the server.
func DecodeUnverified(raw string) (*Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
