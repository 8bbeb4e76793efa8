package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionTokenType = "session"

// SessionClaims identify a logged-in browser session. RegisteredClaims.ID
// carries the session ID that keys the user's widget.
type SessionClaims struct {
	Email string `json:"email"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret      []byte
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

// NewIssuer returns an issuer. Tokens live for ttl, or rememberTTL when the
// user asked to be remembered.
func NewIssuer(secret string, ttl, rememberTTL time.Duration) *Issuer {
	return &Issuer{
		secret:      []byte(secret),
		ttl:         ttl,
		rememberTTL: rememberTTL,
		now:         time.Now,
	}
}

// Issue creates a token for a new session.
func (i *Issuer) Issue(email string, remember bool) (string, *SessionClaims, error) {
	ttl := i.ttl
	if remember {
		ttl = i.rememberTTL
	}
	now := i.now()

	claims := &SessionClaims{
		Email: email,
		Type:  sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, claims, nil
}

// Parse verifies a token and returns its claims.
func (i *Issuer) Parse(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Type != sessionTokenType {
		return nil, errors.New("not a session token")
	}
	if claims.ID == "" {
		return nil, errors.New("session token has no id")
	}
	return claims, nil
}

// TTL returns the lifetime of a token issued with remember.
func (i *Issuer) TTL(remember bool) time.Duration {
	if remember {
		return i.rememberTTL
	}
	return i.ttl
}
