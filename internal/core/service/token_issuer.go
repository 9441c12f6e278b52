package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backoffice/internal/core/ports"
)

const (
	defaultAccessTTL  = 60 * time.Minute
	refreshTokenBytes = 32
)

// TokenIssuer builds access tokens through a Signer and mints opaque
// refresh tokens.
type TokenIssuer struct {
	signer   ports.Signer
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewTokenIssuer(signer ports.Signer, issuer, audience string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = defaultAccessTTL
	}
	return &TokenIssuer{
		signer:   signer,
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}
}

// GenerateAccessToken signs {sub, name, email, exp} for payload.
func (t *TokenIssuer) GenerateAccessToken(payload ports.TokenPayload) (string, error) {
	now := t.now().UTC()
	token, err := t.signer.Sign(ports.TokenClaims{
		Subject:   strconv.FormatInt(payload.UserID, 10),
		Name:      payload.Username,
		Email:     payload.Email,
		Issuer:    t.issuer,
		Audience:  t.audience,
		ID:        uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(t.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

// GenerateRefreshToken returns random bytes with no embedded claims.
func (t *TokenIssuer) GenerateRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (t *TokenIssuer) ExpiresIn() int {
	return int(t.ttl / time.Minute)
}
