package ports

import "time"

// PasswordHasher is a one-way credential hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns nil when password matches hash.
	Verify(hash, password string) error
}

// TokenClaims is the access token contract shared with every service that
// verifies tokens: sub is the user id, name the username.
type TokenClaims struct {
	Subject   string
	Name      string
	Email     string
	Issuer    string
	Audience  string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Signer turns claims into a compact signed token and back.
type Signer interface {
	Sign(claims TokenClaims) (string, error)
	Verify(token string) (*TokenClaims, error)
}
