package ports

import (
	"context"
)

// AuthResponse is returned by both login and registration.
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	TokenType    string `json:"tokenType"`
}

// TokenPayload is the identity projection a token is built from.
type TokenPayload struct {
	UserID   int64
	Username string
	Email    string
}

type TokenIssuer interface {
	GenerateAccessToken(payload TokenPayload) (string, error)
	GenerateRefreshToken() (string, error)
	// ExpiresIn is the access token lifetime in minutes.
	ExpiresIn() int
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*AuthResponse, error)
	Register(ctx context.Context, username, password, email string) (*AuthResponse, error)
}
