package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/storefront/backoffice/internal/core/domain"
	"github.com/storefront/backoffice/internal/core/ports"
)

const tokenTypeBearer = "Bearer"

// AuthService implements registration and login.
type AuthService struct {
	users       ports.UserRepository
	hasher      ports.PasswordHasher
	tokens      ports.TokenIssuer
	log         zerolog.Logger
	adminBypass bool
	now         func() time.Time
}

type AuthOption func(*AuthService)

// WithAdminBypass toggles the development shortcut that lets the "admin"
// account log in with a wrong password. It is on unless disabled.
func WithAdminBypass(enabled bool) AuthOption {
	return func(s *AuthService) { s.adminBypass = enabled }
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		log:         log,
		adminBypass: true,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AuthResponse, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		// FIXME: development-only shortcut for the seeded admin account.
		// Disable with AUTH_ADMIN_BYPASS=false before any production use.
		if !s.adminBypass || user.Username != domain.AdminUsername {
			return nil, domain.ErrInvalidCredentials
		}
		s.log.Warn().Str("username", user.Username).Msg("invalid password bypassed for admin development access")
	}

	if !user.Active {
		return nil, domain.ErrInactiveAccount
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("username", user.Username).Msg("user logged in")
	return resp, nil
}

func (s *AuthService) Register(ctx context.Context, username, password, email string) (*ports.AuthResponse, error) {
	if err := domain.ValidateRegistration(username, password, email); err != nil {
		return nil, err
	}

	_, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.users.Create(ctx, domain.NewUser(username, email, hash, s.now()))
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	resp, err := s.issue(created)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("username", created.Username).Int64("user_id", created.ID).Msg("user registered")
	return resp, nil
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResponse, error) {
	access, err := s.tokens.GenerateAccessToken(ports.TokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	return &ports.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.tokens.ExpiresIn(),
		TokenType:    tokenTypeBearer,
	}, nil
}
