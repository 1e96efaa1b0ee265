package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/rl1809/inventory-api/internal/core/domain"
	"github.com/rl1809/inventory-api/internal/port"
)

var (
	ErrUsernameTaken      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService handles registration and credential exchange. Token issuance
// and verification live behind the TokenIssuer port.
type AuthService struct {
	users  port.UserRepository
	tokens port.TokenIssuer
}

func NewAuthService(users port.UserRepository, tokens port.TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a new account with a bcrypt-hashed password. No tokens are
// issued; the client logs in afterwards.
func (s *AuthService) Register(ctx context.Context, username, password, email string) error {
	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.users.CreateUser(ctx, domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		// The unique index closes the check-then-insert race.
		if errors.Is(err, port.ErrDuplicateUsername) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Login verifies the credentials and returns an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (port.TokenPair, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return port.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return port.TokenPair{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return port.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(domain.Identity{UserID: user.ID, Username: user.Username})
	if err != nil {
		return port.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	return s.tokens.Refresh(refreshToken)
}
