package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rl1809/inventory-api/internal/core/domain"
	"github.com/rl1809/inventory-api/internal/port"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type claims struct {
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTAdapter implements port.TokenIssuer with HS256-signed JWTs. Tokens are
// stateless: verification needs only the shared secret, no session store.
// A token_type claim keeps the two token kinds from standing in for each
// other.
type JWTAdapter struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTAdapter(secret string, accessTTL, refreshTTL time.Duration) *JWTAdapter {
	return &JWTAdapter{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (j *JWTAdapter) IssuePair(identity domain.Identity) (port.TokenPair, error) {
	access, err := j.sign(identity, tokenTypeAccess, j.accessTTL)
	if err != nil {
		return port.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := j.sign(identity, tokenTypeRefresh, j.refreshTTL)
	if err != nil {
		return port.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return port.TokenPair{Access: access, Refresh: refresh}, nil
}

func (j *JWTAdapter) Refresh(refreshToken string) (string, error) {
	identity, err := j.verify(refreshToken, tokenTypeRefresh)
	if err != nil {
		return "", err
	}
	access, err := j.sign(*identity, tokenTypeAccess, j.accessTTL)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return access, nil
}

func (j *JWTAdapter) VerifyAccess(accessToken string) (*domain.Identity, error) {
	return j.verify(accessToken, tokenTypeAccess)
}

func (j *JWTAdapter) sign(identity domain.Identity, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username:  identity.Username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(j.secret)
}

func (j *JWTAdapter) verify(tokenString, wantType string) (*domain.Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if c.TokenType != wantType {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &domain.Identity{UserID: userID, Username: c.Username}, nil
}
