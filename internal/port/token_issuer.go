package port

import "github.com/rl1809/inventory-api/internal/core/domain"

// TokenPair is what a successful login returns.
type TokenPair struct {
	Access  string
	Refresh string
}

// TokenIssuer issues and verifies the credentials that guard the item
// endpoints. Handlers depend on this interface, never on a token library.
type TokenIssuer interface {
	// IssuePair mints an access/refresh pair bound to the identity.
	IssuePair(identity domain.Identity) (TokenPair, error)

	// Refresh exchanges a valid refresh token for a new access token.
	Refresh(refreshToken string) (string, error)

	// VerifyAccess validates an access token and returns its identity.
	VerifyAccess(accessToken string) (*domain.Identity, error)
}
