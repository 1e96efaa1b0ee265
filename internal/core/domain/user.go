package domain

import "time"

// User is a registered account. PasswordHash is a bcrypt hash; the plaintext
// password never leaves the auth service.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the verified subject of an access token.
type Identity struct {
	UserID   int64
	Username string
}
