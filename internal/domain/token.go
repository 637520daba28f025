package domain

import (
	"context"
	"time"
)

// TokenPurpose distinguishes the flows an action token may redeem.
type TokenPurpose string

const (
	TokenPurposeEmailConfirm  TokenPurpose = "email_confirm"
	TokenPurposePasswordReset TokenPurpose = "password_reset"
)

// ActionToken is a temporary, expiring token backing email confirmation and
// password reset. The plaintext token is handed to the caller once; only its
// SHA-256 hash is persisted.
type ActionToken struct {
	ID        int64
	UserID    string
	Purpose   TokenPurpose
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ActionTokenRepository defines persistence operations for action tokens.
type ActionTokenRepository interface {
	Create(ctx context.Context, token *ActionToken) error
	GetByHash(ctx context.Context, userID string, purpose TokenPurpose, hash string) (*ActionToken, error)
	Delete(ctx context.Context, id int64) error
	// DeleteForUser removes all tokens of the given purpose for a user,
	// invalidating previously issued tokens when a new one is generated.
	DeleteForUser(ctx context.Context, userID string, purpose TokenPurpose) error
}
