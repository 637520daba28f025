package domain

import "context"

// CredentialStore owns password hashing/verification and the generation and
// redemption of email-confirmation and password-reset tokens. The auth
// service treats the tokens it hands out as opaque strings.
//
// Methods that reject input do so with the sentinel errors in this package
// (ErrDuplicateEmail, ErrInvalidInput, ErrInvalidCredentials,
// ErrInvalidToken); anything else indicates a storage failure.
type CredentialStore interface {
	CreateUser(ctx context.Context, userName, email, password string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	CheckPassword(user *User, password string) bool
	ChangePassword(ctx context.Context, user *User, current, newPassword string) error
	Update(ctx context.Context, user *User) error
	GenerateEmailConfirmationToken(ctx context.Context, user *User) (string, error)
	ConfirmEmail(ctx context.Context, user *User, token string) error
	GeneratePasswordResetToken(ctx context.Context, user *User) (string, error)
	ResetPassword(ctx context.Context, user *User, token, newPassword string) error
}
