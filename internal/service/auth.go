package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/zachmicha/inno-shop/internal/domain"
	"github.com/zachmicha/inno-shop/internal/token"
)

// AuthService orchestrates the account lifecycle — registration, email
// verification, login, profile mutation, soft delete, and password recovery —
// against the credential store, and issues session tokens.
//
// A soft-deleted user is invisible to every flow here except forgot-password,
// which deliberately checks existence only (matching the upstream behavior;
// see DESIGN.md).
type AuthService struct {
	store  domain.CredentialStore
	issuer *token.Issuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(store domain.CredentialStore, issuer *token.Issuer) *AuthService {
	return &AuthService{store: store, issuer: issuer}
}

// Register creates a new unconfirmed account and returns it together with
// the email-confirmation token. With no mail integration, the boundary hands
// the token back to the caller directly.
func (s *AuthService) Register(ctx context.Context, userName, email, password string) (*domain.User, string, error) {
	if userName == "" || email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: user name, email, and password are required", domain.ErrInvalidInput)
	}

	user, err := s.store.CreateUser(ctx, userName, email, password)
	if err != nil {
		return nil, "", err
	}

	confirmToken, err := s.store.GenerateEmailConfirmationToken(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("generate confirmation token: %w", err)
	}
	return user, confirmToken, nil
}

// VerifyEmail redeems a confirmation token, marking the user's email
// confirmed. Expired and wrong tokens fail identically.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return fmt.Errorf("%w: email and confirmation code are required", domain.ErrInvalidInput)
	}

	user, err := s.findActiveByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.store.ConfirmEmail(ctx, user, code)
}

// Login verifies credentials and returns a signed session token. A missing
// or soft-deleted user fails exactly like a wrong password, so callers
// cannot probe for account existence.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	if user.IsDeleted {
		return "", domain.ErrInvalidCredentials
	}
	if !user.EmailConfirmed {
		return "", domain.ErrEmailNotConfirmed
	}
	if !s.store.CheckPassword(user, password) {
		return "", domain.ErrInvalidCredentials
	}

	signed, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return "", fmt.Errorf("issue session token: %w", err)
	}
	return signed, nil
}

// Authenticate validates a session token and loads its subject. Tokens of
// soft-deleted users are rejected even when the signature is still valid.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.issuer.Validate(tokenString)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.findActiveByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID returns the user's profile record. Soft-deleted users are
// reported as not found.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findActiveByID(ctx, id)
}

// UpdateEmail replaces the user's email unconditionally once the user is
// found; no current-password check applies to this variant.
func (s *AuthService) UpdateEmail(ctx context.Context, id, email string) error {
	if id == "" || email == "" {
		return fmt.Errorf("%w: id and email are required", domain.ErrInvalidInput)
	}

	user, err := s.findActiveByID(ctx, id)
	if err != nil {
		return err
	}

	user.Email = email
	return s.store.Update(ctx, user)
}

// UpdatePassword delegates the change to the store, which re-verifies the
// current password. Any store rejection surfaces as a generic failure.
func (s *AuthService) UpdatePassword(ctx context.Context, id, current, newPassword string) error {
	if id == "" || current == "" || newPassword == "" {
		return fmt.Errorf("%w: id, current password, and new password are required", domain.ErrInvalidInput)
	}

	user, err := s.findActiveByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.ChangePassword(ctx, user, current, newPassword); err != nil {
		return domain.ErrOperationFailed
	}
	if err := s.store.Update(ctx, user); err != nil {
		return err
	}
	return nil
}

// UpdateEmailAndPassword changes both in one operation: the password change
// fails generically, while validation errors from the final update are
// propagated as-is.
func (s *AuthService) UpdateEmailAndPassword(ctx context.Context, id, email, current, newPassword string) error {
	if id == "" || email == "" || current == "" || newPassword == "" {
		return fmt.Errorf("%w: id, email, current password, and new password are required", domain.ErrInvalidInput)
	}

	user, err := s.findActiveByID(ctx, id)
	if err != nil {
		return err
	}

	user.Email = email
	if err := s.store.ChangePassword(ctx, user, current, newPassword); err != nil {
		return domain.ErrOperationFailed
	}
	return s.store.Update(ctx, user)
}

// Delete soft-deletes the user. Deleting an already-deleted or unknown user
// reports not found; the operation never escalates and is irreversible.
func (s *AuthService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}

	user, err := s.findActiveByID(ctx, id)
	if err != nil {
		return err
	}

	user.IsDeleted = true
	return s.store.Update(ctx, user)
}

// ForgotPassword issues a password-reset token for the account with the
// given email. Only existence is checked here — no deleted/confirmed gating.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	resetToken, err := s.store.GeneratePasswordResetToken(ctx, user)
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return resetToken, nil
}

// ResetPassword redeems a reset token and replaces the password.
func (s *AuthService) ResetPassword(ctx context.Context, email, tok, newPassword string) error {
	if email == "" || tok == "" || newPassword == "" {
		return fmt.Errorf("%w: email, token, and new password are required", domain.ErrInvalidInput)
	}

	user, err := s.findActiveByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.store.ResetPassword(ctx, user, tok, newPassword)
}

func (s *AuthService) findActiveByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.IsDeleted {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *AuthService) findActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.IsDeleted {
		return nil, domain.ErrNotFound
	}
	return user, nil
}
