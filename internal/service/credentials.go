package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/zachmicha/inno-shop/internal/domain"
)

// CredentialService is the credential store: it owns password hashing and
// verification plus generation and redemption of email-confirmation and
// password-reset tokens. Callers only ever see the plaintext token once;
// storage holds a SHA-256 hash.
type CredentialService struct {
	users      domain.UserRepository
	tokens     domain.ActionTokenRepository
	bcryptCost int
	confirmTTL time.Duration
	resetTTL   time.Duration
}

// NewCredentialService creates a CredentialService on top of the given
// repositories.
func NewCredentialService(users domain.UserRepository, tokens domain.ActionTokenRepository, bcryptCost int, confirmTTL, resetTTL time.Duration) *CredentialService {
	return &CredentialService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		confirmTTL: confirmTTL,
		resetTTL:   resetTTL,
	}
}

// CreateUser validates the password policy, hashes the password, and
// persists a new unconfirmed user.
func (s *CredentialService) CreateUser(ctx context.Context, userName, email, password string) (*domain.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		UserName:     userName,
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID returns the user with the given id, soft-deleted or not.
func (s *CredentialService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// FindByEmail returns the user with the given email, preferring an active
// row over a soft-deleted one.
func (s *CredentialService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// CheckPassword reports whether the plaintext password matches the stored hash.
func (s *CredentialService) CheckPassword(user *domain.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// ChangePassword re-verifies the current password and, on success, replaces
// the hash on the user record. The caller persists via Update; a rejected
// change leaves the record untouched.
func (s *CredentialService) ChangePassword(ctx context.Context, user *domain.User, current, newPassword string) error {
	if !s.CheckPassword(user, current) {
		return domain.ErrInvalidCredentials
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return nil
}

// Update persists the given user record.
func (s *CredentialService) Update(ctx context.Context, user *domain.User) error {
	if user.Email != "" {
		if err := validateEmail(user.Email); err != nil {
			return err
		}
	}
	return s.users.Update(ctx, user)
}

// GenerateEmailConfirmationToken issues a fresh confirmation token for the
// user, invalidating any previously issued one.
func (s *CredentialService) GenerateEmailConfirmationToken(ctx context.Context, user *domain.User) (string, error) {
	return s.generateToken(ctx, user, domain.TokenPurposeEmailConfirm, s.confirmTTL)
}

// ConfirmEmail redeems a confirmation token and marks the user's email
// confirmed. Expired and unknown tokens fail identically.
func (s *CredentialService) ConfirmEmail(ctx context.Context, user *domain.User, tok string) error {
	record, err := s.redeemToken(ctx, user, domain.TokenPurposeEmailConfirm, tok)
	if err != nil {
		return err
	}

	user.EmailConfirmed = true
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	return s.tokens.Delete(ctx, record.ID)
}

// GeneratePasswordResetToken issues a fresh reset token for the user,
// invalidating any previously issued one.
func (s *CredentialService) GeneratePasswordResetToken(ctx context.Context, user *domain.User) (string, error) {
	return s.generateToken(ctx, user, domain.TokenPurposePasswordReset, s.resetTTL)
}

// ResetPassword redeems a reset token and replaces the user's password.
func (s *CredentialService) ResetPassword(ctx context.Context, user *domain.User, tok, newPassword string) error {
	record, err := s.redeemToken(ctx, user, domain.TokenPurposePasswordReset, tok)
	if err != nil {
		return err
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	return s.tokens.Delete(ctx, record.ID)
}

func (s *CredentialService) generateToken(ctx context.Context, user *domain.User, purpose domain.TokenPurpose, ttl time.Duration) (string, error) {
	if err := s.tokens.DeleteForUser(ctx, user.ID, purpose); err != nil {
		return "", err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	plaintext := hex.EncodeToString(raw)

	record := &domain.ActionToken{
		UserID:    user.ID,
		Purpose:   purpose,
		TokenHash: hashToken(plaintext),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return "", err
	}
	return plaintext, nil
}

// redeemToken looks up a token by hash and checks its expiry. Both an
// unknown and an expired token surface as ErrInvalidToken.
func (s *CredentialService) redeemToken(ctx context.Context, user *domain.User, purpose domain.TokenPurpose, tok string) (*domain.ActionToken, error) {
	record, err := s.tokens.GetByHash(ctx, user.ID, purpose, hashToken(tok))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if time.Now().After(record.ExpiresAt) {
		// Single-use either way; drop the stale row.
		_ = s.tokens.Delete(ctx, record.ID)
		return nil, domain.ErrInvalidToken
	}
	return record, nil
}

func hashToken(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}
	return nil
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return fmt.Errorf("%w: email %q is not a valid address", domain.ErrInvalidInput, email)
	}
	return nil
}
