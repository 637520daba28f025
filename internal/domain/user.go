package domain

import (
	"context"
	"time"
)

// User represents an identity record. Rows are never physically removed;
// IsDeleted marks a terminal soft delete.
type User struct {
	ID             string
	UserName       string
	Email          string
	PasswordHash   string
	EmailConfirmed bool
	IsDeleted      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserRepository defines persistence operations for users.
//
// GetByID and GetByEmail return soft-deleted rows too: visibility of a
// deleted user is service policy, not a storage concern. GetByEmail prefers
// an active row when a deleted row shares the same address.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}
