package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotConfirmed  = errors.New("email is not confirmed")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrOperationFailed    = errors.New("operation failed")
)
