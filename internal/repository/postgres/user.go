package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/zachmicha/inno-shop/internal/domain"
)

// UserRepository implements domain.UserRepository using Postgres.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new Postgres-backed UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, user_name, email, password_hash, email_confirmed, is_deleted, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.UserName, user.Email, user.PasswordHash, user.EmailConfirmed, user.IsDeleted, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_name, email, password_hash, email_confirmed, is_deleted, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.UserName, &user.Email, &user.PasswordHash,
		&user.EmailConfirmed, &user.IsDeleted, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user := &domain.User{}
	// Active rows win over soft-deleted rows sharing the address.
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_name, email, password_hash, email_confirmed, is_deleted, created_at, updated_at
		 FROM users WHERE email = $1 ORDER BY is_deleted LIMIT 1`, email,
	).Scan(&user.ID, &user.UserName, &user.Email, &user.PasswordHash,
		&user.EmailConfirmed, &user.IsDeleted, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET user_name = $1, email = $2, password_hash = $3, email_confirmed = $4, is_deleted = $5, updated_at = $6
		 WHERE id = $7`,
		user.UserName, user.Email, user.PasswordHash, user.EmailConfirmed, user.IsDeleted, now, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("update user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	user.UpdatedAt = now
	return nil
}

// isUniqueViolation checks for a Postgres unique constraint violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
