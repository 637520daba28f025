package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zachmicha/inno-shop/internal/domain"
)

// TokenRepository implements domain.ActionTokenRepository using SQLite.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new SQLite-backed TokenRepository.
func NewTokenRepository(db *DB) *TokenRepository {
	return &TokenRepository{db: db.SqlDB}
}

func (r *TokenRepository) Create(ctx context.Context, token *domain.ActionToken) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO action_tokens (user_id, purpose, token_hash, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		token.UserID, token.Purpose, token.TokenHash, token.ExpiresAt.UTC(), now,
	)
	if err != nil {
		return fmt.Errorf("insert action token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	token.ID = id
	token.CreatedAt = now
	return nil
}

func (r *TokenRepository) GetByHash(ctx context.Context, userID string, purpose domain.TokenPurpose, hash string) (*domain.ActionToken, error) {
	token := &domain.ActionToken{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, purpose, token_hash, expires_at, created_at
		 FROM action_tokens WHERE user_id = ? AND purpose = ? AND token_hash = ?`,
		userID, purpose, hash,
	).Scan(&token.ID, &token.UserID, &token.Purpose, &token.TokenHash, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query action token: %w", err)
	}
	return token, nil
}

func (r *TokenRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM action_tokens WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete action token: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteForUser(ctx context.Context, userID string, purpose domain.TokenPurpose) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM action_tokens WHERE user_id = ? AND purpose = ?`, userID, purpose,
	); err != nil {
		return fmt.Errorf("delete action tokens for user: %w", err)
	}
	return nil
}
