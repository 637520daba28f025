// Package postgres provides the Postgres-backed implementation of the domain
// repositories, using the pgx stdlib driver. It owns its own embedded
// migrations.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/zachmicha/inno-shop/internal/domain"
	"github.com/zachmicha/inno-shop/internal/repository/postgres/migrations"
)

// DB wraps a Postgres database handle and hands out repositories bound to it.
type DB struct {
	SqlDB *sql.DB
}

// New opens a Postgres database with the given DSN.
func New(dsn string) (*DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{SqlDB: db}, nil
}

// Migrate applies the embedded migrations.
func (d *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, d.SqlDB, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (d *DB) Close() error {
	return d.SqlDB.Close()
}

// Users returns the user repository bound to this database.
func (d *DB) Users() domain.UserRepository {
	return NewUserRepository(d.SqlDB)
}

// Tokens returns the action-token repository bound to this database.
func (d *DB) Tokens() domain.ActionTokenRepository {
	return NewTokenRepository(d.SqlDB)
}
