package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Schema creates the table used by PostgresStore
const Schema = `CREATE TABLE IF NOT EXISTS session_store (
	profile    TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (profile, key)
)`

const (
	selectTokenQuery = `SELECT value FROM session_store WHERE profile = $1 AND key = $2`
	upsertTokenQuery = `INSERT INTO session_store (profile, key, value, updated_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (profile, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteTokenQuery = `DELETE FROM session_store WHERE profile = $1 AND key = $2`
)

// PostgresStore persists the token in a profile/key/value table
type PostgresStore struct {
	db      *sqlx.DB
	profile string
}

// NewPostgresStore creates a Postgres-backed store for profile
func NewPostgresStore(db *sqlx.DB, profile string) *PostgresStore {
	return &PostgresStore{db: db, profile: profile}
}

// Migrate creates the session table if needed
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create session table: %w", err)
	}
	return nil
}

// Read returns the persisted token
func (p *PostgresStore) Read(ctx context.Context) (string, bool, error) {
	var token string
	err := p.db.GetContext(ctx, &token, selectTokenQuery, p.profile, TokenKey)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session token: %w", err)
	}

	return token, token != "", nil
}

// Write persists the token
func (p *PostgresStore) Write(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	if _, err := p.db.ExecContext(ctx, upsertTokenQuery, p.profile, TokenKey, token, time.Now()); err != nil {
		return fmt.Errorf("failed to write session token: %w", err)
	}
	return nil
}

// Clear removes the persisted token
func (p *PostgresStore) Clear(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, deleteTokenQuery, p.profile, TokenKey); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	return nil
}
