package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrContentNotFound = errors.New("content not found")
)

// ContentRepository stores editable site content as JSON documents by key.
type ContentRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	// GetForUpdate is Get after taking a transaction-scoped lock on key, so
	// concurrent read-modify-write cycles on one document run one at a time.
	// Call it inside Transactor.WithinTx; the lock is released on commit or
	// rollback and also covers keys with no stored document yet.
	GetForUpdate(ctx context.Context, key string, dest interface{}) error
	Put(ctx context.Context, key string, value interface{}) error
}

type contentRepository struct {
	conn
}

// NewContentRepository creates a new instance of ContentRepository
func NewContentRepository(db *sqlx.DB) ContentRepository {
	return &contentRepository{conn{db: db}}
}

// Get decodes the document stored under key into dest.
func (r *contentRepository) Get(ctx context.Context, key string, dest interface{}) error {
	var raw []byte
	err := r.q(ctx).GetContext(ctx, &raw, `SELECT value FROM site_content WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrContentNotFound
		}
		return fmt.Errorf("failed to load content %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to decode content %q: %w", key, err)
	}
	return nil
}

func (r *contentRepository) GetForUpdate(ctx context.Context, key string, dest interface{}) error {
	if _, err := r.q(ctx).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext('site_content:' || $1))`, key); err != nil {
		return fmt.Errorf("failed to lock content %q: %w", key, err)
	}
	return r.Get(ctx, key, dest)
}

func (r *contentRepository) Put(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode content %q: %w", key, err)
	}

	_, err = r.q(ctx).ExecContext(ctx, `
		INSERT INTO site_content (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store content %q: %w", key, err)
	}
	return nil
}
