package repository

import (
	"context"
	"errors"
	"fmt"

	"shoe-storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrWishlistItemNotFound = errors.New("wishlist item not found")
)

// WishlistRepository defines the interface for saved products
type WishlistRepository interface {
	// Add is idempotent and reports whether a new row was written.
	Add(ctx context.Context, item *domain.WishlistItem) (bool, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]domain.WishlistItem, error)
}

type wishlistRepository struct {
	conn
}

// NewWishlistRepository creates a new instance of WishlistRepository
func NewWishlistRepository(db *sqlx.DB) WishlistRepository {
	return &wishlistRepository{conn{db: db}}
}

func (r *wishlistRepository) Add(ctx context.Context, item *domain.WishlistItem) (bool, error) {
	result, err := r.q(ctx).NamedExecContext(ctx, `
		INSERT INTO wishlist_items (user_id, product_id, created_at)
		VALUES (:user_id, :product_id, :created_at)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`, item)
	if err != nil {
		return false, fmt.Errorf("failed to add wishlist item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *wishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	result, err := r.q(ctx).ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	return requireAffected(result, ErrWishlistItemNotFound)
}

// List returns the newest items first.
func (r *wishlistRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.WishlistItem, error) {
	items := []domain.WishlistItem{}
	err := r.q(ctx).SelectContext(ctx, &items, `
		SELECT user_id, product_id, created_at
		FROM wishlist_items
		WHERE user_id = $1
		ORDER BY created_at DESC, product_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}
	return items, nil
}
