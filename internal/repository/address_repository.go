package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shoe-storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrAddressNotFound = errors.New("address not found")
)

const addressColumns = `id, user_id, title, full_name, phone, address, city, postal_code, is_default, created_at`

// AddressRepository defines the interface for a user's address book.
// Every method is scoped to the owning user.
type AddressRepository interface {
	Create(ctx context.Context, address *domain.Address) error
	Update(ctx context.Context, address *domain.Address) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Address, error)
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error)
	// SetDefault clears the current default and marks id. It must run
	// inside a transaction to keep a single default per user.
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
}

type addressRepository struct {
	conn
}

// NewAddressRepository creates a new instance of AddressRepository
func NewAddressRepository(db *sqlx.DB) AddressRepository {
	return &addressRepository{conn{db: db}}
}

func (r *addressRepository) Create(ctx context.Context, address *domain.Address) error {
	query := `
		INSERT INTO addresses (` + addressColumns + `)
		VALUES (:id, :user_id, :title, :full_name, :phone, :address, :city, :postal_code, :is_default, :created_at)
	`

	if _, err := r.q(ctx).NamedExecContext(ctx, query, address); err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

// Update leaves is_default alone; use SetDefault.
func (r *addressRepository) Update(ctx context.Context, address *domain.Address) error {
	result, err := r.q(ctx).NamedExecContext(ctx, `
		UPDATE addresses
		SET title = :title, full_name = :full_name, phone = :phone, address = :address,
		    city = :city, postal_code = :postal_code
		WHERE id = :id AND user_id = :user_id
	`, address)
	if err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}
	return requireAffected(result, ErrAddressNotFound)
}

func (r *addressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.q(ctx).ExecContext(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return requireAffected(result, ErrAddressNotFound)
}

func (r *addressRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*domain.Address, error) {
	address := &domain.Address{}
	err := r.q(ctx).GetContext(ctx, address,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to find address by ID: %w", err)
	}
	return address, nil
}

// List returns the default address first, then the rest oldest first.
func (r *addressRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	addresses := []*domain.Address{}
	err := r.q(ctx).SelectContext(ctx, &addresses, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at ASC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

func (r *addressRepository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	db := r.q(ctx)

	if _, err := db.ExecContext(ctx,
		`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default AND id <> $2`, userID, id); err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE addresses SET is_default = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to set default address: %w", err)
	}
	return requireAffected(result, ErrAddressNotFound)
}
