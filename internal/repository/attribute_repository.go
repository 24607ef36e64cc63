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
	ErrColorNotFound     = errors.New("color not found")
	ErrSizeNotFound      = errors.New("size not found")
	ErrSizeAlreadyExists = errors.New("size with this value already exists")
)

// ColorRepository defines the interface for the colour palette
type ColorRepository interface {
	Create(ctx context.Context, color *domain.Color) error
	Update(ctx context.Context, color *domain.Color) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Color, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Color, error)
}

// SizeRepository defines the interface for the size list
type SizeRepository interface {
	Create(ctx context.Context, size *domain.Size) error
	Update(ctx context.Context, size *domain.Size) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Size, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Size, error)
}

type colorRepository struct {
	conn
}

// NewColorRepository creates a new instance of ColorRepository
func NewColorRepository(db *sqlx.DB) ColorRepository {
	return &colorRepository{conn{db: db}}
}

func (r *colorRepository) Create(ctx context.Context, color *domain.Color) error {
	query := `
		INSERT INTO colors (id, name, code, is_active, created_at)
		VALUES (:id, :name, :code, :is_active, :created_at)
	`

	if _, err := r.q(ctx).NamedExecContext(ctx, query, color); err != nil {
		return fmt.Errorf("failed to create color: %w", err)
	}
	return nil
}

func (r *colorRepository) Update(ctx context.Context, color *domain.Color) error {
	result, err := r.q(ctx).NamedExecContext(ctx, `
		UPDATE colors SET name = :name, code = :code, is_active = :is_active WHERE id = :id
	`, color)
	if err != nil {
		return fmt.Errorf("failed to update color: %w", err)
	}
	return requireAffected(result, ErrColorNotFound)
}

func (r *colorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.q(ctx).ExecContext(ctx, `DELETE FROM colors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete color: %w", err)
	}
	return requireAffected(result, ErrColorNotFound)
}

func (r *colorRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Color, error) {
	color := &domain.Color{}
	err := r.q(ctx).GetContext(ctx, color, `SELECT id, name, code, is_active, created_at FROM colors WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrColorNotFound
		}
		return nil, fmt.Errorf("failed to find color by ID: %w", err)
	}
	return color, nil
}

func (r *colorRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Color, error) {
	colors := []*domain.Color{}
	err := r.q(ctx).SelectContext(ctx, &colors, `
		SELECT id, name, code, is_active, created_at
		FROM colors
		WHERE is_active OR NOT $1
		ORDER BY name ASC, id
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list colors: %w", err)
	}
	return colors, nil
}

type sizeRepository struct {
	conn
}

// NewSizeRepository creates a new instance of SizeRepository
func NewSizeRepository(db *sqlx.DB) SizeRepository {
	return &sizeRepository{conn{db: db}}
}

func (r *sizeRepository) Create(ctx context.Context, size *domain.Size) error {
	query := `
		INSERT INTO sizes (id, value, is_active, created_at)
		VALUES (:id, :value, :is_active, :created_at)
	`

	if _, err := r.q(ctx).NamedExecContext(ctx, query, size); err != nil {
		if isUniqueViolation(err) {
			return ErrSizeAlreadyExists
		}
		return fmt.Errorf("failed to create size: %w", err)
	}
	return nil
}

func (r *sizeRepository) Update(ctx context.Context, size *domain.Size) error {
	result, err := r.q(ctx).NamedExecContext(ctx, `
		UPDATE sizes SET value = :value, is_active = :is_active WHERE id = :id
	`, size)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSizeAlreadyExists
		}
		return fmt.Errorf("failed to update size: %w", err)
	}
	return requireAffected(result, ErrSizeNotFound)
}

func (r *sizeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.q(ctx).ExecContext(ctx, `DELETE FROM sizes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete size: %w", err)
	}
	return requireAffected(result, ErrSizeNotFound)
}

func (r *sizeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Size, error) {
	size := &domain.Size{}
	err := r.q(ctx).GetContext(ctx, size, `SELECT id, value, is_active, created_at FROM sizes WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSizeNotFound
		}
		return nil, fmt.Errorf("failed to find size by ID: %w", err)
	}
	return size, nil
}

// List orders sizes numerically where the value is a number.
func (r *sizeRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Size, error) {
	sizes := []*domain.Size{}
	err := r.q(ctx).SelectContext(ctx, &sizes, `
		SELECT id, value, is_active, created_at
		FROM sizes
		WHERE is_active OR NOT $1
		ORDER BY
			CASE WHEN value ~ '^[0-9]+(\.[0-9]+)?$' THEN value::numeric END ASC NULLS LAST,
			value ASC
	`, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list sizes: %w", err)
	}
	return sizes, nil
}
