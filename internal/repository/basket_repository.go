package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shoe-storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

var (
	ErrBasketItemNotFound = errors.New("basket item not found")
)

const basketColumns = `user_id, product_id, name, price, image, color_name, color_code, size, quantity, added_at`

// BasketRepository stores basket lines keyed by (user, product).
type BasketRepository interface {
	// Add inserts the line or, when the product is already in the basket,
	// adds item.Quantity to the stored quantity. The snapshot fields of an
	// existing line are kept.
	Add(ctx context.Context, item *domain.BasketItem) (*domain.BasketItem, error)
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	Find(ctx context.Context, userID, productID uuid.UUID) (*domain.BasketItem, error)
	List(ctx context.Context, userID uuid.UUID) ([]domain.BasketItem, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	// Consume takes items out of the basket by product and quantity. Lines
	// added or topped up after items were read keep the difference.
	Consume(ctx context.Context, userID uuid.UUID, items []domain.BasketItem) error
}

type basketRow struct {
	UserID    uuid.UUID `db:"user_id"`
	ProductID uuid.UUID `db:"product_id"`
	Name      string    `db:"name"`
	Price     float64   `db:"price"`
	Image     string    `db:"image"`
	ColorName string    `db:"color_name"`
	ColorCode string    `db:"color_code"`
	Size      string    `db:"size"`
	Quantity  int       `db:"quantity"`
	AddedAt   time.Time `db:"added_at"`
}

func newBasketRow(item *domain.BasketItem) basketRow {
	return basketRow{
		UserID:    item.UserID,
		ProductID: item.ProductID,
		Name:      item.Name,
		Price:     item.Price.Float(),
		Image:     item.Image,
		ColorName: item.Color.Name,
		ColorCode: item.Color.Code,
		Size:      item.Size,
		Quantity:  item.Quantity,
		AddedAt:   item.AddedAt,
	}
}

func (r basketRow) toDomain() domain.BasketItem {
	return domain.BasketItem{
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Name:      r.Name,
		Price:     domain.Price(r.Price),
		Image:     r.Image,
		Color:     domain.ProductColor{Name: r.ColorName, Code: r.ColorCode},
		Size:      r.Size,
		Quantity:  r.Quantity,
		AddedAt:   r.AddedAt,
	}
}

type basketRepository struct {
	conn
}

// NewBasketRepository creates a new instance of BasketRepository
func NewBasketRepository(db *sqlx.DB) BasketRepository {
	return &basketRepository{conn{db: db}}
}

func (r *basketRepository) Add(ctx context.Context, item *domain.BasketItem) (*domain.BasketItem, error) {
	query, args, err := r.q(ctx).BindNamed(`
		INSERT INTO basket_items (`+basketColumns+`)
		VALUES (:user_id, :product_id, :name, :price, :image, :color_name, :color_code, :size, :quantity, :added_at)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = basket_items.quantity + EXCLUDED.quantity
		RETURNING `+basketColumns, newBasketRow(item))
	if err != nil {
		return nil, fmt.Errorf("failed to bind basket item: %w", err)
	}

	var row basketRow
	if err := r.q(ctx).GetContext(ctx, &row, query, args...); err != nil {
		return nil, fmt.Errorf("failed to add basket item: %w", err)
	}

	stored := row.toDomain()
	return &stored, nil
}

func (r *basketRepository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	result, err := r.q(ctx).ExecContext(ctx,
		`UPDATE basket_items SET quantity = $3 WHERE user_id = $1 AND product_id = $2`,
		userID, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update basket quantity: %w", err)
	}
	return requireAffected(result, ErrBasketItemNotFound)
}

func (r *basketRepository) Find(ctx context.Context, userID, productID uuid.UUID) (*domain.BasketItem, error) {
	var row basketRow
	err := r.q(ctx).GetContext(ctx, &row,
		`SELECT `+basketColumns+` FROM basket_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBasketItemNotFound
		}
		return nil, fmt.Errorf("failed to find basket item: %w", err)
	}

	item := row.toDomain()
	return &item, nil
}

// List returns the lines in the order they were added.
func (r *basketRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.BasketItem, error) {
	var rows []basketRow
	err := r.q(ctx).SelectContext(ctx, &rows, `
		SELECT `+basketColumns+`
		FROM basket_items
		WHERE user_id = $1
		ORDER BY added_at ASC, product_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list basket items: %w", err)
	}

	return lo.Map(rows, func(row basketRow, _ int) domain.BasketItem { return row.toDomain() }), nil
}

func (r *basketRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	result, err := r.q(ctx).ExecContext(ctx,
		`DELETE FROM basket_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove basket item: %w", err)
	}
	return requireAffected(result, ErrBasketItemNotFound)
}

func (r *basketRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.q(ctx).ExecContext(ctx, `DELETE FROM basket_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear basket: %w", err)
	}
	return nil
}

func (r *basketRepository) Consume(ctx context.Context, userID uuid.UUID, items []domain.BasketItem) error {
	for _, item := range items {
		if _, err := r.q(ctx).ExecContext(ctx,
			`DELETE FROM basket_items WHERE user_id = $1 AND product_id = $2 AND quantity <= $3`,
			userID, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("failed to consume basket item: %w", err)
		}
		if _, err := r.q(ctx).ExecContext(ctx,
			`UPDATE basket_items SET quantity = quantity - $3 WHERE user_id = $1 AND product_id = $2 AND quantity > $3`,
			userID, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("failed to consume basket item: %w", err)
		}
	}
	return nil
}
