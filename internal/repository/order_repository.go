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
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderStatusConflict means the order left the expected state
	// between read and write.
	ErrOrderStatusConflict = errors.New("order status changed concurrently")
)

const orderColumns = `id, user_id, user_info, items, delivery_details, payment, subtotal, delivery_fee, total,
	status, cancellation_reason, created_at, confirmed_at, delivered_at, cancelled_at`

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	// List returns all orders, or only those in status when it is non-empty.
	List(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
	// UpdateStatus applies change only if the order is still in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from domain.OrderStatus, change domain.StatusChange) error
}

type orderRow struct {
	ID                 uuid.UUID                          `db:"id"`
	UserID             uuid.UUID                          `db:"user_id"`
	UserInfo           jsonColumn[domain.UserInfo]        `db:"user_info"`
	Items              jsonColumn[[]domain.OrderItem]     `db:"items"`
	DeliveryDetails    jsonColumn[domain.DeliveryDetails] `db:"delivery_details"`
	Payment            jsonColumn[domain.Payment]         `db:"payment"`
	Subtotal           float64                            `db:"subtotal"`
	DeliveryFee        float64                            `db:"delivery_fee"`
	Total              float64                            `db:"total"`
	Status             string                             `db:"status"`
	CancellationReason string                             `db:"cancellation_reason"`
	CreatedAt          time.Time                          `db:"created_at"`
	ConfirmedAt        *time.Time                         `db:"confirmed_at"`
	DeliveredAt        *time.Time                         `db:"delivered_at"`
	CancelledAt        *time.Time                         `db:"cancelled_at"`
}

func newOrderRow(o *domain.Order) orderRow {
	return orderRow{
		ID:                 o.ID,
		UserID:             o.UserID,
		UserInfo:           jsonColumn[domain.UserInfo]{V: o.UserInfo},
		Items:              jsonColumn[[]domain.OrderItem]{V: lo.Ternary(o.Items == nil, []domain.OrderItem{}, o.Items)},
		DeliveryDetails:    jsonColumn[domain.DeliveryDetails]{V: o.DeliveryDetails},
		Payment:            jsonColumn[domain.Payment]{V: o.Payment},
		Subtotal:           o.Subtotal,
		DeliveryFee:        o.DeliveryFee,
		Total:              o.Total,
		Status:             string(o.Status),
		CancellationReason: o.CancellationReason,
		CreatedAt:          o.CreatedAt,
		ConfirmedAt:        o.ConfirmedAt,
		DeliveredAt:        o.DeliveredAt,
		CancelledAt:        o.CancelledAt,
	}
}

func (r orderRow) toDomain() *domain.Order {
	return &domain.Order{
		ID:                 r.ID,
		UserID:             r.UserID,
		UserInfo:           r.UserInfo.V,
		Items:              lo.Ternary(r.Items.V == nil, []domain.OrderItem{}, r.Items.V),
		DeliveryDetails:    r.DeliveryDetails.V,
		Payment:            r.Payment.V,
		Subtotal:           r.Subtotal,
		DeliveryFee:        r.DeliveryFee,
		Total:              r.Total,
		Status:             domain.OrderStatus(r.Status),
		CancellationReason: r.CancellationReason,
		CreatedAt:          r.CreatedAt,
		ConfirmedAt:        r.ConfirmedAt,
		DeliveredAt:        r.DeliveredAt,
		CancelledAt:        r.CancelledAt,
	}
}

type orderRepository struct {
	conn
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sqlx.DB) OrderRepository {
	return &orderRepository{conn{db: db}}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES (:id, :user_id, :user_info, :items, :delivery_details, :payment, :subtotal, :delivery_fee, :total,
			:status, :cancellation_reason, :created_at, :confirmed_at, :delivered_at, :cancelled_at)
	`

	if _, err := r.q(ctx).NamedExecContext(ctx, query, newOrderRow(order)); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var row orderRow
	err := r.q(ctx).GetContext(ctx, &row, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}
	return row.toDomain(), nil
}

// ListByUser returns the user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	var rows []orderRow
	err := r.q(ctx).SelectContext(ctx, &rows, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}
	return toOrders(rows), nil
}

func (r *orderRepository) List(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	var rows []orderRow
	err := r.q(ctx).SelectContext(ctx, &rows, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC, id
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return toOrders(rows), nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from domain.OrderStatus, change domain.StatusChange) error {
	var column string
	switch change.Status {
	case domain.OrderStatusConfirmed:
		column = "confirmed_at"
	case domain.OrderStatusDelivered:
		column = "delivered_at"
	case domain.OrderStatusCancelled:
		column = "cancelled_at"
	default:
		return fmt.Errorf("unsupported target status %q", change.Status)
	}

	query := fmt.Sprintf(`
		UPDATE orders
		SET status = $3, %s = $4, cancellation_reason = $5
		WHERE id = $1 AND status = $2
	`, column)

	result, err := r.q(ctx).ExecContext(ctx, query, id, string(from), string(change.Status), change.At, change.Reason)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrOrderStatusConflict
	}
	return nil
}

func toOrders(rows []orderRow) []*domain.Order {
	return lo.Map(rows, func(r orderRow, _ int) *domain.Order { return r.toDomain() })
}
