package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shoe-storefront/internal/checkout"
	"shoe-storefront/internal/domain"
	"shoe-storefront/internal/events"
	"shoe-storefront/internal/notify"
	"shoe-storefront/internal/pricing"
	"shoe-storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// OrderView is an order together with the admin actions its status allows.
type OrderView struct {
	*domain.Order
	AllowedActions []string          `json:"allowedActions"`
	Formatted      map[string]string `json:"formatted"`
}

type OrderService interface {
	// Checkout turns the shopper's basket into a pending order.
	Checkout(ctx context.Context, userID uuid.UUID, form checkout.Form) (*OrderView, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]*OrderView, error)
	GetMine(ctx context.Context, userID, orderID uuid.UUID) (*OrderView, error)

	List(ctx context.Context, status domain.OrderStatus) ([]*OrderView, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderView, error)
	Confirm(ctx context.Context, orderID uuid.UUID) (*OrderView, error)
	Deliver(ctx context.Context, orderID uuid.UUID) (*OrderView, error)
	Cancel(ctx context.Context, orderID uuid.UUID, reason string) (*OrderView, error)
}

type orderService struct {
	orders    repository.OrderRepository
	basket    repository.BasketRepository
	addresses repository.AddressRepository
	users     repository.UserRepository
	tx        repository.Transactor
	notifier  notify.Notifier
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	basket repository.BasketRepository,
	addresses repository.AddressRepository,
	users repository.UserRepository,
	tx repository.Transactor,
	notifier notify.Notifier,
	publisher events.Publisher,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orders:    orders,
		basket:    basket,
		addresses: addresses,
		users:     users,
		tx:        tx,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *orderService) Checkout(ctx context.Context, userID uuid.UUID, form checkout.Form) (*OrderView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if errs := checkout.Validate(form, user.PhoneNumber); len(errs) > 0 {
		return nil, errs
	}

	address, err := s.lookupAddress(ctx, userID, form.AddressID)
	if err != nil {
		return nil, err
	}

	items, err := s.basket.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyBasket
	}

	phone := form.EffectivePhone(user.PhoneNumber)
	summary := pricing.BasketTotals(items)

	order := &domain.Order{
		ID:     uuid.New(),
		UserID: userID,
		UserInfo: domain.UserInfo{
			DisplayName: user.DisplayName,
			Email:       user.Email,
			PhoneNumber: phone,
		},
		Items: lo.Map(items, func(i domain.BasketItem, _ int) domain.OrderItem {
			return domain.OrderItem{
				ProductID: i.ProductID,
				Name:      i.Name,
				Price:     i.Price,
				Quantity:  i.Quantity,
				Image:     i.Image,
				Color:     i.Color,
				Size:      i.Size,
			}
		}),
		DeliveryDetails: domain.DeliveryDetails{
			Address:      *address,
			DeliveryTime: form.DeliveryTime,
			Sizes:        form.SelectedSizes(),
		},
		Payment: domain.Payment{
			Method: form.PaymentMethod,
		},
		Subtotal:    summary.Subtotal,
		DeliveryFee: summary.DeliveryFee,
		Total:       summary.Total,
		Status:      domain.OrderStatusPending,
		CreatedAt:   s.now(),
	}
	if form.PaymentMethod == domain.PaymentMethodCash && form.CashAmount != nil {
		order.Payment.CashAmount = *form.CashAmount
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
		if err := s.basket.Consume(ctx, userID, items); err != nil {
			return err
		}
		if phone != user.PhoneNumber {
			user.PhoneNumber = phone
			if err := s.users.UpdateProfile(ctx, user); err != nil {
				return fmt.Errorf("failed to save phone number: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total", order.Total),
	)

	if err := s.notifier.OrderCreated(ctx, order); err != nil {
		s.logger.Warn("Failed to send order confirmation", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
	s.publish(ctx, events.TypeOrderCreated, order)

	return newOrderView(order), nil
}

func (s *orderService) lookupAddress(ctx context.Context, userID uuid.UUID, raw string) (*domain.Address, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, checkout.ValidationErrors{checkout.FieldAddress: "Please select a delivery address"}
	}

	address, err := s.addresses.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return nil, checkout.ValidationErrors{checkout.FieldAddress: "Please select a delivery address"}
		}
		return nil, err
	}
	return address, nil
}

func (s *orderService) ListMine(ctx context.Context, userID uuid.UUID) ([]*OrderView, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return lo.Map(orders, func(o *domain.Order, _ int) *OrderView { return newOrderView(o) }), nil
}

// GetMine hides orders of other users behind ErrOrderNotFound.
func (s *orderService) GetMine(ctx context.Context, userID, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return newOrderView(order), nil
}

func (s *orderService) List(ctx context.Context, status domain.OrderStatus) ([]*OrderView, error) {
	orders, err := s.orders.List(ctx, status)
	if err != nil {
		return nil, err
	}
	return lo.Map(orders, func(o *domain.Order, _ int) *OrderView { return newOrderView(o) }), nil
}

func (s *orderService) Get(ctx context.Context, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return newOrderView(order), nil
}

func (s *orderService) Confirm(ctx context.Context, orderID uuid.UUID) (*OrderView, error) {
	return s.transition(ctx, orderID, domain.OrderStatusConfirmed, "")
}

func (s *orderService) Deliver(ctx context.Context, orderID uuid.UUID) (*OrderView, error) {
	return s.transition(ctx, orderID, domain.OrderStatusDelivered, "")
}

func (s *orderService) Cancel(ctx context.Context, orderID uuid.UUID, reason string) (*OrderView, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrCancellationReasonRequired
	}
	return s.transition(ctx, orderID, domain.OrderStatusCancelled, reason)
}

func (s *orderService) transition(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus, reason string) (*OrderView, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	change := domain.StatusChange{Status: to, Reason: reason, At: s.now()}
	if err := s.orders.UpdateStatus(ctx, orderID, from, change); err != nil {
		return nil, err
	}
	applyStatusChange(order, change)

	s.logger.Info("Order status changed",
		zap.String("order_id", orderID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	if err := s.notifier.OrderStatusChanged(ctx, order); err != nil {
		s.logger.Warn("Failed to send status update", zap.String("order_id", orderID.String()), zap.Error(err))
	}
	s.publish(ctx, events.TypeOrderStatusChanged, order)

	return newOrderView(order), nil
}

func (s *orderService) publish(ctx context.Context, eventType string, order *domain.Order) {
	if err := s.publisher.Publish(ctx, events.NewOrderEvent(eventType, order, s.now())); err != nil {
		s.logger.Warn("Failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

func applyStatusChange(order *domain.Order, change domain.StatusChange) {
	at := change.At
	order.Status = change.Status
	switch change.Status {
	case domain.OrderStatusConfirmed:
		order.ConfirmedAt = &at
	case domain.OrderStatusDelivered:
		order.DeliveredAt = &at
	case domain.OrderStatusCancelled:
		order.CancelledAt = &at
		order.CancellationReason = change.Reason
	}
}

func newOrderView(order *domain.Order) *OrderView {
	summary := pricing.Summary{Subtotal: order.Subtotal, DeliveryFee: order.DeliveryFee, Total: order.Total}
	return &OrderView{
		Order:          order,
		AllowedActions: order.Status.AllowedActions(),
		Formatted:      summary.Formatted(),
	}
}
