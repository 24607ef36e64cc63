package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Admin actions on an order.
const (
	OrderActionConfirm = "confirm"
	OrderActionDeliver = "deliver"
	OrderActionCancel  = "cancel"
)

var orderTransitions = map[OrderStatus]map[OrderStatus]string{
	OrderStatusPending: {
		OrderStatusConfirmed: OrderActionConfirm,
		OrderStatusCancelled: OrderActionCancel,
	},
	OrderStatusConfirmed: {
		OrderStatusDelivered: OrderActionDeliver,
	},
}

// CancellationReasons are the canned reasons offered to admins. Any other
// non-empty text is accepted as well.
var CancellationReasons = []string{
	"Out of stock",
	"Customer requested cancellation",
	"Unable to reach customer",
	"Invalid delivery address",
	"Payment not received",
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next directly follows s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	_, ok := orderTransitions[s][next]
	return ok
}

// AllowedActions lists the admin actions available in state s, in a stable order.
func (s OrderStatus) AllowedActions() []string {
	actions := []string{}
	for _, candidate := range []OrderStatus{OrderStatusConfirmed, OrderStatusDelivered, OrderStatusCancelled} {
		if action, ok := orderTransitions[s][candidate]; ok {
			actions = append(actions, action)
		}
	}
	return actions
}

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

// Order is created once at checkout and afterwards changed only through
// admin status actions.
type Order struct {
	ID                 uuid.UUID       `json:"id"`
	UserID             uuid.UUID       `json:"userId"`
	UserInfo           UserInfo        `json:"userInfo"`
	Items              []OrderItem     `json:"items"`
	DeliveryDetails    DeliveryDetails `json:"deliveryDetails"`
	Payment            Payment         `json:"payment"`
	Subtotal           float64         `json:"subtotal"`
	DeliveryFee        float64         `json:"deliveryFee"`
	Total              float64         `json:"total"`
	Status             OrderStatus     `json:"status"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	ConfirmedAt        *time.Time      `json:"confirmedAt,omitempty"`
	DeliveredAt        *time.Time      `json:"deliveredAt,omitempty"`
	CancelledAt        *time.Time      `json:"cancelledAt,omitempty"`
}

// UserInfo is the customer snapshot stored with an order.
type UserInfo struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// OrderItem is a basket line frozen at checkout.
type OrderItem struct {
	ProductID uuid.UUID    `json:"productId"`
	Name      string       `json:"name"`
	Price     Price        `json:"price"`
	Quantity  int          `json:"quantity"`
	Image     string       `json:"image"`
	Color     ProductColor `json:"color"`
	Size      string       `json:"size"`
}

type DeliveryDetails struct {
	Address      Address  `json:"address"`
	DeliveryTime string   `json:"deliveryTime"`
	Sizes        []string `json:"sizes"`
}

type Payment struct {
	Method     PaymentMethod `json:"method"`
	CashAmount Price         `json:"cashAmount,omitempty"`
}

// StatusChange describes an admin status action to persist.
type StatusChange struct {
	Status OrderStatus
	Reason string
	At     time.Time
}
