package transport

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"shoe-storefront/internal/checkout"
	"shoe-storefront/internal/domain"
	"shoe-storefront/internal/repository"
	"shoe-storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubOrders struct {
	service.OrderService
	orders     map[uuid.UUID]*domain.Order
	checkedOut []checkout.Form
	listedWith domain.OrderStatus
}

func newStubOrders(orders ...*domain.Order) *stubOrders {
	s := &stubOrders{orders: make(map[uuid.UUID]*domain.Order)}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func (s *stubOrders) view(o *domain.Order) *service.OrderView {
	return &service.OrderView{Order: o, AllowedActions: o.Status.AllowedActions()}
}

func (s *stubOrders) Checkout(ctx context.Context, userID uuid.UUID, form checkout.Form) (*service.OrderView, error) {
	if errs := checkout.Validate(form, ""); len(errs) > 0 {
		return nil, errs
	}
	s.checkedOut = append(s.checkedOut, form)
	o := &domain.Order{ID: uuid.New(), UserID: userID, Status: domain.OrderStatusPending, Total: 105}
	s.orders[o.ID] = o
	return s.view(o), nil
}

func (s *stubOrders) List(ctx context.Context, status domain.OrderStatus) ([]*service.OrderView, error) {
	s.listedWith = status
	return []*service.OrderView{}, nil
}

func (s *stubOrders) GetMine(ctx context.Context, userID, orderID uuid.UUID) (*service.OrderView, error) {
	o, ok := s.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return s.view(o), nil
}

func (s *stubOrders) move(orderID uuid.UUID, next domain.OrderStatus) (*service.OrderView, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", service.ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	return s.view(o), nil
}

func (s *stubOrders) Confirm(ctx context.Context, orderID uuid.UUID) (*service.OrderView, error) {
	return s.move(orderID, domain.OrderStatusConfirmed)
}

func (s *stubOrders) Deliver(ctx context.Context, orderID uuid.UUID) (*service.OrderView, error) {
	return s.move(orderID, domain.OrderStatusDelivered)
}

func (s *stubOrders) Cancel(ctx context.Context, orderID uuid.UUID, reason string) (*service.OrderView, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, service.ErrCancellationReasonRequired
	}
	return s.move(orderID, domain.OrderStatusCancelled)
}

func shopperRouter(h *OrderHandler, userID uuid.UUID) chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r, asUser(userID, domain.RoleUser), passThrough)
	return r
}

func adminRouter(h *OrderHandler) chi.Router {
	r := chi.NewRouter()
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(asUser(uuid.New(), domain.RoleAdmin))
		h.RegisterAdminRoutes(r)
	})
	return r
}

func TestOrderHandler_CheckoutCreatesOrder(t *testing.T) {
	orders := newStubOrders()
	userID := uuid.New()
	core, logs := observer.New(zap.InfoLevel)
	r := shopperRouter(NewOrderHandler(orders, zap.New(core)), userID)

	form := checkout.Form{
		AddressID:     uuid.NewString(),
		DeliveryTime:  checkout.DeliveryTimeOptions[0],
		Sizes:         []string{"42"},
		PaymentMethod: domain.PaymentMethodCard,
		PhoneNumber:   "600111222",
		PhoneChoice:   checkout.PhoneUnconfirmed,
	}

	w := doJSON(t, r, http.MethodPost, "/api/orders", form)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var view service.OrderView
	decodeBody(t, w, &view)
	assert.Equal(t, domain.OrderStatusPending, view.Status)
	assert.Equal(t, userID, view.UserID)
	assert.Equal(t, []string{domain.OrderActionConfirm, domain.OrderActionCancel}, view.AllowedActions)
	require.Len(t, orders.checkedOut, 1)
	assert.Zero(t, logs.FilterMessage("Order placed").Len(), "the service logs placed orders")
}

func TestOrderHandler_CheckoutReportsEveryField(t *testing.T) {
	r := shopperRouter(NewOrderHandler(newStubOrders(), zap.NewNop()), uuid.New())

	w := doJSON(t, r, http.MethodPost, "/api/orders", checkout.Form{PaymentMethod: domain.PaymentMethodCash})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var env errorEnvelope
	decodeBody(t, w, &env)
	fields := env.Error.Details["fields"].(map[string]interface{})
	for _, f := range []string{checkout.FieldAddress, checkout.FieldDeliveryTime, checkout.FieldSizes, checkout.FieldCashAmount, checkout.FieldPhoneNumber} {
		assert.Contains(t, fields, f)
	}
}

func TestOrderHandler_ShopperSeesOnlyOwnOrders(t *testing.T) {
	owner := uuid.New()
	order := &domain.Order{ID: uuid.New(), UserID: owner, Status: domain.OrderStatusPending}
	h := NewOrderHandler(newStubOrders(order), zap.NewNop())

	w := doJSON(t, shopperRouter(h, owner), http.MethodGet, "/api/orders/"+order.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, shopperRouter(h, uuid.New()), http.MethodGet, "/api/orders/"+order.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHandler_AdminLifecycle(t *testing.T) {
	order := &domain.Order{ID: uuid.New(), Status: domain.OrderStatusPending}
	r := adminRouter(NewOrderHandler(newStubOrders(order), zap.NewNop()))
	base := "/api/admin/orders/" + order.ID.String()

	w := doJSON(t, r, http.MethodPost, base+"/deliver", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "pending orders cannot be delivered")

	w = doJSON(t, r, http.MethodPost, base+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view service.OrderView
	decodeBody(t, w, &view)
	assert.Equal(t, []string{domain.OrderActionDeliver}, view.AllowedActions)

	w = doJSON(t, r, http.MethodPost, base+"/cancel", CancelOrderRequest{Reason: domain.CancellationReasons[0]})
	assert.Equal(t, http.StatusConflict, w.Code, "confirmed orders cannot be cancelled")

	w = doJSON(t, r, http.MethodPost, base+"/deliver", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.OrderStatusDelivered, order.Status)
}

func TestOrderHandler_CancelNeedsReason(t *testing.T) {
	order := &domain.Order{ID: uuid.New(), Status: domain.OrderStatusPending}
	r := adminRouter(NewOrderHandler(newStubOrders(order), zap.NewNop()))
	path := "/api/admin/orders/" + order.ID.String() + "/cancel"

	w := doJSON(t, r, http.MethodPost, path, CancelOrderRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, path, CancelOrderRequest{Reason: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.OrderStatusPending, order.Status)

	w = doJSON(t, r, http.MethodPost, path, CancelOrderRequest{Reason: "customer moved abroad"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
}

func TestOrderHandler_StatusFilter(t *testing.T) {
	orders := newStubOrders()
	r := adminRouter(NewOrderHandler(orders, zap.NewNop()))

	w := doJSON(t, r, http.MethodGet, "/api/admin/orders?status=confirmed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.OrderStatusConfirmed, orders.listedWith)

	w = doJSON(t, r, http.MethodGet, "/api/admin/orders?status=shipped", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/admin/orders/cancellation-reasons", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reasons []string
	decodeBody(t, w, &reasons)
	assert.Equal(t, domain.CancellationReasons, reasons)
}
