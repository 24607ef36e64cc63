package transport

import (
	"net/http"

	"shoe-storefront/internal/checkout"
	"shoe-storefront/internal/domain"
	"shoe-storefront/internal/middleware"
	"shoe-storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CancelOrderRequest carries the mandatory cancellation reason, either one
// of domain.CancellationReasons or free text.
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// OrderHandler serves checkout, the shopper's orders and the admin order table.
type OrderHandler struct {
	orders service.OrderService
	logger *zap.Logger
}

func NewOrderHandler(orders service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// RegisterRoutes mounts the shopper endpoints. Checkout runs behind limiter.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware, limiter func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.With(limiter).Post("/", h.Checkout)
		r.Get("/", h.ListMyOrders)
		r.Get("/{id}", h.GetMyOrder)
	})
}

// RegisterAdminRoutes mounts the order table under an admin router.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/cancellation-reasons", h.CancellationReasons)
	r.Get("/orders/{id}", h.GetOrder)
	r.Post("/orders/{id}/confirm", h.ConfirmOrder)
	r.Post("/orders/{id}/deliver", h.DeliverOrder)
	r.Post("/orders/{id}/cancel", h.CancelOrder)
}

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	// Field rules live in checkout.Validate so every problem is reported at once.
	var form checkout.Form
	if !decodeRequest(w, r, h.logger, &form) {
		return
	}

	order, err := h.orders.Checkout(r.Context(), userID, form)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListMine(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetMyOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetMine(r.Context(), userID, orderID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid status")
		return
	}

	orders, err := h.orders.List(r.Context(), status)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) CancellationReasons(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, domain.CancellationReasons)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orders.Get(r.Context(), orderID)
	h.respondOrder(w, r, order, err)
}

func (h *OrderHandler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orders.Confirm(r.Context(), orderID)
	h.respondOrder(w, r, order, err)
}

func (h *OrderHandler) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orders.Deliver(r.Context(), orderID)
	h.respondOrder(w, r, order, err)
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req CancelOrderRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	order, err := h.orders.Cancel(r.Context(), orderID, req.Reason)
	h.respondOrder(w, r, order, err)
}

func (h *OrderHandler) respondOrder(w http.ResponseWriter, r *http.Request, order *service.OrderView, err error) {
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}
