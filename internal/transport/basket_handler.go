package transport

import (
	"net/http"

	"shoe-storefront/internal/middleware"
	"shoe-storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SetQuantityRequest replaces the quantity of a basket line.
type SetQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1,lte=99"`
}

// WishlistRequest adds a product to the wishlist.
type WishlistRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
}

// WishlistToggleResponse reports whether the product is now wishlisted.
type WishlistToggleResponse struct {
	ProductID  uuid.UUID `json:"productId"`
	Wishlisted bool      `json:"wishlisted"`
}

// BasketHandler serves the shopper's basket and wishlist.
type BasketHandler struct {
	basket   service.BasketService
	wishlist service.WishlistService
	logger   *zap.Logger
}

func NewBasketHandler(basket service.BasketService, wishlist service.WishlistService, logger *zap.Logger) *BasketHandler {
	return &BasketHandler{basket: basket, wishlist: wishlist, logger: logger}
}

func (h *BasketHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/basket", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetBasket)
		r.Post("/", h.AddToBasket)
		r.Delete("/", h.ClearBasket)
		r.Put("/{productId}", h.SetQuantity)
		r.Delete("/{productId}", h.RemoveFromBasket)
		r.Post("/{productId}/increment", h.Increment)
		r.Post("/{productId}/decrement", h.Decrement)
	})

	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListWishlist)
		r.Post("/", h.AddToWishlist)
		r.Delete("/{productId}", h.RemoveFromWishlist)
		r.Post("/{productId}/toggle", h.ToggleWishlist)
	})
}

func (h *BasketHandler) GetBasket(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	view, err := h.basket.Get(r.Context(), userID)
	h.respondBasket(w, r, view, err)
}

func (h *BasketHandler) AddToBasket(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req service.AddToBasketInput
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	view, err := h.basket.Add(r.Context(), userID, req)
	h.respondBasket(w, r, view, err)
}

func (h *BasketHandler) ClearBasket(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.basket.Clear(r.Context(), userID); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BasketHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	userID, productID, ok := basketLine(w, r)
	if !ok {
		return
	}

	var req SetQuantityRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	view, err := h.basket.SetQuantity(r.Context(), userID, productID, req.Quantity)
	h.respondBasket(w, r, view, err)
}

func (h *BasketHandler) RemoveFromBasket(w http.ResponseWriter, r *http.Request) {
	userID, productID, ok := basketLine(w, r)
	if !ok {
		return
	}

	view, err := h.basket.Remove(r.Context(), userID, productID)
	h.respondBasket(w, r, view, err)
}

func (h *BasketHandler) Increment(w http.ResponseWriter, r *http.Request) {
	userID, productID, ok := basketLine(w, r)
	if !ok {
		return
	}

	view, err := h.basket.Increment(r.Context(), userID, productID)
	h.respondBasket(w, r, view, err)
}

func (h *BasketHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	userID, productID, ok := basketLine(w, r)
	if !ok {
		return
	}

	view, err := h.basket.Decrement(r.Context(), userID, productID)
	h.respondBasket(w, r, view, err)
}

func (h *BasketHandler) ListWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	entries, err := h.wishlist.List(r.Context(), userID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, entries)
}

func (h *BasketHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req WishlistRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	if err := h.wishlist.Add(r.Context(), userID, req.ProductID); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, WishlistToggleResponse{ProductID: req.ProductID, Wishlisted: true})
}

func (h *BasketHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, productID, ok := basketLine(w, r)
	if !ok {
		return
	}

	if err := h.wishlist.Remove(r.Context(), userID, productID); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BasketHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request) {
	userID, productID, ok := basketLine(w, r)
	if !ok {
		return
	}

	wishlisted, err := h.wishlist.Toggle(r.Context(), userID, productID)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, WishlistToggleResponse{ProductID: productID, Wishlisted: wishlisted})
}

func (h *BasketHandler) respondBasket(w http.ResponseWriter, r *http.Request, view *service.BasketView, err error) {
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// basketLine reads the caller and the {productId} path parameter.
func basketLine(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := currentUser(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, productID, true
}
