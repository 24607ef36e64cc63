package service

import (
	"context"
	"errors"
	"time"

	"shoe-storefront/internal/domain"
	"shoe-storefront/internal/pricing"
	"shoe-storefront/internal/repository"

	"github.com/google/uuid"
)

type AddToBasketInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,gte=1,lte=99"`
	Size      string    `json:"size" validate:"max=64"`
}

// BasketView is a basket with its totals.
type BasketView struct {
	Items     []domain.BasketItem `json:"items"`
	Summary   pricing.Summary     `json:"summary"`
	Formatted map[string]string   `json:"formatted"`
}

// BasketService manages the shopper's basket. Every mutation returns the
// whole basket so clients never recompute totals.
type BasketService interface {
	Get(ctx context.Context, userID uuid.UUID) (*BasketView, error)
	Add(ctx context.Context, userID uuid.UUID, input AddToBasketInput) (*BasketView, error)
	SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*BasketView, error)
	Increment(ctx context.Context, userID, productID uuid.UUID) (*BasketView, error)
	Decrement(ctx context.Context, userID, productID uuid.UUID) (*BasketView, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) (*BasketView, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type basketService struct {
	basket   repository.BasketRepository
	products repository.ProductRepository
}

func NewBasketService(basket repository.BasketRepository, products repository.ProductRepository) BasketService {
	return &basketService{basket: basket, products: products}
}

func (s *basketService) Get(ctx context.Context, userID uuid.UUID) (*BasketView, error) {
	items, err := s.basket.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newBasketView(items), nil
}

// Add snapshots the product into the basket. Adding a product already in
// the basket increases its quantity.
func (s *basketService) Add(ctx context.Context, userID uuid.UUID, input AddToBasketInput) (*BasketView, error) {
	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductUnavailable
	}

	item := &domain.BasketItem{
		UserID:    userID,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.EffectivePrice(),
		Image:     product.Thumbnail(),
		Color:     product.Color,
		Size:      input.Size,
		Quantity:  pricing.ClampQuantity(input.Quantity),
		AddedAt:   time.Now().UTC(),
	}

	if _, err := s.basket.Add(ctx, item); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *basketService) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*BasketView, error) {
	if quantity < pricing.MinQuantity {
		return nil, ErrInvalidQuantity
	}
	if err := s.basket.SetQuantity(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *basketService) Increment(ctx context.Context, userID, productID uuid.UUID) (*BasketView, error) {
	item, err := s.basket.Find(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	return s.SetQuantity(ctx, userID, productID, pricing.IncrementQuantity(item.Quantity))
}

// Decrement lowers the quantity by one. At quantity 1 nothing is written.
func (s *basketService) Decrement(ctx context.Context, userID, productID uuid.UUID) (*BasketView, error) {
	item, err := s.basket.Find(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	next, ok := pricing.DecrementQuantity(item.Quantity)
	if !ok {
		return s.Get(ctx, userID)
	}
	return s.SetQuantity(ctx, userID, productID, next)
}

func (s *basketService) Remove(ctx context.Context, userID, productID uuid.UUID) (*BasketView, error) {
	if err := s.basket.Remove(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *basketService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.basket.Clear(ctx, userID)
}

func newBasketView(items []domain.BasketItem) *BasketView {
	if items == nil {
		items = []domain.BasketItem{}
	}
	summary := pricing.BasketTotals(items)
	return &BasketView{
		Items:     items,
		Summary:   summary,
		Formatted: summary.Formatted(),
	}
}
