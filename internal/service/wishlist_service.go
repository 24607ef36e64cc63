package service

import (
	"context"
	"time"

	"shoe-storefront/internal/domain"
	"shoe-storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type WishlistService interface {
	List(ctx context.Context, userID uuid.UUID) ([]domain.WishlistEntry, error)
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	// Toggle adds the product when missing and removes it otherwise. It
	// reports whether the product is in the wishlist afterwards.
	Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type wishlistService struct {
	wishlist repository.WishlistRepository
	products repository.ProductRepository
}

func NewWishlistService(wishlist repository.WishlistRepository, products repository.ProductRepository) WishlistService {
	return &wishlistService{wishlist: wishlist, products: products}
}

// List returns the wishlist newest first. Entries whose product has been
// deleted are dropped.
func (s *wishlistService) List(ctx context.Context, userID uuid.UUID) ([]domain.WishlistEntry, error) {
	items, err := s.wishlist.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	products, err := s.products.FindByIDs(ctx, lo.Map(items, func(i domain.WishlistItem, _ int) uuid.UUID {
		return i.ProductID
	}))
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(products, func(p *domain.Product) uuid.UUID { return p.ID })

	entries := make([]domain.WishlistEntry, 0, len(items))
	for _, item := range items {
		if p, ok := byID[item.ProductID]; ok {
			entries = append(entries, domain.WishlistEntry{WishlistItem: item, Product: p})
		}
	}
	return entries, nil
}

func (s *wishlistService) Add(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return err
	}

	_, err := s.wishlist.Add(ctx, &domain.WishlistItem{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	})
	return err
}

func (s *wishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return s.wishlist.Remove(ctx, userID, productID)
}

func (s *wishlistService) Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return false, err
	}

	added, err := s.wishlist.Add(ctx, &domain.WishlistItem{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return false, err
	}
	if added {
		return true, nil
	}

	if err := s.wishlist.Remove(ctx, userID, productID); err != nil {
		return false, err
	}
	return false, nil
}
