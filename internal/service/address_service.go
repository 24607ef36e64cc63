package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shoe-storefront/internal/domain"
	"shoe-storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type AddressInput struct {
	Title      string `json:"title" validate:"max=100"`
	FullName   string `json:"fullName" validate:"required,max=255"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required,max=100"`
	PostalCode string `json:"postalCode" validate:"max=20"`
	IsDefault  bool   `json:"isDefault"`
}

// AddressService manages a user's address book. A user with at least one
// address always has exactly one default.
type AddressService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error)
	Add(ctx context.Context, userID uuid.UUID, input AddressInput) ([]*domain.Address, error)
	Update(ctx context.Context, userID, id uuid.UUID, input AddressInput) ([]*domain.Address, error)
	Delete(ctx context.Context, userID, id uuid.UUID) ([]*domain.Address, error)
	SetDefault(ctx context.Context, userID, id uuid.UUID) ([]*domain.Address, error)
}

type addressService struct {
	repo repository.AddressRepository
	tx   repository.Transactor
}

func NewAddressService(repo repository.AddressRepository, tx repository.Transactor) AddressService {
	return &addressService{repo: repo, tx: tx}
}

func (s *addressService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	return s.repo.List(ctx, userID)
}

func (s *addressService) Add(ctx context.Context, userID uuid.UUID, input AddressInput) ([]*domain.Address, error) {
	address := &domain.Address{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	applyAddressInput(address, input)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.List(ctx, userID)
		if err != nil {
			return err
		}

		if err := s.repo.Create(ctx, address); err != nil {
			return err
		}

		if len(existing) == 0 || input.IsDefault {
			return s.repo.SetDefault(ctx, userID, address.ID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}

	return s.repo.List(ctx, userID)
}

func (s *addressService) Update(ctx context.Context, userID, id uuid.UUID, input AddressInput) ([]*domain.Address, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		address, err := s.repo.FindByID(ctx, userID, id)
		if err != nil {
			return err
		}

		applyAddressInput(address, input)
		if err := s.repo.Update(ctx, address); err != nil {
			return err
		}

		if input.IsDefault && !address.IsDefault {
			return s.repo.SetDefault(ctx, userID, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.List(ctx, userID)
}

// Delete removes an address. When it was the default, the oldest remaining
// address becomes the default.
func (s *addressService) Delete(ctx context.Context, userID, id uuid.UUID) ([]*domain.Address, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		address, err := s.repo.FindByID(ctx, userID, id)
		if err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, userID, id); err != nil {
			return err
		}

		if !address.IsDefault {
			return nil
		}

		remaining, err := s.repo.List(ctx, userID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			return nil
		}

		oldest := lo.MinBy(remaining, func(a, b *domain.Address) bool {
			return a.CreatedAt.Before(b.CreatedAt)
		})
		return s.repo.SetDefault(ctx, userID, oldest.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.List(ctx, userID)
}

func (s *addressService) SetDefault(ctx context.Context, userID, id uuid.UUID) ([]*domain.Address, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.SetDefault(ctx, userID, id)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.List(ctx, userID)
}

func applyAddressInput(a *domain.Address, input AddressInput) {
	a.Title = strings.TrimSpace(input.Title)
	a.FullName = strings.TrimSpace(input.FullName)
	a.Phone = strings.TrimSpace(input.Phone)
	a.Address = strings.TrimSpace(input.Address)
	a.City = strings.TrimSpace(input.City)
	a.PostalCode = strings.TrimSpace(input.PostalCode)
}
