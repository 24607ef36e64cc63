package service

import (
	"context"
	"strings"
	"time"

	"shoe-storefront/internal/cache"
	"shoe-storefront/internal/domain"
	"shoe-storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ColorInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Code     string `json:"code" validate:"required,hexcolor"`
	IsActive *bool  `json:"is_active"`
}

type SizeInput struct {
	Value    string `json:"value" validate:"required,max=32"`
	IsActive *bool  `json:"is_active"`
}

// ColorService manages the colour palette offered in the product form.
type ColorService interface {
	List(ctx context.Context, activeOnly bool) ([]*domain.Color, error)
	Create(ctx context.Context, input ColorInput) (*domain.Color, error)
	Update(ctx context.Context, id uuid.UUID, input ColorInput) (*domain.Color, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SizeService manages the size list.
type SizeService interface {
	List(ctx context.Context, activeOnly bool) ([]*domain.Size, error)
	Create(ctx context.Context, input SizeInput) (*domain.Size, error)
	Update(ctx context.Context, id uuid.UUID, input SizeInput) (*domain.Size, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const (
	colorsCachePrefix = "colors:"
	sizesCachePrefix  = "sizes:"
)

type colorService struct {
	repo   repository.ColorRepository
	cache  cache.Cache
	logger *zap.Logger
}

func NewColorService(repo repository.ColorRepository, c cache.Cache, logger *zap.Logger) ColorService {
	return &colorService{repo: repo, cache: c, logger: logger}
}

func (s *colorService) List(ctx context.Context, activeOnly bool) ([]*domain.Color, error) {
	return cached(ctx, s.cache, s.logger, colorsCachePrefix+listScope(activeOnly), func() ([]*domain.Color, error) {
		return s.repo.List(ctx, activeOnly)
	})
}

func (s *colorService) Create(ctx context.Context, input ColorInput) (*domain.Color, error) {
	color := &domain.Color{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(input.Name),
		Code:      strings.ToLower(strings.TrimSpace(input.Code)),
		IsActive:  input.IsActive == nil || *input.IsActive,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, color); err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, s.logger, colorsCachePrefix)
	return color, nil
}

func (s *colorService) Update(ctx context.Context, id uuid.UUID, input ColorInput) (*domain.Color, error) {
	color, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	color.Name = strings.TrimSpace(input.Name)
	color.Code = strings.ToLower(strings.TrimSpace(input.Code))
	if input.IsActive != nil {
		color.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, color); err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, s.logger, colorsCachePrefix)
	return color, nil
}

// Delete removes a palette entry. Products keep their copied colour.
func (s *colorService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	invalidate(ctx, s.cache, s.logger, colorsCachePrefix)
	return nil
}

type sizeService struct {
	repo   repository.SizeRepository
	cache  cache.Cache
	logger *zap.Logger
}

func NewSizeService(repo repository.SizeRepository, c cache.Cache, logger *zap.Logger) SizeService {
	return &sizeService{repo: repo, cache: c, logger: logger}
}

func (s *sizeService) List(ctx context.Context, activeOnly bool) ([]*domain.Size, error) {
	return cached(ctx, s.cache, s.logger, sizesCachePrefix+listScope(activeOnly), func() ([]*domain.Size, error) {
		return s.repo.List(ctx, activeOnly)
	})
}

func (s *sizeService) Create(ctx context.Context, input SizeInput) (*domain.Size, error) {
	size := &domain.Size{
		ID:        uuid.New(),
		Value:     strings.TrimSpace(input.Value),
		IsActive:  input.IsActive == nil || *input.IsActive,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, size); err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, s.logger, sizesCachePrefix)
	return size, nil
}

func (s *sizeService) Update(ctx context.Context, id uuid.UUID, input SizeInput) (*domain.Size, error) {
	size, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	size.Value = strings.TrimSpace(input.Value)
	if input.IsActive != nil {
		size.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, size); err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, s.logger, sizesCachePrefix)
	return size, nil
}

func (s *sizeService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	invalidate(ctx, s.cache, s.logger, sizesCachePrefix)
	return nil
}
