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

const categoriesCacheKey = "categories:all"

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Create(ctx context.Context, input CategoryInput) (*domain.Category, error)
}

type categoryService struct {
	repo   repository.CategoryRepository
	cache  cache.Cache
	logger *zap.Logger
}

func NewCategoryService(repo repository.CategoryRepository, c cache.Cache, logger *zap.Logger) CategoryService {
	return &categoryService{repo: repo, cache: c, logger: logger}
}

func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return cached(ctx, s.cache, s.logger, categoriesCacheKey, func() ([]*domain.Category, error) {
		return s.repo.List(ctx)
	})
}

func (s *categoryService) Create(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, s.logger, categoriesCacheKey)
	return category, nil
}
