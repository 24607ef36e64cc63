package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"shoe-storefront/internal/cache"
	"shoe-storefront/internal/domain"
	"shoe-storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	contentHeroBanners   = "hero_banners"
	contentCategoryMedia = "category_media"
	contentAttitude      = "attitude"

	contentCachePrefix = "content:"
)

type HeroBannerInput struct {
	ID       *uuid.UUID `json:"id"`
	Title    string     `json:"title" validate:"max=255"`
	Subtitle string     `json:"subtitle" validate:"max=255"`
	ImageURL string     `json:"imageUrl" validate:"required"`
	LinkURL  string     `json:"linkUrl"`
	Position int        `json:"position" validate:"gte=0"`
	IsActive *bool      `json:"isActive"`
}

type CategoryMediaInput struct {
	URL       string           `json:"url" validate:"required"`
	MediaType domain.MediaType `json:"mediaType" validate:"required"`
}

type AttitudeInput struct {
	Title  string   `json:"title" validate:"max=255"`
	Text   string   `json:"text"`
	Images []string `json:"images" validate:"dive,required"`
}

// ContentService edits the homepage.
type ContentService interface {
	// Homepage returns the homepage content. Inactive banners are only
	// included when includeInactive is set.
	Homepage(ctx context.Context, includeInactive bool) (*domain.Homepage, error)
	ReplaceHeroBanners(ctx context.Context, banners []HeroBannerInput) ([]domain.HeroBanner, error)
	SetCategoryMedia(ctx context.Context, categoryID uuid.UUID, input CategoryMediaInput) (*domain.CategoryMedia, error)
	RemoveCategoryMedia(ctx context.Context, categoryID uuid.UUID) error
	UpdateAttitude(ctx context.Context, input AttitudeInput) (*domain.AttitudeSection, error)
}

type contentService struct {
	content    repository.ContentRepository
	categories repository.CategoryRepository
	tx         repository.Transactor
	cache      cache.Cache
	logger     *zap.Logger
}

func NewContentService(
	content repository.ContentRepository,
	categories repository.CategoryRepository,
	tx repository.Transactor,
	c cache.Cache,
	logger *zap.Logger,
) ContentService {
	return &contentService{content: content, categories: categories, tx: tx, cache: c, logger: logger}
}

func (s *contentService) Homepage(ctx context.Context, includeInactive bool) (*domain.Homepage, error) {
	key := contentCachePrefix + "homepage:" + listScope(!includeInactive)

	return cached(ctx, s.cache, s.logger, key, func() (*domain.Homepage, error) {
		banners, err := s.heroBanners(ctx)
		if err != nil {
			return nil, err
		}
		if !includeInactive {
			banners = lo.Filter(banners, func(b domain.HeroBanner, _ int) bool { return b.IsActive })
		}

		media, err := s.categoryMedia(ctx)
		if err != nil {
			return nil, err
		}

		var attitude domain.AttitudeSection
		if err := s.load(ctx, contentAttitude, &attitude); err != nil {
			return nil, err
		}
		if attitude.Images == nil {
			attitude.Images = []string{}
		}

		return &domain.Homepage{
			HeroBanners:   banners,
			CategoryMedia: media,
			Attitude:      attitude,
		}, nil
	})
}

// ReplaceHeroBanners stores banners ordered by position. Banners without an
// id get a new one.
func (s *contentService) ReplaceHeroBanners(ctx context.Context, inputs []HeroBannerInput) ([]domain.HeroBanner, error) {
	banners := lo.Map(inputs, func(in HeroBannerInput, _ int) domain.HeroBanner {
		return domain.HeroBanner{
			ID:       lo.FromPtrOr(in.ID, uuid.New()),
			Title:    strings.TrimSpace(in.Title),
			Subtitle: strings.TrimSpace(in.Subtitle),
			ImageURL: strings.TrimSpace(in.ImageURL),
			LinkURL:  strings.TrimSpace(in.LinkURL),
			Position: in.Position,
			IsActive: in.IsActive == nil || *in.IsActive,
		}
	})
	sort.SliceStable(banners, func(i, j int) bool { return banners[i].Position < banners[j].Position })

	if err := s.content.Put(ctx, contentHeroBanners, banners); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return banners, nil
}

func (s *contentService) SetCategoryMedia(ctx context.Context, categoryID uuid.UUID, input CategoryMediaInput) (*domain.CategoryMedia, error) {
	if input.MediaType != domain.MediaTypeImage && input.MediaType != domain.MediaTypeVideo {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMedia, input.MediaType)
	}

	media := domain.CategoryMedia{
		CategoryID: categoryID,
		URL:        strings.TrimSpace(input.URL),
		MediaType:  input.MediaType,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
			return err
		}

		all, err := s.lockedCategoryMedia(ctx)
		if err != nil {
			return err
		}
		all = lo.Reject(all, func(m domain.CategoryMedia, _ int) bool { return m.CategoryID == categoryID })
		all = append(all, media)

		return s.content.Put(ctx, contentCategoryMedia, all)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return &media, nil
}

func (s *contentService) RemoveCategoryMedia(ctx context.Context, categoryID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		all, err := s.lockedCategoryMedia(ctx)
		if err != nil {
			return err
		}
		return s.content.Put(ctx, contentCategoryMedia, lo.Reject(all, func(m domain.CategoryMedia, _ int) bool {
			return m.CategoryID == categoryID
		}))
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *contentService) UpdateAttitude(ctx context.Context, input AttitudeInput) (*domain.AttitudeSection, error) {
	attitude := domain.AttitudeSection{
		Title:  strings.TrimSpace(input.Title),
		Text:   strings.TrimSpace(input.Text),
		Images: lo.Ternary(input.Images == nil, []string{}, input.Images),
	}

	if err := s.content.Put(ctx, contentAttitude, attitude); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return &attitude, nil
}

func (s *contentService) heroBanners(ctx context.Context) ([]domain.HeroBanner, error) {
	banners := []domain.HeroBanner{}
	if err := s.load(ctx, contentHeroBanners, &banners); err != nil {
		return nil, err
	}
	return banners, nil
}

func (s *contentService) categoryMedia(ctx context.Context) ([]domain.CategoryMedia, error) {
	media := []domain.CategoryMedia{}
	if err := s.load(ctx, contentCategoryMedia, &media); err != nil {
		return nil, err
	}
	return media, nil
}

// lockedCategoryMedia reads the category media document for a rewrite in the
// current transaction.
func (s *contentService) lockedCategoryMedia(ctx context.Context) ([]domain.CategoryMedia, error) {
	media := []domain.CategoryMedia{}
	if err := s.content.GetForUpdate(ctx, contentCategoryMedia, &media); err != nil && !errors.Is(err, repository.ErrContentNotFound) {
		return nil, err
	}
	return media, nil
}

// load treats missing content as empty.
func (s *contentService) load(ctx context.Context, key string, dest interface{}) error {
	if err := s.content.Get(ctx, key, dest); err != nil && !errors.Is(err, repository.ErrContentNotFound) {
		return err
	}
	return nil
}

func (s *contentService) invalidate(ctx context.Context) {
	invalidate(ctx, s.cache, s.logger, contentCachePrefix)
}
