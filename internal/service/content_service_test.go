package service

import (
	"context"
	"testing"

	"shoe-storefront/internal/domain"
	"shoe-storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestContentService() (ContentService, *mockCategoryRepository) {
	categories := &mockCategoryRepository{}
	return NewContentService(newMockContentRepository(), categories, &fakeTransactor{}, newMemoryCache(), zap.NewNop()), categories
}

func TestContentService_EmptyHomepage(t *testing.T) {
	service, _ := newTestContentService()

	page, err := service.Homepage(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, page.HeroBanners)
	assert.Empty(t, page.CategoryMedia)
	assert.NotNil(t, page.Attitude.Images)
}

func TestContentService_HeroBannersSortedAndFiltered(t *testing.T) {
	service, _ := newTestContentService()
	ctx := context.Background()

	// prime the cache so the replace must invalidate it
	_, err := service.Homepage(ctx, false)
	require.NoError(t, err)

	banners, err := service.ReplaceHeroBanners(ctx, []HeroBannerInput{
		{Title: "Third", ImageURL: "/c.jpg", Position: 3},
		{Title: "First", ImageURL: "/a.jpg", Position: 1, IsActive: lo.ToPtr(false)},
		{Title: "Second", ImageURL: "/b.jpg", Position: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second", "Third"}, lo.Map(banners, func(b domain.HeroBanner, _ int) string { return b.Title }))
	for _, b := range banners {
		assert.NotEqual(t, uuid.Nil, b.ID)
	}

	public, err := service.Homepage(ctx, false)
	require.NoError(t, err)
	assert.Len(t, public.HeroBanners, 2)

	admin, err := service.Homepage(ctx, true)
	require.NoError(t, err)
	assert.Len(t, admin.HeroBanners, 3)
}

func TestContentService_CategoryMedia(t *testing.T) {
	service, categories := newTestContentService()
	ctx := context.Background()

	category := &domain.Category{ID: uuid.New(), Name: "Boots"}
	require.NoError(t, categories.Create(ctx, category))

	_, err := service.SetCategoryMedia(ctx, category.ID, CategoryMediaInput{URL: "/v.mp4", MediaType: "audio"})
	assert.ErrorIs(t, err, ErrInvalidMedia)

	_, err = service.SetCategoryMedia(ctx, uuid.New(), CategoryMediaInput{URL: "/v.mp4", MediaType: domain.MediaTypeVideo})
	assert.ErrorIs(t, err, repository.ErrCategoryNotFound)

	_, err = service.SetCategoryMedia(ctx, category.ID, CategoryMediaInput{URL: "/a.jpg", MediaType: domain.MediaTypeImage})
	require.NoError(t, err)
	_, err = service.SetCategoryMedia(ctx, category.ID, CategoryMediaInput{URL: "/v.mp4", MediaType: domain.MediaTypeVideo})
	require.NoError(t, err)

	page, err := service.Homepage(ctx, false)
	require.NoError(t, err)
	require.Len(t, page.CategoryMedia, 1, "setting media replaces the previous entry")
	assert.Equal(t, domain.MediaTypeVideo, page.CategoryMedia[0].MediaType)

	require.NoError(t, service.RemoveCategoryMedia(ctx, category.ID))
	page, err = service.Homepage(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, page.CategoryMedia)
}

func TestContentService_CategoryMediaEditsLockTheDocument(t *testing.T) {
	content := newMockContentRepository()
	categories := &mockCategoryRepository{}
	tx := &fakeTransactor{}
	service := NewContentService(content, categories, tx, newMemoryCache(), zap.NewNop())
	ctx := context.Background()

	category := &domain.Category{ID: uuid.New(), Name: "Sandals"}
	require.NoError(t, categories.Create(ctx, category))

	_, err := service.SetCategoryMedia(ctx, category.ID, CategoryMediaInput{URL: "/s.jpg", MediaType: domain.MediaTypeImage})
	require.NoError(t, err)
	require.NoError(t, service.RemoveCategoryMedia(ctx, category.ID))

	assert.Equal(t, []string{contentCategoryMedia, contentCategoryMedia}, content.locked)
	assert.Equal(t, 2, tx.calls)
}

func TestContentService_UpdateAttitude(t *testing.T) {
	service, _ := newTestContentService()
	ctx := context.Background()

	_, err := service.UpdateAttitude(ctx, AttitudeInput{Title: " Walk tall ", Text: "Since 1987", Images: []string{"/x.jpg"}})
	require.NoError(t, err)

	page, err := service.Homepage(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "Walk tall", page.Attitude.Title)
	assert.Equal(t, []string{"/x.jpg"}, page.Attitude.Images)
}
