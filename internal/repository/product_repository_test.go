package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"shoe-storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(category string, createdAt time.Time) *domain.Product {
	return &domain.Product{
		ID:        uuid.New(),
		Name:      "Runner",
		Price:     89.99,
		Quantity:  3,
		Category:  category,
		Images:    []string{"https://cdn.example.com/a.jpg"},
		Sizes:     []string{uuid.NewString()},
		Color:     domain.ProductColor{Name: "Black", Code: "#000000"},
		IsActive:  true,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func variantOf(parent *domain.Product, code string, createdAt time.Time) *domain.Product {
	child := newTestProduct(parent.Category, createdAt)
	parentID := parent.ID
	child.IsChild = true
	child.ParentsID = &parentID
	child.Color = domain.ProductColor{Name: code, Code: code}
	return child
}

func TestProductRepository_FamilyRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testDB)
	tx := NewTransactor(testDB)

	base := time.Now().UTC().Truncate(time.Microsecond)
	parent := newTestProduct("family-"+uuid.NewString(), base)
	white := variantOf(parent, "#ffffff", base.Add(time.Second))
	red := variantOf(parent, "#ff0000", base.Add(2*time.Second))

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, p := range []*domain.Product{parent, white, red} {
			if err := repo.Create(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	family, err := repo.FindFamilies(ctx, []uuid.UUID{parent.ID})
	require.NoError(t, err)
	require.Len(t, family, 3)
	assert.Equal(t, []uuid.UUID{parent.ID, white.ID, red.ID}, []uuid.UUID{family[0].ID, family[1].ID, family[2].ID})
	assert.Equal(t, parent.ID, *family[1].ParentsID)
	assert.Equal(t, domain.ProductColor{Name: "#ffffff", Code: "#ffffff"}, family[1].Color)
	assert.Equal(t, parent.Images, family[0].Images)
	assert.Equal(t, parent.Sizes, family[0].Sizes)

	list, total, err := repo.List(ctx, ProductFilter{Category: parent.Category, ParentsOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, parent.ID, list[0].ID)
}

func TestTransactor_RollsBackFamilyOnError(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testDB)
	tx := NewTransactor(testDB)

	parent := newTestProduct("rollback-"+uuid.NewString(), time.Now().UTC())
	failure := errors.New("variant rejected")

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := repo.Create(ctx, parent); err != nil {
			return err
		}
		return failure
	})
	assert.ErrorIs(t, err, failure)

	_, err = repo.FindByID(ctx, parent.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductRepository_UpdateAndActiveFlag(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testDB)

	p := newTestProduct("update-"+uuid.NewString(), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, p))

	p.Name = "Trail Runner"
	p.Sale = true
	p.SellingPrice = 59.5
	require.NoError(t, repo.Update(ctx, p))
	require.NoError(t, repo.SetActive(ctx, p.ID, false))

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trail Runner", got.Name)
	assert.Equal(t, domain.Price(59.5), got.EffectivePrice())
	assert.False(t, got.IsActive)

	list, total, err := repo.List(ctx, ProductFilter{Category: p.Category, ActiveOnly: true})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	assert.ErrorIs(t, repo.SetActive(ctx, uuid.New(), true), ErrProductNotFound)
}

func TestProductRepository_DeleteMany(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(testDB)

	category := "bulk-" + uuid.NewString()
	a := newTestProduct(category, time.Now().UTC())
	b := newTestProduct(category, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	n, err := repo.DeleteMany(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.DeleteMany(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
