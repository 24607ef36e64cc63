package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"shoe-storefront/internal/cache"
	"shoe-storefront/internal/catalog"
	"shoe-storefront/internal/domain"
	"shoe-storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const productsCachePrefix = "products:"

// ProductInput is the admin product form.
type ProductInput struct {
	Name         string              `json:"name" validate:"required,max=255"`
	Description  string              `json:"description"`
	Price        domain.Price        `json:"price" validate:"gt=0"`
	SellingPrice domain.Price        `json:"sellingPrice" validate:"gte=0"`
	Sale         bool                `json:"sale"`
	Quantity     int                 `json:"quantity" validate:"gte=0"`
	Category     string              `json:"category" validate:"required,max=255"`
	Barcode      string              `json:"barcode" validate:"max=100"`
	Images       []string            `json:"images" validate:"dive,required"`
	Sizes        domain.SizeRefs     `json:"sizes"`
	Color        domain.ProductColor `json:"color"`
	IsActive     *bool               `json:"is_active"`
	IsNew        bool                `json:"is_new"`
	Variants     []VariantInput      `json:"variants" validate:"dive"`
}

// VariantInput describes one extra colour of a product. Unset fields are
// copied from the parent.
type VariantInput struct {
	Color        domain.ProductColor `json:"color"`
	Images       []string            `json:"images" validate:"dive,required"`
	Quantity     *int                `json:"quantity" validate:"omitempty,gte=0"`
	Price        *domain.Price       `json:"price" validate:"omitempty,gt=0"`
	SellingPrice *domain.Price       `json:"sellingPrice" validate:"omitempty,gte=0"`
	Sizes        domain.SizeRefs     `json:"sizes"`
}

// ProductQuery filters a product listing.
type ProductQuery struct {
	Category  string `json:"category,omitempty"`
	Search    string `json:"search,omitempty"`
	IsNew     *bool  `json:"isNew,omitempty"`
	Sale      *bool  `json:"sale,omitempty"`
	Page      int    `json:"page"`
	PageSize  int    `json:"pageSize"`
	SortBy    string `json:"sortBy,omitempty"`
	SortOrder string `json:"sortOrder,omitempty"`
	// Admin lists every product, inactive ones and variants included.
	Admin bool `json:"admin,omitempty"`
}

// ProductCard is a listed product with the colours of its family.
type ProductCard struct {
	*domain.Product
	Colors []catalog.ColorOption `json:"colors"`
}

type ProductPage struct {
	Products []ProductCard `json:"products"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

// ProductView is the product detail page.
type ProductView struct {
	Product  *domain.Product       `json:"product"`
	Colors   []catalog.ColorOption `json:"colors"`
	Variants []*domain.Product     `json:"variants"`
}

type ProductService interface {
	List(ctx context.Context, query ProductQuery) (*ProductPage, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductView, error)
	GetForAdmin(ctx context.Context, id uuid.UUID) (*ProductView, error)
	VariantByColor(ctx context.Context, id uuid.UUID, code string) (*domain.Product, error)
	Create(ctx context.Context, input ProductInput) (*ProductView, error)
	Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductView, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int, error)
}

type productService struct {
	products repository.ProductRepository
	sizes    repository.SizeRepository
	tx       repository.Transactor
	cache    cache.Cache
	logger   *zap.Logger
	now      func() time.Time
}

func NewProductService(
	products repository.ProductRepository,
	sizes repository.SizeRepository,
	tx repository.Transactor,
	c cache.Cache,
	logger *zap.Logger,
) ProductService {
	return &productService{
		products: products,
		sizes:    sizes,
		tx:       tx,
		cache:    c,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *productService) List(ctx context.Context, query ProductQuery) (*ProductPage, error) {
	query.Page = max(query.Page, 1)
	if query.PageSize <= 0 || query.PageSize > 100 {
		query.PageSize = 20
	}

	key, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to build cache key: %w", err)
	}
	cacheKey := productsCachePrefix + "list:" + string(key)

	return cached(ctx, s.cache, s.logger, cacheKey, func() (*ProductPage, error) {
		products, total, err := s.products.List(ctx, repository.ProductFilter{
			Category:    query.Category,
			Search:      query.Search,
			IsNew:       query.IsNew,
			Sale:        query.Sale,
			ActiveOnly:  !query.Admin,
			ParentsOnly: !query.Admin,
			Page:        query.Page,
			PageSize:    query.PageSize,
			SortBy:      query.SortBy,
			SortOrder:   repository.SortOrder(strings.ToUpper(query.SortOrder)),
		})
		if err != nil {
			return nil, err
		}

		family, err := s.products.FindFamilies(ctx, catalog.FamilyIDs(products))
		if err != nil {
			return nil, err
		}
		if !query.Admin {
			family = activeOnly(family)
		}
		ix := catalog.NewIndex(family)

		return &ProductPage{
			Products: lo.Map(products, func(p *domain.Product, _ int) ProductCard {
				return ProductCard{Product: p, Colors: ix.AvailableColors(p)}
			}),
			Total:    total,
			Page:     query.Page,
			PageSize: query.PageSize,
		}, nil
	})
}

// Get returns an active product with its family's colours.
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	return cached(ctx, s.cache, s.logger, productsCachePrefix+"view:"+id.String(), func() (*ProductView, error) {
		product, family, err := s.loadFamily(ctx, id)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, repository.ErrProductNotFound
		}

		return newProductView(product, activeOnly(family)), nil
	})
}

// GetForAdmin returns a product whether active or not, with its whole family.
// The result is not cached.
func (s *productService) GetForAdmin(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	product, family, err := s.loadFamily(ctx, id)
	if err != nil {
		return nil, err
	}
	return newProductView(product, family), nil
}

// VariantByColor resolves the product of id's family carrying colour code.
// Codes are stored lowercase so the lookup is case-insensitive.
func (s *productService) VariantByColor(ctx context.Context, id uuid.UUID, code string) (*domain.Product, error) {
	product, family, err := s.loadFamily(ctx, id)
	if err != nil {
		return nil, err
	}

	variant := catalog.FindVariantByColor(product, activeOnly(family), strings.ToLower(strings.TrimSpace(code)))
	if variant == nil {
		return nil, ErrVariantNotFound
	}
	return variant, nil
}

// Create writes the parent and all variants in one transaction.
func (s *productService) Create(ctx context.Context, input ProductInput) (*ProductView, error) {
	sizeIndex, err := s.loadSizeIndex(ctx)
	if err != nil {
		return nil, err
	}

	parentSizes, err := sizeIndex.normalize(input.Sizes)
	if err != nil {
		return nil, err
	}

	now := s.now()
	parent := &domain.Product{
		ID:        uuid.New(),
		IsActive:  input.IsActive == nil || *input.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyProductInput(parent, input, parentSizes)

	seen := map[string]bool{}
	if parent.Color.Code != "" {
		seen[strings.ToLower(parent.Color.Code)] = true
	}

	variants, err := s.buildVariants(parent, input.Variants, sizeIndex, seen, now)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, p := range append([]*domain.Product{parent}, variants...) {
			if err := s.products.Create(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return newProductView(parent, append([]*domain.Product{parent}, variants...)), nil
}

// Update rewrites a product and creates variants for colours that are not
// yet part of the family. Existing variants are left untouched.
func (s *productService) Update(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductView, error) {
	sizeIndex, err := s.loadSizeIndex(ctx)
	if err != nil {
		return nil, err
	}

	sizes, err := sizeIndex.normalize(input.Sizes)
	if err != nil {
		return nil, err
	}

	var view *ProductView
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		product, family, err := s.loadFamily(ctx, id)
		if err != nil {
			return err
		}

		applyProductInput(product, input, sizes)
		if input.IsActive != nil {
			product.IsActive = *input.IsActive
		}
		product.UpdatedAt = s.now()

		if err := s.products.Update(ctx, product); err != nil {
			return err
		}

		seen := map[string]bool{}
		for _, p := range family {
			if p.ID == product.ID {
				p = product
			}
			if p.Color.Code != "" {
				seen[strings.ToLower(p.Color.Code)] = true
			}
		}

		root := lo.FindOrElse(family, product, func(p *domain.Product) bool { return p.ID == product.FamilyID() })
		if root.ID == product.ID {
			root = product
		}

		added, err := s.buildVariants(root, input.Variants, sizeIndex, seen, product.UpdatedAt)
		if err != nil {
			return err
		}
		for _, v := range added {
			if err := s.products.Create(ctx, v); err != nil {
				return err
			}
		}

		family = lo.Map(family, func(p *domain.Product, _ int) *domain.Product {
			if p.ID == product.ID {
				return product
			}
			return p
		})
		view = newProductView(product, append(family, added...))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return view, nil
}

func (s *productService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.products.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *productService) DeleteMany(ctx context.Context, ids []uuid.UUID) (int, error) {
	n, err := s.products.DeleteMany(ctx, lo.Uniq(ids))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidate(ctx)
	}
	return n, nil
}

func (s *productService) loadFamily(ctx context.Context, id uuid.UUID) (*domain.Product, []*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	family, err := s.products.FindFamilies(ctx, []uuid.UUID{product.FamilyID()})
	if err != nil {
		return nil, nil, err
	}

	// an orphaned variant is not returned by its missing parent's family
	if !lo.ContainsBy(family, func(p *domain.Product) bool { return p.ID == product.ID }) {
		family = append(family, product)
	}
	return product, family, nil
}

func (s *productService) buildVariants(parent *domain.Product, inputs []VariantInput, sizes sizeIndex, seen map[string]bool, at time.Time) ([]*domain.Product, error) {
	variants := make([]*domain.Product, 0, len(inputs))

	for i, in := range inputs {
		code := strings.ToLower(strings.TrimSpace(in.Color.Code))
		if code == "" {
			return nil, fmt.Errorf("%w: variant %d has no colour code", ErrInvalidVariant, i+1)
		}
		if seen[code] {
			continue
		}
		seen[code] = true

		variantSizes := parent.Sizes
		if in.Sizes != nil {
			normalized, err := sizes.normalize(in.Sizes)
			if err != nil {
				return nil, err
			}
			variantSizes = normalized
		}

		parentID := parent.ID
		// creation order defines colour order within the family
		createdAt := at.Add(time.Duration(len(variants)+1) * time.Microsecond)

		v := &domain.Product{
			ID:           uuid.New(),
			Name:         parent.Name,
			Description:  parent.Description,
			Price:        lo.FromPtrOr(in.Price, parent.Price),
			SellingPrice: lo.FromPtrOr(in.SellingPrice, parent.SellingPrice),
			Sale:         parent.Sale,
			Quantity:     lo.FromPtrOr(in.Quantity, parent.Quantity),
			Category:     parent.Category,
			Barcode:      parent.Barcode,
			Images:       lo.Ternary(len(in.Images) > 0, in.Images, parent.Images),
			Sizes:        variantSizes,
			Color:        domain.ProductColor{Name: strings.TrimSpace(in.Color.Name), Code: code},
			IsActive:     parent.IsActive,
			IsChild:      true,
			IsNew:        parent.IsNew,
			ParentsID:    &parentID,
			CreatedAt:    createdAt,
			UpdatedAt:    createdAt,
		}
		variants = append(variants, v)
	}

	return variants, nil
}

func (s *productService) invalidate(ctx context.Context) {
	invalidate(ctx, s.cache, s.logger, productsCachePrefix)
}

func applyProductInput(p *domain.Product, input ProductInput, sizes []string) {
	p.Name = strings.TrimSpace(input.Name)
	p.Description = strings.TrimSpace(input.Description)
	p.Price = input.Price
	p.SellingPrice = input.SellingPrice
	p.Sale = input.Sale
	p.Quantity = input.Quantity
	p.Category = strings.TrimSpace(input.Category)
	p.Barcode = strings.TrimSpace(input.Barcode)
	p.Images = lo.Ternary(input.Images == nil, []string{}, input.Images)
	p.Sizes = sizes
	p.Color = domain.ProductColor{Name: strings.TrimSpace(input.Color.Name), Code: strings.ToLower(strings.TrimSpace(input.Color.Code))}
	p.IsNew = input.IsNew
}

func newProductView(product *domain.Product, family []*domain.Product) *ProductView {
	return &ProductView{
		Product:  product,
		Colors:   catalog.AvailableColors(product, family),
		Variants: lo.Filter(family, func(p *domain.Product, _ int) bool { return p.ID != product.ID }),
	}
}

func activeOnly(products []*domain.Product) []*domain.Product {
	return lo.Filter(products, func(p *domain.Product, _ int) bool { return p.IsActive })
}

// sizeIndex resolves size references given either as IDs or as values.
type sizeIndex struct {
	byID    map[string]string
	byValue map[string]string
}

func (s *productService) loadSizeIndex(ctx context.Context) (sizeIndex, error) {
	sizes, err := s.sizes.List(ctx, false)
	if err != nil {
		return sizeIndex{}, err
	}

	ix := sizeIndex{byID: map[string]string{}, byValue: map[string]string{}}
	for _, size := range sizes {
		id := size.ID.String()
		ix.byID[id] = id
		ix.byValue[strings.ToLower(size.Value)] = id
	}
	return ix, nil
}

// normalize maps refs to size IDs, keeping order and dropping duplicates.
func (ix sizeIndex) normalize(refs domain.SizeRefs) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if id, ok := ix.byID[strings.ToLower(ref)]; ok {
			ids = append(ids, id)
			continue
		}
		if id, ok := ix.byValue[strings.ToLower(ref)]; ok {
			ids = append(ids, id)
			continue
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownSize, ref)
	}
	return lo.Uniq(ids), nil
}
