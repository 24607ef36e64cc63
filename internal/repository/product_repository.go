package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shoe-storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ProductFilter narrows a product listing. Zero values disable a filter.
type ProductFilter struct {
	Category    string
	Search      string
	IsNew       *bool
	Sale        *bool
	ActiveOnly  bool
	ParentsOnly bool
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   SortOrder
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error)
	// FindFamilies returns the given parents and all their variants in
	// creation order.
	FindFamilies(ctx context.Context, parentIDs []uuid.UUID) ([]*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int, error)
}

const productColumns = `id, name, description, price, selling_price, sale, quantity, category, barcode,
	images, sizes, color_name, color_code, is_active, is_child, is_new, parents_id, created_at, updated_at`

type productRow struct {
	ID           uuid.UUID            `db:"id"`
	Name         string               `db:"name"`
	Description  string               `db:"description"`
	Price        float64              `db:"price"`
	SellingPrice float64              `db:"selling_price"`
	Sale         bool                 `db:"sale"`
	Quantity     int                  `db:"quantity"`
	Category     string               `db:"category"`
	Barcode      string               `db:"barcode"`
	Images       jsonColumn[[]string] `db:"images"`
	Sizes        jsonColumn[[]string] `db:"sizes"`
	ColorName    string               `db:"color_name"`
	ColorCode    string               `db:"color_code"`
	IsActive     bool                 `db:"is_active"`
	IsChild      bool                 `db:"is_child"`
	IsNew        bool                 `db:"is_new"`
	ParentsID    *uuid.UUID           `db:"parents_id"`
	CreatedAt    time.Time            `db:"created_at"`
	UpdatedAt    time.Time            `db:"updated_at"`
}

func newProductRow(p *domain.Product) productRow {
	return productRow{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price.Float(),
		SellingPrice: p.SellingPrice.Float(),
		Sale:         p.Sale,
		Quantity:     p.Quantity,
		Category:     p.Category,
		Barcode:      p.Barcode,
		Images:       jsonColumn[[]string]{V: lo.Ternary(p.Images == nil, []string{}, p.Images)},
		Sizes:        jsonColumn[[]string]{V: lo.Ternary(p.Sizes == nil, []string{}, p.Sizes)},
		ColorName:    p.Color.Name,
		ColorCode:    p.Color.Code,
		IsActive:     p.IsActive,
		IsChild:      p.IsChild,
		IsNew:        p.IsNew,
		ParentsID:    p.ParentsID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (r productRow) toDomain() *domain.Product {
	return &domain.Product{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Price:        domain.Price(r.Price),
		SellingPrice: domain.Price(r.SellingPrice),
		Sale:         r.Sale,
		Quantity:     r.Quantity,
		Category:     r.Category,
		Barcode:      r.Barcode,
		Images:       lo.Ternary(r.Images.V == nil, []string{}, r.Images.V),
		Sizes:        lo.Ternary(r.Sizes.V == nil, []string{}, r.Sizes.V),
		Color:        domain.ProductColor{Name: r.ColorName, Code: r.ColorCode},
		IsActive:     r.IsActive,
		IsChild:      r.IsChild,
		IsNew:        r.IsNew,
		ParentsID:    r.ParentsID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toProducts(rows []productRow) []*domain.Product {
	return lo.Map(rows, func(r productRow, _ int) *domain.Product { return r.toDomain() })
}

type productRepository struct {
	conn
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepository{conn{db: db}}
}

// Create inserts a new product
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES (:id, :name, :description, :price, :selling_price, :sale, :quantity, :category, :barcode,
			:images, :sizes, :color_name, :color_code, :is_active, :is_child, :is_new, :parents_id, :created_at, :updated_at)
	`

	if _, err := r.q(ctx).NamedExecContext(ctx, query, newProductRow(product)); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update rewrites the editable fields of a product. Family linkage and
// creation time are immutable.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = :name, description = :description, price = :price, selling_price = :selling_price,
		    sale = :sale, quantity = :quantity, category = :category, barcode = :barcode,
		    images = :images, sizes = :sizes, color_name = :color_name, color_code = :color_code,
		    is_active = :is_active, is_new = :is_new, updated_at = :updated_at
		WHERE id = :id
	`

	result, err := r.q(ctx).NamedExecContext(ctx, query, newProductRow(product))
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return requireAffected(result, ErrProductNotFound)
}

// SetActive toggles product visibility on the storefront
func (r *productRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.q(ctx).ExecContext(ctx, `UPDATE products SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to set product active flag: %w", err)
	}

	return requireAffected(result, ErrProductNotFound)
}

// Delete removes a single product. Variants of a deleted parent are kept
// and become orphans.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.q(ctx).ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return requireAffected(result, ErrProductNotFound)
}

// DeleteMany removes all listed products and returns how many existed.
func (r *productRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`DELETE FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to build bulk delete: %w", err)
	}

	db := r.q(ctx)
	result, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete products: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var row productRow
	err := r.q(ctx).GetContext(ctx, &row, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return row.toDomain(), nil
}

// FindByIDs returns the products that exist among ids, in creation order.
func (r *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE id IN (?) ORDER BY created_at, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build product lookup: %w", err)
	}

	db := r.q(ctx)
	var rows []productRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	return toProducts(rows), nil
}

func (r *productRepository) FindFamilies(ctx context.Context, parentIDs []uuid.UUID) ([]*domain.Product, error) {
	if len(parentIDs) == 0 {
		return []*domain.Product{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+productColumns+`
		FROM products
		WHERE id IN (?) OR parents_id IN (?)
		ORDER BY created_at, id
	`, parentIDs, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build family lookup: %w", err)
	}

	db := r.q(ctx)
	var rows []productRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to find product families: %w", err)
	}

	return toProducts(rows), nil
}

// List retrieves products with filtering, pagination, and sorting
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]bool{
		"name":       true,
		"price":      true,
		"created_at": true,
		"quantity":   true,
	}

	sortBy := filter.SortBy
	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := filter.SortOrder
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	page := max(filter.Page, 1)
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	conditions := []string{}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		conditions = append(conditions, "category = "+arg(filter.Category))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		p := arg("%" + s + "%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s OR barcode ILIKE %s)", p, p, p))
	}
	if filter.IsNew != nil {
		conditions = append(conditions, "is_new = "+arg(*filter.IsNew))
	}
	if filter.Sale != nil {
		conditions = append(conditions, "sale = "+arg(*filter.Sale))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	if filter.ParentsOnly {
		conditions = append(conditions, "NOT is_child")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	db := r.q(ctx)

	var total int
	if err := db.GetContext(ctx, &total, "SELECT COUNT(*) FROM products "+whereClause, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY %s %s, id
		LIMIT %s OFFSET %s
	`, productColumns, whereClause, sortBy, sortOrder, arg(pageSize), arg((page-1)*pageSize))

	var rows []productRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return toProducts(rows), total, nil
}
