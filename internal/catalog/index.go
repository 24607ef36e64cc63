package catalog

import (
	"shoe-storefront/internal/domain"

	"github.com/google/uuid"
)

// Index answers the same questions as AvailableColors and
// FindVariantByColor without rescanning the product slice per call.
// Children keep the order they had in the source slice, so results are
// identical to the scanning functions.
type Index struct {
	byID     map[uuid.UUID]*domain.Product
	children map[uuid.UUID][]*domain.Product
}

func NewIndex(products []*domain.Product) *Index {
	ix := &Index{
		byID:     make(map[uuid.UUID]*domain.Product, len(products)),
		children: make(map[uuid.UUID][]*domain.Product),
	}

	for _, p := range products {
		if _, exists := ix.byID[p.ID]; !exists {
			ix.byID[p.ID] = p
		}
		if p.ParentsID != nil {
			ix.children[*p.ParentsID] = append(ix.children[*p.ParentsID], p)
		}
	}

	return ix
}

// Product returns the indexed product with id, or nil.
func (ix *Index) Product(id uuid.UUID) *domain.Product {
	return ix.byID[id]
}

// Len returns the number of distinct products in the index.
func (ix *Index) Len() int {
	return len(ix.byID)
}

func (ix *Index) AvailableColors(product *domain.Product) []ColorOption {
	colors := newColorList()
	colors.add(product)

	if !product.IsChild {
		for _, child := range ix.children[product.ID] {
			colors.add(child)
		}
		return colors.result()
	}

	if product.ParentsID == nil {
		return colors.result()
	}

	if parent := ix.byID[*product.ParentsID]; parent != nil {
		colors.add(parent)
	}
	for _, sibling := range ix.children[*product.ParentsID] {
		if sibling.ID != product.ID {
			colors.add(sibling)
		}
	}

	return colors.result()
}

func (ix *Index) FindVariantByColor(product *domain.Product, code string) *domain.Product {
	if code == "" {
		return nil
	}
	if product.Color.Code == code {
		return product
	}

	if !product.IsChild {
		return firstWithCode(ix.children[product.ID], code)
	}
	if product.ParentsID == nil {
		return nil
	}

	if parent := ix.byID[*product.ParentsID]; parent != nil && parent.Color.Code == code {
		return parent
	}
	for _, sibling := range ix.children[*product.ParentsID] {
		if sibling.ID != product.ID && sibling.Color.Code == code {
			return sibling
		}
	}
	return nil
}
