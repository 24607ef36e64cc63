// Package catalog resolves the colour variants of a product family.
//
// A family is a parent product plus every product whose parents_id points
// at it. Colours are listed in insertion order (the product itself, then
// its children or its parent, then siblings) and the first product seen
// with a given colour code wins.
package catalog

import (
	"shoe-storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ColorOption is one selectable colour of a product family.
type ColorOption struct {
	Name string    `json:"name"`
	Code string    `json:"code"`
	ID   uuid.UUID `json:"id"`
}

type colorList struct {
	seen    map[string]struct{}
	options []ColorOption
}

func newColorList() *colorList {
	return &colorList{seen: make(map[string]struct{})}
}

// add appends p's colour unless its code is empty or already listed.
func (l *colorList) add(p *domain.Product) {
	code := p.Color.Code
	if code == "" {
		return
	}
	if _, ok := l.seen[code]; ok {
		return
	}
	l.seen[code] = struct{}{}
	l.options = append(l.options, ColorOption{Name: p.Color.Name, Code: code, ID: p.ID})
}

func (l *colorList) result() []ColorOption {
	if l.options == nil {
		return []ColorOption{}
	}
	return l.options
}

// AvailableColors scans all for the family of product and returns its colours.
func AvailableColors(product *domain.Product, all []*domain.Product) []ColorOption {
	colors := newColorList()
	colors.add(product)

	if !product.IsChild {
		for _, child := range childrenOf(product.ID, all) {
			colors.add(child)
		}
		return colors.result()
	}

	if product.ParentsID == nil {
		return colors.result()
	}

	if parent := findByID(*product.ParentsID, all); parent != nil {
		colors.add(parent)
	}
	for _, sibling := range childrenOf(*product.ParentsID, all) {
		if sibling.ID != product.ID {
			colors.add(sibling)
		}
	}

	return colors.result()
}

// FindVariantByColor returns the family member carrying colour code, or nil.
// The product itself is checked first; a variant then checks its parent and
// siblings, a parent checks its children.
func FindVariantByColor(product *domain.Product, all []*domain.Product, code string) *domain.Product {
	if code == "" {
		return nil
	}
	if product.Color.Code == code {
		return product
	}

	if product.IsChild {
		if product.ParentsID == nil {
			return nil
		}
		if parent := findByID(*product.ParentsID, all); parent != nil && parent.Color.Code == code {
			return parent
		}
		return firstWithCode(lo.Filter(childrenOf(*product.ParentsID, all), func(p *domain.Product, _ int) bool {
			return p.ID != product.ID
		}), code)
	}

	return firstWithCode(childrenOf(product.ID, all), code)
}

func childrenOf(parentID uuid.UUID, all []*domain.Product) []*domain.Product {
	return lo.Filter(all, func(p *domain.Product, _ int) bool {
		return p.ChildOf(parentID)
	})
}

func findByID(id uuid.UUID, all []*domain.Product) *domain.Product {
	p, ok := lo.Find(all, func(p *domain.Product) bool {
		return p.ID == id
	})
	if !ok {
		return nil
	}
	return p
}

func firstWithCode(products []*domain.Product, code string) *domain.Product {
	p, ok := lo.Find(products, func(p *domain.Product) bool {
		return p.Color.Code == code
	})
	if !ok {
		return nil
	}
	return p
}

// FamilyIDs returns the distinct family ids of products in first-seen order.
func FamilyIDs(products []*domain.Product) []uuid.UUID {
	return lo.Uniq(lo.Map(products, func(p *domain.Product, _ int) uuid.UUID {
		return p.FamilyID()
	}))
}
