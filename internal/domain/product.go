package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry. A colour variant is another Product with
// IsChild set and ParentsID pointing at the parent product.
type Product struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Price        Price        `json:"price"`
	SellingPrice Price        `json:"sellingPrice"`
	Sale         bool         `json:"sale"`
	Quantity     int          `json:"quantity"`
	Category     string       `json:"category"`
	Barcode      string       `json:"barcode"`
	Images       []string     `json:"images"`
	Sizes        []string     `json:"sizes"`
	Color        ProductColor `json:"color"`
	IsActive     bool         `json:"is_active"`
	IsChild      bool         `json:"is_child"`
	IsNew        bool         `json:"is_new"`
	ParentsID    *uuid.UUID   `json:"parents_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// FamilyID is the id of the parent product for variants and the product's
// own id otherwise.
func (p *Product) FamilyID() uuid.UUID {
	if p.IsChild && p.ParentsID != nil {
		return *p.ParentsID
	}
	return p.ID
}

// ChildOf reports whether p is a variant of parent.
func (p *Product) ChildOf(parent uuid.UUID) bool {
	return p.ParentsID != nil && *p.ParentsID == parent
}

// EffectivePrice is the amount a shopper pays for one unit.
func (p *Product) EffectivePrice() Price {
	if p.Sale && p.SellingPrice > 0 {
		return p.SellingPrice
	}
	return p.Price
}

// Thumbnail returns the first image or an empty string.
func (p *Product) Thumbnail() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
