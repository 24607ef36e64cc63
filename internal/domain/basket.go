package domain

import (
	"time"

	"github.com/google/uuid"
)

// BasketItem is one line of a user's basket, keyed by (UserID, ProductID).
// Product fields are a snapshot taken when the line was first added.
type BasketItem struct {
	UserID    uuid.UUID    `json:"-"`
	ProductID uuid.UUID    `json:"productId"`
	Name      string       `json:"name"`
	Price     Price        `json:"price"`
	Image     string       `json:"image"`
	Color     ProductColor `json:"color"`
	Size      string       `json:"size"`
	Quantity  int          `json:"quantity"`
	AddedAt   time.Time    `json:"addedAt"`
}

// LineTotal returns price × quantity without rounding.
func (b BasketItem) LineTotal() float64 {
	return b.Price.Float() * float64(b.Quantity)
}

// WishlistItem marks a product as saved by a user.
type WishlistItem struct {
	UserID    uuid.UUID `json:"-" db:"user_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// WishlistEntry is a wishlist item joined with the current product data.
// Product is nil when the product no longer exists.
type WishlistEntry struct {
	WishlistItem
	Product *Product `json:"product"`
}
