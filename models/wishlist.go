package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishlistItem is a product snapshot saved by a user. One row per user and product.
type WishlistItem struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	UserID    string          `gorm:"uniqueIndex:idx_wishlist_user_product;not null" json:"-"`
	ProductID uint            `gorm:"uniqueIndex:idx_wishlist_user_product;not null" json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	AddedAt   time.Time       `json:"added_at"`
}

// NewWishlistItem snapshots the product for the user
func NewWishlistItem(userID string, p *Product, now time.Time) WishlistItem {
	return WishlistItem{
		UserID:    userID,
		ProductID: p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		Image:     p.MainImage(),
		Price:     p.Price,
		AddedAt:   now,
	}
}
