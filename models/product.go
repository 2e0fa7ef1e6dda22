package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Dimensions are stored inline on the product row with a dim_ prefix
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Weight float64 `json:"weight"`
}

type Product struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Name         string                      `gorm:"not null" json:"name"`
	Slug         string                      `gorm:"uniqueIndex;not null" json:"slug"`
	CategoryID   uint                        `gorm:"index" json:"category_id"`
	Category     *Category                   `json:"category,omitempty"`
	Brand        string                      `json:"brand"`
	Description  string                      `json:"description"`
	Images       []ProductImage              `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	Price        decimal.Decimal             `gorm:"type:decimal(12,2);not null" json:"price"`
	ListPrice    decimal.Decimal             `gorm:"type:decimal(12,2)" json:"list_price"`
	CountInStock int                         `gorm:"not null" json:"count_in_stock"`
	Dimensions   Dimensions                  `gorm:"embedded;embeddedPrefix:dim_" json:"dimensions"`
	Tags         []ProductTag                `gorm:"constraint:OnDelete:CASCADE" json:"tags"`
	Sizes        datatypes.JSONSlice[string] `json:"sizes"`
	Colors       datatypes.JSONSlice[string] `json:"colors"`
	AvgRating    float64                     `json:"avg_rating"`
	NumReviews   int                         `json:"num_reviews"`
	NumSales     int                         `json:"num_sales"`
	IsPublished  bool                        `gorm:"index" json:"is_published"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	DeletedAt    gorm.DeletedAt              `gorm:"index" json:"-"`
}

// ProductImage keeps images in display order
type ProductImage struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ProductID  uint   `gorm:"index" json:"-"`
	URL        string `gorm:"not null" json:"url"`
	StorageKey string `json:"-"`
	Position   int    `json:"position"`
}

type ProductTag struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	ProductID uint   `gorm:"index" json:"-"`
	Name      string `gorm:"index;not null" json:"name"`
}

// MainImage is the first image URL, or empty when the product has none
func (p *Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// CategoryName is empty unless the category was preloaded
func (p *Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// TagNames flattens the tag rows
func (p *Product) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}
