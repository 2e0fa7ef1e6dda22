package productcontroller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductUpdateInput is the admin update body; absent fields are left unchanged
type ProductUpdateInput struct {
	Name         *string            `json:"name" binding:"omitempty,min=1,max=200"`
	Slug         *string            `json:"slug" binding:"omitempty,max=200"`
	CategoryID   *uint              `json:"category_id"`
	Brand        *string            `json:"brand" binding:"omitempty,max=100"`
	Description  *string            `json:"description"`
	Price        *decimal.Decimal   `json:"price"`
	ListPrice    *decimal.Decimal   `json:"list_price"`
	CountInStock *int               `json:"count_in_stock" binding:"omitempty,gte=0"`
	Dimensions   *models.Dimensions `json:"dimensions"`
	Tags         []string           `json:"tags"`
	Sizes        []string           `json:"sizes"`
	Colors       []string           `json:"colors"`
	IsPublished  *bool              `json:"is_published"`
}

// apply copies the present fields onto p
func (in *ProductUpdateInput) apply(p *models.Product) error {
	if in.Price != nil && in.Price.IsNegative() || in.ListPrice != nil && in.ListPrice.IsNegative() {
		return ErrNegativePrice
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.CategoryID != nil {
		p.CategoryID = *in.CategoryID
	}
	if in.Brand != nil {
		p.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.ListPrice != nil {
		p.ListPrice = *in.ListPrice
	}
	if in.CountInStock != nil {
		p.CountInStock = *in.CountInStock
	}
	if in.Dimensions != nil {
		p.Dimensions = *in.Dimensions
	}
	if in.Sizes != nil {
		p.Sizes = cleanList(in.Sizes)
	}
	if in.Colors != nil {
		p.Colors = cleanList(in.Colors)
	}
	if in.IsPublished != nil {
		p.IsPublished = *in.IsPublished
	}
	return nil
}

// PUT /admin/products/:id
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}

		var input ProductUpdateInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		var product models.Product
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, id).Error; err != nil {
				return err
			}
			if err := input.apply(&product); err != nil {
				return err
			}
			if input.CategoryID != nil {
				if err := ensureCategory(tx, product.CategoryID); err != nil {
					return err
				}
			}
			if input.Slug != nil && *input.Slug != "" {
				s, err := resolveSlug(tx, *input.Slug, product.Name, product.ID)
				if err != nil {
					return err
				}
				product.Slug = s
			}

			if err := tx.Omit(clause.Associations).Save(&product).Error; err != nil {
				return err
			}
			if input.Tags != nil {
				if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductTag{}).Error; err != nil {
					return err
				}
				tags := buildTags(input.Tags)
				for i := range tags {
					tags[i].ProductID = product.ID
				}
				if len(tags) > 0 {
					if err := tx.Create(&tags).Error; err != nil {
						return err
					}
				}
			}
			return withListingAssociations(tx).First(&product, product.ID).Error
		})
		if err != nil {
			writeProductError(c, err, "Failed to update product")
			return
		}

		c.JSON(http.StatusOK, product)
	}
}
