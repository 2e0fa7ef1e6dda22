package productcontroller

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"github.com/junaidrashid-git/storefront-api/slug"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrSlugTaken       = errors.New("slug already in use")
	ErrUnknownCategory = errors.New("category not found")
	ErrNegativePrice   = errors.New("price must not be negative")
	ErrEmptySlug       = errors.New("name must contain letters or digits")
)

// ProductInput is the admin create body
type ProductInput struct {
	Name         string            `json:"name" binding:"required,max=200"`
	Slug         string            `json:"slug" binding:"omitempty,max=200"`
	CategoryID   uint              `json:"category_id" binding:"required"`
	Brand        string            `json:"brand" binding:"max=100"`
	Description  string            `json:"description"`
	Price        decimal.Decimal   `json:"price"`
	ListPrice    decimal.Decimal   `json:"list_price"`
	CountInStock int               `json:"count_in_stock" binding:"gte=0"`
	Dimensions   models.Dimensions `json:"dimensions"`
	Tags         []string          `json:"tags"`
	Sizes        []string          `json:"sizes"`
	Colors       []string          `json:"colors"`
	IsPublished  bool              `json:"is_published"`
}

// slugTaken reports whether another product, deleted ones included, uses candidate
func slugTaken(tx *gorm.DB, candidate string, exceptID uint) (bool, error) {
	var count int64
	err := tx.Unscoped().Model(&models.Product{}).
		Where("slug = ? AND id <> ?", candidate, exceptID).
		Count(&count).Error
	return count > 0, err
}

// resolveSlug generates a unique slug from name, or checks that an explicit slug is free
func resolveSlug(tx *gorm.DB, explicit, name string, exceptID uint) (string, error) {
	if explicit != "" {
		s := slug.Make(explicit)
		if s == "" {
			return "", ErrEmptySlug
		}
		taken, err := slugTaken(tx, s, exceptID)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrSlugTaken
		}
		return s, nil
	}

	base := slug.Make(name)
	if base == "" {
		return "", ErrEmptySlug
	}
	return slug.Unique(base, func(candidate string) (bool, error) {
		return slugTaken(tx, candidate, exceptID)
	})
}

func ensureCategory(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrUnknownCategory
	}
	return nil
}

func buildTags(names []string) []models.ProductTag {
	tags := []models.ProductTag{}
	seen := map[string]bool{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[strings.ToLower(n)] {
			continue
		}
		seen[strings.ToLower(n)] = true
		tags = append(tags, models.ProductTag{Name: n})
	}
	return tags
}

func cleanList(in []string) []string {
	out := []string{}
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// writeProductError maps validation sentinels to status codes
func writeProductError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ErrSlugTaken):
		respond.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownCategory), errors.Is(err, ErrNegativePrice), errors.Is(err, ErrEmptySlug):
		respond.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		respond.Error(c, http.StatusNotFound, "Product not found")
	default:
		respond.Internal(c, err, msg)
	}
}

// POST /admin/products
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}
		if input.Price.IsNegative() || input.ListPrice.IsNegative() {
			respond.Error(c, http.StatusBadRequest, ErrNegativePrice.Error())
			return
		}

		product := models.Product{
			Name:         strings.TrimSpace(input.Name),
			CategoryID:   input.CategoryID,
			Brand:        strings.TrimSpace(input.Brand),
			Description:  input.Description,
			Price:        input.Price,
			ListPrice:    input.ListPrice,
			CountInStock: input.CountInStock,
			Dimensions:   input.Dimensions,
			Tags:         buildTags(input.Tags),
			Sizes:        cleanList(input.Sizes),
			Colors:       cleanList(input.Colors),
			IsPublished:  input.IsPublished,
		}
		if product.ListPrice.IsZero() {
			product.ListPrice = product.Price
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := ensureCategory(tx, product.CategoryID); err != nil {
				return err
			}
			s, err := resolveSlug(tx, input.Slug, product.Name, 0)
			if err != nil {
				return err
			}
			product.Slug = s
			return tx.Create(&product).Error
		})
		if err != nil {
			writeProductError(c, err, "Failed to create product")
			return
		}

		c.JSON(http.StatusCreated, product)
	}
}

// POST /admin/products/:id/images (multipart "image")
func UploadProductImage(db *gorm.DB, store storage.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}

		var product models.Product
		if err := db.First(&product, id).Error; err != nil {
			writeProductError(c, err, "Failed to retrieve product")
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "Image is required")
			return
		}

		key, url, err := storage.PutUpload(c.Request.Context(), store, "products", file, time.Now())
		if err != nil {
			if errors.Is(err, storage.ErrNotImage) {
				respond.Error(c, http.StatusBadRequest, err.Error())
			} else {
				respond.Upstream(c, err, "Failed to store image")
			}
			return
		}

		image := models.ProductImage{ProductID: product.ID, URL: url, StorageKey: key}
		err = db.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.ProductImage{}).Where("product_id = ?", product.ID).Count(&count).Error; err != nil {
				return err
			}
			image.Position = int(count)
			return tx.Create(&image).Error
		})
		if err != nil {
			_ = store.Delete(c.Request.Context(), key)
			respond.Internal(c, err, "Failed to save image")
			return
		}

		c.JSON(http.StatusCreated, image)
	}
}
