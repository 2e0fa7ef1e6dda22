package productcontroller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/history"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"gorm.io/gorm"
)

// findPublished loads a published product by slug, or by id when key is numeric
func findPublished(db *gorm.DB, key string) (*models.Product, error) {
	var product models.Product
	tx := withListingAssociations(db).Where("is_published = ?", true)
	if id, err := strconv.ParseUint(key, 10, 64); err == nil {
		tx = tx.Where("id = ?", id)
	} else {
		tx = tx.Where("slug = ?", key)
	}
	if err := tx.First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GET /products/:slug
func GetProductBySlug(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := findPublished(db, c.Param("slug"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respond.Error(c, http.StatusNotFound, "Product not found")
			} else {
				respond.Internal(c, err, "Failed to retrieve product")
			}
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// GET /products/:slug/related?page=&limit=
func GetRelatedProducts(db *gorm.DB, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := findPublished(db, c.Param("slug"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respond.Error(c, http.StatusNotFound, "Product not found")
			} else {
				respond.Internal(c, err, "Failed to retrieve product")
			}
			return
		}

		q, err := ParseListing(ListingParams{Page: c.Query("page"), Limit: c.Query("limit")}, pageSize)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, err.Error())
			return
		}

		scoped := db.Where("products.category_id = ? AND products.id <> ?", product.CategoryID, product.ID)
		result, err := ListProducts(scoped, q)
		if err != nil {
			respond.Internal(c, err, "Failed to fetch related products")
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// GET /categories
func GetCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories := []models.Category{}
		if err := db.Order("name ASC").Find(&categories).Error; err != nil {
			respond.Internal(c, err, "Failed to fetch categories")
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// GET /tags lists the distinct tag names of published products
func GetTags(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tags := []string{}
		err := db.Model(&models.ProductTag{}).
			Distinct("product_tags.name").
			Joins("JOIN products ON products.id = product_tags.product_id").
			Where("products.is_published = ? AND products.deleted_at IS NULL", true).
			Order("product_tags.name ASC").
			Pluck("product_tags.name", &tags).Error
		if err != nil {
			respond.Internal(c, err, "Failed to fetch tags")
			return
		}
		c.JSON(http.StatusOK, tags)
	}
}

// parseIDs reads a comma separated id list, ignoring blanks and duplicates
func parseIDs(raw string) ([]uint, error) {
	ids := []uint{}
	seen := map[uint]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, errors.New("invalid id " + strconv.Quote(part))
		}
		if !seen[uint(id)] {
			seen[uint(id)] = true
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}

// GET /api/products/stock?ids=1,2 returns {id: count_in_stock}; unknown or unpublished ids report 0
func GetStock(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := parseIDs(c.Query("ids"))
		if err != nil {
			respond.Error(c, http.StatusBadRequest, err.Error())
			return
		}

		stock := make(map[string]int, len(ids))
		for _, id := range ids {
			stock[strconv.FormatUint(uint64(id), 10)] = 0
		}
		if len(ids) > 0 {
			var rows []models.Product
			err := db.Select("id", "count_in_stock").
				Where("id IN ? AND is_published = ?", ids, true).
				Find(&rows).Error
			if err != nil {
				respond.Internal(c, err, "Failed to fetch stock")
				return
			}
			for _, p := range rows {
				stock[strconv.FormatUint(uint64(p.ID), 10)] = p.CountInStock
			}
		}
		c.JSON(http.StatusOK, stock)
	}
}

const (
	historyTypeHistory = "history"
	historyTypeRelated = "related"
	relatedLimit       = history.MaxItems
)

// GET /api/products/browsing-history?type=history|related&ids=..&categories=..
func GetBrowsingHistory(db *gorm.DB, store history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind := c.DefaultQuery("type", historyTypeHistory)
		if kind != historyTypeHistory && kind != historyTypeRelated {
			respond.Error(c, http.StatusBadRequest, "type must be history or related")
			return
		}

		ids, err := parseIDs(c.Query("ids"))
		if err != nil {
			respond.Error(c, http.StatusBadRequest, err.Error())
			return
		}

		if id, ok := auth.CurrentIdentity(c); ok && !id.IsGuest() && len(ids) == 0 {
			ids, err = store.Recent(c.Request.Context(), id.ID, history.MaxItems)
			if err != nil {
				respond.Internal(c, err, "Failed to load browsing history")
				return
			}
		}

		var products []models.Product
		switch kind {
		case historyTypeHistory:
			products, err = productsInOrder(db, ids)
		case historyTypeRelated:
			products, err = relatedTo(db, ids, c.Query("categories"))
		}
		if err != nil {
			respond.Internal(c, err, "Failed to load browsing history")
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": products})
	}
}

// productsInOrder returns the published products among ids, in the order of ids
func productsInOrder(db *gorm.DB, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var rows []models.Product
	if err := withListingAssociations(db).Where("id IN ? AND is_published = ?", ids, true).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	products := make([]models.Product, 0, len(rows))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// relatedTo returns products in the given categories, or in the categories of ids, excluding ids
func relatedTo(db *gorm.DB, ids []uint, categories string) ([]models.Product, error) {
	products := []models.Product{}
	tx := withListingAssociations(db).Where("products.is_published = ?", true)

	var slugs []string
	for _, s := range strings.Split(categories, ",") {
		if s = strings.TrimSpace(s); s != "" {
			slugs = append(slugs, s)
		}
	}
	switch {
	case len(slugs) > 0:
		tx = tx.Where("products.category_id IN (?)", db.Model(&models.Category{}).Select("id").Where("slug IN ?", slugs))
	case len(ids) > 0:
		tx = tx.Where("products.category_id IN (?)", db.Model(&models.Product{}).Select("category_id").Where("id IN ?", ids))
	default:
		return products, nil
	}
	if len(ids) > 0 {
		tx = tx.Where("products.id NOT IN ?", ids)
	}

	err := tx.Order("products.num_sales DESC, products.id ASC").Limit(relatedLimit).Find(&products).Error
	return products, err
}

// POST /products/:slug/view
func RecordView(db *gorm.DB, store history.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.CurrentIdentity(c)
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "authentication required")
			return
		}

		product, err := findPublished(db, c.Param("slug"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respond.Error(c, http.StatusNotFound, "Product not found")
			} else {
				respond.Internal(c, err, "Failed to retrieve product")
			}
			return
		}

		if err := store.Record(c.Request.Context(), id.ID, product.ID); err != nil {
			respond.Internal(c, err, "Failed to record view")
			return
		}
		c.Status(http.StatusNoContent)
	}
}
