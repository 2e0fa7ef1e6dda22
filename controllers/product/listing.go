package productcontroller

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	SortBestSelling  = "best-selling"
	SortPriceAsc     = "price-low-to-high"
	SortPriceDesc    = "price-high-to-low"
	SortAvgReview    = "avg-customer-review"
	SortNewest       = "newest"
	MaxPageSize      = 100
	filterAll        = "all"
	likeEscapeClause = " ESCAPE '\\'"
)

var (
	ErrInvalidPrice  = errors.New("invalid price range")
	ErrInvalidRating = errors.New("invalid rating")
	ErrInvalidPage   = errors.New("invalid page")
	ErrInvalidLimit  = errors.New("invalid limit")
)

// ListingParams are the raw query string parameters of the product listing
type ListingParams struct {
	Q        string `form:"q"`
	Category string `form:"category"`
	Tag      string `form:"tag"`
	Price    string `form:"price"`
	Rating   string `form:"rating"`
	Sort     string `form:"sort"`
	Page     string `form:"page"`
	Limit    string `form:"limit"`
}

// ListingQuery is a validated product listing request
type ListingQuery struct {
	Query     string
	Category  string
	Tag       string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	MinRating *float64
	Sort      string
	Page      int
	Limit     int
}

// ListingResult is one page of products
type ListingResult struct {
	Products      []models.Product `json:"products"`
	TotalProducts int64            `json:"total_products"`
	TotalPages    int              `json:"total_pages"`
	Page          int              `json:"page"`
	From          int              `json:"from"`
	To            int              `json:"to"`
}

// ParseListing validates params. Empty and "all" values disable a filter.
func ParseListing(p ListingParams, defaultLimit int) (ListingQuery, error) {
	q := ListingQuery{
		Query:    strings.TrimSpace(p.Q),
		Category: normalizeFilter(p.Category),
		Tag:      normalizeFilter(p.Tag),
		Sort:     normalizeSort(p.Sort),
		Page:     1,
		Limit:    defaultLimit,
	}

	var err error
	if q.MinPrice, q.MaxPrice, err = parsePriceRange(p.Price); err != nil {
		return q, err
	}

	if r := normalizeFilter(p.Rating); r != "" {
		rating, err := strconv.ParseFloat(r, 64)
		if err != nil || rating < 0 || rating > 5 {
			return q, ErrInvalidRating
		}
		q.MinRating = &rating
	}

	if p.Page != "" {
		page, err := strconv.Atoi(p.Page)
		if err != nil || page < 1 {
			return q, ErrInvalidPage
		}
		q.Page = page
	}

	if p.Limit != "" {
		limit, err := strconv.Atoi(p.Limit)
		if err != nil {
			return q, ErrInvalidLimit
		}
		q.Limit = limit
	}
	q.Limit = min(max(q.Limit, 1), MaxPageSize)
	return q, nil
}

func normalizeFilter(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, filterAll) {
		return ""
	}
	return v
}

func normalizeSort(v string) string {
	switch v {
	case SortBestSelling, SortPriceAsc, SortPriceDesc, SortAvgReview, SortNewest:
		return v
	default:
		return SortNewest
	}
}

// parsePriceRange reads "min-max"; either side may be empty
func parsePriceRange(v string) (*decimal.Decimal, *decimal.Decimal, error) {
	v = normalizeFilter(v)
	if v == "" {
		return nil, nil, nil
	}
	lo, hi, found := strings.Cut(v, "-")
	if !found {
		return nil, nil, ErrInvalidPrice
	}

	parse := func(s string) (*decimal.Decimal, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil || d.IsNegative() {
			return nil, ErrInvalidPrice
		}
		return &d, nil
	}

	minPrice, err := parse(lo)
	if err != nil {
		return nil, nil, err
	}
	maxPrice, err := parse(hi)
	if err != nil {
		return nil, nil, err
	}
	if minPrice != nil && maxPrice != nil && minPrice.GreaterThan(*maxPrice) {
		return nil, nil, ErrInvalidPrice
	}
	return minPrice, maxPrice, nil
}

// escapeLike protects LIKE wildcards in user input
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Filter narrows db to published products matching the query
func (q ListingQuery) Filter(db *gorm.DB) *gorm.DB {
	tx := db.Model(&models.Product{}).Where("products.is_published = ?", true)
	sub := db.Session(&gorm.Session{NewDB: true})

	if q.Query != "" {
		pattern := "%" + strings.ToLower(escapeLike(q.Query)) + "%"
		tx = tx.Where(
			"LOWER(products.name) LIKE ?"+likeEscapeClause+
				" OR LOWER(products.description) LIKE ?"+likeEscapeClause+
				" OR LOWER(products.brand) LIKE ?"+likeEscapeClause,
			pattern, pattern, pattern,
		)
	}
	if q.Category != "" {
		tx = tx.Where("products.category_id IN (?)",
			sub.Model(&models.Category{}).Select("id").Where("slug = ?", q.Category))
	}
	if q.Tag != "" {
		tx = tx.Where("products.id IN (?)",
			sub.Model(&models.ProductTag{}).Select("product_id").Where("LOWER(name) = ?", strings.ToLower(q.Tag)))
	}
	if q.MinPrice != nil {
		tx = tx.Where("products.price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where("products.price <= ?", *q.MaxPrice)
	}
	if q.MinRating != nil {
		tx = tx.Where("products.avg_rating >= ?", *q.MinRating)
	}
	return tx
}

// OrderBy is the ORDER BY clause for the sort key; ties fall back to id
func (q ListingQuery) OrderBy() string {
	switch q.Sort {
	case SortBestSelling:
		return "products.num_sales DESC, products.id ASC"
	case SortPriceAsc:
		return "products.price ASC, products.id ASC"
	case SortPriceDesc:
		return "products.price DESC, products.id ASC"
	case SortAvgReview:
		return "products.avg_rating DESC, products.id ASC"
	default:
		return "products.created_at DESC, products.id DESC"
	}
}

// withListingAssociations preloads what product cards display
func withListingAssociations(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC, id ASC") }).
		Preload("Tags")
}

// ListProducts runs the count and the page query. db may carry extra conditions.
func ListProducts(db *gorm.DB, q ListingQuery) (ListingResult, error) {
	db = db.Session(&gorm.Session{})
	result := ListingResult{Products: []models.Product{}, Page: q.Page}

	if err := q.Filter(db).Count(&result.TotalProducts).Error; err != nil {
		return result, err
	}
	result.TotalPages = int(math.Ceil(float64(result.TotalProducts) / float64(q.Limit)))

	offset := (q.Page - 1) * q.Limit
	if int64(offset) >= result.TotalProducts {
		return result, nil
	}

	err := withListingAssociations(q.Filter(db)).
		Order(q.OrderBy()).
		Limit(q.Limit).
		Offset(offset).
		Find(&result.Products).Error
	if err != nil {
		return result, err
	}

	if len(result.Products) > 0 {
		result.From = offset + 1
		result.To = offset + len(result.Products)
	}
	return result, nil
}

// GET /products
func GetProducts(db *gorm.DB, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params ListingParams
		if err := c.ShouldBindQuery(&params); err != nil {
			respond.BadRequest(c, err)
			return
		}

		q, err := ParseListing(params, pageSize)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, err.Error())
			return
		}

		result, err := ListProducts(db, q)
		if err != nil {
			respond.Internal(c, err, "Failed to fetch products")
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
