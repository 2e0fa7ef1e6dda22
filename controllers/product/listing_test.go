package productcontroller

import (
	"net/http"
	"testing"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestParseListing(t *testing.T) {
	q, err := ParseListing(ListingParams{}, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 9, q.Limit)
	assert.Equal(t, SortNewest, q.Sort)
	assert.Nil(t, q.MinPrice)
	assert.Nil(t, q.MinRating)

	q, err = ParseListing(ListingParams{Category: "all", Tag: "ALL", Price: "all", Rating: "all", Sort: "bogus"}, 9)
	require.NoError(t, err)
	assert.Empty(t, q.Category)
	assert.Empty(t, q.Tag)
	assert.Nil(t, q.MaxPrice)
	assert.Equal(t, SortNewest, q.Sort)

	q, err = ParseListing(ListingParams{Price: "10-50", Rating: "4", Page: "3", Limit: "500"}, 9)
	require.NoError(t, err)
	assert.Equal(t, "10", q.MinPrice.String())
	assert.Equal(t, "50", q.MaxPrice.String())
	assert.Equal(t, 4.0, *q.MinRating)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, MaxPageSize, q.Limit)

	q, err = ParseListing(ListingParams{Price: "-20", Limit: "0"}, 9)
	require.NoError(t, err)
	assert.Nil(t, q.MinPrice)
	assert.Equal(t, "20", q.MaxPrice.String())
	assert.Equal(t, 1, q.Limit)

	for _, p := range []ListingParams{
		{Price: "abc"},
		{Price: "50-10"},
		{Price: "x-10"},
		{Rating: "6"},
		{Rating: "-1"},
		{Page: "0"},
		{Page: "two"},
		{Limit: "many"},
	} {
		_, err := ParseListing(p, 9)
		assert.Error(t, err, "%+v", p)
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now`, escapeLike("50% off_now"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
}

// seedCatalog creates five published products and one draft
func seedCatalog(t *testing.T, db *gorm.DB) map[string]*models.Product {
	t.Helper()
	shirts := testutil.Category(t, db, "Shirts", "shirts")
	shoes := testutil.Category(t, db, "Shoes", "shoes")

	inCategory := func(c *models.Category) testutil.ProductOpts {
		return func(p *models.Product) { p.CategoryID = c.ID }
	}
	stats := func(rating float64, sales int, tags ...string) testutil.ProductOpts {
		return func(p *models.Product) {
			p.AvgRating = rating
			p.NumSales = sales
			for _, tag := range tags {
				p.Tags = append(p.Tags, models.ProductTag{Name: tag})
			}
		}
	}

	products := map[string]*models.Product{
		"tee":     testutil.Product(t, db, "Basic Tee", "10.00", 5, inCategory(shirts), stats(4.5, 10, "summer")),
		"polo":    testutil.Product(t, db, "Polo Shirt", "25.00", 5, inCategory(shirts), stats(3.0, 50)),
		"oxford":  testutil.Product(t, db, "Oxford Shirt", "40.00", 5, inCategory(shirts), stats(4.9, 5, "Office")),
		"runner":  testutil.Product(t, db, "Trail Runner", "90.00", 5, inCategory(shoes), stats(4.0, 30, "summer")),
		"sandals": testutil.Product(t, db, "100% Cotton Sandals", "15.00", 5, inCategory(shoes), stats(2.0, 1)),
	}
	draft := testutil.Product(t, db, "Draft Tee", "5.00", 5, inCategory(shirts))
	require.NoError(t, db.Model(draft).Update("is_published", false).Error)
	return products
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func list(t *testing.T, db *gorm.DB, p ListingParams) ListingResult {
	t.Helper()
	q, err := ParseListing(p, 9)
	require.NoError(t, err)
	result, err := ListProducts(db, q)
	require.NoError(t, err)
	return result
}

func TestListProducts_Filters(t *testing.T) {
	db := testutil.NewDB(t)
	seedCatalog(t, db)

	all := list(t, db, ListingParams{})
	assert.EqualValues(t, 5, all.TotalProducts, "drafts are hidden")

	byQuery := list(t, db, ListingParams{Q: "SHIRT", Sort: SortPriceAsc})
	assert.Equal(t, []string{"Polo Shirt", "Oxford Shirt"}, names(byQuery.Products))

	literal := list(t, db, ListingParams{Q: "100%"})
	assert.Equal(t, []string{"100% Cotton Sandals"}, names(literal.Products))

	byCategory := list(t, db, ListingParams{Category: "shoes", Sort: SortPriceAsc})
	assert.Equal(t, []string{"100% Cotton Sandals", "Trail Runner"}, names(byCategory.Products))

	byTag := list(t, db, ListingParams{Tag: "SUMMER", Sort: SortPriceAsc})
	assert.Equal(t, []string{"Basic Tee", "Trail Runner"}, names(byTag.Products))

	byPrice := list(t, db, ListingParams{Price: "15-40", Sort: SortPriceAsc})
	assert.Equal(t, []string{"100% Cotton Sandals", "Polo Shirt", "Oxford Shirt"}, names(byPrice.Products), "bounds are inclusive")

	byRating := list(t, db, ListingParams{Rating: "4", Sort: SortAvgReview})
	assert.Equal(t, []string{"Oxford Shirt", "Basic Tee", "Trail Runner"}, names(byRating.Products))

	combined := list(t, db, ListingParams{Category: "shirts", Tag: "office", Price: "30-"})
	assert.Equal(t, []string{"Oxford Shirt"}, names(combined.Products))
	assert.EqualValues(t, 1, combined.TotalProducts)

	none := list(t, db, ListingParams{Category: "hats"})
	assert.Empty(t, none.Products)
	assert.Zero(t, none.From)
	assert.Zero(t, none.To)
	assert.Zero(t, none.TotalPages)
}

func TestListProducts_Sorting(t *testing.T) {
	db := testutil.NewDB(t)
	seedCatalog(t, db)

	assert.Equal(t,
		[]string{"Polo Shirt", "Trail Runner", "Basic Tee", "Oxford Shirt", "100% Cotton Sandals"},
		names(list(t, db, ListingParams{Sort: SortBestSelling}).Products))
	assert.Equal(t,
		[]string{"Trail Runner", "Oxford Shirt", "Polo Shirt", "100% Cotton Sandals", "Basic Tee"},
		names(list(t, db, ListingParams{Sort: SortPriceDesc}).Products))
	assert.Equal(t,
		[]string{"100% Cotton Sandals", "Trail Runner", "Oxford Shirt", "Polo Shirt", "Basic Tee"},
		names(list(t, db, ListingParams{}).Products), "newest first")
}

func TestListProducts_Pagination(t *testing.T) {
	db := testutil.NewDB(t)
	seedCatalog(t, db)

	page1 := list(t, db, ListingParams{Sort: SortPriceAsc, Limit: "2"})
	assert.EqualValues(t, 5, page1.TotalProducts)
	assert.Equal(t, 3, page1.TotalPages)
	assert.Equal(t, 1, page1.From)
	assert.Equal(t, 2, page1.To)
	assert.Equal(t, []string{"Basic Tee", "100% Cotton Sandals"}, names(page1.Products))

	page3 := list(t, db, ListingParams{Sort: SortPriceAsc, Limit: "2", Page: "3"})
	assert.Equal(t, 5, page3.From)
	assert.Equal(t, 5, page3.To)
	assert.Equal(t, []string{"Trail Runner"}, names(page3.Products))

	beyond := list(t, db, ListingParams{Limit: "2", Page: "9"})
	assert.Empty(t, beyond.Products)
	assert.Zero(t, beyond.From)
	assert.Equal(t, 9, beyond.Page)

	require.Len(t, page1.Products[0].Images, 1, "listing preloads images")
	require.NotNil(t, page1.Products[0].Category)
}

func TestGetProducts_Handler(t *testing.T) {
	db := testutil.NewDB(t)
	seedCatalog(t, db)
	r := testutil.Router()
	r.GET("/products", GetProducts(db, 2))

	w := testutil.Do(t, r, http.MethodGet, "/products?category=shirts&sort=price-high-to-low", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result ListingResult
	testutil.Decode(t, w, &result)
	assert.Equal(t, []string{"Oxford Shirt", "Polo Shirt"}, names(result.Products))
	assert.Equal(t, 2, result.TotalPages)

	w = testutil.Do(t, r, http.MethodGet, "/products?price=cheap", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = testutil.Do(t, r, http.MethodGet, "/products?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
