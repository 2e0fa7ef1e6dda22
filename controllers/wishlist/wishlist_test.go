package wishlistControllers

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func router(db *gorm.DB, id auth.Identity) *gin.Engine {
	r := testutil.Router()
	g := r.Group("/wishlist", testutil.As(id))
	g.GET("", GetWishlist(db))
	g.POST("", AddToWishlist(db))
	g.POST("/toggle", ToggleWishlist(db))
	g.DELETE("/:product_id", RemoveFromWishlist(db))
	g.DELETE("", ClearWishlist(db))
	return r
}

func TestWishlist_AddIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.Product(t, db, "Linen Shirt", "39.90", 4)
	r := router(db, testutil.User("u1"))

	for i := 0; i < 2; i++ {
		w := testutil.Do(t, r, http.MethodPost, "/wishlist", gin.H{"product_id": p.ID})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	var items []models.WishlistItem
	testutil.Decode(t, testutil.Do(t, r, http.MethodGet, "/wishlist", nil), &items)
	require.Len(t, items, 1)
	assert.Equal(t, p.ID, items[0].ProductID)
	assert.Equal(t, "Linen Shirt", items[0].Name)
	assert.Equal(t, p.Slug, items[0].Slug)
	assert.Equal(t, "39.9", items[0].Price.String())
	assert.NotEmpty(t, items[0].Image)
}

func TestWishlist_UnknownOrDraftProduct(t *testing.T) {
	db := testutil.NewDB(t)
	draft := testutil.Product(t, db, "Draft", "10.00", 1, func(p *models.Product) { p.IsPublished = false })
	r := router(db, testutil.User("u1"))

	w := testutil.Do(t, r, http.MethodPost, "/wishlist", gin.H{"product_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.Do(t, r, http.MethodPost, "/wishlist", gin.H{"product_id": draft.ID})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.Do(t, r, http.MethodPost, "/wishlist", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWishlist_Toggle(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.Product(t, db, "Cap", "12.00", 3)
	r := router(db, testutil.User("u1"))

	var resp struct {
		InWishlist bool `json:"in_wishlist"`
	}
	testutil.Decode(t, testutil.Do(t, r, http.MethodPost, "/wishlist/toggle", gin.H{"product_id": p.ID}), &resp)
	assert.True(t, resp.InWishlist)

	testutil.Decode(t, testutil.Do(t, r, http.MethodPost, "/wishlist/toggle", gin.H{"product_id": p.ID}), &resp)
	assert.False(t, resp.InWishlist)

	var count int64
	require.NoError(t, db.Model(&models.WishlistItem{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestWishlist_RemoveAndClear(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.Product(t, db, "A", "1.00", 1)
	b := testutil.Product(t, db, "B", "2.00", 1)
	r := router(db, testutil.User("u1"))
	other := router(db, testutil.User("u2"))

	testutil.Do(t, r, http.MethodPost, "/wishlist", gin.H{"product_id": a.ID})
	testutil.Do(t, r, http.MethodPost, "/wishlist", gin.H{"product_id": b.ID})
	testutil.Do(t, other, http.MethodPost, "/wishlist", gin.H{"product_id": a.ID})

	w := testutil.Do(t, r, http.MethodDelete, "/wishlist/"+strconv.FormatUint(uint64(a.ID), 10), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.WishlistItem
	testutil.Decode(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ProductID)

	w = testutil.Do(t, r, http.MethodDelete, "/wishlist/"+strconv.FormatUint(uint64(a.ID), 10), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.Do(t, r, http.MethodDelete, "/wishlist", nil)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.Decode(t, testutil.Do(t, r, http.MethodGet, "/wishlist", nil), &items)
	assert.Empty(t, items)

	testutil.Decode(t, testutil.Do(t, other, http.MethodGet, "/wishlist", nil), &items)
	assert.Len(t, items, 1)
}

func TestWishlist_RejectsGuests(t *testing.T) {
	db := testutil.NewDB(t)
	r := router(db, testutil.Guest("g1"))
	w := testutil.Do(t, r, http.MethodGet, "/wishlist", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
