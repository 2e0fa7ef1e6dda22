package userControllers

import (
	"net/http"
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
	u := r.Group("/", testutil.As(id))
	u.GET("/user", GetUser(db))
	u.PUT("/user", UpdateUser(db))
	r.GET("/admin/users", GetAllUsers(db, 2))
	return r
}

func TestGetUser_CreatesProfileOnFirstCall(t *testing.T) {
	db := testutil.NewDB(t)
	r := router(db, auth.Identity{ID: "sb-1", Email: "Ana@Example.com", Role: auth.RoleUser})

	for i := 0; i < 2; i++ {
		w := testutil.Do(t, r, http.MethodGet, "/user", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var user models.User
		testutil.Decode(t, w, &user)
		assert.Equal(t, "sb-1", user.ID)
		assert.Equal(t, "ana@example.com", user.Email)
	}

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetUser_Unauthorized(t *testing.T) {
	db := testutil.NewDB(t)

	w := testutil.Do(t, router(db, testutil.Guest("g1")), http.MethodGet, "/user", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.Do(t, router(db, auth.Identity{ID: "sb-2", Role: auth.RoleUser}), http.MethodGet, "/user", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateUser_PartialUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	r := router(db, testutil.User("u1"))

	w := testutil.Do(t, r, http.MethodPut, "/user", gin.H{
		"name":    " Ana ",
		"phone":   "+971500000000",
		"address": gin.H{"country": "AE", "city": "Dubai", "street": "1 Marina"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = testutil.Do(t, r, http.MethodPut, "/user", gin.H{"avatar_url": "https://cdn.test/a.png"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user models.User
	testutil.Decode(t, w, &user)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "+971500000000", user.Phone)
	assert.Equal(t, "https://cdn.test/a.png", user.AvatarURL)
	assert.Equal(t, "Dubai", user.Address.City)

	w = testutil.Do(t, r, http.MethodPut, "/user", gin.H{"avatar_url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAllUsers_Paginates(t *testing.T) {
	db := testutil.NewDB(t)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, db.Create(&models.User{ID: id, Email: id + "@example.com"}).Error)
	}
	r := router(db, testutil.User("admin"))

	var list UserList
	testutil.Decode(t, testutil.Do(t, r, http.MethodGet, "/admin/users?page=2", nil), &list)
	assert.EqualValues(t, 3, list.Total)
	assert.Equal(t, 2, list.TotalPages)
	assert.Len(t, list.Users, 1)
}
