package wishlistControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WishlistInput struct {
	ProductID uint `json:"product_id" binding:"required"`
}

func userID(c *gin.Context) (string, bool) {
	id, ok := auth.CurrentIdentity(c)
	if !ok || id.IsGuest() {
		respond.Error(c, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return id.ID, true
}

func loadWishlist(db *gorm.DB, uid string) ([]models.WishlistItem, error) {
	items := []models.WishlistItem{}
	err := db.Where("user_id = ?", uid).Order("added_at DESC, id DESC").Find(&items).Error
	return items, err
}

// addItem snapshots a published product into the wishlist; adding it twice is a no-op
func addItem(db *gorm.DB, uid string, productID uint) error {
	var product models.Product
	if err := db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("is_published = ?", true).First(&product, productID).Error; err != nil {
		return err
	}
	item := models.NewWishlistItem(uid, &product, time.Now())
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&item).Error
}

func bindProduct(c *gin.Context) (uint, bool) {
	var input WishlistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.BadRequest(c, err)
		return 0, false
	}
	return input.ProductID, true
}

func writeAddError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respond.Error(c, http.StatusNotFound, "Product not found")
		return
	}
	respond.Internal(c, err, "Failed to update wishlist")
}

// GET /wishlist
func GetWishlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		items, err := loadWishlist(db, uid)
		if err != nil {
			respond.Internal(c, err, "Failed to fetch wishlist")
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// POST /wishlist
func AddToWishlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		productID, ok := bindProduct(c)
		if !ok {
			return
		}

		if err := addItem(db, uid, productID); err != nil {
			writeAddError(c, err)
			return
		}

		items, err := loadWishlist(db, uid)
		if err != nil {
			respond.Internal(c, err, "Failed to fetch wishlist")
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// DELETE /wishlist/:product_id
func RemoveFromWishlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		productID, ok := respond.ParamID(c, "product_id")
		if !ok {
			return
		}

		result := db.Where("user_id = ? AND product_id = ?", uid, productID).Delete(&models.WishlistItem{})
		if result.Error != nil {
			respond.Internal(c, result.Error, "Failed to update wishlist")
			return
		}
		if result.RowsAffected == 0 {
			respond.Error(c, http.StatusNotFound, "Product is not in the wishlist")
			return
		}

		items, err := loadWishlist(db, uid)
		if err != nil {
			respond.Internal(c, err, "Failed to fetch wishlist")
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// POST /wishlist/toggle adds the product when absent and removes it otherwise
func ToggleWishlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		productID, ok := bindProduct(c)
		if !ok {
			return
		}

		inWishlist := false
		err := db.Transaction(func(tx *gorm.DB) error {
			result := tx.Where("user_id = ? AND product_id = ?", uid, productID).Delete(&models.WishlistItem{})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected > 0 {
				return nil
			}
			inWishlist = true
			return addItem(tx, uid, productID)
		})
		if err != nil {
			writeAddError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"product_id": productID, "in_wishlist": inWishlist})
	}
}

// DELETE /wishlist
func ClearWishlist(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			return
		}
		if err := db.Where("user_id = ?", uid).Delete(&models.WishlistItem{}).Error; err != nil {
			respond.Internal(c, err, "Failed to clear wishlist")
			return
		}
		c.JSON(http.StatusOK, []models.WishlistItem{})
	}
}
