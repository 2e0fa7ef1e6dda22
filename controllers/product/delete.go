package productcontroller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"github.com/junaidrashid-git/storefront-api/storage"
	"gorm.io/gorm"
)

// DELETE /admin/products/:id soft-deletes the product; orders keep their snapshots
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}

		result := db.Delete(&models.Product{}, id)
		if result.Error != nil {
			respond.Internal(c, result.Error, "Failed to delete product")
			return
		}
		if result.RowsAffected == 0 {
			respond.Error(c, http.StatusNotFound, "Product not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}

// DELETE /admin/products/:id/images/:image_id removes the image row and its stored object
func DeleteProductImage(db *gorm.DB, store storage.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}
		imageID, ok := respond.ParamID(c, "image_id")
		if !ok {
			return
		}

		var image models.ProductImage
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("id = ? AND product_id = ?", imageID, productID).First(&image).Error; err != nil {
				return err
			}
			if err := tx.Delete(&image).Error; err != nil {
				return err
			}
			return tx.Model(&models.ProductImage{}).
				Where("product_id = ? AND position > ?", productID, image.Position).
				UpdateColumn("position", gorm.Expr("position - 1")).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respond.Error(c, http.StatusNotFound, "Image not found")
			} else {
				respond.Internal(c, err, "Failed to delete image")
			}
			return
		}

		removeStored(c, store, image.StorageKey)

		c.JSON(http.StatusOK, gin.H{"message": "Image deleted successfully"})
	}
}
