package productcontroller

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"github.com/junaidrashid-git/storefront-api/slug"
	"github.com/junaidrashid-git/storefront-api/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrCategoryInUse = errors.New("category still has products")

// storeCategoryImage uploads the optional "image" form file; an empty key means none was sent
func storeCategoryImage(c *gin.Context, store storage.ObjectStorage) (key, url string, ok bool) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", "", true
	}
	key, url, err = storage.PutUpload(c.Request.Context(), store, "categories", file, time.Now())
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) {
			respond.Error(c, http.StatusBadRequest, err.Error())
		} else {
			respond.Upstream(c, err, "Failed to store image")
		}
		return "", "", false
	}
	return key, url, true
}

// removeStored deletes an object after its row no longer references it
func removeStored(c *gin.Context, store storage.ObjectStorage, key string) {
	if key == "" {
		return
	}
	if err := store.Delete(c.Request.Context(), key); err != nil {
		logger.FromGin(c).Warn("failed to delete stored image", zap.String("key", key), zap.Error(err))
	}
}

// POST /admin/categories (multipart: name, slug?, image?)
func CreateCategory(db *gorm.DB, store storage.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" {
			respond.Error(c, http.StatusBadRequest, "name is required")
			return
		}
		categorySlug := slug.Make(c.DefaultPostForm("slug", name))
		if categorySlug == "" {
			respond.Error(c, http.StatusBadRequest, ErrEmptySlug.Error())
			return
		}

		var count int64
		if err := db.Model(&models.Category{}).Where("slug = ? OR name = ?", categorySlug, name).Count(&count).Error; err != nil {
			respond.Internal(c, err, "Failed to create category")
			return
		}
		if count > 0 {
			respond.Error(c, http.StatusConflict, "category name or slug already in use")
			return
		}

		key, url, ok := storeCategoryImage(c, store)
		if !ok {
			return
		}

		category := models.Category{Name: name, Slug: categorySlug, Image: url, ImageKey: key}
		if err := db.Create(&category).Error; err != nil {
			removeStored(c, store, key)
			respond.Internal(c, err, "Failed to create category")
			return
		}

		c.JSON(http.StatusCreated, category)
	}
}

// PUT /admin/categories/:id (multipart: name?, slug?, image?)
func UpdateCategory(db *gorm.DB, store storage.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}

		var category models.Category
		if err := db.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respond.Error(c, http.StatusNotFound, "Category not found")
			} else {
				respond.Internal(c, err, "Failed to retrieve category")
			}
			return
		}

		if v := strings.TrimSpace(c.PostForm("name")); v != "" {
			category.Name = v
		}
		if v := c.PostForm("slug"); v != "" {
			category.Slug = slug.Make(v)
			if category.Slug == "" {
				respond.Error(c, http.StatusBadRequest, ErrEmptySlug.Error())
				return
			}
		}

		var count int64
		err := db.Model(&models.Category{}).
			Where("(slug = ? OR name = ?) AND id <> ?", category.Slug, category.Name, category.ID).
			Count(&count).Error
		if err != nil {
			respond.Internal(c, err, "Failed to update category")
			return
		}
		if count > 0 {
			respond.Error(c, http.StatusConflict, "category name or slug already in use")
			return
		}

		key, url, ok := storeCategoryImage(c, store)
		if !ok {
			return
		}
		oldKey := ""
		if key != "" {
			oldKey = category.ImageKey
			category.Image, category.ImageKey = url, key
		}

		if err := db.Save(&category).Error; err != nil {
			removeStored(c, store, key)
			respond.Internal(c, err, "Failed to update category")
			return
		}
		removeStored(c, store, oldKey)

		c.JSON(http.StatusOK, category)
	}
}

// DELETE /admin/categories/:id refuses while products still reference the category
func DeleteCategory(db *gorm.DB, store storage.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}

		var category models.Category
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&category, id).Error; err != nil {
				return err
			}
			// soft-deleted products keep their foreign key to the category
			var count int64
			if err := tx.Unscoped().Model(&models.Product{}).Where("category_id = ?", category.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrCategoryInUse
			}
			return tx.Delete(&category).Error
		})
		if err != nil {
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				respond.Error(c, http.StatusNotFound, "Category not found")
			case errors.Is(err, ErrCategoryInUse):
				respond.Error(c, http.StatusConflict, err.Error())
			default:
				respond.Internal(c, err, "Failed to delete category")
			}
			return
		}

		removeStored(c, store, category.ImageKey)
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}
