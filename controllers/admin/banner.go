package adminController

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"github.com/junaidrashid-git/storefront-api/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errUnknownBanner = errors.New("unknown banner id")

// BannerUpdate is the PUT body; absent fields are left unchanged
type BannerUpdate struct {
	Title         *string `json:"title" binding:"omitempty,max=200"`
	Subtitle      *string `json:"subtitle" binding:"omitempty,max=300"`
	LinkURL       *string `json:"link_url" binding:"omitempty,max=500"`
	ButtonCaption *string `json:"button_caption" binding:"omitempty,max=50"`
	Position      *int    `json:"position" binding:"omitempty,gte=0"`
	IsActive      *bool   `json:"is_active"`
}

type BannerOrder struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

func deleteStored(c *gin.Context, store storage.ObjectStorage, key string) {
	if key == "" {
		return
	}
	if err := store.Delete(c.Request.Context(), key); err != nil {
		logger.FromGin(c).Warn("failed to delete stored banner image", zap.String("key", key), zap.Error(err))
	}
}

// GET /banners
func GetActiveBanners(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		banners := []models.Banner{}
		if err := db.Where("is_active = ?", true).Order("position ASC, id ASC").Find(&banners).Error; err != nil {
			respond.Internal(c, err, "Failed to get banners")
			return
		}
		c.JSON(http.StatusOK, banners)
	}
}

// GET /admin/banners
func GetBanners(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		banners := []models.Banner{}
		if err := db.Order("position ASC, id ASC").Find(&banners).Error; err != nil {
			respond.Internal(c, err, "Failed to get banners")
			return
		}
		c.JSON(http.StatusOK, banners)
	}
}

// POST /admin/banners (multipart: image, title, subtitle, link_url, button_caption, is_active)
func UploadBanner(db *gorm.DB, store storage.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "No image uploaded")
			return
		}

		banner := models.Banner{
			Title:         strings.TrimSpace(c.PostForm("title")),
			Subtitle:      strings.TrimSpace(c.PostForm("subtitle")),
			LinkURL:       strings.TrimSpace(c.PostForm("link_url")),
			ButtonCaption: strings.TrimSpace(c.PostForm("button_caption")),
			IsActive:      true,
		}
		if v := c.PostForm("is_active"); v != "" {
			active, err := strconv.ParseBool(v)
			if err != nil {
				respond.Error(c, http.StatusBadRequest, "is_active must be true or false")
				return
			}
			banner.IsActive = active
		}

		key, url, err := storage.PutUpload(c.Request.Context(), store, "banners", fileHeader, time.Now())
		if err != nil {
			if errors.Is(err, storage.ErrNotImage) {
				respond.Error(c, http.StatusBadRequest, err.Error())
			} else {
				respond.Upstream(c, err, "Failed to store banner image")
			}
			return
		}
		banner.ImageURL, banner.StorageKey = url, key

		err = db.Transaction(func(tx *gorm.DB) error {
			var last struct{ Max *int }
			if err := tx.Model(&models.Banner{}).Select("MAX(position) AS max").Scan(&last).Error; err != nil {
				return err
			}
			if last.Max != nil {
				banner.Position = *last.Max + 1
			}
			return tx.Create(&banner).Error
		})
		if err != nil {
			deleteStored(c, store, key)
			respond.Internal(c, err, "Failed to save banner")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Banner uploaded", "data": banner})
	}
}

// PUT /admin/banners/:id
func UpdateBanner(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}

		var input BannerUpdate
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		var banner models.Banner
		if err := db.First(&banner, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respond.Error(c, http.StatusNotFound, "Banner not found")
			} else {
				respond.Internal(c, err, "Failed to get banner")
			}
			return
		}

		if input.Title != nil {
			banner.Title = strings.TrimSpace(*input.Title)
		}
		if input.Subtitle != nil {
			banner.Subtitle = strings.TrimSpace(*input.Subtitle)
		}
		if input.LinkURL != nil {
			banner.LinkURL = strings.TrimSpace(*input.LinkURL)
		}
		if input.ButtonCaption != nil {
			banner.ButtonCaption = strings.TrimSpace(*input.ButtonCaption)
		}
		if input.Position != nil {
			banner.Position = *input.Position
		}
		if input.IsActive != nil {
			banner.IsActive = *input.IsActive
		}

		if err := db.Save(&banner).Error; err != nil {
			respond.Internal(c, err, "Failed to update banner")
			return
		}
		c.JSON(http.StatusOK, banner)
	}
}

// PUT /admin/banners/order rewrites positions to follow ids; every banner must be listed once
func ReorderBanners(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input BannerOrder
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		banners := []models.Banner{}
		err := db.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Banner{}).Where("id IN ?", input.IDs).Count(&count).Error; err != nil {
				return err
			}
			var total int64
			if err := tx.Model(&models.Banner{}).Count(&total).Error; err != nil {
				return err
			}
			if count != int64(len(input.IDs)) || count != total {
				return errUnknownBanner
			}

			for position, id := range input.IDs {
				if err := tx.Model(&models.Banner{}).Where("id = ?", id).Update("position", position).Error; err != nil {
					return err
				}
			}
			return tx.Order("position ASC, id ASC").Find(&banners).Error
		})
		if err != nil {
			if errors.Is(err, errUnknownBanner) {
				respond.Error(c, http.StatusBadRequest, "ids must list every banner exactly once")
			} else {
				respond.Internal(c, err, "Failed to reorder banners")
			}
			return
		}
		c.JSON(http.StatusOK, banners)
	}
}

// DELETE /admin/banners/:id deletes the record and its stored image
func DeleteBanner(db *gorm.DB, store storage.ObjectStorage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}

		var banner models.Banner
		if err := db.First(&banner, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respond.Error(c, http.StatusNotFound, "Banner not found")
				return
			}
			respond.Internal(c, err, "Database error")
			return
		}

		if err := db.Delete(&banner).Error; err != nil {
			respond.Internal(c, err, "Failed to delete from database")
			return
		}
		deleteStored(c, store, banner.StorageKey)

		c.JSON(http.StatusOK, gin.H{"message": "Banner deleted"})
	}
}
