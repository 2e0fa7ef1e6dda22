package adminController

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"gorm.io/gorm"
)

// GET /admin/admins
func GetAllAdmins(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		admins := []models.Admin{}
		if err := db.Order("created_at ASC, id ASC").Find(&admins).Error; err != nil {
			respond.Internal(c, err, "Failed to fetch admins")
			return
		}
		c.JSON(http.StatusOK, admins)
	}
}
