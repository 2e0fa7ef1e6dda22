package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// POST /auth/admin/register
// Signed-in users ask for admin access; an existing admin approves them later.
func RegisterAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok || id.Email == "" {
			respond.Error(c, http.StatusUnauthorized, "Email not found in token")
			return
		}

		var req struct {
			Name string `json:"name"`
		}
		_ = c.ShouldBindJSON(&req)

		email := strings.ToLower(id.Email)
		var admin models.Admin
		err := db.Where("email = ?", email).First(&admin).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			admin = models.Admin{Email: email, Name: req.Name, Approved: false}
			if err := db.Create(&admin).Error; err != nil {
				respond.Internal(c, err, "Failed to register admin")
				return
			}
			logger.FromGin(c).Info("new admin registered, pending approval", zap.String("email", email))
			c.JSON(http.StatusAccepted, gin.H{"message": "Pending approval", "admin": admin})
		case err != nil:
			respond.Internal(c, err, "Database error")
		case !admin.Approved:
			c.JSON(http.StatusAccepted, gin.H{"message": "Pending approval", "admin": admin})
		default:
			c.JSON(http.StatusOK, gin.H{"message": "Admin approved", "admin": admin})
		}
	}
}
