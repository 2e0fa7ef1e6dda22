package adminController

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"gorm.io/gorm"
)

type adminEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func bindAdminEmail(c *gin.Context) (string, bool) {
	var req adminEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err)
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(req.Email)), true
}

// GET /admin/admins/pending
func ListPendingAdmins(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		pending := []models.Admin{}
		if err := db.Where("approved = ?", false).Order("created_at ASC, id ASC").Find(&pending).Error; err != nil {
			respond.Internal(c, err, "Failed to fetch pending admins")
			return
		}
		c.JSON(http.StatusOK, pending)
	}
}

// POST /admin/admins/approve
func ApproveAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := bindAdminEmail(c)
		if !ok {
			return
		}

		result := db.Model(&models.Admin{}).Where("email = ?", email).Update("approved", true)
		if result.Error != nil {
			respond.Internal(c, result.Error, "Failed to approve admin")
			return
		}
		if result.RowsAffected == 0 {
			respond.Error(c, http.StatusNotFound, "Admin not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Admin approved"})
	}
}

// POST /admin/admins/reject removes the request, or revokes an approved admin
func RejectAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, ok := bindAdminEmail(c)
		if !ok {
			return
		}

		result := db.Where("email = ?", email).Delete(&models.Admin{})
		if result.Error != nil {
			respond.Internal(c, result.Error, "Failed to reject admin")
			return
		}
		if result.RowsAffected == 0 {
			respond.Error(c, http.StatusNotFound, "Admin not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Admin rejected"})
	}
}
