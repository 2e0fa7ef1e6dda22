package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"gorm.io/gorm"
)

// RequireAdmin lets through requests carrying the configured X-API-KEY, or a Supabase token
// whose email belongs to an approved admin
func RequireAdmin(db *gorm.DB, v *auth.Verifier, apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader("X-API-KEY"); key != "" {
			if apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				respond.Error(c, http.StatusUnauthorized, "Invalid or missing API key")
				return
			}
			auth.SetIdentity(c, auth.Identity{ID: "api-key", Role: auth.RoleAdmin})
			c.Next()
			return
		}

		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "Invalid or missing API key")
			return
		}
		id, err := v.VerifyUser(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if id.Email == "" {
			respond.Error(c, http.StatusForbidden, "Admin access required")
			return
		}

		var admin models.Admin
		err = db.Where("email = ?", strings.ToLower(id.Email)).First(&admin).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(c, http.StatusForbidden, "Admin access required")
			return
		}
		if err != nil {
			respond.Internal(c, err, "Database error")
			return
		}
		if !admin.Approved {
			respond.Error(c, http.StatusForbidden, "Pending approval by an admin")
			return
		}

		id.Role = auth.RoleAdmin
		auth.SetIdentity(c, id)
		c.Next()
	}
}
