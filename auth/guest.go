package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"gorm.io/gorm"
)

// POST /auth/guest
func CreateGuestUser(db *gorm.DB, verifier *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		guestID := "guest_" + generateRandomString(16)

		token, expiresAt, err := verifier.IssueGuest(guestID, now)
		if err != nil {
			respond.Internal(c, err, "Token generation failed")
			return
		}

		guest := models.GuestUser{ID: guestID, ExpiresAt: expiresAt}
		if err := db.Create(&guest).Error; err != nil {
			respond.Internal(c, err, "Failed to create guest")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"guest_id":   guestID,
			"token":      token,
			"expires_at": guest.ExpiresAt,
		})
	}
}

func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "rand_guest"
	}
	return hex.EncodeToString(bytes)
}
