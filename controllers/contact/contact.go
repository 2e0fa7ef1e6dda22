package contactControllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email,max=254"`
	Subject string `json:"subject" binding:"required,max=200"`
	Message string `json:"message" binding:"required,min=10,max=5000"`
}

// POST /api/contact stores the message and forwards it to adminEmail with reply-to set to the sender.
// The message is kept even when forwarding fails.
func SubmitContact(db *gorm.DB, m mailer.Mailer, templates mailer.Templates, adminEmail string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ContactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err)
			return
		}

		msg := models.ContactMessage{
			Name:     strings.TrimSpace(req.Name),
			Email:    strings.ToLower(strings.TrimSpace(req.Email)),
			Subject:  strings.TrimSpace(req.Subject),
			Message:  strings.TrimSpace(req.Message),
			ClientIP: c.ClientIP(),
		}
		if err := db.Create(&msg).Error; err != nil {
			respond.Internal(c, err, "Failed to save message")
			return
		}

		if adminEmail == "" {
			logger.FromGin(c).Warn("contact message not forwarded, no admin email configured", zap.Uint("contact_id", msg.ID))
			c.JSON(http.StatusCreated, gin.H{"message": "Message received"})
			return
		}

		email, err := templates.ContactForward(&msg, adminEmail)
		if err != nil {
			respond.Internal(c, err, "Failed to render message")
			return
		}
		if err := m.Send(c.Request.Context(), email); err != nil {
			respond.Upstream(c, err, "Failed to send message")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Message sent"})
	}
}
