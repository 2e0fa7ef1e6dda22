package paymentControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WebhookPayload is the body the payment provider posts after a payment attempt
type WebhookPayload struct {
	OrderRef      string `json:"order_ref" binding:"required"`
	Status        string `json:"status" binding:"required"`
	TransactionID string `json:"transaction_id"`
}

// POST /payment/webhook. The signature middleware has already verified the body.
func PaymentWebhook(db *gorm.DB, n *orderControllers.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload WebhookPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			respond.BadRequest(c, err)
			return
		}
		status, err := models.ParsePaymentStatus(payload.Status)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, err.Error())
			return
		}

		order, err := orderControllers.SetPaymentStatus(db, 0, payload.OrderRef, status, time.Now())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respond.Error(c, http.StatusNotFound, "Order not found")
			} else {
				respond.Internal(c, err, "Failed to update payment status")
			}
			return
		}

		logger.FromGin(c).Info("payment webhook processed",
			zap.String("order_ref", order.OrderRef),
			zap.String("payment_status", string(order.PaymentStatus)),
			zap.String("transaction_id", payload.TransactionID))

		n.Changed(c, events.OrderPaymentStatus, order)
		c.JSON(http.StatusOK, gin.H{"order_ref": order.OrderRef, "payment_status": order.PaymentStatus})
	}
}
