package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	paymentControllers "github.com/junaidrashid-git/storefront-api/controllers/payment"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupPaymentRoutes registers the signed payment provider callback.
func SetupPaymentRoutes(r *gin.Engine, d *Deps, n *orderControllers.Notifier) {
	payment := r.Group("/payment")
	{
		// middleware verifies the HMAC signature of the raw body
		payment.POST("/webhook",
			middleware.WebhookSignature(d.Config.Payment.WebhookSecret),
			paymentControllers.PaymentWebhook(d.DB, n),
		)
	}
}
