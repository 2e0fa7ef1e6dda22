package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/config"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/history"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/pricing"
	"github.com/junaidrashid-git/storefront-api/storage"
	"gorm.io/gorm"
)

// Deps are the shared services handed to the handlers
type Deps struct {
	DB             *gorm.DB
	Config         *config.Config
	Calc           *pricing.Calculator
	Verifier       *auth.Verifier
	Storage        storage.ObjectStorage
	Mailer         mailer.Mailer
	Templates      mailer.Templates
	Publisher      events.Publisher
	Hub            *events.Hub
	History        history.Store
	ContactLimiter *middleware.IPRateLimiter
}

func (d *Deps) notifier() *orderControllers.Notifier {
	return &orderControllers.Notifier{
		Mailer:    d.Mailer,
		Templates: d.Templates,
		Publisher: d.Publisher,
		Hub:       d.Hub,
	}
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, d *Deps) {
	n := d.notifier()

	// public catalog and storefront content
	SetupCatalogRoutes(r, d)

	// guest tokens and admin registration
	SetupAuthRoutes(r, d)

	// cart, profile, wishlist, orders and returns
	SetupUserRoutes(r, d, n)

	// admin panel (API key or approved admin)
	SetupAdminRoutes(r, d, n)

	// payment provider callbacks
	SetupPaymentRoutes(r, d, n)
}
