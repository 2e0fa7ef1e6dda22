package routes

import (
	"github.com/gin-gonic/gin"
	adminController "github.com/junaidrashid-git/storefront-api/controllers/admin"
	cartControllers "github.com/junaidrashid-git/storefront-api/controllers/cart"
	contactControllers "github.com/junaidrashid-git/storefront-api/controllers/contact"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupCatalogRoutes registers the public storefront endpoints.
func SetupCatalogRoutes(r *gin.Engine, d *Deps) {
	pageSize := d.Config.Catalog.PageSize

	products := r.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(d.DB, pageSize))
		products.GET("/:slug", productcontroller.GetProductBySlug(d.DB))
		products.GET("/:slug/related", productcontroller.GetRelatedProducts(d.DB, pageSize))
		products.POST("/:slug/view", middleware.RequireUser(d.Verifier), productcontroller.RecordView(d.DB, d.History))
	}

	r.GET("/categories", productcontroller.GetCategories(d.DB))
	r.GET("/tags", productcontroller.GetTags(d.DB))
	r.GET("/banners", adminController.GetActiveBanners(d.DB))
	r.GET("/delivery-dates", cartControllers.GetDeliveryDates(d.Calc))

	api := r.Group("/api")
	{
		api.GET("/products/stock", productcontroller.GetStock(d.DB))
		api.GET("/products/browsing-history", middleware.OptionalUser(d.Verifier), productcontroller.GetBrowsingHistory(d.DB, d.History))
		api.POST("/contact",
			middleware.RateLimit(d.ContactLimiter),
			contactControllers.SubmitContact(d.DB, d.Mailer, d.Templates, d.Config.Mail.AdminEmail),
		)
	}
}
