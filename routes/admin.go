package routes

import (
	"github.com/gin-gonic/gin"
	adminController "github.com/junaidrashid-git/storefront-api/controllers/admin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	returnControllers "github.com/junaidrashid-git/storefront-api/controllers/returns"
	userControllers "github.com/junaidrashid-git/storefront-api/controllers/user"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

const adminPageSize = 20

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires the API key or an approved admin token.
func SetupAdminRoutes(r *gin.Engine, d *Deps, n *orderControllers.Notifier) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin(d.DB, d.Verifier, d.Config.Admin.APIKey))
	{
		// ─────────── Admin & User Management ───────────
		adminGroup.GET("/admins", adminController.GetAllAdmins(d.DB))
		adminGroup.GET("/admins/pending", adminController.ListPendingAdmins(d.DB))
		adminGroup.POST("/admins/approve", adminController.ApproveAdmin(d.DB))
		adminGroup.POST("/admins/reject", adminController.RejectAdmin(d.DB))
		adminGroup.GET("/users", userControllers.GetAllUsers(d.DB, adminPageSize))

		// ─────────── Product Management ───────────
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productcontroller.CreateProduct(d.DB))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(d.DB))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(d.DB))
			productAdmin.POST("/:id/images", productcontroller.UploadProductImage(d.DB, d.Storage))
			productAdmin.DELETE("/:id/images/:image_id", productcontroller.DeleteProductImage(d.DB, d.Storage))
			productAdmin.POST("/import-excel", productcontroller.ImportProductsFromExcel(d.DB))
			productAdmin.GET("/export-excel", productcontroller.ExportProductsToExcel(d.DB))
		}

		// ─────────── Category Management ───────────
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", productcontroller.CreateCategory(d.DB, d.Storage))
			categoryAdmin.PUT("/:id", productcontroller.UpdateCategory(d.DB, d.Storage))
			categoryAdmin.DELETE("/:id", productcontroller.DeleteCategory(d.DB, d.Storage))
		}

		// ─────────── Banners ───────────
		bannerAdmin := adminGroup.Group("/banners")
		{
			bannerAdmin.GET("", adminController.GetBanners(d.DB))
			bannerAdmin.POST("", adminController.UploadBanner(d.DB, d.Storage))
			bannerAdmin.PUT("/order", adminController.ReorderBanners(d.DB))
			bannerAdmin.PUT("/:id", adminController.UpdateBanner(d.DB))
			bannerAdmin.DELETE("/:id", adminController.DeleteBanner(d.DB, d.Storage))
		}

		// ─────────── Orders ───────────
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(d.DB, adminPageSize))
			orderAdmin.GET("/ws", orderControllers.OrderWebSocketHandler(d.Hub))
			orderAdmin.GET("/:id", orderControllers.GetOrderByIDHandler(d.DB))
			orderAdmin.PUT("/:id/status", orderControllers.UpdateOrderStatusHandler(d.DB, n))
			orderAdmin.PUT("/:id/payment-status", orderControllers.UpdatePaymentStatusHandler(d.DB, n))
			orderAdmin.DELETE("/:id", orderControllers.DeleteOrderHandler(d.DB, n))
		}

		// ─────────── Returns ───────────
		adminGroup.GET("/returns", returnControllers.GetAllReturns(d.DB, adminPageSize))
		adminGroup.PUT("/returns/:id", returnControllers.UpdateReturnStatusHandler(d.DB, n))
	}
}
