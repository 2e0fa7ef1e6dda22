package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/storefront-api/controllers/cart"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	returnControllers "github.com/junaidrashid-git/storefront-api/controllers/returns"
	userControllers "github.com/junaidrashid-git/storefront-api/controllers/user"
	wishlistControllers "github.com/junaidrashid-git/storefront-api/controllers/wishlist"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupUserRoutes registers the signed-in shopper endpoints. The cart also accepts guest tokens.
func SetupUserRoutes(r *gin.Engine, d *Deps, n *orderControllers.Notifier) {
	// ──────────────── Shopping Cart ────────────────
	cartGroup := r.Group("/cart", middleware.RequireShopper(d.Verifier))
	{
		cartGroup.GET("", cartControllers.GetCart(d.DB, d.Calc))
		cartGroup.POST("/items", cartControllers.AddCartItem(d.DB, d.Calc))
		cartGroup.PUT("/items/:client_id", cartControllers.UpdateCartItem(d.DB, d.Calc))
		cartGroup.DELETE("/items/:client_id", cartControllers.DeleteCartItem(d.DB, d.Calc))
		cartGroup.DELETE("", cartControllers.ClearCart(d.DB, d.Calc))
		cartGroup.PUT("/delivery", cartControllers.SetDeliveryDate(d.DB, d.Calc))
	}
	r.POST("/cart/merge", middleware.RequireUser(d.Verifier), cartControllers.MergeGuestCart(d.DB, d.Calc, d.Verifier))

	userGroup := r.Group("/", middleware.RequireUser(d.Verifier))
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("/user", userControllers.GetUser(d.DB))
		userGroup.PUT("/user", userControllers.UpdateUser(d.DB))

		// ──────────────── Wishlist ────────────────
		userGroup.GET("/wishlist", wishlistControllers.GetWishlist(d.DB))
		userGroup.POST("/wishlist", wishlistControllers.AddToWishlist(d.DB))
		userGroup.POST("/wishlist/toggle", wishlistControllers.ToggleWishlist(d.DB))
		userGroup.DELETE("/wishlist/:product_id", wishlistControllers.RemoveFromWishlist(d.DB))
		userGroup.DELETE("/wishlist", wishlistControllers.ClearWishlist(d.DB))

		// ──────────────── Orders ────────────────
		userGroup.POST("/orders", orderControllers.PlaceOrderHandler(d.DB, d.Calc, n))
		userGroup.GET("/orders", orderControllers.GetMyOrders(d.DB, d.Config.Catalog.PageSize))
		userGroup.GET("/orders/:ref", orderControllers.GetOrder(d.DB))
		userGroup.GET("/orders/:ref/tracking", orderControllers.GetTracking(d.DB))
		userGroup.POST("/api/orders/send-confirmation", orderControllers.SendConfirmationHandler(d.DB, n))

		// ──────────────── Returns ────────────────
		userGroup.POST("/returns", returnControllers.CreateReturnHandler(d.DB))
		userGroup.GET("/returns", returnControllers.GetMyReturns(d.DB))
	}
}
