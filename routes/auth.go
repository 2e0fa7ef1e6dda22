package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, d *Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/guest", auth.CreateGuestUser(d.DB, d.Verifier))

		// pending admin request for the signed-in Supabase account
		authGroup.POST("/admin/register", middleware.RequireUser(d.Verifier), auth.RegisterAdmin(d.DB))
	}
}
