package cartControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pricing"
	"github.com/junaidrashid-git/storefront-api/respond"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MergeInput struct {
	GuestToken string `json:"guest_token" binding:"required"`
}

// POST /cart/merge
// Called after sign-in: moves the guest cart into the user's cart and deletes it.
func MergeGuestCart(db *gorm.DB, calc *pricing.Calculator, verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}

		var input MergeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}
		guest, err := verifier.VerifyGuest(input.GuestToken)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "Invalid guest token")
			return
		}

		mergeStatus := "no-guest-cart"
		cart, err := mutateCart(db, calc, owner, func(tx *gorm.DB, cart *models.Cart) error {
			guestCart, err := models.LoadCart(tx, guest.ID)
			if err != nil {
				return err
			}
			if len(guestCart.Items) == 0 {
				if guestCart.ID != 0 {
					mergeStatus = "guest-cart-empty"
				}
				return models.DeleteCart(tx, guest.ID)
			}
			cart.Merge(guestCart.Items)
			mergeStatus = "merged-success"
			return models.DeleteCart(tx, guest.ID)
		})
		if err != nil {
			writeCartError(c, err)
			return
		}

		logger.FromGin(c).Info("guest cart merged",
			zap.String("guest_id", guest.ID),
			zap.String("user_id", owner),
			zap.String("merge_status", mergeStatus),
		)
		c.JSON(http.StatusOK, gin.H{"merge_status": mergeStatus, "cart": cart})
	}
}
