package cartControllers

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pricing"
	"github.com/junaidrashid-git/storefront-api/respond"
	"gorm.io/gorm"
)

var (
	errProductNotFound = errors.New("product does not exist")
	errInvalidVariant  = errors.New("invalid color or size for this product")
)

type CartItemInput struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

type QuantityInput struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type DeliveryInput struct {
	DeliveryDateIndex *int `json:"delivery_date_index" binding:"required,min=0"`
}

// mutateCart loads the caller's cart, applies fn, reprices and saves everything in one transaction
func mutateCart(db *gorm.DB, calc *pricing.Calculator, ownerID string, fn func(tx *gorm.DB, cart *models.Cart) error) (*models.Cart, error) {
	var cart *models.Cart
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		cart, err = models.LoadCart(tx, ownerID)
		if err != nil {
			return err
		}
		if err := fn(tx, cart); err != nil {
			return err
		}
		cart.Reprice(calc, time.Now())
		return models.SaveCart(tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// writeCartError maps cart errors to responses
func writeCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotEnoughStock):
		respond.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidQuantity), errors.Is(err, errInvalidVariant):
		respond.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrItemNotFound), errors.Is(err, errProductNotFound):
		respond.Error(c, http.StatusNotFound, err.Error())
	default:
		respond.Internal(c, err, "Failed to update cart")
	}
}

func ownerID(c *gin.Context) (string, bool) {
	id, ok := auth.CurrentIdentity(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return id.ID, true
}

// loadProduct fetches a published product with what the cart snapshot needs
func loadProduct(tx *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product
	err := tx.Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, id ASC") }).
		Where("is_published = ?", true).
		First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func validVariant(options []string, picked string) bool {
	if picked == "" || len(options) == 0 {
		return true
	}
	return slices.Contains(options, picked)
}

// GET /cart
func GetCart(db *gorm.DB, calc *pricing.Calculator) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}
		cart, err := models.LoadCart(db, owner)
		if err != nil {
			respond.Internal(c, err, "Failed to fetch cart")
			return
		}
		cart.Reprice(calc, time.Now())
		c.JSON(http.StatusOK, cart)
	}
}

// GET /delivery-dates
func GetDeliveryDates(calc *pricing.Calculator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"delivery_dates": calc.DeliveryDates,
			"default_index":  calc.DefaultDeliveryIndex(),
		})
	}
}

// POST /cart/items
func AddCartItem(db *gorm.DB, calc *pricing.Calculator) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}

		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		var clientID string
		cart, err := mutateCart(db, calc, owner, func(tx *gorm.DB, cart *models.Cart) error {
			product, err := loadProduct(tx, input.ProductID)
			if err != nil {
				return err
			}
			if !validVariant(product.Colors, input.Color) || !validVariant(product.Sizes, input.Size) {
				return errInvalidVariant
			}
			clientID, err = cart.AddItem(models.NewCartItem(product, input.Color, input.Size, input.Quantity))
			return err
		})
		if err != nil {
			writeCartError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"client_id": clientID, "cart": cart})
	}
}

// PUT /cart/items/:client_id
func UpdateCartItem(db *gorm.DB, calc *pricing.Calculator) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}

		var input QuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		cart, err := mutateCart(db, calc, owner, func(_ *gorm.DB, cart *models.Cart) error {
			return cart.UpdateItem(c.Param("client_id"), input.Quantity)
		})
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /cart/items/:client_id
func DeleteCartItem(db *gorm.DB, calc *pricing.Calculator) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}

		cart, err := mutateCart(db, calc, owner, func(_ *gorm.DB, cart *models.Cart) error {
			return cart.RemoveItem(c.Param("client_id"))
		})
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /cart
func ClearCart(db *gorm.DB, calc *pricing.Calculator) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}

		cart, err := mutateCart(db, calc, owner, func(_ *gorm.DB, cart *models.Cart) error {
			cart.Clear()
			return nil
		})
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// PUT /cart/delivery
func SetDeliveryDate(db *gorm.DB, calc *pricing.Calculator) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownerID(c)
		if !ok {
			return
		}

		var input DeliveryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}
		if *input.DeliveryDateIndex >= len(calc.DeliveryDates) {
			respond.Error(c, http.StatusBadRequest, "unknown delivery date")
			return
		}

		cart, err := mutateCart(db, calc, owner, func(_ *gorm.DB, cart *models.Cart) error {
			cart.DeliveryDateIndex = *input.DeliveryDateIndex
			return nil
		})
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}
