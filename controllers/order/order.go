package orderControllers

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pricing"
	"github.com/junaidrashid-git/storefront-api/respond"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errProductUnavailable = errors.New("a product in your cart is no longer available")
	errInvalidDelivery    = errors.New("invalid delivery date")
)

// -------- Request Structs --------

type PlaceOrderRequest struct {
	ShippingAddress   models.ShippingAddress `json:"shipping_address" binding:"required"`
	PaymentMethod     string                 `json:"payment_method" binding:"required,oneof=card cod paypal"`
	DeliveryDateIndex *int                   `json:"delivery_date_index" binding:"omitempty,min=0"`
}

type SendConfirmationRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// OrderList is one page of orders
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}

// -------- Core Logic --------

// reserveStock locks every product of the cart, checks and decrements stock and counts the sale.
// Rows are locked in id order so concurrent checkouts cannot deadlock.
func reserveStock(tx *gorm.DB, items []models.CartItem) (map[uint]models.Product, error) {
	need := map[uint]int{}
	for _, item := range items {
		need[item.ProductID] += item.Quantity
	}
	ids := make([]uint, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	products := make(map[uint]models.Product, len(ids))
	for _, id := range ids {
		var product models.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("is_published = ?", true).
			First(&product, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProductUnavailable
		}
		if err != nil {
			return nil, err
		}
		if product.CountInStock < need[id] {
			return nil, fmt.Errorf("%w: %s", models.ErrNotEnoughStock, product.Name)
		}

		err = tx.Model(&models.Product{}).Where("id = ?", id).UpdateColumns(map[string]any{
			"count_in_stock": gorm.Expr("count_in_stock - ?", need[id]),
			"num_sales":      gorm.Expr("num_sales + ?", need[id]),
		}).Error
		if err != nil {
			return nil, err
		}
		products[id] = product
	}
	return products, nil
}

// restoreStock puts the items of a cancelled order back on the shelf
func restoreStock(tx *gorm.DB, items []models.OrderItem) error {
	for _, item := range items {
		err := tx.Unscoped().Model(&models.Product{}).Where("id = ?", item.ProductID).UpdateColumns(map[string]any{
			"count_in_stock": gorm.Expr("count_in_stock + ?", item.Quantity),
			"num_sales":      gorm.Expr("CASE WHEN num_sales >= ? THEN num_sales - ? ELSE 0 END", item.Quantity, item.Quantity),
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// PlaceOrder turns the caller's cart into an order in one transaction
func PlaceOrder(db *gorm.DB, calc *pricing.Calculator, id auth.Identity, req PlaceOrderRequest, now time.Time) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		cart, err := models.LoadCart(tx, id.ID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return models.ErrEmptyCart
		}

		deliveryIndex := cart.DeliveryDateIndex
		if req.DeliveryDateIndex != nil {
			if *req.DeliveryDateIndex >= len(calc.DeliveryDates) {
				return errInvalidDelivery
			}
			deliveryIndex = *req.DeliveryDateIndex
		}

		products, err := reserveStock(tx, cart.Items)
		if err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(cart.Items))
		lines := make([]pricing.Line, 0, len(cart.Items))
		for _, item := range cart.Items {
			price := products[item.ProductID].Price
			items = append(items, models.OrderItemFromCart(item, price))
			lines = append(lines, pricing.Line{Price: price, Quantity: item.Quantity})
		}
		summary := calc.Calculate(lines, deliveryIndex, now)

		order = models.Order{
			OrderRef:             models.NewOrderRef(now),
			UserID:               id.ID,
			Email:                id.Email,
			Items:                items,
			ShippingAddress:      req.ShippingAddress,
			PaymentMethod:        req.PaymentMethod,
			DeliveryDateIndex:    summary.DeliveryDateIndex,
			ExpectedDeliveryDate: summary.ExpectedDeliveryDate,
			ItemsPrice:           summary.ItemsPrice,
			ShippingPrice:        summary.ShippingPrice,
			TaxPrice:             summary.TaxPrice,
			TotalPrice:           summary.TotalPrice,
			Status:               models.OrderStatusPending,
			PaymentStatus:        models.PaymentStatusPending,
			Events:               []models.OrderEvent{{Status: models.OrderStatusPending, Note: "Order placed", CreatedAt: now}},
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return models.DeleteCart(tx, id.ID)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// findOwnOrder loads an order of userID by numeric id or order ref. Other users' orders are not found.
func findOwnOrder(db *gorm.DB, userID, key string) (*models.Order, error) {
	var order models.Order
	tx := db.Preload("Items").
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Where("user_id = ?", userID)
	if id, err := strconv.ParseUint(key, 10, 64); err == nil {
		tx = tx.Where("id = ?", id)
	} else {
		tx = tx.Where("order_ref = ?", key)
	}
	if err := tx.First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func writeOrderError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respond.Error(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, models.ErrEmptyCart), errors.Is(err, errInvalidDelivery),
		errors.Is(err, models.ErrInvalidOrderStatus), errors.Is(err, models.ErrInvalidPaymentStatus):
		respond.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotEnoughStock), errors.Is(err, errProductUnavailable),
		errors.Is(err, models.ErrInvalidTransition):
		respond.Error(c, http.StatusConflict, err.Error())
	default:
		respond.Internal(c, err, msg)
	}
}

func currentUser(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.CurrentIdentity(c)
	if !ok || id.IsGuest() {
		respond.Error(c, http.StatusUnauthorized, "Unauthorized")
		return auth.Identity{}, false
	}
	return id, true
}

// -------- Handlers --------

// POST /orders
func PlaceOrderHandler(db *gorm.DB, calc *pricing.Calculator, n *Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := currentUser(c)
		if !ok {
			return
		}

		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err)
			return
		}

		order, err := PlaceOrder(db, calc, id, req, time.Now())
		if err != nil {
			writeOrderError(c, err, "Failed to place order")
			return
		}

		n.Changed(c, events.OrderCreated, order)
		logEmailError(c, order, "confirmation", n.SendConfirmation(c, order))

		c.JSON(http.StatusCreated, order)
	}
}

// GET /orders
func GetMyOrders(db *gorm.DB, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := currentUser(c)
		if !ok {
			return
		}
		page, ok := respond.Pagination(c, pageSize)
		if !ok {
			return
		}

		list := OrderList{Orders: []models.Order{}, Page: page.Number}
		scope := db.Model(&models.Order{}).Where("user_id = ?", id.ID)
		if err := scope.Count(&list.Total).Error; err != nil {
			respond.Internal(c, err, "Failed to fetch orders")
			return
		}
		err := db.Preload("Items").
			Where("user_id = ?", id.ID).
			Order("created_at DESC, id DESC").
			Limit(page.Limit).Offset(page.Offset()).
			Find(&list.Orders).Error
		if err != nil {
			respond.Internal(c, err, "Failed to fetch orders")
			return
		}
		list.TotalPages = page.TotalPages(list.Total)
		c.JSON(http.StatusOK, list)
	}
}

// GET /orders/:ref
func GetOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := currentUser(c)
		if !ok {
			return
		}
		order, err := findOwnOrder(db, id.ID, c.Param("ref"))
		if err != nil {
			writeOrderError(c, err, "Failed to retrieve order")
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// Tracking is the customer-facing shipment view of an order
type Tracking struct {
	OrderRef             string               `json:"order_ref"`
	Status               models.OrderStatus   `json:"status"`
	PaymentStatus        models.PaymentStatus `json:"payment_status"`
	Carrier              string               `json:"carrier"`
	TrackingNumber       string               `json:"tracking_number"`
	ExpectedDeliveryDate time.Time            `json:"expected_delivery_date"`
	DeliveredAt          *time.Time           `json:"delivered_at"`
	Events               []models.OrderEvent  `json:"events"`
}

// GET /orders/:ref/tracking
func GetTracking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := currentUser(c)
		if !ok {
			return
		}
		order, err := findOwnOrder(db, id.ID, c.Param("ref"))
		if err != nil {
			writeOrderError(c, err, "Failed to retrieve order")
			return
		}
		c.JSON(http.StatusOK, Tracking{
			OrderRef:             order.OrderRef,
			Status:               order.Status,
			PaymentStatus:        order.PaymentStatus,
			Carrier:              order.Carrier,
			TrackingNumber:       order.TrackingNumber,
			ExpectedDeliveryDate: order.ExpectedDeliveryDate,
			DeliveredAt:          order.DeliveredAt,
			Events:               order.Events,
		})
	}
}

// POST /api/orders/send-confirmation
func SendConfirmationHandler(db *gorm.DB, n *Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := currentUser(c)
		if !ok {
			return
		}

		var req SendConfirmationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err)
			return
		}

		order, err := findOwnOrder(db, id.ID, strconv.FormatUint(uint64(req.OrderID), 10))
		if err != nil {
			writeOrderError(c, err, "Failed to retrieve order")
			return
		}
		if order.Email == "" {
			order.Email = id.Email
		}

		if err := n.SendConfirmation(c, order); err != nil {
			respond.Upstream(c, err, "Failed to send confirmation email")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Confirmation email sent"})
	}
}
