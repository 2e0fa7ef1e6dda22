package orderControllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UpdateOrderStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	Note           string `json:"note" binding:"max=500"`
	Carrier        string `json:"carrier" binding:"max=100"`
	TrackingNumber string `json:"tracking_number" binding:"max=100"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// lockOrder loads an order with its items for update
func lockOrder(tx *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	if err := tx.Where("order_id = ?", order.ID).Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GET /admin/orders?status=&page=&limit=
func GetAllOrdersHandler(db *gorm.DB, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := respond.Pagination(c, pageSize)
		if !ok {
			return
		}

		scope := func() *gorm.DB { return db.Model(&models.Order{}) }
		if v := c.Query("status"); v != "" && !strings.EqualFold(v, "all") {
			status, err := models.ParseOrderStatus(v)
			if err != nil {
				respond.Error(c, http.StatusBadRequest, err.Error())
				return
			}
			scope = func() *gorm.DB { return db.Model(&models.Order{}).Where("status = ?", status) }
		}

		list := OrderList{Orders: []models.Order{}, Page: page.Number}
		if err := scope().Count(&list.Total).Error; err != nil {
			respond.Internal(c, err, "Failed to fetch orders")
			return
		}
		err := scope().Preload("Items").
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

// GET /admin/orders/:id
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}
		var order models.Order
		err := db.Preload("Items").
			Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
			First(&order, id).Error
		if err != nil {
			writeOrderError(c, err, "Failed to retrieve order")
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// UpdateOrderStatus applies a status change in one transaction; cancelling restores stock
func UpdateOrderStatus(db *gorm.DB, id uint, req UpdateOrderStatusRequest, now time.Time) (*models.Order, error) {
	next, err := models.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		if order, err = lockOrder(tx, id); err != nil {
			return err
		}
		if err := order.ApplyStatus(next, strings.TrimSpace(req.Note), now); err != nil {
			return err
		}
		if req.Carrier != "" {
			order.Carrier = req.Carrier
		}
		if req.TrackingNumber != "" {
			order.TrackingNumber = req.TrackingNumber
		}
		if next == models.OrderStatusCancelled {
			if err := restoreStock(tx, order.Items); err != nil {
				return err
			}
		}

		event := order.Events[len(order.Events)-1]
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(order).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// PUT /admin/orders/:id/status
func UpdateOrderStatusHandler(db *gorm.DB, n *Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err)
			return
		}

		order, err := UpdateOrderStatus(db, id, req, time.Now())
		if err != nil {
			writeOrderError(c, err, "Failed to update order status")
			return
		}

		n.Changed(c, events.OrderStatusChanged, order)
		if order.Status == models.OrderStatusShipped || order.Status == models.OrderStatusDelivered {
			logEmailError(c, order, "shipping_update", n.SendShippingUpdate(c, order))
		}

		c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
	}
}

// SetPaymentStatus records a payment status on the order with the given ref, or id when ref is empty
func SetPaymentStatus(db *gorm.DB, id uint, ref string, status models.PaymentStatus, now time.Time) (*models.Order, error) {
	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		q := tx.Clauses(clause.Locking{Strength: "UPDATE"})
		if ref != "" {
			q = q.Where("order_ref = ?", ref)
		} else {
			q = q.Where("id = ?", id)
		}
		if err := q.First(&order).Error; err != nil {
			return err
		}
		order.SetPaymentStatus(status, now)
		return tx.Model(&order).Select("payment_status", "paid_at").Updates(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// PUT /admin/orders/:id/payment-status
func UpdatePaymentStatusHandler(db *gorm.DB, n *Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}

		var req UpdatePaymentStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err)
			return
		}
		status, err := models.ParsePaymentStatus(req.PaymentStatus)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, err.Error())
			return
		}

		order, err := SetPaymentStatus(db, id, "", status, time.Now())
		if err != nil {
			writeOrderError(c, err, "Failed to update payment status")
			return
		}

		n.Changed(c, events.OrderPaymentStatus, order)
		c.JSON(http.StatusOK, gin.H{"message": "Payment status updated", "order": order})
	}
}

// DELETE /admin/orders/:id
func DeleteOrderHandler(db *gorm.DB, n *Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}

		var order models.Order
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&order, id).Error; err != nil {
				return err
			}
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderEvent{}).Error; err != nil {
				return err
			}
			returns := tx.Model(&models.Return{}).Select("id").Where("order_id = ?", order.ID)
			if err := tx.Where("return_id IN (?)", returns).Delete(&models.ReturnItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.Return{}).Error; err != nil {
				return err
			}
			return tx.Delete(&order).Error
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respond.Error(c, http.StatusNotFound, "Order not found")
			} else {
				respond.Internal(c, err, "Failed to delete order")
			}
			return
		}

		n.Changed(c, events.OrderDeleted, &order)
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}
