package returnControllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateReturnRequest struct {
	OrderID uint                       `json:"order_id" binding:"required"`
	Items   []models.ReturnRequestLine `json:"items" binding:"required,min=1,dive"`
	Reason  string                     `json:"reason" binding:"required,max=2000"`
}

type UpdateReturnRequest struct {
	Status    string `json:"status" binding:"required"`
	AdminNote string `json:"admin_note" binding:"max=2000"`
}

// ReturnList is one page of returns
type ReturnList struct {
	Returns    []models.Return `json:"returns"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
}

// -------- Core Logic --------

// requestedQuantities sums the quantities already claimed per order item by returns that were not rejected
func requestedQuantities(tx *gorm.DB, orderID uint) (map[uint]int, error) {
	var rows []struct {
		OrderItemID uint
		Quantity    int
	}
	err := tx.Table("return_items").
		Select("return_items.order_item_id, SUM(return_items.quantity) AS quantity").
		Joins("JOIN returns ON returns.id = return_items.return_id").
		Where("returns.order_id = ? AND returns.status <> ?", orderID, models.ReturnStatusRejected).
		Group("return_items.order_item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	claimed := make(map[uint]int, len(rows))
	for _, r := range rows {
		claimed[r.OrderItemID] = r.Quantity
	}
	return claimed, nil
}

// CreateReturn validates the lines against the caller's delivered order and stores the request
func CreateReturn(db *gorm.DB, userID string, req CreateReturnRequest) (*models.Return, error) {
	var ret models.Return
	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").
			Where("id = ? AND user_id = ?", req.OrderID, userID).
			First(&order).Error
		if err != nil {
			return err
		}

		claimed, err := requestedQuantities(tx, order.ID)
		if err != nil {
			return err
		}
		items, refund, err := models.BuildReturnItems(&order, req.Items, claimed)
		if err != nil {
			return err
		}

		ret = models.Return{
			OrderID:      order.ID,
			UserID:       userID,
			Items:        items,
			Reason:       strings.TrimSpace(req.Reason),
			Status:       models.ReturnStatusRequested,
			RefundAmount: refund,
		}
		return tx.Create(&ret).Error
	})
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

// UpdateReturnStatus moves a return through its review. Refunding marks the order payment refunded,
// and the updated order is returned in that case.
func UpdateReturnStatus(db *gorm.DB, id uint, req UpdateReturnRequest, now time.Time) (*models.Return, *models.Order, error) {
	next, err := models.ParseReturnStatus(req.Status)
	if err != nil {
		return nil, nil, err
	}

	var (
		ret      models.Return
		refunded *models.Order
	)
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ret, id).Error; err != nil {
			return err
		}
		if !ret.Status.CanTransitionTo(next) {
			return models.ErrInvalidTransition
		}
		ret.Status = next
		if note := strings.TrimSpace(req.AdminNote); note != "" {
			ret.AdminNote = note
		}
		if err := tx.Model(&ret).Select("status", "admin_note").Updates(&ret).Error; err != nil {
			return err
		}

		if next == models.ReturnStatusRefunded {
			var order models.Order
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, ret.OrderID).Error; err != nil {
				return err
			}
			order.SetPaymentStatus(models.PaymentStatusRefunded, now)
			if err := tx.Model(&order).Select("payment_status").Updates(&order).Error; err != nil {
				return err
			}
			refunded = &order
		}
		return tx.Where("return_id = ?", ret.ID).Find(&ret.Items).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &ret, refunded, nil
}

func writeReturnError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respond.Error(c, http.StatusNotFound, "Not found")
	case errors.Is(err, models.ErrOrderNotReturnable), errors.Is(err, models.ErrInvalidTransition):
		respond.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrReturnQuantityTooHigh), errors.Is(err, models.ErrUnknownOrderItem),
		errors.Is(err, models.ErrInvalidQuantity), errors.Is(err, models.ErrInvalidReturnStatus):
		respond.Error(c, http.StatusBadRequest, err.Error())
	default:
		respond.Internal(c, err, "Failed to process return")
	}
}

// -------- Handlers --------

// POST /returns
func CreateReturnHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.CurrentIdentity(c)
		if !ok || id.IsGuest() {
			respond.Error(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req CreateReturnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err)
			return
		}

		ret, err := CreateReturn(db, id.ID, req)
		if err != nil {
			writeReturnError(c, err)
			return
		}
		c.JSON(http.StatusCreated, ret)
	}
}

// GET /returns
func GetMyReturns(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.CurrentIdentity(c)
		if !ok || id.IsGuest() {
			respond.Error(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		returns := []models.Return{}
		err := db.Preload("Items").
			Where("user_id = ?", id.ID).
			Order("created_at DESC, id DESC").
			Find(&returns).Error
		if err != nil {
			respond.Internal(c, err, "Failed to fetch returns")
			return
		}
		c.JSON(http.StatusOK, returns)
	}
}

// GET /admin/returns?status=&page=&limit=
func GetAllReturns(db *gorm.DB, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := respond.Pagination(c, pageSize)
		if !ok {
			return
		}

		scope := func() *gorm.DB { return db.Model(&models.Return{}) }
		if v := c.Query("status"); v != "" && !strings.EqualFold(v, "all") {
			status, err := models.ParseReturnStatus(v)
			if err != nil {
				respond.Error(c, http.StatusBadRequest, err.Error())
				return
			}
			scope = func() *gorm.DB { return db.Model(&models.Return{}).Where("status = ?", status) }
		}

		list := ReturnList{Returns: []models.Return{}, Page: page.Number}
		if err := scope().Count(&list.Total).Error; err != nil {
			respond.Internal(c, err, "Failed to fetch returns")
			return
		}
		err := scope().Preload("Items").
			Order("created_at DESC, id DESC").
			Limit(page.Limit).Offset(page.Offset()).
			Find(&list.Returns).Error
		if err != nil {
			respond.Internal(c, err, "Failed to fetch returns")
			return
		}
		list.TotalPages = page.TotalPages(list.Total)
		c.JSON(http.StatusOK, list)
	}
}

// PUT /admin/returns/:id
func UpdateReturnStatusHandler(db *gorm.DB, n *orderControllers.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ParamID(c, "id")
		if !ok {
			return
		}

		var req UpdateReturnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadRequest(c, err)
			return
		}

		ret, order, err := UpdateReturnStatus(db, id, req, time.Now())
		if err != nil {
			writeReturnError(c, err)
			return
		}
		if order != nil {
			n.Changed(c, events.OrderPaymentStatus, order)
		}
		c.JSON(http.StatusOK, ret)
	}
}
