package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ReturnStatus string

const (
	ReturnStatusRequested ReturnStatus = "requested"
	ReturnStatusApproved  ReturnStatus = "approved"
	ReturnStatusRejected  ReturnStatus = "rejected"
	ReturnStatusRefunded  ReturnStatus = "refunded"
)

var (
	ErrInvalidReturnStatus   = errors.New("invalid return status")
	ErrOrderNotReturnable    = errors.New("only delivered orders can be returned")
	ErrReturnQuantityTooHigh = errors.New("return quantity exceeds the quantity ordered")
	ErrUnknownOrderItem      = errors.New("item does not belong to the order")
)

var returnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnStatusRequested: {ReturnStatusApproved, ReturnStatusRejected},
	ReturnStatusApproved:  {ReturnStatusRefunded},
}

// ParseReturnStatus maps a case-insensitive string to a ReturnStatus
func ParseReturnStatus(s string) (ReturnStatus, error) {
	switch status := ReturnStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case ReturnStatusRequested, ReturnStatusApproved, ReturnStatusRejected, ReturnStatusRefunded:
		return status, nil
	}
	return "", ErrInvalidReturnStatus
}

func (s ReturnStatus) CanTransitionTo(next ReturnStatus) bool {
	for _, allowed := range returnTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Return is a customer request to send back part of a delivered order
type Return struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"index;not null" json:"order_id"`
	UserID       string          `gorm:"index;not null" json:"user_id"`
	Items        []ReturnItem    `gorm:"foreignKey:ReturnID;constraint:OnDelete:CASCADE" json:"items"`
	Reason       string          `gorm:"type:text" json:"reason"`
	Status       ReturnStatus    `gorm:"type:VARCHAR(20);default:'requested'" json:"status"`
	RefundAmount decimal.Decimal `gorm:"type:decimal(12,2)" json:"refund_amount"`
	AdminNote    string          `json:"admin_note"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type ReturnItem struct {
	ID          uint `gorm:"primaryKey" json:"-"`
	ReturnID    uint `gorm:"index" json:"-"`
	OrderItemID uint `gorm:"index" json:"order_item_id"`
	Quantity    int  `json:"quantity"`
}

// ReturnRequestLine is one requested line before validation
type ReturnRequestLine struct {
	OrderItemID uint `json:"order_item_id" binding:"required"`
	Quantity    int  `json:"quantity" binding:"required,min=1"`
}

// BuildReturnItems validates requested lines against the order and the quantities already
// claimed by earlier (non-rejected) returns, and computes the refund amount.
func BuildReturnItems(order *Order, lines []ReturnRequestLine, alreadyRequested map[uint]int) ([]ReturnItem, decimal.Decimal, error) {
	if order.Status != OrderStatusDelivered {
		return nil, decimal.Zero, ErrOrderNotReturnable
	}

	byID := make(map[uint]OrderItem, len(order.Items))
	for _, it := range order.Items {
		byID[it.ID] = it
	}

	requested := make(map[uint]int, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, decimal.Zero, ErrInvalidQuantity
		}
		if _, ok := byID[l.OrderItemID]; !ok {
			return nil, decimal.Zero, ErrUnknownOrderItem
		}
		requested[l.OrderItemID] += l.Quantity
	}

	items := make([]ReturnItem, 0, len(requested))
	refund := decimal.Zero
	for _, l := range lines {
		qty, ok := requested[l.OrderItemID]
		if !ok {
			continue
		}
		delete(requested, l.OrderItemID)
		oi := byID[l.OrderItemID]
		if qty+alreadyRequested[oi.ID] > oi.Quantity {
			return nil, decimal.Zero, ErrReturnQuantityTooHigh
		}
		items = append(items, ReturnItem{OrderItemID: oi.ID, Quantity: qty})
		refund = refund.Add(oi.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return items, refund.Round(2), nil
}
