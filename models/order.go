package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentStatus string

const (
	// Order statuses (typical e-commerce flow)
	OrderStatusPending     OrderStatus = "pending"       // Order placed, awaiting confirmation
	OrderStatusConfirmed   OrderStatus = "confirmed"     // Confirmed by seller
	OrderStatusReadyToShip OrderStatus = "ready_to_ship" // Packed and ready for dispatch
	OrderStatusShipped     OrderStatus = "shipped"       // Out for delivery
	OrderStatusDelivered   OrderStatus = "delivered"     // Customer received the item
	OrderStatusReturned    OrderStatus = "returned"      // Customer returned the item
	OrderStatusCancelled   OrderStatus = "cancelled"     // Cancelled before shipping

	// Payment statuses
	PaymentStatusPending  PaymentStatus = "pending"  // Payment not completed yet
	PaymentStatusPaid     PaymentStatus = "paid"     // Payment completed successfully
	PaymentStatusFailed   PaymentStatus = "failed"   // Payment attempt failed
	PaymentStatusRefunded PaymentStatus = "refunded" // Money returned to customer
)

var (
	ErrInvalidOrderStatus   = errors.New("invalid order status")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrInvalidTransition    = errors.New("status transition not allowed")
	ErrEmptyCart            = errors.New("cart is empty")
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:     {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:   {OrderStatusReadyToShip, OrderStatusCancelled},
	OrderStatusReadyToShip: {OrderStatusShipped},
	OrderStatusShipped:     {OrderStatusDelivered},
	OrderStatusDelivered:   {OrderStatusReturned},
}

// ParseOrderStatus maps a case-insensitive string to an OrderStatus
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusReadyToShip, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusReturned, OrderStatusCancelled:
		return status, nil
	}
	return "", ErrInvalidOrderStatus
}

// ParsePaymentStatus maps a case-insensitive string to a PaymentStatus
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch status := PaymentStatus(strings.ToLower(strings.TrimSpace(s))); status {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return status, nil
	}
	return "", ErrInvalidPaymentStatus
}

// CanTransitionTo reports whether an order in status s may move to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ShippingAddress is stored inline on the order with a ship_ prefix
type ShippingAddress struct {
	FullName   string `json:"full_name" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

type Order struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	OrderRef             string          `gorm:"uniqueIndex;size:64;not null" json:"order_ref"`
	UserID               string          `gorm:"index;not null" json:"user_id"`
	Email                string          `json:"email"`
	Items                []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress      ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shipping_address"`
	PaymentMethod        string          `json:"payment_method"` // e.g. "card", "cod"
	DeliveryDateIndex    int             `json:"delivery_date_index"`
	ExpectedDeliveryDate time.Time       `json:"expected_delivery_date"`
	ItemsPrice           decimal.Decimal `gorm:"type:decimal(12,2)" json:"items_price"`
	ShippingPrice        decimal.Decimal `gorm:"type:decimal(12,2)" json:"shipping_price"`
	TaxPrice             decimal.Decimal `gorm:"type:decimal(12,2)" json:"tax_price"`
	TotalPrice           decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_price"`
	Status               OrderStatus     `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	PaymentStatus        PaymentStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	PaidAt               *time.Time      `json:"paid_at"`
	DeliveredAt          *time.Time      `json:"delivered_at"`
	Carrier              string          `json:"carrier"`
	TrackingNumber       string          `json:"tracking_number"`
	Events               []OrderEvent    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index" json:"-"`
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Category  string          `json:"category"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
}

// OrderEvent is one entry of the tracking timeline
type OrderEvent struct {
	ID        uint        `gorm:"primaryKey" json:"-"`
	OrderID   uint        `gorm:"index" json:"-"`
	Status    OrderStatus `gorm:"type:VARCHAR(20)" json:"status"`
	Note      string      `json:"note"`
	CreatedAt time.Time   `json:"created_at"`
}

// ApplyStatus moves the order to next and appends a tracking event
func (o *Order) ApplyStatus(next OrderStatus, note string, now time.Time) error {
	if !o.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	o.Status = next
	if next == OrderStatusDelivered {
		o.DeliveredAt = &now
	}
	o.Events = append(o.Events, OrderEvent{OrderID: o.ID, Status: next, Note: note, CreatedAt: now})
	return nil
}

// SetPaymentStatus records a payment status; paid stamps PaidAt once
func (o *Order) SetPaymentStatus(status PaymentStatus, now time.Time) {
	o.PaymentStatus = status
	if status == PaymentStatusPaid && o.PaidAt == nil {
		o.PaidAt = &now
	}
}

// NewOrderRef builds a sortable unique reference, e.g. 20250908130500-<uuid4>
func NewOrderRef(now time.Time) string {
	return now.UTC().Format("20060102150405") + "-" + uuid.NewString()
}

// OrderItemFromCart copies a cart line into an order line at the given price
func OrderItemFromCart(item CartItem, price decimal.Decimal) OrderItem {
	return OrderItem{
		ProductID: item.ProductID,
		Name:      item.Name,
		Slug:      item.Slug,
		Category:  item.Category,
		Image:     item.Image,
		Price:     price,
		Color:     item.Color,
		Size:      item.Size,
		Quantity:  item.Quantity,
	}
}
