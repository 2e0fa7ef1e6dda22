package models

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusReadyToShip, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusReadyToShip, OrderStatusShipped, true},
		{OrderStatusReadyToShip, OrderStatusCancelled, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusReturned, true},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusReturned, OrderStatusDelivered, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParseStatuses(t *testing.T) {
	s, err := ParseOrderStatus(" Shipped ")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, s)

	_, err = ParseOrderStatus("lost")
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)

	p, err := ParsePaymentStatus("PAID")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, p)

	_, err = ParsePaymentStatus("maybe")
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
}

func TestNewOrderRef(t *testing.T) {
	ref := NewOrderRef(time.Date(2025, 9, 8, 13, 5, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(ref, "20250908130500-"))
	assert.Len(t, ref, len("20250908130500-")+36)
}

func TestOrderItemFromCart(t *testing.T) {
	line := testLine(7, "red", "M", 2, 5)
	item := OrderItemFromCart(line, decimal.RequireFromString("8.50"))

	assert.Equal(t, uint(7), item.ProductID)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "8.50", item.Price.StringFixed(2))
	assert.Equal(t, "red", item.Color)
}

func TestOrder_ApplyStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	o := &Order{ID: 3, Status: OrderStatusShipped}

	require.NoError(t, o.ApplyStatus(OrderStatusDelivered, "left at door", now))
	assert.Equal(t, OrderStatusDelivered, o.Status)
	require.NotNil(t, o.DeliveredAt)
	assert.Equal(t, now, *o.DeliveredAt)
	require.Len(t, o.Events, 1)
	assert.Equal(t, "left at door", o.Events[0].Note)
	assert.Equal(t, uint(3), o.Events[0].OrderID)

	err := o.ApplyStatus(OrderStatusPending, "", now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, OrderStatusDelivered, o.Status)
	assert.Len(t, o.Events, 1)
}

func TestOrder_SetPaymentStatus(t *testing.T) {
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	o := &Order{PaymentStatus: PaymentStatusPending}

	o.SetPaymentStatus(PaymentStatusPaid, first)
	require.NotNil(t, o.PaidAt)
	o.SetPaymentStatus(PaymentStatusPaid, first.Add(time.Hour))
	assert.Equal(t, first, *o.PaidAt, "paid_at keeps the first payment")

	o.SetPaymentStatus(PaymentStatusRefunded, first)
	assert.Equal(t, PaymentStatusRefunded, o.PaymentStatus)
}
