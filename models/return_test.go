package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deliveredOrder() *Order {
	return &Order{
		ID:     1,
		Status: OrderStatusDelivered,
		Items: []OrderItem{
			{ID: 10, Price: decimal.RequireFromString("12.50"), Quantity: 2},
			{ID: 11, Price: decimal.RequireFromString("3.00"), Quantity: 1},
		},
	}
}

func TestBuildReturnItems(t *testing.T) {
	items, refund, err := BuildReturnItems(deliveredOrder(), []ReturnRequestLine{
		{OrderItemID: 10, Quantity: 2},
		{OrderItemID: 11, Quantity: 1},
	}, nil)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "28.00", refund.StringFixed(2))
}

func TestBuildReturnItems_Limits(t *testing.T) {
	_, _, err := BuildReturnItems(deliveredOrder(), []ReturnRequestLine{{OrderItemID: 10, Quantity: 3}}, nil)
	assert.ErrorIs(t, err, ErrReturnQuantityTooHigh)

	_, _, err = BuildReturnItems(deliveredOrder(), []ReturnRequestLine{
		{OrderItemID: 10, Quantity: 1},
		{OrderItemID: 10, Quantity: 2},
	}, nil)
	assert.ErrorIs(t, err, ErrReturnQuantityTooHigh)

	_, _, err = BuildReturnItems(deliveredOrder(), []ReturnRequestLine{{OrderItemID: 10, Quantity: 2}}, map[uint]int{10: 1})
	assert.ErrorIs(t, err, ErrReturnQuantityTooHigh)

	_, _, err = BuildReturnItems(deliveredOrder(), []ReturnRequestLine{{OrderItemID: 99, Quantity: 1}}, nil)
	assert.ErrorIs(t, err, ErrUnknownOrderItem)

	_, _, err = BuildReturnItems(deliveredOrder(), []ReturnRequestLine{{OrderItemID: 10, Quantity: 0}}, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	pending := deliveredOrder()
	pending.Status = OrderStatusShipped
	_, _, err = BuildReturnItems(pending, []ReturnRequestLine{{OrderItemID: 10, Quantity: 1}}, nil)
	assert.ErrorIs(t, err, ErrOrderNotReturnable)
}

func TestReturnStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, ReturnStatusRequested.CanTransitionTo(ReturnStatusApproved))
	assert.True(t, ReturnStatusRequested.CanTransitionTo(ReturnStatusRejected))
	assert.True(t, ReturnStatusApproved.CanTransitionTo(ReturnStatusRefunded))
	assert.False(t, ReturnStatusRequested.CanTransitionTo(ReturnStatusRefunded))
	assert.False(t, ReturnStatusRejected.CanTransitionTo(ReturnStatusApproved))

	s, err := ParseReturnStatus("Approved")
	require.NoError(t, err)
	assert.Equal(t, ReturnStatusApproved, s)
	_, err = ParseReturnStatus("x")
	assert.ErrorIs(t, err, ErrInvalidReturnStatus)
}
