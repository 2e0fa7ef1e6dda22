package pricing

import (
	"testing"
	"time"

	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := FromConfig(config.PricingConfig{TaxRate: 0.15, DeliveryDates: config.DefaultDeliveryDates})
	require.NoError(t, err)
	return calc
}

func TestRound2(t *testing.T) {
	assert.True(t, d("1.01").Equal(Round2(d("1.005"))))
	assert.True(t, d("-1.01").Equal(Round2(d("-1.005"))))
	assert.True(t, d("2.5").Equal(Round2(d("2.5"))))
}

func TestNewCalculator_RequiresDeliveryDates(t *testing.T) {
	_, err := NewCalculator(d("0.1"), nil)
	assert.ErrorIs(t, err, ErrNoDeliveryDates)
}

func TestCalculator_Calculate(t *testing.T) {
	calc := newTestCalculator(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("empty cart is all zeros", func(t *testing.T) {
		s := calc.Calculate(nil, 0, now)
		assert.True(t, s.ItemsPrice.IsZero())
		assert.True(t, s.ShippingPrice.IsZero())
		assert.True(t, s.TaxPrice.IsZero())
		assert.True(t, s.TotalPrice.IsZero())
		assert.Equal(t, 0, s.DeliveryDateIndex)
	})

	t.Run("express delivery is never free", func(t *testing.T) {
		lines := []Line{{Price: d("19.99"), Quantity: 3}}
		s := calc.Calculate(lines, 0, now)

		assert.Equal(t, "59.97", s.ItemsPrice.StringFixed(2))
		assert.Equal(t, "12.90", s.ShippingPrice.StringFixed(2))
		assert.Equal(t, "9.00", s.TaxPrice.StringFixed(2))
		assert.Equal(t, "81.87", s.TotalPrice.StringFixed(2))
		assert.Equal(t, now.AddDate(0, 0, 1), s.ExpectedDeliveryDate)
	})

	t.Run("free shipping threshold is inclusive", func(t *testing.T) {
		s := calc.Calculate([]Line{{Price: d("35"), Quantity: 1}}, 2, now)
		assert.True(t, s.ShippingPrice.IsZero())
		assert.Equal(t, "40.25", s.TotalPrice.StringFixed(2))

		s = calc.Calculate([]Line{{Price: d("34.99"), Quantity: 1}}, 2, now)
		assert.Equal(t, "4.90", s.ShippingPrice.StringFixed(2))
	})

	t.Run("unknown delivery index falls back to the default option", func(t *testing.T) {
		s := calc.Calculate([]Line{{Price: d("10"), Quantity: 1}}, 7, now)
		assert.Equal(t, 2, s.DeliveryDateIndex)
		assert.Equal(t, now.AddDate(0, 0, 5), s.ExpectedDeliveryDate)

		s = calc.Calculate([]Line{{Price: d("10"), Quantity: 1}}, -1, now)
		assert.Equal(t, 2, s.DeliveryDateIndex)
	})

	t.Run("multiple lines are summed before rounding", func(t *testing.T) {
		lines := []Line{
			{Price: d("0.333"), Quantity: 3},
			{Price: d("1.10"), Quantity: 2},
		}
		assert.Equal(t, "3.20", ItemsPrice(lines).StringFixed(2))
	})
}
