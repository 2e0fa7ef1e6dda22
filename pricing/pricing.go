// Package pricing computes cart and order totals: items, shipping by delivery option, tax.
package pricing

import (
	"errors"
	"time"

	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/shopspring/decimal"
)

var ErrNoDeliveryDates = errors.New("no delivery dates configured")

// DeliveryDate is a shipping option. A zero FreeShippingMinPrice means the option is never free.
type DeliveryDate struct {
	Name                 string          `json:"name"`
	DaysToDeliver        int             `json:"days_to_deliver"`
	ShippingPrice        decimal.Decimal `json:"shipping_price"`
	FreeShippingMinPrice decimal.Decimal `json:"free_shipping_min_price"`
}

// Line is the priced unit of a cart or order
type Line struct {
	Price    decimal.Decimal
	Quantity int
}

// Summary holds the computed totals
type Summary struct {
	ItemsPrice           decimal.Decimal `json:"items_price"`
	ShippingPrice        decimal.Decimal `json:"shipping_price"`
	TaxPrice             decimal.Decimal `json:"tax_price"`
	TotalPrice           decimal.Decimal `json:"total_price"`
	DeliveryDateIndex    int             `json:"delivery_date_index"`
	ExpectedDeliveryDate time.Time       `json:"expected_delivery_date"`
}

// Calculator prices carts. The zero value is not usable; use NewCalculator or FromConfig.
type Calculator struct {
	TaxRate       decimal.Decimal
	DeliveryDates []DeliveryDate
}

// NewCalculator builds a calculator with the given tax rate and delivery table
func NewCalculator(taxRate decimal.Decimal, dates []DeliveryDate) (*Calculator, error) {
	if len(dates) == 0 {
		return nil, ErrNoDeliveryDates
	}
	return &Calculator{TaxRate: taxRate, DeliveryDates: dates}, nil
}

// FromConfig builds a calculator from the pricing configuration
func FromConfig(cfg config.PricingConfig) (*Calculator, error) {
	dates := make([]DeliveryDate, 0, len(cfg.DeliveryDates))
	for _, d := range cfg.DeliveryDates {
		dates = append(dates, DeliveryDate{
			Name:                 d.Name,
			DaysToDeliver:        d.DaysToDeliver,
			ShippingPrice:        decimal.NewFromFloat(d.ShippingPrice),
			FreeShippingMinPrice: decimal.NewFromFloat(d.FreeShippingMinPrice),
		})
	}
	return NewCalculator(decimal.NewFromFloat(cfg.TaxRate), dates)
}

// Round2 rounds to cents, half away from zero
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// DefaultDeliveryIndex is the option used when the requested one does not exist
func (c *Calculator) DefaultDeliveryIndex() int {
	return len(c.DeliveryDates) - 1
}

// ResolveDeliveryIndex maps out-of-range indexes to the default option
func (c *Calculator) ResolveDeliveryIndex(index int) int {
	if index < 0 || index >= len(c.DeliveryDates) {
		return c.DefaultDeliveryIndex()
	}
	return index
}

// ItemsPrice is the rounded sum of price times quantity
func ItemsPrice(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return Round2(total)
}

// Calculate prices the lines for the given delivery option, relative to now
func (c *Calculator) Calculate(lines []Line, deliveryIndex int, now time.Time) Summary {
	index := c.ResolveDeliveryIndex(deliveryIndex)
	option := c.DeliveryDates[index]
	summary := Summary{
		ItemsPrice:           decimal.Zero,
		ShippingPrice:        decimal.Zero,
		TaxPrice:             decimal.Zero,
		TotalPrice:           decimal.Zero,
		DeliveryDateIndex:    index,
		ExpectedDeliveryDate: now.AddDate(0, 0, option.DaysToDeliver),
	}
	if len(lines) == 0 {
		return summary
	}

	summary.ItemsPrice = ItemsPrice(lines)
	summary.ShippingPrice = Round2(option.ShippingPrice)
	if option.FreeShippingMinPrice.IsPositive() && summary.ItemsPrice.GreaterThanOrEqual(option.FreeShippingMinPrice) {
		summary.ShippingPrice = decimal.Zero
	}
	summary.TaxPrice = Round2(summary.ItemsPrice.Mul(c.TaxRate))
	summary.TotalPrice = Round2(summary.ItemsPrice.Add(summary.ShippingPrice).Add(summary.TaxPrice))
	return summary
}
