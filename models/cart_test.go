package models

import (
	"testing"
	"time"

	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/junaidrashid-git/storefront-api/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func testLine(productID uint, color, size string, qty, stock int) CartItem {
	return CartItem{
		ProductID:    productID,
		Name:         "Tee",
		Slug:         "tee",
		Price:        decimal.RequireFromString("10.00"),
		CountInStock: stock,
		Color:        color,
		Size:         size,
		Quantity:     qty,
	}
}

func TestCart_AddItem_MergesSameVariant(t *testing.T) {
	cart := &Cart{}

	id1, err := cart.AddItem(testLine(1, "red", "M", 2, 5))
	require.NoError(t, err)
	id2, err := cart.AddItem(testLine(1, "red", "M", 1, 5))
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestCart_AddItem_DifferentSizeIsSeparateLine(t *testing.T) {
	cart := &Cart{}

	id1, err := cart.AddItem(testLine(1, "red", "M", 1, 5))
	require.NoError(t, err)
	id2, err := cart.AddItem(testLine(1, "red", "L", 1, 5))
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	assert.Len(t, cart.Items, 2)
}

func TestCart_AddItem_StockExceededLeavesCartUnchanged(t *testing.T) {
	cart := &Cart{}
	_, err := cart.AddItem(testLine(1, "", "", 4, 5))
	require.NoError(t, err)

	_, err = cart.AddItem(testLine(1, "", "", 2, 5))
	assert.ErrorIs(t, err, ErrNotEnoughStock)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	_, err = cart.AddItem(testLine(2, "", "", 6, 5))
	assert.ErrorIs(t, err, ErrNotEnoughStock)
	assert.Len(t, cart.Items, 1)
}

func TestCart_AddItem_InvalidQuantity(t *testing.T) {
	cart := &Cart{}
	_, err := cart.AddItem(testLine(1, "", "", 0, 5))
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Empty(t, cart.Items)
}

func TestCart_UpdateAndRemove(t *testing.T) {
	cart := &Cart{}
	id, err := cart.AddItem(testLine(1, "", "", 1, 3))
	require.NoError(t, err)

	require.NoError(t, cart.UpdateItem(id, 3))
	assert.Equal(t, 3, cart.Items[0].Quantity)

	assert.ErrorIs(t, cart.UpdateItem(id, 4), ErrNotEnoughStock)
	assert.ErrorIs(t, cart.UpdateItem(id, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, cart.UpdateItem("missing", 1), ErrItemNotFound)

	require.NoError(t, cart.RemoveItem(id))
	assert.Empty(t, cart.Items)
	assert.ErrorIs(t, cart.RemoveItem(id), ErrItemNotFound)
}

func TestCart_Merge_CapsAtStock(t *testing.T) {
	cart := &Cart{}
	_, err := cart.AddItem(testLine(1, "", "", 2, 3))
	require.NoError(t, err)

	guest := []CartItem{
		testLine(1, "", "", 2, 3),
		testLine(2, "blue", "S", 5, 4),
		testLine(3, "", "", 1, 0),
	}
	guest[1].ClientID = "guest-line"

	touched := cart.Merge(guest)
	assert.Equal(t, 2, touched)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 4, cart.Items[1].Quantity)
	assert.Equal(t, "guest-line", cart.Items[1].ClientID)
}

func TestCart_Reprice(t *testing.T) {
	calc, err := pricing.FromConfig(config.PricingConfig{TaxRate: 0.15, DeliveryDates: config.DefaultDeliveryDates})
	require.NoError(t, err)
	now := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	cart := &Cart{DeliveryDateIndex: 9}
	_, err = cart.AddItem(testLine(1, "", "", 2, 5))
	require.NoError(t, err)
	cart.Reprice(calc, now)

	assert.Equal(t, 2, cart.DeliveryDateIndex)
	assert.Equal(t, "20.00", cart.ItemsPrice.StringFixed(2))
	assert.Equal(t, "4.90", cart.ShippingPrice.StringFixed(2))
	assert.Equal(t, "3.00", cart.TaxPrice.StringFixed(2))
	assert.Equal(t, "27.90", cart.TotalPrice.StringFixed(2))
	assert.Equal(t, now.AddDate(0, 0, 5), cart.ExpectedDeliveryDate)

	cart.Clear()
	cart.Reprice(calc, now)
	assert.True(t, cart.TotalPrice.IsZero())
}

func TestLoadSaveCart(t *testing.T) {
	db := setupTestDB(t)

	cart, err := LoadCart(db, "user-1")
	require.NoError(t, err)
	assert.Zero(t, cart.ID)
	assert.Empty(t, cart.Items)

	_, err = cart.AddItem(testLine(1, "red", "M", 2, 5))
	require.NoError(t, err)
	_, err = cart.AddItem(testLine(2, "", "", 1, 5))
	require.NoError(t, err)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return SaveCart(tx, cart) }))
	assert.NotZero(t, cart.ID)

	loaded, err := LoadCart(db, "user-1")
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, cart.Items[0].ClientID, loaded.Items[0].ClientID)

	require.NoError(t, loaded.RemoveItem(loaded.Items[0].ClientID))
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return SaveCart(tx, loaded) }))

	var count int64
	require.NoError(t, db.Model(&CartItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, DeleteCart(db, "user-1"))
	require.NoError(t, db.Model(&Cart{}).Count(&count).Error)
	assert.Zero(t, count)
}
