package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront-api/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNotEnoughStock  = errors.New("not enough items in stock")
	ErrItemNotFound    = errors.New("cart item not found")
)

// Cart is the server copy of a shopper's cart. OwnerID is a Supabase user id or a guest id.
type Cart struct {
	ID                   uint            `gorm:"primaryKey" json:"-"`
	OwnerID              string          `gorm:"uniqueIndex;not null" json:"owner_id"`
	Items                []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	DeliveryDateIndex    int             `json:"delivery_date_index"`
	ItemsPrice           decimal.Decimal `gorm:"type:decimal(12,2)" json:"items_price"`
	ShippingPrice        decimal.Decimal `gorm:"type:decimal(12,2)" json:"shipping_price"`
	TaxPrice             decimal.Decimal `gorm:"type:decimal(12,2)" json:"tax_price"`
	TotalPrice           decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_price"`
	ExpectedDeliveryDate time.Time       `json:"expected_delivery_date"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// CartItem is one line of the cart with the product snapshot taken when it was added
type CartItem struct {
	ID           uint            `gorm:"primaryKey" json:"-"`
	CartID       uint            `gorm:"index" json:"-"`
	ClientID     string          `gorm:"size:36;not null" json:"client_id"`
	ProductID    uint            `gorm:"not null" json:"product_id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Category     string          `json:"category"`
	Image        string          `json:"image"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	CountInStock int             `json:"count_in_stock"`
	Color        string          `json:"color"`
	Size         string          `json:"size"`
	Quantity     int             `json:"quantity"`
	AddedAt      time.Time       `json:"added_at"`
}

// NewCartItem snapshots a product (Category and Images should be preloaded)
func NewCartItem(p *Product, color, size string, quantity int) CartItem {
	return CartItem{
		ProductID:    p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Category:     p.CategoryName(),
		Image:        p.MainImage(),
		Price:        p.Price,
		CountInStock: p.CountInStock,
		Color:        color,
		Size:         size,
		Quantity:     quantity,
	}
}

func (i *CartItem) sameVariant(o *CartItem) bool {
	return i.ProductID == o.ProductID && i.Color == o.Color && i.Size == o.Size
}

func (c *Cart) indexOf(clientID string) int {
	for i := range c.Items {
		if c.Items[i].ClientID == clientID {
			return i
		}
	}
	return -1
}

func (c *Cart) variantIndex(item *CartItem) int {
	for i := range c.Items {
		if c.Items[i].sameVariant(item) {
			return i
		}
	}
	return -1
}

// AddItem adds item.Quantity units, merging with an existing line of the same product, color
// and size. The snapshot on the line is refreshed from item. Returns the line's client id.
// The cart is unchanged on error.
func (c *Cart) AddItem(item CartItem) (string, error) {
	if item.Quantity < 1 {
		return "", ErrInvalidQuantity
	}

	if i := c.variantIndex(&item); i >= 0 {
		existing := c.Items[i]
		merged := existing.Quantity + item.Quantity
		if merged > item.CountInStock {
			return "", ErrNotEnoughStock
		}
		item.ID = existing.ID
		item.CartID = existing.CartID
		item.ClientID = existing.ClientID
		item.AddedAt = existing.AddedAt
		item.Quantity = merged
		c.Items[i] = item
		return item.ClientID, nil
	}

	if item.Quantity > item.CountInStock {
		return "", ErrNotEnoughStock
	}
	item.ID = 0
	item.ClientID = uuid.NewString()
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	c.Items = append(c.Items, item)
	return item.ClientID, nil
}

// UpdateItem sets the quantity of a line
func (c *Cart) UpdateItem(clientID string, quantity int) error {
	i := c.indexOf(clientID)
	if i < 0 {
		return ErrItemNotFound
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if quantity > c.Items[i].CountInStock {
		return ErrNotEnoughStock
	}
	c.Items[i].Quantity = quantity
	return nil
}

// RemoveItem drops a line
func (c *Cart) RemoveItem(clientID string) error {
	i := c.indexOf(clientID)
	if i < 0 {
		return ErrItemNotFound
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return nil
}

// NoDeliveryChoice makes Reprice pick the default delivery option
const NoDeliveryChoice = -1

// Clear empties the cart and resets the delivery choice
func (c *Cart) Clear() {
	c.Items = nil
	c.DeliveryDateIndex = NoDeliveryChoice
}

// Merge folds other lines into the cart. Quantities of matching lines add up, capped at the
// known stock; lines with no stock left are dropped. Returns the number of lines touched.
func (c *Cart) Merge(other []CartItem) int {
	touched := 0
	for _, item := range other {
		if item.Quantity < 1 || item.CountInStock < 1 {
			continue
		}
		if i := c.variantIndex(&item); i >= 0 {
			c.Items[i].Quantity = min(c.Items[i].Quantity+item.Quantity, c.Items[i].CountInStock)
			touched++
			continue
		}
		item.ID = 0
		item.CartID = c.ID
		item.Quantity = min(item.Quantity, item.CountInStock)
		if item.ClientID == "" || c.indexOf(item.ClientID) >= 0 {
			item.ClientID = uuid.NewString()
		}
		c.Items = append(c.Items, item)
		touched++
	}
	return touched
}

// Lines exposes the cart to the pricing package
func (c *Cart) Lines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, pricing.Line{Price: item.Price, Quantity: item.Quantity})
	}
	return lines
}

// Reprice recomputes all totals; called after every mutation
func (c *Cart) Reprice(calc *pricing.Calculator, now time.Time) {
	s := calc.Calculate(c.Lines(), c.DeliveryDateIndex, now)
	c.DeliveryDateIndex = s.DeliveryDateIndex
	c.ItemsPrice = s.ItemsPrice
	c.ShippingPrice = s.ShippingPrice
	c.TaxPrice = s.TaxPrice
	c.TotalPrice = s.TotalPrice
	c.ExpectedDeliveryDate = s.ExpectedDeliveryDate
}

// LoadCart returns the owner's cart with its items, or an empty unsaved cart
func LoadCart(db *gorm.DB, ownerID string) (*Cart, error) {
	var cart Cart
	err := db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("added_at ASC, id ASC")
	}).Where("owner_id = ?", ownerID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Cart{OwnerID: ownerID, Items: []CartItem{}, DeliveryDateIndex: NoDeliveryChoice}, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveCart writes the cart header and replaces its items. Run it inside a transaction.
func SaveCart(tx *gorm.DB, cart *Cart) error {
	if err := tx.Omit("Items").Save(cart).Error; err != nil {
		return err
	}
	if err := tx.Where("cart_id = ?", cart.ID).Delete(&CartItem{}).Error; err != nil {
		return err
	}
	if len(cart.Items) == 0 {
		return nil
	}
	for i := range cart.Items {
		cart.Items[i].ID = 0
		cart.Items[i].CartID = cart.ID
	}
	return tx.Create(&cart.Items).Error
}

// DeleteCart removes the owner's cart and its items
func DeleteCart(tx *gorm.DB, ownerID string) error {
	var cart Cart
	err := tx.Where("owner_id = ?", ownerID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := tx.Where("cart_id = ?", cart.ID).Delete(&CartItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&cart).Error
}
