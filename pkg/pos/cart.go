// Package pos carries the point-of-sale cart math: line items, subtotal,
// tax, discount, and the conversion into a sale submission.
package pos

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tillware/posgate/pkg/client"
)

// TaxRate is the flat sales tax applied to the subtotal
const TaxRate = 0.12

// Item is one cart line. Quantity is always positive; merging happens by
// product id.
type Item struct {
	ProductID int64
	Name      string
	UnitPrice float64
	Quantity  int
}

// LineTotal returns the extended price for the line
func (i Item) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Cart accumulates items for a sale. Safe for concurrent use.
type Cart struct {
	mu       sync.Mutex
	items    map[int64]Item
	discount float64
}

// NewCart returns an empty cart
func NewCart() *Cart {
	return &Cart{items: make(map[int64]Item)}
}

// AddItem adds quantity of a product, merging with an existing line for the
// same product id
func (c *Cart) AddItem(productID int64, name string, unitPrice float64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if unitPrice < 0 {
		return fmt.Errorf("unit price must not be negative, got %v", unitPrice)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[productID]
	if ok {
		item.Quantity += quantity
	} else {
		item = Item{ProductID: productID, Name: name, UnitPrice: unitPrice, Quantity: quantity}
	}
	c.items[productID] = item
	return nil
}

// RemoveItem drops a line entirely. Removing an absent product is a no-op.
func (c *Cart) RemoveItem(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, productID)
}

// SetDiscount sets a flat discount amount applied before tax
func (c *Cart) SetDiscount(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("discount must not be negative, got %v", amount)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discount = amount
	return nil
}

// Discount returns the current discount amount
func (c *Cart) Discount() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discount
}

// Clear empties the cart and resets the discount
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[int64]Item)
	c.discount = 0
}

// Items returns the cart lines ordered by product id
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return items
}

// Len returns the number of distinct lines
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Subtotal is the sum of line totals before discount and tax
func (c *Cart) Subtotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotalLocked()
}

func (c *Cart) subtotalLocked() float64 {
	var total float64
	for _, item := range c.items {
		total += item.LineTotal()
	}
	return total
}

// Tax is the tax due on the subtotal. The discount applies to the total,
// not the taxable amount.
func (c *Cart) Tax() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotalLocked() * TaxRate
}

// Total is subtotal plus tax minus discount, floored at zero
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	subtotal := c.subtotalLocked()
	total := subtotal + subtotal*TaxRate - c.discount
	if total < 0 {
		return 0
	}
	return total
}

// SaleRequest converts the cart into a sale submission for the POS service
func (c *Cart) SaleRequest(branchID, userID int64, paymentMethod string) (client.SaleRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return client.SaleRequest{}, fmt.Errorf("cart is empty")
	}
	items := make([]client.SaleItem, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, client.SaleItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.LineTotal(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })
	return client.SaleRequest{
		Items:          items,
		BranchID:       branchID,
		UserID:         userID,
		PaymentMethod:  paymentMethod,
		DiscountAmount: c.discount,
	}, nil
}
