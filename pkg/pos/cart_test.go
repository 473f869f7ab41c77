package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartMergesLinesByProduct(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(1, "Coffee", 3.50, 2))
	require.NoError(t, cart.AddItem(1, "Coffee", 3.50, 1))
	require.NoError(t, cart.AddItem(2, "Bagel", 2.00, 1))

	items := cart.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, int64(2), items[1].ProductID)
}

func TestCartTotals(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(1, "Coffee", 3.50, 2)) // 7.00
	require.NoError(t, cart.AddItem(2, "Bagel", 2.00, 1))  // 2.00

	assert.InDelta(t, 9.00, cart.Subtotal(), 1e-9)
	assert.InDelta(t, 9.00*TaxRate, cart.Tax(), 1e-9)
	assert.InDelta(t, 9.00*1.12, cart.Total(), 1e-9)

	// Discount reduces the total but not the taxable amount.
	require.NoError(t, cart.SetDiscount(1.00))
	assert.InDelta(t, 9.00*TaxRate, cart.Tax(), 1e-9)
	assert.InDelta(t, 9.00*1.12-1.00, cart.Total(), 1e-9)
}

func TestCartDiscountExceedingTotalFloorsAtZero(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(1, "Coffee", 3.50, 1))
	require.NoError(t, cart.SetDiscount(100))

	assert.InDelta(t, 3.50*TaxRate, cart.Tax(), 1e-9)
	assert.Zero(t, cart.Total())
}

func TestCartValidation(t *testing.T) {
	cart := NewCart()
	assert.Error(t, cart.AddItem(1, "Coffee", 3.50, 0))
	assert.Error(t, cart.AddItem(1, "Coffee", 3.50, -1))
	assert.Error(t, cart.AddItem(1, "Coffee", -0.01, 1))
	assert.Error(t, cart.SetDiscount(-5))
	assert.Zero(t, cart.Len())
}

func TestCartRemoveAndClear(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(1, "Coffee", 3.50, 1))
	require.NoError(t, cart.AddItem(2, "Bagel", 2.00, 1))
	require.NoError(t, cart.SetDiscount(0.50))

	cart.RemoveItem(1)
	assert.Equal(t, 1, cart.Len())
	cart.RemoveItem(99) // absent product, no-op

	cart.Clear()
	assert.Zero(t, cart.Len())
	assert.Zero(t, cart.Discount())
	assert.Zero(t, cart.Subtotal())
}

func TestCartSaleRequest(t *testing.T) {
	cart := NewCart()
	require.NoError(t, cart.AddItem(2, "Bagel", 2.00, 3))
	require.NoError(t, cart.AddItem(1, "Coffee", 3.50, 2))
	require.NoError(t, cart.SetDiscount(1.50))

	req, err := cart.SaleRequest(5, 7, "cash")
	require.NoError(t, err)
	assert.Equal(t, int64(5), req.BranchID)
	assert.Equal(t, int64(7), req.UserID)
	assert.Equal(t, "cash", req.PaymentMethod)
	assert.Equal(t, 1.50, req.DiscountAmount)
	require.Len(t, req.Items, 2)
	assert.Equal(t, int64(1), req.Items[0].ProductID)
	assert.InDelta(t, 7.00, req.Items[0].TotalPrice, 1e-9)
	assert.InDelta(t, 6.00, req.Items[1].TotalPrice, 1e-9)
}

func TestEmptyCartSaleRequest(t *testing.T) {
	_, err := NewCart().SaleRequest(1, 1, "cash")
	assert.Error(t, err)
}
