package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddToCart_Accumulates(t *testing.T) {
	f := newFixture(t)

	res := f.mustInvoke(t, "add_to_cart", "u1", Params{"product_id": "CN001", "quantity": 2})
	assert.Equal(t, "Added Lavender Soy Candle to cart", res.Message)
	assert.Equal(t, 2, res.CartUpdate.Quantity)
	assert.Equal(t, int64(1), res.CartUpdate.CartTotalItems)

	res = f.mustInvoke(t, "add_to_cart", "u1", Params{"product_id": "CN001", "quantity": 3})
	assert.Equal(t, "Updated Lavender Soy Candle quantity to 5", res.Message)
	assert.Equal(t, 5, res.CartUpdate.Quantity)
	assert.Equal(t, int64(1), res.CartUpdate.CartTotalItems)

	res = f.mustInvoke(t, "add_to_cart", "u1", Params{"product_id": "soap"})
	assert.Equal(t, 1, res.CartUpdate.Quantity)
	assert.Equal(t, int64(2), res.CartUpdate.CartTotalItems)
}

func TestAddToCart_Failures(t *testing.T) {
	f := newFixture(t)

	res := f.invoke("add_to_cart", "u1", Params{"product_id": "unicorn"})
	assert.False(t, res.Success)
	assert.Equal(t, "Product unicorn not found", res.Message)

	res = f.invoke("add_to_cart", "u1", Params{"product_id": "CN001", "quantity": 0})
	assert.False(t, res.Success)

	lines, err := f.repos.Cart.CountLines(f.ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, lines)
}

func TestViewCart_Empty(t *testing.T) {
	f := newFixture(t)

	res := f.mustInvoke(t, "view_cart", "nobody", nil)
	require.Equal(t, KindCart, res.Kind)
	assert.Equal(t, 0, res.Cart.TotalItems)
	assert.Equal(t, float64(0), res.Cart.TotalPrice)
	assert.Empty(t, res.Cart.CartItems)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, true, got["success"])
	assert.Equal(t, []any{}, got["cart_items"])
	assert.Equal(t, float64(0), got["total_items"])
	assert.Equal(t, float64(0), got["total_price"])
}

func TestViewCart_Totals(t *testing.T) {
	f := newFixture(t)
	f.mustInvoke(t, "add_to_cart", "u1", Params{"product_id": "WC001", "quantity": 2})
	f.mustInvoke(t, "add_to_cart", "u1", Params{"product_id": "SP001", "quantity": 3})
	f.mustInvoke(t, "add_to_cart", "u2", Params{"product_id": "WC002"})

	res := f.mustInvoke(t, "view_cart", "u1", nil)
	require.Len(t, res.Cart.CartItems, 2)
	assert.Equal(t, "WC001", res.Cart.CartItems[0].ProductID)
	assert.Equal(t, float64(2998), res.Cart.CartItems[0].Total)
	assert.Equal(t, 5, res.Cart.TotalItems)
	assert.Equal(t, float64(2998+597), res.Cart.TotalPrice)
	assert.Equal(t, "INR", res.Cart.Currency)
}

func TestRemoveFromCart(t *testing.T) {
	f := newFixture(t)
	f.mustInvoke(t, "add_to_cart", "u1", Params{"product_id": "WC001"})
	f.mustInvoke(t, "add_to_cart", "u1", Params{"product_id": "SP001"})

	res := f.invoke("remove_from_cart", "u1", Params{"product_id": "CN001"})
	assert.False(t, res.Success)
	assert.Equal(t, "Lavender Soy Candle not found in cart", res.Message)

	res = f.mustInvoke(t, "remove_from_cart", "u1", Params{"product_id": "kurti"})
	assert.Equal(t, "Removed Elegant Cotton Kurti from cart", res.Message)
	assert.Equal(t, int64(1), res.CartUpdate.CartTotalItems)
}

func TestClearCart(t *testing.T) {
	f := newFixture(t)

	res := f.mustInvoke(t, "clear_cart", "u1", nil)
	assert.Equal(t, "Cart was already empty", res.Message)

	f.mustInvoke(t, "add_to_cart", "u1", Params{"product_id": "WC001"})
	f.mustInvoke(t, "add_to_cart", "u1", Params{"product_id": "SP001", "quantity": 4})

	res = f.mustInvoke(t, "clear_cart", "u1", nil)
	assert.Equal(t, "Cleared 2 items from cart", res.Message)
	assert.Equal(t, int64(2), res.CartUpdate.Removed)

	view := f.mustInvoke(t, "view_cart", "u1", nil)
	assert.Empty(t, view.Cart.CartItems)
}
