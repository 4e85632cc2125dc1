package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/ashwinyue/shop-assistant/internal/repository"
)

var userParam = &schema.ParameterInfo{Type: schema.String, Desc: "User ID, injected by the server"}

// ========== add_to_cart ==========

type addToCartTool struct {
	resolver *ProductResolver
	cart     repository.CartRepository
}

func (t *addToCartTool) Name() string { return "add_to_cart" }

func (t *addToCartTool) Description() string {
	return "Add a product to the user's shopping cart. Requires product_id and user_id."
}

func (t *addToCartTool) Params() map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{
		"user_id":    userParam,
		"product_id": {Type: schema.String, Desc: "Product SKU or name", Required: true},
		"quantity":   {Type: schema.Integer, Desc: "Quantity to add, default 1"},
	}
}

func (t *addToCartTool) Run(ctx context.Context, userID string, params Params) (*Result, error) {
	ref := params.String("product_id")
	quantity := params.Int("quantity", 1)
	if quantity < 1 {
		return NotFound(t.Name(), "Quantity must be at least 1"), nil
	}

	p, err := t.resolver.Resolve(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound(t.Name(), "Product %s not found", ref), nil
	}
	if err != nil {
		return nil, err
	}

	item, created, err := t.cart.AddItem(ctx, userID, p.ID, quantity)
	if err != nil {
		return nil, err
	}
	lines, err := t.cart.CountLines(ctx, userID)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Updated %s quantity to %d", p.Name, item.Quantity)
	if created {
		msg = fmt.Sprintf("Added %s to cart", p.Name)
	}
	return &Result{
		Kind:    KindCartUpdate,
		Success: true,
		Message: msg,
		CartUpdate: &CartUpdate{
			ProductName:    p.Name,
			Quantity:       item.Quantity,
			CartTotalItems: lines,
		},
	}, nil
}

// ========== view_cart ==========

type viewCartTool struct {
	cart repository.CartRepository
}

func (t *viewCartTool) Name() string { return "view_cart" }

func (t *viewCartTool) Description() string {
	return "View all items in the user's shopping cart with total price."
}

func (t *viewCartTool) Params() map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{"user_id": userParam}
}

func (t *viewCartTool) Run(ctx context.Context, userID string, params Params) (*Result, error) {
	items, err := t.cart.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{CartItems: make([]*CartLine, 0, len(items)), Currency: "INR"}
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		line := &CartLine{
			ProductID:   it.Product.SKU,
			ProductName: it.Product.Name,
			Price:       it.Product.Price,
			Quantity:    it.Quantity,
			Total:       it.Product.Price * float64(it.Quantity),
		}
		view.CartItems = append(view.CartItems, line)
		view.TotalItems += line.Quantity
		view.TotalPrice += line.Total
	}

	res := &Result{Kind: KindCart, Success: true, Cart: view}
	if len(view.CartItems) == 0 {
		res.Message = "Your cart is empty"
	}
	return res, nil
}

// ========== remove_from_cart ==========

type removeFromCartTool struct {
	resolver *ProductResolver
	cart     repository.CartRepository
}

func (t *removeFromCartTool) Name() string { return "remove_from_cart" }

func (t *removeFromCartTool) Description() string {
	return "Remove a product from the user's shopping cart by product_id."
}

func (t *removeFromCartTool) Params() map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{
		"user_id":    userParam,
		"product_id": {Type: schema.String, Desc: "Product SKU or name", Required: true},
	}
}

func (t *removeFromCartTool) Run(ctx context.Context, userID string, params Params) (*Result, error) {
	ref := params.String("product_id")
	p, err := t.resolver.Resolve(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound(t.Name(), "Product %s not found", ref), nil
	}
	if err != nil {
		return nil, err
	}

	removed, err := t.cart.RemoveItem(ctx, userID, p.ID)
	if err != nil {
		return nil, err
	}
	if !removed {
		return NotFound(t.Name(), "%s not found in cart", p.Name), nil
	}

	lines, err := t.cart.CountLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Result{
		Kind:       KindCartUpdate,
		Success:    true,
		Message:    fmt.Sprintf("Removed %s from cart", p.Name),
		CartUpdate: &CartUpdate{ProductName: p.Name, CartTotalItems: lines},
	}, nil
}

// ========== clear_cart ==========

type clearCartTool struct {
	cart repository.CartRepository
}

func (t *clearCartTool) Name() string { return "clear_cart" }

func (t *clearCartTool) Description() string {
	return "Remove all items from the user's shopping cart."
}

func (t *clearCartTool) Params() map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{"user_id": userParam}
}

func (t *clearCartTool) Run(ctx context.Context, userID string, params Params) (*Result, error) {
	n, err := t.cart.Clear(ctx, userID)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Cleared %d items from cart", n)
	if n == 0 {
		msg = "Cart was already empty"
	}
	return &Result{
		Kind:       KindCartUpdate,
		Success:    true,
		Message:    msg,
		CartUpdate: &CartUpdate{Removed: n},
	}, nil
}
