package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusFailed, true},
		{OrderStatusFailed, OrderStatusPending, true},
		{OrderStatusFailed, OrderStatusConfirmed, false},
		{OrderStatusConfirmed, OrderStatusPending, false},
		{OrderStatusConfirmed, OrderStatusFailed, false},
		{OrderStatusPending, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestOrderItem_LineTotal(t *testing.T) {
	item := OrderItem{UnitPrice: 1499, Quantity: 3}
	assert.Equal(t, 4497.0, item.LineTotal())
}

func TestProduct_CategoryName(t *testing.T) {
	p := &Product{}
	assert.Equal(t, "", p.CategoryName())
	p.Category = &Category{Name: "candles"}
	assert.Equal(t, "candles", p.CategoryName())
}
