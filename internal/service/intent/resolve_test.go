package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ashwinyue/shop-assistant/internal/service/catalog"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		message string
		params  map[string]any
		want    catalog.Params
	}{
		{
			name:    "search defaults",
			tool:    "search_products",
			message: "show me candles",
			params:  map[string]any{},
			want:    catalog.Params{"query": "show me candles", "limit": 5},
		},
		{
			name:    "search keeps model values",
			tool:    "search_products",
			message: "candles under 500",
			params:  map[string]any{"query": "candles", "max_price": float64(500), "limit": float64(3)},
			want:    catalog.Params{"query": "candles", "max_price": float64(500), "limit": float64(3)},
		},
		{
			name:    "add to cart by name",
			tool:    "add_to_cart",
			message: "add blue kurti to my cart",
			params:  map[string]any{"product_name": "blue kurti", "user_id": "attacker"},
			want:    catalog.Params{"product_id": "blue kurti", "quantity": 1},
		},
		{
			name:    "add to cart keeps quantity",
			tool:    "add_to_cart",
			message: "add 2 CN001",
			params:  map[string]any{"product_id": "CN001", "quantity": float64(2)},
			want:    catalog.Params{"product_id": "CN001", "quantity": float64(2)},
		},
		{
			name:    "remove falls back to message",
			tool:    "remove_from_cart",
			message: "neem soap",
			params:  map[string]any{},
			want:    catalog.Params{"product_id": "neem soap"},
		},
		{
			name:    "view cart drops params",
			tool:    "view_cart",
			message: "cart mein kya hai",
			params:  map[string]any{"anything": "x"},
			want:    catalog.Params{},
		},
		{
			name:    "track order id from message",
			tool:    "track_order",
			message: "where is my order ord12345?",
			params:  map[string]any{},
			want:    catalog.Params{"order_id": "ORD12345"},
		},
		{
			name:    "track by tracking id",
			tool:    "track_order",
			message: "track TRK654321 please",
			params:  map[string]any{},
			want:    catalog.Params{"tracking_id": "TRK654321"},
		},
		{
			name:    "status from bare digits",
			tool:    "get_order_status",
			message: "status of order #45678",
			params:  map[string]any{},
			want:    catalog.Params{"order_id": "ORD45678"},
		},
		{
			name:    "track without reference",
			tool:    "track_order",
			message: "where is my order",
			params:  map[string]any{},
			want:    catalog.Params{},
		},
		{
			name:    "create order detects payment",
			tool:    "create_order",
			message: "checkout with upi",
			params:  map[string]any{},
			want:    catalog.Params{"payment_method": "UPI"},
		},
		{
			name:    "create order default COD",
			tool:    "create_order",
			message: "place my order",
			params:  map[string]any{},
			want:    catalog.Params{"payment_method": "COD"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.tool, tt.message, tt.params))
		})
	}
}
