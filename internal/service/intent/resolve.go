package intent

import (
	"regexp"
	"strings"

	"github.com/ashwinyue/shop-assistant/internal/service/catalog"
)

var (
	orderIDPattern    = regexp.MustCompile(`(?i)\bORD\d+\b`)
	trackingIDPattern = regexp.MustCompile(`(?i)\bTRK\d+\b`)
	digitsPattern     = regexp.MustCompile(`\d{3,}`)

	paymentMethods = []string{"COD", "UPI", "CARD", "NETBANKING", "WALLET"}
)

// Resolve 对模型给出的参数做补全和清洗
// user_id 永远由服务端注入，这里会被移除
func Resolve(toolName, message string, llmParams map[string]any) catalog.Params {
	params := catalog.Params{}
	for k, v := range llmParams {
		params[k] = v
	}
	delete(params, "user_id")

	switch toolName {
	case "search_products":
		if !params.Has("query") && !params.Has("category") {
			params["query"] = message
		}
		if _, ok := params["limit"]; !ok {
			params["limit"] = 5
		}

	case "add_to_cart", "remove_from_cart", "get_product_details":
		ref := firstOf(params, "product_id", "product_name", "product", "name")
		if ref == "" {
			ref = message
		}
		params = keep(params, "quantity")
		params["product_id"] = ref
		if toolName == "add_to_cart" {
			if _, ok := params["quantity"]; !ok {
				params["quantity"] = 1
			}
		} else {
			delete(params, "quantity")
		}

	case "view_cart", "clear_cart", "list_categories", "list_orders":
		params = catalog.Params{}

	case "get_order_status", "track_order":
		orderID := firstOf(params, "order_id", "order_number")
		trackingID := params.String("tracking_id")
		params = catalog.Params{}
		if orderID == "" && trackingID == "" {
			orderID, trackingID = extractOrderRef(message)
		}
		if orderID != "" {
			params["order_id"] = orderID
		}
		if trackingID != "" && toolName == "track_order" {
			params["tracking_id"] = trackingID
		}

	case "create_order":
		method := strings.ToUpper(params.String("payment_method"))
		if method == "" {
			method = detectPayment(message)
		}
		params = catalog.Params{"payment_method": method}
	}
	return params
}

// extractOrderRef 从消息中提取订单号或物流号，纯数字视为订单号
func extractOrderRef(message string) (orderID, trackingID string) {
	if m := orderIDPattern.FindString(message); m != "" {
		return strings.ToUpper(m), ""
	}
	if m := trackingIDPattern.FindString(message); m != "" {
		return "", strings.ToUpper(m)
	}
	if m := digitsPattern.FindString(message); m != "" {
		return "ORD" + m, ""
	}
	return "", ""
}

func detectPayment(message string) string {
	upper := strings.ToUpper(message)
	for _, m := range paymentMethods {
		if strings.Contains(upper, m) {
			return m
		}
	}
	return "COD"
}

func firstOf(p catalog.Params, keys ...string) string {
	for _, k := range keys {
		if v := p.String(k); v != "" {
			return v
		}
	}
	return ""
}

func keep(p catalog.Params, keys ...string) catalog.Params {
	out := catalog.Params{}
	for _, k := range keys {
		if v, ok := p[k]; ok {
			out[k] = v
		}
	}
	return out
}
