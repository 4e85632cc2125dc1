package catalog

import (
	"encoding/json"
	"fmt"
)

// Kind 工具结果的形态
type Kind string

const (
	KindFailure       Kind = "failure"
	KindProductList   Kind = "product_list"
	KindProductDetail Kind = "product_detail"
	KindCategoryList  Kind = "category_list"
	KindCartUpdate    Kind = "cart_update"
	KindCart          Kind = "cart"
	KindOrderStatus   Kind = "order_status"
	KindOrderList     Kind = "order_list"
	KindOrderCreated  Kind = "order_created"
	KindTracking      Kind = "tracking"
)

// Result 工具执行结果
// Kind 决定哪个载荷字段有效，失败时载荷为空
type Result struct {
	Kind    Kind
	Success bool
	Tool    string
	Message string
	Error   string

	ProductList   *ProductList
	ProductDetail *ProductDetail
	CategoryList  *CategoryList
	CartUpdate    *CartUpdate
	Cart          *CartView
	OrderStatus   *OrderDetail
	OrderList     *OrderList
	OrderCreated  *OrderCreated
	Tracking      *Tracking

	// 执行出错而非业务上的失败
	internal bool
}

// ========== 载荷 ==========

// ProductSummary 检索结果中的商品
type ProductSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating"`
	InStock     bool    `json:"in_stock"`
	Material    string  `json:"material"`
}

// ProductList search_products 结果
type ProductList struct {
	Query        string            `json:"query"`
	Category     string            `json:"category"`
	ResultsCount int               `json:"results_count"`
	Products     []*ProductSummary `json:"products"`
}

// ProductDetail get_product_details 结果
type ProductDetail struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Rating      float64  `json:"rating"`
	InStock     bool     `json:"in_stock"`
	Material    string   `json:"material"`
	Tags        []string `json:"tags"`
}

// CategoryInfo 分类及商品数
type CategoryInfo struct {
	Name         string `json:"name"`
	ProductCount int64  `json:"product_count"`
	DisplayName  string `json:"display_name"`
	Description  string `json:"description"`
}

// CategoryList list_categories 结果
type CategoryList struct {
	Categories      []*CategoryInfo `json:"categories"`
	TotalCategories int             `json:"total_categories"`
}

// CartUpdate add_to_cart、remove_from_cart、clear_cart 结果
type CartUpdate struct {
	ProductName    string `json:"product_name,omitempty"`
	Quantity       int    `json:"quantity,omitempty"`
	CartTotalItems int64  `json:"cart_total_items"`
	Removed        int64  `json:"removed,omitempty"`
}

// CartLine 购物车行
type CartLine struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Total       float64 `json:"total"`
}

// CartView view_cart 结果，TotalItems 为数量之和
type CartView struct {
	CartItems  []*CartLine `json:"cart_items"`
	TotalItems int         `json:"total_items"`
	TotalPrice float64     `json:"total_price"`
	Currency   string      `json:"currency"`
}

// OrderLine 订单明细
type OrderLine struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// OrderDetail get_order_status 结果
type OrderDetail struct {
	OrderID           string       `json:"order_id"`
	Status            string       `json:"status"`
	TotalAmount       float64      `json:"total_amount"`
	TrackingID        string       `json:"tracking_id"`
	EstimatedDelivery string       `json:"estimated_delivery"`
	OrderDate         string       `json:"order_date"`
	Items             []*OrderLine `json:"items"`
}

// OrderSummary 订单列表项
type OrderSummary struct {
	OrderID    string  `json:"order_id"`
	Status     string  `json:"status"`
	TotalPrice float64 `json:"total_price"`
	OrderDate  string  `json:"order_date"`
	ItemsCount int     `json:"items_count"`
}

// OrderList list_orders 结果
type OrderList struct {
	Orders      []*OrderSummary `json:"orders"`
	TotalOrders int             `json:"total_orders"`
}

// OrderCreated create_order 结果
type OrderCreated struct {
	OrderID           string  `json:"order_id"`
	TrackingID        string  `json:"tracking_id"`
	TotalAmount       float64 `json:"total_amount"`
	EstimatedDelivery string  `json:"estimated_delivery"`
	Status            string  `json:"status"`
	PaymentMethod     string  `json:"payment_method"`
}

// TrackingUpdate 物流节点
type TrackingUpdate struct {
	Status   string `json:"status"`
	Date     string `json:"date"`
	Location string `json:"location"`
}

// Tracking track_order 结果
type Tracking struct {
	OrderID           string            `json:"order_id"`
	TrackingID        string            `json:"tracking_id"`
	CurrentStatus     string            `json:"current_status"`
	EstimatedDelivery string            `json:"estimated_delivery"`
	TrackingUpdates   []*TrackingUpdate `json:"tracking_updates"`
}

// ========== 构造 ==========

// Failure 工具内部错误的结果
func Failure(tool string, err error) *Result {
	return &Result{Kind: KindFailure, Tool: tool, Error: err.Error(), internal: true}
}

// NotFound 业务上的未找到，通过 Message 告知用户
func NotFound(tool, format string, args ...any) *Result {
	return &Result{Kind: KindFailure, Tool: tool, Message: fmt.Sprintf(format, args...)}
}

// Internal 是否为执行错误，如数据库异常、panic 或工具未注册
func (r *Result) Internal() bool {
	return r.internal
}

// Reason 失败原因，优先 Message
func (r *Result) Reason() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Error
}

// MarshalJSON 展开为 {success, tool, message, error, ...载荷字段}
// 商品详情和订单以 product、order 键嵌套
func (r *Result) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"success": r.Success,
		"tool":    r.Tool,
	}
	if r.Message != "" {
		out["message"] = r.Message
	}
	if r.Error != "" {
		out["error"] = r.Error
	}

	var flat any
	switch r.Kind {
	case KindProductDetail:
		out["product"] = r.ProductDetail
	case KindOrderStatus:
		out["order"] = r.OrderStatus
	case KindOrderCreated:
		out["order"] = r.OrderCreated
	case KindProductList:
		flat = r.ProductList
	case KindCategoryList:
		flat = r.CategoryList
	case KindCartUpdate:
		flat = r.CartUpdate
	case KindCart:
		flat = r.Cart
	case KindOrderList:
		flat = r.OrderList
	case KindTracking:
		flat = r.Tracking
	case KindFailure:
	}

	if flat != nil {
		b, err := json.Marshal(flat)
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(b, &fields); err != nil {
			return nil, err
		}
		for k, v := range fields {
			out[k] = v
		}
	}
	return json.Marshal(out)
}
