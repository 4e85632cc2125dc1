package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/shop-assistant/internal/model"
	"github.com/ashwinyue/shop-assistant/internal/repository"
	"github.com/ashwinyue/shop-assistant/internal/service/catalog"
)

// ShopHandler 商品、购物车与订单的 REST 接口
// 与对话共用同一套工具，结果格式一致
type ShopHandler struct {
	catalog *catalog.Catalog
	orders  repository.OrderRepository
}

// NewShopHandler 创建商城处理器
func NewShopHandler(c *catalog.Catalog, orders repository.OrderRepository) *ShopHandler {
	return &ShopHandler{catalog: c, orders: orders}
}

// AddToCartRequest 加购请求
type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	PaymentMethod string `json:"payment_method"`
}

func (h *ShopHandler) invoke(c *gin.Context, tool string, params catalog.Params) {
	ToolResult(c, h.catalog.Invoke(c.Request.Context(), tool, getUserID(c), params))
}

// SearchProducts 商品检索
// GET /api/v1/products?q=&category=&min_price=&max_price=&limit=
func (h *ShopHandler) SearchProducts(c *gin.Context) {
	params := catalog.Params{}
	for key, query := range map[string]string{
		"query":     "q",
		"category":  "category",
		"min_price": "min_price",
		"max_price": "max_price",
		"limit":     "limit",
	} {
		if v := c.Query(query); v != "" {
			params[key] = v
		}
	}
	h.invoke(c, "search_products", params)
}

// GetProduct 商品详情，sku 也可以是商品名称
// GET /api/v1/products/:sku
func (h *ShopHandler) GetProduct(c *gin.Context) {
	h.invoke(c, "get_product_details", catalog.Params{"product_id": c.Param("sku")})
}

// ListCategories 分类列表
// GET /api/v1/categories
func (h *ShopHandler) ListCategories(c *gin.Context) {
	h.invoke(c, "list_categories", nil)
}

// ViewCart 查看购物车
// GET /api/v1/cart
func (h *ShopHandler) ViewCart(c *gin.Context) {
	h.invoke(c, "view_cart", nil)
}

// AddToCart 加入购物车
// POST /api/v1/cart
func (h *ShopHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid parameters: "+err.Error())
		return
	}
	params := catalog.Params{"product_id": req.ProductID}
	if req.Quantity != 0 {
		params["quantity"] = req.Quantity
	}
	h.invoke(c, "add_to_cart", params)
}

// RemoveFromCart 移除购物车条目
// DELETE /api/v1/cart/:sku
func (h *ShopHandler) RemoveFromCart(c *gin.Context) {
	h.invoke(c, "remove_from_cart", catalog.Params{"product_id": c.Param("sku")})
}

// ClearCart 清空购物车
// DELETE /api/v1/cart
func (h *ShopHandler) ClearCart(c *gin.Context) {
	h.invoke(c, "clear_cart", nil)
}

// ListOrders 订单列表
// GET /api/v1/orders?limit=
func (h *ShopHandler) ListOrders(c *gin.Context) {
	params := catalog.Params{}
	if v := c.Query("limit"); v != "" {
		params["limit"] = v
	}
	h.invoke(c, "list_orders", params)
}

// CreateOrder 用购物车下单
// POST /api/v1/orders
func (h *ShopHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "Invalid parameters: "+err.Error())
			return
		}
	}
	params := catalog.Params{}
	if req.PaymentMethod != "" {
		params["payment_method"] = req.PaymentMethod
	}
	h.invoke(c, "create_order", params)
}

// GetOrder 订单详情
// GET /api/v1/orders/:order_number
func (h *ShopHandler) GetOrder(c *gin.Context) {
	h.invoke(c, "get_order_status", catalog.Params{"order_id": c.Param("order_number")})
}

// TrackOrder 物流轨迹
// GET /api/v1/orders/:order_number/track
func (h *ShopHandler) TrackOrder(c *gin.Context) {
	h.invoke(c, "track_order", catalog.Params{"order_id": c.Param("order_number")})
}

// RetryPayment 支付失败的订单重新进入待支付
// POST /api/v1/orders/:order_number/retry-payment
func (h *ShopHandler) RetryPayment(c *gin.Context) {
	number := strings.ToUpper(strings.TrimSpace(c.Param("order_number")))
	order, err := h.orders.UpdateStatus(c.Request.Context(), getUserID(c), number, model.OrderStatusPending)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{
		"order_id": order.OrderNumber,
		"status":   order.Status,
		"message":  "Payment retry initiated for order " + order.OrderNumber,
	})
}
