package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/ashwinyue/shop-assistant/internal/model"
	"github.com/ashwinyue/shop-assistant/internal/repository"
)

const (
	dateLayout     = "2006-01-02"
	timelineLayout = "2006-01-02 15:04"
)

var bareDigits = regexp.MustCompile(`^\d+$`)

// normalizeOrderID 纯数字补全为 ORD 前缀，其余转大写
func normalizeOrderID(id string) string {
	id = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(id), "#")))
	if bareDigits.MatchString(id) {
		return "ORD" + id
	}
	return id
}

func orderDetail(o *model.Order) *OrderDetail {
	d := &OrderDetail{
		OrderID:           o.OrderNumber,
		Status:            string(o.Status),
		TotalAmount:       o.TotalAmount,
		TrackingID:        o.TrackingID,
		EstimatedDelivery: o.EstimatedDelivery,
		OrderDate:         o.CreatedAt.Format(dateLayout),
		Items:             make([]*OrderLine, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		d.Items = append(d.Items, &OrderLine{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.UnitPrice,
		})
	}
	return d
}

// ========== get_order_status ==========

type orderStatusTool struct {
	orders repository.OrderRepository
}

func (t *orderStatusTool) Name() string { return "get_order_status" }

func (t *orderStatusTool) Description() string {
	return "Get the current status and details of an order by order_id."
}

func (t *orderStatusTool) Params() map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{
		"user_id":  userParam,
		"order_id": {Type: schema.String, Desc: "Order number, e.g. ORD12345", Required: true},
	}
}

func (t *orderStatusTool) Run(ctx context.Context, userID string, params Params) (*Result, error) {
	id := normalizeOrderID(params.String("order_id"))
	o, err := t.orders.GetByNumber(ctx, userID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound(t.Name(), "Order %s not found", id), nil
	}
	if err != nil {
		return nil, err
	}
	return &Result{Kind: KindOrderStatus, Success: true, OrderStatus: orderDetail(o)}, nil
}

// ========== list_orders ==========

type listOrdersTool struct {
	orders repository.OrderRepository
}

func (t *listOrdersTool) Name() string { return "list_orders" }

func (t *listOrdersTool) Description() string {
	return "Get a list of all orders placed by the user, sorted by date."
}

func (t *listOrdersTool) Params() map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{
		"user_id": userParam,
		"limit":   {Type: schema.Integer, Desc: "Maximum number of orders, default 10"},
	}
}

func (t *listOrdersTool) Run(ctx context.Context, userID string, params Params) (*Result, error) {
	orders, err := t.orders.List(ctx, userID, params.Int("limit", 10))
	if err != nil {
		return nil, err
	}

	list := &OrderList{Orders: make([]*OrderSummary, 0, len(orders))}
	for _, o := range orders {
		list.Orders = append(list.Orders, &OrderSummary{
			OrderID:    o.OrderNumber,
			Status:     string(o.Status),
			TotalPrice: o.TotalAmount,
			OrderDate:  o.CreatedAt.Format(time.RFC3339),
			ItemsCount: len(o.Items),
		})
	}
	list.TotalOrders = len(list.Orders)

	res := &Result{Kind: KindOrderList, Success: true, OrderList: list}
	if list.TotalOrders == 0 {
		res.Message = "No orders found"
	}
	return res, nil
}

// ========== create_order ==========

type createOrderTool struct {
	orders repository.OrderRepository
	now    func() time.Time
	intN   func(n int) int
}

func (t *createOrderTool) Name() string { return "create_order" }

func (t *createOrderTool) Description() string {
	return "Create a new order from the user's cart items. This simulates the checkout process."
}

func (t *createOrderTool) Params() map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{
		"user_id":        userParam,
		"payment_method": {Type: schema.String, Desc: "Payment method: COD, UPI, Card. Default COD"},
	}
}

func (t *createOrderTool) Run(ctx context.Context, userID string, params Params) (*Result, error) {
	method := strings.ToUpper(params.String("payment_method"))
	if method == "" {
		method = "COD"
	}

	order, err := t.orders.PlaceOrder(ctx, userID, func(items []*model.CartItem) (*model.Order, error) {
		return t.build(items, method)
	})
	if errors.Is(err, repository.ErrEmptyCart) {
		return NotFound(t.Name(), "Cannot create order with empty cart"), nil
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Kind:    KindOrderCreated,
		Success: true,
		Message: "Order placed successfully!",
		OrderCreated: &OrderCreated{
			OrderID:           order.OrderNumber,
			TrackingID:        order.TrackingID,
			TotalAmount:       order.TotalAmount,
			EstimatedDelivery: order.EstimatedDelivery,
			Status:            string(order.Status),
			PaymentMethod:     order.PaymentMethod,
		},
	}, nil
}

// build 在下单事务内调用，每次重试都重新生成订单号和物流号
func (t *createOrderTool) build(items []*model.CartItem, method string) (*model.Order, error) {
	now := t.now()
	// 货到付款直接确认，在线支付等待回调
	status := model.OrderStatusPending
	if method == "COD" {
		status = model.OrderStatusConfirmed
	}

	order := &model.Order{
		OrderNumber:       fmt.Sprintf("ORD%d", 10000+t.intN(90000)),
		Status:            status,
		Currency:          "INR",
		TrackingID:        fmt.Sprintf("TRK%d", 100000+t.intN(900000)),
		EstimatedDelivery: now.AddDate(0, 0, 5+t.intN(6)).Format(dateLayout),
		PaymentMethod:     method,
		CreatedAt:         now,
	}
	for _, it := range items {
		if it.Product == nil {
			return nil, fmt.Errorf("cart item %d has no product", it.ID)
		}
		line := model.OrderItem{
			ProductID:   it.ProductID,
			SKU:         it.Product.SKU,
			ProductName: it.Product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.Product.Price,
		}
		order.TotalAmount += line.LineTotal()
		order.Items = append(order.Items, line)
	}
	return order, nil
}

// ========== track_order ==========

type trackOrderTool struct {
	orders    repository.OrderRepository
	warehouse string
}

func (t *trackOrderTool) Name() string { return "track_order" }

func (t *trackOrderTool) Description() string {
	return "Track the delivery status of an order using tracking_id or order_id."
}

func (t *trackOrderTool) Params() map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{
		"user_id":     userParam,
		"order_id":    {Type: schema.String, Desc: "Order number, e.g. ORD12345"},
		"tracking_id": {Type: schema.String, Desc: "Tracking ID, e.g. TRK123456"},
	}
}

func (t *trackOrderTool) Run(ctx context.Context, userID string, params Params) (*Result, error) {
	var (
		o   *model.Order
		err error
	)
	switch {
	case params.Has("order_id"):
		o, err = t.orders.GetByNumber(ctx, userID, normalizeOrderID(params.String("order_id")))
	case params.Has("tracking_id"):
		o, err = t.orders.GetByTracking(ctx, userID, strings.ToUpper(params.String("tracking_id")))
	default:
		return NotFound(t.Name(), "Please provide order_id or tracking_id"), nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound(t.Name(), "Order not found"), nil
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Kind:    KindTracking,
		Success: true,
		Tracking: &Tracking{
			OrderID:           o.OrderNumber,
			TrackingID:        o.TrackingID,
			CurrentStatus:     string(o.Status),
			EstimatedDelivery: o.EstimatedDelivery,
			TrackingUpdates:   Timeline(o.CreatedAt, t.warehouse),
		},
	}, nil
}

// Timeline 由下单时间推算的固定三段物流轨迹，与实际订单状态无关
func Timeline(placed time.Time, warehouse string) []*TrackingUpdate {
	return []*TrackingUpdate{
		{Status: "Order Confirmed", Date: placed.Format(timelineLayout), Location: warehouse},
		{Status: "Packed", Date: placed.AddDate(0, 0, 1).Format(timelineLayout), Location: warehouse},
		{Status: "Shipped", Date: placed.AddDate(0, 0, 2).Format(timelineLayout), Location: "In Transit"},
	}
}
