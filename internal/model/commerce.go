package model

import (
	"time"

	"gorm.io/datatypes"
)

// Category 商品分类
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	DisplayName string    `gorm:"size:200;not null" json:"display_name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

// Product 商品
type Product struct {
	ID          uint                        `gorm:"primaryKey" json:"-"`
	SKU         string                      `gorm:"uniqueIndex;size:50;not null" json:"product_id"`
	Name        string                      `gorm:"index;size:255;not null" json:"name"`
	Description string                      `gorm:"type:text" json:"description"`
	Price       float64                     `gorm:"not null" json:"price"`
	Currency    string                      `gorm:"size:10;default:INR" json:"currency"`
	Stock       int                         `gorm:"default:0" json:"stock"`
	InStock     bool                        `gorm:"default:true" json:"in_stock"`
	Material    string                      `gorm:"size:100" json:"material"`
	Rating      float64                     `gorm:"default:0" json:"rating"`
	ImageURL    string                      `gorm:"size:500" json:"image_url"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	CategoryID  uint                        `gorm:"index" json:"-"`
	Category    *Category                   `gorm:"foreignKey:CategoryID" json:"-"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime" json:"-"`
	UpdatedAt   time.Time                   `gorm:"autoUpdateTime" json:"-"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// CategoryName 分类名称，未加载时为空
func (p *Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// CartItem 购物车条目，(user_id, product_id) 唯一
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"uniqueIndex:idx_cart_user_product;size:64;not null" json:"user_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_user_product;not null" json:"-"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusFailed    OrderStatus = "Failed"
)

// CanTransition 状态只能单向流转，Failed 仅能通过重新支付回到 Pending
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return to == OrderStatusConfirmed || to == OrderStatusFailed
	case OrderStatusFailed:
		return to == OrderStatusPending
	default:
		return false
	}
}

// Order 订单
type Order struct {
	ID                uint        `gorm:"primaryKey" json:"-"`
	OrderNumber       string      `gorm:"uniqueIndex;size:20;not null" json:"order_id"`
	UserID            string      `gorm:"index;size:64;not null" json:"user_id"`
	Status            OrderStatus `gorm:"size:20;not null" json:"status"`
	TotalAmount       float64     `gorm:"not null" json:"total_amount"`
	Currency          string      `gorm:"size:10;default:INR" json:"currency"`
	TrackingID        string      `gorm:"uniqueIndex;size:20" json:"tracking_id"`
	EstimatedDelivery string      `gorm:"size:20" json:"estimated_delivery"`
	PaymentMethod     string      `gorm:"size:50" json:"payment_method"`
	Items             []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt         time.Time   `gorm:"index" json:"order_date"`
	UpdatedAt         time.Time   `gorm:"autoUpdateTime" json:"-"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单明细，价格在下单时固化
type OrderItem struct {
	ID          uint    `gorm:"primaryKey" json:"-"`
	OrderID     uint    `gorm:"index;not null" json:"-"`
	ProductID   uint    `gorm:"not null" json:"-"`
	SKU         string  `gorm:"size:50" json:"product_id"`
	ProductName string  `gorm:"size:255" json:"product_name"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal 行小计
func (i *OrderItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}
