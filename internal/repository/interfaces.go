// Package repository 定义数据访问接口
// 接口抽象使依赖注入和单元测试成为可能
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ashwinyue/shop-assistant/internal/model"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrEmptyCart 购物车为空，无法下单
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidTransition 订单状态不允许此流转
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// ========== ProductRepository 接口 ==========

// ProductFilter 商品检索条件
// Terms 之间为 AND，每个词匹配名称、描述、材质或分类之一
type ProductFilter struct {
	Terms       []string
	Category    string
	MinPrice    *float64
	MaxPrice    *float64
	InStockOnly bool
	Limit       int
}

// CategoryCount 分类及其商品数
type CategoryCount struct {
	model.Category
	ProductCount int64 `json:"product_count"`
}

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	Search(ctx context.Context, filter ProductFilter) ([]*model.Product, error)
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)
	FindByNameSubstring(ctx context.Context, name string) ([]*model.Product, error)
	ListAll(ctx context.Context) ([]*model.Product, error)
	ListCategories(ctx context.Context) ([]*CategoryCount, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, c *model.Category) error
	Create(ctx context.Context, p *model.Product) error
	// SaveCategory 按名称新增或更新，返回是否新建
	SaveCategory(ctx context.Context, c *model.Category) (bool, error)
	// SaveProduct 按 SKU 新增或更新，返回是否新建
	SaveProduct(ctx context.Context, p *model.Product) (bool, error)
}

// ========== CartRepository 接口 ==========

// CartRepository 购物车数据访问接口
type CartRepository interface {
	// AddItem 数量累加，不存在时插入；返回累加后的条目和是否新建
	AddItem(ctx context.Context, userID string, productID uint, quantity int) (*model.CartItem, bool, error)
	ListItems(ctx context.Context, userID string) ([]*model.CartItem, error)
	RemoveItem(ctx context.Context, userID string, productID uint) (bool, error)
	Clear(ctx context.Context, userID string) (int64, error)
	CountLines(ctx context.Context, userID string) (int64, error)
}

// ========== OrderRepository 接口 ==========

// OrderBuilder 根据购物车条目构造订单，在下单事务内调用
type OrderBuilder func(items []*model.CartItem) (*model.Order, error)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	// PlaceOrder 读取购物车、写入订单及明细并清空购物车，全部在一个事务内完成
	PlaceOrder(ctx context.Context, userID string, build OrderBuilder) (*model.Order, error)
	GetByNumber(ctx context.Context, userID, orderNumber string) (*model.Order, error)
	GetByTracking(ctx context.Context, userID, trackingID string) (*model.Order, error)
	List(ctx context.Context, userID string, limit int) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, userID, orderNumber string, to model.OrderStatus) (*model.Order, error)
}

// 确保实现了接口
var (
	_ ProductRepository = (*productRepository)(nil)
	_ CartRepository    = (*cartRepository)(nil)
	_ OrderRepository   = (*orderRepository)(nil)
)

// translate 将 gorm 的记录不存在错误转换为 ErrNotFound
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
