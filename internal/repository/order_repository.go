package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ashwinyue/shop-assistant/internal/model"
)

// 订单号或物流号冲突时的最大尝试次数
const placeOrderAttempts = 3

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// PlaceOrder 在单个事务内读取购物车、创建订单并清空购物车
// 任一步失败则整体回滚，不会留下订单记录
// 读取时锁定购物车行，只删除已计入订单的行，事务期间新加入的商品留在购物车
func (r *orderRepository) PlaceOrder(ctx context.Context, userID string, build OrderBuilder) (*model.Order, error) {
	var lastErr error
	for attempt := 0; attempt < placeOrderAttempts; attempt++ {
		order, err := r.placeOnce(ctx, userID, build)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to allocate order number: %w", lastErr)
}

func (r *orderRepository) placeOnce(ctx context.Context, userID string, build OrderBuilder) (*model.Order, error) {
	var order *model.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []*model.CartItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Product").
			Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}
		ids := make([]uint, len(items))
		for i, it := range items {
			ids[i] = it.ID
		}

		o, err := build(items)
		if err != nil {
			return err
		}
		o.UserID = userID
		if err := tx.Create(o).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		if err := tx.Delete(&model.CartItem{}, ids).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetByNumber 按订单号获取用户订单
func (r *orderRepository) GetByNumber(ctx context.Context, userID, orderNumber string) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("order_number = ? AND user_id = ?", orderNumber, userID).
		First(&o).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

// GetByTracking 按物流号获取用户订单
func (r *orderRepository) GetByTracking(ctx context.Context, userID, trackingID string) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("tracking_id = ? AND user_id = ?", trackingID, userID).
		First(&o).Error
	if err != nil {
		return nil, translate(err)
	}
	return &o, nil
}

// List 用户订单，最新在前
func (r *orderRepository) List(ctx context.Context, userID string, limit int) ([]*model.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	var orders []*model.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus 校验状态流转后更新
// 更新带上读取时的状态作为条件，并发流转只有一个生效
func (r *orderRepository) UpdateStatus(ctx context.Context, userID, orderNumber string, to model.OrderStatus) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").
			Where("order_number = ? AND user_id = ?", orderNumber, userID).
			First(&order).Error; err != nil {
			return translate(err)
		}
		if !order.Status.CanTransition(to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, to)
		}
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Update("status", to)
		if res.Error != nil {
			return fmt.Errorf("failed to update order status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s changed concurrently", ErrInvalidTransition, order.OrderNumber)
		}
		order.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
