package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ashwinyue/shop-assistant/internal/model"
)

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// AddItem 先以单条 UPDATE 累加数量，无记录时插入
// 并发插入触发唯一约束时重试累加
func (r *cartRepository) AddItem(ctx context.Context, userID string, productID uint, quantity int) (*model.CartItem, bool, error) {
	if quantity < 1 {
		return nil, false, fmt.Errorf("invalid quantity %d", quantity)
	}
	db := r.db.WithContext(ctx)

	created := false
	for attempt := 0; ; attempt++ {
		updated, err := r.increment(db, userID, productID, quantity)
		if err != nil {
			return nil, false, err
		}
		if updated {
			break
		}
		item := &model.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
		err = db.Create(item).Error
		if err == nil {
			created = true
			break
		}
		// 并发插入撞上唯一约束时回到累加；该行随后又被下单删除时再次插入
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt >= 2 {
			return nil, false, fmt.Errorf("failed to insert cart item: %w", err)
		}
	}

	var item model.CartItem
	err := db.Preload("Product").
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, false, translate(err)
	}
	return &item, created, nil
}

func (r *cartRepository) increment(db *gorm.DB, userID string, productID uint, quantity int) (bool, error) {
	res := db.Model(&model.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", gorm.Expr("quantity + ?", quantity))
	if res.Error != nil {
		return false, fmt.Errorf("failed to increment cart item: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListItems 用户购物车条目，按加入顺序
func (r *cartRepository) ListItems(ctx context.Context, userID string) ([]*model.CartItem, error) {
	var items []*model.CartItem
	err := r.db.WithContext(ctx).Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	return items, nil
}

// RemoveItem 删除一行，返回是否存在
func (r *cartRepository) RemoveItem(ctx context.Context, userID string, productID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.CartItem{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Clear 清空购物车，返回删除的行数
func (r *cartRepository) Clear(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CountLines 购物车行数
func (r *cartRepository) CountLines(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.CartItem{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
