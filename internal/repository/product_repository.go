package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ashwinyue/shop-assistant/internal/model"
)

const defaultSearchLimit = 5

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Search 按条件检索商品，按评分降序、SKU 升序
func (r *productRepository) Search(ctx context.Context, f ProductFilter) ([]*model.Product, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Preload("Category")

	if f.InStockOnly {
		q = q.Where("products.in_stock = ?", true)
	}
	for _, term := range f.Terms {
		pat := likePattern(term)
		q = q.Where(
			"(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(products.material) LIKE ? OR LOWER(categories.name) LIKE ? OR LOWER(categories.display_name) LIKE ?)",
			pat, pat, pat, pat, pat,
		)
	}
	if f.Category != "" {
		pat := likePattern(strings.ReplaceAll(f.Category, " ", "_"))
		alt := likePattern(f.Category)
		q = q.Where("(LOWER(categories.name) LIKE ? OR LOWER(categories.display_name) LIKE ?)", pat, alt)
	}
	if f.MinPrice != nil {
		q = q.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.price <= ?", *f.MaxPrice)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var products []*model.Product
	err := q.Order("products.rating DESC").Order("products.sku ASC").Limit(limit).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// GetBySKU 按 SKU 获取商品，大小写不敏感
func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Category").
		Where("UPPER(sku) = ?", strings.ToUpper(strings.TrimSpace(sku))).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// FindByNameSubstring 名称包含子串的商品，按 SKU 升序
func (r *productRepository) FindByNameSubstring(ctx context.Context, name string) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).Preload("Category").
		Where("LOWER(name) LIKE ?", likePattern(name)).
		Order("sku ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find products by name: %w", err)
	}
	return products, nil
}

// ListAll 全部商品
func (r *productRepository) ListAll(ctx context.Context) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).Preload("Category").Order("sku ASC").Find(&products).Error
	return products, err
}

// ListCategories 分类列表及实时商品数
func (r *productRepository) ListCategories(ctx context.Context) ([]*CategoryCount, error) {
	var rows []*CategoryCount
	err := r.db.WithContext(ctx).
		Model(&model.Category{}).
		Select("categories.id, categories.name, categories.display_name, categories.description, categories.created_at, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Group("categories.id, categories.name, categories.display_name, categories.description, categories.created_at").
		Order("categories.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return rows, nil
}

// GetCategoryByName 按名称获取分类
func (r *productRepository) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// CreateCategory 创建分类
func (r *productRepository) CreateCategory(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// Create 创建商品
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// SaveCategory 按名称新增或更新分类
func (r *productRepository) SaveCategory(ctx context.Context, c *model.Category) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Category
		err := tx.Where("name = ?", c.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			return tx.Create(c).Error
		}
		if err != nil {
			return err
		}
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		return tx.Model(&existing).Select("display_name", "description").Updates(c).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to save category %s: %w", c.Name, err)
	}
	return created, nil
}

// SaveProduct 按 SKU 新增或更新商品，零值字段同样写入
func (r *productRepository) SaveProduct(ctx context.Context, p *model.Product) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Product
		err := tx.Where("sku = ?", p.SKU).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created = true
			if err := tx.Create(p).Error; err != nil {
				return err
			}
			// 零值 bool 会被默认值覆盖
			return tx.Model(p).Update("in_stock", p.InStock).Error
		}
		if err != nil {
			return err
		}
		p.ID = existing.ID
		return tx.Model(&existing).
			Select("name", "description", "price", "currency", "stock", "in_stock",
				"material", "rating", "image_url", "tags", "category_id").
			Updates(p).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to save product %s: %w", p.SKU, err)
	}
	return created, nil
}

// likePattern 构造小写的包含匹配模式，去掉用户输入中的 %
func likePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "%", "")
	return "%" + s + "%"
}
