package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/ashwinyue/shop-assistant/internal/model"
	"github.com/ashwinyue/shop-assistant/internal/repository"
)

// ProductResolver 将 SKU 或自由文本商品名解析为商品
type ProductResolver struct {
	products repository.ProductRepository
}

// NewProductResolver 创建商品解析器
func NewProductResolver(products repository.ProductRepository) *ProductResolver {
	return &ProductResolver{products: products}
}

// Resolve 先按 SKU 精确匹配，再按名称子串匹配
// 名称命中多个时取 SKU 字典序最小者，都未命中返回 repository.ErrNotFound
func (r *ProductResolver) Resolve(ctx context.Context, ref string) (*model.Product, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, repository.ErrNotFound
	}

	p, err := r.products.GetBySKU(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	matches, err := r.products.FindByNameSubstring(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, repository.ErrNotFound
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.SKU < best.SKU {
			best = m
		}
	}
	return best, nil
}
