// Package seed 初始化示例商品目录和店铺知识库
package seed

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ashwinyue/shop-assistant/internal/model"
	"github.com/ashwinyue/shop-assistant/internal/repository"
	"github.com/ashwinyue/shop-assistant/internal/service/ingest"
)

// Stats 初始化统计
type Stats struct {
	Categories      int `json:"categories"`
	Products        int `json:"products"`
	ProductsCreated int `json:"products_created"`
	Documents       int `json:"documents"`
	Chunks          int `json:"chunks"`
}

// Seeder 初始化器，Ingester 为空时只写商品目录
type Seeder struct {
	products repository.ProductRepository
	ingester *ingest.Ingester
	log      *zap.Logger
}

// New 创建初始化器
func New(products repository.ProductRepository, ingester *ingest.Ingester, log *zap.Logger) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{products: products, ingester: ingester, log: log}
}

// Run 写入商品目录并索引知识库，可重复执行
func (s *Seeder) Run(ctx context.Context) (*Stats, error) {
	stats, err := s.SeedCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if s.ingester == nil {
		return stats, nil
	}
	docs, chunks, err := s.IndexKnowledge(ctx)
	if err != nil {
		return nil, err
	}
	stats.Documents, stats.Chunks = docs, chunks
	return stats, nil
}

// SeedCatalog 按名称和 SKU 幂等写入分类与商品
func (s *Seeder) SeedCatalog(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	ids := make(map[string]uint, len(categories))

	for _, c := range categories {
		cat := &model.Category{Name: c.Name, DisplayName: c.DisplayName, Description: c.Description}
		if _, err := s.products.SaveCategory(ctx, cat); err != nil {
			return nil, err
		}
		ids[c.Name] = cat.ID
		stats.Categories++
	}

	for _, ps := range products {
		p := ps.Product
		catID, ok := ids[ps.Category]
		if !ok {
			return nil, fmt.Errorf("unknown category %s for %s", ps.Category, p.SKU)
		}
		p.CategoryID = catID
		created, err := s.products.SaveProduct(ctx, &p)
		if err != nil {
			return nil, err
		}
		stats.Products++
		if created {
			stats.ProductsCreated++
		}
	}

	s.log.Info("catalog seeded",
		zap.Int("categories", stats.Categories),
		zap.Int("products", stats.Products),
		zap.Int("created", stats.ProductsCreated))
	return stats, nil
}

// IndexKnowledge 将店铺知识和商品介绍写入文档存储
// 每个商品一个来源，重复执行会替换旧分块
func (s *Seeder) IndexKnowledge(ctx context.Context) (docs, chunks int, err error) {
	if s.ingester == nil {
		return 0, 0, fmt.Errorf("seed: ingester not configured")
	}

	for _, k := range Knowledge {
		res, err := s.ingester.IngestText(ctx, k.Source, k.Title+"\n\n"+k.Content, map[string]any{"title": k.Title})
		if err != nil {
			return docs, chunks, fmt.Errorf("failed to index %s: %w", k.Source, err)
		}
		docs++
		chunks += res.Chunks
	}

	all, err := s.products.ListAll(ctx)
	if err != nil {
		return docs, chunks, err
	}
	for _, p := range all {
		res, err := s.ingester.IngestText(ctx, "catalog/"+p.SKU, ProductText(p), map[string]any{"title": p.Name})
		if err != nil {
			return docs, chunks, fmt.Errorf("failed to index %s: %w", p.SKU, err)
		}
		docs++
		chunks += res.Chunks
	}

	s.log.Info("knowledge indexed", zap.Int("documents", docs), zap.Int("chunks", chunks))
	return docs, chunks, nil
}

// ProductText 商品的检索文本
func ProductText(p *model.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", p.Name, p.SKU)
	if p.Category != nil {
		fmt.Fprintf(&b, " in %s", p.Category.DisplayName)
	}
	fmt.Fprintf(&b, ". Price: ₹%.0f.", p.Price)
	if p.Material != "" {
		fmt.Fprintf(&b, " Material: %s.", p.Material)
	}
	if p.Description != "" {
		fmt.Fprintf(&b, " %s.", strings.TrimSuffix(p.Description, "."))
	}
	if len(p.Tags) > 0 {
		fmt.Fprintf(&b, " Tags: %s.", strings.Join(p.Tags, ", "))
	}
	if !p.InStock {
		b.WriteString(" Currently out of stock.")
	}
	return b.String()
}
