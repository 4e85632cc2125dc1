// Package testutil 提供测试辅助工具
package testutil

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/ashwinyue/shop-assistant/internal/database"
	"github.com/ashwinyue/shop-assistant/internal/model"
)

var dbSeq atomic.Int64

// NewTestDB 创建独立的内存 SQLite 数据库并完成迁移
func NewTestDB(t testing.TB) *database.DB {
	t.Helper()

	// 每个测试独享一个命名的共享缓存库
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_foreign_keys=1", dbSeq.Add(1))
	db, err := database.Open(sqlite.Open(dsn), false)
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewFileTestDB 创建多连接的 SQLite 文件库，用于并发测试
// 事务以 BEGIN IMMEDIATE 开始，写入按库级锁串行
func NewFileTestDB(t testing.TB, maxConns int) *database.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shop.db")
	dsn := "file:" + path + "?_busy_timeout=10000&_txlock=immediate&_journal_mode=WAL&_foreign_keys=1"
	db, err := database.Open(sqlite.Open(dsn), false)
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(maxConns)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SeedCatalog 写入一组固定的分类和商品
func SeedCatalog(t testing.TB, db *database.DB) {
	t.Helper()

	categories := []*model.Category{
		{Name: "womens_clothing", DisplayName: "Women's Clothing", Description: "Kurtis, sarees and ethnic wear"},
		{Name: "candles", DisplayName: "Candles", Description: "Handmade scented candles"},
		{Name: "soaps", DisplayName: "Soaps", Description: "Natural handmade soaps"},
	}
	for _, c := range categories {
		require.NoError(t, db.Create(c).Error)
	}

	products := []*model.Product{
		{SKU: "WC001", Name: "Elegant Cotton Kurti", Description: "Comfortable cotton kurti with block print, perfect for daily wear", Price: 1499, Currency: "INR", Stock: 20, InStock: true, Material: "Cotton", Rating: 4.5, CategoryID: categories[0].ID},
		{SKU: "WC002", Name: "Silk Saree", Description: "Banarasi silk saree with zari border", Price: 4999, Currency: "INR", Stock: 5, InStock: true, Material: "Silk", Rating: 4.8, CategoryID: categories[0].ID},
		{SKU: "CN001", Name: "Lavender Soy Candle", Description: "Hand poured soy wax candle with lavender essential oil", Price: 599, Currency: "INR", Stock: 30, InStock: true, Material: "Soy Wax", Rating: 4.6, CategoryID: categories[1].ID},
		{SKU: "CN002", Name: "Vanilla Jar Candle", Description: "Vanilla scented candle in a glass jar", Price: 449, Currency: "INR", Stock: 0, InStock: false, Material: "Paraffin", Rating: 4.1, CategoryID: categories[1].ID},
		{SKU: "SP001", Name: "Neem Tulsi Soap", Description: "Cold processed soap with neem and tulsi", Price: 199, Currency: "INR", Stock: 50, InStock: true, Material: "Herbal", Rating: 4.3, CategoryID: categories[2].ID},
	}
	for _, p := range products {
		require.NoError(t, db.Create(p).Error)
	}

	// gorm 对零值 bool 使用默认值 true，显式更新缺货商品
	require.NoError(t, db.Model(&model.Product{}).Where("sku = ?", "CN002").Update("in_stock", false).Error)
}
