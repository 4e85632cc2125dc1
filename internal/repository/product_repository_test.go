package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/shop-assistant/internal/model"
	"github.com/ashwinyue/shop-assistant/internal/testutil"
)

func skus(products []*model.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.SKU
	}
	return out
}

func floatPtr(v float64) *float64 { return &v }

func TestProductRepository_Search(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedCatalog(t, db)
	repo := NewProductRepository(db.DB)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter ProductFilter
		want   []string
	}{
		{
			name:   "no terms returns in-stock by rating",
			filter: ProductFilter{InStockOnly: true},
			want:   []string{"WC002", "CN001", "WC001", "SP001"},
		},
		{
			name:   "term matches name and category, out of stock excluded",
			filter: ProductFilter{Terms: []string{"candle"}, InStockOnly: true},
			want:   []string{"CN001"},
		},
		{
			name:   "out of stock included when not filtered",
			filter: ProductFilter{Terms: []string{"candle"}},
			want:   []string{"CN001", "CN002"},
		},
		{
			name:   "term matches material",
			filter: ProductFilter{Terms: []string{"cotton"}, InStockOnly: true},
			want:   []string{"WC001"},
		},
		{
			name:   "terms are combined with AND",
			filter: ProductFilter{Terms: []string{"silk", "saree"}, InStockOnly: true},
			want:   []string{"WC002"},
		},
		{
			name:   "category filter by display name",
			filter: ProductFilter{Category: "Women's Clothing", InStockOnly: true},
			want:   []string{"WC002", "WC001"},
		},
		{
			name:   "price range",
			filter: ProductFilter{MinPrice: floatPtr(500), MaxPrice: floatPtr(2000), InStockOnly: true},
			want:   []string{"CN001", "WC001"},
		},
		{
			name:   "limit",
			filter: ProductFilter{InStockOnly: true, Limit: 2},
			want:   []string{"WC002", "CN001"},
		},
		{
			name:   "no match",
			filter: ProductFilter{Terms: []string{"laptop"}},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Search(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, skus(got))
		})
	}
}

func TestProductRepository_Search_PreloadsCategory(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedCatalog(t, db)
	repo := NewProductRepository(db.DB)

	got, err := repo.Search(context.Background(), ProductFilter{Terms: []string{"neem"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "soaps", got[0].CategoryName())
}

func TestProductRepository_GetBySKU(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedCatalog(t, db)
	repo := NewProductRepository(db.DB)
	ctx := context.Background()

	p, err := repo.GetBySKU(ctx, " wc001 ")
	require.NoError(t, err)
	assert.Equal(t, "Elegant Cotton Kurti", p.Name)
	assert.Equal(t, "womens_clothing", p.CategoryName())

	_, err = repo.GetBySKU(ctx, "XX999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductRepository_FindByNameSubstring(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedCatalog(t, db)
	repo := NewProductRepository(db.DB)

	got, err := repo.FindByNameSubstring(context.Background(), "CANDLE")
	require.NoError(t, err)
	assert.Equal(t, []string{"CN001", "CN002"}, skus(got))
}

func TestProductRepository_ListCategories(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedCatalog(t, db)
	repo := NewProductRepository(db.DB)

	got, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	counts := map[string]int64{}
	for _, c := range got {
		counts[c.Name] = c.ProductCount
	}
	assert.Equal(t, map[string]int64{"womens_clothing": 2, "candles": 2, "soaps": 1}, counts)
	assert.Equal(t, "Women's Clothing", got[0].DisplayName)
}

func TestProductRepository_SaveCatalog(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewProductRepository(db.DB)
	ctx := context.Background()

	cat := &model.Category{Name: "candles", DisplayName: "Candles"}
	created, err := repo.SaveCategory(ctx, cat)
	require.NoError(t, err)
	assert.True(t, created)

	again := &model.Category{Name: "candles", DisplayName: "Scented Candles", Description: "Hand poured"}
	created, err = repo.SaveCategory(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, cat.ID, again.ID)

	stored, err := repo.GetCategoryByName(ctx, "candles")
	require.NoError(t, err)
	assert.Equal(t, "Scented Candles", stored.DisplayName)

	p := &model.Product{SKU: "CAN001", Name: "Lavender Bliss Candle", Price: 499, Stock: 60, InStock: true, CategoryID: cat.ID}
	created, err = repo.SaveProduct(ctx, p)
	require.NoError(t, err)
	assert.True(t, created)

	update := &model.Product{SKU: "CAN001", Name: "Lavender Bliss Candle", Price: 549, Stock: 0, InStock: false, CategoryID: cat.ID}
	created, err = repo.SaveProduct(ctx, update)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := repo.GetBySKU(ctx, "CAN001")
	require.NoError(t, err)
	assert.Equal(t, 549.0, got.Price)
	assert.Zero(t, got.Stock)
	assert.False(t, got.InStock)

	oos := &model.Product{SKU: "CAN002", Name: "Vanilla Dream Candle", Price: 549, InStock: false, CategoryID: cat.ID}
	_, err = repo.SaveProduct(ctx, oos)
	require.NoError(t, err)
	got, err = repo.GetBySKU(ctx, "CAN002")
	require.NoError(t, err)
	assert.False(t, got.InStock)
}
