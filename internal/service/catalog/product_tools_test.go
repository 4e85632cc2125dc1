package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skus(list *ProductList) []string {
	out := make([]string, len(list.Products))
	for i, p := range list.Products {
		out[i] = p.ID
	}
	return out
}

func TestSearchTerms(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"show me candles", []string{"candle"}},
		{"show me all products", nil},
		{"", nil},
		{"cotton kurtis under 2000", []string{"cotton", "kurti"}},
		{"Candles Candle", []string{"candle"}},
		{"dresses", []string{"dress"}},
		{"accessories", []string{"accessory"}},
		{"silk", []string{"silk"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, searchTerms(tt.query))
		})
	}
}

func TestSearchProducts_ShowMeCandles(t *testing.T) {
	f := newFixture(t)

	res := f.mustInvoke(t, "search_products", "u1", Params{"query": "show me candles"})
	require.Equal(t, KindProductList, res.Kind)

	// 缺货的 CN002 不返回
	assert.Equal(t, []string{"CN001"}, skus(res.ProductList))
	assert.Equal(t, 1, res.ProductList.ResultsCount)
	assert.Equal(t, "candles", res.ProductList.Products[0].Category)
	assert.Equal(t, float64(599), res.ProductList.Products[0].Price)
}

func TestSearchProducts_GenericQuery(t *testing.T) {
	f := newFixture(t)

	res := f.mustInvoke(t, "search_products", "u1", Params{"query": "show me all products"})
	assert.Equal(t, []string{"WC002", "CN001", "WC001", "SP001"}, skus(res.ProductList))
}

func TestSearchProducts_Filters(t *testing.T) {
	f := newFixture(t)

	res := f.mustInvoke(t, "search_products", "u1", Params{"category": "womens clothing", "max_price": float64(2000)})
	assert.Equal(t, []string{"WC001"}, skus(res.ProductList))

	res = f.mustInvoke(t, "search_products", "u1", Params{"min_price": "500", "limit": 2})
	assert.Equal(t, []string{"WC002", "CN001"}, skus(res.ProductList))

	res = f.mustInvoke(t, "search_products", "u1", Params{"query": "unicorn saddle"})
	assert.Empty(t, res.ProductList.Products)
	assert.Equal(t, 0, res.ProductList.ResultsCount)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 100))
	long := strings.Repeat("अ", 120)
	got := truncateRunes(long, 100)
	assert.Equal(t, strings.Repeat("अ", 100)+"...", got)
}

func TestGetProductDetails(t *testing.T) {
	f := newFixture(t)

	res := f.mustInvoke(t, "get_product_details", "u1", Params{"product_id": "wc002"})
	require.Equal(t, KindProductDetail, res.Kind)
	assert.Equal(t, "Silk Saree", res.ProductDetail.Name)
	assert.Equal(t, 5, res.ProductDetail.Stock)
	assert.NotNil(t, res.ProductDetail.Tags)

	res = f.mustInvoke(t, "get_product_details", "u1", Params{"product_id": "neem"})
	assert.Equal(t, "SP001", res.ProductDetail.ID)

	res = f.invoke("get_product_details", "u1", Params{"product_id": "XYZ9"})
	assert.False(t, res.Success)
	assert.Equal(t, "Product with ID 'XYZ9' not found", res.Reason())
	assert.False(t, res.Internal())
}

func TestListCategories(t *testing.T) {
	f := newFixture(t)

	res := f.mustInvoke(t, "list_categories", "u1", nil)
	require.Equal(t, KindCategoryList, res.Kind)
	require.Equal(t, 3, res.CategoryList.TotalCategories)

	byName := map[string]*CategoryInfo{}
	for _, c := range res.CategoryList.Categories {
		byName[c.Name] = c
	}
	assert.Equal(t, int64(2), byName["candles"].ProductCount)
	assert.Equal(t, int64(2), byName["womens_clothing"].ProductCount)
	assert.Equal(t, "Women's Clothing", byName["womens_clothing"].DisplayName)
}

func TestProductResolver_TieBreak(t *testing.T) {
	f := newFixture(t)
	r := NewProductResolver(f.repos.Product)

	// 两个蜡烛都匹配，取 SKU 最小的
	p, err := r.Resolve(f.ctx, "candle")
	require.NoError(t, err)
	assert.Equal(t, "CN001", p.SKU)

	p, err = r.Resolve(f.ctx, "CN002")
	require.NoError(t, err)
	assert.Equal(t, "Vanilla Jar Candle", p.Name)

	_, err = r.Resolve(f.ctx, "   ")
	assert.Error(t, err)
}
