package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/cloudwego/eino/schema"

	"github.com/ashwinyue/shop-assistant/internal/model"
	"github.com/ashwinyue/shop-assistant/internal/repository"
)

const descriptionPreviewRunes = 100

// genericWords 不构成检索条件的词
var genericWords = map[string]bool{
	"product": true, "products": true, "item": true, "items": true,
	"all": true, "everything": true, "show": true, "me": true,
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "for": true, "with": true, "of": true,
	"in": true, "on": true, "and": true, "or": true, "to": true, "some": true,
	"any": true, "please": true, "i": true, "want": true, "need": true,
	"looking": true, "find": true, "buy": true, "do": true, "you": true,
	"have": true, "what": true, "is": true, "are": true, "my": true,
	"under": true, "below": true, "above": true, "over": true, "rs": true,
	"inr": true, "your": true, "can": true, "get": true, "list": true,
}

// searchTerms 提取检索词：去掉泛化词、停用词和数字，复数还原为单数
// 全部被去掉时返回空，表示不加文本条件
func searchTerms(query string) []string {
	words := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	var terms []string
	seen := make(map[string]bool)
	for _, w := range words {
		w = strings.Trim(w, "'")
		if w == "" || genericWords[w] || stopWords[w] || isNumber(w) {
			continue
		}
		w = singular(w)
		if !seen[w] {
			seen[w] = true
			terms = append(terms, w)
		}
	}
	return terms
}

func singular(w string) string {
	switch {
	case len(w) <= 3:
		return w
	case strings.HasSuffix(w, "ies"):
		return strings.TrimSuffix(w, "ies") + "y"
	case strings.HasSuffix(w, "sses"), strings.HasSuffix(w, "ches"),
		strings.HasSuffix(w, "shes"), strings.HasSuffix(w, "xes"):
		return strings.TrimSuffix(w, "es")
	case strings.HasSuffix(w, "ss"):
		return w
	case strings.HasSuffix(w, "s"):
		return strings.TrimSuffix(w, "s")
	}
	return w
}

func isNumber(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func categoryOf(p *model.Product) string {
	if name := p.CategoryName(); name != "" {
		return name
	}
	return "general"
}

// ========== search_products ==========

type searchProductsTool struct {
	products repository.ProductRepository
}

func (t *searchProductsTool) Name() string { return "search_products" }

func (t *searchProductsTool) Description() string {
	return "Search for products by name, category, price range, or tags. Returns matching products with details."
}

func (t *searchProductsTool) Params() map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{
		"query":     {Type: schema.String, Desc: "Search text: product name, material or description words"},
		"category":  {Type: schema.String, Desc: "Category name, e.g. candles, soaps, womens_clothing"},
		"min_price": {Type: schema.Number, Desc: "Minimum price in INR"},
		"max_price": {Type: schema.Number, Desc: "Maximum price in INR"},
		"limit":     {Type: schema.Integer, Desc: "Maximum number of results, default 5"},
	}
}

func (t *searchProductsTool) Run(ctx context.Context, userID string, params Params) (*Result, error) {
	query := params.String("query")
	category := params.String("category")

	products, err := t.products.Search(ctx, repository.ProductFilter{
		Terms:       searchTerms(query),
		Category:    category,
		MinPrice:    params.Float("min_price"),
		MaxPrice:    params.Float("max_price"),
		InStockOnly: true,
		Limit:       params.Int("limit", 5),
	})
	if err != nil {
		return nil, err
	}

	list := &ProductList{Query: query, Category: category, Products: make([]*ProductSummary, 0, len(products))}
	for _, p := range products {
		list.Products = append(list.Products, &ProductSummary{
			ID:          p.SKU,
			Name:        p.Name,
			Price:       p.Price,
			Description: truncateRunes(p.Description, descriptionPreviewRunes),
			Category:    categoryOf(p),
			Rating:      p.Rating,
			InStock:     p.InStock,
			Material:    p.Material,
		})
	}
	list.ResultsCount = len(list.Products)
	return &Result{Kind: KindProductList, Success: true, ProductList: list}, nil
}

// ========== get_product_details ==========

type productDetailsTool struct {
	resolver *ProductResolver
}

func (t *productDetailsTool) Name() string { return "get_product_details" }

func (t *productDetailsTool) Description() string {
	return "Get detailed information about a specific product by its ID."
}

func (t *productDetailsTool) Params() map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{
		"product_id": {Type: schema.String, Desc: "Product SKU or name", Required: true},
	}
}

func (t *productDetailsTool) Run(ctx context.Context, userID string, params Params) (*Result, error) {
	ref := params.String("product_id")
	p, err := t.resolver.Resolve(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return &Result{Kind: KindFailure, Error: fmt.Sprintf("Product with ID '%s' not found", ref)}, nil
	}
	if err != nil {
		return nil, err
	}

	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &Result{
		Kind:    KindProductDetail,
		Success: true,
		ProductDetail: &ProductDetail{
			ID:          p.SKU,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Stock:       p.Stock,
			Category:    categoryOf(p),
			Rating:      p.Rating,
			InStock:     p.InStock,
			Material:    p.Material,
			Tags:        tags,
		},
	}, nil
}

// ========== list_categories ==========

type listCategoriesTool struct {
	products repository.ProductRepository
}

func (t *listCategoriesTool) Name() string { return "list_categories" }

func (t *listCategoriesTool) Description() string {
	return "Get a list of all available product categories in the store."
}

func (t *listCategoriesTool) Params() map[string]*schema.ParameterInfo {
	return map[string]*schema.ParameterInfo{}
}

func (t *listCategoriesTool) Run(ctx context.Context, userID string, params Params) (*Result, error) {
	rows, err := t.products.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	list := &CategoryList{Categories: make([]*CategoryInfo, 0, len(rows))}
	for _, c := range rows {
		display := c.DisplayName
		if display == "" {
			display = titleCase(strings.ReplaceAll(c.Name, "_", " "))
		}
		list.Categories = append(list.Categories, &CategoryInfo{
			Name:         c.Name,
			ProductCount: c.ProductCount,
			DisplayName:  display,
			Description:  c.Description,
		})
	}
	list.TotalCategories = len(list.Categories)
	return &Result{Kind: KindCategoryList, Success: true, CategoryList: list}, nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
