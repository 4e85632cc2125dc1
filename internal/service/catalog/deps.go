package catalog

import (
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/ashwinyue/shop-assistant/internal/repository"
)

// Deps 工具依赖
type Deps struct {
	Products repository.ProductRepository
	Cart     repository.CartRepository
	Orders   repository.OrderRepository

	// Now 当前时间，测试中可固定
	Now func() time.Time
	// IntN 返回 [0, n) 的随机数，用于订单号、物流号和预计送达
	IntN func(n int) int
	// Warehouse 物流轨迹中的仓库地点
	Warehouse string
}

func (d *Deps) withDefaults() {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.IntN == nil {
		d.IntN = rand.IntN
	}
	if d.Warehouse == "" {
		d.Warehouse = "Warehouse"
	}
}

// NewDefault 注册全部十一个工具
func NewDefault(deps Deps, log *zap.Logger) (*Catalog, error) {
	deps.withDefaults()
	resolver := NewProductResolver(deps.Products)

	return New(log,
		&searchProductsTool{products: deps.Products},
		&productDetailsTool{resolver: resolver},
		&listCategoriesTool{products: deps.Products},
		&addToCartTool{resolver: resolver, cart: deps.Cart},
		&viewCartTool{cart: deps.Cart},
		&removeFromCartTool{resolver: resolver, cart: deps.Cart},
		&clearCartTool{cart: deps.Cart},
		&orderStatusTool{orders: deps.Orders},
		&listOrdersTool{orders: deps.Orders},
		&createOrderTool{orders: deps.Orders, now: deps.Now, intN: deps.IntN},
		&trackOrderTool{orders: deps.Orders, warehouse: deps.Warehouse},
	)
}
