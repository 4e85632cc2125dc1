package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/shop-assistant/internal/model"
	"github.com/ashwinyue/shop-assistant/internal/testutil"
)

// fixedBuilder 依次使用给定订单号构造订单
func fixedBuilder(numbers ...string) OrderBuilder {
	i := 0
	return func(items []*model.CartItem) (*model.Order, error) {
		n := numbers[i]
		if i < len(numbers)-1 {
			i++
		}
		o := &model.Order{
			OrderNumber:   n,
			Status:        model.OrderStatusConfirmed,
			TrackingID:    "TRK" + n[3:],
			PaymentMethod: "COD",
			CreatedAt:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		}
		for _, it := range items {
			o.Items = append(o.Items, model.OrderItem{
				ProductID:   it.ProductID,
				SKU:         it.Product.SKU,
				ProductName: it.Product.Name,
				Quantity:    it.Quantity,
				UnitPrice:   it.Product.Price,
			})
			o.TotalAmount += it.Product.Price * float64(it.Quantity)
		}
		return o, nil
	}
}

func setupOrderRepos(t *testing.T) (*Repositories, context.Context) {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.SeedCatalog(t, db)
	return NewRepositories(db.DB), context.Background()
}

func addToCart(t *testing.T, repos *Repositories, userID, sku string, qty int) {
	t.Helper()
	p, err := repos.Product.GetBySKU(context.Background(), sku)
	require.NoError(t, err)
	_, _, err = repos.Cart.AddItem(context.Background(), userID, p.ID, qty)
	require.NoError(t, err)
}

func countOrders(t *testing.T, repos *Repositories) int64 {
	t.Helper()
	var n int64
	require.NoError(t, repos.DB.Model(&model.Order{}).Count(&n).Error)
	return n
}

func TestOrderRepository_PlaceOrderEmptyCart(t *testing.T) {
	repos, ctx := setupOrderRepos(t)

	_, err := repos.Order.PlaceOrder(ctx, "u1", fixedBuilder("ORD00001"))
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, int64(0), countOrders(t, repos))
}

func TestOrderRepository_PlaceOrder(t *testing.T) {
	repos, ctx := setupOrderRepos(t)
	addToCart(t, repos, "u1", "WC001", 2)
	addToCart(t, repos, "u1", "SP001", 1)

	order, err := repos.Order.PlaceOrder(ctx, "u1", fixedBuilder("ORD00001"))
	require.NoError(t, err)
	assert.Equal(t, 2*1499.0+199.0, order.TotalAmount)
	assert.Equal(t, "u1", order.UserID)

	lines, err := repos.Cart.CountLines(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), lines)

	stored, err := repos.Order.GetByNumber(ctx, "u1", "ORD00001")
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, "TRK00001", stored.TrackingID)

	byTracking, err := repos.Order.GetByTracking(ctx, "u1", "TRK00001")
	require.NoError(t, err)
	assert.Equal(t, "ORD00001", byTracking.OrderNumber)

	// 其他用户不可见
	_, err = repos.Order.GetByNumber(ctx, "u2", "ORD00001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderRepository_PlaceOrderRollsBackOnBuildError(t *testing.T) {
	repos, ctx := setupOrderRepos(t)
	addToCart(t, repos, "u1", "WC001", 1)

	boom := errors.New("boom")
	_, err := repos.Order.PlaceOrder(ctx, "u1", func([]*model.CartItem) (*model.Order, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	lines, err := repos.Cart.CountLines(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), lines)
	assert.Equal(t, int64(0), countOrders(t, repos))
}

func TestOrderRepository_PlaceOrderRetriesDuplicateNumber(t *testing.T) {
	repos, ctx := setupOrderRepos(t)
	addToCart(t, repos, "u1", "WC001", 1)
	_, err := repos.Order.PlaceOrder(ctx, "u1", fixedBuilder("ORD00001"))
	require.NoError(t, err)

	addToCart(t, repos, "u1", "CN001", 1)
	order, err := repos.Order.PlaceOrder(ctx, "u1", fixedBuilder("ORD00001", "ORD00002"))
	require.NoError(t, err)
	assert.Equal(t, "ORD00002", order.OrderNumber)
	assert.Equal(t, int64(2), countOrders(t, repos))
}

func TestOrderRepository_ListNewestFirst(t *testing.T) {
	repos, ctx := setupOrderRepos(t)

	addToCart(t, repos, "u1", "WC001", 1)
	_, err := repos.Order.PlaceOrder(ctx, "u1", fixedBuilder("ORD00001"))
	require.NoError(t, err)
	addToCart(t, repos, "u1", "CN001", 1)
	_, err = repos.Order.PlaceOrder(ctx, "u1", fixedBuilder("ORD00002"))
	require.NoError(t, err)

	orders, err := repos.Order.List(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD00002", orders[0].OrderNumber)
	assert.Equal(t, "ORD00001", orders[1].OrderNumber)

	limited, err := repos.Order.List(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	repos, ctx := setupOrderRepos(t)
	addToCart(t, repos, "u1", "WC001", 1)

	_, err := repos.Order.PlaceOrder(ctx, "u1", func(items []*model.CartItem) (*model.Order, error) {
		o, err := fixedBuilder("ORD00009")(items)
		o.Status = model.OrderStatusPending
		return o, err
	})
	require.NoError(t, err)

	o, err := repos.Order.UpdateStatus(ctx, "u1", "ORD00009", model.OrderStatusFailed)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusFailed, o.Status)

	_, err = repos.Order.UpdateStatus(ctx, "u1", "ORD00009", model.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	o, err = repos.Order.UpdateStatus(ctx, "u1", "ORD00009", model.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, o.Status)

	_, err = repos.Order.UpdateStatus(ctx, "u1", "ORD99999", model.OrderStatusPending)
	assert.ErrorIs(t, err, ErrNotFound)
}

// seqBuilder 每次构造使用新的订单号
func seqBuilder(status model.OrderStatus) OrderBuilder {
	var seq atomic.Int64
	return func(items []*model.CartItem) (*model.Order, error) {
		o, err := fixedBuilder(fmt.Sprintf("ORD%05d", seq.Add(1)))(items)
		if err != nil {
			return nil, err
		}
		o.Status = status
		return o, nil
	}
}

func sumQuantity(t *testing.T, repos *Repositories, table any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, repos.DB.Model(table).Select("COALESCE(SUM(quantity), 0)").Scan(&n).Error)
	return n
}

func TestOrderRepository_PlaceOrderConcurrentAdds(t *testing.T) {
	db := testutil.NewFileTestDB(t, 8)
	testutil.SeedCatalog(t, db)
	repos := NewRepositories(db.DB)
	ctx := context.Background()

	soap, err := repos.Product.GetBySKU(ctx, "SP001")
	require.NoError(t, err)
	candle, err := repos.Product.GetBySKU(ctx, "CN001")
	require.NoError(t, err)
	addToCart(t, repos, "u1", "SP001", 1)

	const adds = 30
	var (
		wg        sync.WaitGroup
		committed atomic.Int64
		orderErrs = make(chan error, 4)
	)
	build := seqBuilder(model.OrderStatusConfirmed)
	for i := 0; i < adds; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			productID := soap.ID
			if i%2 == 1 {
				productID = candle.ID
			}
			_, _, err := repos.Cart.AddItem(ctx, "u1", productID, 1)
			// 读回时该行可能已被下单删除，写入本身已提交
			if err == nil || errors.Is(err, ErrNotFound) {
				committed.Add(1)
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repos.Order.PlaceOrder(ctx, "u1", build); err != nil && !errors.Is(err, ErrEmptyCart) {
				orderErrs <- err
			}
		}()
	}
	wg.Wait()
	close(orderErrs)
	for err := range orderErrs {
		require.NoError(t, err)
	}

	require.Equal(t, int64(adds), committed.Load())
	ordered := sumQuantity(t, repos, &model.OrderItem{})
	remaining := sumQuantity(t, repos, &model.CartItem{})
	assert.Equal(t, int64(adds+1), ordered+remaining)

	orders, err := repos.Order.List(ctx, "u1", 10)
	require.NoError(t, err)
	for _, o := range orders {
		var total float64
		for _, it := range o.Items {
			total += it.UnitPrice * float64(it.Quantity)
		}
		assert.InDelta(t, total, o.TotalAmount, 0.001, o.OrderNumber)
	}
}

func TestOrderRepository_PlaceOrderKeepsItemsAddedAfter(t *testing.T) {
	db := testutil.NewFileTestDB(t, 4)
	testutil.SeedCatalog(t, db)
	repos := NewRepositories(db.DB)
	ctx := context.Background()
	addToCart(t, repos, "u1", "WC001", 1)

	order, err := repos.Order.PlaceOrder(ctx, "u1", seqBuilder(model.OrderStatusConfirmed))
	require.NoError(t, err)
	require.Len(t, order.Items, 1)

	// 下单后加入的商品不受影响
	addToCart(t, repos, "u1", "CN001", 2)
	items, err := repos.Cart.ListItems(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "CN001", items[0].Product.SKU)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestOrderRepository_UpdateStatusConcurrent(t *testing.T) {
	db := testutil.NewFileTestDB(t, 8)
	testutil.SeedCatalog(t, db)
	repos := NewRepositories(db.DB)
	ctx := context.Background()
	addToCart(t, repos, "u1", "WC001", 1)

	order, err := repos.Order.PlaceOrder(ctx, "u1", seqBuilder(model.OrderStatusFailed))
	require.NoError(t, err)

	const workers = 8
	var (
		wg      sync.WaitGroup
		ok      atomic.Int64
		invalid atomic.Int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repos.Order.UpdateStatus(ctx, "u1", order.OrderNumber, model.OrderStatusPending)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrInvalidTransition):
				invalid.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), ok.Load())
	assert.Equal(t, int64(workers-1), invalid.Load())

	stored, err := repos.Order.GetByNumber(ctx, "u1", order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, stored.Status)
}
