package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/shop-assistant/internal/repository"
	"github.com/ashwinyue/shop-assistant/internal/testutil"
)

var placedAt = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

type fixture struct {
	catalog *Catalog
	repos   *repository.Repositories
	ctx     context.Context
}

// newFixture 基于已播种的 SQLite 构造全部工具，时间和随机数固定
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.SeedCatalog(t, db)
	repos := repository.NewRepositories(db.DB)

	c, err := NewDefault(Deps{
		Products:  repos.Product,
		Cart:      repos.Cart,
		Orders:    repos.Order,
		Now:       func() time.Time { return placedAt },
		IntN:      func(n int) int { return 0 },
		Warehouse: "Warehouse",
	}, nil)
	require.NoError(t, err)
	return &fixture{catalog: c, repos: repos, ctx: context.Background()}
}

func (f *fixture) invoke(name, userID string, params Params) *Result {
	return f.catalog.Invoke(f.ctx, name, userID, params)
}

func (f *fixture) mustInvoke(t *testing.T, name, userID string, params Params) *Result {
	t.Helper()
	res := f.invoke(name, userID, params)
	require.True(t, res.Success, "tool %s failed: %s", name, res.Reason())
	return res
}
