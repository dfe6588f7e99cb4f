package masterdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/retailops/formdesk/internal/draft"
)

type stubRepo struct {
	products  []Product
	suppliers []Supplier
	calls     int
	err       error
}

func (r *stubRepo) ListProducts(ctx context.Context) ([]Product, error) {
	r.calls++
	return r.products, r.err
}

func (r *stubRepo) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	r.calls++
	return r.suppliers, r.err
}

func TestProductsMapsUnitsAndCollates(t *testing.T) {
	repo := &stubRepo{products: []Product{
		{Name: "Leche", Unit: "ml", Price: 1.2},
		{Name: "harina", Unit: "g", Price: 2.5},
		{Name: "Huevos", Unit: "unidades", Price: 0.3},
		{Name: "Azúcar", Unit: "g", Price: 1.1},
	}}
	svc := NewService(repo)

	products, err := svc.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 4)

	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	// Spanish collation ignores case and ranks the accented name first.
	require.Equal(t, []string{"Azúcar", "harina", "Huevos", "Leche"}, names)

	byName := map[string]draft.Product{}
	for _, p := range products {
		byName[p.Name] = p
	}
	require.Equal(t, draft.UnitKilogram, byName["harina"].Unit)
	require.Equal(t, draft.UnitLiter, byName["Leche"].Unit)
	require.Equal(t, draft.UnitPiece, byName["Huevos"].Unit)
}

func TestSuppliersOrderedByID(t *testing.T) {
	repo := &stubRepo{suppliers: []Supplier{{ID: 3, Name: "C"}, {ID: 1, Name: "A"}, {ID: 2, Name: "B"}}}
	svc := NewService(repo)

	suppliers, err := svc.Suppliers(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Supplier{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}, suppliers)
}

func TestCacheReadThrough(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &stubRepo{products: []Product{{Name: "harina", Unit: "g", Price: 2.5}}}
	cache := NewCache(repo, client, time.Minute, nil)
	ctx := context.Background()

	first, err := cache.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, repo.calls)

	second, err := cache.ListProducts(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.calls, "second read must hit the cache")

	srv.FastForward(2 * time.Minute)
	_, err = cache.ListProducts(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls, "expired entry must refetch")
}

func TestCacheRefreshRewritesEntries(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &stubRepo{
		products:  []Product{{Name: "harina", Unit: "g", Price: 2.5}},
		suppliers: []Supplier{{ID: 1, Name: "A"}},
	}
	cache := NewCache(repo, client, time.Minute, nil)
	ctx := context.Background()

	stale, err := cache.ListProducts(ctx)
	require.NoError(t, err)
	require.InDelta(t, 2.5, stale[0].Price, 1e-9)
	require.Equal(t, 1, repo.calls)

	repo.products = []Product{{Name: "harina", Unit: "g", Price: 3.1}}
	require.NoError(t, cache.Refresh(ctx))
	require.Equal(t, 3, repo.calls)

	fresh, err := cache.ListProducts(ctx)
	require.NoError(t, err)
	require.InDelta(t, 3.1, fresh[0].Price, 1e-9)
	require.Equal(t, 3, repo.calls, "refreshed entry must be served from cache")
}

func TestCacheFallsBackWhenRedisDown(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	srv.Close()

	repo := &stubRepo{suppliers: []Supplier{{ID: 1, Name: "A"}}}
	cache := NewCache(repo, client, time.Minute, nil)

	suppliers, err := cache.ListSuppliers(context.Background())
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
}

func TestCachePropagatesSourceError(t *testing.T) {
	repo := &stubRepo{err: errors.New("boom")}
	cache := NewCache(repo, nil, time.Minute, nil)

	_, err := cache.ListProducts(context.Background())
	require.Error(t, err)
}
