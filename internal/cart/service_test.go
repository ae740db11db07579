package cart

import (
	"context"
	"testing"

	"storefront/internal/catalog"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	products []models.Product
}

func (f *fakeLister) GetProducts(ctx context.Context) ([]models.Product, error) {
	return f.products, nil
}

type memStore struct {
	carts map[string][]models.CartItem
}

func newMemStore() *memStore {
	return &memStore{carts: map[string][]models.CartItem{}}
}

func (s *memStore) Load(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	return append([]models.CartItem(nil), s.carts[sessionID]...), nil
}

func (s *memStore) Persist(ctx context.Context, sessionID string, items []models.CartItem) error {
	s.carts[sessionID] = append([]models.CartItem(nil), items...)
	return nil
}

func (s *memStore) Clear(ctx context.Context, sessionID string) error {
	delete(s.carts, sessionID)
	return nil
}

func price(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func newTestService(t *testing.T, products ...models.Product) (*Service, *memStore) {
	t.Helper()

	cache := catalog.NewCache(&fakeLister{products: products})
	require.NoError(t, cache.Reload(context.Background()))

	store := newMemStore()
	return NewService(cache, store), store
}

func TestAddNewProductCapturesSnapshot(t *testing.T) {
	svc, _ := newTestService(t, models.Product{
		ID:         "p1",
		Name:       "Headphones",
		Price:      price(200),
		Discount:   50,
		FinalPrice: price(100),
		Stock:      5,
		Images:     []string{"primary.jpg", "alt.jpg"},
	})

	items, err := svc.Add(context.Background(), "s1", "p1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, "Headphones", items[0].Name)
	assert.True(t, items[0].Price.Equal(price(100)), "captured price must be the discounted price")
	assert.Equal(t, "primary.jpg", items[0].Image)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestAddSameProductTwiceMergesQuantity(t *testing.T) {
	svc, _ := newTestService(t, models.Product{ID: "p1", Name: "Widget", Price: price(10), Stock: 10})
	ctx := context.Background()

	_, err := svc.Add(ctx, "s1", "p1")
	require.NoError(t, err)
	items, err := svc.Add(ctx, "s1", "p1")
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddUnknownProduct(t *testing.T) {
	svc, store := newTestService(t)

	_, err := svc.Add(context.Background(), "s1", "ghost")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Empty(t, store.carts["s1"])
}

func TestAddOutOfStockNeverMutatesCart(t *testing.T) {
	svc, store := newTestService(t, models.Product{ID: "p1", Name: "Widget", Price: price(10), Stock: 0})

	_, err := svc.Add(context.Background(), "s1", "p1")
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Empty(t, store.carts["s1"])
}

func TestAddBeyondStockRejected(t *testing.T) {
	svc, _ := newTestService(t, models.Product{ID: "p1", Name: "Widget", Price: price(10), Stock: 2})
	ctx := context.Background()

	_, err := svc.Add(ctx, "s1", "p1")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "s1", "p1")
	require.NoError(t, err)

	_, err = svc.Add(ctx, "s1", "p1")
	assert.ErrorIs(t, err, ErrExceedsStock)

	items, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestRemoveAbsentProductIsNoop(t *testing.T) {
	svc, _ := newTestService(t, models.Product{ID: "p1", Name: "Widget", Price: price(10), Stock: 5})
	ctx := context.Background()

	_, err := svc.Add(ctx, "s1", "p1")
	require.NoError(t, err)

	items, err := svc.Remove(ctx, "s1", "ghost")
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestUpdateQuantityFloorsAtRemoval(t *testing.T) {
	svc, _ := newTestService(t, models.Product{ID: "p1", Name: "Widget", Price: price(10), Stock: 5})
	ctx := context.Background()

	_, err := svc.Add(ctx, "s1", "p1")
	require.NoError(t, err)
	_, err = svc.UpdateQuantity(ctx, "s1", "p1", 1)
	require.NoError(t, err)

	// quantity 2, delta -5: the item is removed, never stored non-positive
	items, err := svc.UpdateQuantity(ctx, "s1", "p1", -5)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpdateQuantityAbsentIsNoop(t *testing.T) {
	svc, _ := newTestService(t)

	items, err := svc.UpdateQuantity(context.Background(), "s1", "ghost", 3)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpdateQuantityIncrementSkipsStockCheck(t *testing.T) {
	// Increments through this path are deliberately not bounded by stock,
	// unlike Add.
	svc, _ := newTestService(t, models.Product{ID: "p1", Name: "Widget", Price: price(10), Stock: 1})
	ctx := context.Background()

	_, err := svc.Add(ctx, "s1", "p1")
	require.NoError(t, err)

	items, err := svc.UpdateQuantity(ctx, "s1", "p1", 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 6, items[0].Quantity)
}

func TestQuantityInvariantAcrossMutationSequences(t *testing.T) {
	svc, _ := newTestService(t,
		models.Product{ID: "p1", Name: "A", Price: price(10), Stock: 100},
		models.Product{ID: "p2", Name: "B", Price: price(20), Stock: 100},
	)
	ctx := context.Background()

	steps := []func() ([]models.CartItem, error){
		func() ([]models.CartItem, error) { return svc.Add(ctx, "s1", "p1") },
		func() ([]models.CartItem, error) { return svc.Add(ctx, "s1", "p2") },
		func() ([]models.CartItem, error) { return svc.UpdateQuantity(ctx, "s1", "p1", 4) },
		func() ([]models.CartItem, error) { return svc.UpdateQuantity(ctx, "s1", "p2", -1) },
		func() ([]models.CartItem, error) { return svc.Remove(ctx, "s1", "p2") },
		func() ([]models.CartItem, error) { return svc.UpdateQuantity(ctx, "s1", "p1", -2) },
	}

	for _, step := range steps {
		items, err := step()
		require.NoError(t, err)
		for _, item := range items {
			assert.GreaterOrEqual(t, item.Quantity, 1)
		}
	}
}

func TestTotalUsesPriceCapturedAtAddTime(t *testing.T) {
	lister := &fakeLister{products: []models.Product{
		{ID: "p1", Name: "Widget", Price: price(100), Stock: 10},
	}}
	cache := catalog.NewCache(lister)
	require.NoError(t, cache.Reload(context.Background()))

	store := newMemStore()
	svc := NewService(cache, store)
	ctx := context.Background()

	_, err := svc.Add(ctx, "s1", "p1")
	require.NoError(t, err)

	// Catalog price changes after the add; the cart keeps its snapshot.
	lister.products[0].Price = price(999)
	require.NoError(t, cache.Reload(ctx))

	items, err := svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, Total(items).Equal(price(100)))
}

func TestTotalExample(t *testing.T) {
	items := []models.CartItem{
		{ID: "p1", Price: price(100), Quantity: 2},
		{ID: "p2", Price: price(50), Quantity: 1},
	}

	assert.Equal(t, "250.00", Total(items).StringFixed(2))
	assert.Equal(t, 3, Count(items))
}
