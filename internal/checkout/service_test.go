package checkout

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/auth"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCartStore struct {
	carts map[string][]models.CartItem
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: map[string][]models.CartItem{}}
}

func (s *memCartStore) Load(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	return append([]models.CartItem(nil), s.carts[sessionID]...), nil
}

func (s *memCartStore) Persist(ctx context.Context, sessionID string, items []models.CartItem) error {
	s.carts[sessionID] = append([]models.CartItem(nil), items...)
	return nil
}

func (s *memCartStore) Clear(ctx context.Context, sessionID string) error {
	delete(s.carts, sessionID)
	return nil
}

type fakeOrderWriter struct {
	orders []models.Order
	err    error
}

func (w *fakeOrderWriter) CreateOrder(ctx context.Context, order *models.Order) error {
	if w.err != nil {
		return w.err
	}
	w.orders = append(w.orders, *order)
	return nil
}

type fakePublisher struct {
	events []models.OrderPlacedEvent
}

func (p *fakePublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	p.events = append(p.events, *event)
	return nil
}

var (
	buyer = auth.Identity{
		UserID: "u1",
		Email:  "buyer@example.com",
		Name:   "Buyer",
		Role:   models.RoleUser,
	}
	shipping = models.ShippingInfo{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Address:   "1 Analytical Way",
		City:      "London",
		ZipCode:   "E1 6AN",
	}
)

func seedCart(store *memCartStore) {
	store.carts["s1"] = []models.CartItem{
		{ID: "p1", Name: "A", Price: decimal.NewFromInt(100), Quantity: 2},
		{ID: "p2", Name: "B", Price: decimal.NewFromInt(50), Quantity: 1},
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	store := newMemCartStore()
	writer := &fakeOrderWriter{}
	svc := NewService(store, writer, nil)

	_, err := svc.PlaceOrder(context.Background(), buyer, "s1", shipping, models.PaymentMethodCard)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, writer.orders, "an empty cart must never create an order")
}

func TestPlaceOrderUnauthenticated(t *testing.T) {
	store := newMemCartStore()
	seedCart(store)
	writer := &fakeOrderWriter{}
	svc := NewService(store, writer, nil)

	_, err := svc.PlaceOrder(context.Background(), auth.Identity{}, "s1", shipping, models.PaymentMethodCard)
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
	assert.Empty(t, writer.orders)
	assert.Len(t, store.carts["s1"], 2, "cart must be left untouched")
}

func TestPlaceOrderMissingShipping(t *testing.T) {
	store := newMemCartStore()
	seedCart(store)
	writer := &fakeOrderWriter{}
	svc := NewService(store, writer, nil)

	incomplete := shipping
	incomplete.City = ""

	_, err := svc.PlaceOrder(context.Background(), buyer, "s1", incomplete, models.PaymentMethodCard)
	assert.ErrorIs(t, err, ErrMissingShipping)
	assert.Empty(t, writer.orders)
}

func TestPlaceOrderInvalidPaymentMethod(t *testing.T) {
	store := newMemCartStore()
	seedCart(store)
	writer := &fakeOrderWriter{}
	svc := NewService(store, writer, nil)

	_, err := svc.PlaceOrder(context.Background(), buyer, "s1", shipping, "")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

	_, err = svc.PlaceOrder(context.Background(), buyer, "s1", shipping, "barter")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

	assert.Empty(t, writer.orders)
	assert.Len(t, store.carts["s1"], 2)
}

func TestPlaceOrderSuccess(t *testing.T) {
	store := newMemCartStore()
	seedCart(store)
	writer := &fakeOrderWriter{}
	publisher := &fakePublisher{}
	svc := NewService(store, writer, publisher)

	order, err := svc.PlaceOrder(context.Background(), buyer, "s1", shipping, models.PaymentMethodCOD)
	require.NoError(t, err)
	require.Len(t, writer.orders, 1, "exactly one order per checkout")

	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, "buyer@example.com", order.UserEmail)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "250.00", order.Total.StringFixed(2))
	assert.Equal(t, shipping, order.Shipping)

	_, exists := store.carts["s1"]
	assert.False(t, exists, "cart must be cleared after acknowledged success")

	require.Len(t, publisher.events, 1)
	assert.Equal(t, order.ID, publisher.events[0].OrderID)
	assert.Equal(t, 3, publisher.events[0].ItemCount)
}

func TestPlaceOrderItemsAreStructuralCopy(t *testing.T) {
	store := newMemCartStore()
	seedCart(store)
	live := store.carts["s1"]
	writer := &fakeOrderWriter{}
	svc := NewService(store, writer, nil)

	order, err := svc.PlaceOrder(context.Background(), buyer, "s1", shipping, models.PaymentMethodCard)
	require.NoError(t, err)

	// Mutating what was the live cart slice must not reach into the order.
	live[0].Quantity = 99
	live[0].Name = "tampered"

	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "A", order.Items[0].Name)
}

func TestPlaceOrderWriteRejectedLeavesCartUntouched(t *testing.T) {
	store := newMemCartStore()
	seedCart(store)
	cause := errors.New("connection reset")
	writer := &fakeOrderWriter{err: cause}
	svc := NewService(store, writer, nil)

	_, err := svc.PlaceOrder(context.Background(), buyer, "s1", shipping, models.PaymentMethodCard)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause, "the underlying failure reason must be surfaced")

	assert.Len(t, store.carts["s1"], 2, "cart preserved for manual resubmission")
	assert.Empty(t, writer.orders)
}
