package cart

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Validation errors surfaced to the user before any durable write happens.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("product out of stock")
	ErrExceedsStock    = errors.New("cannot add more items than available stock")
)

// Store is the durable cart persistence boundary.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]models.CartItem, error)
	Persist(ctx context.Context, sessionID string, items []models.CartItem) error
	Clear(ctx context.Context, sessionID string) error
}

// Service implements cart mutations against the catalog cache and the
// durable cart store. Every mutation persists the full sequence before
// returning, so derived views always read a consistent snapshot.
type Service struct {
	catalog *catalog.Cache
	store   Store
	logger  *zap.Logger
}

// NewService creates a new cart service
func NewService(catalog *catalog.Cache, store Store) *Service {
	return &Service{
		catalog: catalog,
		store:   store,
		logger:  util.GetLogger(),
	}
}

// Get returns the current cart contents for a session
func (s *Service) Get(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	return s.store.Load(ctx, sessionID)
}

// Clear empties the cart and removes its durable entry
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Clear(ctx, sessionID)
}

// Add puts one unit of a product into the cart. The stock check reads the
// cached snapshot, not live stock, so it is advisory only: it cannot
// guarantee against overselling.
func (s *Service) Add(ctx context.Context, sessionID, productID string) ([]models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "Cart.Add")
	defer span.End()

	product, ok := s.catalog.Get(productID)
	if !ok {
		util.CartAddFailedTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("product %s: %w", productID, ErrProductNotFound)
	}

	if product.Stock <= 0 {
		util.CartAddFailedTotal.WithLabelValues("out_of_stock").Inc()
		return nil, fmt.Errorf("product %s: %w", productID, ErrOutOfStock)
	}

	items, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ID != productID {
			continue
		}
		if items[i].Quantity >= product.Stock {
			util.CartAddFailedTotal.WithLabelValues("exceeds_stock").Inc()
			return nil, fmt.Errorf("product %s: %w", productID, ErrExceedsStock)
		}
		items[i].Quantity++
		found = true
		break
	}

	if !found {
		items = append(items, models.CartItem{
			ID:       product.ID,
			Name:     product.Name,
			Price:    product.EffectivePrice(),
			Image:    product.PrimaryImage(),
			Quantity: 1,
		})
	}

	if err := s.store.Persist(ctx, sessionID, items); err != nil {
		return nil, err
	}

	util.CartItemsAddedTotal.Inc()
	s.logger.Debug("Product added to cart",
		zap.String("session_id", sessionID),
		zap.String("product_id", productID))
	return items, nil
}

// Remove drops every cart line matching productID. An absent id is a no-op,
// not an error.
func (s *Service) Remove(ctx context.Context, sessionID, productID string) ([]models.CartItem, error) {
	items, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	for _, item := range items {
		if item.ID != productID {
			kept = append(kept, item)
		}
	}

	if err := s.store.Persist(ctx, sessionID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// UpdateQuantity adds delta to an item's quantity. A resulting quantity of
// zero or below removes the item; an absent item is a no-op. Increments are
// deliberately not re-validated against stock here, matching the asymmetry
// with Add.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID string, delta int) ([]models.CartItem, error) {
	items, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ID != productID {
			continue
		}

		items[i].Quantity += delta
		if items[i].Quantity <= 0 {
			return s.Remove(ctx, sessionID, productID)
		}

		if err := s.store.Persist(ctx, sessionID, items); err != nil {
			return nil, err
		}
		return items, nil
	}

	return items, nil
}

// Total is the cart total: Σ(captured unit price × quantity), always
// recomputed from current contents, never cached.
func Total(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Count is the number of units across all cart lines
func Count(items []models.CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
