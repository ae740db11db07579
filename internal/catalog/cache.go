package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// ProductLister provides the bulk fetch used to populate the cache.
type ProductLister interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
}

// Sort keys accepted by Sorted.
const (
	SortByName      = "name"
	SortByPriceLow  = "price-low"
	SortByPriceHigh = "price-high"
)

// Cache is an in-memory snapshot of the product catalog. It is populated by
// full reloads only and never incrementally invalidated; reads between an
// external catalog mutation and the next reload are expected to be stale.
type Cache struct {
	mu       sync.RWMutex
	products []models.Product
	lister   ProductLister
	logger   *zap.Logger
}

// NewCache creates an empty catalog cache
func NewCache(lister ProductLister) *Cache {
	return &Cache{
		lister: lister,
		logger: util.GetLogger(),
	}
}

// Reload replaces the entire snapshot with a fresh bulk fetch
func (c *Cache) Reload(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "Catalog.Reload")
	defer span.End()

	products, err := c.lister.GetProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload catalog: %w", err)
	}

	c.mu.Lock()
	c.products = products
	c.mu.Unlock()

	util.CatalogReloadsTotal.Inc()
	util.CatalogSize.Set(float64(len(products)))
	c.logger.Info("Catalog cache reloaded", zap.Int("products", len(products)))
	return nil
}

// Get looks a product up by ID. A linear scan is fine at the catalog sizes
// involved.
func (c *Cache) Get(id string) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// All returns a copy of the full snapshot
func (c *Cache) All() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Search returns products whose name or description contains term,
// case-insensitively
func (c *Cache) Search(term string) []models.Product {
	term = strings.ToLower(term)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Product
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByCategory returns products in the given category. "all" or empty
// means no filter.
func (c *Cache) FilterByCategory(categoryID string) []models.Product {
	if categoryID == "" || categoryID == "all" {
		return c.All()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.Product
	for _, p := range c.products {
		if strings.EqualFold(p.Category, categoryID) {
			out = append(out, p)
		}
	}
	return out
}

// Sorted returns the given products ordered by the sort key. Unknown keys
// leave the order untouched.
func Sorted(products []models.Product, key string) []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)

	switch key {
	case SortByName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	case SortByPriceLow:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price.LessThan(out[j].Price)
		})
	case SortByPriceHigh:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price.GreaterThan(out[j].Price)
		})
	}
	return out
}
