// Package view projects catalog, cart and order state into view models.
// Projections are pure and copy everything they need: consumers never hold
// live references into the mutable state they were built from.
package view

import (
	"fmt"
	"time"

	"storefront/internal/cart"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// CartLine is one rendered cart row.
type CartLine struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

// Cart is the rendered cart sidebar: lines, unit count and formatted total.
type Cart struct {
	Lines []CartLine `json:"lines"`
	Count int        `json:"count"`
	Total string     `json:"total"`
}

// NewCart projects cart items into a cart view.
func NewCart(items []models.CartItem) Cart {
	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, CartLine{
			ID:        item.ID,
			Name:      item.Name,
			Image:     item.Image,
			UnitPrice: item.Price.StringFixed(2),
			Quantity:  item.Quantity,
			LineTotal: item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))).StringFixed(2),
		})
	}
	return Cart{
		Lines: lines,
		Count: cart.Count(items),
		Total: cart.Total(items).StringFixed(2),
	}
}

// ProductCard is the rendered product tile.
type ProductCard struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Image         string `json:"image,omitempty"`
	Category      string `json:"category,omitempty"`
	Price         string `json:"price"`
	FinalPrice    string `json:"finalPrice,omitempty"`
	DiscountBadge string `json:"discountBadge,omitempty"`
	OutOfStock    bool   `json:"outOfStock"`
}

// NewProductCard projects a product into a card view. Discounted products
// carry the struck-through list price plus a badge.
func NewProductCard(p models.Product) ProductCard {
	card := ProductCard{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Image:       p.PrimaryImage(),
		Category:    p.Category,
		Price:       p.Price.StringFixed(2),
		OutOfStock:  p.Stock <= 0,
	}
	if p.Discount > 0 {
		card.FinalPrice = p.FinalPrice.StringFixed(2)
		card.DiscountBadge = fmt.Sprintf("%d%% OFF", p.Discount)
	}
	return card
}

// NewProductCards projects a product list.
func NewProductCards(products []models.Product) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, NewProductCard(p))
	}
	return cards
}

// OrderSummary is the rendered order history row.
type OrderSummary struct {
	ID       string     `json:"id"`
	Status   string     `json:"status"`
	PlacedAt string     `json:"placedAt"`
	Lines    []CartLine `json:"lines"`
	Total    string     `json:"total"`
}

// NewOrderSummary projects an order into a summary view.
func NewOrderSummary(o models.Order) OrderSummary {
	return OrderSummary{
		ID:       o.ID,
		Status:   o.Status,
		PlacedAt: o.CreatedAt.Format(time.RFC3339),
		Lines:    NewCart(o.Items).Lines,
		Total:    o.Total.StringFixed(2),
	}
}
