package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/models"
)

// GetProducts retrieves the full product list, newest first
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products ORDER BY created_at DESC")
	return products, err
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a new product
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, discount, final_price, stock, images, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	return s.db.GetContext(ctx, &product.CreatedAt, query,
		product.ID, product.Name, product.Description, product.Price,
		product.Discount, product.FinalPrice, product.Stock, product.Images, product.Category)
}

// DeleteProduct removes a product
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetCategories retrieves all categories
func (s *Store) GetCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.SelectContext(ctx, &categories,
		"SELECT * FROM categories ORDER BY name")
	return categories, err
}

// CreateCategory inserts a new category
func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name)
		VALUES ($1, $2)
		RETURNING created_at`

	return s.db.GetContext(ctx, &category.CreatedAt, query, category.ID, category.Name)
}

// UpdateCategory renames a category
func (s *Store) UpdateCategory(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE categories SET name = $1 WHERE id = $2", name, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteCategory removes a category. The delete is blocked while any product
// still references it.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM products WHERE category = $1", id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("category %s has %d products: %w", id, count, ErrCategoryInUse)
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetOffers retrieves all offers, newest first
func (s *Store) GetOffers(ctx context.Context) ([]models.Offer, error) {
	var offers []models.Offer
	err := s.db.SelectContext(ctx, &offers,
		"SELECT * FROM offers ORDER BY created_at DESC")
	return offers, err
}

// CreateOffer inserts a new offer
func (s *Store) CreateOffer(ctx context.Context, offer *models.Offer) error {
	query := `
		INSERT INTO offers (id, title, description, discount, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	return s.db.GetContext(ctx, &offer.CreatedAt, query,
		offer.ID, offer.Title, offer.Description, offer.Discount, offer.Image)
}

// DeleteOffer removes an offer
func (s *Store) DeleteOffer(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM offers WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("offer %s: %w", id, ErrNotFound)
	}
	return nil
}
