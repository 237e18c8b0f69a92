package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/seller-panel/internal/domain/product"
)

// PostgresProductStore implements product.Store on top of Postgres.
type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (s *PostgresProductStore) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, COALESCE(category_id, ''), COALESCE(image_url, ''), is_active, created_at, updated_at
		FROM products WHERE id = $1`, id)

	p := &product.Product{}
	var categoryID string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &categoryID, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, product.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	p.CategoryID = categoryID

	if err := s.attachVariants(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresProductStore) ListProducts(ctx context.Context, categoryID string) ([]*product.Product, error) {
	query := `
		SELECT id, name, description, COALESCE(category_id, ''), COALESCE(image_url, ''), is_active, created_at, updated_at
		FROM products`
	args := []any{}
	if categoryID != "" {
		query += " WHERE category_id = $1"
		args = append(args, categoryID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*product.Product
	for rows.Next() {
		p := &product.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range products {
		if err := s.attachVariants(ctx, p); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (s *PostgresProductStore) CreateProduct(ctx context.Context, p *product.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, category_id, image_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8)`,
		p.ID, p.Name, p.Description, p.CategoryID, p.ImageURL, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (s *PostgresProductStore) UpdateProduct(ctx context.Context, p *product.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, category_id = NULLIF($4, ''), image_url = NULLIF($5, ''), is_active = $6, updated_at = $7
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.CategoryID, p.ImageURL, p.IsActive, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

func (s *PostgresProductStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

func (s *PostgresProductStore) GetVariant(ctx context.Context, id string) (*product.Variant, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, product_id, sku, COALESCE(size, ''), COALESCE(color, ''), price, quantity
		FROM product_variants WHERE id = $1`, id)

	v := &product.Variant{}
	err := row.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Size, &v.Color, &v.Price, &v.Quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, product.ErrVariantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get variant: %w", err)
	}
	return v, nil
}

func (s *PostgresProductStore) CreateVariant(ctx context.Context, v *product.Variant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO product_variants (id, product_id, sku, size, color, price, quantity)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)`,
		v.ID, v.ProductID, v.SKU, v.Size, v.Color, v.Price, v.Quantity)
	if err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

func (s *PostgresProductStore) UpdateVariant(ctx context.Context, v *product.Variant) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE product_variants
		SET sku = $2, size = NULLIF($3, ''), color = NULLIF($4, ''), price = $5
		WHERE id = $1`,
		v.ID, v.SKU, v.Size, v.Color, v.Price)
	if err != nil {
		return fmt.Errorf("failed to update variant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return product.ErrVariantNotFound
	}
	return nil
}

// AdjustVariantStock applies the delta in a single statement so concurrent
// corrections never interleave into a negative quantity.
func (s *PostgresProductStore) AdjustVariantStock(ctx context.Context, id string, delta int) (int, error) {
	var quantity int
	err := s.db.QueryRowContext(ctx, `
		UPDATE product_variants
		SET quantity = quantity + $2
		WHERE id = $1 AND quantity + $2 >= 0
		RETURNING quantity`, id, delta).Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if checkErr := s.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM product_variants WHERE id = $1)`, id).Scan(&exists); checkErr != nil {
			return 0, fmt.Errorf("failed to check variant: %w", checkErr)
		}
		if !exists {
			return 0, product.ErrVariantNotFound
		}
		return 0, product.ErrStockBelowZero
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust stock: %w", err)
	}
	return quantity, nil
}

func (s *PostgresProductStore) attachVariants(ctx context.Context, p *product.Product) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, sku, COALESCE(size, ''), COALESCE(color, ''), price, quantity
		FROM product_variants WHERE product_id = $1 ORDER BY sku ASC`, p.ID)
	if err != nil {
		return fmt.Errorf("failed to load variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v := product.Variant{}
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Size, &v.Color, &v.Price, &v.Quantity); err != nil {
			return fmt.Errorf("failed to scan variant: %w", err)
		}
		p.Variants = append(p.Variants, v)
	}
	return rows.Err()
}
