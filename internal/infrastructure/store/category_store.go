package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/seller-panel/internal/domain/category"
)

// PostgresCategoryStore implements category.Store on top of Postgres.
type PostgresCategoryStore struct {
	db *sql.DB
}

func NewPostgresCategoryStore(db *sql.DB) *PostgresCategoryStore {
	return &PostgresCategoryStore{db: db}
}

const categoryColumns = `id, name, COALESCE(parent_id, ''), sort_order, created_at, updated_at`

func (s *PostgresCategoryStore) GetCategory(ctx context.Context, id string) (*category.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	return scanCategory(row)
}

func (s *PostgresCategoryStore) ListCategories(ctx context.Context) ([]*category.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY sort_order ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

func (s *PostgresCategoryStore) ListChildren(ctx context.Context, parentID string) ([]*category.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE parent_id = $1 ORDER BY sort_order ASC, name ASC`, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer rows.Close()
	return collectCategories(rows)
}

func (s *PostgresCategoryStore) CreateCategory(ctx context.Context, c *category.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, parent_id, sort_order, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)`,
		c.ID, c.Name, c.ParentID, c.SortOrder, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (s *PostgresCategoryStore) UpdateCategory(ctx context.Context, c *category.Category) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories
		SET name = $2, parent_id = NULLIF($3, ''), sort_order = $4, updated_at = $5
		WHERE id = $1`,
		c.ID, c.Name, c.ParentID, c.SortOrder, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return category.ErrCategoryNotFound
	}
	return nil
}

func (s *PostgresCategoryStore) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return category.ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row *sql.Row) (*category.Category, error) {
	c := &category.Category{}
	err := row.Scan(&c.ID, &c.Name, &c.ParentID, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, category.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	return c, nil
}

func collectCategories(rows *sql.Rows) ([]*category.Category, error) {
	var out []*category.Category
	for rows.Next() {
		c := &category.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
