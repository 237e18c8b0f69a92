package store

import (
	"context"
	"database/sql"
	"fmt"
)

// DashboardSummary is the panel landing page snapshot.
type DashboardSummary struct {
	OrdersByStatus map[string]int    `json:"orders_by_status"`
	OrdersToday    int               `json:"orders_today"`
	RevenueToday   int               `json:"revenue_today"`
	LowStock       []LowStockVariant `json:"low_stock"`
}

// LowStockVariant flags variants running out.
type LowStockVariant struct {
	VariantID string `json:"variant_id"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
}

const lowStockThreshold = 5

// PostgresDashboardStore aggregates panel metrics straight from Postgres.
type PostgresDashboardStore struct {
	db *sql.DB
}

func NewPostgresDashboardStore(db *sql.DB) *PostgresDashboardStore {
	return &PostgresDashboardStore{db: db}
}

func (s *PostgresDashboardStore) Summary(ctx context.Context) (*DashboardSummary, error) {
	summary := &DashboardSummary{
		OrdersByStatus: make(map[string]int),
		LowStock:       []LowStockVariant{},
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		summary.OrdersByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Revenue counts only paid-side statuses; pending and cancelled money
	// is not revenue yet.
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN o.status IN ('PAID', 'SHIPPED', 'COMPLETED') THEN p.amount ELSE 0 END), 0)
		FROM orders o
		LEFT JOIN payments p ON p.order_id = o.id
		WHERE o.created_at >= date_trunc('day', now())`).
		Scan(&summary.OrdersToday, &summary.RevenueToday)
	if err != nil {
		return nil, fmt.Errorf("failed to compute today stats: %w", err)
	}

	low, err := s.db.QueryContext(ctx, `
		SELECT id, sku, quantity FROM product_variants
		WHERE quantity <= $1 ORDER BY quantity ASC, sku ASC LIMIT 20`, lowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	defer low.Close()
	for low.Next() {
		var v LowStockVariant
		if err := low.Scan(&v.VariantID, &v.SKU, &v.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan low stock: %w", err)
		}
		summary.LowStock = append(summary.LowStock, v)
	}
	return summary, low.Err()
}
