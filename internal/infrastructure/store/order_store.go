package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/example/seller-panel/internal/domain/order"
)

// PostgresOrderStore implements order.Store over PostgreSQL.
type PostgresOrderStore struct {
	db *sql.DB
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

const orderColumns = `id, number, status, customer_name, customer_phone, customer_address, contact_type, created_at, updated_at`

func (s *PostgresOrderStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return scanFullOrder(ctx, s.db, id, false)
}

func (s *PostgresOrderStore) ListOrders(ctx context.Context, status order.Status, limit, offset int) ([]*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o := &order.Order{}
		if err := rows.Scan(&o.ID, &o.Number, &o.Status, &o.CustomerName, &o.CustomerPhone,
			&o.CustomerAddress, &o.ContactType, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		if err := attachItemsAndPayment(ctx, s.db, o, false); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *PostgresOrderStore) ListAudits(ctx context.Context, orderID string) ([]order.Audit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, order_id, action, COALESCE(field, ''), old_value, new_value, actor, comment, ip, user_agent, created_at
		 FROM order_audits
		 WHERE order_id = $1
		 ORDER BY created_at DESC, id DESC`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer rows.Close()

	var audits []order.Audit
	for rows.Next() {
		var a order.Audit
		if err := rows.Scan(&a.ID, &a.OrderID, &a.Action, &a.Field, &a.OldValue, &a.NewValue,
			&a.Actor, &a.Comment, &a.IP, &a.UserAgent, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}

// WithinTx runs fn inside one transaction. Anything fn persists through the Tx
// commits together or rolls back together.
func (s *PostgresOrderStore) WithinTx(ctx context.Context, fn func(tx order.Tx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&orderTx{tx: dbTx}); err != nil {
		if rbErr := dbTx.Rollback(); rbErr != nil {
			log.Printf("[Store] Rollback failed: %v", rbErr)
		}
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// orderTx adapts *sql.Tx to order.Tx.
type orderTx struct {
	tx *sql.Tx
}

func (t *orderTx) GetOrderForUpdate(ctx context.Context, id string) (*order.Order, error) {
	return scanFullOrder(ctx, t.tx, id, true)
}

func (t *orderTx) CreateOrder(ctx context.Context, o *order.Order) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO orders (id, number, status, customer_name, customer_phone, customer_address, contact_type, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.Number, string(o.Status), o.CustomerName, o.CustomerPhone, o.CustomerAddress,
		string(o.ContactType), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		err := t.tx.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, variant_id, quantity, unit_price)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			o.ID, item.VariantID, item.Quantity, item.UnitPrice,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (t *orderTx) UpdateOrder(ctx context.Context, o *order.Order) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE orders
		 SET status = $2, customer_name = $3, customer_phone = $4, customer_address = $5,
		     contact_type = $6, updated_at = $7
		 WHERE id = $1`,
		o.ID, string(o.Status), o.CustomerName, o.CustomerPhone, o.CustomerAddress,
		string(o.ContactType), o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

func (t *orderTx) CreatePayment(ctx context.Context, p *order.Payment) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO payments (order_id, status, amount) VALUES ($1, $2, $3)`,
		p.OrderID, string(p.Status), p.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (t *orderTx) UpdatePayment(ctx context.Context, p *order.Payment) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE payments SET status = $2 WHERE order_id = $1`,
		p.OrderID, string(p.Status),
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// The order had no payment row yet; the diff still recorded the change.
		return t.CreatePayment(ctx, p)
	}
	return nil
}

// TakeVariantStock reserves qty units in a single atomic update. The WHERE
// guard makes overselling impossible regardless of concurrent orders.
func (t *orderTx) TakeVariantStock(ctx context.Context, variantID string, qty int) (int, error) {
	var price int
	err := t.tx.QueryRowContext(ctx,
		`UPDATE product_variants
		 SET quantity = quantity - $2
		 WHERE id = $1 AND quantity >= $2
		 RETURNING price`,
		variantID, qty,
	).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := t.tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM product_variants WHERE id = $1)`, variantID,
		).Scan(&exists); err != nil {
			return 0, fmt.Errorf("check variant: %w", err)
		}
		if !exists {
			return 0, order.ErrVariantNotFound
		}
		return 0, order.ErrInsufficientStock
	}
	if err != nil {
		return 0, fmt.Errorf("take variant stock: %w", err)
	}
	return price, nil
}

// AddVariantStock returns qty units in a single atomic update, never
// read-modify-write in application code.
func (t *orderTx) AddVariantStock(ctx context.Context, variantID string, qty int) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE product_variants SET quantity = quantity + $2 WHERE id = $1`,
		variantID, qty,
	)
	if err != nil {
		return fmt.Errorf("add variant stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return order.ErrVariantNotFound
	}
	return nil
}

func (t *orderTx) InsertAudit(ctx context.Context, a *order.Audit) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO order_audits (id, order_id, action, field, old_value, new_value, actor, comment, ip, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.OrderID, string(a.Action), a.Field, a.OldValue, a.NewValue,
		a.Actor, a.Comment, a.IP, a.UserAgent, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

func (t *orderTx) NextOrderNumber(ctx context.Context) (string, error) {
	var n int64
	if err := t.tx.QueryRowContext(ctx, `SELECT nextval('order_number_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}
	return fmt.Sprintf("ORD-%06d", n), nil
}

// querier lets the scan helpers run against either *sql.DB or *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanFullOrder(ctx context.Context, q querier, id string, forUpdate bool) (*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	o := &order.Order{}
	err := q.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.Number, &o.Status, &o.CustomerName, &o.CustomerPhone,
		&o.CustomerAddress, &o.ContactType, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := attachItemsAndPayment(ctx, q, o, forUpdate); err != nil {
		return nil, err
	}
	return o, nil
}

func attachItemsAndPayment(ctx context.Context, q querier, o *order.Order, forUpdate bool) error {
	// Insertion order is the line order shown to the seller.
	rows, err := q.QueryContext(ctx,
		`SELECT id, variant_id, quantity, unit_price FROM order_items WHERE order_id = $1 ORDER BY id ASC`,
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item order.Item
		if err := rows.Scan(&item.ID, &item.VariantID, &item.Quantity, &item.UnitPrice); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	paymentQuery := `SELECT order_id, status, amount FROM payments WHERE order_id = $1`
	if forUpdate {
		paymentQuery += ` FOR UPDATE`
	}
	p := &order.Payment{}
	err = q.QueryRowContext(ctx, paymentQuery, o.ID).Scan(&p.OrderID, &p.Status, &p.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get payment: %w", err)
	}
	o.Payment = p
	return nil
}
