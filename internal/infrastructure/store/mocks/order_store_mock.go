package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/seller-panel/internal/domain/order"
)

// MockVariant is the slice of a product variant the order pipeline touches.
type MockVariant struct {
	Price    int
	Quantity int
}

// MockOrderStore is an in-memory implementation of order.Store for testing.
// WithinTx stages all writes and applies them only when the callback succeeds,
// mirroring the commit/rollback behaviour of the real store.
type MockOrderStore struct {
	mu         sync.Mutex
	Orders     map[string]*order.Order
	Variants   map[string]*MockVariant
	Audits     []order.Audit
	nextNumber int

	// Failure injection
	BeginErr         error
	CreateOrderErr   error
	UpdateOrderErr   error
	CreatePaymentErr error
	UpdatePaymentErr error
	InsertAuditErr   error
	TakeStockErr     error
	AddStockErr      error
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		Orders:   make(map[string]*order.Order),
		Variants: make(map[string]*MockVariant),
	}
}

// AddOrder seeds an order.
func (m *MockOrderStore) AddOrder(o *order.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders[o.ID] = cloneOrder(o)
}

// AddVariant seeds a product variant.
func (m *MockOrderStore) AddVariant(id string, price, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Variants[id] = &MockVariant{Price: price, Quantity: quantity}
}

func (m *MockOrderStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.Orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (m *MockOrderStore) ListOrders(ctx context.Context, status order.Status, limit, offset int) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*order.Order
	for _, o := range m.Orders {
		if status == "" || o.Status == status {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

// ListAudits returns the audit trail newest-first.
func (m *MockOrderStore) ListAudits(ctx context.Context, orderID string) ([]order.Audit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []order.Audit
	for i := len(m.Audits) - 1; i >= 0; i-- {
		if m.Audits[i].OrderID == orderID {
			out = append(out, m.Audits[i])
		}
	}
	return out, nil
}

func (m *MockOrderStore) WithinTx(ctx context.Context, fn func(tx order.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.BeginErr != nil {
		return m.BeginErr
	}

	tx := &mockTx{
		store:    m,
		orders:   make(map[string]*order.Order, len(m.Orders)),
		variants: make(map[string]*MockVariant, len(m.Variants)),
	}
	for id, o := range m.Orders {
		tx.orders[id] = cloneOrder(o)
	}
	for id, v := range m.Variants {
		copied := *v
		tx.variants[id] = &copied
	}

	if err := fn(tx); err != nil {
		return err // staged state is discarded
	}

	m.Orders = tx.orders
	m.Variants = tx.variants
	m.Audits = append(m.Audits, tx.audits...)
	return nil
}

// mockTx holds the staged state of one transaction.
type mockTx struct {
	store    *MockOrderStore
	orders   map[string]*order.Order
	variants map[string]*MockVariant
	audits   []order.Audit
}

func (t *mockTx) GetOrderForUpdate(ctx context.Context, id string) (*order.Order, error) {
	o, ok := t.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (t *mockTx) CreateOrder(ctx context.Context, o *order.Order) error {
	if t.store.CreateOrderErr != nil {
		return t.store.CreateOrderErr
	}
	t.orders[o.ID] = cloneOrder(o)
	return nil
}

func (t *mockTx) UpdateOrder(ctx context.Context, o *order.Order) error {
	if t.store.UpdateOrderErr != nil {
		return t.store.UpdateOrderErr
	}
	if _, ok := t.orders[o.ID]; !ok {
		return order.ErrOrderNotFound
	}
	t.orders[o.ID] = cloneOrder(o)
	return nil
}

func (t *mockTx) CreatePayment(ctx context.Context, p *order.Payment) error {
	if t.store.CreatePaymentErr != nil {
		return t.store.CreatePaymentErr
	}
	o, ok := t.orders[p.OrderID]
	if !ok {
		return order.ErrOrderNotFound
	}
	copied := *p
	o.Payment = &copied
	return nil
}

func (t *mockTx) UpdatePayment(ctx context.Context, p *order.Payment) error {
	if t.store.UpdatePaymentErr != nil {
		return t.store.UpdatePaymentErr
	}
	return t.CreatePayment(ctx, p)
}

func (t *mockTx) TakeVariantStock(ctx context.Context, variantID string, qty int) (int, error) {
	if t.store.TakeStockErr != nil {
		return 0, t.store.TakeStockErr
	}
	v, ok := t.variants[variantID]
	if !ok {
		return 0, order.ErrVariantNotFound
	}
	if v.Quantity < qty {
		return 0, order.ErrInsufficientStock
	}
	v.Quantity -= qty
	return v.Price, nil
}

func (t *mockTx) AddVariantStock(ctx context.Context, variantID string, qty int) error {
	if t.store.AddStockErr != nil {
		return t.store.AddStockErr
	}
	v, ok := t.variants[variantID]
	if !ok {
		return order.ErrVariantNotFound
	}
	v.Quantity += qty
	return nil
}

func (t *mockTx) InsertAudit(ctx context.Context, a *order.Audit) error {
	if t.store.InsertAuditErr != nil {
		return t.store.InsertAuditErr
	}
	t.audits = append(t.audits, *a)
	return nil
}

func (t *mockTx) NextOrderNumber(ctx context.Context) (string, error) {
	t.store.nextNumber++
	return fmt.Sprintf("ORD-%06d", t.store.nextNumber), nil
}

func cloneOrder(o *order.Order) *order.Order {
	copied := *o
	copied.Items = append([]order.Item(nil), o.Items...)
	if o.Payment != nil {
		p := *o.Payment
		copied.Payment = &p
	}
	return &copied
}
