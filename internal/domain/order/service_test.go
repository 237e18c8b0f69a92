package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/seller-panel/internal/domain/order"
	"github.com/example/seller-panel/internal/events"
	"github.com/example/seller-panel/internal/infrastructure/store/mocks"
)

func newTestService() (*order.Service, *mocks.MockOrderStore, *mocks.MockPublisher) {
	store := mocks.NewMockOrderStore()
	publisher := mocks.NewMockPublisher()
	return order.NewService(store, publisher), store, publisher
}

func strPtr(s string) *string { return &s }

func seedOrder(store *mocks.MockOrderStore, status order.Status, paymentStatus order.PaymentStatus) *order.Order {
	store.AddVariant("variant-a", 1000, 10)
	store.AddVariant("variant-b", 2000, 5)
	o := &order.Order{
		ID:              "order-1",
		Number:          "ORD-000001",
		Status:          status,
		CustomerName:    "Иван",
		CustomerPhone:   "+79990000000",
		CustomerAddress: "Москва, Тверская 1",
		ContactType:     order.ContactWhatsApp,
		Items: []order.Item{
			{ID: 1, VariantID: "variant-a", Quantity: 3, UnitPrice: 1000},
			{ID: 2, VariantID: "variant-b", Quantity: 1, UnitPrice: 2000},
		},
	}
	if paymentStatus != "" {
		o.Payment = &order.Payment{OrderID: o.ID, Status: paymentStatus, Amount: 5000}
	}
	store.AddOrder(o)
	return o
}

var meta = order.Meta{Actor: "admin@example.com", IP: "10.0.0.1", UserAgent: "panel/1.0"}

// ============================================
// Cancellation
// ============================================

func TestService_Update_CancellationRestocksAndWritesOneAuditRow(t *testing.T) {
	svc, store, publisher := newTestService()
	seedOrder(store, order.StatusPaid, order.PaymentSuccess)
	ctx := context.Background()

	updated, err := svc.Update(ctx, "order-1", order.UpdateRequest{
		Status:  strPtr("CANCELLED"),
		Comment: "customer asked for a refund",
	}, meta)

	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, updated.Status)

	// Reserved stock returned per line item.
	assert.Equal(t, 13, store.Variants["variant-a"].Quantity)
	assert.Equal(t, 6, store.Variants["variant-b"].Quantity)

	// Exactly one consolidated audit entry.
	require.Len(t, store.Audits, 1)
	entry := store.Audits[0]
	assert.Equal(t, order.ActionStatusChange, entry.Action)
	assert.Equal(t, "status", entry.Field)
	assert.Equal(t, "PAID", entry.OldValue)
	assert.Equal(t, "CANCELLED", entry.NewValue)
	assert.Equal(t, "customer asked for a refund", entry.Comment)
	assert.Equal(t, "admin@example.com", entry.Actor)
	assert.Equal(t, "10.0.0.1", entry.IP)

	// Cancellation event published after commit.
	require.Len(t, publisher.Published, 1)
	env := publisher.Published[0].Event.(*events.Envelope)
	assert.Equal(t, events.TypeOrderCancelled, env.Type)
}

func TestService_Update_SecondCancellationRejected(t *testing.T) {
	svc, store, _ := newTestService()
	seedOrder(store, order.StatusPaid, "")
	ctx := context.Background()

	_, err := svc.Update(ctx, "order-1", order.UpdateRequest{Status: strPtr("CANCELLED")}, meta)
	require.NoError(t, err)

	_, err = svc.Update(ctx, "order-1", order.UpdateRequest{Status: strPtr("CANCELLED")}, meta)
	assert.ErrorIs(t, err, order.ErrCancelledOrderLocked)

	// Stock is credited once, never twice.
	assert.Equal(t, 13, store.Variants["variant-a"].Quantity)
	assert.Len(t, store.Audits, 1)
}

// ============================================
// Multi-field update
// ============================================

func TestService_Update_MultiFieldWritesOneAuditRowPerChange(t *testing.T) {
	svc, store, _ := newTestService()
	seedOrder(store, order.StatusPending, "")
	ctx := context.Background()

	updated, err := svc.Update(ctx, "order-1", order.UpdateRequest{
		CustomerName: strPtr("Пётр"),
		Status:       strPtr("PAID"),
	}, meta)

	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, updated.Status)
	assert.Equal(t, "Пётр", updated.CustomerName)

	require.Len(t, store.Audits, 2)

	byField := map[string]order.Audit{}
	for _, a := range store.Audits {
		byField[a.Field] = a
	}

	status := byField["status"]
	assert.Equal(t, order.ActionStatusChange, status.Action)
	assert.Equal(t, "PENDING", status.OldValue)
	assert.Equal(t, "PAID", status.NewValue)

	name := byField["customerName"]
	assert.Equal(t, order.ActionUpdate, name.Action)
	assert.Equal(t, "Иван", name.OldValue)
	assert.Equal(t, "Пётр", name.NewValue)
}

func TestService_Update_PaymentStatusChangePersistsPaymentRow(t *testing.T) {
	svc, store, _ := newTestService()
	seedOrder(store, order.StatusPending, order.PaymentPending)
	ctx := context.Background()

	updated, err := svc.Update(ctx, "order-1", order.UpdateRequest{PaymentStatus: strPtr("SUCCESS")}, meta)

	require.NoError(t, err)
	assert.Equal(t, order.PaymentSuccess, updated.Payment.Status)
	assert.Equal(t, order.PaymentSuccess, store.Orders["order-1"].Payment.Status)

	require.Len(t, store.Audits, 1)
	assert.Equal(t, "paymentStatus", store.Audits[0].Field)
	assert.Equal(t, order.ActionUpdate, store.Audits[0].Action)
}

// ============================================
// Rejections
// ============================================

func TestService_Update_RejectedEditLeavesNoTrace(t *testing.T) {
	svc, store, publisher := newTestService()
	before := seedOrder(store, order.StatusCompleted, order.PaymentSuccess)
	ctx := context.Background()

	_, err := svc.Update(ctx, "order-1", order.UpdateRequest{CustomerPhone: strPtr("+1234567890")}, meta)

	assert.ErrorIs(t, err, order.ErrCompletedOrderLocked)
	assert.Empty(t, store.Audits)
	assert.Empty(t, publisher.Published)

	after := store.Orders["order-1"]
	assert.Equal(t, before.CustomerPhone, after.CustomerPhone)
	assert.Equal(t, before.Status, after.Status)
}

func TestService_Update_InvalidEnumRejectedBeforeTransaction(t *testing.T) {
	svc, store, _ := newTestService()
	seedOrder(store, order.StatusPending, "")
	// Any attempt to open a transaction would fail loudly.
	store.BeginErr = errors.New("transaction must not be opened")
	ctx := context.Background()

	_, err := svc.Update(ctx, "order-1", order.UpdateRequest{Status: strPtr("SHIPPEDD")}, meta)

	assert.ErrorIs(t, err, order.ErrInvalidStatus)
	assert.Empty(t, store.Audits)
}

func TestService_Update_OrderNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Update(ctx, "missing", order.UpdateRequest{Status: strPtr("PAID")}, meta)

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

// ============================================
// Idempotence
// ============================================

func TestService_Update_IdenticalRequestIsIdempotent(t *testing.T) {
	svc, store, _ := newTestService()
	seedOrder(store, order.StatusPending, "")
	ctx := context.Background()

	req := order.UpdateRequest{CustomerName: strPtr("Пётр"), Status: strPtr("PAID")}

	_, err := svc.Update(ctx, "order-1", req, meta)
	require.NoError(t, err)
	require.Len(t, store.Audits, 2)

	// Re-applying the identical change-set detects no differences.
	updated, err := svc.Update(ctx, "order-1", req, meta)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, updated.Status)
	assert.Len(t, store.Audits, 2)
}

// ============================================
// Atomicity
// ============================================

func TestService_Update_AuditFailureRollsBackEverything(t *testing.T) {
	svc, store, publisher := newTestService()
	seedOrder(store, order.StatusPaid, "")
	store.InsertAuditErr = errors.New("disk full")
	ctx := context.Background()

	_, err := svc.Update(ctx, "order-1", order.UpdateRequest{Status: strPtr("CANCELLED")}, meta)

	assert.Error(t, err)
	// Nothing committed: status, stock and audit trail are untouched.
	assert.Equal(t, order.StatusPaid, store.Orders["order-1"].Status)
	assert.Equal(t, 10, store.Variants["variant-a"].Quantity)
	assert.Equal(t, 5, store.Variants["variant-b"].Quantity)
	assert.Empty(t, store.Audits)
	assert.Empty(t, publisher.Published)
}

func TestService_Update_StockFailureRollsBackOrderUpdate(t *testing.T) {
	svc, store, _ := newTestService()
	seedOrder(store, order.StatusPaid, "")
	store.AddStockErr = errors.New("variant row gone")
	ctx := context.Background()

	_, err := svc.Update(ctx, "order-1", order.UpdateRequest{Status: strPtr("CANCELLED")}, meta)

	assert.Error(t, err)
	assert.Equal(t, order.StatusPaid, store.Orders["order-1"].Status)
	assert.Empty(t, store.Audits)
}

func TestService_Update_PublishFailureDoesNotFailTheRequest(t *testing.T) {
	svc, store, publisher := newTestService()
	seedOrder(store, order.StatusPending, "")
	publisher.PublishErr = errors.New("broker down")
	ctx := context.Background()

	updated, err := svc.Update(ctx, "order-1", order.UpdateRequest{Status: strPtr("PAID")}, meta)

	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, updated.Status)
	assert.Len(t, store.Audits, 1)
}

// ============================================
// Place
// ============================================

func TestService_Place_Success(t *testing.T) {
	svc, store, publisher := newTestService()
	store.AddVariant("variant-a", 1000, 10)
	store.AddVariant("variant-b", 2000, 5)
	ctx := context.Background()

	o, err := svc.Place(ctx, order.PlaceRequest{
		CustomerName:    " Иван ",
		CustomerPhone:   "+79990000000",
		CustomerAddress: "Москва",
		ContactType:     order.ContactCall,
		Items: []order.PlaceItem{
			{VariantID: "variant-a", Quantity: 2},
			{VariantID: "variant-b", Quantity: 1},
		},
	}, meta)

	require.NoError(t, err)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "ORD-000001", o.Number)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, "Иван", o.CustomerName)
	assert.Equal(t, 4000, o.Total())
	assert.Equal(t, 3, o.ItemCount())

	// Prices captured from the variants, stock reserved.
	assert.Equal(t, 1000, o.Items[0].UnitPrice)
	assert.Equal(t, 8, store.Variants["variant-a"].Quantity)
	assert.Equal(t, 4, store.Variants["variant-b"].Quantity)

	// Payment row opened as PENDING for the full amount.
	require.NotNil(t, o.Payment)
	assert.Equal(t, order.PaymentPending, o.Payment.Status)
	assert.Equal(t, 4000, o.Payment.Amount)

	// Opening audit entry.
	require.Len(t, store.Audits, 1)
	assert.Equal(t, order.ActionStatusChange, store.Audits[0].Action)
	assert.Equal(t, "PENDING", store.Audits[0].NewValue)

	require.Len(t, publisher.Published, 1)
	env := publisher.Published[0].Event.(*events.Envelope)
	assert.Equal(t, events.TypeOrderPlaced, env.Type)
}

func TestService_Place_EmptyItems(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Place(ctx, order.PlaceRequest{ContactType: order.ContactCall}, meta)

	assert.ErrorIs(t, err, order.ErrEmptyOrder)
}

func TestService_Place_InvalidQuantity(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Place(ctx, order.PlaceRequest{
		ContactType: order.ContactCall,
		Items:       []order.PlaceItem{{VariantID: "variant-a", Quantity: 0}},
	}, meta)

	assert.ErrorIs(t, err, order.ErrInvalidQuantity)
}

func TestService_Place_InsufficientStockRollsBack(t *testing.T) {
	svc, store, _ := newTestService()
	store.AddVariant("variant-a", 1000, 10)
	store.AddVariant("variant-b", 2000, 0)
	ctx := context.Background()

	_, err := svc.Place(ctx, order.PlaceRequest{
		CustomerName: "Иван",
		ContactType:  order.ContactWhatsApp,
		Items: []order.PlaceItem{
			{VariantID: "variant-a", Quantity: 2},
			{VariantID: "variant-b", Quantity: 1},
		},
	}, meta)

	assert.ErrorIs(t, err, order.ErrInsufficientStock)
	// The first item's reservation is rolled back with the rest.
	assert.Equal(t, 10, store.Variants["variant-a"].Quantity)
	assert.Empty(t, store.Orders)
	assert.Empty(t, store.Audits)
}

// ============================================
// History
// ============================================

func TestService_History_NewestFirst(t *testing.T) {
	svc, store, _ := newTestService()
	seedOrder(store, order.StatusPending, "")
	ctx := context.Background()

	_, err := svc.Update(ctx, "order-1", order.UpdateRequest{Status: strPtr("PAID")}, meta)
	require.NoError(t, err)
	_, err = svc.Update(ctx, "order-1", order.UpdateRequest{Status: strPtr("SHIPPED")}, meta)
	require.NoError(t, err)

	history, err := svc.History(ctx, "order-1")

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "SHIPPED", history[0].NewValue)
	assert.Equal(t, "PAID", history[1].NewValue)
}

func TestService_History_OrderNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.History(ctx, "missing")

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}
