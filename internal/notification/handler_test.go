package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/seller-panel/internal/events"
)

type fakeSender struct {
	newOrders     []string
	cancellations []string
	err           error
}

func (f *fakeSender) SendNewOrderAlert(_, number, _ string, _, _ int) error {
	if f.err != nil {
		return f.err
	}
	f.newOrders = append(f.newOrders, number)
	return nil
}

func (f *fakeSender) SendCancellationAlert(_, number, _, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.cancellations = append(f.cancellations, number)
	return nil
}

func marshalEnvelope(t *testing.T, eventType, orderID string, payload any) []byte {
	t.Helper()
	env, err := events.Wrap(eventType, orderID, payload)
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return raw
}

func TestHandleEvent_OrderPlaced(t *testing.T) {
	sender := &fakeSender{}
	handler := NewHandler(sender, "orders@example.com")

	raw := marshalEnvelope(t, events.TypeOrderPlaced, "order-1", events.OrderPlaced{
		OrderID:      "order-1",
		Number:       "ORD-000001",
		CustomerName: "Иван",
		Total:        4000,
		ItemCount:    2,
	})

	err := handler.HandleEvent(context.Background(), "order-1", raw)

	require.NoError(t, err)
	assert.Equal(t, []string{"ORD-000001"}, sender.newOrders)
	assert.Empty(t, sender.cancellations)
}

func TestHandleEvent_OrderCancelled(t *testing.T) {
	sender := &fakeSender{}
	handler := NewHandler(sender, "orders@example.com")

	raw := marshalEnvelope(t, events.TypeOrderCancelled, "order-1", events.OrderCancelled{
		OrderID:     "order-1",
		Number:      "ORD-000001",
		PriorStatus: "PAID",
		Reason:      "передумал",
	})

	err := handler.HandleEvent(context.Background(), "order-1", raw)

	require.NoError(t, err)
	assert.Equal(t, []string{"ORD-000001"}, sender.cancellations)
}

func TestHandleEvent_OrderUpdated_Ignored(t *testing.T) {
	sender := &fakeSender{}
	handler := NewHandler(sender, "orders@example.com")

	raw := marshalEnvelope(t, events.TypeOrderUpdated, "order-1", events.OrderUpdated{
		OrderID: "order-1",
		Number:  "ORD-000001",
	})

	err := handler.HandleEvent(context.Background(), "order-1", raw)

	require.NoError(t, err)
	assert.Empty(t, sender.newOrders)
	assert.Empty(t, sender.cancellations)
}

func TestHandleEvent_MalformedPayload(t *testing.T) {
	handler := NewHandler(&fakeSender{}, "orders@example.com")

	err := handler.HandleEvent(context.Background(), "order-1", []byte("not json"))

	assert.Error(t, err)
}

func TestHandleEvent_SendFailureSurfaces(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	handler := NewHandler(sender, "orders@example.com")

	raw := marshalEnvelope(t, events.TypeOrderPlaced, "order-1", events.OrderPlaced{
		OrderID: "order-1",
		Number:  "ORD-000001",
	})

	err := handler.HandleEvent(context.Background(), "order-1", raw)

	assert.Error(t, err)
}
