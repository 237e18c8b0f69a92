package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/seller-panel/internal/events"
)

// AlertSender is the slice of the email service the notifier needs.
type AlertSender interface {
	SendNewOrderAlert(to, number, customerName string, total, itemCount int) error
	SendCancellationAlert(to, number, priorStatus, reason string) error
}

// Handler turns order events into email alerts for the panel inbox.
type Handler struct {
	sender AlertSender
	inbox  string
}

// NewHandler creates a new notification handler
func NewHandler(sender AlertSender, inbox string) *Handler {
	return &Handler{sender: sender, inbox: inbox}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(_ context.Context, _ string, value []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	switch env.Type {
	case events.TypeOrderPlaced:
		return h.handleOrderPlaced(env)
	case events.TypeOrderCancelled:
		return h.handleOrderCancelled(env)
	default:
		// Updates are visible in the audit trail, no email needed.
		return nil
	}
}

func (h *Handler) handleOrderPlaced(env events.Envelope) error {
	var e events.OrderPlaced
	if err := json.Unmarshal(env.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderPlaced event: %v", err)
		return err
	}

	if err := h.sender.SendNewOrderAlert(h.inbox, e.Number, e.CustomerName, e.Total, e.ItemCount); err != nil {
		log.Printf("[Notifier] Failed to send new order alert for %s: %v", e.Number, err)
		return err
	}

	log.Printf("[Notifier] New order alert sent for %s", e.Number)
	return nil
}

func (h *Handler) handleOrderCancelled(env events.Envelope) error {
	var e events.OrderCancelled
	if err := json.Unmarshal(env.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal OrderCancelled event: %v", err)
		return err
	}

	if err := h.sender.SendCancellationAlert(h.inbox, e.Number, e.PriorStatus, e.Reason); err != nil {
		log.Printf("[Notifier] Failed to send cancellation alert for %s: %v", e.Number, err)
		return err
	}

	log.Printf("[Notifier] Cancellation alert sent for %s", e.Number)
	return nil
}
