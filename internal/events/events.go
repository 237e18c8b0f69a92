// Package events defines the envelope and payloads published to the order
// event stream. The same shapes travel over Kafka locally and over the
// DynamoDB-to-Kinesis pipeline on AWS.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TypeOrderPlaced    = "OrderPlaced"
	TypeOrderUpdated   = "OrderUpdated"
	TypeOrderCancelled = "OrderCancelled"
)

// Envelope wraps one published event.
type Envelope struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Wrap serialises a payload into a new envelope.
func Wrap(eventType, orderID string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}, nil
}

type OrderPlaced struct {
	OrderID      string    `json:"order_id"`
	Number       string    `json:"number"`
	CustomerName string    `json:"customer_name"`
	Total        int       `json:"total"`
	ItemCount    int       `json:"item_count"`
	PlacedAt     time.Time `json:"placed_at"`
}

type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

type OrderUpdated struct {
	OrderID   string        `json:"order_id"`
	Number    string        `json:"number"`
	Changes   []FieldChange `json:"changes"`
	Actor     string        `json:"actor"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type OrderCancelled struct {
	OrderID     string    `json:"order_id"`
	Number      string    `json:"number"`
	PriorStatus string    `json:"prior_status"`
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelled_at"`
}
