package order

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// statusRank is the nominal forward order. CANCELLED is a side exit and has no rank.
var statusRank = map[Status]int{
	StatusPending:   0,
	StatusPaid:      1,
	StatusShipped:   2,
	StatusCompleted: 3,
}

func (s Status) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentSuccess || s == PaymentFailed
}

type ContactType string

const (
	ContactWhatsApp ContactType = "WHATSAPP"
	ContactCall     ContactType = "CALL"
)

func (c ContactType) Valid() bool {
	return c == ContactWhatsApp || c == ContactCall
}

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrVariantNotFound = errors.New("product variant not found")

	ErrEmptyOrder      = errors.New("order must have at least one item")
	ErrInvalidQuantity = errors.New("quantity must be positive")

	ErrInsufficientStock = errors.New("insufficient stock")

	// Transition policy rejections, one per rule.
	ErrCompletedOrderLocked = errors.New("completed order accepts no change other than cancellation")
	ErrCancelledOrderLocked = errors.New("cancelled order cannot be edited")
	ErrPaidToPending        = errors.New("paid order cannot return to pending")
	ErrBackwardTransition   = errors.New("order cannot move back to an earlier status")
	ErrPaymentFinal         = errors.New("successful payment is immutable")

	// Invalid input.
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidContactType   = errors.New("invalid contact type")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

// Order is a customer purchase record. Items keep their insertion order, which is
// the line order shown in the panel.
type Order struct {
	ID              string      `json:"id"`
	Number          string      `json:"number"`
	Status          Status      `json:"status"`
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerAddress string      `json:"customer_address"`
	ContactType     ContactType `json:"contact_type"`
	Items           []Item      `json:"items"`
	Payment         *Payment    `json:"payment,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Item is one order line. UnitPrice is captured from the variant at order time
// and never changes afterwards.
type Item struct {
	ID        int64  `json:"id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
}

// Payment is the settlement record, 1:1 with its order.
type Payment struct {
	OrderID string        `json:"order_id"`
	Status  PaymentStatus `json:"status"`
	Amount  int           `json:"amount"`
}

// Total recomputes the order total from its line items.
func (o *Order) Total() int {
	var total int
	for _, item := range o.Items {
		total += item.UnitPrice * item.Quantity
	}
	return total
}

func (o *Order) ItemCount() int {
	var n int
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

type AuditAction string

const (
	ActionStatusChange AuditAction = "STATUS_CHANGE"
	ActionUpdate       AuditAction = "UPDATE"
)

// Audit is one immutable history entry: a single field change or a lifecycle
// event on an order. Entries are never updated or deleted.
type Audit struct {
	ID        string      `json:"id"`
	OrderID   string      `json:"order_id"`
	Action    AuditAction `json:"action"`
	Field     string      `json:"field,omitempty"`
	OldValue  string      `json:"old_value"`
	NewValue  string      `json:"new_value"`
	Actor     string      `json:"actor"`
	Comment   string      `json:"comment,omitempty"`
	IP        string      `json:"ip,omitempty"`
	UserAgent string      `json:"user_agent,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
