package order

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/seller-panel/internal/events"
)

// Store is the persistence boundary for orders. WithinTx runs fn inside one
// database transaction: everything fn does through the Tx commits together or
// not at all.
type Store interface {
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, status Status, limit, offset int) ([]*Order, error)
	ListAudits(ctx context.Context, orderID string) ([]Audit, error)
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of writes available inside one transaction.
type Tx interface {
	// GetOrderForUpdate loads the order with its items and payment and locks
	// the rows until the transaction ends.
	GetOrderForUpdate(ctx context.Context, id string) (*Order, error)
	CreateOrder(ctx context.Context, o *Order) error
	UpdateOrder(ctx context.Context, o *Order) error
	CreatePayment(ctx context.Context, p *Payment) error
	UpdatePayment(ctx context.Context, p *Payment) error
	// TakeVariantStock atomically decrements the variant's available quantity
	// and returns the current unit price. Fails with ErrInsufficientStock when
	// the variant holds less than qty.
	TakeVariantStock(ctx context.Context, variantID string, qty int) (unitPrice int, err error)
	// AddVariantStock atomically increments the variant's available quantity.
	AddVariantStock(ctx context.Context, variantID string, qty int) error
	InsertAudit(ctx context.Context, a *Audit) error
	NextOrderNumber(ctx context.Context) (string, error)
}

// Publisher pushes committed lifecycle events onto the event stream.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Meta identifies who issued a mutation, for audit attribution.
type Meta struct {
	Actor     string
	IP        string
	UserAgent string
}

// Service orchestrates order mutations: policy check, persistence, stock
// reconciliation and audit recording form one atomic unit.
type Service struct {
	store     Store
	publisher Publisher
}

func NewService(store Store, publisher Publisher) *Service {
	return &Service{store: store, publisher: publisher}
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]*Order, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListOrders(ctx, status, limit, offset)
}

// History returns the order's audit trail, newest first.
func (s *Service) History(ctx context.Context, orderID string) ([]Audit, error) {
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.store.ListAudits(ctx, orderID)
}

// PlaceItem is one requested order line.
type PlaceItem struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// PlaceRequest creates a new order in the PENDING state.
type PlaceRequest struct {
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerAddress string      `json:"customer_address"`
	ContactType     ContactType `json:"contact_type"`
	Items           []PlaceItem `json:"items"`
}

// Place creates the order, captures unit prices, reserves stock and writes the
// opening audit entry, all in one transaction.
func (s *Service) Place(ctx context.Context, req PlaceRequest, meta Meta) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}
	if !req.ContactType.Valid() {
		return nil, ErrInvalidContactType
	}

	now := time.Now()
	o := &Order{
		ID:              uuid.New().String(),
		Status:          StatusPending,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		ContactType:     req.ContactType,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.store.WithinTx(ctx, func(tx Tx) error {
		number, err := tx.NextOrderNumber(ctx)
		if err != nil {
			return err
		}
		o.Number = number

		for _, item := range req.Items {
			price, err := tx.TakeVariantStock(ctx, item.VariantID, item.Quantity)
			if err != nil {
				return err
			}
			o.Items = append(o.Items, Item{
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
				UnitPrice: price,
			})
		}

		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}

		o.Payment = &Payment{OrderID: o.ID, Status: PaymentPending, Amount: o.Total()}
		if err := tx.CreatePayment(ctx, o.Payment); err != nil {
			return err
		}

		return tx.InsertAudit(ctx, &Audit{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			Action:    ActionStatusChange,
			Field:     "status",
			NewValue:  string(StatusPending),
			Actor:     meta.Actor,
			IP:        meta.IP,
			UserAgent: meta.UserAgent,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, o.ID, events.TypeOrderPlaced, events.OrderPlaced{
		OrderID:      o.ID,
		Number:       o.Number,
		CustomerName: o.CustomerName,
		Total:        o.Total(),
		ItemCount:    o.ItemCount(),
		PlacedAt:     o.CreatedAt,
	})

	return o, nil
}

// Update applies one edit request to an order. The transition policy is checked
// before any transaction opens and re-checked against the locked row, so a
// rejected request never leaves audit entries behind. On cancellation every
// line item's quantity is returned to its variant and a single consolidated
// audit entry is written; any other approved change produces one audit entry
// per changed field.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, meta Meta) (*Order, error) {
	cur, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Approve(cur, req); err != nil {
		return nil, err
	}

	var (
		updated   *Order
		changes   []FieldChange
		cancelled bool
		prior     Status
	)

	err = s.store.WithinTx(ctx, func(tx Tx) error {
		o, err := tx.GetOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		// The row may have moved since the pre-check; the locked state decides.
		if err := Approve(o, req); err != nil {
			return err
		}

		prior = o.Status
		changes = Diff(o, req)
		updated = o
		if len(changes) == 0 {
			return nil
		}

		now := time.Now()
		paymentChanged := applyChanges(o, changes)
		o.UpdatedAt = now

		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		if paymentChanged {
			if err := tx.UpdatePayment(ctx, o.Payment); err != nil {
				return err
			}
		}

		cancelled = o.Status == StatusCancelled && prior != StatusCancelled
		if cancelled {
			for _, item := range o.Items {
				if err := tx.AddVariantStock(ctx, item.VariantID, item.Quantity); err != nil {
					return err
				}
			}
			// Cancellation is summarised in a single entry, whatever else the
			// request changed.
			return tx.InsertAudit(ctx, &Audit{
				ID:        uuid.New().String(),
				OrderID:   o.ID,
				Action:    ActionStatusChange,
				Field:     "status",
				OldValue:  string(prior),
				NewValue:  string(StatusCancelled),
				Actor:     meta.Actor,
				Comment:   req.Comment,
				IP:        meta.IP,
				UserAgent: meta.UserAgent,
				CreatedAt: now,
			})
		}

		for _, change := range changes {
			err := tx.InsertAudit(ctx, &Audit{
				ID:        uuid.New().String(),
				OrderID:   o.ID,
				Action:    change.Action,
				Field:     change.Field,
				OldValue:  change.Old,
				NewValue:  change.New,
				Actor:     meta.Actor,
				Comment:   req.Comment,
				IP:        meta.IP,
				UserAgent: meta.UserAgent,
				CreatedAt: now,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cancelled {
		s.publish(ctx, updated.ID, events.TypeOrderCancelled, events.OrderCancelled{
			OrderID:     updated.ID,
			Number:      updated.Number,
			PriorStatus: string(prior),
			Reason:      req.Comment,
			CancelledAt: updated.UpdatedAt,
		})
	} else if len(changes) > 0 {
		s.publish(ctx, updated.ID, events.TypeOrderUpdated, events.OrderUpdated{
			OrderID:   updated.ID,
			Number:    updated.Number,
			Changes:   toEventChanges(changes),
			Actor:     meta.Actor,
			UpdatedAt: updated.UpdatedAt,
		})
	}

	return updated, nil
}

// applyChanges writes the approved change records onto the order and reports
// whether the payment row was touched.
func applyChanges(o *Order, changes []FieldChange) bool {
	var paymentChanged bool
	for _, change := range changes {
		switch change.Field {
		case "status":
			o.Status = Status(change.New)
		case "customerName":
			o.CustomerName = change.New
		case "customerPhone":
			o.CustomerPhone = change.New
		case "customerAddress":
			o.CustomerAddress = change.New
		case "contactType":
			o.ContactType = ContactType(change.New)
		case "paymentStatus":
			if o.Payment == nil {
				o.Payment = &Payment{OrderID: o.ID}
			}
			o.Payment.Status = PaymentStatus(change.New)
			paymentChanged = true
		}
	}
	return paymentChanged
}

func toEventChanges(changes []FieldChange) []events.FieldChange {
	out := make([]events.FieldChange, len(changes))
	for i, c := range changes {
		out[i] = events.FieldChange{Field: c.Field, Old: c.Old, New: c.New}
	}
	return out
}

// publish is best-effort: the mutation has already committed, a stream hiccup
// must not fail the request.
func (s *Service) publish(ctx context.Context, orderID, eventType string, payload any) {
	if s.publisher == nil {
		return
	}
	env, err := events.Wrap(eventType, orderID, payload)
	if err != nil {
		log.Printf("[Order] Failed to wrap %s event for order %s: %v", eventType, orderID, err)
		return
	}
	if err := s.publisher.Publish(ctx, orderID, env); err != nil {
		log.Printf("[Order] Failed to publish %s event for order %s: %v", eventType, orderID, err)
	}
}
