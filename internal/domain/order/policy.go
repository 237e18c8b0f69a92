package order

import "strings"

// UpdateRequest carries one order-edit request. Nil pointers mean "leave as is";
// a present pointer counts as an edit attempt even when the value equals the
// stored one.
type UpdateRequest struct {
	Status          *string `json:"status"`
	CustomerName    *string `json:"customer_name"`
	CustomerPhone   *string `json:"customer_phone"`
	CustomerAddress *string `json:"customer_address"`
	ContactType     *string `json:"contact_type"`
	PaymentStatus   *string `json:"payment_status"`
	Comment         string  `json:"comment"`
}

func (r UpdateRequest) requestedStatus() (Status, bool) {
	if r.Status == nil {
		return "", false
	}
	return Status(strings.TrimSpace(*r.Status)), true
}

func (r UpdateRequest) requestedPayment() (PaymentStatus, bool) {
	if r.PaymentStatus == nil {
		return "", false
	}
	return PaymentStatus(strings.TrimSpace(*r.PaymentStatus)), true
}

// hasCustomerEdits reports whether the request touches anything besides status.
func (r UpdateRequest) hasCustomerEdits() bool {
	return r.CustomerName != nil || r.CustomerPhone != nil || r.CustomerAddress != nil ||
		r.ContactType != nil
}

func (r UpdateRequest) empty() bool {
	return r.Status == nil && !r.hasCustomerEdits() && r.PaymentStatus == nil
}

// Approve decides whether the requested change-set may be applied to the order
// in its current state. Pure decision logic: no I/O, no mutation. The rules are
// checked in a fixed order and the first failing rule wins, so a cancelled order
// reports ErrCancelledOrderLocked even when the request also carries a malformed
// enum value.
func Approve(cur *Order, req UpdateRequest) error {
	requested, hasStatus := req.requestedStatus()
	requestedPayment, hasPayment := req.requestedPayment()

	// Rule 1: a completed order accepts exactly one change, status -> CANCELLED.
	if cur.Status == StatusCompleted {
		if req.hasCustomerEdits() || hasPayment {
			return ErrCompletedOrderLocked
		}
		if hasStatus && requested != StatusCancelled {
			return ErrCompletedOrderLocked
		}
	}

	// Rule 2: a cancelled order is frozen.
	if cur.Status == StatusCancelled && !req.empty() {
		return ErrCancelledOrderLocked
	}

	// Rule 3: a paid order never goes back to pending.
	if cur.Status == StatusPaid && requested == StatusPending {
		return ErrPaidToPending
	}

	// Rule 4: shipped and completed orders never move backwards, except out
	// through cancellation.
	if (cur.Status == StatusShipped || cur.Status == StatusCompleted) && hasStatus && requested != StatusCancelled {
		if rank, ok := statusRank[requested]; ok && rank < statusRank[cur.Status] {
			return ErrBackwardTransition
		}
	}

	// Rule 5: a successful payment is final.
	if cur.Payment != nil && cur.Payment.Status == PaymentSuccess && hasPayment && requestedPayment != PaymentSuccess {
		return ErrPaymentFinal
	}

	// Rule 6: enum validation.
	if hasStatus && !requested.Valid() {
		return ErrInvalidStatus
	}
	if req.ContactType != nil && !ContactType(strings.TrimSpace(*req.ContactType)).Valid() {
		return ErrInvalidContactType
	}
	if hasPayment && !requestedPayment.Valid() {
		return ErrInvalidPaymentStatus
	}

	return nil
}

// FieldChange is one detected difference between the stored order and an
// approved request.
type FieldChange struct {
	Field  string
	Old    string
	New    string
	Action AuditAction
}

// Diff compares an approved request against the stored order and payment and
// returns one change record per field whose value actually differs. String
// fields are trimmed before comparison, matching what gets stored.
func Diff(cur *Order, req UpdateRequest) []FieldChange {
	var changes []FieldChange

	if requested, ok := req.requestedStatus(); ok && requested != cur.Status {
		changes = append(changes, FieldChange{
			Field:  "status",
			Old:    string(cur.Status),
			New:    string(requested),
			Action: ActionStatusChange,
		})
	}
	if req.CustomerName != nil {
		if v := strings.TrimSpace(*req.CustomerName); v != cur.CustomerName {
			changes = append(changes, FieldChange{Field: "customerName", Old: cur.CustomerName, New: v, Action: ActionUpdate})
		}
	}
	if req.CustomerPhone != nil {
		if v := strings.TrimSpace(*req.CustomerPhone); v != cur.CustomerPhone {
			changes = append(changes, FieldChange{Field: "customerPhone", Old: cur.CustomerPhone, New: v, Action: ActionUpdate})
		}
	}
	if req.CustomerAddress != nil {
		if v := strings.TrimSpace(*req.CustomerAddress); v != cur.CustomerAddress {
			changes = append(changes, FieldChange{Field: "customerAddress", Old: cur.CustomerAddress, New: v, Action: ActionUpdate})
		}
	}
	if req.ContactType != nil {
		if v := ContactType(strings.TrimSpace(*req.ContactType)); v != cur.ContactType {
			changes = append(changes, FieldChange{Field: "contactType", Old: string(cur.ContactType), New: string(v), Action: ActionUpdate})
		}
	}
	if requested, ok := req.requestedPayment(); ok {
		var current PaymentStatus
		if cur.Payment != nil {
			current = cur.Payment.Status
		}
		if requested != current {
			changes = append(changes, FieldChange{Field: "paymentStatus", Old: string(current), New: string(requested), Action: ActionUpdate})
		}
	}

	return changes
}
