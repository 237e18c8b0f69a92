package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/example/seller-panel/internal/auth"
	"github.com/example/seller-panel/internal/domain/category"
	"github.com/example/seller-panel/internal/domain/order"
	"github.com/example/seller-panel/internal/domain/product"
	"github.com/example/seller-panel/internal/domain/staff"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps domain errors onto HTTP statuses: missing resources
// are 404, transition policy and state conflicts are 409, bad input is 400,
// everything else is a 500 with the detail kept in the server log.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case isNotFound(err):
		respondJSONError(w, err.Error(), http.StatusNotFound)
	case isConflict(err):
		respondJSONError(w, err.Error(), http.StatusConflict)
	case isBadRequest(err):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, staff.ErrInvalidCredentials):
		respondJSONError(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, staff.ErrAccountDeactivated):
		respondJSONError(w, err.Error(), http.StatusForbidden)
	default:
		log.Printf("[API] Internal error: %v", err)
		respondJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, order.ErrOrderNotFound) ||
		errors.Is(err, order.ErrVariantNotFound) ||
		errors.Is(err, product.ErrProductNotFound) ||
		errors.Is(err, product.ErrVariantNotFound) ||
		errors.Is(err, category.ErrCategoryNotFound) ||
		errors.Is(err, staff.ErrStaffNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, order.ErrCompletedOrderLocked) ||
		errors.Is(err, order.ErrCancelledOrderLocked) ||
		errors.Is(err, order.ErrPaidToPending) ||
		errors.Is(err, order.ErrBackwardTransition) ||
		errors.Is(err, order.ErrPaymentFinal) ||
		errors.Is(err, order.ErrInsufficientStock) ||
		errors.Is(err, category.ErrCycle) ||
		errors.Is(err, category.ErrSelfParent) ||
		errors.Is(err, category.ErrHasChildren) ||
		errors.Is(err, staff.ErrEmailTaken)
}

func isBadRequest(err error) bool {
	return errors.Is(err, order.ErrInvalidStatus) ||
		errors.Is(err, order.ErrInvalidContactType) ||
		errors.Is(err, order.ErrInvalidPaymentStatus) ||
		errors.Is(err, order.ErrEmptyOrder) ||
		errors.Is(err, order.ErrInvalidQuantity) ||
		errors.Is(err, product.ErrInvalidName) ||
		errors.Is(err, product.ErrInvalidPrice) ||
		errors.Is(err, product.ErrInvalidSKU) ||
		errors.Is(err, product.ErrStockBelowZero) ||
		errors.Is(err, category.ErrInvalidName) ||
		errors.Is(err, staff.ErrInvalidEmail) ||
		errors.Is(err, staff.ErrInvalidRole) ||
		errors.Is(err, staff.ErrInvalidResetCode) ||
		errors.Is(err, auth.ErrPasswordTooShort)
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

// clientIP prefers the first X-Forwarded-For hop set by the reverse proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.Index(fwd, ","); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	return host
}
