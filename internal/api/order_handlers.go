package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/seller-panel/internal/api/middleware"
	"github.com/example/seller-panel/internal/domain/order"
)

// OrderHandlers exposes the order pipeline over HTTP.
type OrderHandlers struct {
	orders *order.Service
}

func NewOrderHandlers(orders *order.Service) *OrderHandlers {
	return &OrderHandlers{orders: orders}
}

// orderResponse carries the order plus aggregates recomputed from its line
// items, so clients never have to sum them.
type orderResponse struct {
	*order.Order
	Total     int `json:"total"`
	ItemCount int `json:"item_count"`
}

func toOrderResponse(o *order.Order) orderResponse {
	return orderResponse{Order: o, Total: o.Total(), ItemCount: o.ItemCount()}
}

func toOrderResponses(orders []*order.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return out
}

func (h *OrderHandlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := order.Status(strings.ToUpper(strings.TrimSpace(q.Get("status"))))
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	orders, err := h.orders.List(r.Context(), status, limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req order.PlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.orders.Place(r.Context(), req, requestMeta(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderResponse(o))
}

// UpdateOrder applies a partial mutation: only fields present in the body are
// touched, and every change lands in the audit trail.
func (h *OrderHandlers) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")

	var req order.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.orders.Update(r.Context(), id, req, requestMeta(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

// OrderHistory returns the audit trail, newest entries first.
func (h *OrderHandlers) OrderHistory(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/orders/")
	id = strings.TrimSuffix(id, "/history")

	audits, err := h.orders.History(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if audits == nil {
		audits = []order.Audit{}
	}
	respondJSON(w, http.StatusOK, audits)
}

// requestMeta captures who is acting, from the JWT claims and connection.
func requestMeta(r *http.Request) order.Meta {
	return order.Meta{
		Actor:     middleware.GetStaffEmail(r.Context()),
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}
}
