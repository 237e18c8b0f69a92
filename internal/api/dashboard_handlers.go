package api

import (
	"context"
	"net/http"

	"github.com/example/seller-panel/internal/infrastructure/store"
)

// DashboardSource produces the landing page summary.
type DashboardSource interface {
	Summary(ctx context.Context) (*store.DashboardSummary, error)
}

type DashboardHandlers struct {
	source DashboardSource
}

func NewDashboardHandlers(source DashboardSource) *DashboardHandlers {
	return &DashboardHandlers{source: source}
}

func (h *DashboardHandlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.source.Summary(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
