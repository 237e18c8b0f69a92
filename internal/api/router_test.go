package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/seller-panel/internal/auth"
	"github.com/example/seller-panel/internal/infrastructure/store"
)

type fakeDashboardSource struct{}

func (fakeDashboardSource) Summary(_ context.Context) (*store.DashboardSummary, error) {
	return &store.DashboardSummary{
		OrdersByStatus: map[string]int{"PENDING": 3},
		OrdersToday:    3,
		RevenueToday:   4500,
		LowStock:       []store.LowStockVariant{},
	}, nil
}

// ============================================
// GET /dashboard/summary
// ============================================

func TestRouter_DashboardSummary(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret-key-for-testing-only!", 15*time.Minute, 24*time.Hour)
	router := NewRouter(&Handlers{
		Dashboard: NewDashboardHandlers(fakeDashboardSource{}),
	}, jwtService)

	token, _, err := jwtService.GenerateAccessToken("staff-1", "admin@example.com", "ADMIN")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"orders_today":3`)
}

func TestRouter_DashboardSummaryRequiresAuth(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret-key-for-testing-only!", 15*time.Minute, 24*time.Hour)
	router := NewRouter(&Handlers{
		Dashboard: NewDashboardHandlers(fakeDashboardSource{}),
	}, jwtService)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
