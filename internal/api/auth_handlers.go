package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/example/seller-panel/internal/api/middleware"
	"github.com/example/seller-panel/internal/auth"
	"github.com/example/seller-panel/internal/domain/staff"
)

// AuthHandlers handles staff authentication and account management.
type AuthHandlers struct {
	staffService *staff.Service
	jwtService   *auth.JWTService
}

func NewAuthHandlers(staffService *staff.Service, jwtService *auth.JWTService) *AuthHandlers {
	return &AuthHandlers{
		staffService: staffService,
		jwtService:   jwtService,
	}
}

// StaffResponse represents staff data in responses
type StaffResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      staff.Role `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
}

func toStaffResponse(st *staff.Staff) StaffResponse {
	return StaffResponse{
		ID:        st.ID,
		Email:     st.Email,
		Name:      st.Name,
		Role:      st.Role,
		IsActive:  st.IsActive,
		CreatedAt: st.CreatedAt,
	}
}

// Login verifies credentials and sets the auth cookies
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	st, err := h.staffService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.setAuthCookies(w, r, st)
	respondJSON(w, http.StatusOK, toStaffResponse(st))
}

// Logout clears the auth cookies
func (h *AuthHandlers) Logout(w http.ResponseWriter, _ *http.Request) {
	h.clearAuthCookies(w)
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Refresh rotates the access token using the refresh cookie
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshCookie, err := r.Cookie("refresh_token")
	if err != nil {
		respondJSONError(w, "no refresh token", http.StatusUnauthorized)
		return
	}

	staffID, err := h.jwtService.ValidateRefreshToken(refreshCookie.Value)
	if err != nil {
		h.clearAuthCookies(w)
		respondJSONError(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	st, err := h.staffService.Get(r.Context(), staffID)
	if err != nil {
		h.clearAuthCookies(w)
		respondJSONError(w, "account not found", http.StatusUnauthorized)
		return
	}
	if !st.IsActive {
		h.clearAuthCookies(w)
		respondJSONError(w, "account is deactivated", http.StatusForbidden)
		return
	}

	h.setAuthCookies(w, r, st)
	respondJSON(w, http.StatusOK, map[string]string{"message": "token refreshed"})
}

// Me returns the current staff member
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetStaffFromContext(r.Context())
	if !ok {
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	st, err := h.staffService.Get(r.Context(), claims.StaffID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toStaffResponse(st))
}

// RegisterStaff creates a new account, admin only
func (h *AuthHandlers) RegisterStaff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string     `json:"email"`
		Name     string     `json:"name"`
		Password string     `json:"password"`
		Role     staff.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	st, err := h.staffService.Register(r.Context(), req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toStaffResponse(st))
}

// ListStaff lists all accounts, admin only
func (h *AuthHandlers) ListStaff(w http.ResponseWriter, r *http.Request) {
	members, err := h.staffService.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	out := make([]StaffResponse, 0, len(members))
	for _, st := range members {
		out = append(out, toStaffResponse(st))
	}
	respondJSON(w, http.StatusOK, out)
}

// SetStaffActive enables or disables an account, admin only
func (h *AuthHandlers) SetStaffActive(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/staff/")

	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	st, err := h.staffService.SetActive(r.Context(), id, req.Active)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toStaffResponse(st))
}

// ForgotPassword sends a reset code. The response is the same whether the
// email exists or not.
func (h *AuthHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.staffService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "if the account exists, a code was sent"})
}

// ResetPassword consumes the emailed code and sets a new password
func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.staffService.ResetPassword(r.Context(), req.Email, req.Code, req.Password); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "password reset"})
}

func (h *AuthHandlers) setAuthCookies(w http.ResponseWriter, r *http.Request, st *staff.Staff) {
	accessToken, accessExpiry, _ := h.jwtService.GenerateAccessToken(st.ID, st.Email, string(st.Role))
	refreshToken, refreshExpiry, _ := h.jwtService.GenerateRefreshToken(st.ID)

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		Expires:  accessExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/auth/refresh",
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandlers) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/auth/refresh",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
