package staff

import (
	"errors"
	"time"
)

var (
	ErrStaffNotFound       = errors.New("staff member not found")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrInvalidRole         = errors.New("invalid staff role")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountDeactivated  = errors.New("account is deactivated")
	ErrInvalidResetCode    = errors.New("invalid or expired reset code")
)

// Role controls what panel operations a staff member may perform.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager
}

// Staff is a panel account. PasswordHash never leaves the server.
type Staff struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
