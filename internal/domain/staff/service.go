package staff

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/seller-panel/internal/auth"
)

type Store interface {
	GetStaff(ctx context.Context, id string) (*Staff, error)
	GetStaffByEmail(ctx context.Context, email string) (*Staff, error)
	ListStaff(ctx context.Context) ([]*Staff, error)
	CreateStaff(ctx context.Context, st *Staff) error
	UpdateStaff(ctx context.Context, st *Staff) error
}

// CodeStore holds short-lived password reset codes keyed by email.
type CodeStore interface {
	SaveCode(ctx context.Context, email, code string) error
	ConsumeCode(ctx context.Context, email, code string) (bool, error)
}

// Mailer delivers the reset code. Failures are logged, not surfaced, so the
// endpoint stays uniform for unknown and known addresses.
type Mailer interface {
	SendResetCode(ctx context.Context, email, code string) error
}

type Service struct {
	store  Store
	codes  CodeStore
	mailer Mailer
}

func NewService(store Store, codes CodeStore, mailer Mailer) *Service {
	return &Service{store: store, codes: codes, mailer: mailer}
}

func (s *Service) Get(ctx context.Context, id string) (*Staff, error) {
	return s.store.GetStaff(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Staff, error) {
	return s.store.ListStaff(ctx)
}

// Register creates a new staff account with a hashed password.
func (s *Service) Register(ctx context.Context, email, name, password string, role Role) (*Staff, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if _, err := s.store.GetStaffByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	st := &Staff{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateStaff(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Authenticate verifies credentials and returns the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Staff, error) {
	st, err := s.store.GetStaffByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, st.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !st.IsActive {
		return nil, ErrAccountDeactivated
	}
	return st, nil
}

// SetActive enables or disables an account. Disabled accounts keep their
// audit history but can no longer sign in.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (*Staff, error) {
	st, err := s.store.GetStaff(ctx, id)
	if err != nil {
		return nil, err
	}
	st.IsActive = active
	st.UpdatedAt = time.Now()
	if err := s.store.UpdateStaff(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// RequestPasswordReset stores a one-time code and emails it. Unknown emails
// return nil too, to avoid leaking which addresses have accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if _, err := s.store.GetStaffByEmail(ctx, email); err != nil {
		return nil
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	if err := s.codes.SaveCode(ctx, email, code); err != nil {
		return err
	}
	if err := s.mailer.SendResetCode(ctx, email, code); err != nil {
		log.Printf("[Staff] Failed to send reset code to %s: %v", email, err)
	}
	return nil
}

// ResetPassword consumes the code and replaces the password hash.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	ok, err := s.codes.ConsumeCode(ctx, email, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidResetCode
	}

	st, err := s.store.GetStaffByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	st.PasswordHash = hash
	st.UpdatedAt = time.Now()
	return s.store.UpdateStaff(ctx, st)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateCode produces a 6-digit numeric code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
