package staff

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/seller-panel/internal/auth"
)

type fakeStore struct {
	byID    map[string]*Staff
	byEmail map[string]*Staff
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		byID:    make(map[string]*Staff),
		byEmail: make(map[string]*Staff),
	}
}

func (f *fakeStore) GetStaff(_ context.Context, id string) (*Staff, error) {
	st, ok := f.byID[id]
	if !ok {
		return nil, ErrStaffNotFound
	}
	cp := *st
	return &cp, nil
}

func (f *fakeStore) GetStaffByEmail(_ context.Context, email string) (*Staff, error) {
	st, ok := f.byEmail[email]
	if !ok {
		return nil, ErrStaffNotFound
	}
	cp := *st
	return &cp, nil
}

func (f *fakeStore) ListStaff(_ context.Context) ([]*Staff, error) {
	var out []*Staff
	for _, st := range f.byID {
		cp := *st
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) CreateStaff(_ context.Context, st *Staff) error {
	cp := *st
	f.byID[st.ID] = &cp
	f.byEmail[st.Email] = &cp
	return nil
}

func (f *fakeStore) UpdateStaff(_ context.Context, st *Staff) error {
	if _, ok := f.byID[st.ID]; !ok {
		return ErrStaffNotFound
	}
	cp := *st
	f.byID[st.ID] = &cp
	f.byEmail[st.Email] = &cp
	return nil
}

// fakeCodes is an in-memory stand-in for the Redis code store.
type fakeCodes struct {
	codes map[string]string
}

func newFakeCodes() *fakeCodes {
	return &fakeCodes{codes: make(map[string]string)}
}

func (f *fakeCodes) SaveCode(_ context.Context, email, code string) error {
	f.codes[email] = code
	return nil
}

func (f *fakeCodes) ConsumeCode(_ context.Context, email, code string) (bool, error) {
	stored, ok := f.codes[email]
	if !ok || stored != code {
		return false, nil
	}
	delete(f.codes, email)
	return true, nil
}

type fakeMailer struct {
	sent []string
}

func (f *fakeMailer) SendResetCode(_ context.Context, email, _ string) error {
	f.sent = append(f.sent, email)
	return nil
}

func newTestService() (*Service, *fakeStore, *fakeCodes, *fakeMailer) {
	store := newFakeStore()
	codes := newFakeCodes()
	mailer := &fakeMailer{}
	return NewService(store, codes, mailer), store, codes, mailer
}

// ============================================
// Register / Authenticate
// ============================================

// Staff records are serialized to the panel; the hash stays server-side and
// field names are snake_case like the rest of the API.
func TestStaff_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Staff{ID: "staff-1", Email: "admin@example.com", PasswordHash: "secret", IsActive: true})

	require.NoError(t, err)
	assert.Contains(t, string(data), `"is_active"`)
	assert.NotContains(t, string(data), "secret")
}

func TestRegister_Success(t *testing.T) {
	svc, _, _, _ := newTestService()

	st, err := svc.Register(context.Background(), "  Admin@Example.com ", "Анна", "strongpassword", RoleAdmin)

	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", st.Email)
	assert.Equal(t, "Анна", st.Name)
	assert.Equal(t, RoleAdmin, st.Role)
	assert.True(t, st.IsActive)
	assert.NotEqual(t, "strongpassword", st.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Register(context.Background(), "admin@example.com", "Анна", "strongpassword", RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "ADMIN@example.com", "Другая", "strongpassword", RoleManager)

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_InvalidRole(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Register(context.Background(), "admin@example.com", "Анна", "strongpassword", Role("OWNER"))

	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Register(context.Background(), "admin@example.com", "Анна", "short", RoleAdmin)

	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestAuthenticate_Success(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Register(context.Background(), "admin@example.com", "Анна", "strongpassword", RoleAdmin)
	require.NoError(t, err)

	st, err := svc.Authenticate(context.Background(), "admin@example.com", "strongpassword")

	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", st.Email)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.Register(context.Background(), "admin@example.com", "Анна", "strongpassword", RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "admin@example.com", "wrongpassword")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Authenticate(context.Background(), "nobody@example.com", "whatever123")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_DeactivatedAccount(t *testing.T) {
	svc, _, _, _ := newTestService()
	st, err := svc.Register(context.Background(), "admin@example.com", "Анна", "strongpassword", RoleAdmin)
	require.NoError(t, err)

	_, err = svc.SetActive(context.Background(), st.ID, false)
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "admin@example.com", "strongpassword")

	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

// ============================================
// Password reset
// ============================================

func TestPasswordReset_FullFlow(t *testing.T) {
	svc, _, codes, mailer := newTestService()
	_, err := svc.Register(context.Background(), "admin@example.com", "Анна", "strongpassword", RoleAdmin)
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "admin@example.com"))
	require.Equal(t, []string{"admin@example.com"}, mailer.sent)

	code := codes.codes["admin@example.com"]
	require.Len(t, code, 6)

	require.NoError(t, svc.ResetPassword(context.Background(), "admin@example.com", code, "newpassword1"))

	// Old password no longer works, new one does.
	_, err = svc.Authenticate(context.Background(), "admin@example.com", "strongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(context.Background(), "admin@example.com", "newpassword1")
	assert.NoError(t, err)
}

func TestPasswordReset_CodeIsSingleUse(t *testing.T) {
	svc, _, codes, _ := newTestService()
	_, err := svc.Register(context.Background(), "admin@example.com", "Анна", "strongpassword", RoleAdmin)
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "admin@example.com"))
	code := codes.codes["admin@example.com"]

	require.NoError(t, svc.ResetPassword(context.Background(), "admin@example.com", code, "newpassword1"))

	err = svc.ResetPassword(context.Background(), "admin@example.com", code, "newpassword2")
	assert.ErrorIs(t, err, ErrInvalidResetCode)
}

func TestPasswordReset_WrongCode(t *testing.T) {
	svc, _, codes, _ := newTestService()
	_, err := svc.Register(context.Background(), "admin@example.com", "Анна", "strongpassword", RoleAdmin)
	require.NoError(t, err)
	codes.codes["admin@example.com"] = "123456"

	err = svc.ResetPassword(context.Background(), "admin@example.com", "654321", "newpassword1")

	assert.ErrorIs(t, err, ErrInvalidResetCode)
}

func TestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	svc, _, codes, mailer := newTestService()

	err := svc.RequestPasswordReset(context.Background(), "nobody@example.com")

	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
	assert.Empty(t, codes.codes)
}
