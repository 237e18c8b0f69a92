package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/seller-panel/internal/domain/staff"
)

// PostgresStaffStore implements staff.Store on top of Postgres.
type PostgresStaffStore struct {
	db *sql.DB
}

func NewPostgresStaffStore(db *sql.DB) *PostgresStaffStore {
	return &PostgresStaffStore{db: db}
}

const staffColumns = `id, email, name, role, password_hash, is_active, created_at, updated_at`

func (s *PostgresStaffStore) GetStaff(ctx context.Context, id string) (*staff.Staff, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE id = $1`, id)
	return scanStaff(row)
}

func (s *PostgresStaffStore) GetStaffByEmail(ctx context.Context, email string) (*staff.Staff, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff WHERE email = $1`, email)
	return scanStaff(row)
}

func (s *PostgresStaffStore) ListStaff(ctx context.Context) ([]*staff.Staff, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+staffColumns+` FROM staff ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var out []*staff.Staff
	for rows.Next() {
		st := &staff.Staff{}
		if err := rows.Scan(&st.ID, &st.Email, &st.Name, &st.Role, &st.PasswordHash, &st.IsActive, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *PostgresStaffStore) CreateStaff(ctx context.Context, st *staff.Staff) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staff (id, email, name, role, password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		st.ID, st.Email, st.Name, st.Role, st.PasswordHash, st.IsActive, st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}
	return nil
}

func (s *PostgresStaffStore) UpdateStaff(ctx context.Context, st *staff.Staff) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE staff
		SET email = $2, name = $3, role = $4, password_hash = $5, is_active = $6, updated_at = $7
		WHERE id = $1`,
		st.ID, st.Email, st.Name, st.Role, st.PasswordHash, st.IsActive, st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update staff: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return staff.ErrStaffNotFound
	}
	return nil
}

func scanStaff(row *sql.Row) (*staff.Staff, error) {
	st := &staff.Staff{}
	err := row.Scan(&st.ID, &st.Email, &st.Name, &st.Role, &st.PasswordHash, &st.IsActive, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, staff.ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan staff: %w", err)
	}
	return st, nil
}
