package faculty

import (
	"context"
	"database/sql"
	"errors"

	"campus-attendance/internal/store"
)

// Repository persists faculty accounts in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository returns a Postgres-backed faculty Store.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectFaculty = `
	SELECT id, name, employee_code, abbreviation, COALESCE(department_id::text, ''),
	       email, phone, password_hash, role, about, created_at
	FROM faculty
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFaculty(row rowScanner) (*Faculty, error) {
	var f Faculty
	err := row.Scan(&f.ID, &f.Name, &f.EmployeeCode, &f.Abbreviation, &f.DepartmentID,
		&f.Email, &f.Phone, &f.PasswordHash, &f.Role, &f.About, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Insert stores the account and its empty timetable in one transaction.
func (r *Repository) Insert(ctx context.Context, f Faculty) error {
	var department any
	if f.DepartmentID != "" {
		department = f.DepartmentID
	}
	return store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO faculty (id, name, employee_code, abbreviation, department_id, email, phone, password_hash, role, about, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, f.ID, f.Name, f.EmployeeCode, f.Abbreviation, department, f.Email, f.Phone,
			f.PasswordHash, string(f.Role), f.About, f.CreatedAt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO timetables (owner_id) VALUES ($1)`, f.ID)
		return err
	})
}

func (r *Repository) Get(ctx context.Context, id string) (*Faculty, error) {
	return scanFaculty(r.db.QueryRowContext(ctx, selectFaculty+` WHERE id = $1`, id))
}

func (r *Repository) GetByEmployeeCode(ctx context.Context, code string) (*Faculty, error) {
	return scanFaculty(r.db.QueryRowContext(ctx, selectFaculty+` WHERE employee_code = $1`, code))
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*Faculty, error) {
	return scanFaculty(r.db.QueryRowContext(ctx, selectFaculty+` WHERE email = $1`, email))
}

// ListByDepartment returns everyone when departmentID is empty.
func (r *Repository) ListByDepartment(ctx context.Context, departmentID string) ([]Faculty, error) {
	rows, err := r.db.QueryContext(ctx, selectFaculty+`
		WHERE ($1 = '' OR department_id::text = $1)
		ORDER BY name
	`, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Faculty
	for rows.Next() {
		f, err := scanFaculty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (r *Repository) CountByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM faculty WHERE role = $1`, role).Scan(&n)
	return n, err
}

// Delete reports whether a row was removed.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM faculty WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
