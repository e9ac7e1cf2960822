package student

import (
	"context"
	"database/sql"
)

// Repository persists students in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository returns a Postgres-backed student Store.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, s Student) error {
	var department any
	if s.DepartmentID != "" {
		department = s.DepartmentID
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (scholar_no, name, department_id, branch, batch, section, semester)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.ScholarNo, s.Name, department, s.Branch, s.Batch, s.Section, s.Semester)
	return err
}

// List filters by any non-empty field and orders by scholar number.
func (r *Repository) List(ctx context.Context, branch, batch, section string) ([]Student, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT scholar_no, name, COALESCE(department_id::text, ''), branch, batch, section, semester
		FROM students
		WHERE ($1 = '' OR branch = $1) AND ($2 = '' OR batch = $2) AND ($3 = '' OR section = $3)
		ORDER BY scholar_no
	`, branch, batch, section)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ScholarNo, &s.Name, &s.DepartmentID, &s.Branch, &s.Batch, &s.Section, &s.Semester); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Classes lists the distinct branch, batch and section keys.
func (r *Repository) Classes(ctx context.Context) ([]ClassKey, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT branch, batch, section FROM students`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClassKey
	for rows.Next() {
		var k ClassKey
		if err := rows.Scan(&k.Branch, &k.Batch, &k.Section); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, scholarNo string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE scholar_no = $1`, scholarNo)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
