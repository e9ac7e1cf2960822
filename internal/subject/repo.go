package subject

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
)

// Repository persists subjects in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository returns a Postgres-backed subject Store.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const subjectColumns = `id, code, name, department_id, is_elective, created_at`

func scanSubject(row interface{ Scan(...any) error }) (Subject, error) {
	var s Subject
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.DepartmentID, &s.IsElective, &s.CreatedAt)
	return s, err
}

func (r *Repository) Insert(ctx context.Context, s Subject) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subjects (id, code, name, department_id, is_elective, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.ID, s.Code, s.Name, s.DepartmentID, s.IsElective, s.CreatedAt)
	return err
}

// Get returns nil when the subject does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*Subject, error) {
	s, err := scanSubject(r.db.QueryRowContext(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns subjects ordered by department then code, optionally for one department.
func (r *Repository) List(ctx context.Context, departmentID string) ([]Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects`
	args := []any{}
	if departmentID != "" {
		query += ` WHERE department_id = $1`
		args = append(args, departmentID)
	}
	query += ` ORDER BY department_id, code`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subject
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Names resolves subject ids to names; unknown ids are absent from the map.
func (r *Repository) Names(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name FROM subjects WHERE id IN (`+strings.Join(placeholders, ", ")+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
