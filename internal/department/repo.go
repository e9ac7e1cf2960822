package department

import (
	"context"
	"database/sql"
	"errors"

	"campus-attendance/internal/store"
)

// Repository persists departments and their branches in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) InsertDepartment(ctx context.Context, d Department) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO departments (id, name, code, created_at)
		VALUES ($1, $2, $3, $4)
	`, d.ID, d.Name, d.Code, d.CreatedAt)
	return err
}

// ListDepartments returns all departments with their branches, sessions and courses.
func (r *Repository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, code, created_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Code, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadChildren(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetDepartment returns nil when the department does not exist.
func (r *Repository) GetDepartment(ctx context.Context, id string) (*Department, error) {
	var d Department
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, code, created_at FROM departments WHERE id = $1
	`, id).Scan(&d.ID, &d.Name, &d.Code, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) loadChildren(ctx context.Context, d *Department) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT b.id, b.program, b.course, b.short_form, b.duration, s.session
		FROM branches b
		LEFT JOIN branch_sessions s ON s.branch_id = b.id
		WHERE b.department_id = $1
		ORDER BY b.created_at, b.short_form, s.session
	`, d.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	d.Branches = []Branch{}
	index := map[string]int{}
	for rows.Next() {
		var b Branch
		var session sql.NullString
		if err := rows.Scan(&b.ID, &b.Program, &b.Course, &b.ShortForm, &b.Duration, &session); err != nil {
			return err
		}
		i, ok := index[b.ID]
		if !ok {
			b.Sessions = []string{}
			d.Branches = append(d.Branches, b)
			i = len(d.Branches) - 1
			index[b.ID] = i
		}
		if session.Valid {
			d.Branches[i].Sessions = append(d.Branches[i].Sessions, session.String)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	courseRows, err := r.db.QueryContext(ctx, `
		SELECT name, type, duration FROM courses WHERE department_id = $1 ORDER BY name
	`, d.ID)
	if err != nil {
		return err
	}
	defer courseRows.Close()

	d.Courses = []Course{}
	for courseRows.Next() {
		var c Course
		if err := courseRows.Scan(&c.Name, &c.Type, &c.Duration); err != nil {
			return err
		}
		d.Courses = append(d.Courses, c)
	}
	return courseRows.Err()
}

func (r *Repository) DeleteDepartment(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// InsertBranch adds the branch, its initial sessions and its derived course in one transaction.
func (r *Repository) InsertBranch(ctx context.Context, departmentID string, b Branch, c Course) error {
	return store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO branches (id, department_id, program, course, short_form, duration)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, b.ID, departmentID, b.Program, b.Course, b.ShortForm, b.Duration); err != nil {
			return err
		}
		for _, s := range b.Sessions {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO branch_sessions (branch_id, session) VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, b.ID, s); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO courses (department_id, name, type, duration)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (department_id, name) DO NOTHING
		`, departmentID, c.Name, c.Type, c.Duration)
		return err
	})
}

func (r *Repository) DeleteBranch(ctx context.Context, departmentID, shortForm string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM branches WHERE department_id = $1 AND short_form = $2
	`, departmentID, shortForm)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// BranchID returns "" when the department has no branch with that short form.
func (r *Repository) BranchID(ctx context.Context, departmentID, shortForm string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM branches WHERE department_id = $1 AND short_form = $2
	`, departmentID, shortForm).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

// InsertSession reports false when the branch already has the session.
func (r *Repository) InsertSession(ctx context.Context, branchID, session string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO branch_sessions (branch_id, session) VALUES ($1, $2)
		ON CONFLICT (branch_id, session) DO NOTHING
	`, branchID, session)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) DeleteSession(ctx context.Context, branchID, session string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM branch_sessions WHERE branch_id = $1 AND session = $2
	`, branchID, session)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// HasSession reports whether session is attached to the branch.
func (r *Repository) HasSession(ctx context.Context, branchID, session string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM branch_sessions WHERE branch_id = $1 AND session = $2)
	`, branchID, session).Scan(&exists)
	return exists, err
}
