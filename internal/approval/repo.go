package approval

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Repository persists approval requests in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository returns a Postgres-backed approval Store.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, req Request) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO approval_requests
			(id, kind, department_id, branch_short_form, session, program, course, duration, status, requested_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, req.ID, string(req.Kind), req.DepartmentID, req.BranchShortForm, req.Session, req.Program,
		req.Course, req.Duration, string(req.Status), req.RequestedBy, req.CreatedAt)
	return err
}

const selectRequest = `
	SELECT id, kind, department_id::text, branch_short_form, session, program, course, duration, status,
	       requested_by, processed_by, rejection_reason, read_status, created_at, processed_at
	FROM approval_requests
`

func scanRequest(row interface{ Scan(...any) error }) (Request, error) {
	var (
		req       Request
		processed sql.NullTime
	)
	err := row.Scan(&req.ID, &req.Kind, &req.DepartmentID, &req.BranchShortForm, &req.Session, &req.Program,
		&req.Course, &req.Duration, &req.Status, &req.RequestedBy, &req.ProcessedBy, &req.RejectionReason,
		&req.ReadStatus, &req.CreatedAt, &processed)
	if processed.Valid {
		req.ProcessedAt = &processed.Time
	}
	return req, err
}

func (r *Repository) Get(ctx context.Context, id string) (*Request, error) {
	req, err := scanRequest(r.db.QueryRowContext(ctx, selectRequest+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *Repository) List(ctx context.Context, f Filter) ([]Request, error) {
	rows, err := r.db.QueryContext(ctx, selectRequest+`
		WHERE ($1 = '' OR kind = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR department_id::text = $3)
		ORDER BY created_at DESC
	`, string(f.Kind), string(f.Status), f.DepartmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// PendingExists reports whether an identical request is still waiting.
func (r *Repository) PendingExists(ctx context.Context, req Request) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM approval_requests
			WHERE kind = $1 AND department_id = $2 AND branch_short_form = $3 AND session = $4
			  AND status = 'pending'
		)
	`, string(req.Kind), req.DepartmentID, req.BranchShortForm, req.Session).Scan(&exists)
	return exists, err
}

// Transition moves a request from one status to another. It reports false when the request
// was not in the from status, so only one caller can process a request.
func (r *Repository) Transition(ctx context.Context, id string, from, to Status, processedBy, reason string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE approval_requests
		SET status = $3, processed_by = $4, rejection_reason = $5, processed_at = $6
		WHERE id = $1 AND status = $2
	`, id, string(from), string(to), processedBy, reason, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SetRead updates read status only. Unknown ids are ignored.
func (r *Repository) SetRead(ctx context.Context, ids []string, read bool) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE approval_requests SET read_status = $1 WHERE id::text = ANY($2::text[])
	`, read, ids)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// CountPending counts pending requests, optionally narrowed to one kind.
func (r *Repository) CountPending(ctx context.Context, kind Kind) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM approval_requests WHERE status = 'pending' AND ($1 = '' OR kind = $1)
	`, string(kind)).Scan(&n)
	return n, err
}
