package timetable

import (
	"context"
	"database/sql"
	"errors"

	"campus-attendance/internal/attendance"
	"campus-attendance/internal/store"
)

// Repository persists weekly timetables in Postgres. Slots keep their order through a position column.
type Repository struct {
	db *sql.DB
}

// NewRepository returns a Postgres-backed timetable Store.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns nil when the owner has no timetable.
func (r *Repository) Get(ctx context.Context, ownerID string) (*Timetable, error) {
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT owner_id::text FROM timetables WHERE owner_id = $1`, ownerID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT day, subject_id::text, subject_code, subject_name, section, session, semester, branch, course, timing, location
		FROM timetable_slots
		WHERE owner_id = $1
		ORDER BY day, position
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := &Timetable{OwnerID: owner, Week: Week{}}
	for rows.Next() {
		var (
			day int
			s   Slot
			id  string
		)
		if err := rows.Scan(&day, &id, &s.Subject.Code, &s.Subject.Name, &s.Section, &s.Session,
			&s.Semester, &s.Branch, &s.Course, &s.Timing, &s.Location); err != nil {
			return nil, err
		}
		s.Subject.ID = SubjectID(id)
		t.Week[day] = append(t.Week[day], s)
	}
	return t, rows.Err()
}

// Replace swaps the stored week for w. It reports false when the owner has no timetable.
func (r *Repository) Replace(ctx context.Context, ownerID string, w Week) (bool, error) {
	found := false
	err := store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE timetables SET updated_at = NOW() WHERE owner_id = $1`, ownerID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			return err
		}
		found = true

		if _, err := tx.ExecContext(ctx, `DELETE FROM timetable_slots WHERE owner_id = $1`, ownerID); err != nil {
			return err
		}
		for _, day := range w.Days() {
			for pos, s := range w[day] {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO timetable_slots
						(owner_id, day, position, subject_id, subject_code, subject_name, section, session, semester, branch, course, timing, location)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
				`, ownerID, day, pos, string(s.Subject.ID), s.Subject.Code, s.Subject.Name, s.Section, s.Session,
					s.Semester, s.Branch, s.Course, s.Timing, s.Location); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return found, err
}

// DeleteSlot removes the first slot on day that references subjectID.
func (r *Repository) DeleteSlot(ctx context.Context, ownerID string, day int, subjectID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM timetable_slots
		WHERE (owner_id, day, position) IN (
			SELECT owner_id, day, position FROM timetable_slots
			WHERE owner_id = $1 AND day = $2 AND subject_id = $3
			ORDER BY position
			LIMIT 1
		)
	`, ownerID, day, subjectID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ScheduledSlots lists the owner's weekly slots for attendance reports.
func (r *Repository) ScheduledSlots(ctx context.Context, ownerID string) ([]attendance.ScheduledSlot, error) {
	t, err := r.Get(ctx, ownerID)
	if err != nil || t == nil {
		return nil, err
	}
	var out []attendance.ScheduledSlot
	for _, day := range t.Week.Days() {
		for _, s := range t.Week[day] {
			out = append(out, attendance.ScheduledSlot{
				Day:         day,
				SheetKey:    s.sheetKey(ownerID),
				SubjectName: s.Subject.Name,
			})
		}
	}
	return out, nil
}
