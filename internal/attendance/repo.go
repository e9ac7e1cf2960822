package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campus-attendance/internal/store"
)

// Repository persists attendance sheets, per-date outcomes and marks in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository returns a Postgres-backed attendance Store.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SheetFilter matches sheets on every non-empty field.
type SheetFilter struct {
	OwnerID   string
	SubjectID string
	Section   string
	Session   string
	Branch    string
}

// SubjectIDs returns the subjects the owner already has sheets for.
func (r *Repository) SubjectIDs(ctx context.Context, ownerID string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT subject_id::text FROM attendance_sheets WHERE owner_id = $1
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// InsertEmpty creates a sheet with no entries. It reports false when the key already exists.
func (r *Repository) InsertEmpty(ctx context.Context, id string, k SheetKey) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_sheets (id, owner_id, subject_id, section, session, branch, semester, course)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT attendance_sheets_key DO NOTHING
	`, id, k.OwnerID, k.SubjectID, k.Section, k.Session, k.Branch, k.Semester, k.Course)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

const selectSheet = `
	SELECT id, owner_id::text, subject_id::text, section, session, branch, semester, course, created_at
	FROM attendance_sheets
`

func scanSheet(row interface{ Scan(...any) error }) (Sheet, error) {
	var s Sheet
	err := row.Scan(&s.ID, &s.OwnerID, &s.SubjectID, &s.Section, &s.Session, &s.Branch,
		&s.Semester, &s.Course, &s.CreatedAt)
	return s, err
}

// FindByKey returns nil when no sheet has exactly this key.
func (r *Repository) FindByKey(ctx context.Context, k SheetKey) (*Sheet, error) {
	s, err := scanSheet(r.db.QueryRowContext(ctx, selectSheet+`
		WHERE owner_id = $1 AND subject_id = $2 AND section = $3 AND session = $4
		  AND branch = $5 AND semester = $6 AND course = $7
	`, k.OwnerID, k.SubjectID, k.Section, k.Session, k.Branch, k.Semester, k.Course))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadDetails(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Find returns matching sheets, oldest first, with their entries and marks.
func (r *Repository) Find(ctx context.Context, f SheetFilter) ([]Sheet, error) {
	rows, err := r.db.QueryContext(ctx, selectSheet+`
		WHERE ($1 = '' OR owner_id::text = $1)
		  AND ($2 = '' OR subject_id::text = $2)
		  AND ($3 = '' OR section = $3)
		  AND ($4 = '' OR session = $4)
		  AND ($5 = '' OR branch = $5)
		ORDER BY created_at, id
	`, f.OwnerID, f.SubjectID, f.Section, f.Session, f.Branch)
	if err != nil {
		return nil, err
	}

	var out []Sheet
	for rows.Next() {
		s, err := scanSheet(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := r.loadDetails(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repository) loadDetails(ctx context.Context, s *Sheet) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, scholar_no, student_name, present
		FROM attendance_entries
		WHERE sheet_id = $1
		ORDER BY date, scholar_no
	`, s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	s.Entries = []DayEntry{}
	for rows.Next() {
		var (
			day     time.Time
			student StudentMark
			present bool
		)
		if err := rows.Scan(&day, &student.ScholarNo, &student.Name, &present); err != nil {
			return err
		}
		student.Present = Presence(present)
		d := DateOf(day)
		if n := len(s.Entries); n == 0 || !s.Entries[n-1].Date.Equal(d) {
			s.Entries = append(s.Entries, DayEntry{Date: d})
		}
		last := &s.Entries[len(s.Entries)-1]
		last.Students = append(last.Students, student)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	markRows, err := r.db.QueryContext(ctx, `
		SELECT time_range, date FROM attendance_marks WHERE sheet_id = $1 ORDER BY date, time_range
	`, s.ID)
	if err != nil {
		return err
	}
	defer markRows.Close()

	s.Marks = []Mark{}
	for markRows.Next() {
		var (
			m   Mark
			day time.Time
		)
		if err := markRows.Scan(&m.TimeRange, &day); err != nil {
			return err
		}
		m.Date = DateOf(day)
		s.Marks = append(s.Marks, m)
	}
	return markRows.Err()
}

// RecordDay replaces the outcomes stored for entry.Date and logs the mark.
func (r *Repository) RecordDay(ctx context.Context, sheetID string, entry DayEntry, mark Mark) error {
	return store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM attendance_entries WHERE sheet_id = $1 AND date = $2::date
		`, sheetID, entry.Date.String()); err != nil {
			return err
		}
		for _, st := range entry.Students {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO attendance_entries (sheet_id, date, scholar_no, student_name, present)
				VALUES ($1, $2::date, $3, $4, $5)
			`, sheetID, entry.Date.String(), st.ScholarNo, st.Name, bool(st.Present)); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO attendance_marks (sheet_id, time_range, date)
			VALUES ($1, $2, $3::date)
			ON CONFLICT DO NOTHING
		`, sheetID, mark.TimeRange, mark.Date.String())
		return err
	})
}

// MonthlyTotals groups one student's outcomes by subject, class and month for an owner.
// Empty branch or section match any.
func (r *Repository) MonthlyTotals(ctx context.Context, ownerID, branch, section, scholarNo string) ([]MonthlyRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.subject_id::text, s.branch, s.semester, s.section, e.scholar_no,
		       to_char(e.date, 'YYYY-MM') AS month,
		       COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE e.present) AS present
		FROM attendance_sheets s
		JOIN attendance_entries e ON e.sheet_id = s.id
		WHERE s.owner_id = $1
		  AND ($2 = '' OR s.branch = $2)
		  AND ($3 = '' OR s.section = $3)
		  AND e.scholar_no = $4
		GROUP BY s.subject_id, s.branch, s.semester, s.section, e.scholar_no, month
		ORDER BY month, s.subject_id
	`, ownerID, branch, section, scholarNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthlyRow
	for rows.Next() {
		var m MonthlyRow
		if err := rows.Scan(&m.SubjectID, &m.Branch, &m.Semester, &m.Section, &m.ScholarNo,
			&m.Month, &m.TotalSessions, &m.PresentCount); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// StudentTotals sums each student's outcomes for a subject taught to a section.
// An empty scholarNo returns every student.
func (r *Repository) StudentTotals(ctx context.Context, ownerID, subjectID, section, scholarNo string) ([]StudentTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.scholar_no, e.student_name,
		       COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE e.present) AS present
		FROM attendance_sheets s
		JOIN attendance_entries e ON e.sheet_id = s.id
		WHERE s.owner_id = $1 AND s.subject_id = $2 AND s.section = $3
		  AND ($4 = '' OR e.scholar_no = $4)
		GROUP BY e.scholar_no, e.student_name
		ORDER BY e.scholar_no
	`, ownerID, subjectID, section, scholarNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StudentTotal
	for rows.Next() {
		var t StudentTotal
		if err := rows.Scan(&t.ScholarNo, &t.Name, &t.TotalClasses, &t.PresentCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ClassDates counts the distinct dates recorded for a subject taught to a section.
func (r *Repository) ClassDates(ctx context.Context, ownerID, subjectID, section string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT e.date)
		FROM attendance_sheets s
		JOIN attendance_entries e ON e.sheet_id = s.id
		WHERE s.owner_id = $1 AND s.subject_id = $2 AND s.section = $3
	`, ownerID, subjectID, section).Scan(&n)
	return n, err
}
