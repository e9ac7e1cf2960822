package institute

import (
	"context"
	"database/sql"
	"errors"

	"campus-attendance/internal/store"
)

type Repository struct {
	db *sql.DB
}

// NewRepository returns a Postgres-backed settings Store.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns nil when no settings exist for configType.
func (r *Repository) Get(ctx context.Context, configType string) (*Settings, error) {
	s := Settings{ConfigType: configType}
	err := r.db.QueryRowContext(ctx, `
		SELECT active_semester, academic_year, institute_name FROM institute_settings WHERE config_type = $1
	`, configType).Scan(&s.ActiveSemester, &s.AcademicYear, &s.InstituteName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT name, is_active FROM institute_sessions WHERE config_type = $1 ORDER BY name
	`, configType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	s.Sessions = []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.Name, &sess.IsActive); err != nil {
			return nil, err
		}
		s.Sessions = append(s.Sessions, sess)
	}
	return &s, rows.Err()
}

func (r *Repository) Upsert(ctx context.Context, in SettingsInput) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO institute_settings (config_type, active_semester, academic_year, institute_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (config_type) DO UPDATE
		SET active_semester = EXCLUDED.active_semester,
		    academic_year = EXCLUDED.academic_year,
		    institute_name = EXCLUDED.institute_name,
		    updated_at = NOW()
	`, in.ConfigType, in.ActiveSemester, in.AcademicYear, in.InstituteName)
	return err
}

// InsertSession adds a session, deactivating the others first when it is to be active.
// It reports false when the session already exists.
func (r *Repository) InsertSession(ctx context.Context, configType, name string, active bool) (bool, error) {
	inserted := false
	err := store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if active {
			if err := deactivateAll(ctx, tx, configType); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO institute_sessions (config_type, name, is_active) VALUES ($1, $2, $3)
			ON CONFLICT (config_type, name) DO NOTHING
		`, configType, name, active)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		inserted = n > 0
		if !inserted {
			return errSessionExists
		}
		return nil
	})
	if errors.Is(err, errSessionExists) {
		return false, nil
	}
	return inserted, err
}

var errSessionExists = errors.New("session exists")

// Activate makes name the only active session. It reports false when name does not exist.
func (r *Repository) Activate(ctx context.Context, configType, name string) (bool, error) {
	found := false
	err := store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := deactivateAll(ctx, tx, configType); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE institute_sessions SET is_active = TRUE WHERE config_type = $1 AND name = $2
		`, configType, name)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}
		found = true
		return nil
	})
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return found, err
}

func deactivateAll(ctx context.Context, tx store.DBTX, configType string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE institute_sessions SET is_active = FALSE WHERE config_type = $1 AND is_active
	`, configType)
	return err
}

func (r *Repository) DeleteSession(ctx context.Context, configType, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM institute_sessions WHERE config_type = $1 AND name = $2
	`, configType, name)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
