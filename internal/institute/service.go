package institute

import (
	"context"
	"strings"

	"campus-attendance/internal/apperror"
	"campus-attendance/internal/department"
)

type Store interface {
	Get(ctx context.Context, configType string) (*Settings, error)
	Upsert(ctx context.Context, in SettingsInput) error
	InsertSession(ctx context.Context, configType, name string, active bool) (bool, error)
	Activate(ctx context.Context, configType, name string) (bool, error)
	DeleteSession(ctx context.Context, configType, name string) (bool, error)
}

// Service manages the institute configuration singleton for each config type.
type Service struct {
	store Store
}

// NewService returns an institute settings service over s.
func NewService(s Store) *Service {
	return &Service{store: s}
}

func configType(t string) string {
	if t = strings.TrimSpace(t); t == "" {
		return DefaultConfigType
	}
	return t
}

// Get loads the settings for config type t, the default type when t is empty.
func (s *Service) Get(ctx context.Context, t string) (Settings, error) {
	t = configType(t)
	settings, err := s.store.Get(ctx, t)
	if err != nil {
		return Settings{}, apperror.Internal(err, "load institute settings")
	}
	if settings == nil {
		return Settings{}, apperror.NotFound("no settings for config type %s", t)
	}
	return *settings, nil
}

// Upsert creates or replaces the settings row and returns the stored result.
func (s *Service) Upsert(ctx context.Context, in SettingsInput) (Settings, error) {
	in.ConfigType = configType(in.ConfigType)
	in.InstituteName = strings.TrimSpace(in.InstituteName)
	if in.InstituteName == "" {
		return Settings{}, apperror.Validation("instituteName is required")
	}
	if in.AcademicYear != "" {
		if err := department.ValidateSession(in.AcademicYear); err != nil {
			return Settings{}, apperror.Validation("academicYear %q must look like 2024-25 or 2024-2025", in.AcademicYear)
		}
	}
	if err := s.store.Upsert(ctx, in); err != nil {
		return Settings{}, apperror.Internal(err, "save institute settings")
	}
	return s.Get(ctx, in.ConfigType)
}

// AddSession registers an academic session. An active session replaces the current one.
func (s *Service) AddSession(ctx context.Context, in SessionInput) (Settings, error) {
	in.ConfigType = configType(in.ConfigType)
	in.Name = strings.TrimSpace(in.Name)
	if err := department.ValidateSession(in.Name); err != nil {
		return Settings{}, err
	}
	if _, err := s.Get(ctx, in.ConfigType); err != nil {
		return Settings{}, err
	}
	added, err := s.store.InsertSession(ctx, in.ConfigType, in.Name, in.Active)
	if err != nil {
		return Settings{}, apperror.Internal(err, "add institute session")
	}
	if !added {
		return Settings{}, apperror.Conflict("session %s already exists", in.Name)
	}
	return s.Get(ctx, in.ConfigType)
}

// SetActiveSession makes name the single active session.
func (s *Service) SetActiveSession(ctx context.Context, t, name string) (Settings, error) {
	t = configType(t)
	found, err := s.store.Activate(ctx, t, strings.TrimSpace(name))
	if err != nil {
		return Settings{}, apperror.Internal(err, "activate institute session")
	}
	if !found {
		return Settings{}, apperror.NotFound("session %s not found", name)
	}
	return s.Get(ctx, t)
}

// RemoveSession deletes a named session from the settings of type t.
func (s *Service) RemoveSession(ctx context.Context, t, name string) error {
	deleted, err := s.store.DeleteSession(ctx, configType(t), strings.TrimSpace(name))
	if err != nil {
		return apperror.Internal(err, "remove institute session")
	}
	if !deleted {
		return apperror.NotFound("session %s not found", name)
	}
	return nil
}
