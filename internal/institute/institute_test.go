package institute

import (
	"context"
	"testing"

	"campus-attendance/internal/apperror"
)

type fakeStore struct {
	settings map[string]*Settings
}

func (f *fakeStore) Get(_ context.Context, t string) (*Settings, error) {
	s, ok := f.settings[t]
	if !ok {
		return nil, nil
	}
	copied := *s
	copied.Sessions = append([]Session{}, s.Sessions...)
	return &copied, nil
}

func (f *fakeStore) Upsert(_ context.Context, in SettingsInput) error {
	s, ok := f.settings[in.ConfigType]
	if !ok {
		s = &Settings{ConfigType: in.ConfigType, Sessions: []Session{}}
		f.settings[in.ConfigType] = s
	}
	s.ActiveSemester, s.AcademicYear, s.InstituteName = in.ActiveSemester, in.AcademicYear, in.InstituteName
	return nil
}

func (f *fakeStore) InsertSession(_ context.Context, t, name string, active bool) (bool, error) {
	s := f.settings[t]
	for _, sess := range s.Sessions {
		if sess.Name == name {
			return false, nil
		}
	}
	if active {
		for i := range s.Sessions {
			s.Sessions[i].IsActive = false
		}
	}
	s.Sessions = append(s.Sessions, Session{Name: name, IsActive: active})
	return true, nil
}

func (f *fakeStore) Activate(_ context.Context, t, name string) (bool, error) {
	s := f.settings[t]
	idx := -1
	for i := range s.Sessions {
		if s.Sessions[i].Name == name {
			idx = i
		}
	}
	if idx < 0 {
		return false, nil
	}
	for i := range s.Sessions {
		s.Sessions[i].IsActive = i == idx
	}
	return true, nil
}

func (f *fakeStore) DeleteSession(_ context.Context, t, name string) (bool, error) {
	s := f.settings[t]
	for i, sess := range s.Sessions {
		if sess.Name == name {
			s.Sessions = append(s.Sessions[:i], s.Sessions[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func countActive(s Settings) int {
	n := 0
	for _, sess := range s.Sessions {
		if sess.IsActive {
			n++
		}
	}
	return n
}

func TestSingleActiveSession(t *testing.T) {
	svc := NewService(&fakeStore{settings: map[string]*Settings{}})
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, SettingsInput{InstituteName: "Institute of Technology", AcademicYear: "2024-25"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := svc.AddSession(ctx, SessionInput{Name: "2023-27", Active: true}); err != nil {
		t.Fatalf("add session: %v", err)
	}
	settings, err := svc.AddSession(ctx, SessionInput{Name: "2024-28", Active: true})
	if err != nil {
		t.Fatalf("add second session: %v", err)
	}
	if countActive(settings) != 1 || settings.Active() != "2024-28" {
		t.Fatalf("expected only 2024-28 active, got %+v", settings.Sessions)
	}

	settings, err = svc.SetActiveSession(ctx, "", "2023-27")
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if countActive(settings) != 1 || settings.Active() != "2023-27" {
		t.Fatalf("expected only 2023-27 active, got %+v", settings.Sessions)
	}

	if _, err := svc.SetActiveSession(ctx, "", "2019-23"); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.AddSession(ctx, SessionInput{Name: "2023-27"}); !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("expected conflict for duplicate session, got %v", err)
	}
}

func TestAddSessionNeedsSettings(t *testing.T) {
	svc := NewService(&fakeStore{settings: map[string]*Settings{}})
	_, err := svc.AddSession(context.Background(), SessionInput{Name: "2023-27"})
	if !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found without settings, got %v", err)
	}
	_, err = svc.AddSession(context.Background(), SessionInput{Name: "23-27"})
	if !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error for bad session, got %v", err)
	}
}

func TestUpsertValidation(t *testing.T) {
	svc := NewService(&fakeStore{settings: map[string]*Settings{}})
	if _, err := svc.Upsert(context.Background(), SettingsInput{}); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error without name, got %v", err)
	}
	if _, err := svc.Upsert(context.Background(), SettingsInput{InstituteName: "X", AcademicYear: "24-25"}); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error for academic year, got %v", err)
	}
}
