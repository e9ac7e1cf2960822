package student

import (
	"context"
	"strings"

	"campus-attendance/internal/apperror"
	"campus-attendance/internal/store"
)

type Store interface {
	Insert(ctx context.Context, s Student) error
	List(ctx context.Context, branch, batch, section string) ([]Student, error)
	Classes(ctx context.Context) ([]ClassKey, error)
	Delete(ctx context.Context, scholarNo string) (bool, error)
}

type Service struct {
	store Store
}

// NewService returns a student service over s.
func NewService(s Store) *Service {
	return &Service{store: s}
}

// Create enrolls a student. Scholar numbers are unique.
func (s *Service) Create(ctx context.Context, in CreateInput) (Student, error) {
	st := Student{
		ScholarNo:    strings.TrimSpace(in.ScholarNo),
		Name:         strings.TrimSpace(in.Name),
		DepartmentID: in.DepartmentID,
		Branch:       strings.TrimSpace(in.Branch),
		Batch:        strings.TrimSpace(in.Batch),
		Section:      strings.TrimSpace(in.Section),
		Semester:     strings.TrimSpace(in.Semester),
	}
	if st.ScholarNo == "" || st.Name == "" || st.Branch == "" || st.Batch == "" || st.Section == "" {
		return Student{}, apperror.Validation("scholarNumber, name, branch, batch and section are required")
	}
	if err := s.store.Insert(ctx, st); err != nil {
		if _, ok := store.UniqueViolation(err); ok {
			return Student{}, apperror.Conflict("scholar number %s already exists", st.ScholarNo)
		}
		return Student{}, apperror.Internal(err, "create student")
	}
	return st, nil
}

// List returns students, filtered by any non-empty branch, batch or section.
func (s *Service) List(ctx context.Context, branch, batch, section string) ([]Student, error) {
	out, err := s.store.List(ctx, branch, batch, section)
	if err != nil {
		return nil, apperror.Internal(err, "list students")
	}
	if out == nil {
		out = []Student{}
	}
	return out, nil
}

// Enumerate lists every branch with its batches and the sections inside each batch.
func (s *Service) Enumerate(ctx context.Context) ([]BranchSections, error) {
	keys, err := s.store.Classes(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "enumerate classes")
	}
	return GroupClasses(keys), nil
}

// Delete removes the student with scholarNo.
func (s *Service) Delete(ctx context.Context, scholarNo string) error {
	deleted, err := s.store.Delete(ctx, scholarNo)
	if err != nil {
		return apperror.Internal(err, "delete student")
	}
	if !deleted {
		return apperror.NotFound("student %s not found", scholarNo)
	}
	return nil
}
