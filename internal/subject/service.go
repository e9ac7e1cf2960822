package subject

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus-attendance/internal/apperror"
	"campus-attendance/internal/store"
)

type Store interface {
	Insert(ctx context.Context, s Subject) error
	Get(ctx context.Context, id string) (*Subject, error)
	List(ctx context.Context, departmentID string) ([]Subject, error)
	Names(ctx context.Context, ids []string) (map[string]string, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// DepartmentChecker confirms a department exists before subjects are attached to it.
type DepartmentChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	store       Store
	departments DepartmentChecker
}

// NewService returns a subject service. departments guards the owning department.
func NewService(s Store, departments DepartmentChecker) *Service {
	return &Service{store: s, departments: departments}
}

// Create adds a subject to an existing department.
func (s *Service) Create(ctx context.Context, in CreateInput) (Subject, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" || in.Name == "" {
		return Subject{}, apperror.Validation("subjectCode and subjectName are required")
	}
	exists, err := s.departments.Exists(ctx, in.DepartmentID)
	if err != nil {
		return Subject{}, apperror.Internal(err, "load department")
	}
	if !exists {
		return Subject{}, apperror.NotFound("department not found")
	}

	sub := Subject{
		ID:           uuid.NewString(),
		Code:         in.Code,
		Name:         in.Name,
		DepartmentID: in.DepartmentID,
		IsElective:   in.IsElective,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, sub); err != nil {
		if constraint, ok := store.UniqueViolation(err); ok {
			if constraint == "subjects_code_key" {
				return Subject{}, apperror.Conflict("subject code %s already exists", sub.Code)
			}
			return Subject{}, apperror.Conflict("subject %s already exists in this department", sub.Name)
		}
		return Subject{}, apperror.Internal(err, "create subject")
	}
	return sub, nil
}

// Get loads a subject by id.
func (s *Service) Get(ctx context.Context, id string) (Subject, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Subject{}, apperror.Validation("invalid subject id %q", id)
	}
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		return Subject{}, apperror.Internal(err, "load subject")
	}
	if sub == nil {
		return Subject{}, apperror.NotFound("subject not found")
	}
	return *sub, nil
}

// List returns subjects, restricted to one department when departmentID is set.
func (s *Service) List(ctx context.Context, departmentID string) ([]Subject, error) {
	out, err := s.store.List(ctx, departmentID)
	if err != nil {
		return nil, apperror.Internal(err, "list subjects")
	}
	if out == nil {
		out = []Subject{}
	}
	return out, nil
}

// GroupedByDepartment returns every subject grouped under its department.
func (s *Service) GroupedByDepartment(ctx context.Context) ([]DepartmentSubjects, error) {
	all, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}
	return GroupByDepartment(all), nil
}

// Names resolves subject names for report rows.
func (s *Service) Names(ctx context.Context, ids []string) (map[string]string, error) {
	return s.store.Names(ctx, ids)
}

// Delete removes a subject by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.Validation("invalid subject id %q", id)
	}
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return apperror.Internal(err, "delete subject")
	}
	if !deleted {
		return apperror.NotFound("subject not found")
	}
	return nil
}
