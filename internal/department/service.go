package department

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus-attendance/internal/apperror"
	"campus-attendance/internal/store"
)

// Store is the persistence the service needs; *Repository implements it.
type Store interface {
	InsertDepartment(ctx context.Context, d Department) error
	ListDepartments(ctx context.Context) ([]Department, error)
	GetDepartment(ctx context.Context, id string) (*Department, error)
	DeleteDepartment(ctx context.Context, id string) (bool, error)
	InsertBranch(ctx context.Context, departmentID string, b Branch, c Course) error
	DeleteBranch(ctx context.Context, departmentID, shortForm string) (bool, error)
	BranchID(ctx context.Context, departmentID, shortForm string) (string, error)
	InsertSession(ctx context.Context, branchID, session string) (bool, error)
	DeleteSession(ctx context.Context, branchID, session string) (bool, error)
	HasSession(ctx context.Context, branchID, session string) (bool, error)
}

// Service manages departments, branches and branch sessions.
type Service struct {
	store Store
}

// NewService returns a department service over s.
func NewService(s Store) *Service {
	return &Service{store: s}
}

var conflictFields = map[string]string{
	"departments_name_key":               "department name already exists",
	"departments_code_key":               "department code already exists",
	"branches_department_short_form_key": "branch shortForm already exists in this department",
	"branch_sessions_branch_session_key": "session already exists for this branch",
}

func mapWriteError(err error, op string) error {
	if constraint, ok := store.UniqueViolation(err); ok {
		if msg, known := conflictFields[constraint]; known {
			return apperror.Conflict("%s", msg)
		}
		return apperror.Conflict("%s: duplicate value", op)
	}
	return apperror.Internal(err, op)
}

// CreateDepartment registers a department. Duplicate names or codes are a Conflict.
func (s *Service) CreateDepartment(ctx context.Context, name, code string) (Department, error) {
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	if name == "" || code == "" {
		return Department{}, apperror.Validation("department and cn are required")
	}

	d := Department{
		ID:        uuid.NewString(),
		Name:      name,
		Code:      code,
		Branches:  []Branch{},
		Courses:   []Course{},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.InsertDepartment(ctx, d); err != nil {
		return Department{}, mapWriteError(err, "create department")
	}
	return d, nil
}

// ListDepartments returns every department with its branches and courses.
func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	out, err := s.store.ListDepartments(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "list departments")
	}
	if out == nil {
		out = []Department{}
	}
	return out, nil
}

// GetDepartment loads one department by id.
func (s *Service) GetDepartment(ctx context.Context, id string) (Department, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Department{}, apperror.Validation("invalid department id %q", id)
	}
	d, err := s.store.GetDepartment(ctx, id)
	if err != nil {
		return Department{}, apperror.Internal(err, "load department")
	}
	if d == nil {
		return Department{}, apperror.NotFound("department not found")
	}
	return *d, nil
}

// DeleteDepartment removes a department along with its branches and subjects.
func (s *Service) DeleteDepartment(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.Validation("invalid department id %q", id)
	}
	deleted, err := s.store.DeleteDepartment(ctx, id)
	if err != nil {
		return apperror.Internal(err, "delete department")
	}
	if !deleted {
		return apperror.NotFound("department not found")
	}
	return nil
}

// AddBranch validates the branch and records the course it belongs to.
func (s *Service) AddBranch(ctx context.Context, departmentID string, in BranchInput) (Branch, error) {
	in, err := in.Normalize()
	if err != nil {
		return Branch{}, err
	}
	d, err := s.GetDepartment(ctx, departmentID)
	if err != nil {
		return Branch{}, err
	}
	if _, exists := d.FindBranch(in.ShortForm); exists {
		return Branch{}, apperror.Conflict("branch %s already exists in %s", in.ShortForm, d.Name)
	}

	b := Branch{
		ID:        uuid.NewString(),
		Program:   in.Program,
		Course:    in.Course,
		ShortForm: in.ShortForm,
		Duration:  in.Duration,
		Sessions:  in.Sessions,
	}
	c := Course{Name: in.Course, Type: DeriveCourseType(in.Course), Duration: in.Duration}
	if err := s.store.InsertBranch(ctx, d.ID, b, c); err != nil {
		return Branch{}, mapWriteError(err, "add branch")
	}
	return b, nil
}

// RemoveBranch deletes the branch with shortForm from a department.
func (s *Service) RemoveBranch(ctx context.Context, departmentID, shortForm string) error {
	if _, err := s.GetDepartment(ctx, departmentID); err != nil {
		return err
	}
	deleted, err := s.store.DeleteBranch(ctx, departmentID, shortForm)
	if err != nil {
		return apperror.Internal(err, "remove branch")
	}
	if !deleted {
		return apperror.NotFound("branch %s not found", shortForm)
	}
	return nil
}

// HasBranch reports whether the department exists and has the branch.
func (s *Service) HasBranch(ctx context.Context, departmentID, shortForm string) (bool, error) {
	if _, err := s.GetDepartment(ctx, departmentID); err != nil {
		return false, err
	}
	id, err := s.store.BranchID(ctx, departmentID, shortForm)
	if err != nil {
		return false, apperror.Internal(err, "load branch")
	}
	return id != "", nil
}

func (s *Service) branchID(ctx context.Context, departmentID, shortForm string) (string, error) {
	if _, err := s.GetDepartment(ctx, departmentID); err != nil {
		return "", err
	}
	id, err := s.store.BranchID(ctx, departmentID, shortForm)
	if err != nil {
		return "", apperror.Internal(err, "load branch")
	}
	if id == "" {
		return "", apperror.NotFound("branch %s not found", shortForm)
	}
	return id, nil
}

// HasSession reports whether the branch already admits the session.
func (s *Service) HasSession(ctx context.Context, departmentID, shortForm, session string) (bool, error) {
	id, err := s.branchID(ctx, departmentID, shortForm)
	if err != nil {
		return false, err
	}
	exists, err := s.store.HasSession(ctx, id, session)
	if err != nil {
		return false, apperror.Internal(err, "load session")
	}
	return exists, nil
}

// AddSession adds an academic session to a branch. The insert itself is conditional, so a
// concurrent duplicate surfaces as a conflict instead of a second row.
func (s *Service) AddSession(ctx context.Context, departmentID, shortForm, session string) error {
	session = strings.TrimSpace(session)
	if err := ValidateSession(session); err != nil {
		return err
	}
	id, err := s.branchID(ctx, departmentID, shortForm)
	if err != nil {
		return err
	}
	added, err := s.store.InsertSession(ctx, id, session)
	if err != nil {
		return mapWriteError(err, "add session")
	}
	if !added {
		return apperror.Conflict("session %s already exists for branch %s", session, shortForm)
	}
	return nil
}

// RemoveSession detaches an academic session from a branch.
func (s *Service) RemoveSession(ctx context.Context, departmentID, shortForm, session string) error {
	id, err := s.branchID(ctx, departmentID, shortForm)
	if err != nil {
		return err
	}
	deleted, err := s.store.DeleteSession(ctx, id, session)
	if err != nil {
		return apperror.Internal(err, "remove session")
	}
	if !deleted {
		return apperror.NotFound("session %s not found for branch %s", session, shortForm)
	}
	return nil
}

// Courses returns the courses derived from the department's branches.
func (s *Service) Courses(ctx context.Context, departmentID string) ([]Course, error) {
	d, err := s.GetDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	return d.Courses, nil
}

// Exists reports whether a department with id exists. Malformed ids count as missing.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	d, err := s.store.GetDepartment(ctx, id)
	if err != nil {
		return false, fmt.Errorf("load department: %w", err)
	}
	return d != nil, nil
}
