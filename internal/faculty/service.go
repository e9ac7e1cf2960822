package faculty

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-attendance/internal/apperror"
	"campus-attendance/internal/auth"
	"campus-attendance/internal/store"
)

type Store interface {
	Insert(ctx context.Context, f Faculty) error
	Get(ctx context.Context, id string) (*Faculty, error)
	GetByEmployeeCode(ctx context.Context, code string) (*Faculty, error)
	GetByEmail(ctx context.Context, email string) (*Faculty, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]Faculty, error)
	CountByRole(ctx context.Context, role string) (int, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// DepartmentChecker confirms a department exists before faculty are attached to it.
type DepartmentChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// ErrInvalidCredentials is returned by Authenticate for unknown emails and wrong passwords alike.
var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	store       Store
	departments DepartmentChecker
	bcryptCost  int
	log         *zap.Logger
}

// NewService builds the faculty service. Passwords are hashed with bcryptCost.
func NewService(s Store, departments DepartmentChecker, bcryptCost int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: s, departments: departments, bcryptCost: bcryptCost, log: log}
}

var conflictFields = map[string]string{
	"faculty_employee_code_key": "employeeCode already exists",
	"faculty_abbreviation_key":  "abbreviation already exists",
	"faculty_email_key":         "email already exists",
}

// Create hashes the password and stores the account together with an empty timetable.
func (s *Service) Create(ctx context.Context, in CreateInput) (Faculty, error) {
	in.Normalize()
	if in.Name == "" || in.EmployeeCode == "" || in.Abbreviation == "" || in.Email == "" {
		return Faculty{}, apperror.Validation("name, employeeCode, abbreviation and email are required")
	}
	if !in.Role.Valid() {
		return Faculty{}, apperror.Validation("invalid role %q", in.Role)
	}
	if in.DepartmentID != "" {
		if _, err := uuid.Parse(in.DepartmentID); err != nil {
			return Faculty{}, apperror.Validation("invalid department id %q", in.DepartmentID)
		}
		exists, err := s.departments.Exists(ctx, in.DepartmentID)
		if err != nil {
			return Faculty{}, apperror.Internal(err, "load department")
		}
		if !exists {
			return Faculty{}, apperror.NotFound("department not found")
		}
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return Faculty{}, apperror.Validation("%s", err.Error())
	}
	if err != nil {
		return Faculty{}, apperror.Internal(err, "hash password")
	}

	f := Faculty{
		ID:           uuid.NewString(),
		Name:         in.Name,
		EmployeeCode: in.EmployeeCode,
		Abbreviation: in.Abbreviation,
		DepartmentID: in.DepartmentID,
		Email:        in.Email,
		Phone:        in.Phone,
		Role:         in.Role,
		About:        in.About,
		CreatedAt:    time.Now().UTC(),
		PasswordHash: hash,
	}
	if err := s.store.Insert(ctx, f); err != nil {
		if constraint, ok := store.UniqueViolation(err); ok {
			if msg, known := conflictFields[constraint]; known {
				return Faculty{}, apperror.Conflict("%s", msg)
			}
			return Faculty{}, apperror.Conflict("faculty already exists")
		}
		return Faculty{}, apperror.Internal(err, "create faculty")
	}
	return f, nil
}

// Get loads a faculty member by id.
func (s *Service) Get(ctx context.Context, id string) (Faculty, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Faculty{}, apperror.Validation("invalid faculty id %q", id)
	}
	f, err := s.store.Get(ctx, id)
	if err != nil {
		return Faculty{}, apperror.Internal(err, "load faculty")
	}
	if f == nil {
		return Faculty{}, apperror.NotFound("faculty not found")
	}
	return *f, nil
}

// GetByEmployeeCode loads a faculty member by employee code.
func (s *Service) GetByEmployeeCode(ctx context.Context, code string) (Faculty, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Faculty{}, apperror.Validation("employeeCode is required")
	}
	f, err := s.store.GetByEmployeeCode(ctx, code)
	if err != nil {
		return Faculty{}, apperror.Internal(err, "load faculty")
	}
	if f == nil {
		return Faculty{}, apperror.NotFound("faculty with employeeCode %s not found", code)
	}
	return *f, nil
}

// ResolveOwner returns the faculty id for report queries that name either an owner id or an employee code.
func (s *Service) ResolveOwner(ctx context.Context, ownerID, employeeCode string) (string, error) {
	if ownerID != "" {
		if _, err := uuid.Parse(ownerID); err != nil {
			return "", apperror.Validation("invalid ownerId %q", ownerID)
		}
		return ownerID, nil
	}
	if employeeCode == "" {
		return "", apperror.Validation("ownerId or employeeCode is required")
	}
	f, err := s.GetByEmployeeCode(ctx, employeeCode)
	if err != nil {
		return "", err
	}
	return f.ID, nil
}

// ListByDepartment lists faculty, all of them when departmentID is empty.
func (s *Service) ListByDepartment(ctx context.Context, departmentID string) ([]Faculty, error) {
	out, err := s.store.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, apperror.Internal(err, "list faculty")
	}
	if out == nil {
		out = []Faculty{}
	}
	return out, nil
}

// Delete removes a faculty member. A missing id is NotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.Validation("invalid faculty id %q", id)
	}
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return apperror.Internal(err, "delete faculty")
	}
	if !deleted {
		return apperror.NotFound("faculty not found")
	}
	return nil
}

// Authenticate checks an email/password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Faculty, error) {
	f, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return Faculty{}, apperror.Internal(err, "load faculty")
	}
	if f == nil {
		return Faculty{}, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(f.PasswordHash, password); err != nil {
		return Faculty{}, ErrInvalidCredentials
	}
	return *f, nil
}

// EnsureAdmin seeds an admin account when none exists. Empty credentials skip seeding.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	n, err := s.store.CountByRole(ctx, string(auth.RoleAdmin))
	if err != nil {
		return apperror.Internal(err, "count admins")
	}
	if n > 0 {
		return nil
	}
	_, err = s.Create(ctx, CreateInput{
		Name:         "Administrator",
		EmployeeCode: "ADMIN",
		Abbreviation: "ADMIN",
		Email:        email,
		Password:     password,
		Role:         auth.RoleAdmin,
	})
	if err != nil {
		return err
	}
	s.log.Info("seeded admin account", zap.String("email", email))
	return nil
}
