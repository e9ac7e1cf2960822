package subject

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"campus-attendance/internal/apperror"
)

type fakeStore struct {
	subjects []Subject
}

func (f *fakeStore) Insert(_ context.Context, s Subject) error {
	for _, existing := range f.subjects {
		if existing.Code == s.Code {
			return &pgconn.PgError{Code: "23505", ConstraintName: "subjects_code_key"}
		}
		if existing.DepartmentID == s.DepartmentID && existing.Name == s.Name {
			return &pgconn.PgError{Code: "23505", ConstraintName: "subjects_department_name_key"}
		}
	}
	f.subjects = append(f.subjects, s)
	return nil
}

func (f *fakeStore) Get(_ context.Context, id string) (*Subject, error) {
	for _, s := range f.subjects {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) List(_ context.Context, departmentID string) ([]Subject, error) {
	var out []Subject
	for _, s := range f.subjects {
		if departmentID == "" || s.DepartmentID == departmentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) Names(_ context.Context, ids []string) (map[string]string, error) {
	out := map[string]string{}
	for _, s := range f.subjects {
		for _, id := range ids {
			if s.ID == id {
				out[id] = s.Name
			}
		}
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) (bool, error) {
	for i, s := range f.subjects {
		if s.ID == id {
			f.subjects = append(f.subjects[:i], f.subjects[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type knownDepartments map[string]bool

func (k knownDepartments) Exists(_ context.Context, id string) (bool, error) {
	return k[id], nil
}

const (
	cse = "11111111-1111-1111-1111-111111111111"
	ece = "22222222-2222-2222-2222-222222222222"
)

func TestCreateSubjectUniqueness(t *testing.T) {
	fs := &fakeStore{}
	svc := NewService(fs, knownDepartments{cse: true, ece: true})
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Code: "CS101", Name: "Data Structures", DepartmentID: cse}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Code: "CS101", Name: "Algorithms", DepartmentID: cse}); !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("expected duplicate code conflict, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Code: "CS102", Name: "Data Structures", DepartmentID: cse}); !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("expected duplicate name conflict, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Code: "EC102", Name: "Data Structures", DepartmentID: ece}); err != nil {
		t.Fatalf("same name in another department must be allowed: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Code: "ME1", Name: "Thermo", DepartmentID: "33333333-3333-3333-3333-333333333333"}); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected unknown department, got %v", err)
	}
	if len(fs.subjects) != 2 {
		t.Fatalf("expected failed creates not to mutate state, got %d subjects", len(fs.subjects))
	}
}

func TestGroupByDepartment(t *testing.T) {
	groups := GroupByDepartment([]Subject{
		{ID: "a", Code: "CS101", Name: "DS", DepartmentID: cse},
		{ID: "b", Code: "EC101", Name: "Signals", DepartmentID: ece, IsElective: true},
		{ID: "c", Code: "CS102", Name: "OS", DepartmentID: cse},
	})
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].DepartmentID != cse || len(groups[0].Subjects) != 2 || groups[0].Subjects[1].Code != "CS102" {
		t.Fatalf("unexpected first group %+v", groups[0])
	}
	if !groups[1].Subjects[0].IsElective {
		t.Fatalf("expected elective flag to be carried")
	}
	if empty := GroupByDepartment(nil); empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice")
	}
}

func TestDeleteMissingSubject(t *testing.T) {
	svc := NewService(&fakeStore{}, knownDepartments{})
	if err := svc.Delete(context.Background(), cse); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Delete(context.Background(), "x"); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
