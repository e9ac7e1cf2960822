package student

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"campus-attendance/internal/apperror"
)

func TestGroupClasses(t *testing.T) {
	got := GroupClasses([]ClassKey{
		{Branch: "ECE", Batch: "2022-26", Section: "A"},
		{Branch: "CSE", Batch: "2023-27", Section: "B"},
		{Branch: "CSE", Batch: "2022-26", Section: "B"},
		{Branch: "CSE", Batch: "2022-26", Section: "A"},
		{Branch: "CSE", Batch: "2022-26", Section: "A"},
	})
	if len(got) != 2 || got[0].Branch != "CSE" || got[1].Branch != "ECE" {
		t.Fatalf("unexpected branches %+v", got)
	}
	cse := got[0]
	if len(cse.Batches) != 2 || cse.Batches[0].Batch != "2022-26" {
		t.Fatalf("unexpected batches %+v", cse.Batches)
	}
	if secs := cse.Batches[0].Sections; len(secs) != 2 || secs[0] != "A" || secs[1] != "B" {
		t.Fatalf("expected distinct sorted sections, got %v", secs)
	}
}

type conflictStore struct{ Store }

func (conflictStore) Insert(context.Context, Student) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "students_pkey"}
}

func TestCreateDuplicateScholar(t *testing.T) {
	svc := NewService(conflictStore{})
	_, err := svc.Create(context.Background(), CreateInput{
		ScholarNo: "2211201", Name: "Asha", Branch: "CSE", Batch: "2022-26", Section: "A",
	})
	if !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{ScholarNo: "1"}); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
