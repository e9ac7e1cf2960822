package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("load branch: %w", NotFound("branch %s not found", "CSE"))
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found, got %s", KindOf(err))
	}
	if HTTPStatus(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", HTTPStatus(err))
	}
}

func TestUnknownErrorIsInternal(t *testing.T) {
	err := errors.New("boom")
	if KindOf(err) != KindInternal {
		t.Fatalf("expected internal, got %s", KindOf(err))
	}
	if HTTPStatus(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", HTTPStatus(err))
	}
	if KindOf(nil) != "" {
		t.Fatalf("expected empty kind for nil error")
	}
}

func TestStatusMapping(t *testing.T) {
	cases := map[int]error{
		http.StatusBadRequest:          Validation("bad"),
		http.StatusConflict:            Conflict("dup"),
		http.StatusInternalServerError: Internal(errors.New("db down"), "save department"),
	}
	for want, err := range cases {
		if got := HTTPStatus(err); got != want {
			t.Fatalf("expected %d for %v, got %d", want, err, got)
		}
	}
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("db down")
	err := Internal(cause, "save department")
	if !errors.Is(err, cause) {
		t.Fatalf("expected internal error to unwrap to its cause")
	}
	if err.Error() != "save department" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
