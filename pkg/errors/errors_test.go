package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/igtools/igmigrate/pkg/errors"
)

func TestStructuralError(t *testing.T) {
	err := errors.NewStructuralError("contracts", 7, "CaseRef", "missing mandatory key")

	if !errors.IsStructural(err) {
		t.Error("expected StructuralError to match ErrStructural")
	}
	if errors.IsValidationError(err) {
		t.Error("StructuralError should not match ErrInvalidInput")
	}

	want := "contracts line 7: missing mandatory key (CaseRef)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	// Without a field the message drops the parenthetical.
	err = errors.NewStructuralError("assets", 3, "", "missing mandatory key")
	want = "assets line 3: missing mandatory key"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestValidationError(t *testing.T) {
	err := errors.NewValidationError("start_date", "05/03/2024", "not an ISO date")

	if !errors.IsValidationError(err) {
		t.Error("expected ValidationError to match ErrInvalidInput")
	}
	want := "validation failed for field start_date: not an ISO date"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapHelpers(t *testing.T) {
	if errors.WrapIO("read", "studies.csv", nil) != nil {
		t.Error("WrapIO(nil) should return nil")
	}

	inner := stderrors.New("disk on fire")
	err := errors.WrapIO("read", "studies.csv", inner)
	if !stderrors.Is(err, inner) {
		t.Error("WrapIO should preserve the wrapped error for errors.Is")
	}

	perr := errors.WrapParse("csv", "assets.csv", inner)
	var parseErr *errors.ParseError
	if !stderrors.As(perr, &parseErr) {
		t.Fatal("WrapParse should produce a *ParseError")
	}
	if parseErr.Format != "csv" || parseErr.File != "assets.csv" {
		t.Errorf("unexpected ParseError fields: %+v", parseErr)
	}
}
