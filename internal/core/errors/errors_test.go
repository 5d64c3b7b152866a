package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "catalogue not found")
		if err.Error() != "[NOT_FOUND] catalogue not found" {
			t.Errorf("expected [NOT_FOUND] catalogue not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInvalidCatalogue, "decode failed")
		expected := "[INVALID_CATALOGUE] decode failed: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("ContextIsSorted", func(t *testing.T) {
		err := Newf(CodeUnsafePodRequest, "type %s is not value-safe", "S").
			WithContext(CtxReason, "field f").
			WithContext(CtxDecl, "S")
		expected := "[UNSAFE_POD_REQUEST] type S is not value-safe {decl=S reason=field f}"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsFatalThroughWrapping", func(t *testing.T) {
		err := fmt.Errorf("run: %w", New(CodeStructuralCycle, "cycle"))
		if !IsFatal(err) {
			t.Error("expected structural cycle to be fatal")
		}
		if IsFatal(New(CodeInvalidCatalogue, "bad")) {
			t.Error("catalogue errors are not pipeline-fatal")
		}
		if code, ok := CodeOf(err); !ok || code != CodeStructuralCycle {
			t.Errorf("unexpected code %q", code)
		}
	})

	t.Run("AddContextWrapsPlainErrors", func(t *testing.T) {
		err := AddContext(errors.New("boom"), CtxStage, "order")
		if !IsCode(err, CodeInternal) {
			t.Errorf("expected internal code, got %v", err)
		}
	})
}
