package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("vignette", "required")

	if got := err.Error(); got != "validation: vignette: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "id", Message: "required"},
		{Field: "options", Message: "exactly two required"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if len(err.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(err.Errors))
	}
}

func TestValidationError_WrappedStillMatches(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("load: %w", NewValidationError("id", "required"))

	var ve *ValidationError
	if !errors.As(wrapped, &ve) {
		t.Fatal("errors.As should find *ValidationError")
	}
	if !errors.Is(wrapped, ErrValidation) {
		t.Fatal("errors.Is(wrapped, ErrValidation) = false")
	}
}
