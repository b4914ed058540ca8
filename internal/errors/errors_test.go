package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		kind    Kind
		message string
	}{
		{"NotFoundf", NotFoundf("member %s not found", "1042"), ErrNotFound, "member 1042 not found"},
		{"Validation", Validation("pick at least 4 swimmers"), ErrValidation, "pick at least 4 swimmers"},
		{"Validationf", Validationf("distance %d is not allowed", 75), ErrValidation, "distance 75 is not allowed"},
		{"Conflict", Conflict("swimmer already used"), ErrConflict, "swimmer already used"},
		{"InvalidInputf", InvalidInputf("bad stroke %q", "kick"), ErrInvalidInput, `bad stroke "kick"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, tt.err.Kind)
			}
			if tt.err.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, tt.err.Message)
			}
			if tt.err.Err != nil {
				t.Errorf("expected no underlying error, got %v", tt.err.Err)
			}
			if tt.err.Error() != tt.message {
				t.Errorf("expected Error() %q, got %q", tt.message, tt.err.Error())
			}
		})
	}
}

func TestUnavailable_WrapsCause(t *testing.T) {
	err := Unavailable(io.ErrUnexpectedEOF, "members tab")

	if err.Kind != ErrUnavailable {
		t.Errorf("expected ErrUnavailable, got %v", err.Kind)
	}
	if err.Error() != "members tab: unexpected EOF" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestInternal(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause)

	if err.Kind != ErrInternal {
		t.Errorf("expected ErrInternal, got %v", err.Kind)
	}
	if err.Unwrap() != cause {
		t.Error("expected Unwrap to return the cause")
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("sync: %w", Wrap(io.EOF, ErrUnavailable, "fetch venues"))

	if got := KindOf(wrapped); got != ErrUnavailable {
		t.Errorf("expected ErrUnavailable through fmt wrapping, got %v", got)
	}
	if got := KindOf(io.EOF); got != ErrInternal {
		t.Errorf("expected plain errors to be internal, got %v", got)
	}
	if !Is(Conflict("x"), ErrConflict) {
		t.Error("expected Is to match conflict")
	}
	if Is(nil, ErrInternal) {
		t.Error("nil must not match any kind")
	}
}

func TestKindString(t *testing.T) {
	if ErrUnavailable.String() != "unavailable" {
		t.Errorf("got %q", ErrUnavailable.String())
	}
	if Kind(42).String() != "kind(42)" {
		t.Errorf("got %q", Kind(42).String())
	}
}

func TestWithKind(t *testing.T) {
	cause := errors.New("at least 4 swimmers must be selected")
	err := WithKind(cause, ErrValidation)

	if err.Message != cause.Error() {
		t.Errorf("expected message copied from cause, got %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !Is(err, ErrValidation) {
		t.Error("expected validation kind")
	}
	if err.Error() != cause.Error() {
		t.Errorf("expected message not to repeat, got %q", err.Error())
	}
}
