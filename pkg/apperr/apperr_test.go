package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "not found", err: NotFound("edition %q not found", "2025"), want: http.StatusNotFound},
		{name: "validation", err: Invalid("email", "required"), want: http.StatusUnprocessableEntity},
		{name: "unauthorized", err: Unauthorized("login required"), want: http.StatusUnauthorized},
		{name: "wrapped failure", err: fmt.Errorf("save: %w", RequestFailure("store write failed", errors.New("disk full"))), want: http.StatusBadGateway},
		{name: "plain error", err: errors.New("boom"), want: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Fatalf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidationEmptyIsNil(t *testing.T) {
	t.Parallel()

	if err := Validation(nil); err != nil {
		t.Fatalf("Validation(nil) = %v, want nil", err)
	}
	err := Validation(map[string]string{"name": "required", "email": "required"})
	if !IsValidation(err) {
		t.Fatalf("IsValidation = false, want true")
	}
	if got, want := err.Error(), "invalid input (email: required, name: required)"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if got := FieldsOf(err)["name"]; got != "required" {
		t.Fatalf("FieldsOf[name] = %q, want %q", got, "required")
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("load: %w", NotFound("no published edition"))
	if !errors.Is(err, &Error{Kind: KindNotFound}) {
		t.Fatal("errors.Is did not match by kind")
	}
	if errors.Is(err, &Error{Kind: KindValidation}) {
		t.Fatal("errors.Is matched a different kind")
	}
}
