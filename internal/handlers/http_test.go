package handlers_test

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	apperrors "github.com/abrezinsky/clubdash/internal/errors"
	"github.com/abrezinsky/clubdash/internal/handlers"
	"github.com/abrezinsky/clubdash/internal/relay"
	"github.com/abrezinsky/clubdash/internal/services"
)

func TestAPIError_Error(t *testing.T) {
	err := handlers.NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "test message")

	if err.Error() != "test message" {
		t.Errorf("expected 'test message', got %q", err.Error())
	}
	if err.Code != "BAD_REQUEST" {
		t.Errorf("expected code 'BAD_REQUEST', got %q", err.Code)
	}
}

func TestBadRequest_AssignsValidationCode(t *testing.T) {
	tests := []struct {
		message string
		code    string
	}{
		{"stroke is required", handlers.ErrCodeBadRequest},
		{"invalid time - use M:SS.cc", handlers.ErrCodeValidation},
		{"validation failed", handlers.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			err := handlers.BadRequest(tt.message)
			if err.Status != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", err.Status)
			}
			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, err.Code)
			}
		})
	}
}

func TestUnavailable(t *testing.T) {
	err := handlers.Unavailable("sheet offline")

	if err.Status != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", err.Status)
	}
	if err.Code != handlers.ErrCodeDataUnavailable {
		t.Errorf("expected DATA_UNAVAILABLE, got %q", err.Code)
	}
}

func TestInternalError_HidesCause(t *testing.T) {
	err := handlers.InternalError(fmt.Errorf("db connection failed"))

	if err.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", err.Status)
	}
	if err.Message != "Internal server error" {
		t.Errorf("expected generic message, got %q", err.Message)
	}
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apperrors.NotFoundf("member %s not found", "999"), http.StatusNotFound, handlers.ErrCodeNotFound},
		{"validation", apperrors.Validation("pick at least 4 swimmers"), http.StatusBadRequest, handlers.ErrCodeValidation},
		{"invalid input", apperrors.InvalidInputf("bad stroke %q", "kick"), http.StatusBadRequest, handlers.ErrCodeValidation},
		{"conflict", apperrors.Conflict("swimmer already used"), http.StatusConflict, handlers.ErrCodeConflict},
		{"unavailable", apperrors.Unavailable(io.ErrUnexpectedEOF, "read members tab"), http.StatusServiceUnavailable, handlers.ErrCodeDataUnavailable},
		{"internal kind", apperrors.Internal(errors.New("boom")), http.StatusInternalServerError, handlers.ErrCodeInternalServer},
		{"wrapped relay validation", apperrors.WithKind(relay.ErrInsufficientSwimmers, apperrors.ErrValidation), http.StatusBadRequest, handlers.ErrCodeValidation},
		{"no valid combination", relay.ErrNoValidCombination, http.StatusUnprocessableEntity, handlers.ErrCodeNoValidCombination},
		{"wrapped no valid combination", fmt.Errorf("search: %w", relay.ErrNoValidCombination), http.StatusUnprocessableEntity, handlers.ErrCodeNoValidCombination},
		{"service error", services.ErrInvalidStroke, http.StatusBadRequest, handlers.ErrCodeValidation},
		{"service error plain", services.ErrNoSpreadsheet, http.StatusBadRequest, handlers.ErrCodeBadRequest},
		{"unknown swimmer", services.ErrUnknownSwimmer, http.StatusNotFound, handlers.ErrCodeNotFound},
		{"distance", &services.InvalidDistanceError{Distance: 75}, http.StatusBadRequest, handlers.ErrCodeInvalidDistance},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError, handlers.ErrCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := handlers.ToAPIError(tt.err)
			if apiErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.Status)
			}
			if apiErr.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, apiErr.Code)
			}
		})
	}
}

func TestToAPIError_DistanceMessage(t *testing.T) {
	apiErr := handlers.ToAPIError(&services.InvalidDistanceError{Distance: 75})
	if apiErr.Message != "invalid distance: 75" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}
