package services

import "fmt"

// Service errors
var (
	ErrNoSpreadsheet     = &ServiceError{Message: "no spreadsheet configured - set sheet_id or upload a workbook"}
	ErrNoSession         = &ServiceError{Message: "simulator session required - log in again"}
	ErrNoSuchCandidate   = &ServiceError{Message: "that team is not among the last search results - search again"}
	ErrUnknownSwimmer    = &ServiceError{Message: "unknown swimmer"}
	ErrUnknownVenue      = &ServiceError{Message: "unknown venue"}
	ErrInvalidStroke     = &ServiceError{Message: "invalid stroke - use FREE, BACK, BREAST or FLY"}
	ErrInvalidTime       = &ServiceError{Message: "invalid time - use M:SS.cc"}
	ErrInvalidGender     = &ServiceError{Message: "invalid gender - use M or F"}
	ErrInvalidDate       = &ServiceError{Message: "invalid date - use YYYY-MM-DD or DD/MM/YYYY"}
	ErrRelayNeedsFour    = &ServiceError{Message: "a relay needs four different swimmers"}
	ErrNotAWorkbook      = &ServiceError{Message: "upload is not a readable .xlsx workbook"}
	ErrMemberNumberEmpty = &ServiceError{Message: "membership number is required"}

	// ErrBaseURLNotConfigured is returned for login cards before the public URL is known
	ErrBaseURLNotConfigured = &ServiceError{Message: "base_url not configured"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidDistanceError reports a distance that is not a pool event
type InvalidDistanceError struct {
	Distance int
}

func (e *InvalidDistanceError) Error() string {
	return fmt.Sprintf("invalid distance: %d", e.Distance)
}
