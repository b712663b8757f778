package services

import (
	"errors"

	apperrors "github.com/storefront-ops/import-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Import job specific errors
	ErrImportJobNotFound  = errors.New("import job not found")
	ErrImportAlreadyDone  = errors.New("import already processed")
	ErrImportInProgress   = errors.New("import is currently processing")
	ErrImportNotDeletable = errors.New("import job cannot be deleted while processing")
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrUnsupportedEntity  = errors.New("unsupported entity type")
	ErrEmptyFile          = errors.New("file contains no data rows")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrImportJobNotFound)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrImportAlreadyDone) ||
		errors.Is(err, ErrImportInProgress) ||
		errors.Is(err, ErrImportNotDeletable)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrUnsupportedEntity) ||
		errors.Is(err, ErrEmptyFile) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}
