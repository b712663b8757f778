package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("entity_type", "must be a valid entity type", "ORDERS")

	if err.Field != "entity_type" {
		t.Errorf("Expected field to be 'entity_type', got '%s'", err.Field)
	}

	if err.Message != "must be a valid entity type" {
		t.Errorf("Expected message to be 'must be a valid entity type', got '%s'", err.Message)
	}

	if err.Value != "ORDERS" {
		t.Errorf("Expected value to be 'ORDERS', got '%v'", err.Value)
	}

	expected := "validation error on field 'entity_type': must be a valid entity type"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("mode", "is required", nil))
	expected := "validation failed: mode is required"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("entity_type", "is required", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("mode", "is required", "required", "")

	if err.Rule != "required" {
		t.Errorf("Expected rule to be 'required', got '%s'", err.Rule)
	}

	if err.Field != "mode" {
		t.Errorf("Expected field to be 'mode', got '%s'", err.Field)
	}
}
