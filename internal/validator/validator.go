package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/storefront-ops/import-service/internal/models"
)

// Validator wraps struct-tag validation with the import domain's
// custom rules registered once.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("entity_type", validateEntityType)
	validate.RegisterValidation("file_format", validateFileFormat)
	validate.RegisterValidation("conflict_mode", validateConflictMode)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateEntityType(fl validator.FieldLevel) bool {
	return models.EntityType(fl.Field().String()).Valid()
}

func validateFileFormat(fl validator.FieldLevel) bool {
	switch models.FileFormat(fl.Field().String()) {
	case models.FormatCSV, models.FormatJSON, models.FormatXLSX:
		return true
	}
	return false
}

func validateConflictMode(fl validator.FieldLevel) bool {
	switch models.ConflictMode(fl.Field().String()) {
	case models.ModeCreate, models.ModeUpdate, models.ModeUpsert:
		return true
	}
	return false
}
