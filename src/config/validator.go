package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one rejected configuration field
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config field %s: %s", e.Field, e.Message)
}

// Validator validates configuration values using go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// Validate validates a complete configuration
func (v *Validator) Validate(config *Config) error {
	if config.Version == "" {
		config.Version = "1.0"
	}

	if err := v.validate.Struct(config); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range validationErrors {
				return ValidationError{
					Field:   e.Namespace(),
					Message: fmt.Sprintf("validation failed on tag '%s' with value '%v'", e.Tag(), e.Value()),
					Value:   e.Value(),
				}
			}
		}
		return err
	}
	return nil
}
