package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/FSE-2025/helpdesk-service/internal/models"
)

// ValidationError represents a single violated rule.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Validator wraps go-playground struct validation plus the entity business
// rules of the help desk. Rules are pure checks: no persistence calls, no
// side effects.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the custom rules registered.
func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerBusinessRules()

	return v
}

// Validate runs struct-tag validation on any value.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	err := v.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ToValidationErrors converts go-playground errors to the local shape.
func ToValidationErrors(err error) ValidationErrors {
	var errs ValidationErrors
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Field:   fe.Field(),
				Message: messageFor(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return errs
	}
	return ValidationErrors{{Field: "", Message: err.Error(), Rule: "struct"}}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "role_bitmask":
		return "must only use known role bits"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func (v *Validator) registerBusinessRules() {
	// Role bitmask validation (known bits only, non-negative)
	v.validate.RegisterValidation("role_bitmask", func(fl validator.FieldLevel) bool {
		return models.RoleSet(fl.Field().Int()).IsValid()
	})

	// Single role bit validation (exactly one known bit)
	v.validate.RegisterValidation("role_bit", func(fl validator.FieldLevel) bool {
		bit := fl.Field().Int()
		if bit <= 0 || bit&(bit-1) != 0 {
			return false
		}
		return models.RoleSet(bit).IsValid()
	})

	// Question title validation (5-100 characters)
	v.validate.RegisterValidation("question_title", func(fl validator.FieldLevel) bool {
		title := fl.Field().String()
		return len(title) >= 5 && len(title) <= 100
	})

	// Question content validation (10-2000 characters)
	v.validate.RegisterValidation("question_content", func(fl validator.FieldLevel) bool {
		content := fl.Field().String()
		return len(content) >= 10 && len(content) <= 2000
	})

	// Request reason validation (5-500 characters)
	v.validate.RegisterValidation("request_reason", func(fl validator.FieldLevel) bool {
		reason := fl.Field().String()
		return len(reason) >= 5 && len(reason) <= 500
	})
}
