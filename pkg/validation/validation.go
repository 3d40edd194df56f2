// Package validation holds the shared request validator and its custom rules.
package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"go-guildsync/pkg/swgoh"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with every custom rule registered
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonFieldName)
		if err := RegisterCustomValidators(v); err != nil {
			panic(err)
		}
		instance = v
	})
	return instance
}

// RegisterCustomValidators registers the guildsync validation rules
func RegisterCustomValidators(validate *validator.Validate) error {
	if err := validate.RegisterValidation("allycode", validateAllyCode); err != nil {
		return fmt.Errorf("failed to register allycode validator: %w", err)
	}
	if err := validate.RegisterValidation("numeric_id", validateNumericID); err != nil {
		return fmt.Errorf("failed to register numeric_id validator: %w", err)
	}
	return nil
}

// validateAllyCode accepts "123456789" or "123-456-789"
func validateAllyCode(fl validator.FieldLevel) bool {
	_, err := swgoh.ParseAllyCode(fl.Field().String())
	return err == nil
}

// validateNumericID accepts a positive 32-bit decimal
func validateNumericID(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return false
	}
	var n uint64
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
		n = n*10 + uint64(r-'0')
		if n > 1<<32-1 {
			return false
		}
	}
	return n > 0
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// ValidateStruct validates s and returns user-facing messages, or nil
func ValidateStruct(s interface{}) []string {
	var messages []string

	if err := Validator().Struct(s); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []string{err.Error()}
		}
		for _, fe := range verrs {
			messages = append(messages, formatValidationError(fe))
		}
	}

	return messages
}

// formatValidationError formats validation errors for user-friendly messages
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "len":
		return fmt.Sprintf("%s must contain exactly %s entries", err.Field(), err.Param())
	case "allycode":
		return fmt.Sprintf("%s must be a 9-digit ally code", err.Field())
	case "numeric_id":
		return fmt.Sprintf("%s must be a positive number", err.Field())
	default:
		return fmt.Sprintf("%s is invalid", err.Field())
	}
}
