package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// report json field names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateStruct checks s against its `validate` tags and returns the first
// failure as a readable message
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("invalid validation error: %w", err)
	}

	first := validationErrors[0]
	field := first.Field()
	param := first.Param()

	switch first.Tag() {
	case "required":
		return fmt.Errorf("field '%s' is required", field)
	case "email":
		return fmt.Errorf("field '%s' must be a valid email address", field)
	case "min":
		return fmt.Errorf("field '%s' must be at least %s characters long", field, param)
	case "max":
		return fmt.Errorf("field '%s' must be at most %s characters long", field, param)
	case "eqfield":
		if field == "confirm_password" {
			return errors.New("passwords do not match")
		}
		return fmt.Errorf("field '%s' must match '%s'", field, param)
	case "datetime":
		return fmt.Errorf("field '%s' must use the %s format", field, param)
	case "http_url":
		return fmt.Errorf("field '%s' must be an http(s) URL", field)
	default:
		return fmt.Errorf("field '%s' validation failed on tag '%s'", field, first.Tag())
	}
}
