package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/judyrop/bookstore/apperr"
)

var validate = NewValidator()

// NewValidator returns a validator reading the same "binding" tags gin uses
// and reporting fields by their JSON (or form) name.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	Configure(v)
	return v
}

// Configure registers the field naming and custom tags used by the request
// types on v. gin's binding engine needs the same setup.
func Configure(v *validator.Validate) {
	RegisterFieldNames(v)
	_ = v.RegisterValidation("notblank", validators.NotBlank)
}

// RegisterFieldNames makes v report fields by their json or form tag.
func RegisterFieldNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

// Validate checks v's binding tags and returns a validation error keyed by
// field name.
func Validate(v any) error {
	return ValidationError(validate.Struct(v))
}

// ValidationError converts validator failures into an apperr validation
// error. Other errors are returned unchanged.
func ValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = message(fe)
		}
	}
	return apperr.Validation(fields)
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "notblank":
		return "must not be blank"
	case "eqfield":
		return "must match " + fe.Param()
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s element(s)", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("can't be longer than %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}
