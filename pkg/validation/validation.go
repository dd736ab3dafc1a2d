// Package validation wraps go-playground/validator with field errors keyed by
// their JSON names, so API clients can map them back to request fields.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/model"
	"petsitter/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details maps each failing field to its message.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

// New returns a validator that reports fields by their json tag.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// Service types are matched the way search and booking normalise them,
	// so "House Sitting" is accepted as house_sitting.
	_ = v.RegisterValidation("service_type", func(fl validator.FieldLevel) bool {
		return model.IsServiceType(sanitizer.NormalizeKey(fl.Field().String()))
	})
	return v
}

// Struct validates s and converts tag failures into ValidationErrors.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return Translate(validationErrs)
	}
	return err
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, err := range errs {
		message := err.Error()
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gt", "gte":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), zeroIfEmpty(err.Param()))
		case "lte":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "latitude":
			message = fmt.Sprintf("%s must be a valid latitude", err.Field())
		case "longitude":
			message = fmt.Sprintf("%s must be a valid longitude", err.Field())
		case "service_type":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), strings.Join(model.ServiceTypes, ", "))
		case "required_with":
			message = fmt.Sprintf("%s is required together with %s", err.Field(), err.Param())
		}
		out = append(out, ValidationError{Field: err.Field(), Message: message})
	}
	return out
}

// ToAppError turns a validation failure into a 422 AppError. Other errors
// pass through unchanged.
func ToAppError(message string, err error) error {
	if err == nil {
		return nil
	}
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	var verr ValidationError
	if errors.As(err, &verr) {
		return apperrors.Validation(message, map[string]any{verr.Field: verr.Message})
	}
	return err
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
