package validator

import (
	"fmt"
	"strings"

	"petsitter/pkg/logger"
	"petsitter/pkg/model"
	"petsitter/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validation.New(),
		logger:   log,
	}
}

// Validate checks the shape of a booking request. Date range, service and
// pet rules are applied when the request is built.
func (v *BookingValidator) Validate(in *model.BookingInput) error {
	return validation.Struct(v.validate, in)
}

// ValidateDuration rejects stays longer than maxDays. A non-positive maxDays
// disables the check.
func (v *BookingValidator) ValidateDuration(days, maxDays int) error {
	if maxDays > 0 && days > maxDays {
		return validation.ValidationErrors{{
			Field:   "end_date",
			Message: fmt.Sprintf("a booking can span at most %d days", maxDays),
		}}
	}
	return nil
}

// ParseStatuses reads a comma separated status filter. An empty string
// means no filter.
func (v *BookingValidator) ParseStatuses(raw string) ([]model.BookingStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var statuses []model.BookingStatus
	var errs validation.ValidationErrors
	for _, part := range strings.Split(raw, ",") {
		s := model.BookingStatus(strings.ToLower(strings.TrimSpace(part)))
		if s == "" {
			continue
		}
		if !s.Valid() {
			errs = append(errs, validation.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", part)})
			continue
		}
		statuses = append(statuses, s)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return statuses, nil
}

// ParseRole resolves the role a participant lists bookings as. It defaults
// to the actor's own role.
func (v *BookingValidator) ParseRole(raw string, actor model.Actor) (model.Role, error) {
	role := model.Role(strings.ToLower(strings.TrimSpace(raw)))
	if role == "" {
		role = actor.Role
	}
	if role != model.RoleOwner && role != model.RoleSitter {
		return "", validation.ValidationErrors{{Field: "role", Message: "role must be owner or sitter"}}
	}
	return role, nil
}
