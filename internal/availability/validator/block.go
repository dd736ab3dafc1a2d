package validator

import (
	"fmt"

	"petsitter/pkg/calendar"
	"petsitter/pkg/logger"
	"petsitter/pkg/model"
	"petsitter/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BlockValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBlockValidator(log *logger.Logger) *BlockValidator {
	return &BlockValidator{
		validate: validation.New(),
		logger:   log,
	}
}

// Validate checks a block request and resolves it to the inclusive range of
// days to block. An empty end date blocks the start day alone.
func (v *BlockValidator) Validate(in *model.BlockInput, today calendar.Day, maxDays int) (calendar.DayRange, error) {
	if err := validation.Struct(v.validate, in); err != nil {
		return calendar.DayRange{}, err
	}

	if in.StartDate.IsZero() {
		return calendar.DayRange{}, validation.ValidationErrors{{Field: "start_date", Message: "start_date is required"}}
	}
	end := in.EndDate
	if end.IsZero() {
		end = in.StartDate
	}

	r, err := calendar.NewRange(in.StartDate, end)
	if err != nil {
		return calendar.DayRange{}, validation.ValidationErrors{{Field: "end_date", Message: "end_date cannot be before start_date"}}
	}
	if r.Start.Before(today) {
		return calendar.DayRange{}, validation.ValidationErrors{{Field: "start_date", Message: "past days cannot be blocked"}}
	}
	if maxDays > 0 && r.Len() > maxDays {
		return calendar.DayRange{}, validation.ValidationErrors{{
			Field:   "end_date",
			Message: fmt.Sprintf("a block range can span at most %d days", maxDays),
		}}
	}
	return r, nil
}

// ValidateWindow checks an optional query window.
func (v *BlockValidator) ValidateWindow(window *calendar.DayRange, maxDays int) error {
	if window == nil {
		return nil
	}
	if window.End.Before(window.Start) {
		return validation.ValidationErrors{{Field: "to", Message: "to cannot be before from"}}
	}
	if maxDays > 0 && window.Len() > maxDays {
		return validation.ValidationErrors{{Field: "to", Message: fmt.Sprintf("a window can span at most %d days", maxDays)}}
	}
	return nil
}
