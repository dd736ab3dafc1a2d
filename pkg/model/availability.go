package model

import (
	"time"

	"petsitter/pkg/calendar"
)

// AvailabilityBlock marks one day on which a sitter does not take bookings.
// A sitter has at most one block per day.
type AvailabilityBlock struct {
	ID        string       `json:"id,omitempty" bson:"_id,omitempty"`
	SitterID  string       `json:"sitter_id" bson:"sitter_id"`
	Date      calendar.Day `json:"date" bson:"date"`
	Reason    string       `json:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
}

// BlockInput blocks a single day (End empty) or an inclusive range.
type BlockInput struct {
	StartDate calendar.Day `json:"start_date"`
	EndDate   calendar.Day `json:"end_date,omitempty"`
	Reason    string       `json:"reason,omitempty" validate:"omitempty,max=200"`
}

type DayStatus struct {
	Date           calendar.Day            `json:"date"`
	Classification calendar.Classification `json:"classification"`
}

type SelectionStep struct {
	calendar.Selection
	Day calendar.Day `json:"day"`
}
