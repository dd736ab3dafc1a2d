package model

import (
	"time"

	"petsitter/pkg/calendar"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusAccepted  BookingStatus = "accepted"
	StatusDeclined  BookingStatus = "declined"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

var BookingStatuses = []BookingStatus{StatusPending, StatusAccepted, StatusDeclined, StatusCompleted, StatusCancelled}

func (s BookingStatus) Valid() bool {
	for _, st := range BookingStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Terminal statuses admit no further transition.
func (s BookingStatus) Terminal() bool {
	return s == StatusDeclined || s == StatusCompleted || s == StatusCancelled
}

// Booking is a date-range request from an owner to a sitter. Bookings are
// never deleted, only moved to a terminal status.
type Booking struct {
	ID                  string        `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID             string        `json:"owner_id" bson:"owner_id"`
	SitterID            string        `json:"sitter_id" bson:"sitter_id"`
	StartDate           calendar.Day  `json:"start_date" bson:"start_date"`
	EndDate             calendar.Day  `json:"end_date" bson:"end_date"`
	Status              BookingStatus `json:"status" bson:"status"`
	ServiceType         string        `json:"service_type" bson:"service_type"`
	ServiceLabel        string        `json:"service_label" bson:"service_label"`
	DailyPrice          float64       `json:"daily_price" bson:"daily_price"`
	DurationDays        int           `json:"duration_days" bson:"duration_days"`
	TotalPrice          *float64      `json:"total_price,omitempty" bson:"total_price,omitempty"`
	PetIDs              []string      `json:"pet_ids" bson:"pet_ids"`
	Species             []string      `json:"species" bson:"species"`
	SpecialInstructions string        `json:"special_instructions,omitempty" bson:"special_instructions,omitempty"`
	CreatedAt           time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at" bson:"updated_at"`
}

func (b *Booking) Range() calendar.DayRange {
	return calendar.DayRange{Start: b.StartDate, End: b.EndDate}
}

// Commitment reports how this booking holds the sitter's calendar, if at all.
func (b *Booking) Commitment() (calendar.Commitment, bool) {
	var kind calendar.CommitmentKind
	switch b.Status {
	case StatusPending:
		kind = calendar.CommitmentRequested
	case StatusAccepted:
		kind = calendar.CommitmentBooked
	case StatusCompleted:
		kind = calendar.CommitmentCompleted
	default:
		return calendar.Commitment{}, false
	}
	return calendar.Commitment{Range: b.Range(), Kind: kind}, true
}

// BookingInput is what an owner submits to request a booking.
type BookingInput struct {
	SitterID            string       `json:"sitter_id" validate:"required,max=64"`
	StartDate           calendar.Day `json:"start_date"`
	EndDate             calendar.Day `json:"end_date"`
	ServiceType         string       `json:"service_type" validate:"omitempty,max=50,service_type"`
	PetIDs              []string     `json:"pet_ids" validate:"omitempty,max=20,dive,required,max=64"`
	SpecialInstructions string       `json:"special_instructions,omitempty" validate:"omitempty,max=2000"`
}

// BookingFilter narrows a participant's booking list.
type BookingFilter struct {
	OwnerID  string
	SitterID string
	Statuses []BookingStatus
}
