package model

import "time"

const (
	NotificationNewBookingRequest = "new_booking_request"
	NotificationBookingAccepted   = "booking_accepted"
	NotificationBookingDeclined   = "booking_declined"
)

// Notification is written once and only ever marked read.
type Notification struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	EventID     string    `json:"event_id,omitempty" bson:"event_id,omitempty" validate:"required,max=64"`
	RecipientID string    `json:"recipient_id" bson:"recipient_id" validate:"required,max=64"`
	Type        string    `json:"type" bson:"type" validate:"oneof=new_booking_request booking_accepted booking_declined"`
	Title       string    `json:"title" bson:"title" validate:"required,max=200"`
	Message     string    `json:"message" bson:"message" validate:"max=2000"`
	Link        string    `json:"link,omitempty" bson:"link,omitempty" validate:"omitempty,max=500"`
	Read        bool      `json:"read" bson:"read"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
