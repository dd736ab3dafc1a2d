package service

import (
	"fmt"

	"petsitter/pkg/model"
)

func bookingLink(b *model.Booking) string {
	return "/bookings/" + b.ID
}

func requestNotification(b *model.Booking) model.Notification {
	return model.Notification{
		RecipientID: b.SitterID,
		Type:        model.NotificationNewBookingRequest,
		Title:       "New booking request",
		Message: fmt.Sprintf("%s requested from %s to %s (%d days)",
			b.ServiceLabel, b.StartDate, b.EndDate, b.DurationDays),
		Link: bookingLink(b),
	}
}

func decisionNotification(b *model.Booking, kind string) model.Notification {
	title := "Booking accepted"
	verb := "accepted"
	if kind == model.NotificationBookingDeclined {
		title = "Booking declined"
		verb = "declined"
	}
	return model.Notification{
		RecipientID: b.OwnerID,
		Type:        kind,
		Title:       title,
		Message:     fmt.Sprintf("Your %s request from %s to %s was %s", b.ServiceLabel, b.StartDate, b.EndDate, verb),
		Link:        bookingLink(b),
	}
}
