package service

import (
	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/model"
)

type Event string

const (
	EventAccept   Event = "accept"
	EventDecline  Event = "decline"
	EventCancel   Event = "cancel"
	EventComplete Event = "complete"
)

type transitionRule struct {
	target model.BookingStatus
	from   []model.BookingStatus
	actors []model.Role
	// notify is the notification type sent to the owner, if any.
	notify string
}

var lifecycle = map[Event]transitionRule{
	EventAccept: {
		target: model.StatusAccepted,
		from:   []model.BookingStatus{model.StatusPending},
		actors: []model.Role{model.RoleSitter},
		notify: model.NotificationBookingAccepted,
	},
	EventDecline: {
		target: model.StatusDeclined,
		from:   []model.BookingStatus{model.StatusPending},
		actors: []model.Role{model.RoleSitter},
		notify: model.NotificationBookingDeclined,
	},
	EventCancel: {
		target: model.StatusCancelled,
		from:   []model.BookingStatus{model.StatusPending, model.StatusAccepted},
		actors: []model.Role{model.RoleOwner},
	},
	EventComplete: {
		target: model.StatusCompleted,
		from:   []model.BookingStatus{model.StatusAccepted},
		actors: []model.Role{model.RoleSystem, model.RoleOwner},
	},
}

func ParseEvent(s string) (Event, bool) {
	e := Event(s)
	_, ok := lifecycle[e]
	return e, ok
}

// Plan is the outcome of applying an event to a booking's current status.
type Plan struct {
	From model.BookingStatus
	To   model.BookingStatus
	// Noop is set when the booking already sits in the event's target status.
	Noop bool
}

// PlanTransition resolves event against the current status without touching
// storage. A booking already in the target status yields a no-op plan.
func PlanTransition(current model.BookingStatus, event Event) (Plan, error) {
	rule, ok := lifecycle[event]
	if !ok {
		return Plan{}, apperrors.InvalidInput("Unknown booking event: " + string(event))
	}
	if current == rule.target {
		return Plan{From: current, To: current, Noop: true}, nil
	}
	for _, from := range rule.from {
		if current == from {
			return Plan{From: current, To: rule.target}, nil
		}
	}
	return Plan{}, apperrors.InvalidStateTransition(string(current), string(event))
}

// Authorize checks that actor may fire event on booking. Owners and sitters
// act only on bookings they take part in.
func Authorize(actor model.Actor, booking *model.Booking, event Event) error {
	rule, ok := lifecycle[event]
	if !ok {
		return apperrors.InvalidInput("Unknown booking event: " + string(event))
	}

	allowed := false
	for _, role := range rule.actors {
		if actor.Role == role {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperrors.Forbidden("Role " + string(actor.Role) + " cannot " + string(event) + " a booking")
	}

	switch actor.Role {
	case model.RoleOwner:
		if actor.ID != booking.OwnerID {
			return apperrors.Forbidden("Only the booking's owner can " + string(event) + " it")
		}
	case model.RoleSitter:
		if actor.ID != booking.SitterID {
			return apperrors.Forbidden("Only the booking's sitter can " + string(event) + " it")
		}
	}
	return nil
}
