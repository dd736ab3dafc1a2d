// Package consumer turns notification events from the broker into stored
// notifications.
package consumer

import (
	"context"

	"petsitter/internal/notifications/service"
	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/kafka"
	"petsitter/pkg/logger"
	"petsitter/pkg/model"
	"petsitter/pkg/notify"
)

// NewHandler returns the consumer handler for the notifications topic.
// Malformed or invalid events fail permanently and go to the DLQ; storage
// failures are retried.
func NewHandler(svc service.NotificationService, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		if t := msg.GetEventType(); t != "" && t != notify.EventTypeNotificationCreated {
			log.Warn("Skipping unexpected event type", "event_type", t, "offset", msg.Offset)
			return nil
		}

		var n model.Notification
		if err := msg.DecodeValue(&n); err != nil {
			return kafka.NewPermanentError("malformed notification payload", err)
		}
		if n.EventID == "" {
			n.EventID = msg.GetEventID()
		}

		if _, err := svc.Store(ctx, &n); err != nil {
			if apperrors.HasCode(err, apperrors.CodeValidation) {
				return kafka.NewPermanentError("invalid notification", err)
			}
			return kafka.NewTransientError("store notification", err)
		}
		return nil
	}
}
