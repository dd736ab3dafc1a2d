package service

import (
	"context"
	"errors"
	"sync"
	"time"

	notificationserrors "petsitter/internal/notifications/errors"
	"petsitter/internal/notifications/repository"
	"petsitter/pkg/config"
	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/model"
	"petsitter/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type NotificationService interface {
	// Store persists a notification received from the sink. It reports
	// false without error when the event was already stored.
	Store(ctx context.Context, n *model.Notification) (bool, error)
	List(ctx context.Context, actor model.Actor, unreadOnly bool, limit int, offset int64) ([]*model.Notification, int64, error)
	MarkRead(ctx context.Context, actor model.Actor, id string) (*model.Notification, error)
}

type notificationService struct {
	repo     repository.NotificationRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewNotificationService(repo repository.NotificationRepository, cfg *config.Config) NotificationService {
	return &notificationService{
		repo:     repo,
		validate: validation.New(),
		cfg:      cfg,
	}
}

func (s *notificationService) Store(ctx context.Context, n *model.Notification) (bool, error) {
	if err := validation.Struct(s.validate, n); err != nil {
		return false, validation.ToAppError("Invalid notification", err)
	}

	n.ID = ""
	n.Read = false
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	if err := s.repo.Insert(ctx, n); err != nil {
		if errors.Is(err, notificationserrors.ErrDuplicateEvent) {
			s.cfg.Log.Info("Notification already stored", "event_id", n.EventID)
			return false, nil
		}
		return false, apperrors.Internal("Failed to store notification", err)
	}

	s.cfg.Log.Info("Notification stored",
		"id", n.ID,
		"event_id", n.EventID,
		"type", n.Type,
		"recipient_id", n.RecipientID,
	)
	return true, nil
}

func (s *notificationService) List(ctx context.Context, actor model.Actor, unreadOnly bool, limit int, offset int64) ([]*model.Notification, int64, error) {
	var (
		count             int64
		notifications     []*model.Notification
		errCount, errFind error
		wg                sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByRecipient(ctx, actor.ID, unreadOnly)
	}()

	go func() {
		defer wg.Done()
		notifications, errFind = s.repo.ListByRecipient(ctx, actor.ID, unreadOnly, limit, offset)
	}()

	wg.Wait()

	if err := errors.Join(errCount, errFind); err != nil {
		s.cfg.Log.Error("Failed to list notifications", "recipient_id", actor.ID, "error", err)
		return nil, 0, apperrors.Internal("Failed to list notifications", err)
	}
	return notifications, count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor model.Actor, id string) (*model.Notification, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Notification ID cannot be empty")
	}

	n, err := s.repo.MarkRead(ctx, id, actor.ID)
	if err != nil {
		switch {
		case errors.Is(err, notificationserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Notification", id)
		case errors.Is(err, notificationserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid notification ID format")
		default:
			s.cfg.Log.Error("Failed to mark notification read", "id", id, "error", err)
			return nil, apperrors.Internal("Failed to mark notification read", err)
		}
	}
	return n, nil
}
