package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	bookingserrors "petsitter/internal/bookings/errors"
	"petsitter/internal/bookings/repository"
	"petsitter/internal/bookings/validator"
	sitterserrors "petsitter/internal/sitters/errors"
	"petsitter/pkg/calendar"
	"petsitter/pkg/config"
	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/metrics"
	"petsitter/pkg/model"
	"petsitter/pkg/notify"
	"petsitter/pkg/validation"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("petsitter/bookings")

// Availability is the part of the availability service bookings depend on.
type Availability interface {
	FreshSnapshot(ctx context.Context, sitterID string) (*calendar.Snapshot, error)
	Invalidate(ctx context.Context, sitterID string)
	Today() calendar.Day
}

type PetRegistry interface {
	ListPets(ctx context.Context, ownerID string) ([]model.Pet, error)
}

type SitterDirectory interface {
	FindByID(ctx context.Context, id string) (*model.SitterSummary, error)
}

type BookingService interface {
	Create(ctx context.Context, actor model.Actor, in *model.BookingInput) (*model.Booking, error)
	GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
	List(ctx context.Context, actor model.Actor, role model.Role, statuses []model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error)
	Transition(ctx context.Context, actor model.Actor, id string, event Event) (*model.Booking, error)
}

type bookingService struct {
	repo         repository.BookingRepository
	availability Availability
	pets         PetRegistry
	sitters      SitterDirectory
	notifier     notify.Notifier
	validator    *validator.BookingValidator
	cfg          *config.Config
	metrics      *metrics.Metrics
}

func NewBookingService(
	repo repository.BookingRepository,
	availability Availability,
	pets PetRegistry,
	sitters SitterDirectory,
	notifier notify.Notifier,
	validator *validator.BookingValidator,
	cfg *config.Config,
	m *metrics.Metrics,
) BookingService {
	if notifier == nil {
		notifier = notify.NewNoopNotifier(cfg.Log)
	}
	return &bookingService{
		repo:         repo,
		availability: availability,
		pets:         pets,
		sitters:      sitters,
		notifier:     notifier,
		validator:    validator,
		cfg:          cfg,
		metrics:      m,
	}
}

func (s *bookingService) Create(ctx context.Context, actor model.Actor, in *model.BookingInput) (*model.Booking, error) {
	ctx, span := tracer.Start(ctx, "bookings.Create", trace.WithAttributes(
		attribute.String("owner.id", actor.ID),
		attribute.String("sitter.id", in.SitterID),
	))
	defer span.End()

	booking, err := s.create(ctx, actor, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "booking not created")
		return nil, err
	}
	span.SetAttributes(attribute.String("booking.id", booking.ID))
	return booking, nil
}

func (s *bookingService) create(ctx context.Context, actor model.Actor, in *model.BookingInput) (*model.Booking, error) {
	if actor.Role != model.RoleOwner {
		return nil, apperrors.Forbidden("Only pet owners can request a booking")
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, validation.ToAppError("Invalid booking request", err)
	}

	sitter, pets, err := s.loadParticipants(ctx, actor.ID, in.SitterID)
	if err != nil {
		return nil, err
	}

	booking, err := BuildRequest(actor.ID, in, sitter, pets)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateDuration(booking.DurationDays, s.cfg.MaxBookingDays); err != nil {
		return nil, validation.ToAppError("Invalid booking request", err)
	}
	if err := s.checkAvailability(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "sitter_id", booking.SitterID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.metrics.BookingCreated(booking.ServiceType)
	s.availability.Invalidate(ctx, booking.SitterID)
	s.notifier.Notify(ctx, requestNotification(booking))

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"owner_id", booking.OwnerID,
		"sitter_id", booking.SitterID,
		"range", booking.Range().String(),
		"service_type", booking.ServiceType,
	)
	return booking, nil
}

// loadParticipants reads the sitter and the owner's pets concurrently.
func (s *bookingService) loadParticipants(ctx context.Context, ownerID, sitterID string) (*model.SitterSummary, []model.Pet, error) {
	var (
		sitter            *model.SitterSummary
		pets              []model.Pet
		errSitter, errPet error
		wg                sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		sitter, errSitter = s.sitters.FindByID(ctx, sitterID)
	}()

	go func() {
		defer wg.Done()
		pets, errPet = s.pets.ListPets(ctx, ownerID)
	}()

	wg.Wait()

	if errSitter != nil {
		if errors.Is(errSitter, sitterserrors.ErrNotFound) {
			return nil, nil, apperrors.NotFoundWithID("Sitter", sitterID)
		}
		s.cfg.Log.Error("Failed to read sitter", "sitter_id", sitterID, "error", errSitter)
		return nil, nil, apperrors.Internal("Failed to read sitter", errSitter)
	}
	if errPet != nil {
		s.cfg.Log.Error("Failed to read owner's pets", "owner_id", ownerID, "error", errPet)
		return nil, nil, apperrors.Unavailable("Pet registry", errPet)
	}
	return sitter, pets, nil
}

// checkAvailability re-validates the requested range against the sitter's
// current calendar, read from the database rather than the cache. Days only
// held by other pending requests are accepted.
func (s *bookingService) checkAvailability(ctx context.Context, booking *model.Booking) error {
	today := s.availability.Today()
	if booking.StartDate.Before(today) {
		return apperrors.Validation("Start date cannot be in the past", map[string]any{
			"start_date": booking.StartDate.String(),
			"today":      today.String(),
		})
	}

	snap, err := s.availability.FreshSnapshot(ctx, booking.SitterID)
	if err != nil {
		return err
	}

	classify := calendar.ClassifyFunc(today, snap)
	var taken []string
	for _, d := range booking.Range().Days() {
		switch classify(d) {
		case calendar.Blocked, calendar.Booked:
			taken = append(taken, d.String())
		}
	}
	if len(taken) > 0 {
		return apperrors.Conflict("Requested dates are no longer available").WithDetails(map[string]any{"dates": taken})
	}
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateError(err, id)
	}
	if !actor.IsSystem() && actor.ID != booking.OwnerID && actor.ID != booking.SitterID {
		return nil, apperrors.Forbidden("Only the booking's owner or sitter can view it")
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, actor model.Actor, role model.Role, statuses []model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error) {
	filter := model.BookingFilter{Statuses: statuses}
	switch role {
	case model.RoleOwner:
		filter.OwnerID = actor.ID
	case model.RoleSitter:
		filter.SitterID = actor.ID
	default:
		return nil, 0, apperrors.Validation("Invalid role", map[string]any{"role": "role must be owner or sitter"})
	}

	var (
		count             int64
		bookings          []*model.Booking
		errCount, errFind error
		wg                sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.List(ctx, filter, limit, offset)
	}()

	wg.Wait()

	if err := errors.Join(errCount, errFind); err != nil {
		s.cfg.Log.Error("Failed to list bookings", "actor_id", actor.ID, "role", role, "error", err)
		return nil, 0, apperrors.Internal("Failed to list bookings", err)
	}
	return bookings, count, nil
}

func (s *bookingService) Transition(ctx context.Context, actor model.Actor, id string, event Event) (*model.Booking, error) {
	ctx, span := tracer.Start(ctx, "bookings.Transition", trace.WithAttributes(
		attribute.String("booking.id", id),
		attribute.String("booking.event", string(event)),
	))
	defer span.End()

	booking, err := s.transition(ctx, actor, id, event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transition failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("booking.status", string(booking.Status)))
	return booking, nil
}

func (s *bookingService) transition(ctx context.Context, actor model.Actor, id string, event Event) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateError(err, id)
	}
	if err := Authorize(actor, current, event); err != nil {
		return nil, err
	}

	plan, err := PlanTransition(current.Status, event)
	if err != nil {
		s.metrics.BookingTransition(string(current.Status), string(lifecycle[event].target), "rejected")
		return nil, err
	}
	if plan.Noop {
		s.metrics.BookingTransition(string(plan.From), string(plan.To), "idempotent")
		return current, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, id, plan.From, plan.To)
	if errors.Is(err, bookingserrors.ErrStatusMismatch) {
		return s.resolveLostUpdate(ctx, id, plan, event)
	}
	if err != nil {
		s.cfg.Log.Error("Failed to update booking status", "id", id, "from", plan.From, "to", plan.To, "error", err)
		return nil, apperrors.Internal("Failed to update booking", err)
	}

	s.metrics.BookingTransition(string(plan.From), string(plan.To), "applied")
	s.availability.Invalidate(ctx, updated.SitterID)
	if kind := lifecycle[event].notify; kind != "" {
		s.notifier.Notify(ctx, decisionNotification(updated, kind))
	}

	s.cfg.Log.Info("Booking status changed",
		"id", updated.ID,
		"from", plan.From,
		"to", plan.To,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
	)
	return updated, nil
}

// resolveLostUpdate classifies a conditional update that matched nothing
// because the booking changed after it was read.
func (s *bookingService) resolveLostUpdate(ctx context.Context, id string, plan Plan, event Event) (*model.Booking, error) {
	latest, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateError(err, id)
	}

	next, err := PlanTransition(latest.Status, event)
	switch {
	case err != nil:
		s.metrics.BookingTransition(string(plan.From), string(plan.To), "rejected")
		return nil, err
	case next.Noop:
		s.metrics.BookingTransition(string(plan.From), string(plan.To), "idempotent")
		return latest, nil
	default:
		s.metrics.BookingTransition(string(plan.From), string(plan.To), "conflict")
		return nil, apperrors.Conflict(fmt.Sprintf("Booking changed to %s concurrently, retry the request", latest.Status))
	}
}

func (s *bookingService) translateError(err error, id string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	default:
		s.cfg.Log.Error("Failed to read booking", "id", id, "error", err)
		return apperrors.Internal("Failed to retrieve booking", err)
	}
}
