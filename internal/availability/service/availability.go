package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"petsitter/internal/availability/cache"
	availabilityerrors "petsitter/internal/availability/errors"
	"petsitter/internal/availability/repository"
	"petsitter/internal/availability/validator"
	"petsitter/pkg/calendar"
	"petsitter/pkg/config"
	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/metrics"
	"petsitter/pkg/model"
	"petsitter/pkg/validation"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxWindowDays      = 366
	invalidateAttempts = 3
)

var invalidateBackoff = 50 * time.Millisecond

var tracer = otel.Tracer("petsitter/availability")

// HoldingStatuses are the booking statuses that occupy a sitter's calendar.
var HoldingStatuses = []model.BookingStatus{model.StatusPending, model.StatusAccepted, model.StatusCompleted}

// BookingSource lists a sitter's bookings. The bookings repository satisfies it.
type BookingSource interface {
	ListBySitter(ctx context.Context, sitterID string, statuses []model.BookingStatus) ([]*model.Booking, error)
}

type AvailabilityService interface {
	// Snapshot returns the sitter's calendar data. When a source cannot be
	// read it returns a closed snapshot together with a 503 AppError.
	Snapshot(ctx context.Context, sitterID string) (*calendar.Snapshot, error)
	// FreshSnapshot reads the database and never the cache. Booking creation
	// uses it for the authoritative check.
	FreshSnapshot(ctx context.Context, sitterID string) (*calendar.Snapshot, error)
	GetUnavailableDates(ctx context.Context, sitterID string, window *calendar.DayRange) ([]string, error)
	GetCalendar(ctx context.Context, sitterID string, month calendar.Month) ([]model.DayStatus, error)
	Select(ctx context.Context, sitterID string, step model.SelectionStep) (calendar.Selection, error)
	ListBlocks(ctx context.Context, sitterID string, window *calendar.DayRange) ([]*model.AvailabilityBlock, error)
	AddBlocks(ctx context.Context, actor model.Actor, sitterID string, in *model.BlockInput) ([]*model.AvailabilityBlock, error)
	DeleteBlock(ctx context.Context, actor model.Actor, sitterID, blockID string) error
	// Invalidate drops the cached calendar of the sitter. When Redis keeps
	// failing, this process stops trusting the sitter's cache entry until it
	// would have expired anyway.
	Invalidate(ctx context.Context, sitterID string)
	Today() calendar.Day
}

type availabilityService struct {
	blocks    repository.BlockRepository
	bookings  BookingSource
	cache     cache.Cache
	validator *validator.BlockValidator
	cfg       *config.Config
	metrics   *metrics.Metrics

	staleMu sync.Mutex
	stale   map[string]time.Time
}

func NewAvailabilityService(
	blocks repository.BlockRepository,
	bookings BookingSource,
	c cache.Cache,
	validator *validator.BlockValidator,
	cfg *config.Config,
	m *metrics.Metrics,
) AvailabilityService {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &availabilityService{
		blocks:    blocks,
		bookings:  bookings,
		cache:     c,
		validator: validator,
		cfg:       cfg,
		metrics:   m,
		stale:     make(map[string]time.Time),
	}
}

func (s *availabilityService) Today() calendar.Day {
	return s.cfg.Clock.Today()
}

func (s *availabilityService) Snapshot(ctx context.Context, sitterID string) (*calendar.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "availability.Snapshot", trace.WithAttributes(attribute.String("sitter.id", sitterID)))
	defer span.End()

	if s.cacheBypassed(sitterID) {
		s.metrics.AvailabilityCache("bypass")
		return s.FreshSnapshot(ctx, sitterID)
	}

	data, generation, err := s.cache.Get(ctx, sitterID)
	switch {
	case err == nil:
		s.metrics.AvailabilityCache("hit")
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return calendar.SnapshotFromData(data), nil
	case cache.IsMiss(err):
		s.metrics.AvailabilityCache("miss")
	default:
		s.metrics.AvailabilityCache("error")
		s.cfg.Log.Warn("Availability cache read failed, recomputing", "sitter_id", sitterID, "error", err)
	}

	snap, err := s.fetch(ctx, sitterID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "availability source unavailable")
		return calendar.ClosedSnapshot(), err
	}

	if err := s.cache.Set(ctx, sitterID, generation, snap.Data()); err != nil {
		s.cfg.Log.Warn("Availability cache write failed", "sitter_id", sitterID, "error", err)
	}
	return snap, nil
}

func (s *availabilityService) FreshSnapshot(ctx context.Context, sitterID string) (*calendar.Snapshot, error) {
	snap, err := s.fetch(ctx, sitterID)
	if err != nil {
		return calendar.ClosedSnapshot(), err
	}
	return snap, nil
}

// fetch reads blocks and bookings concurrently. Either failure fails the
// whole read; a partial calendar is never returned.
func (s *availabilityService) fetch(ctx context.Context, sitterID string) (*calendar.Snapshot, error) {
	var (
		blocks                []*model.AvailabilityBlock
		bookings              []*model.Booking
		errBlocks, errBooking error
		wg                    sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		blocks, errBlocks = s.blocks.ListBlocks(ctx, sitterID, nil)
	}()

	go func() {
		defer wg.Done()
		bookings, errBooking = s.bookings.ListBySitter(ctx, sitterID, HoldingStatuses)
	}()

	wg.Wait()

	if errBlocks != nil {
		s.metrics.AvailabilityFetchFailed("blocks")
		s.cfg.Log.Error("Failed to read availability blocks", "sitter_id", sitterID, "error", errBlocks)
	}
	if errBooking != nil {
		s.metrics.AvailabilityFetchFailed("bookings")
		s.cfg.Log.Error("Failed to read sitter bookings", "sitter_id", sitterID, "error", errBooking)
	}
	if err := errors.Join(errBlocks, errBooking); err != nil {
		return nil, apperrors.Unavailable("Availability data", err)
	}

	days := make([]calendar.Day, 0, len(blocks))
	for _, b := range blocks {
		days = append(days, b.Date)
	}
	commitments := make([]calendar.Commitment, 0, len(bookings))
	for _, b := range bookings {
		if c, ok := b.Commitment(); ok {
			commitments = append(commitments, c)
		}
	}
	return calendar.NewSnapshot(days, commitments), nil
}

// GetUnavailableDates fails closed: on a read failure every day of the window
// is returned as unavailable alongside the error. Without a window only the
// error is returned.
func (s *availabilityService) GetUnavailableDates(ctx context.Context, sitterID string, window *calendar.DayRange) ([]string, error) {
	if sitterID == "" {
		return nil, apperrors.InvalidInput("Sitter ID cannot be empty")
	}
	if err := s.validator.ValidateWindow(window, maxWindowDays); err != nil {
		return nil, validation.ToAppError("Invalid date window", err)
	}

	snap, err := s.Snapshot(ctx, sitterID)
	days := calendar.FormatDays(snap.Unavailable(window))
	if err != nil {
		if window == nil {
			return nil, err
		}
		return days, err
	}
	return days, nil
}

func (s *availabilityService) GetCalendar(ctx context.Context, sitterID string, month calendar.Month) ([]model.DayStatus, error) {
	if sitterID == "" {
		return nil, apperrors.InvalidInput("Sitter ID cannot be empty")
	}

	snap, err := s.Snapshot(ctx, sitterID)
	classify := calendar.ClassifyFunc(s.Today(), snap)

	days := month.Range().Days()
	out := make([]model.DayStatus, 0, len(days))
	for _, d := range days {
		out = append(out, model.DayStatus{Date: d, Classification: classify(d)})
	}
	return out, err
}

// Select applies one click to a range selection against the sitter's
// current calendar. When the calendar cannot be read every day counts as
// blocked, so the selection comes back unchanged with the error.
func (s *availabilityService) Select(ctx context.Context, sitterID string, step model.SelectionStep) (calendar.Selection, error) {
	if step.State == "" {
		step.State = calendar.SelectionEmpty
	}
	if err := step.Selection.Validate(); err != nil {
		return step.Selection, apperrors.Validation("Invalid selection", map[string]any{"selection": err.Error()})
	}
	if step.Day.IsZero() {
		return step.Selection, apperrors.Validation("Invalid selection", map[string]any{"day": "day is required"})
	}

	snap, err := s.Snapshot(ctx, sitterID)
	next := calendar.Select(step.Selection, step.Day, calendar.ClassifyFunc(s.Today(), snap))
	return next, err
}

func (s *availabilityService) ListBlocks(ctx context.Context, sitterID string, window *calendar.DayRange) ([]*model.AvailabilityBlock, error) {
	if err := s.validator.ValidateWindow(window, maxWindowDays); err != nil {
		return nil, validation.ToAppError("Invalid date window", err)
	}
	blocks, err := s.blocks.ListBlocks(ctx, sitterID, window)
	if err != nil {
		s.cfg.Log.Error("Failed to list blocks", "sitter_id", sitterID, "error", err)
		return nil, apperrors.Unavailable("Availability data", err)
	}
	return blocks, nil
}

func (s *availabilityService) AddBlocks(ctx context.Context, actor model.Actor, sitterID string, in *model.BlockInput) ([]*model.AvailabilityBlock, error) {
	if err := authorizeSitter(actor, sitterID); err != nil {
		return nil, err
	}

	r, err := s.validator.Validate(in, s.Today(), s.cfg.MaxBookingDays)
	if err != nil {
		return nil, validation.ToAppError("Invalid block request", err)
	}

	var created []*model.AvailabilityBlock
	if r.Len() == 1 {
		block := &model.AvailabilityBlock{SitterID: sitterID, Date: r.Start, Reason: in.Reason}
		err = s.blocks.InsertBlock(ctx, block)
		created = []*model.AvailabilityBlock{block}
	} else {
		created, err = s.blocks.InsertBlockRange(ctx, sitterID, r, in.Reason)
	}
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrAlreadyBlocked) {
			return nil, apperrors.Conflict("Day is already blocked").WithDetails(map[string]any{"range": r.String()})
		}
		s.cfg.Log.Error("Failed to block days", "sitter_id", sitterID, "range", r.String(), "error", err)
		return nil, apperrors.Internal("Failed to block days", err)
	}

	s.Invalidate(ctx, sitterID)
	s.cfg.Log.Info("Availability blocked",
		"sitter_id", sitterID,
		"range", r.String(),
		"created", len(created),
	)
	if created == nil {
		created = []*model.AvailabilityBlock{}
	}
	return created, nil
}

func (s *availabilityService) DeleteBlock(ctx context.Context, actor model.Actor, sitterID, blockID string) error {
	if err := authorizeSitter(actor, sitterID); err != nil {
		return err
	}

	block, err := s.blocks.FindByID(ctx, blockID)
	if err != nil {
		return translateBlockError(err, blockID)
	}
	if block.SitterID != sitterID {
		return apperrors.NotFoundWithID("Availability block", blockID)
	}

	if err := s.blocks.DeleteBlock(ctx, blockID); err != nil {
		return translateBlockError(err, blockID)
	}

	s.Invalidate(ctx, sitterID)
	s.cfg.Log.Info("Availability block removed", "sitter_id", sitterID, "block_id", blockID, "date", block.Date.String())
	return nil
}

func (s *availabilityService) Invalidate(ctx context.Context, sitterID string) {
	var err error
	for attempt := 1; attempt <= invalidateAttempts; attempt++ {
		if err = s.cache.Invalidate(ctx, sitterID); err == nil {
			return
		}
		if attempt < invalidateAttempts && !sleepCtx(ctx, invalidateBackoff*time.Duration(attempt)) {
			break
		}
	}

	s.markStale(sitterID)
	s.metrics.AvailabilityCache("invalidate_failed")
	s.cfg.Log.Error("Failed to invalidate availability cache, bypassing it until expiry",
		"sitter_id", sitterID,
		"attempts", invalidateAttempts,
		"error", err,
	)
}

// markStale makes reads of the sitter skip the cache for one TTL: by then
// the entry the failed invalidation should have removed has expired.
func (s *availabilityService) markStale(sitterID string) {
	ttl := s.cfg.AvailabilityCacheTTL
	if ttl <= 0 {
		ttl = config.DefaultAvailabilityCacheTTL
	}
	s.staleMu.Lock()
	s.stale[sitterID] = time.Now().Add(ttl)
	s.staleMu.Unlock()
}

func (s *availabilityService) cacheBypassed(sitterID string) bool {
	s.staleMu.Lock()
	defer s.staleMu.Unlock()

	until, ok := s.stale[sitterID]
	if !ok {
		return false
	}
	if time.Now().After(until) {
		delete(s.stale, sitterID)
		return false
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func authorizeSitter(actor model.Actor, sitterID string) error {
	if actor.Role != model.RoleSitter || actor.ID != sitterID {
		return apperrors.Forbidden("Only the sitter can change their own availability")
	}
	return nil
}

func translateBlockError(err error, blockID string) error {
	switch {
	case errors.Is(err, availabilityerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Availability block", blockID)
	case errors.Is(err, availabilityerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid availability block ID format")
	default:
		return apperrors.Internal("Failed to change availability block", err)
	}
}
