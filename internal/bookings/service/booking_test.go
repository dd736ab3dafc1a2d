package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	bookingserrors "petsitter/internal/bookings/errors"
	"petsitter/internal/bookings/validator"
	sitterserrors "petsitter/internal/sitters/errors"
	"petsitter/pkg/calendar"
	"petsitter/pkg/config"
	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/logger"
	"petsitter/pkg/metrics"
	"petsitter/pkg/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepository keeps bookings in memory and honours the conditional update.
type memRepository struct {
	mu       sync.Mutex
	seq      int
	bookings map[string]*model.Booking

	// beforeUpdate runs inside UpdateStatus before the condition is checked.
	beforeUpdate func(b *model.Booking)
	insertErr    error
}

func newMemRepository() *memRepository {
	return &memRepository{bookings: map[string]*model.Booking{}}
}

func (r *memRepository) Insert(_ context.Context, b *model.Booking) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	b.ID = fmt.Sprintf("b%d", r.seq)
	stored := *b
	r.bookings[b.ID] = &stored
	return nil
}

func (r *memRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	out := *b
	return &out, nil
}

func (r *memRepository) matching(filter model.BookingFilter) []*model.Booking {
	var out []*model.Booking
	for i := 1; i <= r.seq; i++ {
		b, ok := r.bookings[fmt.Sprintf("b%d", i)]
		if !ok {
			continue
		}
		if filter.OwnerID != "" && b.OwnerID != filter.OwnerID {
			continue
		}
		if filter.SitterID != "" && b.SitterID != filter.SitterID {
			continue
		}
		if len(filter.Statuses) > 0 {
			found := false
			for _, s := range filter.Statuses {
				found = found || s == b.Status
			}
			if !found {
				continue
			}
		}
		cp := *b
		out = append(out, &cp)
	}
	return out
}

func (r *memRepository) List(_ context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.matching(filter)
	if int(offset) >= len(all) {
		return []*model.Booking{}, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *memRepository) Count(_ context.Context, filter model.BookingFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func (r *memRepository) ListBySitter(ctx context.Context, sitterID string, statuses []model.BookingStatus) ([]*model.Booking, error) {
	return r.List(ctx, model.BookingFilter{SitterID: sitterID, Statuses: statuses}, 0, 0)
}

func (r *memRepository) UpdateStatus(_ context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrStatusMismatch
	}
	if r.beforeUpdate != nil {
		r.beforeUpdate(b)
	}
	if b.Status != from {
		return nil, bookingserrors.ErrStatusMismatch
	}
	b.Status = to
	out := *b
	return &out, nil
}

func (r *memRepository) status(id string) model.BookingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bookings[id].Status
}

// fakeAvailability derives the sitter's calendar from the repository.
type fakeAvailability struct {
	repo        *memRepository
	today       calendar.Day
	blocks      []calendar.Day
	err         error
	mu          sync.Mutex
	invalidated []string
}

func (f *fakeAvailability) FreshSnapshot(ctx context.Context, sitterID string) (*calendar.Snapshot, error) {
	if f.err != nil {
		return calendar.ClosedSnapshot(), f.err
	}
	bookings, _ := f.repo.ListBySitter(ctx, sitterID, nil)
	var commitments []calendar.Commitment
	for _, b := range bookings {
		if c, ok := b.Commitment(); ok {
			commitments = append(commitments, c)
		}
	}
	return calendar.NewSnapshot(f.blocks, commitments), nil
}

func (f *fakeAvailability) Invalidate(_ context.Context, sitterID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, sitterID)
}

func (f *fakeAvailability) Today() calendar.Day {
	return f.today
}

type mockPetRegistry struct {
	ListPetsFunc func(ctx context.Context, ownerID string) ([]model.Pet, error)
}

func (m *mockPetRegistry) ListPets(ctx context.Context, ownerID string) ([]model.Pet, error) {
	if m.ListPetsFunc != nil {
		return m.ListPetsFunc(ctx, ownerID)
	}
	return testPets(), nil
}

type mockSitterDirectory struct {
	FindByIDFunc func(ctx context.Context, id string) (*model.SitterSummary, error)
}

func (m *mockSitterDirectory) FindByID(ctx context.Context, id string) (*model.SitterSummary, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	if id != "sitter-1" {
		return nil, sitterserrors.ErrNotFound
	}
	return testSitter(), nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification model.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
}

func (n *recordingNotifier) Close() error { return nil }

func (n *recordingNotifier) all() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Notification(nil), n.sent...)
}

type fixture struct {
	svc          BookingService
	repo         *memRepository
	availability *fakeAvailability
	pets         *mockPetRegistry
	sitters      *mockSitterDirectory
	notifier     *recordingNotifier
	registry     *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemRepository()
	f := &fixture{
		repo:         repo,
		availability: &fakeAvailability{repo: repo, today: day("2025-03-01")},
		pets:         &mockPetRegistry{},
		sitters:      &mockSitterDirectory{},
		notifier:     &recordingNotifier{},
		registry:     prometheus.NewRegistry(),
	}
	cfg := &config.Config{MaxBookingDays: 30, Log: logger.Discard()}
	f.svc = NewBookingService(repo, f.availability, f.pets, f.sitters, f.notifier,
		validator.NewBookingValidator(logger.Discard()), cfg, metrics.New(f.registry))
	return f
}

var (
	owner  = model.Actor{ID: "owner-1", Role: model.RoleOwner}
	sitter = model.Actor{ID: "sitter-1", Role: model.RoleSitter}
	system = model.Actor{ID: "scheduler", Role: model.RoleSystem}
)

func requestRange(start, end string) *model.BookingInput {
	in := validInput()
	in.StartDate = day(start)
	in.EndDate = day(end)
	return in
}

func TestCreate(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.Create(context.Background(), owner, validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, 3, b.DurationDays)
	assert.Equal(t, 75.0, *b.TotalPrice)
	assert.Equal(t, model.StatusPending, f.repo.status(b.ID))
	assert.Equal(t, []string{"sitter-1"}, f.availability.invalidated)

	sent := f.notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "sitter-1", sent[0].RecipientID)
	assert.Equal(t, model.NotificationNewBookingRequest, sent[0].Type)
	assert.Equal(t, "/bookings/"+b.ID, sent[0].Link)

	assert.Equal(t, 1.0, f.counterValue(t, "petsitter_bookings_created_total"))
}

// counterValue sums every series of the named counter.
func (f *fixture) counterValue(t *testing.T, name string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestCreateRejections(t *testing.T) {
	tests := []struct {
		name     string
		actor    model.Actor
		input    *model.BookingInput
		setup    func(f *fixture)
		wantCode string
	}{
		{
			name:     "sitter cannot request",
			actor:    sitter,
			input:    validInput(),
			wantCode: apperrors.CodeForbidden,
		},
		{
			name:     "missing sitter id",
			actor:    owner,
			input:    &model.BookingInput{StartDate: day("2025-03-10"), EndDate: day("2025-03-10")},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:  "unknown sitter",
			actor: owner,
			input: func() *model.BookingInput {
				in := validInput()
				in.SitterID = "sitter-404"
				return in
			}(),
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:  "pet registry down",
			actor: owner,
			input: validInput(),
			setup: func(f *fixture) {
				f.pets.ListPetsFunc = func(context.Context, string) ([]model.Pet, error) {
					return nil, errors.New("connection refused")
				}
			},
			wantCode: apperrors.CodeUnavailable,
		},
		{
			name:  "no pets registered",
			actor: owner,
			input: validInput(),
			setup: func(f *fixture) {
				f.pets.ListPetsFunc = func(context.Context, string) ([]model.Pet, error) {
					return []model.Pet{}, nil
				}
			},
			wantCode: apperrors.CodeNoPetsRegistered,
		},
		{
			name:     "too long",
			actor:    owner,
			input:    requestRange("2025-03-10", "2025-04-30"),
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "start in the past",
			actor:    owner,
			input:    requestRange("2025-02-28", "2025-03-02"),
			wantCode: apperrors.CodeValidation,
		},
		{
			name:  "blocked day",
			actor: owner,
			input: validInput(),
			setup: func(f *fixture) {
				f.availability.blocks = []calendar.Day{day("2025-03-11")}
			},
			wantCode: apperrors.CodeConflict,
		},
		{
			name:  "booked day",
			actor: owner,
			input: validInput(),
			setup: func(f *fixture) {
				f.repo.bookings["b99"] = &model.Booking{
					ID: "b99", SitterID: "sitter-1", Status: model.StatusAccepted,
					StartDate: day("2025-03-12"), EndDate: day("2025-03-14"),
				}
				f.repo.seq = 99
			},
			wantCode: apperrors.CodeConflict,
		},
		{
			name:  "availability unreadable",
			actor: owner,
			input: validInput(),
			setup: func(f *fixture) {
				f.availability.err = apperrors.Unavailable("Availability data", errors.New("mongo down"))
			},
			wantCode: apperrors.CodeUnavailable,
		},
		{
			name:  "insert fails",
			actor: owner,
			input: validInput(),
			setup: func(f *fixture) {
				f.repo.insertErr = errors.New("write concern")
			},
			wantCode: apperrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			b, err := f.svc.Create(context.Background(), tt.actor, tt.input)
			require.Error(t, err)
			assert.Nil(t, b)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "expected %s, got %v", tt.wantCode, err)
			assert.Empty(t, f.notifier.all())
		})
	}
}

func TestCreateConflictListsTakenDates(t *testing.T) {
	f := newFixture(t)
	f.availability.blocks = []calendar.Day{day("2025-03-11"), day("2025-03-20")}

	_, err := f.svc.Create(context.Background(), owner, validInput())
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, []string{"2025-03-11"}, appErr.Details["dates"])
}

func TestDoublePendingIsAllowedAndIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, owner, requestRange("2025-03-10", "2025-03-12"))
	require.NoError(t, err)

	otherOwner := model.Actor{ID: "owner-2", Role: model.RoleOwner}
	f.pets.ListPetsFunc = func(_ context.Context, ownerID string) ([]model.Pet, error) {
		return []model.Pet{{ID: "p7", OwnerID: ownerID, Species: "cat"}}, nil
	}
	in := requestRange("2025-03-11", "2025-03-13")
	in.PetIDs = []string{"p7"}
	second, err := f.svc.Create(ctx, otherOwner, in)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	accepted, err := f.svc.Transition(ctx, sitter, first.ID, EventAccept)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, accepted.Status)
	assert.Equal(t, model.StatusPending, f.repo.status(second.ID))
}

func TestAcceptIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got, err := f.svc.Transition(ctx, sitter, b.ID, EventAccept)
		require.NoError(t, err)
		assert.Equal(t, model.StatusAccepted, got.Status)
	}

	var accepted []model.Notification
	for _, n := range f.notifier.all() {
		if n.Type == model.NotificationBookingAccepted {
			accepted = append(accepted, n)
		}
	}
	require.Len(t, accepted, 1)
	assert.Equal(t, "owner-1", accepted[0].RecipientID)
	assert.Equal(t, "/bookings/"+b.ID, accepted[0].Link)
}

func TestTransitionSideEffects(t *testing.T) {
	tests := []struct {
		name       string
		steps      []Event
		actors     []model.Actor
		wantStatus model.BookingStatus
		wantNotify []string
	}{
		{
			name:       "decline notifies owner",
			steps:      []Event{EventDecline},
			actors:     []model.Actor{sitter},
			wantStatus: model.StatusDeclined,
			wantNotify: []string{model.NotificationBookingDeclined},
		},
		{
			name:       "owner cancels pending",
			steps:      []Event{EventCancel},
			actors:     []model.Actor{owner},
			wantStatus: model.StatusCancelled,
		},
		{
			name:       "owner cancels accepted",
			steps:      []Event{EventAccept, EventCancel},
			actors:     []model.Actor{sitter, owner},
			wantStatus: model.StatusCancelled,
			wantNotify: []string{model.NotificationBookingAccepted},
		},
		{
			name:       "system completes",
			steps:      []Event{EventAccept, EventComplete},
			actors:     []model.Actor{sitter, system},
			wantStatus: model.StatusCompleted,
			wantNotify: []string{model.NotificationBookingAccepted},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			b, err := f.svc.Create(ctx, owner, validInput())
			require.NoError(t, err)

			for i, event := range tt.steps {
				_, err := f.svc.Transition(ctx, tt.actors[i], b.ID, event)
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantStatus, f.repo.status(b.ID))

			var types []string
			for _, n := range f.notifier.all()[1:] {
				types = append(types, n.Type)
			}
			assert.Equal(t, tt.wantNotify, types)
			assert.Len(t, f.availability.invalidated, 1+len(tt.steps))
		})
	}
}

func TestTransitionRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, owner, b.ID, EventAccept)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "owner accept: %v", err)

	_, err = f.svc.Transition(ctx, model.Actor{ID: "sitter-2", Role: model.RoleSitter}, b.ID, EventAccept)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "other sitter accept: %v", err)

	_, err = f.svc.Transition(ctx, owner, b.ID, EventComplete)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidStateTransition), "complete pending: %v", err)

	_, err = f.svc.Transition(ctx, sitter, "b404", EventAccept)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "missing booking: %v", err)

	_, err = f.svc.Transition(ctx, sitter, b.ID, Event("approve"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput), "unknown event: %v", err)

	assert.Equal(t, model.StatusPending, f.repo.status(b.ID))
}

func TestTransitionLostUpdate(t *testing.T) {
	tests := []struct {
		name       string
		actor      model.Actor
		event      Event
		concurrent model.BookingStatus
		wantCode   string
		wantStatus model.BookingStatus
	}{
		{
			name:       "same target wins the race",
			actor:      sitter,
			event:      EventAccept,
			concurrent: model.StatusAccepted,
			wantStatus: model.StatusAccepted,
		},
		{
			name:       "booking declined meanwhile",
			actor:      sitter,
			event:      EventAccept,
			concurrent: model.StatusDeclined,
			wantCode:   apperrors.CodeInvalidStateTransition,
		},
		{
			name:       "booking accepted during cancel",
			actor:      owner,
			event:      EventCancel,
			concurrent: model.StatusAccepted,
			wantCode:   apperrors.CodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			b, err := f.svc.Create(ctx, owner, validInput())
			require.NoError(t, err)

			f.repo.beforeUpdate = func(stored *model.Booking) {
				stored.Status = tt.concurrent
			}

			got, err := f.svc.Transition(ctx, tt.actor, b.ID, tt.event)
			if tt.wantCode != "" {
				assert.True(t, apperrors.HasCode(err, tt.wantCode), "expected %s, got %v", tt.wantCode, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Len(t, f.notifier.all(), 1, "the losing request must not notify")
		})
	}
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	for _, actor := range []model.Actor{owner, sitter, system} {
		got, err := f.svc.GetByID(ctx, actor, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
	}

	_, err = f.svc.GetByID(ctx, model.Actor{ID: "owner-2", Role: model.RoleOwner}, b.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = f.svc.GetByID(ctx, owner, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	_, err = f.svc.GetByID(ctx, owner, "b404")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, r := range [][2]string{{"2025-03-10", "2025-03-12"}, {"2025-03-15", "2025-03-16"}, {"2025-03-20", "2025-03-20"}} {
		_, err := f.svc.Create(ctx, owner, requestRange(r[0], r[1]))
		require.NoError(t, err)
	}
	_, err := f.svc.Transition(ctx, sitter, "b1", EventAccept)
	require.NoError(t, err)

	all, total, err := f.svc.List(ctx, owner, model.RoleOwner, nil, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	pending, total, err := f.svc.List(ctx, sitter, model.RoleSitter, []model.BookingStatus{model.StatusPending}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, pending, 2)

	page, total, err := f.svc.List(ctx, owner, model.RoleOwner, nil, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 1)

	none, total, err := f.svc.List(ctx, owner, model.RoleSitter, nil, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)

	_, _, err = f.svc.List(ctx, system, model.RoleSystem, nil, 10, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
