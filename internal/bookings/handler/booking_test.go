package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"petsitter/internal/bookings/service"
	"petsitter/internal/bookings/validator"
	"petsitter/pkg/calendar"
	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/logger"
	"petsitter/pkg/middleware"
	"petsitter/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBookingService struct {
	CreateFunc     func(ctx context.Context, actor model.Actor, in *model.BookingInput) (*model.Booking, error)
	GetByIDFunc    func(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
	ListFunc       func(ctx context.Context, actor model.Actor, role model.Role, statuses []model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error)
	TransitionFunc func(ctx context.Context, actor model.Actor, id string, event service.Event) (*model.Booking, error)
}

func (m *mockBookingService) Create(ctx context.Context, actor model.Actor, in *model.BookingInput) (*model.Booking, error) {
	return m.CreateFunc(ctx, actor, in)
}

func (m *mockBookingService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	return m.GetByIDFunc(ctx, actor, id)
}

func (m *mockBookingService) List(ctx context.Context, actor model.Actor, role model.Role, statuses []model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error) {
	return m.ListFunc(ctx, actor, role, statuses, limit, offset)
}

func (m *mockBookingService) Transition(ctx context.Context, actor model.Actor, id string, event service.Event) (*model.Booking, error) {
	return m.TransitionFunc(ctx, actor, id, event)
}

var owner = model.Actor{ID: "owner-1", Role: model.RoleOwner}

func serve(t *testing.T, svc service.BookingService, req *http.Request, actor *model.Actor) *httptest.ResponseRecorder {
	t.Helper()
	router := httprouter.New()
	NewBookingHandler(svc, validator.NewBookingValidator(logger.Discard()), logger.Discard()).RegisterRoutes(router)
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateHandler(t *testing.T) {
	var got *model.BookingInput
	svc := &mockBookingService{CreateFunc: func(_ context.Context, actor model.Actor, in *model.BookingInput) (*model.Booking, error) {
		got = in
		return &model.Booking{ID: "b1", OwnerID: actor.ID, SitterID: in.SitterID, Status: model.StatusPending,
			StartDate: in.StartDate, EndDate: in.EndDate}, nil
	}}

	body := `{"sitter_id":"sitter-1","start_date":"2025-03-10","end_date":"2025-03-12","service_type":"boarding","pet_ids":["p1"]}`
	rec := serve(t, svc, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body)), &owner)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, got)
	assert.Equal(t, calendar.MustParseDay("2025-03-10"), got.StartDate)
	assert.Equal(t, []string{"p1"}, got.PetIDs)

	var resp struct {
		Data model.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "b1", resp.Data.ID)
	assert.Equal(t, "2025-03-12", resp.Data.EndDate.String())
}

func TestCreateHandlerErrors(t *testing.T) {
	svc := &mockBookingService{CreateFunc: func(context.Context, model.Actor, *model.BookingInput) (*model.Booking, error) {
		return nil, apperrors.NoPetsRegistered()
	}}

	rec := serve(t, svc, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{"sitter_id":"s"}`)), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, svc, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{"start_date":"10/03/2025"}`)), &owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, svc, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{"sitter_id":"s"}`)), &owner)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.CodeNoPetsRegistered)
}

func TestListHandler(t *testing.T) {
	var (
		gotRole     model.Role
		gotStatuses []model.BookingStatus
		gotLimit    int
		gotOffset   int64
	)
	svc := &mockBookingService{ListFunc: func(_ context.Context, _ model.Actor, role model.Role, statuses []model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error) {
		gotRole, gotStatuses, gotLimit, gotOffset = role, statuses, limit, offset
		return []*model.Booking{{ID: "b1"}}, 7, nil
	}}

	rec := serve(t, svc, httptest.NewRequest(http.MethodGet, "/api/v1/bookings?role=sitter&status=pending,accepted&limit=5&offset=5", nil), &owner)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.RoleSitter, gotRole)
	assert.Equal(t, []model.BookingStatus{model.StatusPending, model.StatusAccepted}, gotStatuses)
	assert.Equal(t, 5, gotLimit)
	assert.Equal(t, int64(5), gotOffset)

	var resp struct {
		TotalCount int64 `json:"total_count"`
		Limit      int   `json:"limit"`
		Offset     int   `json:"offset"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.TotalCount)
	assert.Equal(t, 5, resp.Offset)

	rec = serve(t, svc, httptest.NewRequest(http.MethodGet, "/api/v1/bookings?status=lost", nil), &owner)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = serve(t, svc, httptest.NewRequest(http.MethodGet, "/api/v1/bookings?role=admin", nil), &owner)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetByIDHandler(t *testing.T) {
	svc := &mockBookingService{GetByIDFunc: func(_ context.Context, _ model.Actor, id string) (*model.Booking, error) {
		if id != "b1" {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return &model.Booking{ID: "b1"}, nil
	}}

	rec := serve(t, svc, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/b1", nil), &owner)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, svc, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/b2", nil), &owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransitionRoutes(t *testing.T) {
	sitter := model.Actor{ID: "sitter-1", Role: model.RoleSitter}

	tests := []struct {
		path       string
		wantEvent  service.Event
		err        error
		wantStatus int
	}{
		{path: "accept", wantEvent: service.EventAccept, wantStatus: http.StatusOK},
		{path: "decline", wantEvent: service.EventDecline, wantStatus: http.StatusOK},
		{path: "cancel", wantEvent: service.EventCancel, wantStatus: http.StatusOK},
		{path: "complete", wantEvent: service.EventComplete, wantStatus: http.StatusOK},
		{
			path:       "complete",
			wantEvent:  service.EventComplete,
			err:        apperrors.InvalidStateTransition("pending", "complete"),
			wantStatus: http.StatusConflict,
		},
		{
			path:       "accept",
			wantEvent:  service.EventAccept,
			err:        apperrors.Forbidden("nope"),
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var gotEvent service.Event
			var gotID string
			svc := &mockBookingService{TransitionFunc: func(_ context.Context, _ model.Actor, id string, event service.Event) (*model.Booking, error) {
				gotEvent, gotID = event, id
				if tt.err != nil {
					return nil, tt.err
				}
				return &model.Booking{ID: id, Status: model.StatusAccepted}, nil
			}}

			rec := serve(t, svc, httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/b1/"+tt.path, nil), &sitter)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantEvent, gotEvent)
			assert.Equal(t, "b1", gotID)
		})
	}
}
