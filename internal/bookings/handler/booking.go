package handler

import (
	"net/http"

	"petsitter/internal/bookings/service"
	"petsitter/internal/bookings/validator"
	apperrors "petsitter/pkg/errors"
	httputil "petsitter/pkg/http"
	"petsitter/pkg/logger"
	"petsitter/pkg/middleware"
	"petsitter/pkg/model"
	"petsitter/pkg/validation"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service   service.BookingService
	validator *validator.BookingValidator
	log       *logger.Logger
}

func NewBookingHandler(service service.BookingService, validator *validator.BookingValidator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:   service,
		validator: validator,
		log:       log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.RequireActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var in model.BookingInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.Create(r.Context(), actor, &in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := middleware.RequireActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	q := r.URL.Query()
	role, err := h.validator.ParseRole(q.Get("role"), actor)
	if err != nil {
		httputil.WriteError(w, validation.ToAppError("Invalid booking query", err))
		return
	}
	statuses, err := h.validator.ParseStatuses(q.Get("status"))
	if err != nil {
		httputil.WriteError(w, validation.ToAppError("Invalid booking query", err))
		return
	}

	bookings, total, err := h.service.List(r.Context(), actor, role, statuses, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

// Transition returns a handler firing event on the booking named in the path.
func (h *BookingHandler) Transition(event service.Event) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		actor, err := middleware.RequireActor(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		booking, err := h.service.Transition(r.Context(), actor, ps.ByName("id"), event)
		if err != nil {
			if !apperrors.IsAppError(err) {
				h.log.Error("unexpected transition error", "event", event, "error", err)
			}
			httputil.WriteError(w, err)
			return
		}

		if err := httputil.WriteSuccess(w, booking); err != nil {
			h.log.Error("failed to write success response", "handler", "Transition", "event", event, "operation", "WriteSuccess", "error", err)
		}
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.POST("/api/v1/bookings/id/:id/accept", h.Transition(service.EventAccept))
	router.POST("/api/v1/bookings/id/:id/decline", h.Transition(service.EventDecline))
	router.POST("/api/v1/bookings/id/:id/cancel", h.Transition(service.EventCancel))
	router.POST("/api/v1/bookings/id/:id/complete", h.Transition(service.EventComplete))
}
