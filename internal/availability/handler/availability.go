package handler

import (
	"net/http"

	"petsitter/internal/availability/service"
	"petsitter/pkg/calendar"
	apperrors "petsitter/pkg/errors"
	httputil "petsitter/pkg/http"
	"petsitter/pkg/logger"
	"petsitter/pkg/middleware"
	"petsitter/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

type unavailableDatesResponse struct {
	SitterID string   `json:"sitter_id"`
	Dates    []string `json:"dates"`
}

type calendarResponse struct {
	SitterID string            `json:"sitter_id"`
	Month    string            `json:"month"`
	Today    calendar.Day      `json:"today"`
	Days     []model.DayStatus `json:"days"`
}

func (h *AvailabilityHandler) GetUnavailableDates(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sitterID := ps.ByName("id")

	window, err := httputil.ExtractWindow(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	dates, err := h.service.GetUnavailableDates(r.Context(), sitterID, window)
	if dates == nil {
		dates = []string{}
	}
	if err != nil {
		if window != nil && apperrors.HasCode(err, apperrors.CodeUnavailable) {
			httputil.WriteErrorWithData(w, err, unavailableDatesResponse{SitterID: sitterID, Dates: dates})
			return
		}
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, unavailableDatesResponse{SitterID: sitterID, Dates: dates}); err != nil {
		h.log.Error("failed to write success response", "handler", "GetUnavailableDates", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) GetCalendar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sitterID := ps.ByName("id")

	var month calendar.Month
	if s := r.URL.Query().Get("month"); s != "" {
		m, err := calendar.ParseMonth(s)
		if err != nil {
			httputil.WriteError(w, apperrors.InvalidInput(err.Error()))
			return
		}
		month = m
	} else {
		today := h.service.Today()
		month = calendar.Month{Year: today.Year(), Month: today.Month()}
	}

	days, err := h.service.GetCalendar(r.Context(), sitterID, month)
	resp := calendarResponse{SitterID: sitterID, Month: month.String(), Today: h.service.Today(), Days: days}
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeUnavailable) && days != nil {
			httputil.WriteErrorWithData(w, err, resp)
			return
		}
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "GetCalendar", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Select(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var step model.SelectionStep
	if err := httputil.DecodeJSON(r, &step); err != nil {
		httputil.WriteError(w, err)
		return
	}

	next, err := h.service.Select(r.Context(), ps.ByName("id"), step)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeUnavailable) {
			httputil.WriteErrorWithData(w, err, next)
			return
		}
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, next); err != nil {
		h.log.Error("failed to write success response", "handler", "Select", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) ListBlocks(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	window, err := httputil.ExtractWindow(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	blocks, err := h.service.ListBlocks(r.Context(), ps.ByName("id"), window)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, blocks); err != nil {
		h.log.Error("failed to write success response", "handler", "ListBlocks", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) AddBlocks(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var in model.BlockInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, err)
		return
	}

	blocks, err := h.service.AddBlocks(r.Context(), actor, ps.ByName("id"), &in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WriteCreated(w, blocks); err != nil {
		h.log.Error("failed to write created response", "handler", "AddBlocks", "operation", "WriteCreated", "error", err)
	}
}

func (h *AvailabilityHandler) DeleteBlock(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := middleware.RequireActor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.DeleteBlock(r.Context(), actor, ps.ByName("id"), ps.ByName("blockId")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/sitters/:id/unavailable-dates", h.GetUnavailableDates)
	router.GET("/api/v1/sitters/:id/calendar", h.GetCalendar)
	router.POST("/api/v1/sitters/:id/selection", h.Select)
	router.GET("/api/v1/sitters/:id/blocks", h.ListBlocks)
	router.POST("/api/v1/sitters/:id/blocks", h.AddBlocks)
	router.DELETE("/api/v1/sitters/:id/blocks/:blockId", h.DeleteBlock)
}
