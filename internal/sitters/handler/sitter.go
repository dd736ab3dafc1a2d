package handler

import (
	"net/http"
	"strconv"

	"petsitter/internal/sitters/service"
	apperrors "petsitter/pkg/errors"
	httputil "petsitter/pkg/http"
	"petsitter/pkg/logger"
	"petsitter/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SitterHandler struct {
	service service.SitterService
	log     *logger.Logger
}

func NewSitterHandler(service service.SitterService, log *logger.Logger) *SitterHandler {
	return &SitterHandler{
		service: service,
		log:     log,
	}
}

func (h *SitterHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q, err := parseSearchQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.service.Search(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := httputil.WritePage(w, page.Results, page.Page, page.PageSize, page.TotalCount, page.TotalPages); err != nil {
		h.log.Error("failed to write page response", "handler", "Search", "operation", "WritePage", "error", err)
	}
}

func parseSearchQuery(r *http.Request) (model.SearchQuery, error) {
	query := r.URL.Query()

	page, err := httputil.ExtractPage(r)
	if err != nil {
		return model.SearchQuery{}, err
	}

	q := model.SearchQuery{
		Location:    query.Get("location"),
		Locality:    query.Get("locality"),
		ServiceType: query.Get("service"),
		AnimalID:    query.Get("animal"),
		Option:      query.Get("option"),
		Page:        page,
	}

	floats := []struct {
		name string
		dst  **float64
	}{
		{"lat", &q.Latitude},
		{"lon", &q.Longitude},
	}
	for _, f := range floats {
		s := query.Get(f.name)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.SearchQuery{}, apperrors.InvalidInput("invalid " + f.name + " parameter: " + s)
		}
		*f.dst = &v
	}

	if s := query.Get("radius_km"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.SearchQuery{}, apperrors.InvalidInput("invalid radius_km parameter: " + s)
		}
		q.RadiusKm = v
	}
	return q, nil
}

func (h *SitterHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/sitters/search", h.Search)
}
