package service

import (
	"context"
	"errors"

	"petsitter/internal/sitters/repository"
	"petsitter/pkg/client"
	"petsitter/pkg/config"
	apperrors "petsitter/pkg/errors"
	"petsitter/pkg/geo"
	"petsitter/pkg/model"
	"petsitter/pkg/sanitizer"
	"petsitter/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type Geocoder interface {
	Search(ctx context.Context, text string) (geo.Point, error)
}

type SearchPage struct {
	Results    []model.SitterResult
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
}

type SitterService interface {
	Search(ctx context.Context, q model.SearchQuery) (*SearchPage, error)
}

type sitterService struct {
	repo     repository.SitterRepository
	geocoder Geocoder
	validate *validator.Validate
	cfg      *config.Config
}

// NewSitterService builds the search service. geocoder may be nil, in which
// case free-text locations are rejected.
func NewSitterService(repo repository.SitterRepository, geocoder Geocoder, cfg *config.Config) SitterService {
	return &sitterService{
		repo:     repo,
		geocoder: geocoder,
		validate: validation.New(),
		cfg:      cfg,
	}
}

func (s *sitterService) Search(ctx context.Context, q model.SearchQuery) (*SearchPage, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if err := validation.Struct(s.validate, q); err != nil {
		return nil, validation.ToAppError("Invalid search query", err)
	}
	if (q.Latitude == nil) != (q.Longitude == nil) {
		return nil, apperrors.Validation("Invalid search query", map[string]any{"lat": "lat and lon must be given together"})
	}

	ref, err := s.reference(ctx, q)
	if err != nil {
		return nil, err
	}

	radius := q.RadiusKm
	if radius == 0 {
		radius = s.cfg.SearchRadiusKm
	}

	facets := repository.Facets{
		ServiceType: sanitizer.NormalizeKey(q.ServiceType),
		AnimalID:    sanitizer.NormalizeKey(q.AnimalID),
		Option:      sanitizer.NormalizeKey(q.Option),
	}
	if ref != nil {
		box := geo.BoundingBox(*ref, radius)
		facets.Box = &box
	}

	sitters, err := s.repo.Find(ctx, facets)
	if err != nil {
		s.cfg.Log.Error("Failed to search sitters", "facets", facets, "error", err)
		return nil, apperrors.Internal("Failed to search sitters", err)
	}

	results := FilterSitters(sitters, ref, radius, q.Locality)
	pageSize := s.cfg.SearchPageSize
	pageResults, totalPages := Paginate(results, q.Page, pageSize)

	s.cfg.Log.Debug("Sitter search completed",
		"candidates", len(sitters),
		"matches", len(results),
		"page", q.Page,
		"has_reference", ref != nil,
	)

	return &SearchPage{
		Results:    pageResults,
		Page:       q.Page,
		PageSize:   pageSize,
		TotalCount: len(results),
		TotalPages: totalPages,
	}, nil
}

// reference resolves the search's reference point from explicit coordinates
// or, failing that, by geocoding the free-text location.
func (s *sitterService) reference(ctx context.Context, q model.SearchQuery) (*geo.Point, error) {
	if q.HasReference() {
		return &geo.Point{Lat: *q.Latitude, Lon: *q.Longitude}, nil
	}

	location := sanitizer.TrimAndNormalize(q.Location)
	if location == "" {
		return nil, nil
	}
	if s.geocoder == nil {
		return nil, apperrors.Validation("Location search is not available", map[string]any{"location": location})
	}

	point, err := s.geocoder.Search(ctx, location)
	if err != nil {
		if errors.Is(err, client.ErrLocationNotFound) {
			return nil, apperrors.Validation("Location not found", map[string]any{"location": location})
		}
		s.cfg.Log.Error("Failed to geocode location", "location", location, "error", err)
		return nil, apperrors.Unavailable("Geocoder", err)
	}
	return &point, nil
}
