package service

import (
	"sort"
	"strings"

	"petsitter/pkg/geo"
	"petsitter/pkg/model"
	"petsitter/pkg/sanitizer"
)

// FilterSitters applies the location part of a search and orders the result.
// With a reference point, sitters without coordinates or farther than
// radiusKm are dropped and results are sorted by distance. Without one,
// locality (when non-empty) is matched as a case-insensitive substring.
// Ties are broken by name, then id.
func FilterSitters(sitters []*model.SitterSummary, ref *geo.Point, radiusKm float64, locality string) []model.SitterResult {
	locality = sanitizer.NormalizeLabel(locality)
	out := make([]model.SitterResult, 0, len(sitters))

	for _, s := range sitters {
		if ref != nil {
			if !s.HasLocation() {
				continue
			}
			p := geo.Point{Lat: *s.Latitude, Lon: *s.Longitude}
			if !geo.Within(*ref, p, radiusKm) {
				continue
			}
			d := geo.Distance(*ref, p)
			out = append(out, model.SitterResult{SitterSummary: *s, DistanceKm: &d})
			continue
		}
		if locality != "" && !strings.Contains(sanitizer.NormalizeLabel(s.Locality), locality) {
			continue
		}
		out = append(out, model.SitterResult{SitterSummary: *s})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DistanceKm != nil && b.DistanceKm != nil && *a.DistanceKm != *b.DistanceKm {
			return *a.DistanceKm < *b.DistanceKm
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out
}

// Paginate returns the 1-indexed page of results and the total page count.
// A page past the end is empty.
func Paginate(results []model.SitterResult, page, pageSize int) ([]model.SitterResult, int) {
	if pageSize <= 0 {
		pageSize = len(results)
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (len(results) + pageSize - 1) / pageSize
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start >= len(results) {
		return []model.SitterResult{}, totalPages
	}
	end := min(start+pageSize, len(results))
	return results[start:end], totalPages
}
