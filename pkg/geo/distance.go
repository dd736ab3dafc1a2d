// Package geo holds great-circle distance helpers for proximity search.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Distance returns the haversine distance between a and b in kilometers.
func Distance(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Within reports whether b is at most radiusKm from a.
func Within(a, b Point, radiusKm float64) bool {
	return Distance(a, b) <= radiusKm
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

const kmPerDegreeLat = 111.32

// Box is a latitude/longitude rectangle. When AllLongitudes is set the
// longitude bounds are meaningless and must not be used as a filter.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	AllLongitudes  bool
}

// BoundingBox returns a box containing every point within radiusKm of
// center. It is a coarse prefilter; Within decides membership.
func BoundingBox(center Point, radiusKm float64) Box {
	dLat := radiusKm / kmPerDegreeLat
	box := Box{
		MinLat: math.Max(-90, center.Lat-dLat),
		MaxLat: math.Min(90, center.Lat+dLat),
	}

	cosLat := math.Cos(toRadians(math.Max(math.Abs(box.MinLat), math.Abs(box.MaxLat))))
	if cosLat < 1e-6 {
		box.AllLongitudes = true
		return box
	}
	dLon := radiusKm / (kmPerDegreeLat * cosLat)
	box.MinLon, box.MaxLon = center.Lon-dLon, center.Lon+dLon
	if dLon >= 180 || box.MinLon < -180 || box.MaxLon > 180 {
		box.AllLongitudes = true
	}
	return box
}

func (b Box) Contains(p Point) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	return b.AllLongitudes || (p.Lon >= b.MinLon && p.Lon <= b.MaxLon)
}
