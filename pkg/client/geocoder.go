package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"petsitter/pkg/geo"
)

var ErrLocationNotFound = errors.New("location not found")

// GeocoderClient resolves free-text places through a Nominatim-compatible API.
type GeocoderClient struct {
	httpClient *HttpClient
}

func NewGeocoderClient(baseURL, userAgent string, timeout time.Duration) *GeocoderClient {
	c := NewHttpClient(baseURL, timeout)
	// Nominatim's usage policy requires an identifying User-Agent.
	c.Headers["User-Agent"] = userAgent
	return &GeocoderClient{httpClient: c}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Search returns the coordinates of the first match for text.
func (c *GeocoderClient) Search(ctx context.Context, text string) (geo.Point, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("format", "json")
	q.Set("limit", "1")

	resp, err := c.httpClient.GET(ctx, "/search?"+q.Encode())
	if err != nil {
		return geo.Point{}, fmt.Errorf("geocoder: %w", err)
	}
	if !resp.OK() {
		return geo.Point{}, fmt.Errorf("geocoder: status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := resp.DecodeJSON(&places); err != nil {
		return geo.Point{}, fmt.Errorf("geocoder: decode response: %w", err)
	}
	if len(places) == 0 {
		return geo.Point{}, ErrLocationNotFound
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return geo.Point{}, fmt.Errorf("geocoder: malformed coordinates %q,%q", places[0].Lat, places[0].Lon)
	}
	return geo.Point{Lat: lat, Lon: lon}, nil
}
