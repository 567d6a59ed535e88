package openweather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/neexbeast/climascope/internal/domain"
)

const (
	directGeocodingPath  = "/geo/1.0/direct"
	reverseGeocodingPath = "/geo/1.0/reverse"
)

type geocodingEntry struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

func (e geocodingEntry) toResult() domain.CitySearchResult {
	return domain.CitySearchResult{
		Name:      e.Name,
		Latitude:  e.Lat,
		Longitude: e.Lon,
		Country:   e.Country,
		State:     e.State,
	}
}

// SearchCities looks up cities matching query. Queries that fail domain.SearchQueryOK
// return an empty result without a request.
func (c *Client) SearchCities(ctx context.Context, query string) ([]domain.CitySearchResult, error) {
	if !domain.SearchQueryOK(query) {
		return []domain.CitySearchResult{}, nil
	}

	params := url.Values{}
	params.Set("q", strings.TrimSpace(query))
	params.Set("limit", strconv.Itoa(c.cfg.SearchLimit))

	var raw []geocodingEntry
	if err := c.doGet(ctx, "search", directGeocodingPath, params, &raw); err != nil {
		return nil, fmt.Errorf("searching cities for %q: %w", query, err)
	}

	results := make([]domain.CitySearchResult, 0, len(raw))
	for _, e := range raw {
		results = append(results, e.toResult())
	}
	return results, nil
}

// CityNameByCoordinates resolves lat/lon to a display name. It never returns an error:
// lookup failures and empty results resolve to domain.FallbackCityName.
func (c *Client) CityNameByCoordinates(ctx context.Context, lat, lon float64) (string, error) {
	results, err := c.reverseGeocode(ctx, lat, lon)
	return cityNameOrFallback(results, err), nil
}

func (c *Client) reverseGeocode(ctx context.Context, lat, lon float64) ([]domain.CitySearchResult, error) {
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))
	params.Set("limit", "1")

	var raw []geocodingEntry
	if err := c.doGet(ctx, "reverse", reverseGeocodingPath, params, &raw); err != nil {
		return nil, fmt.Errorf("reverse geocoding %s,%s: %w", formatCoord(lat), formatCoord(lon), err)
	}

	results := make([]domain.CitySearchResult, 0, len(raw))
	for _, e := range raw {
		results = append(results, e.toResult())
	}
	return results, nil
}

// cityNameOrFallback is the only place a reverse geocoding failure is turned into a name.
func cityNameOrFallback(results []domain.CitySearchResult, err error) string {
	if err != nil || len(results) == 0 {
		return domain.FallbackCityName
	}
	return results[0].DisplayName()
}
