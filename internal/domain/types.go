package domain

import "strings"

// MinSearchQueryLen is the shortest trimmed query that is sent to the geocoding API.
const MinSearchQueryLen = 2

// FallbackCityName is shown when coordinates cannot be resolved to a place name.
const FallbackCityName = "current position"

// City is a user-curated city. ID is zero until the city has been persisted.
type City struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// Persisted reports whether the store has assigned an ID to the city.
func (c City) Persisted() bool {
	return c.ID > 0
}

// Weather holds current conditions for a place. Temperatures are in °C.
type Weather struct {
	Description string  `json:"description"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Humidity    int     `json:"humidity"`
	Pressure    int     `json:"pressure"`
	WindSpeed   float64 `json:"wind_speed"`
	IconURL     string  `json:"icon_url"`
}

// CitySearchResult is a geocoding candidate returned by forward or reverse lookup.
type CitySearchResult struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Country   string  `json:"country"`
	State     string  `json:"state,omitempty"`
}

// DisplayName formats the result as "name, state, country", or "name, country" when
// no state is known.
func (r CitySearchResult) DisplayName() string {
	if r.State != "" {
		return r.Name + ", " + r.State + ", " + r.Country
	}
	return r.Name + ", " + r.Country
}

// Location is a device position.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// LocatedWeather is the weather at the device position plus the resolved place name.
type LocatedWeather struct {
	Weather  Weather  `json:"weather"`
	Location Location `json:"location"`
	CityName string   `json:"city_name"`
}

// CityWeather is one row of the saved-cities overview. Error is set instead of
// Weather when the fetch for that city failed.
type CityWeather struct {
	City    City     `json:"city"`
	Weather *Weather `json:"weather,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// SearchQueryOK reports whether query is long enough to be worth a geocoding request.
func SearchQueryOK(query string) bool {
	return len([]rune(strings.TrimSpace(query))) >= MinSearchQueryLen
}
