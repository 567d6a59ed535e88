package api

import (
	"context"

	"github.com/neexbeast/climascope/internal/domain"
	"github.com/neexbeast/climascope/internal/state"
)

// CityModel is the saved-city screen as the handlers drive it.
type CityModel interface {
	Load(ctx context.Context) state.State[[]domain.City]
	Create(ctx context.Context, name string) (domain.City, state.State[[]domain.City])
	Delete(ctx context.Context, city domain.City) state.State[[]domain.City]
	SetCurrentByID(ctx context.Context, id int64) (domain.City, bool)
	Current() (domain.City, bool)
}

// WeatherModel is the single-city weather screen.
type WeatherModel interface {
	LoadForCity(ctx context.Context, cityName string) state.State[domain.Weather]
	Refresh(ctx context.Context) state.State[domain.Weather]
	CityName() string
}

// SearchModel is the city search box.
type SearchModel interface {
	Search(ctx context.Context, query string) state.State[[]domain.CitySearchResult]
}

// LocationWeatherModel is the weather-here screen.
type LocationWeatherModel interface {
	Load(ctx context.Context) state.State[domain.LocatedWeather]
}

// CityNamer resolves coordinates to a place name.
type CityNamer interface {
	Execute(ctx context.Context, lat, lon float64) (string, error)
}

// OverviewFetcher builds the weather overview of all saved cities.
type OverviewFetcher interface {
	Execute(ctx context.Context) []domain.CityWeather
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
