package usecase

import (
	"context"

	"github.com/neexbeast/climascope/internal/domain"
)

// CityRepo is the saved-city access the city use cases need.
type CityRepo interface {
	CreateCity(ctx context.Context, city *domain.City) bool
	GetAllCities(ctx context.Context) []domain.City
	DeleteCity(ctx context.Context, city domain.City) bool
}

// WeatherRepo is the weather and geocoding access the weather use cases need.
// GetCityNameByCoordinates is expected to resolve failures to domain.FallbackCityName.
type WeatherRepo interface {
	GetWeatherForCity(ctx context.Context, name string) (domain.Weather, error)
	GetWeatherByCoordinates(ctx context.Context, lat, lon float64) (domain.Weather, error)
	SearchCities(ctx context.Context, query string) ([]domain.CitySearchResult, error)
	GetCityNameByCoordinates(ctx context.Context, lat, lon float64) (string, error)
}

// Locator supplies the device position.
type Locator interface {
	CurrentLocation(ctx context.Context) (domain.Location, error)
}
