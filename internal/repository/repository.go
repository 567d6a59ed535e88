// Package repository exposes the city store and the weather gateway to the use cases.
// Both façades forward calls unchanged.
package repository

import (
	"context"

	"github.com/neexbeast/climascope/internal/domain"
)

// CityStore is the persistence contract CityRepository forwards to.
type CityStore interface {
	CreateCity(ctx context.Context, city *domain.City) bool
	GetAllCities(ctx context.Context) []domain.City
	DeleteCity(ctx context.Context, city domain.City) bool
}

// WeatherGateway is the remote weather and geocoding API.
type WeatherGateway interface {
	WeatherForCity(ctx context.Context, name string) (domain.Weather, error)
	WeatherByCoordinates(ctx context.Context, lat, lon float64) (domain.Weather, error)
	SearchCities(ctx context.Context, query string) ([]domain.CitySearchResult, error)
	CityNameByCoordinates(ctx context.Context, lat, lon float64) (string, error)
}

// CityRepository gives use cases access to saved cities.
type CityRepository struct {
	store CityStore
}

func NewCityRepository(store CityStore) *CityRepository {
	return &CityRepository{store: store}
}

func (r *CityRepository) CreateCity(ctx context.Context, city *domain.City) bool {
	return r.store.CreateCity(ctx, city)
}

func (r *CityRepository) GetAllCities(ctx context.Context) []domain.City {
	return r.store.GetAllCities(ctx)
}

func (r *CityRepository) DeleteCity(ctx context.Context, city domain.City) bool {
	return r.store.DeleteCity(ctx, city)
}

// WeatherRepository gives use cases access to weather and geocoding.
type WeatherRepository struct {
	gateway WeatherGateway
}

func NewWeatherRepository(gateway WeatherGateway) *WeatherRepository {
	return &WeatherRepository{gateway: gateway}
}

func (r *WeatherRepository) GetWeatherForCity(ctx context.Context, name string) (domain.Weather, error) {
	return r.gateway.WeatherForCity(ctx, name)
}

func (r *WeatherRepository) GetWeatherByCoordinates(ctx context.Context, lat, lon float64) (domain.Weather, error) {
	return r.gateway.WeatherByCoordinates(ctx, lat, lon)
}

func (r *WeatherRepository) SearchCities(ctx context.Context, query string) ([]domain.CitySearchResult, error) {
	return r.gateway.SearchCities(ctx, query)
}

func (r *WeatherRepository) GetCityNameByCoordinates(ctx context.Context, lat, lon float64) (string, error) {
	return r.gateway.CityNameByCoordinates(ctx, lat, lon)
}
