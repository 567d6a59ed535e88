package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/climascope/internal/domain"
	"github.com/neexbeast/climascope/internal/repository"
)

type mockStore struct {
	createFn func(ctx context.Context, city *domain.City) bool
	listFn   func(ctx context.Context) []domain.City
	deleteFn func(ctx context.Context, city domain.City) bool
}

func (m *mockStore) CreateCity(ctx context.Context, city *domain.City) bool {
	return m.createFn(ctx, city)
}
func (m *mockStore) GetAllCities(ctx context.Context) []domain.City { return m.listFn(ctx) }
func (m *mockStore) DeleteCity(ctx context.Context, city domain.City) bool {
	return m.deleteFn(ctx, city)
}

type mockGateway struct {
	weatherFn func(ctx context.Context, name string) (domain.Weather, error)
	coordsFn  func(ctx context.Context, lat, lon float64) (domain.Weather, error)
	searchFn  func(ctx context.Context, query string) ([]domain.CitySearchResult, error)
	nameFn    func(ctx context.Context, lat, lon float64) (string, error)
}

func (m *mockGateway) WeatherForCity(ctx context.Context, name string) (domain.Weather, error) {
	return m.weatherFn(ctx, name)
}
func (m *mockGateway) WeatherByCoordinates(ctx context.Context, lat, lon float64) (domain.Weather, error) {
	return m.coordsFn(ctx, lat, lon)
}
func (m *mockGateway) SearchCities(ctx context.Context, query string) ([]domain.CitySearchResult, error) {
	return m.searchFn(ctx, query)
}
func (m *mockGateway) CityNameByCoordinates(ctx context.Context, lat, lon float64) (string, error) {
	return m.nameFn(ctx, lat, lon)
}

func TestCityRepository_Forwards(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{
		createFn: func(_ context.Context, city *domain.City) bool {
			city.ID = 9
			return true
		},
		listFn: func(context.Context) []domain.City {
			return []domain.City{{ID: 9, Name: "Oslo"}}
		},
		deleteFn: func(_ context.Context, city domain.City) bool { return city.ID == 9 },
	}
	repo := repository.NewCityRepository(store)

	city := &domain.City{Name: "Oslo"}
	require.True(t, repo.CreateCity(ctx, city))
	assert.Equal(t, int64(9), city.ID)
	assert.Equal(t, []domain.City{{ID: 9, Name: "Oslo"}}, repo.GetAllCities(ctx))
	assert.True(t, repo.DeleteCity(ctx, *city))
	assert.False(t, repo.DeleteCity(ctx, domain.City{ID: 10}))
}

func TestWeatherRepository_Forwards(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	gw := &mockGateway{
		weatherFn: func(_ context.Context, name string) (domain.Weather, error) {
			return domain.Weather{Description: name}, nil
		},
		coordsFn: func(_ context.Context, lat, lon float64) (domain.Weather, error) {
			return domain.Weather{Temperature: lat + lon}, nil
		},
		searchFn: func(context.Context, string) ([]domain.CitySearchResult, error) {
			return nil, boom
		},
		nameFn: func(context.Context, float64, float64) (string, error) {
			return "Paris", nil
		},
	}
	repo := repository.NewWeatherRepository(gw)

	w, err := repo.GetWeatherForCity(ctx, "Rome")
	require.NoError(t, err)
	assert.Equal(t, "Rome", w.Description)

	w, err = repo.GetWeatherByCoordinates(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, w.Temperature)

	_, err = repo.SearchCities(ctx, "Ro")
	assert.ErrorIs(t, err, boom)

	name, err := repo.GetCityNameByCoordinates(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Paris", name)
}
