package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/climascope/internal/domain"
	"github.com/neexbeast/climascope/internal/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---- mocks ----

type mockCityRepo struct {
	mu     sync.Mutex
	cities []domain.City
	nextID int64
	fail   bool
}

func (m *mockCityRepo) CreateCity(_ context.Context, city *domain.City) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return false
	}
	m.nextID++
	city.ID = m.nextID
	m.cities = append(m.cities, *city)
	return true
}

func (m *mockCityRepo) GetAllCities(context.Context) []domain.City {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.City{}, m.cities...)
}

func (m *mockCityRepo) DeleteCity(_ context.Context, city domain.City) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.cities {
		if c.ID == city.ID {
			m.cities = append(m.cities[:i], m.cities[i+1:]...)
			return true
		}
	}
	return false
}

type mockWeatherRepo struct {
	weatherFn func(ctx context.Context, name string) (domain.Weather, error)
	coordsFn  func(ctx context.Context, lat, lon float64) (domain.Weather, error)
	searchFn  func(ctx context.Context, query string) ([]domain.CitySearchResult, error)
	nameFn    func(ctx context.Context, lat, lon float64) (string, error)
}

func (m *mockWeatherRepo) GetWeatherForCity(ctx context.Context, name string) (domain.Weather, error) {
	return m.weatherFn(ctx, name)
}
func (m *mockWeatherRepo) GetWeatherByCoordinates(ctx context.Context, lat, lon float64) (domain.Weather, error) {
	return m.coordsFn(ctx, lat, lon)
}
func (m *mockWeatherRepo) SearchCities(ctx context.Context, query string) ([]domain.CitySearchResult, error) {
	return m.searchFn(ctx, query)
}
func (m *mockWeatherRepo) GetCityNameByCoordinates(ctx context.Context, lat, lon float64) (string, error) {
	return m.nameFn(ctx, lat, lon)
}

type mockLocator struct {
	loc domain.Location
	err error
}

func (m *mockLocator) CurrentLocation(context.Context) (domain.Location, error) {
	return m.loc, m.err
}

// ---- city use cases ----

func TestCreateCity_AssignsID(t *testing.T) {
	repo := &mockCityRepo{}
	city, ok := usecase.NewCreateCity(repo).Execute(context.Background(), "Paris")
	require.True(t, ok)
	assert.Equal(t, domain.City{ID: 1, Name: "Paris"}, city)
}

func TestCreateCity_StoreFailure(t *testing.T) {
	repo := &mockCityRepo{fail: true}
	city, ok := usecase.NewCreateCity(repo).Execute(context.Background(), "Paris")
	assert.False(t, ok)
	assert.Equal(t, domain.City{}, city)
}

func TestCreateCity_NameStoredVerbatim(t *testing.T) {
	repo := &mockCityRepo{}
	city, ok := usecase.NewCreateCity(repo).Execute(context.Background(), "  Paris ")
	require.True(t, ok)
	assert.Equal(t, "  Paris ", city.Name)
}

func TestDeleteCity(t *testing.T) {
	ctx := context.Background()
	repo := &mockCityRepo{}
	create := usecase.NewCreateCity(repo)
	del := usecase.NewDeleteCity(repo)
	list := usecase.NewGetAllCities(repo)

	paris, _ := create.Execute(ctx, "Paris")
	rome, _ := create.Execute(ctx, "Rome")

	assert.True(t, del.Execute(ctx, paris))
	assert.Equal(t, []domain.City{rome}, list.Execute(ctx))
	assert.False(t, del.Execute(ctx, paris), "second delete finds nothing")
}

// ---- weather use cases ----

func TestGetWeather_PassesThrough(t *testing.T) {
	apiErr := &domain.APIError{StatusCode: 404, Message: "city not found"}
	repo := &mockWeatherRepo{weatherFn: func(_ context.Context, name string) (domain.Weather, error) {
		if name == "Nowhere" {
			return domain.Weather{}, apiErr
		}
		return domain.Weather{Description: "clear sky"}, nil
	}}
	uc := usecase.NewGetWeather(repo)

	w, err := uc.Execute(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, "clear sky", w.Description)

	_, err = uc.Execute(context.Background(), "Nowhere")
	assert.ErrorIs(t, err, apiErr)
}

func TestSearchCities_ShortQueries(t *testing.T) {
	for _, q := range []string{"", " ", "a", "  b  "} {
		t.Run(fmt.Sprintf("%q", q), func(t *testing.T) {
			called := false
			repo := &mockWeatherRepo{searchFn: func(context.Context, string) ([]domain.CitySearchResult, error) {
				called = true
				return nil, nil
			}}

			results, err := usecase.NewSearchCities(repo).Execute(context.Background(), q)
			require.NoError(t, err)
			assert.NotNil(t, results)
			assert.Empty(t, results)
			assert.False(t, called)
		})
	}
}

func TestSearchCities_Error(t *testing.T) {
	netErr := &domain.NetworkError{Op: "search", Err: errors.New("offline")}
	repo := &mockWeatherRepo{searchFn: func(context.Context, string) ([]domain.CitySearchResult, error) {
		return nil, netErr
	}}

	_, err := usecase.NewSearchCities(repo).Execute(context.Background(), "Berlin")
	var got *domain.NetworkError
	require.ErrorAs(t, err, &got)
}

func TestGetWeatherByLocation_Success(t *testing.T) {
	loc := domain.Location{Latitude: 48.85, Longitude: 2.35}
	var order []string
	repo := &mockWeatherRepo{
		coordsFn: func(_ context.Context, lat, lon float64) (domain.Weather, error) {
			order = append(order, "weather")
			assert.Equal(t, loc, domain.Location{Latitude: lat, Longitude: lon})
			return domain.Weather{Description: "clear sky"}, nil
		},
		nameFn: func(context.Context, float64, float64) (string, error) {
			order = append(order, "name")
			return "Paris, FR", nil
		},
	}

	got, err := usecase.NewGetWeatherByLocation(&mockLocator{loc: loc}, repo).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.LocatedWeather{
		Weather:  domain.Weather{Description: "clear sky"},
		Location: loc,
		CityName: "Paris, FR",
	}, got)
	assert.Equal(t, []string{"weather", "name"}, order)
}

func TestGetWeatherByLocation_WeatherFailureStops(t *testing.T) {
	nameCalled := false
	apiErr := &domain.APIError{StatusCode: 500, Message: "boom"}
	repo := &mockWeatherRepo{
		coordsFn: func(context.Context, float64, float64) (domain.Weather, error) {
			return domain.Weather{}, apiErr
		},
		nameFn: func(context.Context, float64, float64) (string, error) {
			nameCalled = true
			return "x", nil
		},
	}

	_, err := usecase.NewGetWeatherByLocation(&mockLocator{}, repo).Execute(context.Background())
	require.ErrorIs(t, err, apiErr)
	assert.False(t, nameCalled)
}

func TestGetWeatherByLocation_NameFailureKeepsWeather(t *testing.T) {
	loc := domain.Location{Latitude: 10, Longitude: 20}
	repo := &mockWeatherRepo{
		coordsFn: func(context.Context, float64, float64) (domain.Weather, error) {
			return domain.Weather{Description: "fog"}, nil
		},
		nameFn: func(context.Context, float64, float64) (string, error) {
			return "", errors.New("reverse down")
		},
	}

	got, err := usecase.NewGetWeatherByLocation(&mockLocator{loc: loc}, repo).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.LocatedWeather{
		Weather:  domain.Weather{Description: "fog"},
		Location: loc,
		CityName: domain.FallbackCityName,
	}, got)
}

func TestGetWeatherByLocation_LocationUnavailable(t *testing.T) {
	repo := &mockWeatherRepo{}
	_, err := usecase.NewGetWeatherByLocation(&mockLocator{err: domain.ErrLocationUnavailable}, repo).
		Execute(context.Background())
	require.ErrorIs(t, err, domain.ErrLocationUnavailable)
}

// ---- overview ----

func TestGetWeatherOverview_PartialFailure(t *testing.T) {
	ctx := context.Background()
	cities := &mockCityRepo{}
	for _, n := range []string{"Paris", "Atlantis", "Rome"} {
		cities.CreateCity(ctx, &domain.City{Name: n})
	}
	weather := &mockWeatherRepo{weatherFn: func(_ context.Context, name string) (domain.Weather, error) {
		if name == "Atlantis" {
			return domain.Weather{}, &domain.APIError{StatusCode: 404, Message: "city not found"}
		}
		return domain.Weather{Description: "sunny in " + name}, nil
	}}

	rows := usecase.NewGetWeatherOverview(cities, weather, 2, discardLogger()).Execute(ctx)
	require.Len(t, rows, 3)

	assert.Equal(t, "Paris", rows[0].City.Name)
	require.NotNil(t, rows[0].Weather)
	assert.Equal(t, "sunny in Paris", rows[0].Weather.Description)

	assert.Equal(t, "Atlantis", rows[1].City.Name)
	assert.Nil(t, rows[1].Weather)
	assert.Equal(t, "API Error: 404 - city not found", rows[1].Error)

	assert.Equal(t, "Rome", rows[2].City.Name)
	require.NotNil(t, rows[2].Weather)
}

func TestGetWeatherOverview_BoundedConcurrency(t *testing.T) {
	ctx := context.Background()
	cities := &mockCityRepo{}
	for i := 0; i < 8; i++ {
		cities.CreateCity(ctx, &domain.City{Name: fmt.Sprintf("c%d", i)})
	}

	var inFlight, peak atomic.Int32
	weather := &mockWeatherRepo{weatherFn: func(context.Context, string) (domain.Weather, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return domain.Weather{}, nil
	}}

	rows := usecase.NewGetWeatherOverview(cities, weather, 3, discardLogger()).Execute(ctx)
	assert.Len(t, rows, 8)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestGetWeatherOverview_Empty(t *testing.T) {
	rows := usecase.NewGetWeatherOverview(&mockCityRepo{}, &mockWeatherRepo{}, 0, nil).Execute(context.Background())
	assert.Empty(t, rows)
}
