package openweather_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/climascope/internal/domain"
	"github.com/neexbeast/climascope/internal/openweather"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, baseURL string) *openweather.Client {
	t.Helper()
	return openweather.NewClient(openweather.Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Timeout: 2 * time.Second,
	}, discardLogger(), nil)
}

func weatherHandler(t *testing.T, body map[string]any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
}

func parisBody() map[string]any {
	return map[string]any{
		"coord": map[string]any{"lat": 48.85, "lon": 2.35},
		"weather": []map[string]any{
			{"description": "clear sky", "icon": "01d"},
			{"description": "mist", "icon": "50d"},
		},
		"main": map[string]any{
			"temp":       22.5,
			"feels_like": 21.0,
			"humidity":   60,
			"pressure":   1013,
		},
		"wind": map[string]any{"speed": 3.5},
		"sys":  map[string]any{"country": "FR"},
	}
}

func TestWeatherForCity_Success(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		weatherHandler(t, parisBody())(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	w, err := c.WeatherForCity(context.Background(), "Paris")
	require.NoError(t, err)

	assert.Equal(t, "Paris", gotQuery)
	assert.Equal(t, "clear sky", w.Description)
	assert.Equal(t, 22.5, w.Temperature)
	assert.Equal(t, 21.0, w.FeelsLike)
	assert.Equal(t, 60, w.Humidity)
	assert.Equal(t, 1013, w.Pressure)
	assert.Equal(t, 3.5, w.WindSpeed)
	assert.Equal(t, "https://openweathermap.org/img/wn/01d.png", w.IconURL)
}

func TestWeatherForCity_FirstConditionWins(t *testing.T) {
	body := parisBody()
	body["weather"] = []map[string]any{
		{"description": "mist", "icon": "50d"},
		{"description": "clear sky", "icon": "01d"},
	}
	srv := httptest.NewServer(weatherHandler(t, body))
	defer srv.Close()

	reordered, err := newTestClient(t, srv.URL).WeatherForCity(context.Background(), "Paris")
	require.NoError(t, err)

	origSrv := httptest.NewServer(weatherHandler(t, parisBody()))
	defer origSrv.Close()

	original, err := newTestClient(t, origSrv.URL).WeatherForCity(context.Background(), "Paris")
	require.NoError(t, err)

	assert.Equal(t, "mist", reordered.Description)
	assert.Equal(t, "https://openweathermap.org/img/wn/50d.png", reordered.IconURL)

	// Everything except description and icon is unaffected by the order.
	reordered.Description, reordered.IconURL = original.Description, original.IconURL
	assert.Equal(t, original, reordered)
}

func TestWeatherForCity_Defaults(t *testing.T) {
	body := parisBody()
	delete(body, "wind")
	body["main"] = map[string]any{"temp": 9.5, "humidity": 80, "pressure": 1001}

	srv := httptest.NewServer(weatherHandler(t, body))
	defer srv.Close()

	w, err := newTestClient(t, srv.URL).WeatherForCity(context.Background(), "Oslo")
	require.NoError(t, err)
	assert.Equal(t, 9.5, w.FeelsLike, "feels_like defaults to temperature")
	assert.Equal(t, 0.0, w.WindSpeed, "wind speed defaults to zero")
}

func TestWeatherForCity_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).WeatherForCity(context.Background(), "InvalidCityXYZ")
	require.Error(t, err)

	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "city not found", apiErr.Message)
}

func TestWeatherForCity_ServerErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).WeatherForCity(context.Background(), "Paris")

	var apiErr *domain.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "Service Unavailable", apiErr.Message)
}

func TestWeatherForCity_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).WeatherForCity(context.Background(), "Paris")
	require.ErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestWeatherForCity_NoConditions(t *testing.T) {
	body := parisBody()
	body["weather"] = []map[string]any{}
	srv := httptest.NewServer(weatherHandler(t, body))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).WeatherForCity(context.Background(), "Paris")
	require.ErrorIs(t, err, domain.ErrEmptyResponse)
}

func TestWeatherForCity_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{invalid json`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).WeatherForCity(context.Background(), "Paris")
	require.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestWeatherForCity_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url).WeatherForCity(context.Background(), "Paris")

	var netErr *domain.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "weather", netErr.Op)
}

func TestWeatherForCity_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, srv.URL).WeatherForCity(ctx, "Paris")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	var netErr *domain.NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestWeatherByCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "48.8566", r.URL.Query().Get("lat"))
		assert.Equal(t, "2.3522", r.URL.Query().Get("lon"))
		assert.Empty(t, r.URL.Query().Get("q"))
		weatherHandler(t, parisBody())(w, r)
	}))
	defer srv.Close()

	w, err := newTestClient(t, srv.URL).WeatherByCoordinates(context.Background(), 48.8566, 2.3522)
	require.NoError(t, err)
	assert.Equal(t, "clear sky", w.Description)
}
