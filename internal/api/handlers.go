package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/neexbeast/climascope/internal/domain"
	"github.com/neexbeast/climascope/internal/state"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	cities   CityModel
	weather  WeatherModel
	search   SearchModel
	here     LocationWeatherModel
	namer    CityNamer
	overview OverviewFetcher
	log      *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(cities CityModel, weather WeatherModel, search SearchModel, here LocationWeatherModel,
	namer CityNamer, overview OverviewFetcher, log *slog.Logger) *Handlers {
	return &Handlers{
		cities:   cities,
		weather:  weather,
		search:   search,
		here:     here,
		namer:    namer,
		overview: overview,
		log:      log,
	}
}

// SearchResultView is a search candidate with its display name.
type SearchResultView struct {
	domain.CitySearchResult
	DisplayName string `json:"display_name"`
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps a terminal state onto an HTTP status code.
func statusFor[T any](st state.State[T]) int {
	if !st.Failed() {
		return http.StatusOK
	}
	switch st.Affordance {
	case state.AffordanceGrantPermission:
		return http.StatusForbidden
	case state.AffordanceRetry:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeState[T any](w http.ResponseWriter, st state.State[T]) {
	writeJSON(w, statusFor(st), st)
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// ListCities handles GET /api/v1/cities.
func (h *Handlers) ListCities(w http.ResponseWriter, r *http.Request) {
	writeState(w, h.cities.Load(r.Context()))
}

type createCityRequest struct {
	Name string `json:"name"`
}

// CreateCity handles POST /api/v1/cities.
func (h *Handlers) CreateCity(w http.ResponseWriter, r *http.Request) {
	var req createCityRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name must not be blank")
		return
	}

	city, st := h.cities.Create(r.Context(), req.Name)
	if st.Failed() {
		writeState(w, st)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"city": city, "cities": st})
}

// DeleteCity handles DELETE /api/v1/cities/{id}.
func (h *Handlers) DeleteCity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid city id")
		return
	}
	writeState(w, h.cities.Delete(r.Context(), domain.City{ID: id}))
}

// SetCurrentCity handles PUT /api/v1/cities/current/{id}.
func (h *Handlers) SetCurrentCity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid city id")
		return
	}
	city, found := h.cities.SetCurrentByID(r.Context(), id)
	if !found {
		writeError(w, http.StatusNotFound, "city not found")
		return
	}
	writeJSON(w, http.StatusOK, city)
}

// CurrentCity handles GET /api/v1/cities/current.
func (h *Handlers) CurrentCity(w http.ResponseWriter, _ *http.Request) {
	city, ok := h.cities.Current()
	if !ok {
		writeError(w, http.StatusNotFound, "no city selected")
		return
	}
	writeJSON(w, http.StatusOK, city)
}

// GetWeather handles GET /api/v1/weather?city=.
func (h *Handlers) GetWeather(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		writeError(w, http.StatusBadRequest, "city query parameter is required")
		return
	}
	st := h.weather.LoadForCity(r.Context(), city)
	if st.Failed() {
		h.log.Warn("weather request failed", "city", city, "err", st.Error)
	}
	writeState(w, st)
}

// RefreshWeather handles POST /api/v1/weather/refresh.
func (h *Handlers) RefreshWeather(w http.ResponseWriter, r *http.Request) {
	if h.weather.CityName() == "" {
		writeError(w, http.StatusConflict, "no city loaded yet")
		return
	}
	writeState(w, h.weather.Refresh(r.Context()))
}

// WeatherHere handles GET /api/v1/weather/here.
func (h *Handlers) WeatherHere(w http.ResponseWriter, r *http.Request) {
	writeState(w, h.here.Load(r.Context()))
}

// SearchCities handles GET /api/v1/search?q=.
func (h *Handlers) SearchCities(w http.ResponseWriter, r *http.Request) {
	st := h.search.Search(r.Context(), r.URL.Query().Get("q"))

	view := state.State[[]SearchResultView]{
		IsLoading:  st.IsLoading,
		Error:      st.Error,
		Affordance: st.Affordance,
	}
	if st.Data != nil {
		results := make([]SearchResultView, 0, len(*st.Data))
		for _, c := range *st.Data {
			results = append(results, SearchResultView{CitySearchResult: c, DisplayName: c.DisplayName()})
		}
		view.Data = &results
	}
	writeState(w, view)
}

// ReverseGeocode handles GET /api/v1/geocode/reverse?lat=&lon=.
func (h *Handlers) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err := errors.Join(errLat, errLon); err != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeError(w, http.StatusBadRequest, "lat and lon must be valid coordinates")
		return
	}

	name, err := h.namer.Execute(r.Context(), lat, lon)
	if err != nil {
		h.log.Error("reverse geocoding failed", "lat", lat, "lon", lon, "err", err)
		writeError(w, http.StatusInternalServerError, "reverse geocoding failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

// Overview handles GET /api/v1/overview.
func (h *Handlers) Overview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.overview.Execute(r.Context()))
}

// HealthHandlerFunc returns an http.HandlerFunc that checks storage connectivity.
// It returns 200 if storage is reachable, 503 otherwise.
func HealthHandlerFunc(store Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.Error("health check: storage ping failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "degraded",
				"storage": "error",
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"storage": "ok",
		})
	}
}
