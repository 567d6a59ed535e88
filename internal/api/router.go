package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds and returns the Chi router with all routes configured.
// Rate limiting is applied globally per IP; rateLimit is requests per minute.
func NewRouter(handlers *Handlers, store Pinger, gatherer prometheus.Gatherer, rateLimit int, log *slog.Logger) *chi.Mux {
	if rateLimit <= 0 {
		rateLimit = 60
	}

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(rateLimit, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(store, log))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Get("/api/v1/cities", handlers.ListCities)
		r.Post("/api/v1/cities", handlers.CreateCity)
		r.Get("/api/v1/cities/current", handlers.CurrentCity)
		r.Put("/api/v1/cities/current/{id}", handlers.SetCurrentCity)
		r.Delete("/api/v1/cities/{id}", handlers.DeleteCity)

		r.Get("/api/v1/weather", handlers.GetWeather)
		r.Post("/api/v1/weather/refresh", handlers.RefreshWeather)
		r.Get("/api/v1/weather/here", handlers.WeatherHere)

		r.Get("/api/v1/search", handlers.SearchCities)
		r.Get("/api/v1/geocode/reverse", handlers.ReverseGeocode)
		r.Get("/api/v1/overview", handlers.Overview)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
