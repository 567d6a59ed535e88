// Package app is the composition root: it builds every component from a Config and owns
// their lifetime.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/neexbeast/climascope/internal/config"
	"github.com/neexbeast/climascope/internal/location"
	"github.com/neexbeast/climascope/internal/metrics"
	"github.com/neexbeast/climascope/internal/openweather"
	"github.com/neexbeast/climascope/internal/repository"
	"github.com/neexbeast/climascope/internal/storage"
	"github.com/neexbeast/climascope/internal/usecase"
	"github.com/neexbeast/climascope/internal/viewmodel"
)

// App holds the wired components.
type App struct {
	Config   *config.Config
	Log      *slog.Logger
	Registry *prometheus.Registry

	Store    *storage.CityStore
	Location *location.Service

	Cities          *viewmodel.CityViewModel
	Weather         *viewmodel.WeatherViewModel
	Search          *viewmodel.SearchViewModel
	LocationWeather *viewmodel.LocationWeatherViewModel

	CityName *usecase.GetCityNameByLocation
	Overview *usecase.GetWeatherOverview
}

// NewLogger builds the process logger described by cfg.
func NewLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.Level))); err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}

// New validates cfg, opens storage and wires the rest.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	backend, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.Storage.Driver,
		SQLitePath:  cfg.Storage.SQLitePath,
		DatabaseURL: cfg.Storage.DatabaseURL,
		RedisURL:    cfg.Storage.RedisURL,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
	}
	log.Info("storage ready", "driver", cfg.Storage.Driver)
	store := storage.NewCityStore(backend, log, m)

	client := openweather.NewClient(openweather.Config{
		APIKey:            cfg.OpenWeather.APIKey,
		BaseURL:           cfg.OpenWeather.BaseURL,
		IconBaseURL:       cfg.OpenWeather.IconBaseURL,
		Units:             cfg.OpenWeather.Units,
		Language:          cfg.OpenWeather.Language,
		SearchLimit:       cfg.OpenWeather.SearchLimit,
		Timeout:           cfg.OpenWeather.Timeout,
		RequestsPerMinute: cfg.OpenWeather.RequestsPerMinute,
	}, log, m)

	locSvc := location.NewService(
		newProvider(cfg.Location, cfg.OpenWeather, log),
		location.StaticPermissions{Coarse: cfg.Location.CoarseGranted, Fine: cfg.Location.FineGranted},
		location.Options{Interval: cfg.Location.UpdateInterval, MinInterval: cfg.Location.MinUpdateInterval},
		log, m,
	)

	cityRepo := repository.NewCityRepository(store)
	weatherRepo := repository.NewWeatherRepository(client)

	return &App{
		Config:   cfg,
		Log:      log,
		Registry: reg,
		Store:    store,
		Location: locSvc,
		Cities: viewmodel.NewCityViewModel(
			usecase.NewGetAllCities(cityRepo),
			usecase.NewCreateCity(cityRepo),
			usecase.NewDeleteCity(cityRepo),
			log,
		),
		Weather:         viewmodel.NewWeatherViewModel(usecase.NewGetWeather(weatherRepo)),
		Search:          viewmodel.NewSearchViewModel(usecase.NewSearchCities(weatherRepo)),
		LocationWeather: viewmodel.NewLocationWeatherViewModel(usecase.NewGetWeatherByLocation(locSvc, weatherRepo)),
		CityName:        usecase.NewGetCityNameByLocation(weatherRepo),
		Overview:        usecase.NewGetWeatherOverview(cityRepo, weatherRepo, cfg.Overview.Concurrency, log),
	}, nil
}

func newProvider(loc config.LocationConfig, ow config.OpenWeatherConfig, log *slog.Logger) location.Provider {
	if loc.Provider == config.ProviderStatic {
		return location.NewStaticProvider(loc.Latitude, loc.Longitude)
	}
	return location.NewIPProvider(loc.IPLookupURL, ow.Timeout, log)
}

// Close releases storage.
func (a *App) Close() error {
	return a.Store.Close()
}
