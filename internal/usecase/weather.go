package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/climascope/internal/domain"
)

type GetWeather struct {
	repo WeatherRepo
}

func NewGetWeather(repo WeatherRepo) *GetWeather {
	return &GetWeather{repo: repo}
}

func (u *GetWeather) Execute(ctx context.Context, cityName string) (domain.Weather, error) {
	return u.repo.GetWeatherForCity(ctx, cityName)
}

// GetWeatherByLocation combines the device position, the weather there and a place name.
type GetWeatherByLocation struct {
	locator     Locator
	weather     WeatherRepo
	cityForSpot *GetCityNameByLocation
}

func NewGetWeatherByLocation(locator Locator, weather WeatherRepo) *GetWeatherByLocation {
	return &GetWeatherByLocation{
		locator:     locator,
		weather:     weather,
		cityForSpot: NewGetCityNameByLocation(weather),
	}
}

// Execute runs location, weather and name lookup in order. A location or weather failure
// stops the chain. The name lookup never does: an error there yields domain.FallbackCityName.
func (u *GetWeatherByLocation) Execute(ctx context.Context) (domain.LocatedWeather, error) {
	loc, err := u.locator.CurrentLocation(ctx)
	if err != nil {
		return domain.LocatedWeather{}, err
	}

	w, err := u.weather.GetWeatherByCoordinates(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return domain.LocatedWeather{}, err
	}

	name, err := u.cityForSpot.Execute(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		name = domain.FallbackCityName
	}

	return domain.LocatedWeather{Weather: w, Location: loc, CityName: name}, nil
}

type GetCityNameByLocation struct {
	repo WeatherRepo
}

func NewGetCityNameByLocation(repo WeatherRepo) *GetCityNameByLocation {
	return &GetCityNameByLocation{repo: repo}
}

func (u *GetCityNameByLocation) Execute(ctx context.Context, lat, lon float64) (string, error) {
	return u.repo.GetCityNameByCoordinates(ctx, lat, lon)
}

type SearchCities struct {
	repo WeatherRepo
}

func NewSearchCities(repo WeatherRepo) *SearchCities {
	return &SearchCities{repo: repo}
}

// Execute returns geocoding candidates for query. Queries shorter than
// domain.MinSearchQueryLen after trimming succeed with no results and no request.
func (u *SearchCities) Execute(ctx context.Context, query string) ([]domain.CitySearchResult, error) {
	if !domain.SearchQueryOK(query) {
		return []domain.CitySearchResult{}, nil
	}
	return u.repo.SearchCities(ctx, query)
}

// DefaultOverviewConcurrency bounds parallel weather requests in GetWeatherOverview.
const DefaultOverviewConcurrency = 4

// GetWeatherOverview fetches current weather for every saved city.
type GetWeatherOverview struct {
	cities      CityRepo
	weather     WeatherRepo
	concurrency int
	log         *slog.Logger
}

func NewGetWeatherOverview(cities CityRepo, weather WeatherRepo, concurrency int, log *slog.Logger) *GetWeatherOverview {
	if concurrency <= 0 {
		concurrency = DefaultOverviewConcurrency
	}
	if log == nil {
		log = slog.Default()
	}
	return &GetWeatherOverview{cities: cities, weather: weather, concurrency: concurrency, log: log}
}

// Execute returns one row per saved city, in store order. Per-city failures are reported
// on the row and do not affect the others.
func (u *GetWeatherOverview) Execute(ctx context.Context) []domain.CityWeather {
	cities := u.cities.GetAllCities(ctx)
	rows := make([]domain.CityWeather, len(cities))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)

	for i, city := range cities {
		rows[i].City = city
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					u.log.Error("overview fetch panicked", "city", city.Name, "recover", r)
					rows[i].Error = fmt.Sprintf("weather fetch panicked: %v", r)
				}
			}()
			w, fetchErr := u.weather.GetWeatherForCity(gCtx, city.Name)
			if fetchErr != nil {
				u.log.Warn("overview fetch failed", "city", city.Name, "err", fetchErr)
				rows[i].Error = fetchErr.Error()
				return nil
			}
			rows[i].Weather = &w
			return nil
		})
	}

	_ = g.Wait()
	return rows
}
