package openweather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/neexbeast/climascope/internal/domain"
)

const weatherPath = "/data/2.5/weather"

type owmResponse struct {
	Coord struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64  `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  int      `json:"humidity"`
		Pressure  int      `json:"pressure"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
}

// WeatherForCity fetches current conditions for the named city.
func (c *Client) WeatherForCity(ctx context.Context, name string) (domain.Weather, error) {
	params := url.Values{}
	params.Set("q", name)

	w, err := c.fetchWeather(ctx, params)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("openweather fetch for %s: %w", name, err)
	}
	return w, nil
}

// WeatherByCoordinates fetches current conditions at lat/lon.
func (c *Client) WeatherByCoordinates(ctx context.Context, lat, lon float64) (domain.Weather, error) {
	params := url.Values{}
	params.Set("lat", formatCoord(lat))
	params.Set("lon", formatCoord(lon))

	w, err := c.fetchWeather(ctx, params)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("openweather fetch for %s,%s: %w", formatCoord(lat), formatCoord(lon), err)
	}
	return w, nil
}

func (c *Client) fetchWeather(ctx context.Context, params url.Values) (domain.Weather, error) {
	params.Set("units", c.cfg.Units)
	params.Set("lang", c.cfg.Language)

	var raw owmResponse
	if err := c.doGet(ctx, "weather", weatherPath, params, &raw); err != nil {
		return domain.Weather{}, err
	}
	return c.toWeather(raw)
}

// toWeather maps the first condition entry plus the main metrics block.
func (c *Client) toWeather(raw owmResponse) (domain.Weather, error) {
	if len(raw.Weather) == 0 {
		return domain.Weather{}, fmt.Errorf("no weather conditions: %w", domain.ErrEmptyResponse)
	}
	first := raw.Weather[0]

	feelsLike := raw.Main.Temp
	if raw.Main.FeelsLike != nil {
		feelsLike = *raw.Main.FeelsLike
	}

	windSpeed := 0.0
	if raw.Wind != nil && raw.Wind.Speed != nil {
		windSpeed = *raw.Wind.Speed
	}

	return domain.Weather{
		Description: first.Description,
		Temperature: raw.Main.Temp,
		FeelsLike:   feelsLike,
		Humidity:    raw.Main.Humidity,
		Pressure:    raw.Main.Pressure,
		WindSpeed:   windSpeed,
		IconURL:     c.cfg.IconBaseURL + first.Icon + ".png",
	}, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
