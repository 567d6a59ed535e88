// Package config loads climascope settings from defaults, an optional YAML file, a .env
// file and CLIMASCOPE_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/neexbeast/climascope/internal/location"
	"github.com/neexbeast/climascope/internal/openweather"
	"github.com/neexbeast/climascope/internal/storage"
)

const envPrefix = "CLIMASCOPE"

// Location provider names.
const (
	ProviderIP     = "ip"
	ProviderStatic = "static"
)

type Config struct {
	Log         LogConfig
	OpenWeather OpenWeatherConfig
	Storage     StorageConfig
	Location    LocationConfig
	Server      ServerConfig
	Overview    OverviewConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type OpenWeatherConfig struct {
	APIKey            string
	BaseURL           string
	IconBaseURL       string
	Units             string
	Language          string
	SearchLimit       int
	Timeout           time.Duration
	RequestsPerMinute int
}

type StorageConfig struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
	RedisURL    string
}

type LocationConfig struct {
	Provider          string
	IPLookupURL       string
	Latitude          float64
	Longitude         float64
	CoarseGranted     bool
	FineGranted       bool
	UpdateInterval    time.Duration
	MinUpdateInterval time.Duration
}

type ServerConfig struct {
	Port            string
	RateLimit       int
	ShutdownTimeout time.Duration
}

type OverviewConfig struct {
	Concurrency int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("openweather.api_key", "")
	v.SetDefault("openweather.base_url", openweather.DefaultBaseURL)
	v.SetDefault("openweather.icon_base_url", openweather.DefaultIconBaseURL)
	v.SetDefault("openweather.units", "metric")
	v.SetDefault("openweather.language", "en")
	v.SetDefault("openweather.search_limit", 5)
	v.SetDefault("openweather.timeout", 15*time.Second)
	v.SetDefault("openweather.requests_per_minute", 60)

	v.SetDefault("storage.driver", storage.DriverSQLite)
	v.SetDefault("storage.sqlite_path", "climascope.db")
	v.SetDefault("storage.database_url", "")
	v.SetDefault("storage.redis_url", "")

	v.SetDefault("location.provider", ProviderIP)
	v.SetDefault("location.ip_lookup_url", location.DefaultIPLookupURL)
	v.SetDefault("location.latitude", 0.0)
	v.SetDefault("location.longitude", 0.0)
	v.SetDefault("location.coarse_granted", false)
	v.SetDefault("location.fine_granted", false)
	v.SetDefault("location.update_interval", location.DefaultUpdateInterval)
	v.SetDefault("location.min_update_interval", location.MinUpdateInterval)

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.rate_limit", 60)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("overview.concurrency", 4)
}

// plainEnv keeps the conventional unprefixed variable names working.
var plainEnv = map[string]string{
	"openweather.api_key":  "OPENWEATHER_API_KEY",
	"storage.database_url": "DATABASE_URL",
	"storage.redis_url":    "REDIS_URL",
	"server.port":          "PORT",
}

// Load reads configuration. configFile may be empty. overrides (for example from CLI
// flags) win over every other source; empty values are skipped.
func Load(configFile string, overrides map[string]string) (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range plainEnv {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	for key, val := range overrides {
		if val != "" {
			v.Set(key, val)
		}
	}

	cfg := &Config{
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		OpenWeather: OpenWeatherConfig{
			APIKey:            v.GetString("openweather.api_key"),
			BaseURL:           v.GetString("openweather.base_url"),
			IconBaseURL:       v.GetString("openweather.icon_base_url"),
			Units:             v.GetString("openweather.units"),
			Language:          v.GetString("openweather.language"),
			SearchLimit:       v.GetInt("openweather.search_limit"),
			Timeout:           v.GetDuration("openweather.timeout"),
			RequestsPerMinute: v.GetInt("openweather.requests_per_minute"),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(v.GetString("storage.driver")),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			DatabaseURL: v.GetString("storage.database_url"),
			RedisURL:    v.GetString("storage.redis_url"),
		},
		Location: LocationConfig{
			Provider:          strings.ToLower(v.GetString("location.provider")),
			IPLookupURL:       v.GetString("location.ip_lookup_url"),
			Latitude:          v.GetFloat64("location.latitude"),
			Longitude:         v.GetFloat64("location.longitude"),
			CoarseGranted:     v.GetBool("location.coarse_granted"),
			FineGranted:       v.GetBool("location.fine_granted"),
			UpdateInterval:    v.GetDuration("location.update_interval"),
			MinUpdateInterval: v.GetDuration("location.min_update_interval"),
		},
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			RateLimit:       v.GetInt("server.rate_limit"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Overview: OverviewConfig{
			Concurrency: v.GetInt("overview.concurrency"),
		},
	}

	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.OpenWeather.APIKey) == "" {
		errs = append(errs, errors.New("OPENWEATHER_API_KEY is required"))
	}
	if c.OpenWeather.Timeout < time.Second || c.OpenWeather.Timeout > time.Minute {
		errs = append(errs, fmt.Errorf("openweather.timeout must be between 1s and 60s, got %s", c.OpenWeather.Timeout))
	}

	switch c.Storage.Driver {
	case storage.DriverSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path is required for the sqlite driver"))
		}
	case storage.DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case storage.DriverRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	switch c.Location.Provider {
	case ProviderIP, ProviderStatic:
	default:
		errs = append(errs, fmt.Errorf("unknown location provider %q", c.Location.Provider))
	}
	if c.Location.MinUpdateInterval < location.MinUpdateInterval {
		errs = append(errs, fmt.Errorf("location.min_update_interval must be at least %s", location.MinUpdateInterval))
	}
	if c.Location.UpdateInterval < c.Location.MinUpdateInterval {
		errs = append(errs, fmt.Errorf("location.update_interval %s is below the minimum %s",
			c.Location.UpdateInterval, c.Location.MinUpdateInterval))
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
