package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// Supported backend drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
	RedisURL    string
}

// Open connects the backend named by opts.Driver.
func Open(ctx context.Context, opts Options, log *slog.Logger) (Backend, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		return OpenSQLite(ctx, opts.SQLitePath, log)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.DatabaseURL)
	case DriverRedis:
		client, err := ConnectRedis(ctx, opts.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisBackend(client), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
