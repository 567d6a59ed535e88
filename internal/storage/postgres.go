package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/climascope/internal/domain"
)

// Querier abstracts the subset of pgxpool.Pool used by PostgresBackend.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresBackend stores cities in PostgreSQL.
type PostgresBackend struct {
	q    Querier
	pool *pgxpool.Pool
}

// NewPostgresBackend constructs a PostgresBackend backed by the given pool.
func NewPostgresBackend(pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{q: pool, pool: pool}
}

// NewPostgresBackendWithQuerier constructs a PostgresBackend with a custom Querier (for tests).
func NewPostgresBackendWithQuerier(q Querier) *PostgresBackend {
	return &PostgresBackend{q: q}
}

// OpenPostgres connects to databaseURL and applies the embedded migrations.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresBackend, error) {
	pool, err := Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, pool, migrationsFS, postgresMigrationsDir); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return NewPostgresBackend(pool), nil
}

// Insert adds a city and returns its generated ID.
func (b *PostgresBackend) Insert(ctx context.Context, name string) (int64, error) {
	const q = `INSERT INTO city (name) VALUES ($1) RETURNING id`

	var id int64
	if err := b.q.QueryRow(ctx, q, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("inserting city %s: %w", name, err)
	}
	return id, nil
}

// List returns all cities ordered by ID.
func (b *PostgresBackend) List(ctx context.Context) ([]domain.City, error) {
	const q = `SELECT id, name FROM city ORDER BY id`

	rows, err := b.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying cities: %w", err)
	}
	defer rows.Close()

	cities := []domain.City{}
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning city row: %w", err)
		}
		cities = append(cities, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating city rows: %w", err)
	}

	return cities, nil
}

// Delete removes the city with id.
func (b *PostgresBackend) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := b.q.Exec(ctx, `DELETE FROM city WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting city %d: %w", id, err)
	}
	return tag.RowsAffected(), nil
}

// Ping verifies the pool connection. Backends built from a bare Querier always succeed.
func (b *PostgresBackend) Ping(ctx context.Context) error {
	if b.pool == nil {
		return nil
	}
	return b.pool.Ping(ctx)
}

func (b *PostgresBackend) Close() error {
	if b.pool != nil {
		b.pool.Close()
	}
	return nil
}
