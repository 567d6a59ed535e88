package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/neexbeast/climascope/internal/domain"
)

// SQLiteBackend stores cities in a local SQLite file.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dbPath and applies the embedded migrations.
func OpenSQLite(ctx context.Context, dbPath string, log *slog.Logger) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", dbPath, err)
	}
	// One connection serializes writers and keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil && log != nil {
		log.Warn("could not set WAL mode", "path", dbPath, "err", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000;"); err != nil && log != nil {
		log.Warn("could not set busy timeout", "path", dbPath, "err", err)
	}

	if err := runSQLiteMigrations(ctx, db, migrationsFS, sqliteMigrationsDir); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

// runSQLiteMigrations is RunMigrations for database/sql.
func runSQLiteMigrations(ctx context.Context, db *sql.DB, fsys fs.FS, dir string) error {
	files, err := migrationFiles(fsys, dir)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	for _, f := range files {
		body, err := fs.ReadFile(fsys, path.Join(dir, f))
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", f, err)
		}
		version := strings.TrimSuffix(f, ".sql")

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}

		var applied int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version,
		).Scan(&applied); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("checking migration %s: %w", f, err)
		}
		if applied > 0 {
			_ = tx.Rollback()
			continue
		}

		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", f, err)
		}
	}

	return nil
}

// Insert adds a city and returns its generated ID.
func (b *SQLiteBackend) Insert(ctx context.Context, name string) (int64, error) {
	res, err := b.db.ExecContext(ctx, `INSERT INTO city (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("inserting city %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading id for city %s: %w", name, err)
	}
	return id, nil
}

// List returns all cities ordered by ID.
func (b *SQLiteBackend) List(ctx context.Context) ([]domain.City, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT id, name FROM city ORDER BY id`)
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
func (b *SQLiteBackend) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := b.db.ExecContext(ctx, `DELETE FROM city WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting city %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected for city %d: %w", id, err)
	}
	return n, nil
}

func (b *SQLiteBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
