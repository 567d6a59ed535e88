// Package storage persists the user's city list.
//
// Backends report errors explicitly; CityStore converts them into the boolean and
// fail-open contract the rest of the application depends on.
package storage

import (
	"context"
	"log/slog"
	"strings"

	"github.com/neexbeast/climascope/internal/domain"
	"github.com/neexbeast/climascope/internal/metrics"
)

// Backend is durable storage for city records. Implementations must return cities in
// ascending ID order and serialize concurrent writers.
type Backend interface {
	Insert(ctx context.Context, name string) (int64, error)
	List(ctx context.Context) ([]domain.City, error)
	// Delete removes the record with id and reports how many records were removed.
	Delete(ctx context.Context, id int64) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// CityStore is the city list as the application sees it.
type CityStore struct {
	backend Backend
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewCityStore wraps backend. m may be nil.
func NewCityStore(backend Backend, log *slog.Logger, m *metrics.Metrics) *CityStore {
	if log == nil {
		log = slog.Default()
	}
	return &CityStore{backend: backend, log: log, metrics: m}
}

// CreateCity inserts city and sets its ID. It returns false on any storage error.
func (s *CityStore) CreateCity(ctx context.Context, city *domain.City) bool {
	if city == nil || strings.TrimSpace(city.Name) == "" {
		s.metrics.ObserveStore("create", false)
		return false
	}

	s.log.Debug("creating city", "city", city.Name)
	id, err := s.backend.Insert(ctx, city.Name)
	if err != nil {
		s.log.Error("error creating city", "city", city.Name, "err", err)
		s.metrics.ObserveStore("create", false)
		return false
	}

	city.ID = id
	s.metrics.ObserveStore("create", true)
	return true
}

// GetAllCities returns every stored city in insertion order. Read errors yield an empty list.
func (s *CityStore) GetAllCities(ctx context.Context) []domain.City {
	cities, err := s.backend.List(ctx)
	if err != nil {
		s.log.Error("error getting cities", "err", err)
		s.metrics.ObserveStore("list", false)
		return []domain.City{}
	}
	s.metrics.ObserveStore("list", true)
	if cities == nil {
		return []domain.City{}
	}
	return cities
}

// DeleteCity removes the record matching city.ID. It returns true iff exactly one record was removed.
func (s *CityStore) DeleteCity(ctx context.Context, city domain.City) bool {
	if !city.Persisted() {
		s.metrics.ObserveStore("delete", false)
		return false
	}

	s.log.Debug("deleting city", "id", city.ID, "city", city.Name)
	n, err := s.backend.Delete(ctx, city.ID)
	if err != nil {
		s.log.Error("error deleting city", "id", city.ID, "err", err)
		s.metrics.ObserveStore("delete", false)
		return false
	}

	s.metrics.ObserveStore("delete", n == 1)
	return n == 1
}

// Ping checks that the backend is reachable.
func (s *CityStore) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close releases the backend.
func (s *CityStore) Close() error {
	return s.backend.Close()
}
