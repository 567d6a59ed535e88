// Package viewmodel turns use case results into per-screen state.State values.
package viewmodel

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/neexbeast/climascope/internal/domain"
	"github.com/neexbeast/climascope/internal/state"
)

var (
	ErrCreateCity = errors.New("could not save the city")
	ErrDeleteCity = errors.New("could not delete the city")
)

type cityLister interface {
	Execute(ctx context.Context) []domain.City
}

type cityCreator interface {
	Execute(ctx context.Context, name string) (domain.City, bool)
}

type cityDeleter interface {
	Execute(ctx context.Context, city domain.City) bool
}

// CityViewModel manages the saved-city list and the selected city.
type CityViewModel struct {
	getAll cityLister
	create cityCreator
	del    cityDeleter
	store  *state.Store[[]domain.City]
	log    *slog.Logger

	mu      sync.Mutex
	current *domain.City
}

func NewCityViewModel(getAll cityLister, create cityCreator, del cityDeleter, log *slog.Logger) *CityViewModel {
	if log == nil {
		log = slog.Default()
	}
	return &CityViewModel{
		getAll: getAll,
		create: create,
		del:    del,
		store:  state.NewStore[[]domain.City](),
		log:    log,
	}
}

func (vm *CityViewModel) State() state.State[[]domain.City] {
	return vm.store.Snapshot()
}

func (vm *CityViewModel) Watch(ctx context.Context) <-chan state.State[[]domain.City] {
	return vm.store.Watch(ctx)
}

// Load refreshes the city list.
func (vm *CityViewModel) Load(ctx context.Context) state.State[[]domain.City] {
	return vm.store.Run(ctx, func(ctx context.Context) ([]domain.City, error) {
		return vm.getAll.Execute(ctx), nil
	})
}

// Create saves a city named name (trimmed) and reloads the list. A blank name is ignored
// and yields a zero City.
func (vm *CityViewModel) Create(ctx context.Context, name string) (domain.City, state.State[[]domain.City]) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.City{}, vm.store.Snapshot()
	}

	var created domain.City
	st := vm.store.Run(ctx, func(ctx context.Context) ([]domain.City, error) {
		city, ok := vm.create.Execute(ctx, name)
		if !ok {
			return nil, ErrCreateCity
		}
		created = city
		vm.log.Info("city created", "id", city.ID, "city", city.Name)
		return vm.getAll.Execute(ctx), nil
	})
	return created, st
}

// Delete removes city and reloads the list. Deleting the selected city clears the selection.
func (vm *CityViewModel) Delete(ctx context.Context, city domain.City) state.State[[]domain.City] {
	return vm.store.Run(ctx, func(ctx context.Context) ([]domain.City, error) {
		if !vm.del.Execute(ctx, city) {
			return nil, ErrDeleteCity
		}
		vm.mu.Lock()
		if vm.current != nil && vm.current.ID == city.ID {
			vm.current = nil
		}
		vm.mu.Unlock()
		vm.log.Info("city deleted", "id", city.ID, "city", city.Name)
		return vm.getAll.Execute(ctx), nil
	})
}

// SetCurrent selects city.
func (vm *CityViewModel) SetCurrent(city domain.City) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.current = &city
}

// SetCurrentByID selects the saved city with id. It reports false if no such city exists.
func (vm *CityViewModel) SetCurrentByID(ctx context.Context, id int64) (domain.City, bool) {
	for _, c := range vm.getAll.Execute(ctx) {
		if c.ID == id {
			vm.SetCurrent(c)
			return c, true
		}
	}
	return domain.City{}, false
}

// Current returns the selected city, if any.
func (vm *CityViewModel) Current() (domain.City, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.current == nil {
		return domain.City{}, false
	}
	return *vm.current, true
}

func (vm *CityViewModel) ClearError() {
	vm.store.ClearError()
}
