package viewmodel

import (
	"context"

	"github.com/neexbeast/climascope/internal/domain"
	"github.com/neexbeast/climascope/internal/state"
)

type citySearcher interface {
	Execute(ctx context.Context, query string) ([]domain.CitySearchResult, error)
}

// SearchViewModel drives the city search box.
type SearchViewModel struct {
	search citySearcher
	store  *state.Store[[]domain.CitySearchResult]
}

func NewSearchViewModel(search citySearcher) *SearchViewModel {
	return &SearchViewModel{search: search, store: state.NewStore[[]domain.CitySearchResult]()}
}

func (vm *SearchViewModel) State() state.State[[]domain.CitySearchResult] {
	return vm.store.Snapshot()
}

func (vm *SearchViewModel) Watch(ctx context.Context) <-chan state.State[[]domain.CitySearchResult] {
	return vm.store.Watch(ctx)
}

// Search looks up query. Queries too short to search clear the results instead.
func (vm *SearchViewModel) Search(ctx context.Context, query string) state.State[[]domain.CitySearchResult] {
	if !domain.SearchQueryOK(query) {
		vm.Clear()
		return vm.store.Snapshot()
	}
	return vm.store.Run(ctx, func(ctx context.Context) ([]domain.CitySearchResult, error) {
		return vm.search.Execute(ctx, query)
	})
}

// Clear drops results and errors.
func (vm *SearchViewModel) Clear() {
	vm.store.Set(state.Idle[[]domain.CitySearchResult]())
}
