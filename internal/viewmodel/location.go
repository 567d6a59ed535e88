package viewmodel

import (
	"context"

	"github.com/neexbeast/climascope/internal/domain"
	"github.com/neexbeast/climascope/internal/state"
)

type locatedWeatherGetter interface {
	Execute(ctx context.Context) (domain.LocatedWeather, error)
}

// LocationWeatherViewModel shows the weather where the device is.
type LocationWeatherViewModel struct {
	get   locatedWeatherGetter
	store *state.Store[domain.LocatedWeather]
}

func NewLocationWeatherViewModel(get locatedWeatherGetter) *LocationWeatherViewModel {
	return &LocationWeatherViewModel{get: get, store: state.NewStore[domain.LocatedWeather]()}
}

func (vm *LocationWeatherViewModel) State() state.State[domain.LocatedWeather] {
	return vm.store.Snapshot()
}

func (vm *LocationWeatherViewModel) Watch(ctx context.Context) <-chan state.State[domain.LocatedWeather] {
	return vm.store.Watch(ctx)
}

func (vm *LocationWeatherViewModel) Load(ctx context.Context) state.State[domain.LocatedWeather] {
	return vm.store.Run(ctx, vm.get.Execute)
}

func (vm *LocationWeatherViewModel) ClearError() {
	vm.store.ClearError()
}
