package viewmodel

import (
	"context"
	"strings"
	"sync"

	"github.com/neexbeast/climascope/internal/domain"
	"github.com/neexbeast/climascope/internal/state"
)

type weatherGetter interface {
	Execute(ctx context.Context, cityName string) (domain.Weather, error)
}

// WeatherViewModel shows current weather for one city at a time.
type WeatherViewModel struct {
	getWeather weatherGetter
	store      *state.Store[domain.Weather]

	mu       sync.Mutex
	cityName string
}

func NewWeatherViewModel(getWeather weatherGetter) *WeatherViewModel {
	return &WeatherViewModel{getWeather: getWeather, store: state.NewStore[domain.Weather]()}
}

func (vm *WeatherViewModel) State() state.State[domain.Weather] {
	return vm.store.Snapshot()
}

func (vm *WeatherViewModel) Watch(ctx context.Context) <-chan state.State[domain.Weather] {
	return vm.store.Watch(ctx)
}

// CityName is the city of the last load, or "" if none.
func (vm *WeatherViewModel) CityName() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.cityName
}

// LoadForCity fetches weather for cityName. A blank name is ignored.
func (vm *WeatherViewModel) LoadForCity(ctx context.Context, cityName string) state.State[domain.Weather] {
	if strings.TrimSpace(cityName) == "" {
		return vm.store.Snapshot()
	}

	vm.mu.Lock()
	vm.cityName = cityName
	vm.mu.Unlock()

	return vm.store.Run(ctx, func(ctx context.Context) (domain.Weather, error) {
		return vm.getWeather.Execute(ctx, cityName)
	})
}

// Refresh reloads the last city. Without one it does nothing.
func (vm *WeatherViewModel) Refresh(ctx context.Context) state.State[domain.Weather] {
	return vm.LoadForCity(ctx, vm.CityName())
}

// Clear forgets the city and resets to idle.
func (vm *WeatherViewModel) Clear() {
	vm.mu.Lock()
	vm.cityName = ""
	vm.mu.Unlock()
	vm.store.Set(state.Idle[domain.Weather]())
}

func (vm *WeatherViewModel) ClearError() {
	vm.store.ClearError()
}
