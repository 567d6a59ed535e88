// Package usecase holds one type per user-facing operation. Each exposes Execute and
// depends only on the interfaces in interfaces.go.
package usecase

import (
	"context"

	"github.com/neexbeast/climascope/internal/domain"
)

type GetAllCities struct {
	repo CityRepo
}

func NewGetAllCities(repo CityRepo) *GetAllCities {
	return &GetAllCities{repo: repo}
}

// Execute returns every saved city. Storage failures yield an empty list.
func (u *GetAllCities) Execute(ctx context.Context) []domain.City {
	return u.repo.GetAllCities(ctx)
}

type CreateCity struct {
	repo CityRepo
}

func NewCreateCity(repo CityRepo) *CreateCity {
	return &CreateCity{repo: repo}
}

// Execute saves a city named name and returns it with its assigned ID.
// The name is stored as given.
func (u *CreateCity) Execute(ctx context.Context, name string) (domain.City, bool) {
	city := domain.City{Name: name}
	if !u.repo.CreateCity(ctx, &city) {
		return domain.City{}, false
	}
	return city, true
}

type DeleteCity struct {
	repo CityRepo
}

func NewDeleteCity(repo CityRepo) *DeleteCity {
	return &DeleteCity{repo: repo}
}

// Execute removes city. It reports false when nothing was removed.
func (u *DeleteCity) Execute(ctx context.Context, city domain.City) bool {
	return u.repo.DeleteCity(ctx, city)
}
