package location

import (
	"context"
	"time"

	"github.com/neexbeast/climascope/internal/domain"
)

// StaticProvider always reports the same coordinates.
type StaticProvider struct {
	loc domain.Location
}

// NewStaticProvider returns a provider fixed at lat/lon.
func NewStaticProvider(lat, lon float64) *StaticProvider {
	return &StaticProvider{loc: domain.Location{Latitude: lat, Longitude: lon}}
}

func (p *StaticProvider) CurrentFix(ctx context.Context, _ Priority) (*domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loc := p.loc
	return &loc, nil
}

func (p *StaticProvider) RequestUpdates(req UpdateRequest, listener func(domain.Location)) (func(), error) {
	stop := make(chan struct{})
	done := make(chan struct{})
	go poll(effectiveInterval(req), stop, done, func() { listener(p.loc) })
	return subscription(stop, done), nil
}

func effectiveInterval(req UpdateRequest) time.Duration {
	if req.Interval < req.MinInterval {
		return req.MinInterval
	}
	if req.Interval <= 0 {
		return DefaultUpdateInterval
	}
	return req.Interval
}
