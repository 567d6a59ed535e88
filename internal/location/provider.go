// Package location answers "where is this host" for the weather-here features.
//
// A Provider produces raw fixes; Service layers permissions, the update cadence and
// cancellation on top of it.
package location

import (
	"context"
	"sync"
	"time"

	"github.com/neexbeast/climascope/internal/domain"
)

// Priority is the accuracy a caller asks for. Providers that cannot honour it fall back
// to their best effort.
type Priority int

const (
	PriorityBalanced Priority = iota
	PriorityHighAccuracy
)

func (p Priority) String() string {
	switch p {
	case PriorityHighAccuracy:
		return "high_accuracy"
	default:
		return "balanced"
	}
}

// UpdateRequest describes a periodic subscription.
type UpdateRequest struct {
	Priority    Priority
	Interval    time.Duration
	MinInterval time.Duration
}

// Provider is a source of location fixes.
type Provider interface {
	// CurrentFix returns one fix. A nil fix with a nil error means no fix was available.
	CurrentFix(ctx context.Context, priority Priority) (*domain.Location, error)
	// RequestUpdates calls listener with each new fix until the returned cancel func is
	// called. cancel blocks until listener can no longer be invoked.
	RequestUpdates(req UpdateRequest, listener func(domain.Location)) (cancel func(), err error)
}

// Permissions reports which location permissions the user granted.
type Permissions interface {
	CoarseGranted() bool
	FineGranted() bool
}

// StaticPermissions is a Permissions fixed at construction, typically from config.
type StaticPermissions struct {
	Coarse bool
	Fine   bool
}

func (p StaticPermissions) CoarseGranted() bool { return p.Coarse }
func (p StaticPermissions) FineGranted() bool   { return p.Fine }

// poll runs fetch immediately and then every interval until stop is closed. It closes done
// when it returns.
func poll(interval time.Duration, stop <-chan struct{}, done chan<- struct{}, fetch func()) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		default:
		}
		fetch()
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// subscription returns a cancel func that stops a poll loop and waits for it to exit.
func subscription(stop chan struct{}, done <-chan struct{}) func() {
	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
		<-done
	}
}
