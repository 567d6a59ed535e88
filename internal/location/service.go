package location

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neexbeast/climascope/internal/domain"
	"github.com/neexbeast/climascope/internal/metrics"
)

const (
	DefaultUpdateInterval = 10 * time.Second
	MinUpdateInterval     = 5 * time.Second
)

// Options tunes the update feed. Zero values select the defaults.
type Options struct {
	Interval    time.Duration
	MinInterval time.Duration
}

// Service gates a Provider behind the user's permissions.
type Service struct {
	provider    Provider
	perms       Permissions
	interval    time.Duration
	minInterval time.Duration
	log         *slog.Logger
	metrics     *metrics.Metrics
}

// NewService builds a Service. The update interval is clamped to at least the minimum.
func NewService(provider Provider, perms Permissions, opts Options, log *slog.Logger, m *metrics.Metrics) *Service {
	if opts.MinInterval <= 0 {
		opts.MinInterval = MinUpdateInterval
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultUpdateInterval
	}
	if opts.Interval < opts.MinInterval {
		opts.Interval = opts.MinInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		provider:    provider,
		perms:       perms,
		interval:    opts.Interval,
		minInterval: opts.MinInterval,
		log:         log,
		metrics:     m,
	}
}

// HasPermission reports whether coarse or fine location access was granted.
func (s *Service) HasPermission() bool {
	return s.perms.CoarseGranted() || s.perms.FineGranted()
}

// CurrentLocation requests a single high-accuracy fix.
func (s *Service) CurrentLocation(ctx context.Context) (loc domain.Location, err error) {
	defer func() { s.metrics.ObserveLocation(err) }()

	if !s.HasPermission() {
		return domain.Location{}, domain.ErrPermissionDenied
	}

	fix, err := s.provider.CurrentFix(ctx, PriorityHighAccuracy)
	if err != nil {
		return domain.Location{}, fmt.Errorf("getting current location: %w", err)
	}
	if fix == nil {
		return domain.Location{}, domain.ErrLocationUnavailable
	}

	s.log.Debug("location fix", "lat", fix.Latitude, "lon", fix.Longitude)
	return *fix, nil
}

// Updates subscribes to periodic fixes. The channel holds only the latest undelivered fix
// and is closed after ctx is cancelled and the provider listener has been removed.
func (s *Service) Updates(ctx context.Context) (<-chan domain.Location, error) {
	if !s.HasPermission() {
		return nil, domain.ErrPermissionDenied
	}

	out := make(chan domain.Location, 1)
	listener := func(loc domain.Location) {
		select {
		case out <- loc:
			return
		default:
		}
		// Replace the stale fix with the newer one.
		select {
		case <-out:
		default:
		}
		select {
		case out <- loc:
		default:
		}
	}

	cancel, err := s.provider.RequestUpdates(UpdateRequest{
		Priority:    PriorityHighAccuracy,
		Interval:    s.interval,
		MinInterval: s.minInterval,
	}, listener)
	if err != nil {
		return nil, fmt.Errorf("requesting location updates: %w", err)
	}

	s.log.Debug("location updates started", "interval", s.interval)
	go func() {
		<-ctx.Done()
		cancel()
		close(out)
		s.log.Debug("location updates stopped")
	}()

	return out, nil
}
