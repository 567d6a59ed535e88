package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/neexbeast/climascope/internal/domain"
)

// DefaultIPLookupURL is a free IP geolocation endpoint that needs no key.
const DefaultIPLookupURL = "http://ip-api.com/json"

// IPProvider locates the host from its public IP address. Accuracy is city-level at best,
// so every priority gets the same answer.
type IPProvider struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// NewIPProvider creates an IPProvider querying url (DefaultIPLookupURL when empty).
func NewIPProvider(url string, timeout time.Duration, log *slog.Logger) *IPProvider {
	if url == "" {
		url = DefaultIPLookupURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &IPProvider{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

func (p *IPProvider) CurrentFix(ctx context.Context, _ Priority) (*domain.Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building ip lookup request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, &domain.NetworkError{Op: "ip lookup", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, &domain.NetworkError{Op: "ip lookup", Err: err}
	}

	var result ipLookupResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decoding ip lookup: %v", domain.ErrMalformedResponse, err)
	}

	if result.Status != "success" {
		p.log.Warn("ip lookup returned no position", "status", result.Status, "message", result.Message)
		return nil, nil
	}

	return &domain.Location{Latitude: result.Lat, Longitude: result.Lon}, nil
}

// RequestUpdates polls the lookup endpoint. Failed or empty lookups are logged and skipped.
func (p *IPProvider) RequestUpdates(req UpdateRequest, listener func(domain.Location)) (func(), error) {
	stop := make(chan struct{})
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())

	go poll(effectiveInterval(req), stop, done, func() {
		loc, err := p.CurrentFix(ctx, req.Priority)
		if err != nil {
			if ctx.Err() == nil {
				p.log.Warn("location update failed", "err", err)
			}
			return
		}
		if loc != nil {
			listener(*loc)
		}
	})

	stopPolling := subscription(stop, done)
	return func() {
		cancel()
		stopPolling()
	}, nil
}
