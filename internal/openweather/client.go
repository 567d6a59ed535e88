// Package openweather is the gateway to the OpenWeatherMap current-weather and geocoding APIs.
package openweather

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/neexbeast/climascope/internal/domain"
	"github.com/neexbeast/climascope/internal/metrics"
)

const (
	DefaultBaseURL     = "https://api.openweathermap.org"
	DefaultIconBaseURL = "https://openweathermap.org/img/wn/"
	DefaultTimeout     = 15 * time.Second
	DefaultSearchLimit = 5

	maxBodyBytes = 1 << 20
)

// Config is the fixed request configuration baked into every call.
type Config struct {
	APIKey            string
	BaseURL           string
	IconBaseURL       string
	Units             string
	Language          string
	SearchLimit       int
	Timeout           time.Duration
	RequestsPerMinute int
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.IconBaseURL == "" {
		c.IconBaseURL = DefaultIconBaseURL
	}
	if c.Units == "" {
		c.Units = "metric"
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = DefaultSearchLimit
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

// Client talks to OpenWeatherMap and maps its responses onto domain values.
type Client struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewClient constructs a Client. m may be nil.
func NewClient(cfg Config, log *slog.Logger, m *metrics.Metrics) *Client {
	cfg = cfg.withDefaults()
	if log == nil {
		log = slog.Default()
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
		burst = max(1, cfg.RequestsPerMinute/6)
	}

	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
		metrics: m,
	}
}

type apiErrorBody struct {
	Message string `json:"message"`
}

// doGet performs a GET against path and decodes the JSON body into dst.
// Failures are classified into the domain error taxonomy.
func (c *Client) doGet(ctx context.Context, endpoint, path string, params url.Values, dst any) (err error) {
	started := time.Now()
	defer func() {
		c.metrics.ObserveGateway(endpoint, started, err)
		if err != nil {
			c.log.Warn("openweather request failed", "endpoint", endpoint, "err", err)
		}
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.NetworkError{Op: endpoint, Err: err}
	}

	params.Set("appid", c.cfg.APIKey)
	rawURL := c.cfg.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", path, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &domain.NetworkError{Op: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &domain.NetworkError{Op: endpoint, Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		var apiBody apiErrorBody
		if json.Unmarshal(body, &apiBody) == nil && apiBody.Message != "" {
			msg = apiBody.Message
		}
		return &domain.APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return domain.ErrEmptyResponse
	}

	if err := json.Unmarshal(trimmed, dst); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", domain.ErrMalformedResponse, path, err)
	}

	return nil
}
