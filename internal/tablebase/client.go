// Package tablebase queries the Syzygy endgame tablebase web API.
package tablebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/discochess/syzygymoves/internal/stats"
)

// DefaultEndpoint is the public Syzygy API.
const DefaultEndpoint = "https://syzygy-tables.info/api/v2"

// DefaultResponseHeaderTimeout is the default timeout for receiving response headers.
const DefaultResponseHeaderTimeout = 30 * time.Second

// maxBodySize bounds how much of a response is read.
const maxBodySize = 1 << 20

// Sentinel errors for well-defined failures. Requests are never retried.
var (
	// ErrBadRequest indicates the API rejected the position (HTTP 400).
	ErrBadRequest = errors.New("tablebase: bad request")

	// ErrRateLimited indicates the API is throttling requests (HTTP 429).
	ErrRateLimited = errors.New("tablebase: rate limited")

	// ErrUnavailable indicates a transport failure or a server error (HTTP 5xx).
	ErrUnavailable = errors.New("tablebase: unavailable")

	// ErrUnexpectedStatus indicates any other non-200 response.
	ErrUnexpectedStatus = errors.New("tablebase: unexpected status")
)

// Client queries the tablebase API.
// A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
	stats    stats.Collector
	logger   *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint sets the API URL. Default is DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

// WithRateLimit limits requests to r per second with the given burst.
// Callers block until a request is allowed or their context ends.
func WithRateLimit(r float64, burst int) Option {
	return func(c *Client) {
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithStats sets the stats collector.
func WithStats(s stats.Collector) Option {
	return func(c *Client) {
		c.stats = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Client with sensible defaults.
func New(opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
			},
		},
		stats:  stats.NewNoop(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the API URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Probe asks the API about the position fen.
func (c *Client) Probe(ctx context.Context, fen string) (*Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	q := u.Query()
	q.Set("fen", fen)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.stats.IncCounter(stats.MetricRemoteRequests, 1)
	start := time.Now()
	result, err := c.do(req)
	elapsed := time.Since(start)
	c.stats.ObserveHistogram(stats.MetricRemoteLatency, elapsed.Seconds())

	if err != nil {
		c.stats.IncCounter(stats.MetricRemoteErrors, 1)
		c.logger.Debug("probe failed", zap.String("fen", fen), zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, err
	}
	c.logger.Debug("probe",
		zap.String("fen", fen),
		zap.Int("moves", len(result.Moves)),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

// Moves returns the UCI moves for fen, best first.
func (c *Client) Moves(ctx context.Context, fen string) ([]string, error) {
	result, err := c.Probe(ctx, fen)
	if err != nil {
		return nil, err
	}
	return result.Moves.UCI(), nil
}

func (c *Client) do(req *http.Request) (*Result, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, bytesSnippet(body))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &result, nil
}

// bytesSnippet returns the start of a response body for error messages.
func bytesSnippet(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
