package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-keeper/internal/platform/config"
)

const (
	defaultTimeout = 30 * time.Second

	// Pool sizes used when TransportConfig leaves them zero.
	fallbackMaxIdleConns        = 100
	fallbackMaxIdleConnsPerHost = 10
	fallbackIdleConnTimeout     = 90 * time.Second
)

// Config describes how to reach one remote quote list.
type Config struct {
	// BaseURL is prefixed to every request path.
	BaseURL string

	// ServiceName names the remote in logs, spans and metrics.
	ServiceName string

	// UserAgent is sent on every request when set.
	UserAgent string

	// Timeout bounds one attempt, not the retries around it.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// RateLimit paces every attempt, retries included. Zero disables it.
	RateLimit config.RateLimitConfig

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Client talks to the remote quote list. A call passes the circuit breaker
// once; each attempt inside it waits on the rate limiter.
type Client struct {
	http    *http.Client
	baseURL string
	cfg     *Config
	cb      *CircuitBreaker
	limiter *rate.Limiter
	ins     *instruments
}

// New builds a client from cfg, filling in timeout and attempt defaults.
func New(cfg *Config) (*Client, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("config is required")
	case cfg.ServiceName == "":
		return nil, errors.New("service name is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	cfg.Retry.MaxAttempts = max(cfg.Retry.MaxAttempts, 1)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ins, err := newInstruments(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	})
	cb.OnStateChange(func(from, to State) {
		logger.Warn("remote circuit changed",
			slog.String("remote", cfg.ServiceName),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout, Transport: newTransport(cfg.Transport)},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cfg:     cfg,
		cb:      cb,
		limiter: newLimiter(cfg.RateLimit),
		ins:     ins,
	}, nil
}

func newTransport(tc config.TransportConfig) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = orDefault(tc.MaxIdleConns, fallbackMaxIdleConns)
	t.MaxIdleConnsPerHost = orDefault(tc.MaxIdleConnsPerHost, fallbackMaxIdleConnsPerHost)
	t.IdleConnTimeout = orDefault(tc.IdleConnTimeout, fallbackIdleConnTimeout)

	return t
}

// newLimiter returns nil when limiting is disabled.
func newLimiter(rl config.RateLimitConfig) *rate.Limiter {
	if rl.RequestsPerSecond <= 0 {
		return nil
	}

	return rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), max(rl.Burst, 1))
}

func orDefault[T int | time.Duration](v, fallback T) T {
	if v > 0 {
		return v
	}

	return fallback
}

// Get requests path with the given query, which may be nil.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	target := c.url(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("building GET %s: %w", path, err)
	}

	return c.Do(ctx, req)
}

// Post sends a JSON body to path. Only bodies http.NewRequest can rewind
// (bytes.Reader, bytes.Buffer, strings.Reader) are retried.
func (c *Client) Post(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("building POST %s: %w", path, err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.Do(ctx, req)
}

// Do sends req, retrying transport errors and 5xx responses. Any other
// response, 4xx included, is returned for the caller to interpret. A call
// that exhausts its attempts wraps ErrMaxRetriesExceeded.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if !c.cb.Allow() {
		c.ins.rejected(ctx, req.Method)

		return nil, ErrCircuitOpen
	}

	c.setHeaders(ctx, req)

	call := c.ins.begin(ctx, req)

	resp, err := c.attempt(call, req)
	if err != nil {
		// Caller cancellation says nothing about the remote.
		if !errors.Is(err, context.Canceled) {
			c.cb.RecordFailure()
		}

		call.failed(err)

		return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
	}

	c.cb.RecordSuccess()
	call.succeeded(resp)

	return resp, nil
}

// attempt runs the retry loop for one call and returns the first response
// worth handing back.
func (c *Client) attempt(call *remoteCall, req *http.Request) (*http.Response, error) {
	var last error

	for n := range c.cfg.Retry.MaxAttempts {
		if n > 0 {
			if err := rewind(req); err != nil {
				return nil, errors.Join(last, err)
			}

			pause := backoff(c.cfg.Retry, n)
			call.logger.Debug("retrying remote call", slog.Int("attempt", n+1), slog.Duration("backoff", pause))

			if err := sleep(call.ctx, pause); err != nil {
				return nil, errors.Join(last, err)
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(call.ctx); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
		}

		resp, err := c.http.Do(req.WithContext(call.ctx))

		switch {
		case err != nil:
			call.logger.Debug("remote attempt failed", slog.Int("attempt", n+1), slog.Any("error", err))

			if !retryable(err) {
				return nil, err
			}

			last = err

		case resp.StatusCode >= http.StatusInternalServerError:
			call.logger.Debug("remote attempt got server error", slog.Int("attempt", n+1), slog.Int("status", resp.StatusCode))

			if cerr := discard(resp.Body); cerr != nil {
				call.logger.Debug("closing discarded body", slog.Any("error", cerr))
			}

			last = &StatusError{Code: resp.StatusCode}

		default:
			return resp, nil
		}
	}

	return nil, last
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}

	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}

	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
}

// url joins path onto the base URL with exactly one slash.
func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// CircuitState returns the breaker's current state.
func (c *Client) CircuitState() State { return c.cb.State() }

// Circuit returns a snapshot of the breaker.
func (c *Client) Circuit() Snapshot { return c.cb.Snapshot() }

// ServiceName returns the configured remote name.
func (c *Client) ServiceName() string { return c.cfg.ServiceName }
