package clients

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-keeper/internal/platform/config"
)

func defaultConfig() *Config {
	return &Config{
		ServiceName: "quote-service",
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
			JitterFactor:    0.25,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 2,
		},
	}
}

func newTestClient(t *testing.T, cfg *Config) *Client {
	t.Helper()

	client, err := New(cfg)
	require.NoError(t, err)

	return client
}

func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()
	if err := resp.Body.Close(); err != nil {
		t.Errorf("failed to close response body: %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{"nil config", nil, "config is required"},
		{"missing service name", &Config{}, "service name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	cfg := defaultConfig()
	cfg.BaseURL = "https://api.example.com/"
	cfg.Timeout = 0
	cfg.Retry.MaxAttempts = 0

	client := newTestClient(t, cfg)

	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.Equal(t, defaultTimeout, client.http.Timeout)
	assert.Equal(t, 1, client.cfg.Retry.MaxAttempts)
	assert.Nil(t, client.limiter, "zero rate disables limiting")
	assert.Equal(t, "quote-service", client.ServiceName())
}

func TestNew_Transport(t *testing.T) {
	cfg := defaultConfig()
	cfg.Transport = config.TransportConfig{MaxIdleConns: 7, MaxIdleConnsPerHost: 3, IdleConnTimeout: 5 * time.Second}

	client := newTestClient(t, cfg)

	tr, ok := client.http.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 7, tr.MaxIdleConns)
	assert.Equal(t, 3, tr.MaxIdleConnsPerHost)
	assert.Equal(t, 5*time.Second, tr.IdleConnTimeout)
}

func TestClient_HeaderPropagation(t *testing.T) {
	var got http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL
	cfg.UserAgent = "quote-keeper/test"

	client := newTestClient(t, cfg)

	ctx := middleware.ContextWithRequestID(context.Background(), "req-123")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-456")

	resp, err := client.Get(ctx, "/posts", nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, "req-123", got.Get(middleware.HeaderRequestID))
	assert.Equal(t, "corr-456", got.Get(middleware.HeaderCorrelationID))
	assert.Equal(t, "quote-keeper/test", got.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestClient_GetWithQuery(t *testing.T) {
	var gotQuery url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL

	client := newTestClient(t, cfg)

	resp, err := client.Get(context.Background(), "/posts", url.Values{"_limit": {"10"}})
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, "10", gotQuery.Get("_limit"))
}

func TestClient_RetryOnServerError(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL

	client := newTestClient(t, cfg)

	resp, err := client.Get(context.Background(), "/posts", nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL

	client := newTestClient(t, cfg)

	resp, err := client.Get(context.Background(), "/posts", nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_MaxRetriesExceeded(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL

	client := newTestClient(t, cfg)

	_, err := client.Get(context.Background(), "/posts", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClient_PostRewindsBodyOnRetry(t *testing.T) {
	var (
		attempts atomic.Int32
		bodies   = make(chan string, 3)
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies <- string(body)

		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL

	client := newTestClient(t, cfg)

	resp, err := client.Post(context.Background(), "/posts", strings.NewReader(`{"title":"hi"}`))
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, bodies, 2)
	assert.JSONEq(t, `{"title":"hi"}`, <-bodies)
	assert.JSONEq(t, `{"title":"hi"}`, <-bodies, "retried attempt sends the full body again")
}

func TestClient_PostWithoutRewindDoesNotRetry(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL

	client := newTestClient(t, cfg)

	// io.MultiReader hides the concrete type, so GetBody stays nil.
	_, err := client.Post(context.Background(), "/posts", io.MultiReader(strings.NewReader("{}")))
	require.Error(t, err)
	require.ErrorIs(t, err, errBodyNotRewindable)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_RateLimitThrottlesAttempts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 20, Burst: 1}

	client := newTestClient(t, cfg)
	require.NotNil(t, client.limiter)

	start := time.Now()
	for range 3 {
		resp, err := client.Get(context.Background(), "/posts", nil)
		require.NoError(t, err)
		closeBody(t, resp)
	}

	// Burst 1 at 20/s: the 2nd and 3rd requests each wait about 50ms.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestClient_RateLimitHonorsContext(t *testing.T) {
	cfg := defaultConfig()
	cfg.BaseURL = "http://127.0.0.1:1"
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}

	client := newTestClient(t, cfg)
	require.True(t, client.limiter.Allow(), "consume the only token")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, "/posts", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}

func TestClient_CircuitBreakerIntegration(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL
	cfg.Retry.MaxAttempts = 1
	cfg.Circuit.MaxFailures = 2

	client := newTestClient(t, cfg)

	_, err := client.Get(context.Background(), "/posts", nil)
	require.Error(t, err)
	assert.Equal(t, StateClosed, client.CircuitState())

	_, err = client.Get(context.Background(), "/posts", nil)
	require.Error(t, err)
	assert.Equal(t, StateOpen, client.CircuitState())
	assert.Equal(t, StateOpen, client.Circuit().State)

	before := calls.Load()

	_, err = client.Get(context.Background(), "/posts", nil)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, calls.Load(), "open circuit never reaches the server")
}

func TestClient_CanceledContextDoesNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL
	cfg.Circuit.MaxFailures = 1

	client := newTestClient(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, "/posts", nil)
	require.Error(t, err)
	assert.Equal(t, StateClosed, client.CircuitState())
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL
	cfg.Timeout = 50 * time.Millisecond
	cfg.Retry.MaxAttempts = 1

	client := newTestClient(t, cfg)

	_, err := client.Get(context.Background(), "/posts", nil)
	require.Error(t, err)
}

func TestClient_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL

	client := newTestClient(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, "/posts", nil)
	require.Error(t, err)
}

func TestClient_URL(t *testing.T) {
	for _, base := range []string{"https://jsonplaceholder.typicode.com", "https://jsonplaceholder.typicode.com/"} {
		cfg := defaultConfig()
		cfg.BaseURL = base

		client := newTestClient(t, cfg)

		assert.Equal(t, "https://jsonplaceholder.typicode.com/posts", client.url("/posts"))
		assert.Equal(t, "https://jsonplaceholder.typicode.com/posts", client.url("posts"))
		assert.Equal(t, "https://jsonplaceholder.typicode.com/posts/7", client.url("//posts/7"))
	}
}

func TestBackoff(t *testing.T) {
	rc := config.RetryConfig{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.25,
	}

	assert.InDelta(t, 100*time.Millisecond, backoff(rc, 0), float64(25*time.Millisecond))
	assert.InDelta(t, 200*time.Millisecond, backoff(rc, 1), float64(50*time.Millisecond))
	assert.InDelta(t, 400*time.Millisecond, backoff(rc, 2), float64(100*time.Millisecond))
	assert.LessOrEqual(t, backoff(rc, 10), rc.MaxInterval+rc.MaxInterval/4)

	rc.JitterFactor = 0
	assert.Equal(t, 800*time.Millisecond, backoff(rc, 3), "no jitter is exact")
	assert.Equal(t, time.Second, backoff(rc, 8), "capped at the max interval")

	rc.MaxInterval = 0
	assert.Equal(t, 1600*time.Millisecond, backoff(rc, 4), "zero max interval means no cap")
}

func TestSleep_HonorsContext(t *testing.T) {
	assert.NoError(t, sleep(t.Context(), time.Millisecond))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
}

func TestRewind(t *testing.T) {
	get, err := http.NewRequest(http.MethodGet, "http://remote/posts", http.NoBody)
	require.NoError(t, err)
	assert.NoError(t, rewind(get))

	post, err := http.NewRequest(http.MethodPost, "http://remote/posts", strings.NewReader(`{"title":"Carpe diem."}`))
	require.NoError(t, err)

	_, err = io.ReadAll(post.Body)
	require.NoError(t, err)
	require.NoError(t, rewind(post))

	body, err := io.ReadAll(post.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Carpe diem."}`, string(body))

	post.GetBody = nil
	assert.ErrorIs(t, rewind(post), errBodyNotRewindable)
}

type testNetError struct {
	timeout bool
}

func (e testNetError) Error() string   { return "test net error" }
func (e testNetError) Timeout() bool   { return e.timeout }
func (e testNetError) Temporary() bool { return true }

func TestRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline exceeded", context.DeadlineExceeded, false},
		{"net error with timeout", testNetError{timeout: true}, true},
		{"net error without timeout", testNetError{timeout: false}, false},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, retryable(tt.err))
		})
	}
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "context_canceled", outcome(context.Canceled))
	assert.Equal(t, "timeout", outcome(context.DeadlineExceeded))
	assert.Equal(t, "not_retryable", outcome(errBodyNotRewindable))
	assert.Equal(t, "error", outcome(&StatusError{Code: 500}))
}
