package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/jsamuelsen/quote-keeper/internal/platform/config"
)

// backoff returns the pause before retry number attempt (1-based after the
// first try). It grows by Multiplier from InitialInterval, stops growing at
// MaxInterval and is spread by JitterFactor either way.
func backoff(rc config.RetryConfig, attempt int) time.Duration {
	d := float64(rc.InitialInterval) * math.Pow(rc.Multiplier, float64(attempt))

	if ceiling := float64(rc.MaxInterval); ceiling > 0 {
		d = math.Min(d, ceiling)
	}

	if rc.JitterFactor > 0 {
		d *= 1 + rc.JitterFactor*(2*rand.Float64()-1) //nolint:gosec // jitter only
	}

	return time.Duration(d)
}

// sleep waits d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// rewind restores req's body for another attempt. Bodies without GetBody
// cannot be sent twice.
func rewind(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}

	if req.GetBody == nil {
		return errBodyNotRewindable
	}

	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("rewinding request body: %w", err)
	}

	req.Body = body

	return nil
}

// retryable reports whether a transport error may clear up on another
// attempt: timeouts and connection failures do, caller cancellation does not.
func retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}

// discard empties at most 4KB of body so the connection can be reused.
func discard(body io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4<<10))

	return body.Close()
}
