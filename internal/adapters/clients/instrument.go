package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-keeper/internal/platform/logging"
)

const scope = "github.com/jsamuelsen/quote-keeper/internal/adapters/clients"

// instruments records traces and metrics for calls to one remote.
type instruments struct {
	remote   string
	tracer   trace.Tracer
	duration metric.Float64Histogram
	calls    metric.Int64Counter
}

func newInstruments(remote string) (*instruments, error) {
	meter := otel.Meter(scope)

	duration, err := meter.Float64Histogram("quotes.remote.call.duration",
		metric.WithDescription("Time spent on a call to the remote quote list, retries included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("registering call duration: %w", err)
	}

	calls, err := meter.Int64Counter("quotes.remote.calls",
		metric.WithDescription("Calls to the remote quote list by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("registering call counter: %w", err)
	}

	return &instruments{remote: remote, tracer: otel.Tracer(scope), duration: duration, calls: calls}, nil
}

// remoteCall is one logical request to the remote, spanning all its attempts.
type remoteCall struct {
	ctx    context.Context
	span   trace.Span
	method string
	start  time.Time
	logger *slog.Logger
	ins    *instruments
}

// begin opens the span for req and propagates the trace into its headers.
func (ins *instruments) begin(ctx context.Context, req *http.Request) *remoteCall {
	ctx, span := ins.tracer.Start(ctx, req.Method+" "+ins.remote,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
			attribute.String("peer.service", ins.remote),
		),
	)

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return &remoteCall{
		ctx:    ctx,
		span:   span,
		method: req.Method,
		start:  time.Now(),
		ins:    ins,
		logger: logging.FromContext(ctx).With(
			slog.String("remote", ins.remote),
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
		),
	}
}

// rejected records a call the circuit breaker refused. No span is opened.
func (ins *instruments) rejected(ctx context.Context, method string) {
	ins.count(ctx, method, 0, 0, "circuit_open")
}

// succeeded closes the call with the response the remote gave.
func (c *remoteCall) succeeded(resp *http.Response) {
	defer c.span.End()

	c.span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		c.span.SetStatus(codes.Error, resp.Status)
	}

	elapsed := time.Since(c.start)
	c.ins.count(c.ctx, c.method, resp.StatusCode, elapsed, fmt.Sprintf("%dxx", resp.StatusCode/100))

	c.logger.Debug("remote call completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", elapsed),
	)
}

// failed closes the call with the last attempt's error.
func (c *remoteCall) failed(err error) {
	defer c.span.End()

	c.span.RecordError(err)
	c.span.SetStatus(codes.Error, err.Error())

	elapsed := time.Since(c.start)
	c.ins.count(c.ctx, c.method, 0, elapsed, outcome(err))

	c.logger.Warn("remote call failed",
		slog.Duration("duration", elapsed),
		slog.Any("error", err),
	)
}

func (ins *instruments) count(ctx context.Context, method string, status int, elapsed time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", method),
		attribute.String("peer.service", ins.remote),
		attribute.String("result", result),
	}

	if status > 0 {
		attrs = append(attrs, attribute.Int("http.response.status_code", status))
	}

	set := metric.WithAttributes(attrs...)
	ins.calls.Add(ctx, 1, set)

	if elapsed > 0 {
		ins.duration.Record(ctx, elapsed.Seconds(), set)
	}
}

// outcome labels a failed call for metrics.
func outcome(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, errBodyNotRewindable):
		return "not_retryable"
	default:
		return "error"
	}
}
