// Copyright 2025 The RouteKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package telemetry implements routekit.ObservabilityRecorder on
// OpenTelemetry: request spans, request metrics (Prometheus or stdout
// exporters), and structured access logs via log/slog.
//
// Metrics and traces are labeled with the matched route template, never
// the raw request path, so cardinality stays bounded by the number of
// registered routes.
//
// Example:
//
//	rec := telemetry.MustNew(
//	    telemetry.WithServiceName("orders-api"),
//	    telemetry.WithPrometheus(),
//	    telemetry.WithExcludedPaths("/health", "/metrics"),
//	)
//	r := routekit.MustNew(routekit.WithObservability(rec))
//	r.GET("/metrics", func(c *routekit.Context) {
//	    rec.PrometheusHandler().ServeHTTP(c.Writer(), c.Request)
//	})
package telemetry

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/routekit-dev/routekit"
)

// scopeName identifies the instrumentation scope for meters and tracers.
const scopeName = "github.com/routekit-dev/routekit/telemetry"

// Recorder implements routekit.ObservabilityRecorder.
type Recorder struct {
	cfg config

	tracer trace.Tracer
	meter  metric.Meter

	requestDuration metric.Float64Histogram
	requestCount    metric.Int64Counter

	// shutdown releases the owned providers, if any.
	shutdown []func(context.Context) error

	promHandler http.Handler
}

// requestState is the opaque per-request token passed through the
// observability lifecycle.
type requestState struct {
	start  time.Time
	span   trace.Span
	method string
	path   string
}

// New creates a Recorder. Without provider options, metrics are recorded
// against a Prometheus registry owned by the Recorder and traces use the
// globally registered tracer provider.
func New(opts ...Option) (*Recorder, error) {
	r := &Recorder{cfg: defaultConfig()}
	for _, opt := range opts {
		opt(&r.cfg)
	}

	if err := r.initProviders(); err != nil {
		return nil, fmt.Errorf("initializing telemetry providers: %w", err)
	}

	var err error
	r.requestDuration, err = r.meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}
	r.requestCount, err = r.meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("HTTP requests served"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return r, nil
}

// MustNew creates a Recorder and panics on configuration errors.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("telemetry.MustNew: %v", err))
	}
	return r
}

// OnRequestStart begins the span and returns the per-request state, or a
// nil state for excluded paths.
func (r *Recorder) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	if _, excluded := r.cfg.excludedPaths[req.URL.Path]; excluded {
		return ctx, nil
	}

	ctx, span := r.tracer.Start(ctx, req.Method+" "+req.URL.Path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)

	return ctx, &requestState{
		start:  time.Now(),
		span:   span,
		method: req.Method,
		path:   req.URL.Path,
	}
}

// WrapResponseWriter wraps the writer to capture status and size.
func (r *Recorder) WrapResponseWriter(w http.ResponseWriter, state any) http.ResponseWriter {
	if state == nil {
		return w
	}
	return &metaWriter{ResponseWriter: w}
}

// OnRequestEnd records metrics, finishes the span, and emits the access
// log line.
func (r *Recorder) OnRequestEnd(ctx context.Context, state any, writer http.ResponseWriter, routePattern string) {
	st, ok := state.(*requestState)
	if !ok {
		return
	}

	status := http.StatusOK
	var size int64
	if info, ok := writer.(routekit.ResponseInfo); ok {
		status = info.StatusCode()
		size = info.Size()
	}
	elapsed := time.Since(st.start)

	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", st.method),
		attribute.String("http.route", routePattern),
		attribute.Int("http.response.status_code", status),
	}
	r.requestDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
	r.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))

	st.span.SetAttributes(
		attribute.String("http.route", routePattern),
		attribute.Int("http.response.status_code", status),
	)
	if status >= http.StatusInternalServerError {
		st.span.SetStatus(codes.Error, http.StatusText(status))
	}
	st.span.End()

	if r.cfg.accessLog {
		r.cfg.logger.LogAttrs(ctx, slog.LevelInfo, "request completed",
			slog.String("method", st.method),
			slog.String("route", routePattern),
			slog.Int("status", status),
			slog.Int64("bytes", size),
			slog.Duration("duration", elapsed),
		)
	}
}

// BuildRequestLogger returns the request-scoped logger with method, path,
// and trace correlation attributes attached.
func (r *Recorder) BuildRequestLogger(ctx context.Context, req *http.Request, routePattern string) *slog.Logger {
	logger := r.cfg.logger.With(
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		logger = logger.With(slog.String("trace_id", sc.TraceID().String()))
	}
	return logger
}

// PrometheusHandler returns the scrape handler for the Recorder-owned
// Prometheus registry, or a 404 handler if another provider is in use.
func (r *Recorder) PrometheusHandler() http.Handler {
	if r.promHandler == nil {
		return http.NotFoundHandler()
	}
	return r.promHandler
}

// Shutdown flushes and stops the providers owned by the Recorder.
func (r *Recorder) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, fn := range r.shutdown {
		if err := fn(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// metaWriter captures response metadata for OnRequestEnd.
type metaWriter struct {
	http.ResponseWriter
	statusCode int
	size       int64
	written    bool
}

func (w *metaWriter) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *metaWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

// StatusCode returns the captured status code, defaulting to 200.
func (w *metaWriter) StatusCode() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

// Size returns the number of body bytes written.
func (w *metaWriter) Size() int64 { return w.size }

// Written reports whether headers or body were written.
func (w *metaWriter) Written() bool { return w.written }

// Flush implements http.Flusher for streaming responses.
func (w *metaWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack implements http.Hijacker so WebSocket upgrades work through the
// wrapped writer.
func (w *metaWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		w.written = true
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

var _ routekit.ResponseInfo = (*metaWriter)(nil)
var _ routekit.ObservabilityRecorder = (*Recorder)(nil)
