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

package routekit

import (
	"context"
	"io"
	"log/slog"
	"net/http"
)

// noopLogger is a singleton no-op logger used when no observability is
// configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger. Observability recorder
// implementations may return it from BuildRequestLogger when logging is
// disabled.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// ObservabilityRecorder provides unified observability lifecycle hooks for
// HTTP requests: metrics, distributed tracing, and access logging behind
// one interface. The telemetry subpackage provides the OpenTelemetry
// implementation.
//
// Lifecycle:
//  1. Router calls OnRequestStart(ctx, req) -> (enrichedCtx, state). The
//     enriched context is always attached to the request; a nil state
//     excludes the request from the rest of the lifecycle.
//  2. Router wraps the ResponseWriter via WrapResponseWriter when state
//     is non-nil.
//  3. After handling, Router calls OnRequestEnd with the matched route
//     template (or a "_not_found" / "_unmatched" sentinel) when state is
//     non-nil. Implementations should label metrics and traces with the
//     route template, never the raw path, to bound cardinality.
//
// All methods must be safe for concurrent use.
type ObservabilityRecorder interface {
	// OnRequestStart is called before routing begins. Return a nil state
	// to exclude the request from wrapping and OnRequestEnd; the
	// enriched context is used either way.
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)

	// WrapResponseWriter wraps the writer to capture response metadata.
	// Must return w unchanged when state is nil. The wrapped writer
	// should implement ResponseInfo.
	WrapResponseWriter(w http.ResponseWriter, state any) http.ResponseWriter

	// OnRequestEnd is called after request handling completes, only when
	// state is non-nil.
	OnRequestEnd(ctx context.Context, state any, writer http.ResponseWriter, routePattern string)

	// BuildRequestLogger returns the request-scoped logger exposed via
	// Context.Logger.
	BuildRequestLogger(ctx context.Context, req *http.Request, routePattern string) *slog.Logger
}

// ResponseInfo is implemented by response writers that track response
// metadata, letting OnRequestEnd extract status and size.
type ResponseInfo interface {
	StatusCode() int
	Size() int64
	Written() bool
}

// Route-pattern sentinels reported to observability recorders when no
// route matched.
const (
	// routePatternNotFound labels requests resolved as 404.
	routePatternNotFound = "_not_found"

	// routePatternMethodNotAllowed labels requests resolved as 405.
	routePatternMethodNotAllowed = "_method_not_allowed"
)
