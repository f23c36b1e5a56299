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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

// maxInlineParams is the number of route parameters stored in fixed
// arrays before falling back to a map. Routes rarely carry more than a
// handful of parameters, so the common case allocates nothing.
const maxInlineParams = 8

// Context carries one request through the pipeline: the request view, the
// response view, the bound route parameters, a free-form attribute bag,
// and the executor's control state.
//
// A Context is pooled and reused across requests; do not retain it past
// the end of a handler.
type Context struct {
	// Request is the incoming HTTP request.
	Request *http.Request

	writer responseWriter

	// Pipeline state, owned by the executor.
	handlers []HandlerFunc
	index    int
	proceed  bool
	aborted  bool
	err      error

	// Parameter storage: fixed arrays with a map overflow.
	paramCount  int
	paramKeys   [maxInlineParams]string
	paramValues [maxInlineParams]string
	paramExtra  map[string]string

	// routePath is the pathname used for matching. Mount delegation
	// rewrites it; Request.URL.Path stays untouched.
	routePath string

	// routePattern is the matched route template, for introspection and
	// observability labels.
	routePattern string

	router *Router
	logger *slog.Logger

	// store is the per-request free-form attribute bag, allocated lazily.
	store map[string]any
}

// HandlerFunc is one pipeline stage. A handler signals how the pipeline
// proceeds:
//
//   - call c.Next() to pass control to the next stage;
//   - write a response (and do not call Next) to short-circuit the chain;
//   - call c.Error(err) to abort the pipeline and escalate to the error
//     handlers;
//   - panic, which is recovered and treated exactly like c.Error.
//
// A handler that returns without doing any of the above stops the
// pipeline; the router then synthesizes an empty 200.
type HandlerFunc func(*Context)

// ErrorHandlerFunc handles an escalated pipeline error. It may write a
// response (stopping escalation), call c.Error with a replacement error
// for the next error handler, or return without responding to fall
// through.
type ErrorHandlerFunc func(*Context, error)

// ParamHandlerFunc observes a bound route parameter before the matched
// route's own chain runs. Like any pipeline stage it must call c.Next()
// for the pipeline to continue.
type ParamHandlerFunc func(c *Context, value string)

// reset prepares a pooled context for a new request.
func (c *Context) reset(w http.ResponseWriter, req *http.Request, r *Router) {
	c.Request = req
	c.writer.reset(w)
	c.handlers = nil
	c.index = 0
	c.proceed = false
	c.aborted = false
	c.err = nil
	c.paramCount = 0
	c.paramExtra = nil
	c.routePath = req.URL.Path
	c.routePattern = ""
	c.router = r
	c.logger = noopLogger
	c.store = nil
}

// Next signals that the pipeline should proceed to the following stage
// once the current handler returns. Calling it more than once within one
// handler is a no-op: the executor advances at most one stage per handler
// invocation.
func (c *Context) Next() {
	c.proceed = true
}

// Abort stops the pipeline without raising an error. No further handlers
// run.
func (c *Context) Abort() {
	c.aborted = true
	c.proceed = false
}

// IsAborted reports whether Abort was called.
func (c *Context) IsAborted() bool {
	return c.aborted
}

// Error aborts the pipeline with err. The router delivers err to each
// registered error handler in order; if none produces a response, the
// fallback formatter renders it (an *Error verbatim, anything else as a
// generic 500).
func (c *Context) Error(err error) {
	if err == nil {
		return
	}
	c.err = err
	c.proceed = false
}

// takeError returns and clears the pending pipeline error.
func (c *Context) takeError() error {
	err := c.err
	c.err = nil
	return err
}

// Writer returns the response writer. All writes pass through the
// router's tracking wrapper, so Written reflects them.
func (c *Context) Writer() http.ResponseWriter {
	return &c.writer
}

// Written reports whether any response bytes or headers have been sent.
func (c *Context) Written() bool {
	return c.writer.Written()
}

// StatusCode returns the response status code written so far, or 200.
func (c *Context) StatusCode() int {
	return c.writer.StatusCode()
}

// SetStreaming marks the response as a long-lived stream. Streaming
// responses are excluded from response-size accounting decisions made by
// observability recorders.
func (c *Context) SetStreaming() {
	c.writer.streaming = true
}

// Streaming reports whether the response was marked as a stream.
func (c *Context) Streaming() bool {
	return c.writer.streaming
}

// Method returns the request method.
func (c *Context) Method() string {
	return c.Request.Method
}

// Path returns the pathname used for route matching. Inside a mounted
// child router this is the rewritten pathname with the mount prefix
// stripped.
func (c *Context) Path() string {
	return c.routePath
}

// FullPath returns the matched route template (e.g. "/users/:id"), or ""
// when no route matched.
func (c *Context) FullPath() string {
	return c.routePattern
}

// Logger returns the request-scoped logger. Without an observability
// recorder this is a no-op logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// setParam binds one route parameter.
func (c *Context) setParam(key, value string) {
	if c.paramCount < maxInlineParams {
		c.paramKeys[c.paramCount] = key
		c.paramValues[c.paramCount] = value
		c.paramCount++
		return
	}
	if c.paramExtra == nil {
		c.paramExtra = make(map[string]string)
	}
	c.paramExtra[key] = value
}

// bindParams zips keys with values onto the context.
func (c *Context) bindParams(keys, values []string) {
	for i, k := range keys {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		c.setParam(k, v)
	}
}

// Param returns the value of a bound route parameter. An optional
// parameter that did not match binds the empty string, observably
// identical to an empty-string match.
//
// Example:
//
//	r.GET("/users/:id", func(c *routekit.Context) {
//	    id := c.Param("id")
//	    ...
//	})
func (c *Context) Param(key string) string {
	for i := 0; i < c.paramCount; i++ {
		if c.paramKeys[i] == key {
			return c.paramValues[i]
		}
	}
	if c.paramExtra != nil {
		return c.paramExtra[key]
	}
	return ""
}

// HasParam reports whether the parameter name was bound by the match.
func (c *Context) HasParam(key string) bool {
	for i := 0; i < c.paramCount; i++ {
		if c.paramKeys[i] == key {
			return true
		}
	}
	_, ok := c.paramExtra[key]
	return ok
}

// Params returns all bound route parameters as a map. The map is built on
// each call; prefer Param in hot paths.
func (c *Context) Params() map[string]string {
	out := make(map[string]string, c.paramCount+len(c.paramExtra))
	for i := 0; i < c.paramCount; i++ {
		out[c.paramKeys[i]] = c.paramValues[i]
	}
	for k, v := range c.paramExtra {
		out[k] = v
	}
	return out
}

// Query returns the first query-string value for key, or "".
func (c *Context) Query(key string) string {
	return c.Request.URL.Query().Get(key)
}

// Header returns the first request header value for key.
func (c *Context) Header(key string) string {
	return c.Request.Header.Get(key)
}

// SetHeader sets a response header.
func (c *Context) SetHeader(key, value string) {
	c.writer.Header().Set(key, value)
}

// Set stores a value in the per-request attribute bag.
func (c *Context) Set(key string, value any) {
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = value
}

// Get retrieves a value from the per-request attribute bag.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.store[key]
	return v, ok
}

// MustGet retrieves a value from the attribute bag and panics if absent.
func (c *Context) MustGet(key string) any {
	if v, ok := c.store[key]; ok {
		return v
	}
	panic(fmt.Sprintf("routekit: key %q does not exist in context", key))
}

// Body reads the request body enforcing limit bytes. Exceeding the limit
// returns an error wrapping ErrPayloadTooLarge; body-parsing middleware
// turns that into a 413 response.
func (c *Context) Body(limit int64) ([]byte, error) {
	reader := http.MaxBytesReader(c.Writer(), c.Request.Body, limit)
	data, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: limit %d bytes", ErrPayloadTooLarge, limit)
		}
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	return data, nil
}

// BindJSON reads at most limit bytes of the request body and unmarshals
// it into v.
func (c *Context) BindJSON(v any, limit int64) error {
	data, err := c.Body(limit)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding JSON body: %w", err)
	}
	return nil
}

// Status writes the status code with no body.
func (c *Context) Status(code int) {
	c.writer.WriteHeader(code)
}

// NoContent writes a 204 response.
func (c *Context) NoContent() {
	c.Status(http.StatusNoContent)
}

// JSON marshals obj and writes it with the given status code.
func (c *Context) JSON(code int, obj any) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("encoding JSON response: %w", err)
	}
	c.writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.writer.WriteHeader(code)
	if _, err := c.writer.Write(data); err != nil {
		return fmt.Errorf("writing JSON response: %w", err)
	}
	return nil
}

// String writes a plain-text response with the given status code.
func (c *Context) String(code int, format string, args ...any) error {
	c.writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.writer.WriteHeader(code)
	if _, err := fmt.Fprintf(&c.writer, format, args...); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}

// TraceID returns the current trace ID, or "" when tracing is inactive.
func (c *Context) TraceID() string {
	span := trace.SpanFromContext(c.Request.Context())
	if sc := span.SpanContext(); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// SpanID returns the current span ID, or "" when tracing is inactive.
func (c *Context) SpanID() string {
	span := trace.SpanFromContext(c.Request.Context())
	if sc := span.SpanContext(); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}
