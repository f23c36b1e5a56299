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
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrResponseWriterNotHijacker indicates that the underlying
	// ResponseWriter does not implement http.Hijacker.
	ErrResponseWriterNotHijacker = errors.New("response writer does not implement http.Hijacker")

	// ErrPayloadTooLarge indicates that a request body exceeded the
	// caller-supplied byte limit.
	ErrPayloadTooLarge = errors.New("request payload too large")

	// ErrRouterFrozen indicates a registration attempt after the router
	// started serving traffic.
	ErrRouterFrozen = errors.New("router is frozen: register routes before serving")

	// ErrNilWebSocketHandler indicates that a WebSocket route was
	// registered without any event callback.
	ErrNilWebSocketHandler = errors.New("websocket handler requires at least one event callback")

	// ErrNotWebSocketRequest indicates an upgrade was attempted on a
	// request that is not a WebSocket handshake.
	ErrNotWebSocketRequest = errors.New("request is not a websocket upgrade")
)

// Error is an application-level error carrying an explicit HTTP status
// code, optional headers, and an optional structured body. When no
// registered error handler produces a response, the fallback formatter
// surfaces an Error verbatim: its status, its headers, and its body (or
// message when no body is set). Any other error value is rendered as a
// generic 500.
//
// Example:
//
//	c.Error(routekit.NewError(http.StatusForbidden, "account suspended"))
type Error struct {
	// Code is the HTTP status code to respond with.
	Code int

	// Message is a human-readable description, used as the response
	// message when Body is nil.
	Message string

	// Headers are added to the response before the status is written.
	Headers http.Header

	// Body, when non-nil, is rendered as the JSON response body instead
	// of the generic {"error", "message"} envelope.
	Body any

	// Err is the wrapped cause, if any.
	Err error
}

// NewError returns an Error with the given status code and message.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithHeader sets a response header on the error and returns it for
// chaining.
func (e *Error) WithHeader(key, value string) *Error {
	if e.Headers == nil {
		e.Headers = make(http.Header)
	}
	e.Headers.Set(key, value)
	return e
}

// WithBody sets a structured response body on the error and returns it
// for chaining.
func (e *Error) WithBody(body any) *Error {
	e.Body = body
	return e
}

// Wrap attaches a cause to the error and returns it for chaining.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}
