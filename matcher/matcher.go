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

// Package matcher provides route tables that map (method, path) pairs to
// registered handler chains.
//
// Two implementations share the Matcher interface:
//
//   - LinearTable scans routes in registration order. Registration order is
//     the tie-break when two templates overlap: whichever was registered
//     first wins. It is the reference implementation.
//   - FastMatcher indexes static paths in a hash map and collapses all
//     parameterized routes per method into one combined pattern. A static
//     route always outranks a parameterized route on the same path,
//     regardless of registration order.
//
// The two tie-break policies are deliberately different; FastMatcher's
// static-precedence rule is the documented default because it is cheaper to
// reason about. Pick one implementation per router and do not treat them as
// interchangeable when routes overlap.
package matcher

import (
	"errors"
	"net/http"
)

// Handler is an opaque pipeline stage stored in a route's handler chain.
// The matcher never invokes handlers; keeping the type opaque avoids a
// dependency on the router package.
type Handler any

// MethodAll is the pseudo-method matching every HTTP verb.
const MethodAll = "ALL"

// Methods lists the concrete HTTP verbs a route can be registered under,
// in the canonical order used for Allow headers.
var Methods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
	http.MethodOptions,
	http.MethodHead,
}

var (
	// ErrNoHandlers indicates a route was registered with an empty chain.
	ErrNoHandlers = errors.New("matcher: route requires at least one handler")

	// ErrUnknownMethod indicates a method outside Methods and MethodAll.
	ErrUnknownMethod = errors.New("matcher: unknown HTTP method")
)

// Route is one registered route. Routes are created at registration time
// and immutable afterwards.
type Route struct {
	// Method is the HTTP verb, or MethodAll.
	Method string

	// Template is the original path template.
	Template string

	// Keys holds the parameter names in template declaration order.
	Keys []string

	// Chain is the ordered handler chain, never empty.
	Chain []Handler
}

// Result is a successful match: the route plus the parameter bindings.
// Values is aligned with Route.Keys; an unmatched optional capture binds
// to the empty string.
type Result struct {
	Route  *Route
	Values []string
}

// Matcher is the route-table contract shared by LinearTable and
// FastMatcher.
//
// Implementations are safe for concurrent Match calls, but Add and Clear
// must not run concurrently with Match: registration completes before
// traffic begins.
type Matcher interface {
	// Add registers a route. MethodAll routes match every verb.
	Add(method, template string, chain []Handler) error

	// Match returns the matching route for an exact, anchored match of
	// path under method, or (nil, false).
	Match(method, path string) (*Result, bool)

	// MatchingMethods returns, in canonical order, every concrete verb
	// under which path would match some route. Used for 405 resolution.
	MatchingMethods(path string) []string

	// HasRoutes reports whether any route is registered.
	HasRoutes() bool

	// Clear removes all registered routes.
	Clear()
}

func validMethod(method string) bool {
	if method == MethodAll {
		return true
	}
	for _, m := range Methods {
		if m == method {
			return true
		}
	}
	return false
}

// appendMethod adds method to list if absent, preserving canonical order
// by construction (callers iterate Methods).
func appendMethod(list []string, method string) []string {
	for _, m := range list {
		if m == method {
			return list
		}
	}
	return append(list, method)
}
