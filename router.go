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
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/routekit-dev/routekit/matcher"
)

// Option defines functional options for router configuration.
type Option func(*Router)

// Router matches HTTP requests to registered routes and executes their
// handler chains through the pipeline executor.
//
// Per request the router runs a fixed state machine: mount delegation,
// global middleware, route match, parameter observers, route handlers,
// terminal resolution. Mounting is exclusive: traffic captured by a child
// mount never sees the parent's middleware or routes.
//
// Route tables are built during registration and read-only afterwards.
// The router freezes itself on the first request; registering a route
// after that panics. It is safe for concurrent use once serving.
//
// Example:
//
//	r := routekit.MustNew()
//	r.GET("/users/:id", func(c *routekit.Context) {
//	    c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
//	})
//	http.ListenAndServe(":8080", r)
type Router struct {
	table matcher.Matcher

	middleware     []HandlerFunc
	errorHandlers  []ErrorHandlerFunc
	mounts         []*mountEntry
	paramObservers []paramObserver
	upgradeRoutes  []*upgradeRoute

	observability ObservabilityRecorder

	// Configuration
	checkCancellation bool
	enableH2C         bool
	serverTimeouts    *serverTimeouts

	frozen atomic.Bool

	routesMu sync.Mutex
	routes   []RouteInfo
}

// paramObserver is one registered parameter observer. Observers fire in
// registration order, once per distinct bound parameter name, before the
// matched route's own chain.
type paramObserver struct {
	name string
	fn   ParamHandlerFunc
}

// RouteInfo describes a registered route for introspection.
type RouteInfo struct {
	Method string
	Path   string
}

// serverTimeouts holds HTTP server timeout configuration.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

// New creates a router with optional configuration. The default route
// table is the hybrid FastMatcher, whose documented tie-break gives
// static routes precedence over parameterized ones; WithLinearMatcher
// selects the registration-order reference table instead.
//
// Returns an error if the configuration is invalid. For a version that
// panics instead, use MustNew.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		table:             matcher.NewFastMatcher(),
		checkCancellation: true,
		serverTimeouts:    defaultServerTimeouts(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("router configuration validation failed: %w", err)
	}
	return r, nil
}

// MustNew creates a router and panics if the configuration is invalid.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("routekit.MustNew: %v", err))
	}
	return r
}

// validate checks the router configuration.
func (r *Router) validate() error {
	if r.table == nil {
		return fmt.Errorf("route table must not be nil")
	}
	t := r.serverTimeouts
	if t.readHeader < 0 || t.read < 0 || t.write < 0 || t.idle < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	return nil
}

// SetObservabilityRecorder sets the observability recorder for metrics,
// tracing, and access logging. Pass nil to disable.
func (r *Router) SetObservabilityRecorder(recorder ObservabilityRecorder) {
	r.observability = recorder
}

// Use registers global middleware, executed in registration order before
// route matching on every request handled by this router (but not by
// mounted children: mounting is exclusive).
func (r *Router) Use(middleware ...HandlerFunc) {
	r.mustBeOpen()
	r.middleware = append(r.middleware, middleware...)
}

// UseAt registers middleware scoped to a literal path prefix. The
// middleware participates in the global chain but passes control straight
// through for paths outside the prefix.
//
// Example:
//
//	r.UseAt("/admin", requireAdmin)
func (r *Router) UseAt(prefix string, middleware ...HandlerFunc) {
	r.mustBeOpen()
	prefix = normalizePrefix(prefix)
	for _, mw := range middleware {
		mw := mw
		r.middleware = append(r.middleware, func(c *Context) {
			if _, ok := stripPrefix(c.routePath, prefix); !ok {
				c.Next()
				return
			}
			mw(c)
		})
	}
}

// UseError registers error handlers. On pipeline failure each runs in
// registration order until one produces a response; see ErrorHandlerFunc.
func (r *Router) UseError(handlers ...ErrorHandlerFunc) {
	r.mustBeOpen()
	r.errorHandlers = append(r.errorHandlers, handlers...)
}

// Param registers an observer for a named route parameter. Whenever a
// matched route binds that name, the observer runs before the route's own
// chain. Multiple observers for one name run in registration order.
//
// Example:
//
//	r.Param("id", func(c *routekit.Context, id string) {
//	    c.Set("user", loadUser(id))
//	    c.Next()
//	})
func (r *Router) Param(name string, fn ParamHandlerFunc) {
	r.mustBeOpen()
	r.paramObservers = append(r.paramObservers, paramObserver{name: name, fn: fn})
}

// Routes returns the registered routes of this router (not including
// mounted children).
func (r *Router) Routes() []RouteInfo {
	r.routesMu.Lock()
	defer r.routesMu.Unlock()
	out := make([]RouteInfo, len(r.routes))
	copy(out, r.routes)
	return out
}

// addRoute registers a handler chain in the route table. Registration
// errors are programmer errors and panic, matching the behavior of route
// literals failing at startup rather than at request time.
func (r *Router) addRoute(method, path string, handlers []HandlerFunc) {
	r.mustBeOpen()
	if len(handlers) == 0 {
		panic(fmt.Sprintf("routekit: route %s %s requires at least one handler", method, path))
	}
	chain := make([]matcher.Handler, len(handlers))
	for i, h := range handlers {
		chain[i] = h
	}
	if err := r.table.Add(method, path, chain); err != nil {
		panic(fmt.Sprintf("routekit: registering route %s %s: %v", method, path, err))
	}
	r.routesMu.Lock()
	r.routes = append(r.routes, RouteInfo{Method: method, Path: path})
	r.routesMu.Unlock()
}

// mustBeOpen panics if the router already started serving. Registration
// and serving are mutually exclusive phases; this eliminates data races
// between late registration and in-flight matches.
func (r *Router) mustBeOpen() {
	if r.frozen.Load() {
		panic(ErrRouterFrozen)
	}
}

// freeze marks the router and all mounted children as serving.
func (r *Router) freeze() {
	if r.frozen.Swap(true) {
		return
	}
	for _, m := range r.mounts {
		m.child.freeze()
	}
}

// handle runs the per-request state machine on an already-reset context.
// Mounted children are entered recursively with a rewritten pathname.
func (r *Router) handle(c *Context) {
	// 1. Mount delegation: exclusive, first matching prefix wins.
	for _, m := range r.mounts {
		if rest, ok := stripPrefix(c.routePath, m.prefix); ok {
			c.routePath = rest
			m.child.handle(c)
			return
		}
	}

	// 2. Global middleware.
	if len(r.middleware) > 0 {
		switch r.run(c, r.middleware) {
		case pipelineExhausted:
			// Fall through to route matching.
		case pipelineResponded, pipelineFailed:
			return
		case pipelineStopped:
			// The chain stopped without a response; synthesize an empty
			// success rather than leaving the request dangling.
			c.Status(http.StatusOK)
			return
		}
	}

	// 3. Route match against this router's own table.
	res, ok := r.table.Match(c.Request.Method, c.routePath)
	if !ok {
		r.resolveTerminal(c)
		return
	}

	// 4. Bind parameters and assemble the final pipeline: one synthetic
	// handler per observer whose name was bound, then the route chain.
	rt := res.Route
	c.bindParams(rt.Keys, res.Values)
	c.routePattern = rt.Template

	pipeline := make([]HandlerFunc, 0, len(r.paramObservers)+len(rt.Chain))
	for _, obs := range r.paramObservers {
		if !c.HasParam(obs.name) {
			continue
		}
		name, fn := obs.name, obs.fn
		pipeline = append(pipeline, func(c *Context) {
			fn(c, c.Param(name))
		})
	}
	for _, h := range rt.Chain {
		pipeline = append(pipeline, h.(HandlerFunc))
	}

	// 5. Execute. A pipeline that terminates without responding is not
	// an error; the request resolves to a bare success.
	switch r.run(c, pipeline) {
	case pipelineResponded, pipelineFailed:
	default:
		c.Status(http.StatusOK)
	}
}

// resolveTerminal distinguishes "no such path" from "path exists under a
// different method" when no route matched this router.
func (r *Router) resolveTerminal(c *Context) {
	method, path := c.Request.Method, c.routePath

	allowed := r.table.MatchingMethods(path)
	if len(allowed) == 0 {
		c.routePattern = routePatternNotFound
		_ = c.JSON(http.StatusNotFound, map[string]string{
			"error":   "Not Found",
			"message": fmt.Sprintf("Cannot %s %s", method, path),
		})
		return
	}

	list := strings.Join(allowed, ", ")
	c.routePattern = routePatternMethodNotAllowed
	c.SetHeader("Allow", list)
	_ = c.JSON(http.StatusMethodNotAllowed, map[string]string{
		"error":          "Method Not Allowed",
		"message":        fmt.Sprintf("%s is not allowed for %s", method, path),
		"allowedMethods": list,
	})
}

// normalizePrefix ensures a mount/middleware prefix starts with '/' and
// carries no trailing slash.
func normalizePrefix(prefix string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" || prefix[0] != '/' {
		prefix = "/" + prefix
	}
	return prefix
}

// stripPrefix strips prefix from path at a segment boundary. An empty
// remainder becomes "/". Returns false when path is not under prefix.
func stripPrefix(path, prefix string) (string, bool) {
	if prefix == "/" {
		return path, true
	}
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	rest := path[len(prefix):]
	if rest == "" {
		return "/", true
	}
	if rest[0] != '/' {
		return "", false
	}
	return rest, true
}
