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
	"net/http"
	"strings"

	"github.com/routekit-dev/routekit/matcher"
)

// Group organizes related routes under a common path prefix with shared
// middleware. The final chain for a grouped route is:
// [global middleware...] + [group middleware...] + [route handlers...].
//
// Example:
//
//	api := r.Group("/api/v1", authMiddleware)
//	users := api.Group("/users")
//	users.GET("/:id", getUserHandler) // matches /api/v1/users/:id
type Group struct {
	router     *Router
	prefix     string
	middleware []HandlerFunc
}

// Group creates a route group on the router with an optional bundled
// middleware chain.
func (r *Router) Group(prefix string, middleware ...HandlerFunc) *Group {
	return &Group{
		router:     r,
		prefix:     prefix,
		middleware: middleware,
	}
}

// Use adds middleware executed for every route subsequently registered in
// this group, after the router's global middleware.
func (g *Group) Use(middleware ...HandlerFunc) {
	g.middleware = append(g.middleware, middleware...)
}

// Group creates a nested group. The nested group's prefix is the parent's
// prefix plus the provided prefix, and the parent's middleware is
// inherited.
func (g *Group) Group(prefix string, middleware ...HandlerFunc) *Group {
	allMiddleware := make([]HandlerFunc, 0, len(g.middleware)+len(middleware))
	allMiddleware = append(allMiddleware, g.middleware...)
	allMiddleware = append(allMiddleware, middleware...)

	return &Group{
		router:     g.router,
		prefix:     joinPaths(g.prefix, prefix),
		middleware: allMiddleware,
	}
}

// GET adds a GET route under the group's prefix.
func (g *Group) GET(path string, handlers ...HandlerFunc) {
	g.addRoute(http.MethodGet, path, handlers)
}

// POST adds a POST route under the group's prefix.
func (g *Group) POST(path string, handlers ...HandlerFunc) {
	g.addRoute(http.MethodPost, path, handlers)
}

// PUT adds a PUT route under the group's prefix.
func (g *Group) PUT(path string, handlers ...HandlerFunc) {
	g.addRoute(http.MethodPut, path, handlers)
}

// DELETE adds a DELETE route under the group's prefix.
func (g *Group) DELETE(path string, handlers ...HandlerFunc) {
	g.addRoute(http.MethodDelete, path, handlers)
}

// PATCH adds a PATCH route under the group's prefix.
func (g *Group) PATCH(path string, handlers ...HandlerFunc) {
	g.addRoute(http.MethodPatch, path, handlers)
}

// OPTIONS adds an OPTIONS route under the group's prefix.
func (g *Group) OPTIONS(path string, handlers ...HandlerFunc) {
	g.addRoute(http.MethodOptions, path, handlers)
}

// HEAD adds a HEAD route under the group's prefix.
func (g *Group) HEAD(path string, handlers ...HandlerFunc) {
	g.addRoute(http.MethodHead, path, handlers)
}

// Any adds a route matching every verb under the group's prefix.
func (g *Group) Any(path string, handlers ...HandlerFunc) {
	g.addRoute(matcher.MethodAll, path, handlers)
}

func (g *Group) addRoute(method, path string, handlers []HandlerFunc) {
	allHandlers := make([]HandlerFunc, 0, len(g.middleware)+len(handlers))
	allHandlers = append(allHandlers, g.middleware...)
	allHandlers = append(allHandlers, handlers...)

	g.router.addRoute(method, joinPaths(g.prefix, path), allHandlers)
}

// joinPaths concatenates a prefix and a path, treating "/" as empty so
// grouped root routes register under the prefix itself.
func joinPaths(prefix, path string) string {
	if path == "/" || path == "" {
		path = ""
	}
	if prefix == "" {
		if path == "" {
			return "/"
		}
		return path
	}
	var sb strings.Builder
	sb.Grow(len(prefix) + len(path))
	sb.WriteString(prefix)
	sb.WriteString(path)
	return sb.String()
}
