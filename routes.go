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

	"github.com/routekit-dev/routekit/matcher"
)

// GET adds a route that matches GET requests to the specified path.
// The path can contain parameters using the :param syntax, optional
// parameters with :param?, and wildcards with * or *name.
//
// Example:
//
//	r.GET("/users/:id", getUserHandler)
//	r.GET("/files/*path", serveFileHandler)
func (r *Router) GET(path string, handlers ...HandlerFunc) {
	r.addRoute(http.MethodGet, path, handlers)
}

// POST adds a route that matches POST requests to the specified path.
//
// Example:
//
//	r.POST("/users", createUserHandler)
func (r *Router) POST(path string, handlers ...HandlerFunc) {
	r.addRoute(http.MethodPost, path, handlers)
}

// PUT adds a route that matches PUT requests to the specified path.
func (r *Router) PUT(path string, handlers ...HandlerFunc) {
	r.addRoute(http.MethodPut, path, handlers)
}

// DELETE adds a route that matches DELETE requests to the specified path.
func (r *Router) DELETE(path string, handlers ...HandlerFunc) {
	r.addRoute(http.MethodDelete, path, handlers)
}

// PATCH adds a route that matches PATCH requests to the specified path.
func (r *Router) PATCH(path string, handlers ...HandlerFunc) {
	r.addRoute(http.MethodPatch, path, handlers)
}

// OPTIONS adds a route that matches OPTIONS requests to the specified
// path. Commonly used for CORS preflight requests.
func (r *Router) OPTIONS(path string, handlers ...HandlerFunc) {
	r.addRoute(http.MethodOptions, path, handlers)
}

// HEAD adds a route that matches HEAD requests to the specified path.
func (r *Router) HEAD(path string, handlers ...HandlerFunc) {
	r.addRoute(http.MethodHead, path, handlers)
}

// Any adds a route that matches every HTTP verb on the specified path.
//
// Example:
//
//	r.Any("/ping", pingHandler)
func (r *Router) Any(path string, handlers ...HandlerFunc) {
	r.addRoute(matcher.MethodAll, path, handlers)
}
