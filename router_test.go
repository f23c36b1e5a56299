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
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// perform runs one request through the router and returns the recorder.
func perform(r *Router, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

// TestRouter_BasicRouting verifies method and path dispatch with
// parameter binding.
func TestRouter_BasicRouting(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/users/:id", func(c *Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
	})
	r.POST("/users", func(c *Context) {
		c.Status(http.StatusCreated)
	})

	w := perform(r, http.MethodGet, "/users/42")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"42"}`, w.Body.String())

	w = perform(r, http.MethodPost, "/users")
	assert.Equal(t, http.StatusCreated, w.Code)
}

// TestRouter_NotFound verifies the 404 terminal response shape.
func TestRouter_NotFound(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/users", func(c *Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/other")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not Found","message":"Cannot GET /other"}`, w.Body.String())
}

// TestRouter_MethodNotAllowed verifies the 405 terminal response shape,
// including the Allow header listing verbs in canonical order.
func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/users", func(c *Context) { c.Status(http.StatusOK) })
	r.POST("/users", func(c *Context) { c.Status(http.StatusCreated) })

	w := perform(r, http.MethodDelete, "/users")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "GET, POST", w.Header().Get("Allow"))
	assert.JSONEq(t, `{
		"error": "Method Not Allowed",
		"message": "DELETE is not allowed for /users",
		"allowedMethods": "GET, POST"
	}`, w.Body.String())
}

// TestRouter_EmptySuccessFallback verifies that a pipeline finishing
// without a response resolves to a bare 200.
func TestRouter_EmptySuccessFallback(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/silent", func(c *Context) {
		c.Next() // proceeds past the end of the chain
	})
	r.GET("/stopped", func(c *Context) {
		// neither Next, nor response, nor error
	})

	w := perform(r, http.MethodGet, "/silent")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = perform(r, http.MethodGet, "/stopped")
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestRouter_MiddlewareOrder verifies that global middleware runs in
// registration order before the route chain.
func TestRouter_MiddlewareOrder(t *testing.T) {
	t.Parallel()

	var order []string
	r := MustNew()
	r.Use(func(c *Context) {
		order = append(order, "first")
		c.Next()
	})
	r.Use(func(c *Context) {
		order = append(order, "second")
		c.Next()
	})
	r.GET("/x", func(c *Context) {
		order = append(order, "handler")
		c.Status(http.StatusOK)
	})

	w := perform(r, http.MethodGet, "/x")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

// TestRouter_MiddlewareShortCircuit verifies that a middleware writing a
// response stops the chain: later middleware and the route handler never
// run.
func TestRouter_MiddlewareShortCircuit(t *testing.T) {
	t.Parallel()

	var afterCalls, handlerCalls int
	r := MustNew()
	r.Use(func(c *Context) {
		_ = c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	})
	r.Use(func(c *Context) {
		afterCalls++
		c.Next()
	})
	r.GET("/secure", func(c *Context) {
		handlerCalls++
		c.Status(http.StatusOK)
	})

	w := perform(r, http.MethodGet, "/secure")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, afterCalls, "middleware after the short-circuit must not run")
	assert.Zero(t, handlerCalls, "route handler must not run")
}

// TestRouter_MiddlewareRunsForUnmatchedPaths verifies that global
// middleware executes before route matching, so it observes requests
// that end in a 404.
func TestRouter_MiddlewareRunsForUnmatchedPaths(t *testing.T) {
	t.Parallel()

	var seen []string
	r := MustNew()
	r.Use(func(c *Context) {
		seen = append(seen, c.Path())
		c.Next()
	})
	r.GET("/known", func(c *Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []string{"/unknown"}, seen)
}

// TestRouter_UseAt verifies prefix-scoped middleware: it guards its
// subtree and passes straight through elsewhere.
func TestRouter_UseAt(t *testing.T) {
	t.Parallel()

	var adminHits int
	r := MustNew()
	r.UseAt("/admin", func(c *Context) {
		adminHits++
		c.Next()
	})
	r.GET("/admin/panel", func(c *Context) { c.Status(http.StatusOK) })
	r.GET("/public", func(c *Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/admin/panel")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, adminHits)

	w = perform(r, http.MethodGet, "/public")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, adminHits, "guard must not fire outside its prefix")

	// Prefix match is at segment boundaries, not raw string prefixes.
	w = perform(r, http.MethodGet, "/administrator")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, adminHits)
}

// TestRouter_ParamObservers verifies that observers fire for bound
// parameter names before the route chain, in registration order.
func TestRouter_ParamObservers(t *testing.T) {
	t.Parallel()

	var order []string
	r := MustNew()
	r.Param("id", func(c *Context, id string) {
		order = append(order, "observe:"+id)
		c.Set("loaded", "user-"+id)
		c.Next()
	})
	r.Param("other", func(c *Context, v string) {
		order = append(order, "never")
		c.Next()
	})
	r.GET("/users/:id", func(c *Context) {
		order = append(order, "handler:"+c.MustGet("loaded").(string))
		c.Status(http.StatusOK)
	})
	r.GET("/plain", func(c *Context) {
		order = append(order, "plain")
		c.Status(http.StatusOK)
	})

	w := perform(r, http.MethodGet, "/users/7")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"observe:7", "handler:user-7"}, order)

	order = order[:0]
	w = perform(r, http.MethodGet, "/plain")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"plain"}, order, "observers skip routes without the name")
}

// TestRouter_ParamObserverShortCircuit verifies that an observer can veto
// the route chain.
func TestRouter_ParamObserverShortCircuit(t *testing.T) {
	t.Parallel()

	var handlerCalls int
	r := MustNew()
	r.Param("id", func(c *Context, id string) {
		_ = c.JSON(http.StatusNotFound, map[string]string{"error": "no such user"})
	})
	r.GET("/users/:id", func(c *Context) {
		handlerCalls++
		c.Status(http.StatusOK)
	})

	w := perform(r, http.MethodGet, "/users/404")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, handlerCalls)
}

// TestRouter_Any verifies that Any answers every verb.
func TestRouter_Any(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Any("/ping", func(c *Context) {
		_ = c.String(http.StatusOK, "pong")
	})

	for _, verb := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		w := perform(r, verb, "/ping")
		assert.Equal(t, http.StatusOK, w.Code, "verb %s", verb)
	}
}

// TestRouter_FreezeOnFirstRequest verifies the registration/serving phase
// split: registering after the first request panics with ErrRouterFrozen.
func TestRouter_FreezeOnFirstRequest(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/x", func(c *Context) { c.Status(http.StatusOK) })
	perform(r, http.MethodGet, "/x")

	assert.PanicsWithValue(t, ErrRouterFrozen, func() {
		r.GET("/late", func(c *Context) {})
	})
	assert.PanicsWithValue(t, ErrRouterFrozen, func() {
		r.Use(func(c *Context) { c.Next() })
	})
	assert.PanicsWithValue(t, ErrRouterFrozen, func() {
		r.Mount("/child", MustNew())
	})
}

// TestRouter_Routes verifies route introspection.
func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/a", func(c *Context) {})
	r.POST("/b/:id", func(c *Context) {})

	assert.Equal(t, []RouteInfo{
		{Method: http.MethodGet, Path: "/a"},
		{Method: http.MethodPost, Path: "/b/:id"},
	}, r.Routes())
}

// TestRouter_RegistrationPanics verifies that invalid registrations fail
// at startup, not at request time.
func TestRouter_RegistrationPanics(t *testing.T) {
	t.Parallel()

	r := MustNew()
	assert.Panics(t, func() { r.GET("/nohandlers") })
	assert.Panics(t, func() { r.GET("missing-slash", func(c *Context) {}) })
	assert.Panics(t, func() { r.GET("/dup/:a/:a", func(c *Context) {}) })
}

// TestRouter_LinearMatcherTieBreak verifies that the linear option
// restores registration-order semantics for overlapping templates.
func TestRouter_LinearMatcherTieBreak(t *testing.T) {
	t.Parallel()

	r := MustNew(WithLinearMatcher())
	r.GET("/users/:id", func(c *Context) {
		_ = c.String(http.StatusOK, "param:%s", c.Param("id"))
	})
	r.GET("/users/new", func(c *Context) {
		_ = c.String(http.StatusOK, "literal")
	})

	w := perform(r, http.MethodGet, "/users/new")
	assert.Equal(t, "param:new", w.Body.String(), "registration order wins on the linear table")
}

// TestRouter_FastMatcherTieBreak verifies the default static-precedence
// tie-break.
func TestRouter_FastMatcherTieBreak(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/users/:id", func(c *Context) {
		_ = c.String(http.StatusOK, "param:%s", c.Param("id"))
	})
	r.GET("/users/new", func(c *Context) {
		_ = c.String(http.StatusOK, "literal")
	})

	w := perform(r, http.MethodGet, "/users/new")
	assert.Equal(t, "literal", w.Body.String(), "static route wins on the default table")
}

// TestRouter_WildcardRoute verifies remainder capture through the full
// stack.
func TestRouter_WildcardRoute(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/files/*path", func(c *Context) {
		_ = c.String(http.StatusOK, "%s", c.Param("path"))
	})

	w := perform(r, http.MethodGet, "/files/docs/readme.md")
	assert.Equal(t, "docs/readme.md", w.Body.String())

	w = perform(r, http.MethodGet, "/files")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String(), "bare prefix binds an empty remainder")
}

// TestRouter_FullPath verifies that the matched template is exposed on
// the context.
func TestRouter_FullPath(t *testing.T) {
	t.Parallel()

	r := MustNew()
	var pattern string
	r.GET("/users/:id", func(c *Context) {
		pattern = c.FullPath()
		c.Status(http.StatusOK)
	})

	perform(r, http.MethodGet, "/users/9")
	assert.Equal(t, "/users/:id", pattern)
}

// TestNew_Validation verifies constructor validation.
func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New(WithMatcher(nil))
	assert.Error(t, err)

	_, err = New(WithServerTimeouts(-1, 0, 0, 0))
	assert.Error(t, err)

	assert.Panics(t, func() { MustNew(WithMatcher(nil)) })

	r, err := New()
	require.NoError(t, err)
	assert.NotNil(t, r)
}
