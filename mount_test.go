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
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMount_PrefixRewrite verifies that delegated requests reach the
// child with the mount prefix stripped.
func TestMount_PrefixRewrite(t *testing.T) {
	t.Parallel()

	child := MustNew()
	child.GET("/users/:id", func(c *Context) {
		_ = c.JSON(http.StatusOK, map[string]string{
			"id":   c.Param("id"),
			"path": c.Path(),
		})
	})

	r := MustNew()
	r.Mount("/api", child)

	w := perform(r, http.MethodGet, "/api/users/42")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"42","path":"/users/42"}`, w.Body.String())
}

// TestMount_Exclusivity verifies that the parent's middleware and routes
// never see traffic captured by a mount.
func TestMount_Exclusivity(t *testing.T) {
	t.Parallel()

	var parentMiddleware, childMiddleware int

	child := MustNew()
	child.Use(func(c *Context) {
		childMiddleware++
		c.Next()
	})
	child.GET("/ping", func(c *Context) { c.Status(http.StatusOK) })

	r := MustNew()
	r.Use(func(c *Context) {
		parentMiddleware++
		c.Next()
	})
	r.Mount("/api", child)
	r.GET("/api/shadowed", func(c *Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/api/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, parentMiddleware, "parent middleware must not run for mounted traffic")
	assert.Equal(t, 1, childMiddleware)

	// A parent route under the mount prefix is unreachable: the mount
	// captures the whole subtree.
	w = perform(r, http.MethodGet, "/api/shadowed")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Parent routes outside the prefix are unaffected.
	w = perform(r, http.MethodGet, "/api-other")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, parentMiddleware, "parent middleware runs outside the mount")
}

// TestMount_ExactPrefixBecomesRoot verifies that a request for exactly
// the mount prefix reaches the child as "/".
func TestMount_ExactPrefixBecomesRoot(t *testing.T) {
	t.Parallel()

	child := MustNew()
	child.GET("/", func(c *Context) {
		_ = c.String(http.StatusOK, "child root")
	})

	r := MustNew()
	r.Mount("/api", child)

	w := perform(r, http.MethodGet, "/api")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "child root", w.Body.String())
}

// TestMount_SegmentBoundary verifies that prefix matching respects
// segment boundaries.
func TestMount_SegmentBoundary(t *testing.T) {
	t.Parallel()

	child := MustNew()
	child.GET("/x", func(c *Context) { c.Status(http.StatusOK) })

	r := MustNew()
	r.Mount("/api", child)
	r.GET("/apiary/x", func(c *Context) {
		_ = c.String(http.StatusOK, "parent")
	})

	w := perform(r, http.MethodGet, "/apiary/x")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "parent", w.Body.String(), "/apiary is not under /api")
}

// TestMount_Nested verifies two levels of delegation with cumulative
// prefix stripping.
func TestMount_Nested(t *testing.T) {
	t.Parallel()

	inner := MustNew()
	inner.GET("/leaf", func(c *Context) {
		_ = c.String(http.StatusOK, "path=%s", c.Path())
	})

	middle := MustNew()
	middle.Mount("/v1", inner)

	r := MustNew()
	r.Mount("/api", middle)

	w := perform(r, http.MethodGet, "/api/v1/leaf")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "path=/leaf", w.Body.String())
}

// TestMount_FirstMatchingPrefixWins verifies mount-registration order.
func TestMount_FirstMatchingPrefixWins(t *testing.T) {
	t.Parallel()

	first := MustNew()
	first.GET("/x", func(c *Context) { _ = c.String(http.StatusOK, "first") })

	second := MustNew()
	second.GET("/x", func(c *Context) { _ = c.String(http.StatusOK, "second") })

	r := MustNew()
	r.Mount("/a", first)
	r.Mount("/a", second)

	w := perform(r, http.MethodGet, "/a/x")
	assert.Equal(t, "first", w.Body.String())
}

// TestMount_TerminalUsesRewrittenPath verifies that 404s inside a mount
// report the child-relative pathname.
func TestMount_TerminalUsesRewrittenPath(t *testing.T) {
	t.Parallel()

	child := MustNew()
	child.GET("/known", func(c *Context) { c.Status(http.StatusOK) })

	r := MustNew()
	r.Mount("/api", child)

	w := perform(r, http.MethodGet, "/api/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not Found","message":"Cannot GET /unknown"}`, w.Body.String())
}

// TestMount_NilChildIgnored verifies that mounting nil is a no-op.
func TestMount_NilChildIgnored(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Mount("/api", nil)
	r.GET("/api/x", func(c *Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/api/x")
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestStripPrefix exercises the segment-boundary prefix helper directly.
func TestStripPrefix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path, prefix string
		want         string
		ok           bool
	}{
		{"/api/users", "/api", "/users", true},
		{"/api", "/api", "/", true},
		{"/apiary", "/api", "", false},
		{"/other", "/api", "", false},
		{"/anything", "/", "/anything", true},
	}
	for _, tc := range cases {
		got, ok := stripPrefix(tc.path, tc.prefix)
		assert.Equal(t, tc.ok, ok, "%s under %s", tc.path, tc.prefix)
		assert.Equal(t, tc.want, got, "%s under %s", tc.path, tc.prefix)
	}
}
