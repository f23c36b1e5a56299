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
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestContext_Params verifies parameter access helpers, including the
// map overflow past the inline array capacity.
func TestContext_Params(t *testing.T) {
	t.Parallel()

	c := &Context{}
	c.reset(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil), nil)

	for i := 0; i < maxInlineParams+3; i++ {
		c.setParam(fmt.Sprintf("k%d", i), fmt.Sprintf("v%d", i))
	}

	assert.Equal(t, "v0", c.Param("k0"))
	assert.Equal(t, "v9", c.Param("k9"), "overflow params live in the map")
	assert.Empty(t, c.Param("missing"))
	assert.True(t, c.HasParam("k10"))
	assert.False(t, c.HasParam("missing"))

	all := c.Params()
	assert.Len(t, all, maxInlineParams+3)
	assert.Equal(t, "v5", all["k5"])
}

// TestContext_OptionalParamBindsEmpty verifies the documented edge: an
// unmatched optional parameter is observable as an empty string, the
// same as an explicit empty match.
func TestContext_OptionalParamBindsEmpty(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/archive/:year?", func(c *Context) {
		_ = c.JSON(http.StatusOK, map[string]any{
			"year": c.Param("year"),
			"has":  c.HasParam("year"),
		})
	})

	w := perform(r, http.MethodGet, "/archive/2024")
	assert.JSONEq(t, `{"year":"2024","has":true}`, w.Body.String())

	w = perform(r, http.MethodGet, "/archive")
	assert.JSONEq(t, `{"year":"","has":true}`, w.Body.String())
}

// TestContext_Store verifies the per-request attribute bag.
func TestContext_Store(t *testing.T) {
	t.Parallel()

	c := &Context{}
	c.reset(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil), nil)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("user", "alice")
	v, ok := c.Get("user")
	require.True(t, ok)
	assert.Equal(t, "alice", v)
	assert.Equal(t, "alice", c.MustGet("user"))

	assert.Panics(t, func() { c.MustGet("missing") })
}

// TestContext_QueryAndHeader verifies request view helpers.
func TestContext_QueryAndHeader(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/search?q=routing&page=2", nil)
	req.Header.Set("X-Token", "secret")

	c := &Context{}
	c.reset(httptest.NewRecorder(), req, nil)

	assert.Equal(t, "routing", c.Query("q"))
	assert.Equal(t, "2", c.Query("page"))
	assert.Empty(t, c.Query("missing"))
	assert.Equal(t, "secret", c.Header("X-Token"))
	assert.Equal(t, http.MethodGet, c.Method())
}

// TestContext_Body verifies limited body reads and the payload-too-large
// sentinel.
func TestContext_Body(t *testing.T) {
	t.Parallel()

	t.Run("within limit", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("hello"))
		c := &Context{}
		c.reset(httptest.NewRecorder(), req, nil)

		data, err := c.Body(64)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("over limit", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(strings.Repeat("a", 100)))
		c := &Context{}
		c.reset(httptest.NewRecorder(), req, nil)

		_, err := c.Body(10)
		assert.ErrorIs(t, err, ErrPayloadTooLarge)
	})
}

// TestContext_BindJSON verifies JSON body decoding.
func TestContext_BindJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"name":"alice","age":30}`))
	c := &Context{}
	c.reset(httptest.NewRecorder(), req, nil)

	var p payload
	require.NoError(t, c.BindJSON(&p, 1024))
	assert.Equal(t, payload{Name: "alice", Age: 30}, p)

	req = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{not json`))
	c.reset(httptest.NewRecorder(), req, nil)
	assert.Error(t, c.BindJSON(&p, 1024))
}

// TestContext_ResponseHelpers verifies JSON, String, Status, and
// NoContent output.
func TestContext_ResponseHelpers(t *testing.T) {
	t.Parallel()

	t.Run("JSON", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		c := &Context{}
		c.reset(w, httptest.NewRequest(http.MethodGet, "/x", nil), nil)

		require.NoError(t, c.JSON(http.StatusCreated, map[string]int{"n": 1}))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"n":1}`, w.Body.String())
		assert.True(t, c.Written())
		assert.Equal(t, http.StatusCreated, c.StatusCode())
	})

	t.Run("String", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		c := &Context{}
		c.reset(w, httptest.NewRequest(http.MethodGet, "/x", nil), nil)

		require.NoError(t, c.String(http.StatusOK, "hello %s", "world"))
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "hello world", w.Body.String())
	})

	t.Run("NoContent", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		c := &Context{}
		c.reset(w, httptest.NewRequest(http.MethodGet, "/x", nil), nil)

		c.NoContent()
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("JSON marshal failure", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		c := &Context{}
		c.reset(w, httptest.NewRequest(http.MethodGet, "/x", nil), nil)

		assert.Error(t, c.JSON(http.StatusOK, func() {}), "functions are not marshalable")
		assert.False(t, c.Written(), "nothing written on marshal failure")
	})
}

// TestContext_TraceIDsWithoutSpan verifies the inactive-tracing zero
// values.
func TestContext_TraceIDsWithoutSpan(t *testing.T) {
	t.Parallel()

	c := &Context{}
	c.reset(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil), nil)

	assert.Empty(t, c.TraceID())
	assert.Empty(t, c.SpanID())
}

// TestContext_LoggerDefaultsToNoop verifies that handlers can always log
// without nil checks.
func TestContext_LoggerDefaultsToNoop(t *testing.T) {
	t.Parallel()

	c := &Context{}
	c.reset(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil), nil)

	require.NotNil(t, c.Logger())
	c.Logger().Info("safe to call")
}

// TestContext_PooledReuse verifies that nothing observable leaks between
// two requests sharing one pooled context.
func TestContext_PooledReuse(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/a/:id", func(c *Context) {
		c.Set("key", "value")
		_ = c.String(http.StatusOK, "%s", c.Param("id"))
	})
	r.GET("/b", func(c *Context) {
		_, hasKey := c.Get("key")
		_ = c.JSON(http.StatusOK, map[string]any{
			"id":  c.Param("id"),
			"key": hasKey,
		})
	})

	perform(r, http.MethodGet, "/a/7")

	w := perform(r, http.MethodGet, "/b")
	assert.JSONEq(t, `{"id":"","key":false}`, w.Body.String())
}
