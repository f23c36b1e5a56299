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

package matcher

import (
	"sync"

	"github.com/routekit-dev/routekit/pattern"
)

// linearEntry pairs a route with its compiled pattern.
type linearEntry struct {
	route    *Route
	compiled *pattern.Compiled
}

// LinearTable matches routes by scanning them in registration order.
//
// Matching is O(route count) per request. Registration order is the
// tie-break between overlapping templates: registering "/users/new" after
// "/users/:id" means "/users/new" binds id="new", while the opposite order
// makes the literal route win. That ordering is part of the contract and
// load-bearing for integrators.
type LinearTable struct {
	mu      sync.RWMutex
	entries []linearEntry
}

// NewLinearTable returns an empty LinearTable.
func NewLinearTable() *LinearTable {
	return &LinearTable{}
}

// Add registers a route. A MethodAll registration expands to one entry per
// concrete verb, all sharing the same compiled pattern and chain.
func (t *LinearTable) Add(method, template string, chain []Handler) error {
	if len(chain) == 0 {
		return ErrNoHandlers
	}
	if !validMethod(method) {
		return ErrUnknownMethod
	}
	c, err := pattern.Compile(template)
	if err != nil {
		return err
	}

	methods := []string{method}
	if method == MethodAll {
		methods = Methods
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range methods {
		t.entries = append(t.entries, linearEntry{
			route: &Route{
				Method:   m,
				Template: template,
				Keys:     c.Keys,
				Chain:    chain,
			},
			compiled: c,
		})
	}
	return nil
}

// Match scans entries in registration order and returns the first route
// whose method and anchored pattern both match.
func (t *LinearTable) Match(method, path string) (*Result, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.entries {
		e := &t.entries[i]
		if e.route.Method != method {
			continue
		}
		if values, ok := e.compiled.Match(path); ok {
			return &Result{Route: e.route, Values: values}, true
		}
	}
	return nil, false
}

// MatchingMethods returns every verb under which path matches some entry.
func (t *LinearTable) MatchingMethods(path string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	matched := make(map[string]struct{})
	for i := range t.entries {
		e := &t.entries[i]
		if _, ok := matched[e.route.Method]; ok {
			continue
		}
		if _, ok := e.compiled.Match(path); ok {
			matched[e.route.Method] = struct{}{}
		}
	}

	var out []string
	for _, m := range Methods {
		if _, ok := matched[m]; ok {
			out = appendMethod(out, m)
		}
	}
	return out
}

// HasRoutes reports whether any route is registered.
func (t *LinearTable) HasRoutes() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries) > 0
}

// Clear removes all registered routes.
func (t *LinearTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
}

var _ Matcher = (*LinearTable)(nil)
