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
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/routekit-dev/routekit/pattern"
)

// staticKey identifies a static route entry by method and exact path.
type staticKey struct {
	method string
	path   string
}

// dynamicEntry is a parameterized route pending compilation into the
// combined per-method matcher.
type dynamicEntry struct {
	route    *Route
	compiled *pattern.Compiled
}

// alternative describes where one route's groups live inside the combined
// pattern. Group indices are 1-based positions within the overall match.
type alternative struct {
	route *Route

	// paramStart is the index of the route's first parameter capture
	// group.
	paramStart int

	// marker is the index of the route's trailing zero-width marker
	// group. The marker participates in the match if and only if this
	// alternative is the one that fired, which is how the fired
	// alternative is recovered from a single combined match.
	marker int
}

// methodMatcher is the combined alternation for every parameterized route
// registered under one method.
type methodMatcher struct {
	re   *regexp.Regexp
	alts []alternative
}

// match tests path against the combined pattern and, on success, recovers
// the fired alternative via its marker group.
func (mm *methodMatcher) match(path string) (*Result, bool) {
	idx := mm.re.FindStringSubmatchIndex(path)
	if idx == nil {
		return nil, false
	}
	for i := range mm.alts {
		alt := &mm.alts[i]
		if idx[2*alt.marker] < 0 {
			continue
		}
		keys := alt.route.Keys
		values := make([]string, len(keys))
		for k := range keys {
			g := alt.paramStart + k
			if start := idx[2*g]; start >= 0 {
				values[k] = path[start:idx[2*g+1]]
			}
		}
		return &Result{Route: alt.route, Values: values}, true
	}
	// A successful combined match always defines exactly one marker;
	// reaching here means the compiled set is corrupt.
	return nil, false
}

// matches reports whether path matches any alternative, without binding.
func (mm *methodMatcher) matches(path string) bool {
	return mm.re.MatchString(path)
}

// snapshot is an immutable compiled view of the registered routes. A new
// snapshot is built and published atomically after registrations; readers
// never observe a partially rebuilt table.
type snapshot struct {
	gen       uint64
	static    map[staticKey]*Route
	byMethod  map[string]*methodMatcher
	hasRoutes bool
}

// FastMatcher is the hybrid route table: O(1) exact lookup for static
// templates plus one combined alternation per method for parameterized
// templates.
//
// Tie-break: a static route always outranks a parameterized route on the
// same path, regardless of registration order. The full match order is
// static(method), static(ALL), combined(method), combined(ALL).
//
// Registration bumps a generation counter; the first Match after a stale
// generation rebuilds the compiled snapshot under a mutex and publishes it
// with an atomic pointer swap. Registration is expected to complete before
// traffic begins.
type FastMatcher struct {
	mu      sync.Mutex
	static  map[staticKey]*Route
	dynamic map[string][]dynamicEntry
	gen     atomic.Uint64
	snap    atomic.Pointer[snapshot]
}

// NewFastMatcher returns an empty FastMatcher.
func NewFastMatcher() *FastMatcher {
	return &FastMatcher{
		static:  make(map[staticKey]*Route),
		dynamic: make(map[string][]dynamicEntry),
	}
}

// Add registers a route. Templates without parameter or wildcard markers
// become static entries; everything else is deferred into the per-method
// list compiled on the next Match.
func (m *FastMatcher) Add(method, template string, chain []Handler) error {
	if len(chain) == 0 {
		return ErrNoHandlers
	}
	if !validMethod(method) {
		return ErrUnknownMethod
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !pattern.HasParams(template) {
		m.static[staticKey{method: method, path: template}] = &Route{
			Method:   method,
			Template: template,
			Chain:    chain,
		}
		m.gen.Add(1)
		return nil
	}

	c, err := pattern.Compile(template)
	if err != nil {
		return err
	}
	m.dynamic[method] = append(m.dynamic[method], dynamicEntry{
		route: &Route{
			Method:   method,
			Template: template,
			Keys:     c.Keys,
			Chain:    chain,
		},
		compiled: c,
	})
	m.gen.Add(1)
	return nil
}

// Match implements the hybrid lookup order: exact static entries first
// (own method, then ALL), then the combined patterns (own method, then
// ALL).
func (m *FastMatcher) Match(method, path string) (*Result, bool) {
	s := m.current()

	if rt, ok := s.static[staticKey{method: method, path: path}]; ok {
		return &Result{Route: rt}, true
	}
	if rt, ok := s.static[staticKey{method: MethodAll, path: path}]; ok {
		return &Result{Route: rt}, true
	}
	if mm := s.byMethod[method]; mm != nil {
		if res, ok := mm.match(path); ok {
			return res, true
		}
	}
	if mm := s.byMethod[MethodAll]; mm != nil {
		if res, ok := mm.match(path); ok {
			return res, true
		}
	}
	return nil, false
}

// MatchingMethods returns every verb under which path would match, in
// canonical order. An ALL route makes every verb match.
func (m *FastMatcher) MatchingMethods(path string) []string {
	s := m.current()

	all := false
	if _, ok := s.static[staticKey{method: MethodAll, path: path}]; ok {
		all = true
	} else if mm := s.byMethod[MethodAll]; mm != nil && mm.matches(path) {
		all = true
	}

	var out []string
	for _, verb := range Methods {
		if all {
			out = appendMethod(out, verb)
			continue
		}
		if _, ok := s.static[staticKey{method: verb, path: path}]; ok {
			out = appendMethod(out, verb)
			continue
		}
		if mm := s.byMethod[verb]; mm != nil && mm.matches(path) {
			out = appendMethod(out, verb)
		}
	}
	return out
}

// HasRoutes reports whether any route is registered.
func (m *FastMatcher) HasRoutes() bool {
	return m.current().hasRoutes
}

// Clear removes all registered routes and publishes an empty snapshot.
func (m *FastMatcher) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.static = make(map[staticKey]*Route)
	m.dynamic = make(map[string][]dynamicEntry)
	m.gen.Add(1)
	m.snap.Store(&snapshot{
		gen:      m.gen.Load(),
		static:   make(map[staticKey]*Route),
		byMethod: make(map[string]*methodMatcher),
	})
}

// current returns the compiled snapshot, rebuilding it first if any route
// was added since the last build.
func (m *FastMatcher) current() *snapshot {
	if s := m.snap.Load(); s != nil && s.gen == m.gen.Load() {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Re-check under the lock: a concurrent caller may have already
	// published a fresh snapshot.
	if s := m.snap.Load(); s != nil && s.gen == m.gen.Load() {
		return s
	}
	s := m.build()
	m.snap.Store(s)
	return s
}

// build compiles the registration state into a new immutable snapshot.
// Caller must hold m.mu.
func (m *FastMatcher) build() *snapshot {
	s := &snapshot{
		gen:      m.gen.Load(),
		static:   make(map[staticKey]*Route, len(m.static)),
		byMethod: make(map[string]*methodMatcher, len(m.dynamic)),
	}
	for k, v := range m.static {
		s.static[k] = v
	}
	for method, entries := range m.dynamic {
		if len(entries) == 0 {
			continue
		}
		s.byMethod[method] = compileMethod(entries)
	}
	s.hasRoutes = len(s.static) > 0 || len(s.byMethod) > 0
	return s
}

// compileMethod combines every parameterized route for one method into a
// single alternation. Each alternative contributes its own parameter
// groups followed by one zero-width marker group, so a match identifies
// both the fired route and its capture offsets.
func compileMethod(entries []dynamicEntry) *methodMatcher {
	var (
		sb   strings.Builder
		alts = make([]alternative, 0, len(entries))
		next = 1 // regexp groups are 1-based
	)
	sb.WriteString("^(?:")
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("|")
		}
		sb.WriteString("(?:")
		sb.WriteString(e.compiled.Source())
		sb.WriteString("())")
		alts = append(alts, alternative{
			route:      e.route,
			paramStart: next,
			marker:     next + len(e.route.Keys),
		})
		next += len(e.route.Keys) + 1
	}
	sb.WriteString(")$")

	return &methodMatcher{
		re:   regexp.MustCompile(sb.String()),
		alts: alts,
	}
}

var _ Matcher = (*FastMatcher)(nil)
