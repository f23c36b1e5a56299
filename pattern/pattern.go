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

// Package pattern compiles route path templates into anchored regular
// expressions with an ordered parameter key list.
//
// A template is a /-delimited path where a segment may be:
//
//   - a literal ("users"), matched exactly
//   - a named parameter (":id"), matching one non-empty segment
//   - an optional parameter (":id?"), matching zero or one segment
//   - a wildcard ("*" or "*rest"), capturing the remainder of the path
//
// Compilation is pure and memoized per template string, so calling Compile
// repeatedly with the same template is cheap.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

var (
	// ErrEmptyTemplate indicates that the template string is empty.
	ErrEmptyTemplate = errors.New("pattern: template must not be empty")

	// ErrDuplicateParam indicates that a parameter name appears more than
	// once in a single template.
	ErrDuplicateParam = errors.New("pattern: duplicate parameter name")

	// ErrMissingSlash indicates that the template does not start with '/'.
	ErrMissingSlash = errors.New("pattern: template must start with '/'")
)

// Compiled is the matchable form of a template: an anchored regular
// expression plus the parameter keys in left-to-right declaration order.
//
// Invariant: the regular expression has exactly len(Keys) capture groups,
// and capture group i+1 corresponds to Keys[i].
type Compiled struct {
	// Template is the original template string.
	Template string

	// Regexp is the anchored matcher for the template.
	Regexp *regexp.Regexp

	// Keys holds the parameter names in declaration order. Unnamed
	// wildcards are keyed by their zero-based ordinal ("0", "1", ...)
	// among unnamed wildcards in this template.
	Keys []string
}

// cache memoizes compiled templates. Templates are registered at setup time
// and the set is finite, so the cache is unbounded by design.
var (
	cacheMu sync.RWMutex
	cache   = make(map[string]*Compiled)
)

// Compile turns a path template into its Compiled form.
//
// Literal segments are quoted so regexp metacharacters match literally.
// A required parameter compiles to /([^/]+). An optional parameter folds
// its leading separator into the optional group, (?:/([^/]+))?, so the
// parameter is either fully present or fully absent, never a dangling
// slash. A wildcard compiles to (?:/(.*))? and therefore also matches the
// bare prefix with an empty remainder.
//
// Example:
//
//	c, err := pattern.Compile("/users/:id/files/*path")
//	// c.Keys == []string{"id", "path"}
//	// c.Regexp matches "/users/42/files/a/b" with groups "42", "a/b"
func Compile(template string) (*Compiled, error) {
	cacheMu.RLock()
	if c, ok := cache[template]; ok {
		cacheMu.RUnlock()
		return c, nil
	}
	cacheMu.RUnlock()

	c, err := compile(template)
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	// Another goroutine may have compiled the same template; keep the
	// first published value so callers share one *Compiled.
	if existing, ok := cache[template]; ok {
		c = existing
	} else {
		cache[template] = c
	}
	cacheMu.Unlock()

	return c, nil
}

// MustCompile is like Compile but panics on an invalid template.
// Intended for route registration paths where templates are literals.
func MustCompile(template string) *Compiled {
	c, err := Compile(template)
	if err != nil {
		panic(fmt.Sprintf("pattern.MustCompile(%q): %v", template, err))
	}
	return c
}

func compile(template string) (*Compiled, error) {
	if template == "" {
		return nil, ErrEmptyTemplate
	}
	if template[0] != '/' {
		return nil, fmt.Errorf("%w: %q", ErrMissingSlash, template)
	}

	segments := strings.Split(template, "/")[1:] // leading '/' yields an empty head

	var (
		sb       strings.Builder
		keys     []string
		seen     = make(map[string]struct{})
		wildcard int
	)
	sb.WriteString("^")

	addKey := func(name string) error {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %q in template %q", ErrDuplicateParam, name, template)
		}
		seen[name] = struct{}{}
		keys = append(keys, name)
		return nil
	}

	for i, seg := range segments {
		switch {
		case strings.HasPrefix(seg, ":"):
			name := strings.TrimPrefix(seg, ":")
			optional := strings.HasSuffix(name, "?")
			if optional {
				name = strings.TrimSuffix(name, "?")
			}
			if err := addKey(name); err != nil {
				return nil, err
			}
			if optional {
				sb.WriteString(`(?:/([^/]+))?`)
			} else {
				sb.WriteString(`/([^/]+)`)
			}

		case strings.HasPrefix(seg, "*"):
			name := strings.TrimPrefix(seg, "*")
			if name == "" {
				name = strconv.Itoa(wildcard)
				wildcard++
			}
			if err := addKey(name); err != nil {
				return nil, err
			}
			sb.WriteString(`(?:/(.*))?`)

		case seg == "" && i == len(segments)-1:
			// Trailing slash in the template: require it in the path.
			sb.WriteString("/")

		default:
			sb.WriteString("/")
			sb.WriteString(regexp.QuoteMeta(seg))
		}
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("pattern: compiling template %q: %w", template, err)
	}

	return &Compiled{Template: template, Regexp: re, Keys: keys}, nil
}

// HasParams reports whether the template contains parameter or wildcard
// markers. Templates without markers can be matched by exact string
// comparison instead of regexp evaluation.
func HasParams(template string) bool {
	return strings.ContainsAny(template, ":*")
}

// Match tests path against the compiled template and returns the bound
// parameter values aligned with Keys. An unmatched optional or wildcard
// capture binds to the empty string; absence and empty-string presence are
// intentionally indistinguishable at this surface.
func (c *Compiled) Match(path string) ([]string, bool) {
	m := c.Regexp.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	return m[1:], true
}

// Source returns the regexp body without the ^...$ anchors. The combined
// method matcher embeds this body as one alternative of a larger pattern.
func (c *Compiled) Source() string {
	s := c.Regexp.String()
	return strings.TrimSuffix(strings.TrimPrefix(s, "^"), "$")
}
