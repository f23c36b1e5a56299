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

// mountEntry attaches a child router to a path prefix. The parent owns
// the entry and the child's lifetime.
type mountEntry struct {
	prefix string
	child  *Router
}

// Mount attaches a child router at the given path prefix.
//
// A request whose pathname starts with the prefix (at a segment boundary)
// is delegated entirely to the child with the prefix stripped from the
// pathname; an empty remainder becomes "/". Delegation is exclusive: the
// parent's global middleware and routes do not apply to traffic captured
// by the mount. Children are tried in mount-registration order; the first
// matching prefix wins.
//
// Example:
//
//	api := routekit.MustNew()
//	api.GET("/users/:id", getUser) // served at /api/users/:id
//	r.Mount("/api", api)
func (r *Router) Mount(prefix string, child *Router) {
	r.mustBeOpen()
	if child == nil {
		return
	}
	r.mounts = append(r.mounts, &mountEntry{
		prefix: normalizePrefix(prefix),
		child:  child,
	})
}
