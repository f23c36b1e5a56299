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

import "sync"

// contextPool reuses Context values across requests. Contexts are fully
// reset before use; nothing observable leaks between requests.
var contextPool = sync.Pool{
	New: func() any {
		return &Context{}
	},
}

// getContext fetches a context from the pool.
func getContext() *Context {
	return contextPool.Get().(*Context)
}

// putContext clears request references and returns the context to the
// pool. Clearing Request and the writer avoids pinning request memory
// until the pool entry is reused.
func putContext(c *Context) {
	c.Request = nil
	c.writer.ResponseWriter = nil
	c.handlers = nil
	c.store = nil
	c.paramExtra = nil
	c.router = nil
	c.logger = nil
	contextPool.Put(c)
}
