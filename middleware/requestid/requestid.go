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

// Package requestid provides middleware that tags each request with a
// unique identifier for log correlation.
package requestid

import (
	"github.com/google/uuid"

	"github.com/routekit-dev/routekit"
)

// ContextKey is the attribute-bag key under which the request ID is
// stored, readable via Context.Get.
const ContextKey = "request_id"

// New returns a middleware that ensures every request carries a request
// ID. An incoming ID in the configured header is reused when client IDs
// are allowed; otherwise a new one is generated. The ID is echoed in the
// response header and stored in the context attribute bag.
//
// Example:
//
//	r := routekit.MustNew()
//	r.Use(requestid.New())
func New(opts ...Option) routekit.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *routekit.Context) {
		id := ""
		if cfg.allowClientID {
			id = c.Header(cfg.headerName)
		}
		if id == "" {
			id = cfg.generator()
		}
		c.SetHeader(cfg.headerName, id)
		c.Set(ContextKey, id)
		c.Next()
	}
}

// FromContext returns the request ID stored by the middleware, or "".
func FromContext(c *routekit.Context) string {
	if v, ok := c.Get(ContextKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func defaultGenerator() string {
	return uuid.NewString()
}
