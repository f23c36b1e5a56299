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
	"context"
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ServeHTTP implements http.Handler.
//
// The first request freezes the router: registration and serving are
// mutually exclusive phases, so route tables are read-only while traffic
// flows.
//
// For each request the router:
//  1. starts the observability lifecycle (if configured) and wraps the
//     ResponseWriter,
//  2. resets a pooled context,
//  3. dispatches a WebSocket handshake to the upgrade matcher, or runs
//     the ordinary routing state machine (see handle),
//  4. finishes the observability lifecycle with the matched route
//     template and returns the context to the pool.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.freeze()

	ctx := req.Context()
	var obsState any

	if r.observability != nil {
		var enrichedCtx context.Context
		enrichedCtx, obsState = r.observability.OnRequestStart(ctx, req)
		if enrichedCtx != ctx {
			ctx = enrichedCtx
			req = req.WithContext(ctx)
		}
		if obsState != nil {
			w = r.observability.WrapResponseWriter(w, obsState)
		}
	}

	c := getContext()
	c.reset(w, req, r)

	if r.observability != nil {
		c.logger = r.observability.BuildRequestLogger(ctx, req, "")
	}

	if isWebSocketUpgrade(req) && r.serveUpgrade(c) {
		// Upgraded connections run to completion inside serveUpgrade;
		// the response writer was hijacked.
		pattern := c.routePattern
		putContext(c)
		if obsState != nil {
			r.observability.OnRequestEnd(ctx, obsState, w, pattern)
		}
		return
	}

	r.handle(c)

	pattern := c.routePattern
	if pattern == "" {
		pattern = "_unmatched"
	}
	putContext(c)

	if obsState != nil {
		r.observability.OnRequestEnd(ctx, obsState, w, pattern)
	}
}

// Run starts an HTTP server for the router on addr, applying the
// configured server timeouts and, when enabled, H2C support. It blocks
// until the server stops.
//
// Example:
//
//	r := routekit.MustNew()
//	r.GET("/health", healthHandler)
//	log.Fatal(r.Run(":8080"))
func (r *Router) Run(addr string) error {
	return r.buildServer(addr).ListenAndServe()
}

// buildServer assembles the *http.Server used by Run.
func (r *Router) buildServer(addr string) *http.Server {
	var handler http.Handler = r
	if r.enableH2C {
		handler = h2c.NewHandler(r, &http2.Server{})
	}
	t := r.serverTimeouts
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: t.readHeader,
		ReadTimeout:       t.read,
		WriteTimeout:      t.write,
		IdleTimeout:       t.idle,
	}
}
