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

// Package bodylimit provides middleware that rejects request bodies over
// a configured size with 413 Request Entity Too Large.
package bodylimit

import (
	"fmt"
	"net/http"

	"github.com/routekit-dev/routekit"
)

// New returns a middleware enforcing the configured body size limit.
// An oversized Content-Length is rejected before any body bytes are
// read; for chunked or lying clients the body reader itself is capped,
// so downstream reads fail once the limit is crossed.
//
// Example:
//
//	r := routekit.MustNew()
//	r.Use(bodylimit.New(bodylimit.WithLimit(1 << 20)))
func New(opts ...Option) routekit.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *routekit.Context) {
		if _, skip := cfg.skipPaths[c.Path()]; skip {
			c.Next()
			return
		}
		if c.Request.ContentLength > cfg.limit {
			cfg.errorHandler(c, cfg.limit)
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer(), c.Request.Body, cfg.limit)
		}
		c.Next()
	}
}

func defaultErrorHandler(c *routekit.Context, limit int64) {
	_ = c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
		"error":    "Request Entity Too Large",
		"max_size": formatSize(limit),
	})
}

// formatSize renders a byte count as a human-readable size.
func formatSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1fGB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1fMB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1fKB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%dB", bytes)
	}
}
