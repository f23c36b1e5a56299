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

package bodylimit

import "github.com/routekit-dev/routekit"

// Option defines functional options for bodylimit middleware
// configuration.
type Option func(*config)

type config struct {
	limit        int64
	errorHandler func(c *routekit.Context, limit int64)

	// skipPaths uses a map because the check runs on every request.
	skipPaths map[string]struct{}
}

func defaultConfig() *config {
	return &config{
		limit:        2 << 20, // 2MB
		errorHandler: defaultErrorHandler,
		skipPaths:    make(map[string]struct{}),
	}
}

// WithLimit sets the maximum allowed body size in bytes. Default is 2MB.
func WithLimit(limit int64) Option {
	return func(c *config) {
		c.limit = limit
	}
}

// WithErrorHandler replaces the default 413 JSON response.
func WithErrorHandler(fn func(c *routekit.Context, limit int64)) Option {
	return func(c *config) {
		c.errorHandler = fn
	}
}

// WithSkipPaths exempts exact request paths from the limit.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		for _, p := range paths {
			c.skipPaths[p] = struct{}{}
		}
	}
}
