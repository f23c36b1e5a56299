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
	"time"

	"github.com/routekit-dev/routekit/matcher"
)

// WithLinearMatcher selects the linear route table instead of the default
// hybrid FastMatcher. The linear table scans routes in registration order
// and uses registration order as the tie-break between overlapping
// templates, whereas the FastMatcher gives static routes precedence
// regardless of registration order.
//
// Use it when registration-order semantics are required; the hybrid
// matcher is faster and its tie-break is easier to reason about.
//
// Example:
//
//	r := routekit.MustNew(routekit.WithLinearMatcher())
func WithLinearMatcher() Option {
	return func(r *Router) {
		r.table = matcher.NewLinearTable()
	}
}

// WithMatcher installs a custom route table. Mostly useful in tests.
func WithMatcher(m matcher.Matcher) Option {
	return func(r *Router) {
		r.table = m
	}
}

// WithObservability sets the observability recorder at construction time.
// Equivalent to calling SetObservabilityRecorder afterwards.
func WithObservability(recorder ObservabilityRecorder) Option {
	return func(r *Router) {
		r.observability = recorder
	}
}

// WithH2C enables HTTP/2 cleartext support on the server built by Run.
// Only intended for development or behind a load balancer that terminates
// TLS.
//
// Example:
//
//	r := routekit.MustNew(routekit.WithH2C(true))
func WithH2C(enabled bool) Option {
	return func(r *Router) {
		r.enableH2C = enabled
	}
}

// WithServerTimeouts configures the timeouts of the server built by Run.
//
// Example:
//
//	r := routekit.MustNew(routekit.WithServerTimeouts(
//	    10*time.Second,  // ReadHeaderTimeout
//	    30*time.Second,  // ReadTimeout
//	    60*time.Second,  // WriteTimeout
//	    120*time.Second, // IdleTimeout
//	))
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(r *Router) {
		r.serverTimeouts = &serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}

// defaultServerTimeouts returns the default timeout configuration.
func defaultServerTimeouts() *serverTimeouts {
	return &serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}

// WithoutCancellationCheck disables context cancellation checking between
// pipeline stages. By default the executor stops advancing a pipeline
// whose request context is already canceled.
func WithoutCancellationCheck() Option {
	return func(r *Router) {
		r.checkCancellation = false
	}
}
