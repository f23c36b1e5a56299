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

package requestid

// Option defines functional options for requestid middleware
// configuration.
type Option func(*config)

type config struct {
	headerName    string
	generator     func() string
	allowClientID bool
}

func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     defaultGenerator,
		allowClientID: true,
	}
}

// WithHeader sets the header name carrying the request ID. Default is
// X-Request-ID.
func WithHeader(name string) Option {
	return func(c *config) {
		c.headerName = name
	}
}

// WithGenerator sets a custom ID generator. Default is a random UUID.
func WithGenerator(fn func() string) Option {
	return func(c *config) {
		c.generator = fn
	}
}

// WithAllowClientID controls whether an ID supplied by the client is
// trusted and reused. Default true; disable when IDs feed security
// logging.
func WithAllowClientID(allow bool) Option {
	return func(c *config) {
		c.allowClientID = allow
	}
}
