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

package telemetry

import (
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// exporterKind selects a built-in metrics exporter.
type exporterKind int

const (
	exporterPrometheus exporterKind = iota
	exporterStdout
)

// config holds Recorder configuration assembled from options.
type config struct {
	serviceName     string
	logger          *slog.Logger
	accessLog       bool
	excludedPaths   map[string]struct{}
	metricsExporter exporterKind
	stdoutTraces    bool
	meterProvider   metric.MeterProvider
	tracerProvider  trace.TracerProvider
}

func defaultConfig() config {
	return config{
		serviceName:     "routekit",
		logger:          slog.New(slog.NewJSONHandler(os.Stdout, nil)),
		accessLog:       true,
		excludedPaths:   make(map[string]struct{}),
		metricsExporter: exporterPrometheus,
	}
}

// Option configures a Recorder.
type Option func(*config)

// WithServiceName sets the service name attached to the OpenTelemetry
// resource.
func WithServiceName(name string) Option {
	return func(c *config) {
		c.serviceName = name
	}
}

// WithLogger sets the base logger used for access logs and
// request-scoped loggers. Default is a JSON handler on stdout.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithoutAccessLog disables the per-request access log line. Metrics and
// traces are unaffected.
func WithoutAccessLog() Option {
	return func(c *config) {
		c.accessLog = false
	}
}

// WithExcludedPaths excludes exact request paths from metrics, traces,
// and access logs. Typical candidates are /health and /metrics.
func WithExcludedPaths(paths ...string) Option {
	return func(c *config) {
		for _, p := range paths {
			c.excludedPaths[p] = struct{}{}
		}
	}
}

// WithPrometheus selects the Prometheus metrics exporter backed by a
// Recorder-owned registry. This is the default; the scrape endpoint is
// exposed via Recorder.PrometheusHandler.
func WithPrometheus() Option {
	return func(c *config) {
		c.metricsExporter = exporterPrometheus
	}
}

// WithStdoutMetrics selects the stdout metrics exporter. Useful for
// development.
func WithStdoutMetrics() Option {
	return func(c *config) {
		c.metricsExporter = exporterStdout
	}
}

// WithStdoutTraces enables span export to stdout via a Recorder-owned
// tracer provider. Without this (or WithTracerProvider) the Recorder
// uses the globally registered tracer provider.
func WithStdoutTraces() Option {
	return func(c *config) {
		c.stdoutTraces = true
	}
}

// WithMeterProvider uses a caller-supplied meter provider instead of a
// built-in exporter. The caller owns its lifecycle.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = mp
	}
}

// WithTracerProvider uses a caller-supplied tracer provider. The caller
// owns its lifecycle.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		c.tracerProvider = tp
	}
}
