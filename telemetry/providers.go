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
	"fmt"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// initProviders builds the meter and tracer for the Recorder according
// to its configuration. Providers the Recorder creates itself are
// registered for Shutdown.
func (r *Recorder) initProviders() error {
	if err := r.initMeterProvider(); err != nil {
		return err
	}
	return r.initTracerProvider()
}

func (r *Recorder) initMeterProvider() error {
	if r.cfg.meterProvider != nil {
		r.meter = r.cfg.meterProvider.Meter(scopeName)
		return nil
	}

	switch r.cfg.metricsExporter {
	case exporterStdout:
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("creating stdout metric exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
			sdkmetric.WithResource(r.newResource()),
		)
		r.shutdown = append(r.shutdown, mp.Shutdown)
		r.meter = mp.Meter(scopeName)

	default: // exporterPrometheus
		registry := promclient.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("creating prometheus exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exporter),
			sdkmetric.WithResource(r.newResource()),
		)
		r.shutdown = append(r.shutdown, mp.Shutdown)
		r.meter = mp.Meter(scopeName)
		r.promHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	return nil
}

func (r *Recorder) initTracerProvider() error {
	if r.cfg.tracerProvider != nil {
		r.tracer = r.cfg.tracerProvider.Tracer(scopeName)
		return nil
	}

	if !r.cfg.stdoutTraces {
		// No provider configured: use whatever is registered globally,
		// which is a no-op provider unless the application set one up.
		r.tracer = otel.GetTracerProvider().Tracer(scopeName)
		return nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("creating stdout trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r.newResource()),
	)
	r.shutdown = append(r.shutdown, tp.Shutdown)
	r.tracer = tp.Tracer(scopeName)
	return nil
}

func (r *Recorder) newResource() *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(r.cfg.serviceName),
	)
}
