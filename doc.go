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

// Package routekit is a request-routing and middleware-dispatch engine
// for HTTP servers.
//
// Given an incoming request, the router determines the ordered handler
// chain to run, executes it with cooperative early termination and error
// propagation, and produces the response.
//
// # Key Features
//
//   - Path templates with named parameters (:id), optional parameters
//     (:id?), and wildcards (* or *name)
//   - Two route tables behind one interface: a hybrid matcher with O(1)
//     static lookup plus one combined pattern per method (the default),
//     and a linear registration-order table
//   - Middleware pipeline with explicit continuation (Context.Next),
//     short-circuiting, and an error-handler escalation chain
//   - Router composition: sub-router mounting with exclusive delegation,
//     route groups, prefix-scoped middleware
//   - 404/405 terminal resolution with Allow lists
//   - WebSocket upgrade routes with pre-upgrade middleware
//   - Context pooling, OpenTelemetry-based observability via the
//     telemetry subpackage
//
// # Quick Start
//
//	package main
//
//	import (
//	    "log"
//	    "net/http"
//
//	    "github.com/routekit-dev/routekit"
//	)
//
//	func main() {
//	    r := routekit.MustNew()
//	    r.Use(func(c *routekit.Context) {
//	        c.SetHeader("X-Served-By", "routekit")
//	        c.Next()
//	    })
//	    r.GET("/users/:id", func(c *routekit.Context) {
//	        c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
//	    })
//	    log.Fatal(r.Run(":8080"))
//	}
//
// # Pipeline Semantics
//
// A handler signals how the pipeline proceeds: call Next to pass control
// on, write a response to short-circuit, call Error to escalate, or
// panic (recovered and treated as Error). A pipeline that terminates
// without a response resolves to an empty 200; nothing a handler does can
// crash the process.
//
// # Matching Semantics
//
// With the default hybrid table a static route always beats an
// overlapping parameterized route, regardless of registration order.
// With WithLinearMatcher the first registered match wins. Choose one
// policy per router; they are not interchangeable when templates overlap.
package routekit
