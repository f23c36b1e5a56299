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
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/routekit-dev/routekit/pattern"
)

// WebSocketHandler holds the named event callbacks dispatched on a
// long-lived connection. Unlike ordinary routes there is no continuation
// chain after the upgrade: the route is matched exactly once at
// connection-establishment time and subsequent events go straight to
// these callbacks.
type WebSocketHandler struct {
	// OnOpen is called once after a successful upgrade.
	OnOpen func(c *Context, conn *WebSocketConn)

	// OnMessage is called for every message read from the peer.
	OnMessage func(c *Context, conn *WebSocketConn, messageType int, data []byte)

	// OnClose is called once when the read loop ends. err is the read
	// error that terminated the connection; use websocket.IsCloseError
	// to distinguish a clean close.
	OnClose func(c *Context, conn *WebSocketConn, err error)
}

// empty reports whether no callback is set.
func (h WebSocketHandler) empty() bool {
	return h.OnOpen == nil && h.OnMessage == nil && h.OnClose == nil
}

// WebSocketConn is an established connection with a stable identity.
type WebSocketConn struct {
	// ID uniquely identifies the connection for logging and bookkeeping.
	ID string

	*websocket.Conn
}

// upgradeRoute is one registered connection-upgrade route.
type upgradeRoute struct {
	template string
	compiled *pattern.Compiled
	chain    []HandlerFunc // pre-upgrade middleware
	handler  WebSocketHandler
}

// upgrader performs the WebSocket handshake. Origin checking is left to
// CORS/origin middleware in the pre-upgrade chain.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocket registers a connection-upgrade route. The optional middleware
// runs through the pipeline executor before the handshake; a middleware
// that writes a response (or raises an error) vetoes the upgrade.
//
// Example:
//
//	r.WebSocket("/rooms/:room", routekit.WebSocketHandler{
//	    OnMessage: func(c *routekit.Context, conn *routekit.WebSocketConn, mt int, data []byte) {
//	        _ = conn.WriteMessage(mt, data)
//	    },
//	}, authMiddleware)
func (r *Router) WebSocket(path string, handler WebSocketHandler, middleware ...HandlerFunc) {
	r.mustBeOpen()
	if handler.empty() {
		panic(ErrNilWebSocketHandler)
	}
	r.upgradeRoutes = append(r.upgradeRoutes, &upgradeRoute{
		template: path,
		compiled: pattern.MustCompile(path),
		chain:    middleware,
		handler:  handler,
	})
}

// isWebSocketUpgrade reports whether the request is a WebSocket
// handshake.
func isWebSocketUpgrade(req *http.Request) bool {
	return websocket.IsWebSocketUpgrade(req)
}

// matchUpgrade performs the single-shot upgrade match: this router's own
// upgrade table first, in registration order, then each mounted child
// with the prefix stripped, in mount-registration order.
func (r *Router) matchUpgrade(path string) (*upgradeRoute, []string, bool) {
	for _, ur := range r.upgradeRoutes {
		if values, ok := ur.compiled.Match(path); ok {
			return ur, values, true
		}
	}
	for _, m := range r.mounts {
		if rest, ok := stripPrefix(path, m.prefix); ok {
			if ur, values, found := m.child.matchUpgrade(rest); found {
				return ur, values, true
			}
		}
	}
	return nil, nil, false
}

// serveUpgrade matches and serves a WebSocket handshake. Returns false
// when no upgrade route matches, in which case the request falls through
// to ordinary routing.
func (r *Router) serveUpgrade(c *Context) bool {
	ur, values, ok := r.matchUpgrade(c.routePath)
	if !ok {
		return false
	}

	c.bindParams(ur.compiled.Keys, values)
	c.routePattern = ur.template

	// Pre-upgrade middleware: only a fully traversed chain allows the
	// handshake to proceed.
	if len(ur.chain) > 0 {
		if outcome := r.run(c, ur.chain); outcome != pipelineExhausted {
			if !c.writer.Written() {
				c.Status(http.StatusForbidden)
			}
			return true
		}
	}

	conn, err := upgrader.Upgrade(c.Writer(), c.Request, nil)
	if err != nil {
		// Upgrade already wrote the handshake error response.
		c.logger.Error("websocket upgrade failed", "error", err, "path", c.Request.URL.Path)
		return true
	}
	defer conn.Close()

	wc := &WebSocketConn{ID: uuid.NewString(), Conn: conn}
	h := ur.handler

	if h.OnOpen != nil {
		h.OnOpen(c, wc)
	}

	for {
		messageType, data, readErr := conn.ReadMessage()
		if readErr != nil {
			if h.OnClose != nil {
				h.OnClose(c, wc, readErr)
			}
			return true
		}
		if h.OnMessage != nil {
			h.OnMessage(c, wc, messageType, data)
		}
	}
}
