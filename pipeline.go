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
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
)

// pipelineOutcome is the terminal state of one executor run.
type pipelineOutcome int

const (
	// pipelineExhausted: every handler ran and proceeded; no response.
	pipelineExhausted pipelineOutcome = iota

	// pipelineResponded: a handler produced the response.
	pipelineResponded

	// pipelineStopped: a handler returned without proceeding, responding,
	// or erroring (or called Abort).
	pipelineStopped

	// pipelineFailed: an error escalated to the error-handler chain. The
	// fallback formatter guarantees a response was produced.
	pipelineFailed
)

// run drives the handler list to completion or failure, one handler at a
// time. Control advances only when the current handler calls Next; the
// once-only semantics of the continuation hold by construction because
// the loop, not the handler, owns the index.
//
// The two non-error terminal states are "the chain is exhausted" and "the
// response was produced". A handler panic is equivalent to c.Error.
func (r *Router) run(c *Context, handlers []HandlerFunc) pipelineOutcome {
	c.handlers = handlers
	c.index = 0

	for c.index < len(c.handlers) {
		if c.writer.Written() {
			return pipelineResponded
		}
		if c.aborted {
			return pipelineStopped
		}
		if r.checkCancellation {
			if err := c.Request.Context().Err(); err != nil {
				return pipelineStopped
			}
		}

		h := c.handlers[c.index]
		c.index++
		c.proceed = false

		if err := r.invoke(h, c); err != nil {
			r.dispatchError(c, err)
			return pipelineFailed
		}
		if !c.proceed {
			if c.writer.Written() {
				return pipelineResponded
			}
			if c.aborted {
				return pipelineStopped
			}
			return pipelineStopped
		}
	}

	if c.writer.Written() {
		return pipelineResponded
	}
	return pipelineExhausted
}

// invoke runs one handler, converting a panic into an error. A handler
// that both writes a response and raises an error is treated as an error:
// escalation still runs, though headers already sent cannot be unsent.
func (r *Router) invoke(h HandlerFunc, c *Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			stack := debug.Stack()
			c.logger.Error("panic recovered in handler",
				"panic", rec,
				"path", c.Request.URL.Path,
				"stack", string(stack),
			)
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	h(c)
	return c.takeError()
}

// dispatchError escalates err through the registered error handlers in
// order. An error handler may produce the response (escalation stops),
// replace the error via c.Error (the next handler receives it), or return
// without responding (falls through). A panicking error handler is
// skipped: errors raised inside error handling are never fatal, because a
// response must always be produced. When no handler responds, the
// fallback formatter renders err.
func (r *Router) dispatchError(c *Context, err error) {
	for _, eh := range r.errorHandlers {
		forwarded := r.invokeErrorHandler(eh, c, err)
		if c.writer.Written() {
			return
		}
		if forwarded != nil {
			err = forwarded
		}
	}
	r.renderFallback(c, err)
}

// invokeErrorHandler runs one error handler, swallowing panics. Returns
// the replacement error the handler raised via c.Error, if any.
func (r *Router) invokeErrorHandler(eh ErrorHandlerFunc, c *Context, err error) (forwarded error) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("panic recovered in error handler", "panic", rec)
			forwarded = nil
		}
	}()
	eh(c, err)
	return c.takeError()
}

// renderFallback synthesizes the response when no error handler claimed
// the error. A recognized *Error contributes its own status, headers, and
// body; anything else becomes a generic 500.
func (r *Router) renderFallback(c *Context, err error) {
	var appErr *Error
	if errors.As(err, &appErr) {
		for key, values := range appErr.Headers {
			for _, v := range values {
				c.writer.Header().Add(key, v)
			}
		}
		if appErr.Body != nil {
			_ = c.JSON(appErr.Code, appErr.Body)
			return
		}
		_ = c.JSON(appErr.Code, map[string]string{
			"error":   http.StatusText(appErr.Code),
			"message": appErr.Message,
		})
		return
	}

	c.logger.Error("unhandled request error",
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)
	_ = c.JSON(http.StatusInternalServerError, map[string]string{
		"error":   "Internal Server Error",
		"message": err.Error(),
	})
}
